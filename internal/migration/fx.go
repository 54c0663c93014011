package migration

import (
	"strings"

	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/config"
	messagedomain "github.com/smallbiznis/hushbox/internal/message/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")
		if !usesSQLMigrations(cfg.DBType) {
			log.Info("no SQL migrations for dialect, using auto migrate", zap.String("db_type", cfg.DBType))
			return AutoMigrate(conn)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		_, err = RunMigrations(sqlDB, log)
		return err
	}),
)

// usesSQLMigrations reports whether the embedded SQL files apply to dbType.
// They are written for postgres only.
func usesSQLMigrations(dbType string) bool {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "postgres", "postgresql":
		return true
	}
	return false
}

// AutoMigrate creates the schema through gorm for dialects without SQL migrations.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}, &messagedomain.Message{})
}
