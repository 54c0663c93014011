package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/hushbox/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := map[string]bool{}
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	require.True(t, names["000001_init.up.sql"])
	require.True(t, names["000001_init.down.sql"])
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	_, err := RunMigrations(nil, nil)
	require.Error(t, err)
}

func TestUsesSQLMigrations(t *testing.T) {
	require.True(t, usesSQLMigrations("postgres"))
	require.True(t, usesSQLMigrations("PostgreSQL"))
	require.False(t, usesSQLMigrations("mysql"))
	require.False(t, usesSQLMigrations("sqlite"))
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))

	for _, table := range []string{"users", "sessions", "messages"} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}
