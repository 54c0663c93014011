package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pgconn", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "pgconn other", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "mysql", err: fmt.Errorf("create user: %w", &mysqldriver.MySQLError{Number: 1062}), want: true},
		{name: "mysql other", err: &mysqldriver.MySQLError{Number: 1452}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: users.email"), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestNewTestIsolated(t *testing.T) {
	type row struct {
		ID   int64
		Name string `gorm:"uniqueIndex"`
	}

	a, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, a.AutoMigrate(&row{}))
	require.NoError(t, a.Create(&row{ID: 1, Name: "x"}).Error)

	err = a.Create(&row{ID: 2, Name: "x"}).Error
	require.True(t, IsDuplicateKeyErr(err))

	b, err := NewTest()
	require.NoError(t, err)
	require.False(t, b.Migrator().HasTable(&row{}))
}
