package db

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orgstructure/internal/config"
	"orgstructure/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "org.db") + "?_pragma=foreign_keys(1)"
	conn, err := Connect(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          dsn,
		LogLevel:     "silent",
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	require.NoError(t, Migrate(context.Background(), conn, zap.NewNop()))
	require.True(t, conn.Migrator().HasTable(&models.Department{}))
	require.True(t, conn.Migrator().HasTable(&models.Employee{}))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}
