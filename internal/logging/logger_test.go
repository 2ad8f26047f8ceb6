package logging

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orgstructure/internal/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestNewWritesRotatedFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "app.log")
	log, err := New(config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		Filename: filename,
		MaxSize:  1,
	})
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, log.Sync())
	require.FileExists(t, filename)
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gormLogger := NewGormLogger(zap.New(core), "warn")

	fc := func() (string, int64) { return "SELECT 1", 0 }
	gormLogger.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	require.Equal(t, 0, logs.Len())

	gormLogger.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "query failed", logs.All()[0].Message)
}

func TestGormLoggerLogMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gormLogger := NewGormLogger(zap.New(core), "warn").LogMode(logger.Silent)

	gormLogger.Trace(context.Background(), time.Now(), func() (string, int64) { return "", 0 }, errors.New("boom"))
	require.Equal(t, 0, logs.Len())
}

func TestGormLoggerInfoLevelLogsQueriesAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	NewGormLogger(zap.New(core), "warn").Trace(context.Background(), time.Now(), fc, nil)
	require.Equal(t, 0, logs.Len())

	NewGormLogger(zap.New(core), "info").Trace(context.Background(), time.Now(), fc, nil)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "query", entry.Message)
	require.Equal(t, zapcore.InfoLevel, entry.Level)
	require.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
}
