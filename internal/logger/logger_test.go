package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"bus_info/internal/config"
)

func TestSetupWritesToFile(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	cfg := config.Default().Log
	cfg.File = filepath.Join(t.TempDir(), "app.log")
	cfg.Level = "debug"
	require.NoError(t, Setup(cfg))

	logrus.WithField("route", "12").Debug("route stops replaced")

	b, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(b), "route stops replaced")
	assert.Contains(t, string(b), "route=12")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "loud"
	assert.Error(t, Setup(cfg))
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, gormLevel("trace"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormLevel("warn"))
	assert.Equal(t, gormlogger.Error, gormLevel("error"))
	assert.Equal(t, gormlogger.Warn, gormLevel("nonsense"))
	assert.NotNil(t, GormLogger(config.Default().Log))
}
