package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"

	"bus_info/internal/config"
)

// Setup points the standard logrus logger at a rotating file, mirrored to stdout
// when asked. An empty file name logs to stdout only.
func Setup(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   cfg.Compress,
		}
		out = rotator
		if cfg.Stdout {
			out = io.MultiWriter(os.Stdout, rotator)
		}
	}

	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.SetLevel(level)
	return nil
}

// GormLogger routes GORM's SQL logging through the standard logrus logger.
func GormLogger(cfg config.LogConfig) gormlogger.Interface {
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  gormLevel(cfg.Level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// gormLevel maps a logrus level name onto GORM's coarser scale; SQL is traced at debug.
func gormLevel(level string) gormlogger.LogLevel {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return gormlogger.Warn
	}
	switch {
	case parsed >= logrus.DebugLevel:
		return gormlogger.Info
	case parsed >= logrus.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
