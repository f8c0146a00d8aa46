package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance
var Log *zap.Logger

// FileConfig describes the optional rolling file sink.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init initializes the global logger.
// isDevelopment: true for colorful console output, false for JSON structured logging.
// file: non-empty Path adds a JSON rolling-file sink next to the console one.
func Init(isDevelopment bool, file FileConfig) error {
	var config zap.Config

	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	base, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return err
	}

	if file.Path == "" {
		Log = base
		return nil
	}

	if dir := filepath.Dir(file.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    nz(file.MaxSizeMB, 100), // megabytes
			MaxBackups: nz(file.MaxBackups, 3),
			MaxAge:     nz(file.MaxAgeDays, 7), // days
		}),
		config.Level,
	)

	Log = base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
	return nil
}

// Sync flushes any buffered log entries.
// Should be called before application exits.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func nz(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
