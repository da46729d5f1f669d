// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevel()
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// "production" gets a JSON encoder at info level, "test" discards everything,
// anything else gets a human-readable console encoder at debug level.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		switch env {
		case "production":
			cfg = zap.NewProductionConfig()
		case "test":
			sugar = zap.NewNop().Sugar()
			return
		default:
			cfg = zap.NewDevelopmentConfig()
		}
		level.SetLevel(cfg.Level.Level())
		cfg.Level = level

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// SetLevel changes the minimum enabled level at runtime (e.g. from LOG_LEVEL).
// Unknown level names are ignored.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child logger tagged with the given component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
