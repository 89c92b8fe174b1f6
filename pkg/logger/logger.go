package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init configures the global logger at the given level (debug, info, warn, error).
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("logger: parse level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl == zapcore.DebugLevel {
		cfg.Development = true
	}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger: build: %w", err)
	}

	mu.Lock()
	base = built
	mu.Unlock()
	return nil
}

// L returns the global logger. It is a no-op logger until Init succeeds.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithModule returns a child logger tagged with the module name.
func WithModule(module string) *zap.Logger {
	return L().With(zap.String("module", module))
}

// Sync flushes buffered log entries.
func Sync() error {
	return L().Sync()
}
