package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hkhamm/cqlclient/types"
)

// ZapLogger adapts a zap.SugaredLogger to types.Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Compile-time assertion that ZapLogger implements types.Logger.
var _ types.Logger = (*ZapLogger)(nil)

// NewZapLogger wraps an existing zap logger.
//
// Parameters:
//   - logger: The zap logger to write to
//
// Returns:
//   - *ZapLogger: A types.Logger backed by zap
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

// NewConsoleLogger builds a human-readable zap logger writing to stderr.
//
// Parameters:
//   - level: Minimum level name ("debug", "info", "warn", "error")
//
// Returns:
//   - *ZapLogger: The console logger
//   - error: Error if the level is unknown or zap cannot be built
func NewConsoleLogger(level string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cqlclient: invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cqlclient: failed to build logger: %w", err)
	}

	return NewZapLogger(logger), nil
}

// Debug logs at debug level.
func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at info level.
func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at error level.
func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
