package types

// Logger is the structured logging interface used throughout cqlclient.
//
// Messages carry alternating key/value pairs, the same convention as
// zap.SugaredLogger's *w methods and log/slog.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
