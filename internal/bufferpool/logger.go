package bufferpool

import "log/slog"

// Logger is the structured logging surface the buffer manager needs.
// *slog.Logger satisfies it directly; pkg/logger provides zap/logrus
// adapters for callers who want a different backend without pulling
// either dependency into this package.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func defaultLogger() Logger {
	return slog.Default()
}
