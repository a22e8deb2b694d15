// Package logger provides alternative backends for the bufferpool.Logger
// interface. The interface itself is satisfied directly by *slog.Logger,
// so this package exists only for callers who'd rather plug in zap or
// logrus without pulling either dependency into the core module.
package logger
