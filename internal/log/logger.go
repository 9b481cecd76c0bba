package log

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog. Component and request scoping happen
// through With*, so every line carries the subsystem that wrote it; the
// leveled methods come from the embedded slog.Logger.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// DefaultConfig logs text at Info level to stdout.
func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo}
}

// New creates a logger from the configuration. A nil Handler gets a text
// handler at the configured level.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// With returns a logger carrying the given attributes on every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent tags the logger with the subsystem name.
func (l *Logger) WithComponent(component string) *Logger {
	return l.With("component", component)
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
