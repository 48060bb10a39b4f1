package config

import (
	"io"
	"log"
	"log/slog"
	"os"
)

// InitLogger installs a JSON logger on stdout as the process default.
func InitLogger(level slog.Level) *slog.Logger {
	logger := NewLogger(os.Stdout, level)
	slog.SetDefault(logger)
	return logger
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// StdLogger bridges logger to libraries that take a *log.Logger.
func StdLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}
