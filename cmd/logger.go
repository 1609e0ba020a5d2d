package cmd

import (
	"log/slog"
	"os"
)

// InitLogger sets up a text logger on stderr as the default slog logger. With
// verbose, debug messages and their source lines are included.
func InitLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
