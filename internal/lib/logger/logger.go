package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the process logger for the given environment. Non-local
// environments also write to a log file next to the configured directory.
func SetupLogger(env, logPath string) *slog.Logger {
	var out io.Writer = os.Stdout

	if env != envLocal {
		file, err := os.OpenFile(
			filepath.Join(logPath, "donorlink.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err == nil {
			out = io.MultiWriter(os.Stdout, file)
		}
	}

	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
