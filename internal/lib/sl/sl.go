package sl

import "log/slog"

// Module tags log records with the emitting module name.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

// Err wraps an error as a slog attribute.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Secret logs a sensitive value in masked form, keeping only a short prefix
// for correlation.
func Secret(key, value string) slog.Attr {
	masked := value
	if len(masked) > 6 {
		masked = masked[:6] + "..."
	}
	return slog.String(key, masked)
}
