package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// Alerter pushes a plain-text alert to an external channel.
type Alerter interface {
	SendAlert(text string) error
}

// telegramHandler wraps another slog handler and forwards records at or
// above the alert level to an Alerter.
type telegramHandler struct {
	next       slog.Handler
	alerter    Alerter
	alertLevel slog.Level
}

// SetupTelegramHandler returns a logger that mirrors error-level records to
// the alerter while delegating everything to the original handler.
func SetupTelegramHandler(log *slog.Logger, alerter Alerter, alertLevel slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:       log.Handler(),
		alerter:    alerter,
		alertLevel: alertLevel,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.alerter != nil && record.Level >= slog.LevelError && record.Level >= h.alertLevel {
		text := fmt.Sprintf("[%s] %s", record.Level, record.Message)
		record.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %v", a.Key, a.Value)
			return true
		})
		_ = h.alerter.SendAlert(text)
	}
	return h.next.Handle(ctx, record)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{
		next:       h.next.WithAttrs(attrs),
		alerter:    h.alerter,
		alertLevel: h.alertLevel,
	}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{
		next:       h.next.WithGroup(name),
		alerter:    h.alerter,
		alertLevel: h.alertLevel,
	}
}
