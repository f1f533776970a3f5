package bot

import (
	"fmt"
	"log/slog"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"DonorLink/internal/lib/sl"
)

// TgBot is the ops alert channel: error-level log records and a /status
// command for the platform administrator.
type TgBot struct {
	bot     *gotgbot.Bot
	name    string
	adminId int64
	log     *slog.Logger
}

func NewTgBot(name, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	b, err := gotgbot.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &TgBot{
		bot:     b,
		name:    name,
		adminId: adminId,
		log:     log.With(sl.Module("tgbot")),
	}, nil
}

// Start runs the update polling loop. Blocks until the updater stops.
func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("update handling", sl.Err(err))
			return ext.DispatcherActionNoop
		},
	})

	dispatcher.AddHandler(handlers.NewCommand("status", t.status))

	updater := ext.NewUpdater(dispatcher, nil)
	if err := updater.StartPolling(t.bot, &ext.PollingOpts{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("telegram polling: %w", err)
	}

	updater.Idle()
	return nil
}

func (t *TgBot) status(b *gotgbot.Bot, ctx *ext.Context) error {
	if ctx.EffectiveChat.Id != t.adminId {
		return nil
	}
	_, err := ctx.EffectiveMessage.Reply(b, fmt.Sprintf("%s is running", t.name), nil)
	return err
}

// SendAlert pushes a plain-text message to the admin chat. Implements
// logger.Alerter.
func (t *TgBot) SendAlert(text string) error {
	if t.adminId == 0 {
		return nil
	}
	_, err := t.bot.SendMessage(t.adminId, text, nil)
	if err != nil {
		return fmt.Errorf("telegram send alert: %w", err)
	}
	return nil
}
