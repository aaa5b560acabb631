package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// Notifier sends plain-text messages through a bot.
type Notifier struct {
	b   *bot.Bot
	log *slog.Logger
}

func NewNotifier(b *bot.Bot, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{b: b, log: logger.With("component", "telegram_notifier")}
}

func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	if _, err := n.b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	n.log.DebugContext(ctx, "Notification sent", "chat_id", chatID)
	return nil
}
