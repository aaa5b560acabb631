package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RequireArgs replies with usage and stops when the command has no text
// after it.
func RequireArgs(deps HandlerDeps, usage string) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || commandArgs(update.Message.Text) != "" {
				next(ctx, b, update)
				return
			}
			deps.Logger.DebugContext(ctx, "Command without arguments", "chat_id", update.Message.Chat.ID)
			reply(ctx, b, deps.Logger, update.Message.Chat.ID, usage)
		}
	}
}
