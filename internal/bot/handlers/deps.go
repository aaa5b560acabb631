// Package handlers contains the Telegram command handlers, their registry
// and middleware.
package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/edgard/lifesync/internal/gemini"
	"github.com/edgard/lifesync/internal/nutrition"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Parser    *nutrition.Parser
	Dietitian gemini.Asker
}

// commandArgs returns the text after the command word, so both
// "/ask hi" and "/ask@LifeSyncBot hi" give "hi".
func commandArgs(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(rest)
}

func reply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
