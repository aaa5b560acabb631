package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAskHandler returns a handler for /ask <question>.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
		log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
	}

	reply(ctx, b, log, chatID, h.deps.Dietitian.Ask(ctx, commandArgs(update.Message.Text)))
}
