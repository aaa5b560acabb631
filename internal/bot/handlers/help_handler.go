package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = `LifeSync commands:

/nutrition <foods> - estimate calories and macros, e.g. /nutrition 2 roti, dal 150g
/ask <question> - ask the AI dietitian
/start - show your chat id for the weekly digest
/help - show this message`

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")
	if update.Message == nil {
		log.WarnContext(ctx, "Help handler received update without message", "update_id", update.ID)
		return
	}
	reply(ctx, b, log, update.Message.Chat.ID, helpText)
}
