package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func welcomeText(chatID int64) string {
	return fmt.Sprintf("Welcome to LifeSync!\n\n"+
		"Your chat id is %d. Save it as telegram_chat_id in your profile to get a weekly digest here.\n\n"+
		"Send /help to see what I can do.", chatID)
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")
	if update.Message == nil {
		log.WarnContext(ctx, "Start handler received update without message", "update_id", update.ID)
		return
	}
	reply(ctx, b, log, update.Message.Chat.ID, welcomeText(update.Message.Chat.ID))
}
