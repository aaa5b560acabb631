package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lifesync/internal/nutrition"
)

// NewNutritionHandler returns a handler for /nutrition <foods>.
func NewNutritionHandler(deps HandlerDeps) bot.HandlerFunc {
	return nutritionHandler{deps}.Handle
}

type nutritionHandler struct {
	deps HandlerDeps
}

func nutritionText(a nutrition.Analysis) string {
	if len(a.Items) == 0 {
		return "I could not recognise any of those foods."
	}
	var sb strings.Builder
	for _, it := range a.Items {
		fmt.Fprintf(&sb, "• %s (%.0f g): %.0f kcal\n", it.Food, it.Grams, it.Totals.Calories)
	}
	fmt.Fprintf(&sb, "\nTotal: %.0f kcal, protein %.1f g, carbs %.1f g, fat %.1f g",
		a.Totals.Calories, a.Totals.Protein, a.Totals.Carbs, a.Totals.Fat)
	if len(a.Unmatched) > 0 {
		fmt.Fprintf(&sb, "\nNot recognised: %s", strings.Join(a.Unmatched, ", "))
	}
	return sb.String()
}

func (h nutritionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "nutrition")
	if update.Message == nil {
		return
	}
	a := h.deps.Parser.Analyze(commandArgs(update.Message.Text))
	log.DebugContext(ctx, "Parsed nutrition query", "matched", len(a.Items), "unmatched", len(a.Unmatched))
	reply(ctx, b, log, update.Message.Chat.ID, nutritionText(a))
}
