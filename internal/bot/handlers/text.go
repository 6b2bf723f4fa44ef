package handlers

import (
	"context"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// MinSuggestionConfidence is the lowest AI confidence that turns into a yes/no question
const MinSuggestionConfidence = 0.6

// TextHandler handles free text that is not a keyword command
type TextHandler struct {
	deps     Dependencies
	commands *CommandHandler
}

// NewTextHandler creates a new text handler
func NewTextHandler(deps Dependencies, commands *CommandHandler) *TextHandler {
	return &TextHandler{deps: deps, commands: commands}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, user *database.User, text string) domain.Reply {
	if ml, ok := services.ParseWaterAmount(text); ok {
		return logWater(ctx, h.deps, user, ml)
	}

	return h.handleIntent(ctx, user, text)
}

// suggest asks the AI which read-only command a mistyped token meant and
// stores a confident answer as the pending command
func (h *TextHandler) suggest(ctx context.Context, user *database.User, token string) domain.Reply {
	log := logger.WithPhone(ctx, user.Phone)

	suggestion, err := h.deps.AI.SuggestCommand(ctx, token, suggestable)
	if err != nil {
		log.Warn("Command suggestion failed", "token", token, "error", err)
		return menus.Help()
	}

	cmd := utils.Fold(strings.TrimSpace(suggestion.Command))
	if suggestion.Confidence < MinSuggestionConfidence || !isSuggestable(cmd) {
		log.Info("No confident suggestion", "token", token, "command", cmd, "confidence", suggestion.Confidence)
		return menus.Help()
	}

	if err := h.deps.UserService.SetPending(ctx, user, cmd); err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	user.PendingCommand = &cmd

	log.Info("Command suggested", "token", token, "command", cmd, "confidence", suggestion.Confidence)
	return menus.Suggestion(token, cmd)
}

func (h *TextHandler) handleIntent(ctx context.Context, user *database.User, text string) domain.Reply {
	intent, err := h.deps.AI.DetectIntent(ctx, text)
	if err != nil {
		return replyForError(ctx, err, menus.Help())
	}

	logger.WithPhone(ctx, user.Phone).Debug("Intent detected", "intent", intent.Kind.String())

	switch intent.Kind {
	case domain.IntentMeal:
		description := intent.Description
		if strings.TrimSpace(description) == "" {
			description = text
		}
		return logMealText(ctx, h.deps, user, description)

	case domain.IntentWater:
		return logWater(ctx, h.deps, user, intent.AmountML)

	case domain.IntentCommand:
		cmd, ok := lookupCommand(utils.Fold(strings.TrimLeft(intent.Command, "/!")))
		if !ok {
			return h.unrecognized(ctx, user, text)
		}
		return h.commands.Run(ctx, user, cmd, intent.Args)

	default:
		return h.unrecognized(ctx, user, text)
	}
}

// unrecognized offers a command when text looks like a mistyped keyword
func (h *TextHandler) unrecognized(ctx context.Context, user *database.User, text string) domain.Reply {
	if token, ok := nearMiss(text); ok {
		return h.suggest(ctx, user, token)
	}
	return menus.Help()
}
