package handlers

import (
	"context"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

// PendingHandler answers the yes/no question asked after a command suggestion
type PendingHandler struct {
	deps     Dependencies
	commands *CommandHandler
}

// NewPendingHandler creates a new pending confirmation handler
func NewPendingHandler(deps Dependencies, commands *CommandHandler) *PendingHandler {
	return &PendingHandler{deps: deps, commands: commands}
}

// Handle resolves the user's pending command. ok is false when text is
// neither a yes nor a no; the pending command is then left for later routing.
func (h *PendingHandler) Handle(ctx context.Context, user *database.User, text string) (domain.Reply, bool) {
	yes, no := answerOf(text)
	if !yes && !no {
		return domain.Reply{}, false
	}

	command := *user.PendingCommand
	if err := h.deps.UserService.ClearPending(ctx, user); err != nil {
		return replyForError(ctx, err, menus.TryAgain()), true
	}
	user.PendingCommand = nil

	log := logger.WithPhone(ctx, user.Phone)
	if no {
		log.Info("Suggested command rejected", "command", command)
		return menus.Cancelled(), true
	}

	log.Info("Suggested command confirmed", "command", command)
	if !isSuggestable(command) {
		log.Warn("Pending command is not runnable", "command", command)
		return menus.Help(), true
	}
	return h.commands.Run(ctx, user, command, nil), true
}
