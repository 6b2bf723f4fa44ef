package handlers

import (
	"context"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

// Router maps one inbound message to exactly one reply and coordinates other handlers
type Router struct {
	deps              Dependencies
	pendingHandler    *PendingHandler
	onboardingHandler *OnboardingHandler
	commandHandler    *CommandHandler
	textHandler       *TextHandler
	photoHandler      *PhotoHandler
}

// NewRouter creates a new router
func NewRouter(deps Dependencies) *Router {
	commands := NewCommandHandler(deps)
	return &Router{
		deps:              deps,
		pendingHandler:    NewPendingHandler(deps, commands),
		onboardingHandler: NewOnboardingHandler(deps),
		commandHandler:    commands,
		textHandler:       NewTextHandler(deps, commands),
		photoHandler:      NewPhotoHandler(deps),
	}
}

// HandleInboundMessage routes msg and returns the reply to send. It never
// fails: every error is turned into a reply for the user.
func (r *Router) HandleInboundMessage(ctx context.Context, msg domain.InboundMessage) domain.Reply {
	log := logger.WithPhone(ctx, msg.Phone)
	if strings.TrimSpace(msg.Phone) == "" {
		log.Warn("Inbound message without sender", "message_id", msg.ID)
		return menus.Help()
	}

	// Get or create user
	user, err := r.deps.UserService.RegisterUser(ctx, msg.Phone, msg.Name)
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}

	if !user.IsActive {
		log.Info("Message from paused user ignored")
		return menus.Paused()
	}

	if user.PendingCommand != nil && msg.Image == nil {
		if reply, ok := r.pendingHandler.Handle(ctx, user, msg.Text); ok {
			return reply
		}
	}

	if msg.Image != nil {
		return r.photoHandler.Handle(ctx, user, *msg.Image)
	}

	if services.InOnboarding(user) {
		return r.onboardingHandler.Handle(ctx, user, msg.Text)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return menus.Help()
	}

	if reply, ok := r.commandHandler.Handle(ctx, user, text); ok {
		return reply
	}
	return r.textHandler.Handle(ctx, user, text)
}
