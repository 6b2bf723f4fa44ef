package handlers

import (
	"context"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// OnboardingHandler treats every text as the answer to the current onboarding question
type OnboardingHandler struct {
	deps Dependencies
}

func NewOnboardingHandler(deps Dependencies) *OnboardingHandler {
	return &OnboardingHandler{deps: deps}
}

func (h *OnboardingHandler) Handle(ctx context.Context, user *database.User, text string) domain.Reply {
	res, err := h.deps.UserService.AnswerOnboarding(ctx, user, text)
	if err != nil {
		return replyForError(ctx, err, menus.OnboardingInvalid())
	}
	return menus.OnboardingStep(res)
}
