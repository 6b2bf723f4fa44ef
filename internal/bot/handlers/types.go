package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/interfaces"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

// DefaultImageDailyLimit caps the meal photos analysed per user and local day
const DefaultImageDailyLimit = 20

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService   *services.UserService
	MealService   *services.MealService
	WaterService  *services.WaterService
	ReportService *services.ReportService
	AI            interfaces.AIGateway
	State         interfaces.StateStore

	ImageDailyLimit int
	Now             func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Dependencies) imageLimit() int {
	if d.ImageDailyLimit <= 0 {
		return DefaultImageDailyLimit
	}
	return d.ImageDailyLimit
}

// replyForError logs err and picks the reply: persistence failures ask the
// user to try again, everything else gets fallback
func replyForError(ctx context.Context, err error, fallback domain.Reply) domain.Reply {
	apperrors.NewHandler(logger.WithContext(ctx)).Handle(ctx, err)

	if errors.Is(err, apperrors.ErrAIUnavailable) || errors.Is(err, apperrors.ErrMalformedInput) {
		return fallback
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeDatabase, apperrors.ErrorTypeInternal:
		return menus.TryAgain()
	}
	return fallback
}
