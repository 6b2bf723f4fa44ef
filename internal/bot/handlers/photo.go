package handlers

import (
	"context"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

const imageCounterKey = "images:"

// PhotoHandler handles meal photos
type PhotoHandler struct {
	deps Dependencies
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(deps Dependencies) *PhotoHandler {
	return &PhotoHandler{deps: deps}
}

// Handle analyses the photo as a meal unless the user reached the daily image limit
func (h *PhotoHandler) Handle(ctx context.Context, user *database.User, ref domain.ImageRef) domain.Reply {
	log := logger.WithPhone(ctx, user.Phone)
	limit := h.deps.imageLimit()
	key := imageCounterKey + user.Phone
	day := h.deps.now().In(user.Location()).Format("2006-01-02")

	if h.deps.State != nil {
		count, err := h.deps.State.DailyCount(ctx, key, day)
		if err != nil {
			log.Warn("Failed to read image counter", "error", err)
		} else if count >= int64(limit) {
			log.Info("Daily image limit reached", "count", count, "limit", limit)
			return menus.ImageLimit(limit)
		}
	}

	res, err := h.deps.MealService.LogImage(ctx, user, ref)
	if err != nil {
		return replyForError(ctx, err, menus.ImageAnalysisFailed())
	}

	var count int64
	if h.deps.State != nil {
		count, err = h.deps.State.IncrDaily(ctx, key, day)
		if err != nil {
			log.Warn("Failed to count image", "error", err)
		}
	}
	return menus.MealSaved(res, int(count), limit)
}
