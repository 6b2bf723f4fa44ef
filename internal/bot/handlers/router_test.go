package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/repository"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

const testPhone = "+905551234567"

var errAIDown = apperrors.NewAIUnavailableError(errors.New("context deadline exceeded"), "test")

// scriptedAI answers from fixed fields and counts every call
type scriptedAI struct {
	intent     domain.Intent
	analysis   domain.MealAnalysis
	suggestion domain.CommandSuggestion
	clock      domain.ClockTime
	advice     string
	err        error
	calls      int
}

func (a *scriptedAI) DetectIntent(context.Context, string) (domain.Intent, error) {
	a.calls++
	return a.intent, a.err
}

func (a *scriptedAI) AnalyzeMealText(context.Context, string) (domain.MealAnalysis, error) {
	a.calls++
	return a.analysis, a.err
}

func (a *scriptedAI) AnalyzeMealImage(context.Context, domain.ImageRef) (domain.MealAnalysis, error) {
	a.calls++
	return a.analysis, a.err
}

func (a *scriptedAI) SuggestCommand(context.Context, string, []string) (domain.CommandSuggestion, error) {
	a.calls++
	return a.suggestion, a.err
}

func (a *scriptedAI) ParseNaturalTime(context.Context, string) (domain.ClockTime, error) {
	a.calls++
	return a.clock, a.err
}

func (a *scriptedAI) NutritionAdvice(context.Context, domain.DailyStats, int) (string, error) {
	a.calls++
	return a.advice, a.err
}

type harness struct {
	router *Router
	store  *repository.Store
	ai     *scriptedAI
}

func newHarness(t *testing.T, imageLimit int) *harness {
	t.Helper()
	db, err := database.Open(config.DBConfig{
		Driver:     config.DriverSQLite,
		SqlitePath: filepath.Join(t.TempDir(), "router.db"),
	})
	require.NoError(t, err)

	loc, _ := time.LoadLocation(database.DefaultTimezone)
	at := time.Date(2026, 3, 10, 13, 0, 0, 0, loc)
	now := func() time.Time { return at }

	store := repository.NewStore(db)
	ai := &scriptedAI{analysis: domain.MealAnalysis{FoodName: "Pilav", Calories: 350, Description: "Pilav"}}
	deps := Dependencies{
		UserService:     services.NewUserService(store, ai),
		MealService:     services.NewMealService(store, ai, now),
		WaterService:    services.NewWaterService(store, now),
		ReportService:   services.NewReportService(store, ai, now),
		AI:              ai,
		State:           state.NewManager(),
		ImageDailyLimit: imageLimit,
		Now:             now,
	}
	return &harness{router: NewRouter(deps), store: store, ai: ai}
}

func (h *harness) send(t *testing.T, text string) domain.Reply {
	t.Helper()
	return h.router.HandleInboundMessage(context.Background(), domain.InboundMessage{Phone: testPhone, Text: text})
}

func (h *harness) user(t *testing.T) *database.User {
	t.Helper()
	user, err := h.store.GetUser(context.Background(), testPhone)
	require.NoError(t, err)
	return user
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.store.DB().Model(model).Where("user_phone = ?", testPhone).Count(&n).Error)
	return n
}

func (h *harness) waterTotal(t *testing.T) int {
	t.Helper()
	var total int
	require.NoError(t, h.store.DB().Model(&database.WaterLog{}).
		Where("user_phone = ?", testPhone).
		Select("COALESCE(SUM(amount_ml), 0)").Scan(&total).Error)
	return total
}

func TestReportMakesNoAICall(t *testing.T) {
	h := newHarness(t, 0)
	h.send(t, "250 ml")

	reply := h.send(t, "Rapor")
	assert.Contains(t, reply.Text, "Günlük Rapor")
	assert.Contains(t, reply.Text, "250/2000 ml")
	assert.Zero(t, h.ai.calls)
}

func TestKeywordIsDiacriticTolerant(t *testing.T) {
	h := newHarness(t, 0)
	reply := h.send(t, "/GEÇMİŞ")
	assert.Equal(t, menus.History(nil, time.UTC), reply)
	assert.Zero(t, h.ai.calls)
}

func TestSuggestionConfirmed(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "tavsiye", Confidence: 0.9}
	h.ai.advice = "Daha fazla sebze ye."

	reply := h.send(t, "tvsiye")
	assert.Equal(t, menus.Suggestion("tvsiye", "tavsiye"), reply)
	require.NotNil(t, h.user(t).PendingCommand)
	assert.Equal(t, "tavsiye", *h.user(t).PendingCommand)

	reply = h.send(t, "1")
	assert.Equal(t, menus.Advice("Daha fazla sebze ye."), reply)
	assert.Nil(t, h.user(t).PendingCommand)
	assert.Zero(t, h.count(t, &database.WaterLog{}), "a confirmation is not a water log")
}

func TestSuggestionRejected(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "rapor", Confidence: 0.8}

	h.send(t, "rapr")
	require.NotNil(t, h.user(t).PendingCommand)

	reply := h.send(t, "Hayır")
	assert.Equal(t, menus.Cancelled(), reply)
	assert.Nil(t, h.user(t).PendingCommand)

	// a later "1" is a water log again, not a stale confirmation
	h.send(t, "1")
	assert.Equal(t, 200, h.waterTotal(t))
}

func TestLowConfidenceSuggestion(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "rapor", Confidence: 0.3}

	reply := h.send(t, "rapr")
	assert.Equal(t, menus.Help(), reply)
	assert.Nil(t, h.user(t).PendingCommand)
}

func TestSuggestionOutsideWhitelist(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "kurulum", Confidence: 0.95}

	reply := h.send(t, "kurulm")
	assert.Equal(t, menus.Help(), reply)
	assert.Nil(t, h.user(t).PendingCommand)
}

func TestSuggestionFailure(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.err = errAIDown

	reply := h.send(t, "tvsiye")
	assert.Equal(t, menus.Help(), reply)
	assert.Nil(t, h.user(t).PendingCommand)
}

func TestPendingSupersededByCommand(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "tavsiye", Confidence: 0.9}
	h.send(t, "tvsiye")

	h.ai.intent = domain.UnknownIntent()
	reply := h.send(t, "merhaba nasılsın")
	assert.Equal(t, menus.Help(), reply)
	require.NotNil(t, h.user(t).PendingCommand, "unrecognized text leaves the pending command")

	h.send(t, "rapor")
	assert.Nil(t, h.user(t).PendingCommand)
}

func TestPendingSupersededByWaterLog(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "gecmis", Confidence: 0.9}
	h.send(t, "gecmsi")

	h.send(t, "300 ml")
	assert.Nil(t, h.user(t).PendingCommand)
	assert.Equal(t, 300, h.waterTotal(t))
}

func TestPendingReplacedByNewSuggestion(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "tavsiye", Confidence: 0.9}
	h.send(t, "tvsiye")

	h.ai.suggestion = domain.CommandSuggestion{Command: "haftalik", Confidence: 0.9}
	h.send(t, "haftalk")
	require.NotNil(t, h.user(t).PendingCommand)
	assert.Equal(t, "haftalik", *h.user(t).PendingCommand)
}

func TestAITimeoutOnFreeText(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.err = errAIDown

	reply := h.send(t, "bugün öğlen biraz mercimek çorbası içtim")
	assert.Equal(t, menus.Help(), reply)
	assert.Zero(t, h.count(t, &database.Meal{}))
	assert.Zero(t, h.count(t, &database.WaterLog{}))
}

func TestQuickWaterWithoutAI(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.err = errAIDown

	for text, want := range map[string]int{"1": 200, "2": 250, "3": 500} {
		before := h.waterTotal(t)
		h.send(t, text)
		assert.Equal(t, want, h.waterTotal(t)-before, text)
	}
	assert.Zero(t, h.ai.calls)
}

func TestDirectAndAIWaterMatch(t *testing.T) {
	direct := newHarness(t, 0)
	direct.send(t, "250 ml")

	viaAI := newHarness(t, 0)
	viaAI.ai.intent = domain.WaterIntent(250)
	viaAI.send(t, "bir bardak su aldım")

	assert.Equal(t, 250, direct.waterTotal(t))
	assert.Equal(t, direct.waterTotal(t), viaAI.waterTotal(t))
	assert.Zero(t, direct.ai.calls)
	assert.Equal(t, 1, viaAI.ai.calls)
}

func TestWaterOutOfRange(t *testing.T) {
	h := newHarness(t, 0)
	reply := h.send(t, "9000 ml")
	assert.Equal(t, menus.InvalidWater(), reply)
	assert.Zero(t, h.count(t, &database.WaterLog{}))
}

func TestMealIntent(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.intent = domain.MealIntent("tavuklu pilav")

	reply := h.send(t, "öğlen tavuklu pilav yedim")
	assert.Contains(t, reply.Text, "Öğle Yemeği Kaydedildi")
	assert.Equal(t, int64(1), h.count(t, &database.Meal{}))
}

func TestOneWordMealReachesIntentDetection(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.suggestion = domain.CommandSuggestion{Command: "yardim", Confidence: 0.9}

	// "pasta" is two edits away from "basla" but names a food
	for _, word := range []string{"ayran", "pasta"} {
		h.ai.intent = domain.MealIntent(word)
		reply := h.send(t, word)
		assert.Contains(t, reply.Text, "Kaydedildi", word)
	}
	assert.Equal(t, int64(2), h.count(t, &database.Meal{}))
	assert.Nil(t, h.user(t).PendingCommand)
}

func TestUnresolvedCommandIntentFallsBackToSuggestion(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.intent = domain.CommandIntent("rapr")
	h.ai.suggestion = domain.CommandSuggestion{Command: "rapor", Confidence: 0.9}

	reply := h.send(t, "rapr")
	assert.Equal(t, menus.Suggestion("rapr", "rapor"), reply)
	require.NotNil(t, h.user(t).PendingCommand)
	assert.Equal(t, "rapor", *h.user(t).PendingCommand)
}

func TestMealKeywordSkipsIntentDetection(t *testing.T) {
	h := newHarness(t, 0)

	reply := h.send(t, "yemek mercimek çorbası")
	assert.Contains(t, reply.Text, "Kaydedildi")
	assert.Equal(t, int64(1), h.count(t, &database.Meal{}))
	assert.Equal(t, 1, h.ai.calls, "only the meal analysis")
}

func TestMealWithoutCaloriesIsNotStored(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.intent = domain.MealIntent("su gibi bir şey")
	h.ai.analysis = domain.MealAnalysis{Description: "?", Calories: 0}

	reply := h.send(t, "öğlen bir şey yedim")
	assert.Equal(t, menus.AnalysisFailed(), reply)
	assert.Zero(t, h.count(t, &database.Meal{}))
}

func TestCommandIntent(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.intent = domain.CommandIntent("suhedefi", "3000")

	reply := h.send(t, "su hedefimi 3 litre yap")
	assert.Equal(t, menus.WaterGoalSaved(3000), reply)
	assert.Equal(t, 3000, h.user(t).WaterGoal)
}

func TestOnboardingFlow(t *testing.T) {
	h := newHarness(t, 0)
	assert.Equal(t, menus.OnboardingWelcome(), h.send(t, "kurulum"))

	reply := h.send(t, "sabah 9'da")
	assert.Contains(t, reply.Text, "09:00")
	user := h.user(t)
	require.NotNil(t, user.BreakfastTime)
	assert.Equal(t, "09:00", *user.BreakfastTime)

	reply = h.send(t, "25:00")
	assert.Equal(t, menus.OnboardingInvalid(), reply)
	require.NotNil(t, h.user(t).OnboardingStep)
	assert.Equal(t, services.StepLunchTime, *h.user(t).OnboardingStep)

	h.send(t, "12:30")
	h.send(t, "akşam 7")
	user = h.user(t)
	assert.True(t, user.OnboardingCompleted)
	assert.Nil(t, user.OnboardingStep)
	require.NotNil(t, user.DinnerTime)
	assert.Equal(t, "19:00", *user.DinnerTime)
}

func TestSettingsCommands(t *testing.T) {
	h := newHarness(t, 0)

	assert.Equal(t, menus.TimezoneSaved("Europe/Berlin"), h.send(t, "timezone Europe/Berlin"))
	assert.Equal(t, menus.InvalidTimezone("Mars/Base"), h.send(t, "tz Mars/Base"))
	assert.Equal(t, menus.WaterIntervalSaved(90), h.send(t, "suaraligi 90"))
	assert.Equal(t, menus.InvalidWaterInterval("999"), h.send(t, "suaraligi 999"))
	assert.Equal(t, menus.CalorieGoalSaved(1800), h.send(t, "kalorihedefi 1800"))
	assert.Equal(t, menus.InvalidCalorieGoal(), h.send(t, "kalorihedefi 100"))
	assert.Equal(t, menus.InvalidSilentHours(), h.send(t, "sessiz 25:00 07:00"))
	assert.Equal(t, menus.MealTimeUsage(), h.send(t, "saat"))
	assert.Equal(t, menus.InvalidMealType(), h.send(t, "saat ara 10:00"))

	user := h.user(t)
	assert.Equal(t, "Europe/Berlin", user.Timezone)
	assert.Equal(t, 90, user.WaterReminderInterval)
	assert.Equal(t, 1800, user.CalorieGoal)
	assert.Equal(t, "23:00", user.SilentStart)
}

func TestMealTimeCommand(t *testing.T) {
	h := newHarness(t, 0)
	reply := h.send(t, "saat öğle 13:30")
	assert.Equal(t, menus.MealTimeSaved(domain.MealLunch, domain.ClockTime{Hour: 13, Minute: 30}), reply)
	require.NotNil(t, h.user(t).LunchTime)
	assert.Equal(t, "13:30", *h.user(t).LunchTime)
}

func TestFavorites(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.analysis = domain.MealAnalysis{Calories: 480, Description: "Tavuklu pilav"}

	reply := h.send(t, "favori ekle fav1 tavuklu pilav")
	assert.Contains(t, reply.Text, "Favori eklendi")

	reply = h.send(t, "fav1")
	assert.Contains(t, reply.Text, "480 kcal")
	assert.Equal(t, int64(1), h.count(t, &database.Meal{}))

	assert.Equal(t, menus.FavoriteNotFound("fav9"), h.send(t, "fav9"))
	assert.Equal(t, menus.FavoriteDeleted("fav1"), h.send(t, "favori sil fav1"))
	assert.Equal(t, menus.FavoriteNotFound("fav1"), h.send(t, "favori sil fav1"))
}

func TestFavoriteNotSavedWhenAIFails(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.err = errAIDown

	reply := h.send(t, "favori ekle kahvalti menemen")
	assert.Equal(t, menus.FavoriteAnalysisFailed(), reply)
	assert.Zero(t, h.count(t, &database.FavoriteMeal{}))
}

func TestWaterButtons(t *testing.T) {
	h := newHarness(t, 0)
	assert.Equal(t, keyboards.WaterMenu(), h.send(t, "su"))

	h.send(t, keyboards.ButtonText("water_500"))
	assert.Equal(t, 500, h.waterTotal(t))
}

func TestImageLimit(t *testing.T) {
	h := newHarness(t, 1)
	img := domain.InboundMessage{Phone: testPhone, Image: &domain.ImageRef{URL: "https://example.com/a.jpg"}}

	reply := h.router.HandleInboundMessage(context.Background(), img)
	assert.Contains(t, reply.Text, "Kaydedildi")

	reply = h.router.HandleInboundMessage(context.Background(), img)
	assert.Equal(t, menus.ImageLimit(1), reply)
	assert.Equal(t, int64(1), h.count(t, &database.Meal{}))
}

func TestImageAnalysisFailure(t *testing.T) {
	h := newHarness(t, 0)
	h.ai.err = errAIDown
	img := domain.InboundMessage{Phone: testPhone, Image: &domain.ImageRef{URL: "https://example.com/a.jpg"}}

	reply := h.router.HandleInboundMessage(context.Background(), img)
	assert.Equal(t, menus.ImageAnalysisFailed(), reply)
	assert.Zero(t, h.count(t, &database.Meal{}))
}

func TestPausedUser(t *testing.T) {
	h := newHarness(t, 0)
	h.send(t, "yardim")

	inactive := false
	require.NoError(t, h.store.UpdateSettings(context.Background(), testPhone, domain.SettingsUpdate{IsActive: &inactive}))

	assert.Equal(t, menus.Paused(), h.send(t, "250 ml"))
	assert.Zero(t, h.count(t, &database.WaterLog{}))
}

func TestContactNameCaptured(t *testing.T) {
	h := newHarness(t, 0)
	h.router.HandleInboundMessage(context.Background(), domain.InboundMessage{Phone: testPhone, Name: "Ayşe", Text: "yardim"})
	assert.Equal(t, "Ayşe", h.user(t).DisplayName())
}
