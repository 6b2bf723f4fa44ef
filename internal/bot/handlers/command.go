package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-bot/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-bot/internal/errors"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// CommandHandler handles keyword commands
type CommandHandler struct {
	deps Dependencies
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(deps Dependencies) *CommandHandler {
	return &CommandHandler{deps: deps}
}

// Handle runs text as a command when its first word is an exact keyword
// or a quick favorite. ok is false for any other text.
func (h *CommandHandler) Handle(ctx context.Context, user *database.User, text string) (domain.Reply, bool) {
	line := parseCommandLine(text)
	if line.token == "" {
		return domain.Reply{}, false
	}

	if cmd, ok := lookupCommand(line.token); ok {
		// commands without arguments must be the whole message, "su içtim" is not "su"
		if len(line.args) > 0 && isSuggestable(cmd) {
			return domain.Reply{}, false
		}
		logger.WithPhone(ctx, user.Phone).Debug("Command matched", "command", cmd, "args", len(line.args))
		return h.Run(ctx, user, cmd, line.args), true
	}

	if len(line.args) == 0 && quickFavorite(line.token) && services.ValidFavoriteName(line.token) {
		return h.logFavorite(ctx, user, line.token), true
	}
	return domain.Reply{}, false
}

// Run executes a canonical command with its arguments
func (h *CommandHandler) Run(ctx context.Context, user *database.User, cmd string, args []string) domain.Reply {
	switch cmd {
	case cmdReport:
		return h.handleReport(ctx, user)
	case cmdHistory:
		return h.handleHistory(ctx, user)
	case cmdWeekly:
		return h.handleWeekly(ctx, user)
	case cmdAdvice:
		return h.handleAdvice(ctx, user)
	case cmdSettings:
		return h.done(ctx, user, menus.Settings(user, services.InSilentHours(user, h.deps.now())))
	case cmdHelp:
		return h.done(ctx, user, menus.Help())
	case cmdWaterButtons:
		return h.done(ctx, user, keyboards.WaterMenu())
	case cmdMealTime:
		return h.handleMealTime(ctx, user, args)
	case cmdTimezone:
		return h.handleTimezone(ctx, user, args)
	case cmdWaterInt:
		return h.handleWaterInterval(ctx, user, args)
	case cmdWaterGoal:
		return h.handleWaterGoal(ctx, user, args)
	case cmdCalorieGoal:
		return h.handleCalorieGoal(ctx, user, args)
	case cmdSilent:
		return h.handleSilentHours(ctx, user, args)
	case cmdFavorite:
		return h.handleFavorite(ctx, user, args)
	case cmdMeal:
		return h.handleMeal(ctx, user, args)
	case cmdOnboarding:
		return h.handleOnboarding(ctx, user)
	default:
		logger.WithPhone(ctx, user.Phone).Warn("Unknown command", "command", cmd)
		return menus.Help()
	}
}

// done clears a superseded pending command after a command that wrote nothing
func (h *CommandHandler) done(ctx context.Context, user *database.User, reply domain.Reply) domain.Reply {
	if err := h.deps.UserService.ClearPending(ctx, user); err != nil {
		logger.WithPhone(ctx, user.Phone).Warn("Failed to clear pending command", "error", err)
		return reply
	}
	user.PendingCommand = nil
	return reply
}

func (h *CommandHandler) handleReport(ctx context.Context, user *database.User) domain.Reply {
	stats, err := h.deps.ReportService.Daily(ctx, user)
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return h.done(ctx, user, menus.DailyReport(stats, user))
}

func (h *CommandHandler) handleHistory(ctx context.Context, user *database.User) domain.Reply {
	meals, err := h.deps.ReportService.History(ctx, user)
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return h.done(ctx, user, menus.History(meals, user.Location()))
}

func (h *CommandHandler) handleWeekly(ctx context.Context, user *database.User) domain.Reply {
	days, err := h.deps.ReportService.Weekly(ctx, user)
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return h.done(ctx, user, menus.Weekly(days, user))
}

func (h *CommandHandler) handleAdvice(ctx context.Context, user *database.User) domain.Reply {
	advice, err := h.deps.ReportService.Advice(ctx, user)
	if err != nil {
		return replyForError(ctx, err, menus.AdviceUnavailable())
	}
	return h.done(ctx, user, menus.Advice(advice))
}

func (h *CommandHandler) handleMealTime(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) < 2 {
		return menus.MealTimeUsage()
	}

	meal, ok := domain.ParseMealType(utils.Fold(args[0]))
	if !ok || meal == domain.MealSnack {
		return menus.InvalidMealType()
	}

	clock, err := h.deps.UserService.ParseTime(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return replyForError(ctx, err, menus.InvalidTime())
	}

	if err := h.deps.UserService.SetMealTime(ctx, user, meal, clock); err != nil {
		return replyForError(ctx, err, menus.InvalidMealType())
	}
	return menus.MealTimeSaved(meal, clock)
}

func (h *CommandHandler) handleTimezone(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) != 1 {
		return menus.TimezoneUsage()
	}

	name := args[0]
	if err := h.deps.UserService.SetTimezone(ctx, user, name); err != nil {
		return replyForError(ctx, err, menus.InvalidTimezone(name))
	}
	return menus.TimezoneSaved(name)
}

func (h *CommandHandler) handleWaterInterval(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) != 1 {
		return menus.WaterIntervalUsage()
	}

	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return menus.InvalidWaterInterval(args[0])
	}
	if err := h.deps.UserService.SetWaterInterval(ctx, user, minutes); err != nil {
		return replyForError(ctx, err, menus.InvalidWaterInterval(args[0]))
	}
	return menus.WaterIntervalSaved(minutes)
}

func (h *CommandHandler) handleWaterGoal(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) == 0 {
		return h.done(ctx, user, menus.WaterGoalUsage(user))
	}

	ml, err := strconv.Atoi(strings.TrimSuffix(utils.Fold(args[0]), "ml"))
	if err != nil {
		return menus.InvalidWaterGoal(args[0])
	}
	if err := h.deps.UserService.SetWaterGoal(ctx, user, ml); err != nil {
		return replyForError(ctx, err, menus.InvalidWaterGoal(args[0]))
	}
	return menus.WaterGoalSaved(ml)
}

func (h *CommandHandler) handleCalorieGoal(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) == 0 {
		return h.done(ctx, user, menus.CalorieGoalUsage(user))
	}

	kcal, err := strconv.Atoi(strings.TrimSuffix(utils.Fold(args[0]), "kcal"))
	if err != nil {
		return menus.InvalidCalorieGoal()
	}
	if err := h.deps.UserService.SetCalorieGoal(ctx, user, kcal); err != nil {
		return replyForError(ctx, err, menus.InvalidCalorieGoal())
	}
	return menus.CalorieGoalSaved(kcal)
}

func (h *CommandHandler) handleSilentHours(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) == 0 {
		return h.done(ctx, user, menus.SilentHoursUsage(user))
	}
	if len(args) != 2 {
		return menus.InvalidSilentHours()
	}

	start, err := utils.ParseClock(args[0])
	if err != nil {
		return menus.InvalidSilentHours()
	}
	end, err := utils.ParseClock(args[1])
	if err != nil {
		return menus.InvalidSilentHours()
	}

	if err := h.deps.UserService.SetSilentHours(ctx, user, start, end); err != nil {
		return replyForError(ctx, err, menus.InvalidSilentHours())
	}
	return menus.SilentHoursSaved(start, end)
}

func (h *CommandHandler) handleFavorite(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) == 0 {
		return h.listFavorites(ctx, user)
	}

	switch utils.Fold(args[0]) {
	case "liste", "list":
		return h.listFavorites(ctx, user)

	case "ekle", "add":
		if len(args) < 3 {
			return menus.FavoriteAddUsage()
		}
		name := utils.Fold(args[1])
		if !services.ValidFavoriteName(name) {
			return menus.InvalidFavoriteName()
		}
		fav, err := h.deps.MealService.AddFavorite(ctx, user, name, strings.Join(args[2:], " "))
		if err != nil {
			return replyForError(ctx, err, menus.FavoriteAnalysisFailed())
		}
		user.PendingCommand = nil
		return menus.FavoriteSaved(fav)

	case "sil", "delete", "remove":
		if len(args) < 2 {
			return menus.FavoriteDeleteUsage()
		}
		name := utils.Fold(args[1])
		deleted, err := h.deps.MealService.RemoveFavorite(ctx, user, name)
		if err != nil {
			return replyForError(ctx, err, menus.TryAgain())
		}
		user.PendingCommand = nil
		if !deleted {
			return menus.FavoriteNotFound(name)
		}
		return menus.FavoriteDeleted(name)

	default:
		return menus.FavoriteUsage()
	}
}

func (h *CommandHandler) listFavorites(ctx context.Context, user *database.User) domain.Reply {
	favs, err := h.deps.MealService.Favorites(ctx, user)
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return h.done(ctx, user, menus.Favorites(favs))
}

func (h *CommandHandler) logFavorite(ctx context.Context, user *database.User, name string) domain.Reply {
	res, err := h.deps.MealService.LogFavorite(ctx, user, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return menus.FavoriteNotFound(name)
	}
	if err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return menus.MealSaved(res, 0, h.deps.imageLimit())
}

func (h *CommandHandler) handleMeal(ctx context.Context, user *database.User, args []string) domain.Reply {
	if len(args) == 0 {
		return menus.MealUsage()
	}
	return logMealText(ctx, h.deps, user, strings.Join(args, " "))
}

func (h *CommandHandler) handleOnboarding(ctx context.Context, user *database.User) domain.Reply {
	if err := h.deps.UserService.StartOnboarding(ctx, user); err != nil {
		return replyForError(ctx, err, menus.TryAgain())
	}
	return menus.OnboardingWelcome()
}

// logMealText analyses and stores a written meal
func logMealText(ctx context.Context, deps Dependencies, user *database.User, description string) domain.Reply {
	res, err := deps.MealService.LogText(ctx, user, description)
	if err != nil {
		return replyForError(ctx, err, menus.AnalysisFailed())
	}
	return menus.MealSaved(res, 0, deps.imageLimit())
}

// logWater stores a parsed water amount or re-prompts when it is out of range
func logWater(ctx context.Context, deps Dependencies, user *database.User, amountML int) domain.Reply {
	res, err := deps.WaterService.Log(ctx, user, amountML)
	if err != nil {
		return replyForError(ctx, err, menus.InvalidWater())
	}
	return menus.WaterSaved(res)
}
