package handlers

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// Canonical command names. Pending commands are stored by these names.
const (
	cmdReport       = "rapor"
	cmdHistory      = "gecmis"
	cmdWeekly       = "haftalik"
	cmdAdvice       = "tavsiye"
	cmdSettings     = "ayarlar"
	cmdHelp         = "yardim"
	cmdWaterButtons = "su"
	cmdMealTime     = "saat"
	cmdTimezone     = "timezone"
	cmdWaterInt     = "suaraligi"
	cmdWaterGoal    = "suhedefi"
	cmdCalorieGoal  = "kalorihedefi"
	cmdSilent       = "sessiz"
	cmdFavorite     = "favori"
	cmdMeal         = "ogun"
	cmdOnboarding   = "kurulum"
)

// keywords maps every folded alias to its command
var keywords = map[string]string{
	"rapor": cmdReport, "report": cmdReport, "ozet": cmdReport, "summary": cmdReport,
	"gecmis": cmdHistory, "history": cmdHistory, "tarihce": cmdHistory,
	"haftalik": cmdWeekly, "hafta": cmdWeekly, "weekly": cmdWeekly,
	"tavsiye": cmdAdvice, "oneri": cmdAdvice, "advice": cmdAdvice, "tip": cmdAdvice, "tips": cmdAdvice,
	"ayarlar": cmdSettings, "ayar": cmdSettings, "settings": cmdSettings, "setting": cmdSettings,
	"yardim": cmdHelp, "help": cmdHelp, "?": cmdHelp, "komutlar": cmdHelp, "commands": cmdHelp,
	"su": cmdWaterButtons, "buton": cmdWaterButtons, "butonlar": cmdWaterButtons, "button": cmdWaterButtons, "buttons": cmdWaterButtons,
	"saat": cmdMealTime, "time": cmdMealTime,
	"timezone": cmdTimezone, "tz": cmdTimezone, "zamandilimi": cmdTimezone,
	"suaraligi": cmdWaterInt, "waterinterval": cmdWaterInt,
	"suhedefi": cmdWaterGoal, "watergoal": cmdWaterGoal, "suhedfi": cmdWaterGoal,
	"kalorihedefi": cmdCalorieGoal, "caloriegoal": cmdCalorieGoal, "kalorihedfi": cmdCalorieGoal,
	"sessiz": cmdSilent, "silent": cmdSilent, "silentsaatler": cmdSilent,
	"favori": cmdFavorite, "favoriler": cmdFavorite, "favorite": cmdFavorite, "favorites": cmdFavorite, "fav": cmdFavorite,
	"ogun": cmdMeal, "yemek": cmdMeal, "meal": cmdMeal, "food": cmdMeal,
	"kurulum": cmdOnboarding, "onboarding": cmdOnboarding, "basla": cmdOnboarding,
}

// suggestable commands change nothing when run, so they may wait for a yes/no
var suggestable = []string{cmdReport, cmdHistory, cmdWeekly, cmdAdvice, cmdSettings, cmdHelp, cmdWaterButtons}

func isSuggestable(cmd string) bool {
	for _, c := range suggestable {
		if c == cmd {
			return true
		}
	}
	return false
}

const (
	quickFavoritePrefix = "fav"
	maxNearMissDistance = 2
	maxNearMissLength   = 20
)

// commandLine is a message split into a command token and its arguments
type commandLine struct {
	token string   // folded first word without a leading / or !
	args  []string // remaining words, case preserved
}

func parseCommandLine(text string) commandLine {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return commandLine{}
	}
	first := strings.TrimLeft(fields[0], "/!")
	return commandLine{token: utils.Fold(first), args: fields[1:]}
}

// lookupCommand returns the command of an exact keyword match
func lookupCommand(token string) (string, bool) {
	cmd, ok := keywords[token]
	return cmd, ok
}

// quickFavorite reports whether token names a favorite directly, like "fav1"
func quickFavorite(token string) bool {
	return len(token) > len(quickFavoritePrefix) && strings.HasPrefix(token, quickFavoritePrefix)
}

// nearMiss reports whether text is a single word that is a typo of a keyword.
// Keywords shorter than five letters tolerate one edit, longer ones two.
func nearMiss(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return "", false
	}
	token := utils.Fold(strings.TrimLeft(fields[0], "/!"))
	n := len([]rune(token))
	if n < 3 || n > maxNearMissLength {
		return "", false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	if _, exact := keywords[token]; exact {
		return "", false
	}

	for alias := range keywords {
		n := len([]rune(alias))
		if n < 3 {
			continue
		}
		limit := maxNearMissDistance
		if n < 5 {
			limit = 1
		}
		if levenshtein.ComputeDistance(token, alias) <= limit {
			return token, true
		}
	}
	return "", false
}

// Affirmative and negative answers to a pending suggestion
var (
	affirmative = map[string]bool{"1": true, "evet": true, "e": true, "yes": true, "y": true, "tamam": true, "ok": true}
	negative    = map[string]bool{"0": true, "hayir": true, "h": true, "no": true, "n": true, "iptal": true}
)

func answerOf(text string) (yes, no bool) {
	folded := strings.TrimSpace(utils.Fold(text))
	return affirmative[folded], negative[folded]
}
