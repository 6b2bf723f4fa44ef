package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

// parseCalorieResponse reads the "Kalori:" line of an analysis answer.
// Every other line goes to the description. A missing or zero calorie value
// is an error: the caller must not store a meal without a real estimate.
func parseCalorieResponse(response string) (domain.MealAnalysis, error) {
	var analysis domain.MealAnalysis
	var description strings.Builder

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		plain := strings.TrimSpace(strings.NewReplacer("**", "", "__", "").Replace(trimmed))
		switch {
		case strings.HasPrefix(plain, "Kalori:"):
			analysis.Calories = parseCalorieValue(strings.TrimPrefix(plain, "Kalori:"))
			continue
		case strings.HasPrefix(plain, "Yemek:"):
			analysis.FoodName = cleanMarkdown(strings.TrimSpace(strings.TrimPrefix(plain, "Yemek:")))
		case strings.HasPrefix(plain, "Porsiyon:"):
			analysis.Portion = cleanMarkdown(strings.TrimSpace(strings.TrimPrefix(plain, "Porsiyon:")))
		}
		description.WriteString(trimmed)
		description.WriteByte('\n')
	}

	if analysis.Calories <= 0 {
		return domain.MealAnalysis{}, fmt.Errorf("no calorie value in response")
	}
	analysis.Description = cleanMarkdown(description.String())
	return analysis, nil
}

// parseCalorieValue handles "650", "650,5", "1.250", "1,250" and "1.250,5".
// With both separators the last one is the decimal mark; a lone separator
// followed by one or two digits is decimal, otherwise it groups thousands.
func parseCalorieValue(raw string) float64 {
	raw = strings.ReplaceAll(raw, "kcal", "")
	raw = strings.ReplaceAll(raw, "cal", "")

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		cleaned = singleSeparator(cleaned, ",")
	case hasDot:
		cleaned = singleSeparator(cleaned, ".")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

func singleSeparator(s, sep string) string {
	after := s[strings.Index(s, sep)+1:]
	if len(after) >= 1 && len(after) <= 2 {
		return strings.Replace(s, sep, ".", 1)
	}
	return strings.ReplaceAll(s, sep, "")
}

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// cleanMarkdown strips headings, emphasis, code fences and links
func cleanMarkdown(text string) string {
	text = strings.NewReplacer(
		"###", "",
		"##", "",
		"# ", "",
		"**", "",
		"__", "",
		"```", "",
	).Replace(text)
	text = markdownLink.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

var intentPrefixes = []string{
	"Yemek kaydı: ", "Su kaydı: ", "Kalori hedefi: ", "Su hedefi: ",
	"Öğün saati: ", "Sessiz saat: ", "Komut: ", "Belirsiz: ",
}

// parseIntent maps the tagged answer of the intent prompt onto the closed
// Intent set. Goal, meal-time and silent-hour tags become commands with
// arguments; anything unreadable is Unknown.
func parseIntent(response string) domain.Intent {
	text := strings.TrimSpace(response)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	text = strings.TrimPrefix(strings.TrimPrefix(text, "- "), "* ")
	text = strings.Trim(text, "`\"")
	for _, p := range intentPrefixes {
		if strings.HasPrefix(text, p) {
			text = strings.TrimPrefix(text, p)
			break
		}
	}

	tag, rest, _ := strings.Cut(text, ":")
	rest = strings.TrimSpace(rest)
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "MEAL":
		if rest == "" {
			return domain.UnknownIntent()
		}
		return domain.MealIntent(rest)
	case "WATER":
		if ml, ok := parseAmount(rest); ok {
			return domain.WaterIntent(ml)
		}
	case "CALORIE_GOAL":
		if n, ok := parseAmount(rest); ok {
			return domain.CommandIntent("kalorihedefi", strconv.Itoa(n))
		}
	case "WATER_GOAL":
		if n, ok := parseAmount(rest); ok {
			return domain.CommandIntent("suhedefi", strconv.Itoa(n))
		}
	case "MEAL_TIME":
		parts := strings.Split(rest, ":")
		if len(parts) >= 3 {
			clock := strings.TrimSpace(parts[1]) + ":" + strings.TrimSpace(parts[2])
			return domain.CommandIntent("saat", utils.Fold(strings.TrimSpace(parts[0])), clock)
		}
	case "SILENT":
		parts := strings.Split(rest, ":")
		if len(parts) >= 4 {
			start := strings.TrimSpace(parts[0]) + ":" + strings.TrimSpace(parts[1])
			end := strings.TrimSpace(parts[2]) + ":" + strings.TrimSpace(parts[3])
			return domain.CommandIntent("sessiz", start, end)
		}
	case "COMMAND":
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			name := strings.TrimLeft(utils.Fold(fields[0]), "/!")
			return domain.CommandIntent(name, fields[1:]...)
		}
	}
	return domain.UnknownIntent()
}

var unitStripper = strings.NewReplacer("kcal", "", "cal", "", "ml", "", "litre", "", "lt", "")

// parseAmount reads a bare integer, tolerating a trailing unit
func parseAmount(s string) (int, bool) {
	s = strings.TrimSpace(unitStripper.Replace(strings.ToLower(s)))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

type suggestionPayload struct {
	Command    string  `json:"command"`
	Confidence float64 `json:"confidence"`
}

// parseSuggestion accepts only commands from the allowed list
func parseSuggestion(response string, allowed []string) (domain.CommandSuggestion, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return domain.CommandSuggestion{}, fmt.Errorf("no valid JSON found in response")
	}
	var payload suggestionPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return domain.CommandSuggestion{}, fmt.Errorf("failed to parse response: %w", err)
	}

	cmd := strings.TrimLeft(utils.Fold(strings.TrimSpace(payload.Command)), "/!")
	for _, a := range allowed {
		if a == cmd {
			return domain.CommandSuggestion{Command: cmd, Confidence: clamp01(payload.Confidence)}, nil
		}
	}
	return domain.CommandSuggestion{}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parseClockAnswer validates the HH:MM answer of the time prompt
func parseClockAnswer(response string) (domain.ClockTime, error) {
	answer := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), "`\"."))
	if strings.EqualFold(answer, "NONE") {
		return domain.ClockTime{}, fmt.Errorf("no time in text")
	}
	clock, found, err := utils.ParseNaturalTime(answer)
	if err != nil {
		return domain.ClockTime{}, err
	}
	if !found {
		return domain.ClockTime{}, fmt.Errorf("unreadable time %q", answer)
	}
	return clock, nil
}

// extractJSON attempts to extract a valid JSON object from the given string.
// It handles cases where the JSON is wrapped in code blocks (```json ... ```) or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
