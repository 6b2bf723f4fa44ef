package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/utils"
)

const glassML = 250

// quick replies of the water menu
var quickWater = map[string]int{
	"1": 200,
	"2": 250,
	"3": 500,
}

var (
	mlPattern    = regexp.MustCompile(`^(\d+)\s*ml\b`)
	glassPattern = regexp.MustCompile(`(\d+)\s*bardak`)
	drinkWords   = []string{"ictim", "icdim", "icim", "ictik"}
)

// ParseWaterAmount recognizes water logs that need no AI: the quick replies
// "1", "2" and "3", an amount in ml ("250 ml", "250ml içtim") and
// "N bardak" with a drink verb. The amount is not range checked; ok is
// false when the text is not a water log at all.
func ParseWaterAmount(text string) (amountML int, ok bool) {
	folded := strings.TrimSpace(utils.Fold(text))
	if ml, quick := quickWater[folded]; quick {
		return ml, true
	}

	if m := mlPattern.FindStringSubmatch(folded); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return MaxWaterML + 1, true
		}
		return n, true
	}

	if m := glassPattern.FindStringSubmatch(folded); m != nil && hasDrinkWord(folded) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > MaxWaterML {
			return MaxWaterML + 1, true
		}
		return n * glassML, true
	}
	return 0, false
}

func hasDrinkWord(s string) bool {
	for _, w := range drinkWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
