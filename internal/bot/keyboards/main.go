package keyboards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

// WaterButtonPrefix marks the ids of the water menu rows
const WaterButtonPrefix = "water_"

var waterAmounts = []int{200, 250, 500}

// WaterMenu creates the quick water logging list
func WaterMenu() domain.Reply {
	buttons := make([]domain.Button, 0, len(waterAmounts))
	for i, ml := range waterAmounts {
		buttons = append(buttons, domain.Button{
			ID:          fmt.Sprintf("%s%d", WaterButtonPrefix, ml),
			Title:       fmt.Sprintf("💧 %d ml", ml),
			Description: fmt.Sprintf("veya %d yaz", i+1),
		})
	}
	return domain.Reply{
		Header:  "Su Kaydı",
		Text:    "💧 *Su Kaydı*\n\nNe kadar su içtin?",
		Buttons: buttons,
	}
}

// ButtonText turns a pressed button id into the text the user could have typed.
// Unknown ids are returned unchanged.
func ButtonText(id string) string {
	if ml, ok := strings.CutPrefix(id, WaterButtonPrefix); ok {
		if n, err := strconv.Atoi(ml); err == nil && n > 0 {
			return fmt.Sprintf("%d ml içtim", n)
		}
	}
	return id
}

// FallbackText renders a reply with buttons for channels without interactive messages
func FallbackText(reply domain.Reply) string {
	if len(reply.Buttons) == 0 {
		return reply.Text
	}
	var b strings.Builder
	b.WriteString(reply.Text)
	b.WriteString("\n")
	for i, btn := range reply.Buttons {
		fmt.Fprintf(&b, "\n%d️⃣ %s", i+1, btn.Title)
	}
	return b.String()
}
