package menus

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

const barCells = 10

var weekdays = [...]string{"Paz", "Pzt", "Sal", "Çar", "Per", "Cum", "Cmt"}

// ProgressBar renders current/goal as ten cells and the percentage, capped at 100
func ProgressBar(current, goal float64) (string, int) {
	pct := 0
	if goal > 0 {
		pct = int(current / goal * 100)
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	filled := pct / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled), pct
}

// Motivation picks the closing line of the daily report
func Motivation(calories float64, waterML int) string {
	const recommendedWater = 2000
	waterPct := waterML * 100 / recommendedWater

	switch {
	case waterPct >= 100 && calories >= 1500 && calories <= 2500:
		return "🎉 Harika! Hem kalori hedefinde hem de su tüketiminde başarılı!"
	case waterPct < 50:
		return "💧 Su tüketimine dikkat et! Daha fazla su içmeyi unutma."
	case calories < 1200:
		return "🍽️ Kalori alımın düşük. Yeterli beslenmeye dikkat et."
	case calories > 3000:
		return "⚠️ Kalori alımın yüksek. Porsiyonlara dikkat edebilirsin."
	default:
		return "👍 İyi gidiyorsun! Böyle devam et."
	}
}

func DailyReport(stats domain.DailyStats, user *database.User) domain.Reply {
	calBar, calPct := ProgressBar(stats.Calories, float64(user.CalorieGoal))
	waterBar, waterPct := ProgressBar(float64(stats.WaterML), float64(user.WaterGoal))

	text := fmt.Sprintf(`📊 *Günlük Rapor*

🔥 Kalori
%s
%.0f/%d kcal (%d%%)

💧 Su
%s
%d/%d ml (%d%%)

🍽️ Öğün Sayısı: %d
📝 Su Kayıt: %d

%s`,
		calBar, stats.Calories, user.CalorieGoal, calPct,
		waterBar, stats.WaterML, user.WaterGoal, waterPct,
		stats.MealCount, stats.WaterCount,
		Motivation(stats.Calories, stats.WaterML))
	return domain.Reply{Text: text}
}

// History lists meals newest first, times in loc
func History(meals []database.Meal, loc *time.Location) domain.Reply {
	if len(meals) == 0 {
		return domain.Reply{Text: "📜 Henüz kayıtlı öğün yok."}
	}

	var b strings.Builder
	b.WriteString("📜 *Son 5 Öğün*\n\n")
	for i, m := range meals {
		fmt.Fprintf(&b, "%d. %s • %.0f kcal\n%s\n%s\n\n",
			i+1,
			domain.MealType(m.MealType).DisplayName(),
			m.Calories,
			m.Description,
			m.CreatedAt.In(loc).Format("02.01 15:04"))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}
}

// Weekly lists one line per day with the week's average
func Weekly(days []domain.DayTotal, user *database.User) domain.Reply {
	var b strings.Builder
	b.WriteString("📅 *Son 7 Gün*\n\n")

	var totalCal float64
	var totalWater int
	for _, d := range days {
		totalCal += d.Calories
		totalWater += d.WaterML
		fmt.Fprintf(&b, "%s %s • 🔥 %.0f kcal • 💧 %d ml\n",
			d.Date.Format("02.01"), weekdays[d.Date.Weekday()], d.Calories, d.WaterML)
	}

	if n := len(days); n > 0 {
		fmt.Fprintf(&b, "\n📈 Ortalama: %.0f kcal • %d ml\n🎯 Hedef: %d kcal • %d ml",
			totalCal/float64(n), totalWater/n, user.CalorieGoal, user.WaterGoal)
	}
	return domain.Reply{Text: b.String()}
}

// MealSaved confirms a stored meal. imageCount is shown for photos only.
func MealSaved(res *services.MealResult, imageCount, imageLimit int) domain.Reply {
	text := fmt.Sprintf("✅ *%s Kaydedildi!*\n\n📝 %s\n🔥 %.0f kcal",
		res.Type.DisplayName(),
		res.Meal.Description,
		res.Meal.Calories)
	if res.Today != nil {
		text += fmt.Sprintf("\n\n📊 Bugün: %.0f kcal (%d öğün)", res.Today.Calories, res.Today.MealCount)
	}
	if imageCount > 0 {
		text += fmt.Sprintf("\n📸 Resim: %d/%d", imageCount, imageLimit)
	}
	return domain.Reply{Text: text}
}

func WaterSaved(res *services.WaterResult) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf("💧 *%d ml kaydedildi!*\n\nBugün: %d ml / %d ml\nKalan: %d ml\n\n💡 Hızlıca kaydet: 250 ml su içtim",
		res.AmountML, res.TodayML, res.Goal, res.Remaining())}
}

func InvalidWater() domain.Reply {
	return domain.Reply{Text: fmt.Sprintf("❌ Geçersiz miktar.\nLütfen %d-%d ml arası bir değer gir.\n\nÖrnek: 250 ml içtim",
		services.MinWaterML, services.MaxWaterML)}
}

func AnalysisFailed() domain.Reply {
	return domain.Reply{Text: "❌ Analiz yapılamadı.\nLütfen daha detaylı açıkla veya fotoğraf gönder."}
}

func ImageAnalysisFailed() domain.Reply {
	return domain.Reply{Text: "❌ Resim analiz edilemedi. Tekrar dene."}
}

func ImageLimit(limit int) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf("⚠️ *Günlük resim limiti* (%d/%d)\n\nYarın tekrar fotoğraf gönderebilirsin.\nBugün için: ogun tavuk göğsü ve salata",
		limit, limit)}
}

func Advice(text string) domain.Reply {
	return domain.Reply{Text: "💡 *Beslenme Tavsiyesi*\n\n" + text}
}

func AdviceUnavailable() domain.Reply {
	return domain.Reply{Text: "⚠️ Şu anda tavsiye alınamıyor. Lütfen daha sonra tekrar deneyin."}
}
