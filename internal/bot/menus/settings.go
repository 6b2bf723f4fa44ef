package menus

import (
	"fmt"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

func text(s string) domain.Reply { return domain.Reply{Text: s} }

func textf(format string, args ...any) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf(format, args...)}
}

// Meal times

func MealTimeUsage() domain.Reply {
	return text("❌ Kullanım: saat [kahvalti|ogle|aksam] HH:MM\nÖrnek: saat kahvalti 09:00")
}

func InvalidMealType() domain.Reply {
	return text("❌ Geçersiz öğün tipi. Kullan: kahvalti, ogle, aksam")
}

func InvalidTime() domain.Reply {
	return text("❌ Geçersiz saat formatı\nHH:MM olmalı (örn: 09:00, 13:30)")
}

func MealTimeSaved(meal domain.MealType, clock domain.ClockTime) domain.Reply {
	return textf("✅ %s saati %s olarak güncellendi!", meal.DisplayName(), clock)
}

// Timezone

func TimezoneUsage() domain.Reply {
	return text("❌ Kullanım: timezone [zaman dilimi]\n\nÖrnekler:\ntimezone Europe/Istanbul\ntimezone America/New_York\ntimezone Asia/Tokyo")
}

func InvalidTimezone(name string) domain.Reply {
	return textf("❌ Geçersiz zaman dilimi: %s\n\nÖrnek: Europe/Istanbul", name)
}

func TimezoneSaved(name string) domain.Reply {
	return textf("✅ Zaman diliminiz %s olarak güncellendi!", name)
}

// Water interval and goals

func WaterIntervalUsage() domain.Reply {
	return text("❌ Kullanım: suaraligi [dakika]\nÖrnek: suaraligi 120")
}

func InvalidWaterInterval(raw string) domain.Reply {
	return textf("❌ Geçersiz aralık: %s dakika\nLütfen %d-%d dakika arası bir değer girin.",
		raw, services.WaterIntervalMin, services.WaterIntervalMax)
}

func WaterIntervalSaved(minutes int) domain.Reply {
	return textf("✅ Su hatırlatma aralığı %d dakika (%.1f saat) olarak güncellendi!", minutes, float64(minutes)/60)
}

func WaterGoalUsage(user *database.User) domain.Reply {
	return textf("💧 *Günlük Su Hedefi*\n\nMevcut hedefiniz: %d ml\n\nDeğiştirmek için:\nsuhedefi [ml]\n\nÖrnek: suhedefi 2500", user.WaterGoal)
}

func InvalidWaterGoal(raw string) domain.Reply {
	return textf("❌ Geçersiz hedef: %s ml\nLütfen %d-%d ml arası bir değer girin.",
		raw, services.WaterGoalMin, services.WaterGoalMax)
}

func WaterGoalSaved(ml int) domain.Reply {
	return textf("✅ Günlük su hedefiniz %d ml (%.1f litre) olarak güncellendi!", ml, float64(ml)/1000)
}

func CalorieGoalUsage(user *database.User) domain.Reply {
	return textf("🎯 *Günlük Kalori Hedefi*\n\nMevcut hedefiniz: %d kcal\n\nDeğiştirmek için:\nkalorihedefi [miktar]\n\nÖrnek: kalorihedefi 2500", user.CalorieGoal)
}

func InvalidCalorieGoal() domain.Reply {
	return textf("❌ Kalori hedefi %d-%d kcal arasında olmalıdır.", services.CalorieGoalMin, services.CalorieGoalMax)
}

func CalorieGoalSaved(kcal int) domain.Reply {
	return textf("✅ Günlük kalori hedefiniz %d kcal olarak güncellendi!", kcal)
}

// Silent hours

func SilentHoursUsage(user *database.User) domain.Reply {
	return textf("🌙 *Sessiz Saatler*\n\nMevcut ayarınız: %s - %s\n\nBu saatler arasında hatırlatma gönderilmez.\n\nDeğiştirmek için:\nsessiz [başlangıç] [bitiş]\n\nÖrnek: sessiz 23:00 07:00",
		user.SilentStart, user.SilentEnd)
}

func InvalidSilentHours() domain.Reply {
	return text("❌ Geçersiz saat formatı. HH:MM formatında girin.\nÖrnek: sessiz 23:00 07:00")
}

func SilentHoursSaved(start, end domain.ClockTime) domain.Reply {
	return textf("✅ Sessiz saatleriniz %s - %s olarak güncellendi!", start, end)
}

// Text meals and favorites

func MealUsage() domain.Reply {
	return text("❌ Kullanım: ogun [yemek açıklaması]\n\nÖrnek: ogun tavuk göğsü ve salata")
}

func Favorites(favs []database.FavoriteMeal) domain.Reply {
	if len(favs) == 0 {
		return text("⭐ *Favori Yemekler*\n\nHenüz favori yok.\n\n*Ekle:*\nfavori ekle fav1 Tavuklu pilav\n\n*Kullan:*\nSadece 'fav1' yaz!")
	}

	var b strings.Builder
	b.WriteString("⭐ *Favori Yemekleriniz*\n\n")
	for _, f := range favs {
		fmt.Fprintf(&b, "• %s • %.0f kcal\n   %s\n", f.Name, f.Calories, f.Description)
	}
	b.WriteString("\n💡 Kaydet: Sadece favori adını yaz")
	return text(b.String())
}

func FavoriteAddUsage() domain.Reply {
	return text("❌ Kullanım: favori ekle [isim] [açıklama]\n\nÖrnek: favori ekle fav1 Tavuklu pilav ve salata")
}

func FavoriteDeleteUsage() domain.Reply {
	return text("❌ Kullanım: favori sil [isim]\n\nÖrnek: favori sil fav1")
}

func FavoriteUsage() domain.Reply {
	return text("❌ Geçersiz komut.\n\nKullanılabilir komutlar:\n• favori - Liste göster\n• favori ekle [isim] [açıklama]\n• favori sil [isim]")
}

func InvalidFavoriteName() domain.Reply {
	return text("❌ Favori ismi sadece harf, rakam ve _ içerebilir.")
}

func FavoriteSaved(fav *database.FavoriteMeal) domain.Reply {
	return textf("✅ *Favori eklendi!*\n\n%s • %.0f kcal\n%s\n\n💡 Kaydet: Sadece '%s' yaz",
		fav.Name, fav.Calories, fav.Description, fav.Name)
}

func FavoriteAnalysisFailed() domain.Reply {
	return text("❌ Favori için kalori hesaplanamadı, kaydedilmedi.\nLütfen biraz sonra tekrar dene.")
}

func FavoriteDeleted(name string) domain.Reply {
	return textf("✅ '%s' favorilerden silindi.", name)
}

func FavoriteNotFound(name string) domain.Reply {
	return textf("❌ '%s' bulunamadı\n\nEklemek için:\nfavori ekle %s [açıklama]", name, name)
}
