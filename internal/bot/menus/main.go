package menus

import (
	"fmt"
	"strings"

	"github.com/vladimiradmaev/nutrition-bot/internal/database"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
)

const notSet = "Ayarlanmamış"

// Help lists every command
func Help() domain.Reply {
	return domain.Reply{Text: `📱 *Beslenme Takip Botu*

*🍽️ Nasıl Kullanılır?*
• Yemek fotoğrafı gönder
• ogun [açıklama] - Text ile kaydet
• su - Hızlı su kaydı menüsü 💧
• 250 ml içtim - Direkt su takibi

*📊 Ana Komutlar*
rapor - Günlük özet (progress bar)
geçmiş - Son 5 öğün
haftalik - Son 7 gün
tavsiye - AI beslenme önerisi
ayarlar - Tüm ayarlar
kurulum - Öğün saatlerini ayarla

*⭐ Favori Yemekler*
favori - Liste görüntüle
favori ekle fav1 Tavuklu pilav
favori sil fav1
fav1 - Hızlı kayıt

*🎯 Hedefler*
kalorihedefi 2500
suhedefi 3000
sessiz 23:00 07:00

*⚙️ Ayarlar*
saat kahvalti 09:00
suaraligi 120
timezone Europe/Istanbul

*💡 İpucu:* Komutlarda '/' kullanmana gerek yok!`}
}

func Paused() domain.Reply {
	return domain.Reply{Text: "⏸️ Hesabın şu anda duraklatılmış. Tekrar aktif olduğunda mesajlarını işleyebilirim."}
}

func TryAgain() domain.Reply {
	return domain.Reply{Text: "⚠️ Bir sorun oluştu, kaydın yapılamadı. Lütfen biraz sonra tekrar dene."}
}

// Settings shows the user's current configuration. silentNow marks the
// quiet window as active.
func Settings(user *database.User, silentNow bool) domain.Reply {
	text := fmt.Sprintf(`⚙️ *Ayarlarınız*

🕐 *Öğün Saatleri*
Kahvaltı: %s %s
Öğle: %s %s
Akşam: %s %s

🎯 *Günlük Hedefler*
%d kcal kalori
%d ml su (%.1fL)

💧 *Su Hatırlatma*
%s Her %d dakika

🌙 *Sessiz Saatler*
%s - %s%s

🌍 *Zaman Dilimi*
%s

*Değiştirmek için:*
kalorihedefi 2500
suhedefi 3000
sessiz 23:00 07:00
saat kahvalti 09:00
suaraligi 120
timezone Europe/Istanbul`,
		valueOr(user.BreakfastTime), check(user.BreakfastReminder),
		valueOr(user.LunchTime), check(user.LunchReminder),
		valueOr(user.DinnerTime), check(user.DinnerReminder),
		user.CalorieGoal,
		user.WaterGoal, float64(user.WaterGoal)/1000,
		check(user.WaterReminder), user.WaterReminderInterval,
		user.SilentStart, user.SilentEnd, activeMark(silentNow),
		user.Timezone,
	)
	return domain.Reply{Text: text}
}

// Suggestion asks whether the mistyped token meant command
func Suggestion(token, command string) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf(
		"🤔 *%s* komutunu bulamadım.\n\n*%s* mı demek istedin?\n\n1️⃣ Evet\n0️⃣ Hayır", token, command)}
}

func Cancelled() domain.Reply {
	return domain.Reply{Text: "❌ İptal edildi. Yardım için *yardim* yazabilirsin."}
}

func valueOr(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return notSet
	}
	return *v
}

func activeMark(on bool) string {
	if on {
		return " (şu an aktif)"
	}
	return ""
}

func check(on bool) string {
	if on {
		return "✅"
	}
	return "❌"
}
