package menus

import (
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/services"
)

func OnboardingWelcome() domain.Reply {
	return text(`🍽️ *Beslenme Takip Onboarding'i Başlatıyoruz!*

Sizin için kişiselleştirilmiş beslenme takibi yapacağım.

📅 *Öğün Saatlerinizi Öğrenmem Gerekiyor:*
• Kahvaltı zamanınız
• Öğle yemeği zamanınız
• Akşam yemeği zamanınız

Bu bilgiler sayesinde size hatırlatmalar gönderebilirim.

*Kahvaltı saatiniz nedir?* (Örnek: 09:00)`)
}

func OnboardingInvalid() domain.Reply {
	return text("❌ *Geçersiz saat formatı*\n\nLütfen HH:MM formatında girin.\nÖrnek: 09:00, 13:30, 19:45")
}

// OnboardingStep answers a stored onboarding time with the next question,
// or with the summary once every meal time is known
func OnboardingStep(res *services.OnboardingResult) domain.Reply {
	switch {
	case res.Completed:
		return textf(`🎉 *Onboarding Tamamlandı!*

✅ Kahvaltı: %s
✅ Öğle: %s
✅ Akşam: %s

Artık beslenme takibinizi başlatabilirsiniz!

📸 *Yemek fotoğrafı gönderin* - Kalori analizi
💧 *'250 ml su içtim'* - Su takibi
📊 *'rapor'* - Günlük rapor

İyi beslenmeler! 🥗`, res.Breakfast, res.Lunch, res.Clock)
	case res.Next == services.StepLunchTime:
		return textf("✅ *Kahvaltı saati kaydedildi:* %s\n\nŞimdi öğle yemeği saatinizi öğrenebilir miyim?\n(Örnek: 13:00)", res.Clock)
	default:
		return textf("✅ *Öğle yemeği saati kaydedildi:* %s\n\nSon olarak akşam yemeği saatinizi öğrenebilir miyim?\n(Örnek: 19:00)", res.Clock)
	}
}
