package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
)

func main() {
	fmt.Println("🔍 Yapılandırma kontrol ediliyor...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env dosyası bulunamadı: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Yapılandırma geçersiz:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Yapılandırma geçerli!")
	fmt.Printf("📋 Ayrıntılar:\n")
	fmt.Printf("  - WhatsApp Provider: %s\n", cfg.WhatsApp.Provider)
	fmt.Printf("  - WhatsApp Timeout: %s\n", cfg.WhatsApp.Timeout)
	switch cfg.WhatsApp.Provider {
	case config.ProviderBird:
		fmt.Printf("  - Bird API Key: %s\n", maskToken(cfg.Bird.APIKey))
		fmt.Printf("  - Bird Workspace: %s\n", cfg.Bird.WorkspaceID)
		fmt.Printf("  - Bird Channel: %s\n", cfg.Bird.ChannelID)
	case config.ProviderMeta:
		fmt.Printf("  - Meta Access Token: %s\n", maskToken(cfg.Meta.AccessToken))
		fmt.Printf("  - Meta Phone Number ID: %s\n", cfg.Meta.PhoneNumberID)
		fmt.Printf("  - Meta Verify Token: %s\n", maskToken(cfg.Meta.VerifyToken))
	}
	fmt.Printf("  - OpenRouter API Key: %s\n", maskToken(cfg.OpenRouter.APIKey))
	fmt.Printf("  - OpenRouter Model: %s\n", cfg.OpenRouter.Model)
	fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.Gemini.APIKey))
	fmt.Printf("  - AI Timeout: %s\n", cfg.AI.Timeout)
	fmt.Printf("  - DB Driver: %s\n", cfg.DB.Driver)
	if cfg.DB.Driver == config.DriverSQLite {
		fmt.Printf("  - SQLite Path: %s\n", cfg.DB.SqlitePath)
	} else if cfg.DB.URL != "" {
		fmt.Printf("  - DB URL: %s\n", maskToken(cfg.DB.URL))
	} else {
		fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
		fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
		fmt.Printf("  - DB User: %s\n", cfg.DB.User)
		fmt.Printf("  - DB Name: %s\n", cfg.DB.Name)
	}
	fmt.Printf("  - Redis: %s\n", orUnset(cfg.Redis.Addr))
	fmt.Printf("  - RabbitMQ: %s\n", maskToken(cfg.RabbitMQ.URL))
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - OTLP Endpoint: %s\n", orUnset(cfg.OTLPEndpoint))
	fmt.Printf("  - HTTP Addr: %s\n", cfg.HTTP.Addr)
	fmt.Printf("  - Workers: %d\n", cfg.Bot.Workers)
	fmt.Printf("  - Image Daily Limit: %d\n", cfg.Bot.ImageDailyLimit)
	fmt.Printf("  - Log Level: %s\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.Output)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<ayarlanmadı>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(v string) string {
	if v == "" {
		return "<ayarlanmadı>"
	}
	return v
}
