package config

import (
	"log"
	"os"
	"strconv"

	"telegram-wallet-bot/internal/clock"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken string
	MongoURI      string
	MongoDB       string
	ChatID        int64

	// DailyAddition is the fixed allowance credited per day.
	DailyAddition decimal.Decimal
	// Timezone is the canonical zone for all day-boundary math.
	Timezone   string
	TimeAPIURL string
}

// Load loads configuration from environment variables
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it.")
	}

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		log.Fatal("Invalid TELEGRAM_CHAT_ID:", err)
	}

	daily := decimal.NewFromInt(50)
	if v := os.Getenv("DAILY_ADDITION"); v != "" {
		daily, err = decimal.NewFromString(v)
		if err != nil || !daily.IsPositive() {
			log.Fatal("Invalid DAILY_ADDITION:", v)
		}
	}

	timezone := os.Getenv("LEDGER_TIMEZONE")
	if timezone == "" {
		timezone = "Asia/Riyadh"
	}

	// The default endpoint follows the ledger timezone so the remote
	// wall-clock string is parsed in the same zone it was requested for.
	timeURL := os.Getenv("TIME_API_URL")
	if timeURL == "" {
		timeURL = clock.DefaultURL(timezone)
	}

	config := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDB:       os.Getenv("MONGODB_DB"),
		ChatID:        chatID,
		DailyAddition: daily,
		Timezone:      timezone,
		TimeAPIURL:    timeURL,
	}

	// Validate required fields
	if config.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}
	if config.MongoURI == "" {
		log.Fatal("MONGODB_URI not set")
	}
	if config.MongoDB == "" {
		log.Fatal("MONGODB_DB not set")
	}
	if config.ChatID == 0 {
		log.Fatal("TELEGRAM_CHAT_ID not set")
	}

	return config
}

// IsAuthorizedChat checks whether a message came from the configured chat.
func (c *Config) IsAuthorizedChat(chatID int64) bool {
	return chatID == c.ChatID
}
