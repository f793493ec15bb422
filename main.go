package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-wallet-bot/internal/clock"
	"telegram-wallet-bot/internal/config"
	"telegram-wallet-bot/internal/handlers"
	"telegram-wallet-bot/internal/ledger"
	"telegram-wallet-bot/internal/scheduler"
	"telegram-wallet-bot/internal/storage/mongo"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// Load configuration
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid LEDGER_TIMEZONE:", err)
	}

	// Initialize database
	ctx := context.Background()
	store, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to initialize MongoDB:", err)
	}
	defer store.Close(ctx)

	// Build the ledger and catch it up before serving anything
	clk := clock.NewRemote(cfg.TimeAPIURL, loc)
	wallet := ledger.New(store, clk, cfg.DailyAddition, loc)
	if err := wallet.Load(ctx); err != nil {
		log.Fatal("Failed to load ledger:", err)
	}
	if err := wallet.CheckAndArchive(ctx); err != nil {
		log.Println("Startup archive check failed:", err)
	}
	log.Printf("Ledger loaded: balance %s, %d entries",
		wallet.Balance().StringFixed(2), len(wallet.Entries()))

	// Create Telegram bot
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal("Failed to create Telegram bot:", err)
	}

	bot.Debug = false
	log.Printf("Bot started: %s", bot.Self.UserName)

	// Background reconciliation: hourly credit/archive pass, minute time refresh
	sched := scheduler.New(ctx, wallet, clk)
	if err := sched.RegisterAll(); err != nil {
		log.Fatal("Failed to register cron jobs:", err)
	}
	sched.Start()
	defer sched.Stop()

	// Set up handlers
	eventHandler := handlers.NewEventHandler(wallet, cfg, sched)

	fmt.Println("Bot is running...")

	// Start listening for updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	// Handle updates
	go func() {
		for update := range updates {
			if update.Message != nil {
				eventHandler.HandleMessage(bot, update.Message)
			} else if update.CallbackQuery != nil {
				eventHandler.HandleCallbackQuery(bot, update.CallbackQuery)
			}
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	fmt.Println("Shutting down bot...")
}
