package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"telegram-wallet-bot/internal/clock"
	"telegram-wallet-bot/internal/config"
	"telegram-wallet-bot/internal/ledger"
	"telegram-wallet-bot/internal/scheduler"
	"telegram-wallet-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyLimit = 30

// CommandHandler handles bot commands
type CommandHandler struct {
	ledger *ledger.Ledger
	config *config.Config
	sched  *scheduler.Scheduler
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(l *ledger.Ledger, config *config.Config, sched *scheduler.Scheduler) *CommandHandler {
	return &CommandHandler{
		ledger: l,
		config: config,
		sched:  sched,
	}
}

// SendBalance sends the current wallet balance
func (h *CommandHandler) SendBalance(bot *tgbotapi.BotAPI, chatID int64) {
	wallet := h.ledger.Wallet()

	var text string
	text += "💰 **WALLET**\n"
	text += fmt.Sprintf("Balance: **%s$**\n", wallet.Balance.StringFixed(2))
	text += fmt.Sprintf("Last updated: %s\n", wallet.LastUpdated.Format("Jan 2, 15:04"))
	text += fmt.Sprintf("Daily allowance: %s$", h.config.DailyAddition.StringFixed(2))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	bot.Send(msg)
}

// SendStatus reports the time source so degraded (offline) mode is visible
func (h *CommandHandler) SendStatus(bot *tgbotapi.BotAPI, chatID int64) {
	reading := h.sched.LastReading()

	var text string
	text += fmt.Sprintf("🕐 Current time: %s\n", reading.Time.Format("2006-01-02 15:04:05"))
	if reading.Source == clock.SourceLocal {
		text += "⚠️ Using local clock (offline mode)"
	} else {
		text += "✅ Synced with remote time service"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	bot.Send(msg)
}

// SendHistory sends the active entry list, newest first
func (h *CommandHandler) SendHistory(bot *tgbotapi.BotAPI, chatID int64) {
	entries := h.ledger.Entries()
	if len(entries) == 0 {
		msg := tgbotapi.NewMessage(chatID, "No entries this month.")
		bot.Send(msg)
		return
	}

	shown := entries
	if len(shown) > historyLimit {
		shown = shown[:historyLimit]
	}

	historyText := "**📜 Current Month:**\n"
	for i, e := range shown {
		timeStr := e.Timestamp.Format("Jan 2, 15:04")
		if e.IsCredit() {
			historyText += fmt.Sprintf("%d. **+%s$** (Daily) → %s$ - %s\n",
				i+1, e.Amount.StringFixed(2), e.ResultingBalance.StringFixed(2), timeStr)
		} else {
			historyText += fmt.Sprintf("%d. **-%s$** → %s$ - %s\n",
				i+1, e.Amount.StringFixed(2), e.ResultingBalance.StringFixed(2), timeStr)
		}
	}
	if len(entries) > historyLimit {
		historyText += fmt.Sprintf("\n…and %d older entries", len(entries)-historyLimit)
	}

	msg := tgbotapi.NewMessage(chatID, historyText)
	msg.ParseMode = "Markdown"
	bot.Send(msg)
}

// SendArchiveList lists the archived months
func (h *CommandHandler) SendArchiveList(bot *tgbotapi.BotAPI, chatID int64) {
	keys, err := h.ledger.ArchiveKeys(h.sched.Ctx)
	if err != nil {
		log.Println("Failed to list archives:", err)
		msg := tgbotapi.NewMessage(chatID, "Error fetching archives.")
		bot.Send(msg)
		return
	}

	if len(keys) == 0 {
		msg := tgbotapi.NewMessage(chatID, "No archived months yet.")
		bot.Send(msg)
		return
	}

	text := "**🗂 Archived Months:**\n"
	for _, key := range keys {
		text += fmt.Sprintf("• %s\n", key)
	}
	text += "\nUse /month MM-YYYY to view one."

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	bot.Send(msg)
}

// SendArchivedMonth shows the entries of one archived month
func (h *CommandHandler) SendArchivedMonth(bot *tgbotapi.BotAPI, chatID int64, commandText string) {
	key, ok := parseMonthKey(commandText)
	if !ok {
		msg := tgbotapi.NewMessage(chatID, "Usage: /month MM-YYYY (e.g. /month 07-2026)")
		bot.Send(msg)
		return
	}

	archive, err := h.ledger.LoadArchivedMonth(h.sched.Ctx, key)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("No archive found for %s", key))
			bot.Send(msg)
			return
		}
		log.Println("Failed to load archive:", err)
		msg := tgbotapi.NewMessage(chatID, "Error loading archive.")
		bot.Send(msg)
		return
	}

	text := fmt.Sprintf("**🗂 %s** (final balance %s$)\n", archive.MonthKey, archive.FinalBalance.StringFixed(2))
	for i, e := range archive.Entries {
		sign := "-"
		if e.IsCredit() {
			sign = "+"
		}
		text += fmt.Sprintf("%d. %s%s$ → %s$ - %s\n",
			i+1, sign, e.Amount.StringFixed(2), e.ResultingBalance.StringFixed(2),
			e.Timestamp.Format("Jan 2, 15:04"))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	bot.Send(msg)
}

// ExportData sends a JSON snapshot of the active ledger, or a CSV report
// for an archived month when a month key argument is given.
func (h *CommandHandler) ExportData(bot *tgbotapi.BotAPI, chatID int64, commandText string) {
	args := strings.Fields(commandText)

	if len(args) >= 2 {
		key, ok := parseMonthKey(commandText)
		if !ok {
			msg := tgbotapi.NewMessage(chatID, "Usage: /export or /export MM-YYYY")
			bot.Send(msg)
			return
		}
		h.exportArchiveCSV(bot, chatID, key)
		return
	}

	snapshot := h.ledger.ExportSnapshot(h.sched.Ctx)
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Println("Failed to encode snapshot:", err)
		msg := tgbotapi.NewMessage(chatID, "Failed to generate backup.")
		bot.Send(msg)
		return
	}

	document := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("wallet-backup-%s.json", time.Now().Format("2006-01-02")),
		Bytes: data,
	}
	documentMsg := tgbotapi.NewDocument(chatID, document)
	documentMsg.Caption = fmt.Sprintf("💾 Wallet backup — %d entries, balance %s$\nUpload this file to restore.",
		len(snapshot.Expenses), snapshot.WalletBalance.StringFixed(2))
	if _, err := bot.Send(documentMsg); err != nil {
		log.Println("Failed to send backup file:", err)
	}
}

func (h *CommandHandler) exportArchiveCSV(bot *tgbotapi.BotAPI, chatID int64, key string) {
	archive, err := h.ledger.LoadArchivedMonth(h.sched.Ctx, key)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("No archive found for %s", key))
			bot.Send(msg)
			return
		}
		log.Println("Failed to load archive:", err)
		msg := tgbotapi.NewMessage(chatID, "Error loading archive.")
		bot.Send(msg)
		return
	}

	var buffer bytes.Buffer
	if err := utils.GenerateArchiveCSV(archive, &buffer); err != nil {
		log.Printf("Failed to generate CSV: %v", err)
		msg := tgbotapi.NewMessage(chatID, "CSV generation failed. Data is still archived in database.")
		bot.Send(msg)
		return
	}

	document := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("wallet_%s.csv", key),
		Bytes: buffer.Bytes(),
	}
	documentMsg := tgbotapi.NewDocument(chatID, document)
	documentMsg.Caption = fmt.Sprintf("📊 Archived month %s — %d entries", key, len(archive.Entries))
	if _, err := bot.Send(documentMsg); err != nil {
		log.Printf("Failed to send CSV file: %v", err)
	}
}

// SendHelp sends help information
func (h *CommandHandler) SendHelp(bot *tgbotapi.BotAPI, chatID int64) {
	helpText := `**💰 Wallet Bot**

**Basic Commands:**
• /balance - Show wallet balance
• /history - Show this month's entries
• /status - Time source and offline mode
• /help - Show this help

**Archives:**
• /archives - List archived months
• /month MM-YYYY - Show an archived month

**Backup:**
• /export - Download a JSON backup
• /export MM-YYYY - Download an archive as CSV
• Upload a backup file to restore it

**Adding Expenses:**
• Send a number (e.g. 25.50) to spend it
• Use the delete button to undo an expense

**How it works:**
1. Every day the wallet is credited a fixed allowance
2. Allowance accrual starts on day 3 of each month
3. On day 3 the previous month is archived automatically
4. Daily credits are system entries and cannot be deleted`

	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ParseMode = "Markdown"
	bot.Send(msg)
}

// parseMonthKey extracts an "MM-YYYY" argument from command text.
func parseMonthKey(commandText string) (string, bool) {
	args := strings.Fields(commandText)
	if len(args) < 2 {
		return "", false
	}
	arg := args[1]
	if len(arg) != 7 {
		return "", false
	}
	if _, err := time.Parse("01-2006", arg); err != nil {
		return "", false
	}
	return arg, true
}
