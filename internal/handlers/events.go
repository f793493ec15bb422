package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"telegram-wallet-bot/internal/config"
	"telegram-wallet-bot/internal/ledger"
	"telegram-wallet-bot/internal/scheduler"
	"telegram-wallet-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Snapshot uploads larger than this are rejected outright.
const maxImportSize = 10 << 20

// EventHandler handles Telegram events
type EventHandler struct {
	ledger   *ledger.Ledger
	config   *config.Config
	sched    *scheduler.Scheduler
	commands *CommandHandler
}

// NewEventHandler creates a new event handler
func NewEventHandler(l *ledger.Ledger, config *config.Config, sched *scheduler.Scheduler) *EventHandler {
	return &EventHandler{
		ledger:   l,
		config:   config,
		sched:    sched,
		commands: NewCommandHandler(l, config, sched),
	}
}

// HandleMessage handles incoming messages
func (h *EventHandler) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	// Ignore messages from bots
	if message.From.IsBot {
		return
	}

	// Only process messages from the configured chat
	if !h.config.IsAuthorizedChat(message.Chat.ID) {
		return
	}

	// Handle commands
	if message.IsCommand() {
		h.handleCommand(bot, message)
		return
	}

	// A JSON document upload is a snapshot import
	if message.Document != nil {
		h.handleImportDocument(bot, message)
		return
	}

	// Try to parse as expense amount
	h.handleNewExpense(bot, message)
}

// handleCommand processes bot commands
func (h *EventHandler) handleCommand(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	switch message.Command() {
	case "balance":
		h.commands.SendBalance(bot, message.Chat.ID)
	case "history":
		h.commands.SendHistory(bot, message.Chat.ID)
	case "archives":
		h.commands.SendArchiveList(bot, message.Chat.ID)
	case "month":
		h.commands.SendArchivedMonth(bot, message.Chat.ID, message.Text)
	case "export":
		h.commands.ExportData(bot, message.Chat.ID, message.Text)
	case "status":
		h.commands.SendStatus(bot, message.Chat.ID)
	case "help", "start":
		h.commands.SendHelp(bot, message.Chat.ID)
	}
}

// handleNewExpense records an expense from a plain amount message
func (h *EventHandler) handleNewExpense(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	amount, err := utils.ValidateAmount(message.Text)
	if err != nil {
		// Not a valid amount, ignore
		return
	}

	entry, err := h.ledger.AddExpense(h.sched.Ctx, amount)
	if err != nil {
		log.Println("Failed to add expense:", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Failed to save expense. Please try again.")
		bot.Send(msg)
		return
	}

	content := fmt.Sprintf("Spent %s$ — wallet balance: %s$",
		entry.Amount.StringFixed(2), entry.ResultingBalance.StringFixed(2))
	msg := tgbotapi.NewMessage(message.Chat.ID, content)
	keyboard := utils.BuildDeleteKeyboard(entry.ID)
	msg.ReplyMarkup = keyboard
	bot.Send(msg)
}

// handleImportDocument restores the ledger from an uploaded snapshot file
func (h *EventHandler) handleImportDocument(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	if message.Document.FileSize > maxImportSize {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Backup file is too large.")
		bot.Send(msg)
		return
	}

	url, err := bot.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		log.Println("Failed to resolve uploaded file:", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Could not download the backup file.")
		bot.Send(msg)
		return
	}

	resp, err := http.Get(url)
	if err != nil {
		log.Println("Failed to download snapshot:", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Could not download the backup file.")
		bot.Send(msg)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize))
	if err != nil {
		log.Println("Failed to read snapshot:", err)
		msg := tgbotapi.NewMessage(message.Chat.ID, "Could not read the backup file.")
		bot.Send(msg)
		return
	}

	if err := h.ledger.ImportSnapshot(h.sched.Ctx, data); err != nil {
		log.Println("Snapshot import failed:", err)
		text := "Import failed. Please try again."
		if errors.Is(err, ledger.ErrInvalidFormat) {
			text = "Invalid backup file format."
		}
		msg := tgbotapi.NewMessage(message.Chat.ID, text)
		bot.Send(msg)
		return
	}

	content := fmt.Sprintf("Data imported successfully! Wallet balance: %s$",
		h.ledger.Balance().StringFixed(2))
	msg := tgbotapi.NewMessage(message.Chat.ID, content)
	bot.Send(msg)
}

// HandleCallbackQuery handles inline button callbacks
func (h *EventHandler) HandleCallbackQuery(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) {
	// Only process callbacks from the configured chat
	if !h.config.IsAuthorizedChat(callback.Message.Chat.ID) {
		return
	}

	if strings.HasPrefix(callback.Data, "delete_") {
		h.handleExpenseDeletion(bot, callback)
	}

	// Answer the callback to remove loading state
	callbackConfig := tgbotapi.NewCallback(callback.ID, "")
	bot.Request(callbackConfig)
}

// handleExpenseDeletion handles expense deletion via callback
func (h *EventHandler) handleExpenseDeletion(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) {
	idStr := strings.TrimPrefix(callback.Data, "delete_")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	if err := h.ledger.DeleteExpense(h.sched.Ctx, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			msg := tgbotapi.NewMessage(callback.Message.Chat.ID, "Entry not found or not deletable.")
			bot.Send(msg)
			return
		}
		log.Println("Failed to delete expense:", err)
		msg := tgbotapi.NewMessage(callback.Message.Chat.ID, "Error deleting expense. Please try again.")
		bot.Send(msg)
		return
	}

	// Remove the expense message now that the entry is gone
	deleteMsg := tgbotapi.NewDeleteMessage(callback.Message.Chat.ID, callback.Message.MessageID)
	bot.Request(deleteMsg)

	content := fmt.Sprintf("Deleted expense — wallet balance: %s$", h.ledger.Balance().StringFixed(2))
	msg := tgbotapi.NewMessage(callback.Message.Chat.ID, content)
	bot.Send(msg)
}
