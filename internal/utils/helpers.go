package utils

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// ValidateAmount validates and parses an expense amount from message text.
func ValidateAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", ".")

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format")
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

// BuildDeleteKeyboard builds the inline delete button attached to an
// expense confirmation message.
func BuildDeleteKeyboard(entryID int64) tgbotapi.InlineKeyboardMarkup {
	deleteBtn := tgbotapi.NewInlineKeyboardButtonData(
		"🗑️ Delete Expense",
		fmt.Sprintf("delete_%d", entryID),
	)
	row := []tgbotapi.InlineKeyboardButton{deleteBtn}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
