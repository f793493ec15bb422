package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"telegram-wallet-bot/internal/models"

	"github.com/shopspring/decimal"
)

// GenerateArchiveCSV writes a CSV report for an archived month.
func GenerateArchiveCSV(archive *models.MonthlyArchive, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	totalSpent := decimal.Zero
	totalCredited := decimal.Zero
	expenseCount := 0
	for _, e := range archive.Entries {
		if e.IsCredit() {
			totalCredited = totalCredited.Add(e.Amount)
		} else {
			totalSpent = totalSpent.Add(e.Amount)
			expenseCount++
		}
	}

	// Header section
	header := [][]string{
		{"Monthly Wallet Report"},
		{"Month", archive.MonthKey},
		{"Generated", time.Now().Format("2006-01-02 15:04:05")},
		{}, // Empty row
		{"SUMMARY"},
		{"Total Spent", totalSpent.StringFixed(2)},
		{"Total Credited", totalCredited.StringFixed(2)},
		{"Expense Count", strconv.Itoa(expenseCount)},
		{"Entry Count", strconv.Itoa(len(archive.Entries))},
		{"Final Balance", archive.FinalBalance.StringFixed(2)},
		{}, // Empty row
	}

	for _, row := range header {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	// Entries section
	if len(archive.Entries) > 0 {
		if err := csvWriter.Write([]string{"ENTRIES"}); err != nil {
			return err
		}
		if err := csvWriter.Write([]string{"Date", "Time", "Type", "Amount", "Balance After"}); err != nil {
			return err
		}

		for _, e := range archive.Entries {
			kind := "Expense"
			if e.IsCredit() {
				kind = "Daily Credit"
			}
			row := []string{
				e.Timestamp.Format("2006-01-02"),
				e.Timestamp.Format("15:04:05"),
				kind,
				e.Amount.StringFixed(2),
				e.ResultingBalance.StringFixed(2),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
	}

	return nil
}
