package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletState is the single running balance of the ledger.
// It is persisted after every credit or debit.
type WalletState struct {
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"lastUpdated"`
}
