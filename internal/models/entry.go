package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Snapshot files carry walletBalance and amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// EntryKind distinguishes user expenses from synthetic daily credits.
type EntryKind string

const (
	KindExpense     EntryKind = "expense"
	KindDailyCredit EntryKind = "daily_credit"
)

// Entry represents one ledger record. ResultingBalance is the wallet
// balance immediately after the entry was applied.
type Entry struct {
	ID               int64           `json:"id"`
	Kind             EntryKind       `json:"kind"`
	Timestamp        time.Time       `json:"date"`
	Amount           decimal.Decimal `json:"amount"`
	ResultingBalance decimal.Decimal `json:"resultingBalance"`
}

// IsCredit reports whether the entry is a synthetic daily credit.
// Credits are displayed but never user-deletable.
func (e Entry) IsCredit() bool {
	return e.Kind == KindDailyCredit
}
