package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyArchive holds a completed month's entries. Keyed by MonthKey
// ("MM-YYYY"), written once per month and immutable afterwards.
type MonthlyArchive struct {
	MonthKey     string          `json:"monthKey"`
	Entries      []Entry         `json:"entries"`
	FinalBalance decimal.Decimal `json:"finalBalance"`
	ArchivedAt   time.Time       `json:"archivedAt"`
}
