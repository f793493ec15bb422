package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-wallet-bot/internal/models"

	"github.com/shopspring/decimal"
)

// Snapshot is the export/import backup format. It round-trips: importing
// an exported snapshot reproduces the same entry list and balance.
type Snapshot struct {
	Expenses      []models.Entry  `json:"expenses"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	LastUpdate    time.Time       `json:"lastUpdate"`
}

// ExportSnapshot captures the full active ledger as an immutable value.
func (l *Ledger) ExportSnapshot(ctx context.Context) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]models.Entry, len(l.entries))
	copy(entries, l.entries)
	return Snapshot{
		Expenses:      entries,
		WalletBalance: l.wallet.Balance,
		LastUpdate:    l.now(ctx),
	}
}

// ImportSnapshot replaces the active entry store and wallet wholesale.
// The payload is shape-checked before any write; archives are untouched.
// The clear-and-repopulate sequence is not transactional, so a store
// failure mid-import leaves partial state behind.
func (l *Ledger) ImportSnapshot(ctx context.Context, data []byte) error {
	var payload struct {
		Expenses      *[]models.Entry  `json:"expenses"`
		WalletBalance *decimal.Decimal `json:"walletBalance"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if payload.Expenses == nil || payload.WalletBalance == nil {
		return ErrInvalidFormat
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now(ctx)
	if err := l.store.ClearEntries(ctx); err != nil {
		return fmt.Errorf("%w: clear entries: %v", ErrPersistence, err)
	}
	for _, e := range *payload.Expenses {
		if err := l.store.AddEntry(ctx, e); err != nil {
			return fmt.Errorf("%w: import entry %d: %v", ErrPersistence, e.ID, err)
		}
	}
	wallet := models.WalletState{Balance: *payload.WalletBalance, LastUpdated: now}
	if err := l.store.PutWallet(ctx, wallet); err != nil {
		return fmt.Errorf("%w: save wallet: %v", ErrPersistence, err)
	}

	entries := make([]models.Entry, len(*payload.Expenses))
	copy(entries, *payload.Expenses)
	sortNewestFirst(entries)
	l.entries = entries
	l.wallet = wallet
	return nil
}
