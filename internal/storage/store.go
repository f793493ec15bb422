// Package storage defines the persistence interface for the wallet ledger:
// a single wallet row, entries keyed by id, and monthly archives keyed by
// month. No cross-table transaction is guaranteed; callers compensate.
package storage

import (
	"context"

	"telegram-wallet-bot/internal/models"
)

// Store is the ledger persistence layer.
// Getters return (nil, nil) when the record does not exist.
type Store interface {
	GetWallet(ctx context.Context) (*models.WalletState, error)
	PutWallet(ctx context.Context, w models.WalletState) error

	AddEntry(ctx context.Context, e models.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	GetAllEntries(ctx context.Context) ([]models.Entry, error)
	ClearEntries(ctx context.Context) error

	// PutArchive upserts by month key so re-runs never duplicate an archive.
	PutArchive(ctx context.Context, a models.MonthlyArchive) error
	GetArchive(ctx context.Context, monthKey string) (*models.MonthlyArchive, error)
	ListArchives(ctx context.Context) ([]models.MonthlyArchive, error)
}
