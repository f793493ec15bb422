// Package memory provides an in-memory Store used by tests.
package memory

import (
	"context"
	"sync"

	"telegram-wallet-bot/internal/models"
	"telegram-wallet-bot/internal/storage"
)

// Store keeps the ledger in process memory behind a mutex.
type Store struct {
	mu       sync.Mutex
	wallet   *models.WalletState
	entries  map[int64]models.Entry
	order    []int64
	archives map[string]models.MonthlyArchive
}

func New() *Store {
	return &Store{
		entries:  make(map[int64]models.Entry),
		archives: make(map[string]models.MonthlyArchive),
	}
}

func (s *Store) GetWallet(ctx context.Context) (*models.WalletState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wallet == nil {
		return nil, nil
	}
	w := *s.wallet
	return &w, nil
}

func (s *Store) PutWallet(ctx context.Context, w models.WalletState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = &w
	return nil
}

func (s *Store) AddEntry(ctx context.Context, e models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetAllEntries(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *Store) ClearEntries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[int64]models.Entry)
	s.order = nil
	return nil
}

func (s *Store) PutArchive(ctx context.Context, a models.MonthlyArchive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[a.MonthKey] = a
	return nil
}

func (s *Store) GetArchive(ctx context.Context, monthKey string) (*models.MonthlyArchive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.archives[monthKey]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) ListArchives(ctx context.Context) ([]models.MonthlyArchive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MonthlyArchive, 0, len(s.archives))
	for _, a := range s.archives {
		out = append(out, a)
	}
	return out, nil
}

// Compile-time check: Store implements storage.Store.
var _ storage.Store = (*Store)(nil)
