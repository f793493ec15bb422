// Package ledger implements the wallet reconciliation engine and the
// expense ledger service: daily allowance credits, expense mutations with
// compensating rollback, and month-end archival.
package ledger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"telegram-wallet-bot/internal/clock"
	"telegram-wallet-bot/internal/models"
	"telegram-wallet-bot/internal/storage"

	"github.com/shopspring/decimal"
)

// Archival runs on day 3 of each month; allowance accrual also starts on
// day 3, so a freshly seeded month begins with one day's credit.
const archiveDay = 3

// Ledger owns the wallet state and the active entry list (newest first).
// All mutations, including the cron-driven ones, serialize on the mutex;
// persistence uses optimistic update with in-memory rollback on failure.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store
	clock clock.Clock
	daily decimal.Decimal
	loc   *time.Location

	wallet  models.WalletState
	entries []models.Entry
}

// New creates a ledger. daily is the fixed allowance credited per day and
// loc the canonical timezone for every day-boundary computation.
func New(store storage.Store, clk clock.Clock, daily decimal.Decimal, loc *time.Location) *Ledger {
	return &Ledger{
		store: store,
		clock: clk,
		daily: daily,
		loc:   loc,
	}
}

// Load restores the wallet and entry list from the store and catches the
// wallet up: a missing wallet is seeded from the calendar, an existing one
// gets any missed daily credits applied.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	wallet, err := l.store.GetWallet(ctx)
	if err != nil {
		return fmt.Errorf("%w: load wallet: %v", ErrPersistence, err)
	}
	entries, err := l.store.GetAllEntries(ctx)
	if err != nil {
		return fmt.Errorf("%w: load entries: %v", ErrPersistence, err)
	}
	sortNewestFirst(entries)
	l.entries = entries

	now := l.now(ctx)
	if wallet == nil {
		return l.seed(ctx, now)
	}
	l.wallet = *wallet
	return l.applyMissedCredits(ctx, now)
}

// ApplyMissedCredits checks whether any daily allowances are owed since the
// last activity and credits them as one lump entry. Safe to call on a
// schedule; a zero-day gap is a no-op.
func (l *Ledger) ApplyMissedCredits(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyMissedCredits(ctx, l.now(ctx))
}

// CheckAndArchive moves last month's entries into a monthly archive when
// the archival day is reached, then re-seeds the wallet for the new month.
// Idempotent: a second run on the same day finds nothing left to archive.
func (l *Ledger) CheckAndArchive(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now(ctx)
	if now.Day() != archiveDay {
		return nil
	}

	// Last day of the previous month, in the canonical zone.
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, l.loc).AddDate(0, 0, -1)
	key := monthKey(prev)

	var archived, remaining []models.Entry
	for _, e := range l.entries {
		ts := e.Timestamp.In(l.loc)
		if ts.Month() == prev.Month() && ts.Year() == prev.Year() {
			archived = append(archived, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(archived) == 0 {
		return nil
	}

	archive := models.MonthlyArchive{
		MonthKey:     key,
		Entries:      archived,
		FinalBalance: l.wallet.Balance,
		ArchivedAt:   now,
	}
	if err := l.store.PutArchive(ctx, archive); err != nil {
		return fmt.Errorf("%w: save archive %s: %v", ErrPersistence, key, err)
	}
	for _, e := range archived {
		if err := l.store.DeleteEntry(ctx, e.ID); err != nil {
			return fmt.Errorf("%w: remove archived entry %d: %v", ErrPersistence, e.ID, err)
		}
	}
	l.entries = remaining
	log.Printf("Archived %d entries for %s", len(archived), key)

	// The new month starts fresh from the seeding rule, not from the
	// archived balance.
	return l.seed(ctx, now)
}

// AddExpense debits the wallet and records the expense. On persistence
// failure the balance and list are restored and ErrPersistence returned.
func (l *Ledger) AddExpense(ctx context.Context, amount decimal.Decimal) (models.Entry, error) {
	if !amount.IsPositive() {
		return models.Entry{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now(ctx)
	prevWallet := l.wallet
	entry := models.Entry{
		ID:               l.nextID(now),
		Kind:             models.KindExpense,
		Timestamp:        now,
		Amount:           amount,
		ResultingBalance: prevWallet.Balance.Sub(amount),
	}

	l.wallet = models.WalletState{Balance: entry.ResultingBalance, LastUpdated: now}
	l.entries = append([]models.Entry{entry}, l.entries...)

	if err := l.persistEntryAndWallet(ctx, entry); err != nil {
		l.entries = l.entries[1:]
		l.wallet = prevWallet
		return models.Entry{}, err
	}
	return entry, nil
}

// DeleteExpense credits the amount back and removes the entry. Daily
// credits are protected and reported as not found. On persistence failure
// the entry is reinserted at its original position and the balance reverted.
func (l *Ledger) DeleteExpense(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	// Capture the entry before removing it; the rollback path needs it.
	entry := l.entries[idx]
	if entry.IsCredit() {
		return ErrNotFound
	}

	now := l.now(ctx)
	prevWallet := l.wallet
	prevEntries := l.entries

	rest := make([]models.Entry, 0, len(l.entries)-1)
	rest = append(rest, l.entries[:idx]...)
	rest = append(rest, l.entries[idx+1:]...)
	l.entries = rest
	l.wallet = models.WalletState{Balance: prevWallet.Balance.Add(entry.Amount), LastUpdated: now}

	if err := l.store.DeleteEntry(ctx, id); err != nil {
		l.entries = prevEntries
		l.wallet = prevWallet
		return fmt.Errorf("%w: delete entry %d: %v", ErrPersistence, id, err)
	}
	if err := l.store.PutWallet(ctx, l.wallet); err != nil {
		l.entries = prevEntries
		l.wallet = prevWallet
		return fmt.Errorf("%w: save wallet: %v", ErrPersistence, err)
	}
	return nil
}

// Balance returns the current wallet balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wallet.Balance
}

// Wallet returns a copy of the current wallet state.
func (l *Ledger) Wallet() models.WalletState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wallet
}

// Entries returns a newest-first copy of the active entry list.
func (l *Ledger) Entries() []models.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ArchiveKeys lists the month keys of all stored archives, most recent
// first.
func (l *Ledger) ArchiveKeys(ctx context.Context) ([]string, error) {
	archives, err := l.store.ListArchives(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list archives: %v", ErrPersistence, err)
	}
	keys := make([]string, 0, len(archives))
	for _, a := range archives {
		keys = append(keys, a.MonthKey)
	}
	return keys, nil
}

// LoadArchivedMonth returns the archive for a month key, or ErrNotFound.
func (l *Ledger) LoadArchivedMonth(ctx context.Context, monthKey string) (*models.MonthlyArchive, error) {
	archive, err := l.store.GetArchive(ctx, monthKey)
	if err != nil {
		return nil, fmt.Errorf("%w: load archive %s: %v", ErrPersistence, monthKey, err)
	}
	if archive == nil {
		return nil, ErrNotFound
	}
	return archive, nil
}

// seed computes the starting balance for a fresh wallet: one daily
// allowance for every day since day 3 of the current month.
func (l *Ledger) seed(ctx context.Context, now time.Time) error {
	accrued := now.Day() - 2
	if accrued < 0 {
		accrued = 0
	}
	balance := l.daily.Mul(decimal.NewFromInt(int64(accrued)))
	w := models.WalletState{Balance: balance, LastUpdated: now}
	if err := l.store.PutWallet(ctx, w); err != nil {
		return fmt.Errorf("%w: seed wallet: %v", ErrPersistence, err)
	}
	l.wallet = w
	return nil
}

func (l *Ledger) applyMissedCredits(ctx context.Context, now time.Time) error {
	last := l.wallet.LastUpdated
	if len(l.entries) > 0 {
		last = l.entries[0].Timestamp
	}

	days := daysBetween(l.dateOnly(last), l.dateOnly(now))
	if days < 1 {
		return nil
	}

	// The whole gap collapses into one lump credit dated now.
	amount := l.daily.Mul(decimal.NewFromInt(int64(days)))
	prevWallet := l.wallet
	entry := models.Entry{
		ID:               l.nextID(now),
		Kind:             models.KindDailyCredit,
		Timestamp:        now,
		Amount:           amount,
		ResultingBalance: prevWallet.Balance.Add(amount),
	}

	l.wallet = models.WalletState{Balance: entry.ResultingBalance, LastUpdated: now}
	l.entries = append([]models.Entry{entry}, l.entries...)

	if err := l.persistEntryAndWallet(ctx, entry); err != nil {
		l.entries = l.entries[1:]
		l.wallet = prevWallet
		return err
	}
	log.Printf("Credited %s for %d missed day(s)", amount.StringFixed(2), days)
	return nil
}

func (l *Ledger) persistEntryAndWallet(ctx context.Context, entry models.Entry) error {
	if err := l.store.AddEntry(ctx, entry); err != nil {
		return fmt.Errorf("%w: save entry %d: %v", ErrPersistence, entry.ID, err)
	}
	if err := l.store.PutWallet(ctx, l.wallet); err != nil {
		return fmt.Errorf("%w: save wallet: %v", ErrPersistence, err)
	}
	return nil
}

// nextID derives an id from the creation time, nudged past the newest
// entry so ids stay strictly ordered within the list.
func (l *Ledger) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if len(l.entries) > 0 && l.entries[0].ID >= id {
		id = l.entries[0].ID + 1
	}
	return id
}

func (l *Ledger) now(ctx context.Context) time.Time {
	return l.clock.Now(ctx).Time.In(l.loc)
}

func (l *Ledger) dateOnly(t time.Time) time.Time {
	t = t.In(l.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.loc)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%02d-%04d", int(t.Month()), t.Year())
}

func sortNewestFirst(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
