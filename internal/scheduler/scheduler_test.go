package scheduler

import (
	"context"
	"testing"
	"time"

	"telegram-wallet-bot/internal/clock"
	"telegram-wallet-bot/internal/ledger"
	"telegram-wallet-bot/internal/storage/memory"

	"github.com/shopspring/decimal"
)

func TestRegisterAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	l := ledger.New(memory.New(), clock.Fixed{T: now}, decimal.NewFromInt(50), time.UTC)

	s := New(ctx, l, clock.Fixed{T: now})
	if err := s.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(s.Cron.Entries()) != 2 {
		t.Errorf("expected 2 cron entries, got %d", len(s.Cron.Entries()))
	}
}

func TestLastReadingTracksClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	l := ledger.New(memory.New(), clock.Fixed{T: now}, decimal.NewFromInt(50), time.UTC)

	s := New(ctx, l, clock.Fixed{T: now})
	s.refreshTime()

	reading := s.LastReading()
	if !reading.Time.Equal(now) {
		t.Errorf("reading = %s, want %s", reading.Time, now)
	}
}

func TestReconcileAppliesCreditsAndArchives(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)

	l := ledger.New(memory.New(), clock.Fixed{T: now}, decimal.NewFromInt(50), time.UTC)
	if err := l.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	balance := l.Balance()

	s := New(ctx, l, clock.Fixed{T: now})
	s.reconcile()

	// Same-day reconcile owes nothing and archives nothing.
	if !l.Balance().Equal(balance) {
		t.Errorf("balance changed from %s to %s", balance, l.Balance())
	}
}
