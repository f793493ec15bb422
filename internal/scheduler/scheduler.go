// Package scheduler runs the background reconciliation jobs: an hourly
// catch-up/archival pass and a minute time refresh that tracks whether the
// remote clock is reachable.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"telegram-wallet-bot/internal/clock"
	"telegram-wallet-bot/internal/ledger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Ledger *ledger.Ledger
	Clock  clock.Clock
	Ctx    context.Context

	mu      sync.Mutex
	reading clock.Reading
}

// New creates a Scheduler.
func New(ctx context.Context, l *ledger.Ledger, clk clock.Clock) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(),
		Ledger: l,
		Clock:  clk,
		Ctx:    ctx,
	}
}

// RegisterAll registers the reconcile and time-refresh tasks.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc("@every 1h", s.reconcile); err != nil {
		return fmt.Errorf("register reconcile task: %w", err)
	}
	if _, err := s.Cron.AddFunc("@every 1m", s.refreshTime); err != nil {
		return fmt.Errorf("register time refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.refreshTime()
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// LastReading returns the most recent time observation, so the UI can show
// when the bot is running on the local fallback clock.
func (s *Scheduler) LastReading() clock.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

func (s *Scheduler) reconcile() {
	if err := s.Ledger.ApplyMissedCredits(s.Ctx); err != nil {
		log.Printf("[ERROR] apply missed credits: %v", err)
	}
	if err := s.Ledger.CheckAndArchive(s.Ctx); err != nil {
		log.Printf("[ERROR] monthly archive check: %v", err)
	}
}

func (s *Scheduler) refreshTime() {
	reading := s.Clock.Now(s.Ctx)

	s.mu.Lock()
	prev := s.reading.Source
	s.reading = reading
	s.mu.Unlock()

	if prev == clock.SourceRemote && reading.Source == clock.SourceLocal {
		log.Println("[WARN] time source degraded to local clock")
	}
}
