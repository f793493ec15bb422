// Package clock supplies the current time for all ledger decisions.
// Readings carry a source tag so the UI can indicate offline mode when the
// remote clock is unreachable.
package clock

import (
	"context"
	"time"
)

// Source tells where a reading came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Reading is one observation of the current time, already converted to the
// ledger's canonical timezone.
type Reading struct {
	Time   time.Time
	Source Source
}

// Clock yields the current instant. Implementations must be safe to call
// frequently.
type Clock interface {
	Now(ctx context.Context) Reading
}

// Fixed always returns the same instant. Used in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now(ctx context.Context) Reading {
	return Reading{Time: f.T, Source: SourceLocal}
}
