// Package cooldown decides whether a faucet requester may receive tokens again
// and persists the time of their last successful request.
package cooldown

import (
	"context"
	"fmt"
	"time"
)

// DefaultWindow is the time a requester must wait between two requests.
const DefaultWindow = 24 * time.Hour

// Record is the persisted state of one requester. There is at most one record
// per requester; a new request overwrites the previous one.
type Record struct {
	RequesterID   string
	WalletAddress string
	// LastRequest is stored with millisecond precision.
	LastRequest time.Time
	CreatedAt   time.Time
}

// Store persists records keyed by requester identity. Load returns ok=false
// when no record exists; any other failure is returned as an error and must
// not be mistaken for absence.
type Store interface {
	Load(ctx context.Context, requesterID string) (r Record, ok bool, err error)
	// Upsert inserts the record or replaces the existing one for the same
	// requester.
	Upsert(ctx context.Context, r Record) error
	Close() error
}

// Eligibility is the outcome of a cooldown check.
type Eligibility struct {
	Eligible bool
	// RemainingHours is the residual wait rounded up to whole hours. It is
	// zero when Eligible is true.
	RemainingHours int
}

// Tracker applies the cooldown policy on top of a Store.
type Tracker struct {
	store  Store
	window time.Duration
}

// NewTracker creates a tracker. A non-positive window uses DefaultWindow.
func NewTracker(store Store, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{store: store, window: window}
}

// Window returns the cooldown window.
func (t *Tracker) Window() time.Duration { return t.window }

// CheckEligibility reports whether requesterID may request at now.
func (t *Tracker) CheckEligibility(ctx context.Context, requesterID string, now time.Time) (Eligibility, error) {
	rec, ok, err := t.store.Load(ctx, requesterID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("load cooldown record: %w", err)
	}
	if !ok {
		return Eligibility{Eligible: true}, nil
	}
	return t.eligibility(rec.LastRequest, now), nil
}

func (t *Tracker) eligibility(last, now time.Time) Eligibility {
	elapsed := now.Sub(last)
	if elapsed >= t.window {
		return Eligibility{Eligible: true}
	}
	remaining := t.window - elapsed
	hours := int(remaining / time.Hour)
	if remaining%time.Hour != 0 {
		hours++
	}
	return Eligibility{RemainingHours: hours}
}

// RecordRequest stores now as the last request time of requesterID.
func (t *Tracker) RecordRequest(ctx context.Context, requesterID, walletAddress string, now time.Time) error {
	rec := Record{
		RequesterID:   requesterID,
		WalletAddress: walletAddress,
		LastRequest:   now.Truncate(time.Millisecond),
		CreatedAt:     now,
	}
	if err := t.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert cooldown record: %w", err)
	}
	return nil
}
