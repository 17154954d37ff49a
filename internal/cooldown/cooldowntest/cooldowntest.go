// Package cooldowntest holds the behavior every cooldown.Store backend must
// share.
package cooldowntest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/cooldown"
)

// RunStoreTests exercises store. The store must be empty.
func RunStoreTests(t *testing.T, store cooldown.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		_, ok, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	first := time.Date(2025, 8, 6, 10, 30, 15, 123_000_000, time.UTC)

	t.Run("UpsertThenLoad", func(t *testing.T) {
		err := store.Upsert(ctx, cooldown.Record{
			RequesterID:   "1402734319755202640",
			WalletAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			LastRequest:   first,
			CreatedAt:     first,
		})
		require.NoError(t, err)

		got, ok, err := store.Load(ctx, "1402734319755202640")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "1402734319755202640", got.RequesterID)
		assert.Equal(t, "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", got.WalletAddress)
		assert.Equal(t, first.UnixMilli(), got.LastRequest.UnixMilli())
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		later := first.Add(25 * time.Hour)
		err := store.Upsert(ctx, cooldown.Record{
			RequesterID:   "1402734319755202640",
			WalletAddress: "So11111111111111111111111111111111111111112",
			LastRequest:   later,
			CreatedAt:     later,
		})
		require.NoError(t, err)

		got, ok, err := store.Load(ctx, "1402734319755202640")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "So11111111111111111111111111111111111111112", got.WalletAddress)
		assert.Equal(t, later.UnixMilli(), got.LastRequest.UnixMilli())
	})

	t.Run("WorksWithTracker", func(t *testing.T) {
		tracker := cooldown.NewTracker(store, cooldown.DefaultWindow)
		now := time.Now()

		el, err := tracker.CheckEligibility(ctx, "tracker-user", now)
		require.NoError(t, err)
		assert.True(t, el.Eligible)

		require.NoError(t, tracker.RecordRequest(ctx, "tracker-user", "wallet", now.Add(-23*time.Hour)))

		el, err = tracker.CheckEligibility(ctx, "tracker-user", now)
		require.NoError(t, err)
		assert.False(t, el.Eligible)
		assert.Equal(t, 1, el.RemainingHours)
	})
}
