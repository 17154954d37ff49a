package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/cooldown/cooldowntest"
)

func TestStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cooldowntest.RunStoreTests(t, store)

	// Records are plain hashes without a TTL.
	assert.True(t, mr.Exists(DefaultKeyPrefix+"1402734319755202640"))
	assert.Zero(t, mr.TTL(DefaultKeyPrefix+"1402734319755202640"))
	assert.Equal(t, "So11111111111111111111111111111111111111112",
		mr.HGet(DefaultKeyPrefix+"1402734319755202640", fieldWallet))
}

func TestOpenUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Open(context.Background(), "redis://"+addr, "")
	assert.Error(t, err)
}

func TestLoadCorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet(DefaultKeyPrefix+"user", fieldWallet, "wallet", fieldLastRequest, "yesterday")

	store, err := Open(context.Background(), "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, _, err = store.Load(context.Background(), "user")
	assert.Error(t, err)
}

func TestKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	live, err := Open(ctx, "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { live.Close() })

	dry, err := Open(ctx, "redis://"+mr.Addr(), "faucet:test_token_requests:")
	require.NoError(t, err)
	t.Cleanup(func() { dry.Close() })

	now := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, dry.Upsert(ctx, cooldown.Record{
		RequesterID:   "user",
		WalletAddress: "wallet",
		LastRequest:   now,
		CreatedAt:     now,
	}))

	assert.True(t, mr.Exists("faucet:test_token_requests:user"))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"user"))

	_, ok, err := live.Load(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)
}
