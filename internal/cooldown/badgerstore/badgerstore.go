// Package badgerstore keeps cooldown records in a local badger database.
package badgerstore

import (
	"context"
	"fmt"
	"time"

	"libdb.so/persist"
	persistbadgerdb "libdb.so/persist/driver/badgerdb"

	"libdb.so/fogo-faucet/internal/cooldown"
)

// Store is a cooldown.Store backed by a persist map.
type Store struct {
	requests persist.Map[string, entry]
}

// entry is the persisted value. Times are kept as epoch milliseconds since
// the map's encoder only keeps whole seconds of a time.Time.
type entry struct {
	WalletAddress     string `cbor:"wallet_address"`
	LastRequestMillis int64  `cbor:"last_request_time"`
	CreatedAtMillis   int64  `cbor:"created_at"`
}

var _ cooldown.Store = (*Store)(nil)

// Open opens or creates the database directory at path.
func Open(path string) (*Store, error) {
	requests, err := persist.NewMap[string, entry](
		persistbadgerdb.Open,
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("open token requests map at %q: %w", path, err)
	}
	return &Store{requests: requests}, nil
}

func (s *Store) Load(ctx context.Context, requesterID string) (cooldown.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return cooldown.Record{}, false, err
	}
	e, ok, err := s.requests.Load(requesterID)
	if err != nil || !ok {
		return cooldown.Record{}, ok, err
	}
	return cooldown.Record{
		RequesterID:   requesterID,
		WalletAddress: e.WalletAddress,
		LastRequest:   time.UnixMilli(e.LastRequestMillis),
		CreatedAt:     time.UnixMilli(e.CreatedAtMillis),
	}, true, nil
}

func (s *Store) Upsert(ctx context.Context, r cooldown.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := entry{
		WalletAddress:     r.WalletAddress,
		LastRequestMillis: r.LastRequest.UnixMilli(),
		CreatedAtMillis:   r.CreatedAt.UnixMilli(),
	}
	// Keep the creation time of the first record.
	prev, ok, err := s.requests.Load(r.RequesterID)
	if err != nil {
		return err
	}
	if ok && prev.CreatedAtMillis != 0 {
		e.CreatedAtMillis = prev.CreatedAtMillis
	}
	return s.requests.Store(r.RequesterID, e)
}

func (s *Store) Close() error {
	return s.requests.Close()
}
