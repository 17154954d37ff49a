// Package redisstore keeps cooldown records as redis hashes.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"libdb.so/fogo-faucet/internal/cooldown"
)

// DefaultKeyPrefix is prepended to requester IDs when no prefix is given.
const DefaultKeyPrefix = "faucet:token_requests:"

const (
	fieldWallet      = "wallet_address"
	fieldLastRequest = "last_request_time"
	fieldCreatedAt   = "created_at"
)

// Store is a cooldown.Store backed by redis. Records never expire.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ cooldown.Store = (*Store)(nil)

// Open connects to the redis server at url and pings it. Keys are namespaced
// by prefix, or DefaultKeyPrefix if it is empty.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return New(rdb, prefix), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(requesterID string) string {
	return s.prefix + requesterID
}

func (s *Store) Load(ctx context.Context, requesterID string) (cooldown.Record, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(requesterID)).Result()
	if err != nil {
		return cooldown.Record{}, false, err
	}
	if len(fields) == 0 {
		return cooldown.Record{}, false, nil
	}

	last, err := strconv.ParseInt(fields[fieldLastRequest], 10, 64)
	if err != nil {
		return cooldown.Record{}, false, fmt.Errorf("corrupt %s for %s: %w", fieldLastRequest, requesterID, err)
	}
	rec := cooldown.Record{
		RequesterID:   requesterID,
		WalletAddress: fields[fieldWallet],
		LastRequest:   time.UnixMilli(last),
	}
	if created, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		rec.CreatedAt = time.UnixMilli(created)
	}
	return rec, true, nil
}

func (s *Store) Upsert(ctx context.Context, r cooldown.Record) error {
	k := s.key(r.RequesterID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			fieldWallet, r.WalletAddress,
			fieldLastRequest, r.LastRequest.UnixMilli(),
		)
		pipe.HSetNX(ctx, k, fieldCreatedAt, r.CreatedAt.UnixMilli())
		return nil
	})
	return err
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
