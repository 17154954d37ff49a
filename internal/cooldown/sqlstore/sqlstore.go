// Package sqlstore keeps cooldown records in the token_requests table of a
// SQLite database.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"libdb.so/fogo-faucet/internal/cooldown"
)

// tokenRequest is one row of token_requests. discord_user_id is unique, so
// there is at most one row per requester.
type tokenRequest struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	DiscordUserID   string    `gorm:"column:discord_user_id;uniqueIndex"`
	WalletAddress   string    `gorm:"column:wallet_address"`
	LastRequestTime int64     `gorm:"column:last_request_time"` // unix millis
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (tokenRequest) TableName() string { return "token_requests" }

// Store is a cooldown.Store backed by gorm.
type Store struct {
	db *gorm.DB
}

var _ cooldown.Store = (*Store)(nil)

// Open opens or creates the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&tokenRequest{}); err != nil {
		return nil, fmt.Errorf("migrate token_requests: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context, requesterID string) (cooldown.Record, bool, error) {
	var row tokenRequest
	err := s.db.WithContext(ctx).
		Where("discord_user_id = ?", requesterID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cooldown.Record{}, false, nil
	}
	if err != nil {
		return cooldown.Record{}, false, err
	}

	return cooldown.Record{
		RequesterID:   row.DiscordUserID,
		WalletAddress: row.WalletAddress,
		LastRequest:   time.UnixMilli(row.LastRequestTime),
		CreatedAt:     row.CreatedAt,
	}, true, nil
}

func (s *Store) Upsert(ctx context.Context, r cooldown.Record) error {
	row := tokenRequest{
		DiscordUserID:   r.RequesterID,
		WalletAddress:   r.WalletAddress,
		LastRequestTime: r.LastRequest.UnixMilli(),
		CreatedAt:       r.CreatedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "discord_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"wallet_address", "last_request_time"}),
		}).
		Create(&row).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
