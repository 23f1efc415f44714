package repository

import (
	"context"
	"time"

	"shopgifter/internal/model"
)

// AccountRepository defines bot account data access methods.
type AccountRepository interface {
	// List returns every bot account in pool order.
	List(ctx context.Context) ([]model.BotAccount, error)

	// Get finds an account by id. Returns nil, nil when it does not exist.
	Get(ctx context.Context, accountID string) (*model.BotAccount, error)

	// Add appends an account to the end of the pool. Returns false if the
	// account id is already stored.
	Add(ctx context.Context, account model.BotAccount) (bool, error)

	// Remove deletes an account. Returns false if it did not exist.
	Remove(ctx context.Context, accountID string) (bool, error)

	// UpdateDisplayName caches the account's current display name.
	UpdateDisplayName(ctx context.Context, accountID, displayName string) error

	// Close closes the repository connection.
	Close() error
}

// HistoryRepository defines gift attempt ledger methods.
type HistoryRepository interface {
	// RecordAttempt appends one gift attempt.
	RecordAttempt(ctx context.Context, rec model.GiftRecord) error

	// ListAttempts returns the most recent attempts, newest first.
	ListAttempts(ctx context.Context, limit int) ([]model.GiftRecord, error)

	// PruneAttempts deletes attempts older than the given age and returns
	// how many were removed.
	PruneAttempts(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Store is the full persistence surface used by the CLI.
type Store interface {
	AccountRepository
	HistoryRepository
}
