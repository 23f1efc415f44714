package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"shopgifter/internal/config"
	"shopgifter/internal/model"

	"go.uber.org/zap"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name       string
	driver     string
	schema     []string
	dollarArgs bool // $1, $2 placeholders instead of ?
}

// SQLStore implements Store on database/sql. Device credentials are stored
// base64 encoded, matching the legacy accounts file.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time

	// serializes Add so slot assignment and the duplicate check are atomic
	mu sync.Mutex
}

// Open connects to the store selected by cfg.
func Open(cfg config.StoreConfig, logger *zap.Logger) (*SQLStore, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(cfg.Path, logger)
	case "mysql":
		return NewMySQLStore(cfg.MySQLDSN(), logger)
	case "postgres", "postgresql":
		return NewPostgresStore(cfg.PostgresDSN(), logger)
	}
	return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
}

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger.Named("store").With(zap.String("dialect", d.name)),
		now:     time.Now,
	}

	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return s, nil
}

// rebind rewrites ? placeholders for dialects that number their arguments.
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.dollarArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func encodeSecret(v string) string {
	return base64.StdEncoding.EncodeToString([]byte(v))
}

func decodeSecret(v string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

const accountColumns = `account_id, device_id, secret, display_name, slot, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (model.BotAccount, error) {
	var a model.BotAccount
	var deviceID, secret string
	if err := row.Scan(&a.AccountID, &deviceID, &secret, &a.DisplayName, &a.Position, &a.CreatedAt); err != nil {
		return a, err
	}

	var err error
	if a.DeviceID, err = decodeSecret(deviceID); err != nil {
		return a, fmt.Errorf("account %s: bad device id encoding: %w", a.AccountID, err)
	}
	if a.Secret, err = decodeSecret(secret); err != nil {
		return a, fmt.Errorf("account %s: bad secret encoding: %w", a.AccountID, err)
	}
	return a, nil
}

// List returns every bot account in pool order.
func (s *SQLStore) List(ctx context.Context) ([]model.BotAccount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM bot_accounts ORDER BY slot, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.BotAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Get finds an account by id.
func (s *SQLStore) Get(ctx context.Context, accountID string) (*model.BotAccount, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+accountColumns+` FROM bot_accounts WHERE account_id = ?`), accountID)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// Add appends an account to the end of the pool.
func (s *SQLStore) Add(ctx context.Context, account model.BotAccount) (bool, error) {
	if account.AccountID == "" || account.DeviceID == "" || account.Secret == "" {
		return false, fmt.Errorf("account id, device id and secret are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM bot_accounts WHERE account_id = ?`), account.AccountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	var maxSlot sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(slot) FROM bot_accounts`).Scan(&maxSlot); err != nil {
		return false, fmt.Errorf("failed to read pool size: %w", err)
	}
	slot := 0
	if maxSlot.Valid {
		slot = int(maxSlot.Int64) + 1
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO bot_accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		account.AccountID,
		encodeSecret(account.DeviceID),
		encodeSecret(account.Secret),
		account.DisplayName,
		slot,
		s.now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Info("account added", zap.String("account_id", account.AccountID), zap.Int("slot", slot))
	return true, nil
}

// Remove deletes an account.
func (s *SQLStore) Remove(ctx context.Context, accountID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM bot_accounts WHERE account_id = ?`), accountID)
	if err != nil {
		return false, fmt.Errorf("failed to remove account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateDisplayName caches the account's display name.
func (s *SQLStore) UpdateDisplayName(ctx context.Context, accountID, displayName string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`UPDATE bot_accounts SET display_name = ? WHERE account_id = ?`), displayName, accountID)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	return nil
}

// RecordAttempt appends one gift attempt to the ledger.
func (s *SQLStore) RecordAttempt(ctx context.Context, rec model.GiftRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO gift_attempts (run_id, account_id, recipient_id, offer_id, item_name, price, outcome, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.RunID, rec.AccountID, rec.RecipientID, rec.OfferID, rec.ItemName, rec.Price, rec.Outcome, rec.StatusCode, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record gift attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the most recent attempts, newest first.
func (s *SQLStore) ListAttempts(ctx context.Context, limit int) ([]model.GiftRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, run_id, account_id, recipient_id, offer_id, item_name, price, outcome, status_code, created_at
		FROM gift_attempts
		ORDER BY id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list gift attempts: %w", err)
	}
	defer rows.Close()

	var records []model.GiftRecord
	for rows.Next() {
		var r model.GiftRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.AccountID, &r.RecipientID, &r.OfferID, &r.ItemName, &r.Price, &r.Outcome, &r.StatusCode, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gift attempt: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PruneAttempts deletes ledger rows older than olderThan.
func (s *SQLStore) PruneAttempts(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention must be positive")
	}
	cutoff := s.now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM gift_attempts WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune gift attempts: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("pruned gift attempts", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
