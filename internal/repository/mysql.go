package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS bot_accounts (
			account_id VARCHAR(64) NOT NULL PRIMARY KEY,
			device_id VARCHAR(255) NOT NULL,
			secret VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			slot INT NOT NULL,
			created_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS gift_attempts (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			account_id VARCHAR(64) NOT NULL,
			recipient_id VARCHAR(64) NOT NULL,
			offer_id VARCHAR(255) NOT NULL,
			item_name VARCHAR(255) NOT NULL DEFAULT '',
			price INT NOT NULL,
			outcome VARCHAR(32) NOT NULL,
			status_code INT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_gift_attempts_run (run_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
}

// NewMySQLStore connects to a MySQL store.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s, err := newSQLStore(db, mysqlDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("mysql store ready")
	return s, nil
}
