package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS desk_sessions (
  id         VARCHAR(64)  NOT NULL PRIMARY KEY,
  username   VARCHAR(255) NOT NULL DEFAULT '',
  email      VARCHAR(255) NOT NULL DEFAULT '',
  created_at DATETIME(6)  NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS application_reviews (
  id                 VARCHAR(64)  NOT NULL PRIMARY KEY,
  application_number VARCHAR(64)  NOT NULL,
  application_json   JSON         NOT NULL,
  brief              TEXT         NOT NULL,
  reviewed_by        VARCHAR(255) NOT NULL DEFAULT '-',
  created_at         DATETIME(6)  NOT NULL,
  KEY idx_reviews_number_created (application_number, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the gateway's tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
