package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"
)

// GetSlot returns the raw value stored under key.
// ok is false when the key has never been written.
func GetSlot(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %q: %w", key, err)
	}
	return value, true, nil
}

// SetSlot overwrites the value stored under key.
func SetSlot(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}
