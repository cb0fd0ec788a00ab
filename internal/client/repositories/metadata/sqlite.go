package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
)

const tokenSetting = "auth.token"

// SQLiteRepository implements Repository on the settings and
// answered_chats tables.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Token(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, tokenSetting).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (r *SQLiteRepository) SetToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, tokenSetting, token)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Answered(ctx context.Context, chatID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM answered_chats WHERE chat_id = ?`, chatID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read answered flag of %s: %w", chatID, err)
	}
	return true, nil
}

// MarkAnswered is idempotent; the first answered_at is kept.
func (r *SQLiteRepository) MarkAnswered(ctx context.Context, chatID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO answered_chats (chat_id) VALUES (?) ON CONFLICT(chat_id) DO NOTHING`, chatID)
	if err != nil {
		return fmt.Errorf("failed to mark %s answered: %w", chatID, err)
	}
	return nil
}

func (r *SQLiteRepository) Forget(ctx context.Context, chatID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM answered_chats WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to forget %s: %w", chatID, err)
	}
	return nil
}
