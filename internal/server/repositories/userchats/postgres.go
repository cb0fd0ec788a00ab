// Package userchats provides the per-user conversation index repository.
// Each user has at most one row holding an ordered JSONB array of entries.
package userchats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends entry to the user's index, creating the index if needed.
func (r *PostgresRepository) Add(ctx context.Context, userID string, entry models.ChatIndexEntry) error {
	payload, err := json.Marshal([]models.ChatIndexEntry{entry})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	query := `
		INSERT INTO user_chats (user_id, chats)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_id)
		DO UPDATE SET chats = user_chats.chats || EXCLUDED.chats, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(payload)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Remove drops every entry pointing at chatID from the user's index.
// Removing from a missing index or a missing entry is not an error.
func (r *PostgresRepository) Remove(ctx context.Context, userID, chatID string) error {
	query := `
		UPDATE user_chats SET chats = COALESCE(
			(SELECT jsonb_agg(e ORDER BY ord) FROM jsonb_array_elements(chats) WITH ORDINALITY AS t(e, ord)
			 WHERE e->>'_id' <> $2),
			'[]'::jsonb), updated_at = now()
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns the user's index in insertion order. A user without an
// index gets an empty, non-nil slice.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.ChatIndexEntry, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT chats FROM user_chats WHERE user_id = $1`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.ChatIndexEntry{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	entries := []models.ChatIndexEntry{}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}
	if entries == nil {
		entries = []models.ChatIndexEntry{}
	}
	return entries, nil
}
