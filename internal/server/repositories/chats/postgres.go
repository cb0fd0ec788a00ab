// Package chats provides the PostgreSQL-backed transcript repository.
// A transcript's history is stored as a JSONB array of turns.
package chats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
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

// Create inserts chat and fills in its timestamps.
func (r *PostgresRepository) Create(ctx context.Context, chat *models.Chat) error {
	history, err := json.Marshal(chat.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	query := `
		INSERT INTO chats (id, user_id, history)
		VALUES ($1, $2, $3::jsonb)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query, chat.ID, chat.UserID, string(history)).
		Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the chat with id owned by userID. A chat that does not exist
// and a chat owned by someone else both yield common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Chat, error) {
	query := `
		SELECT id, user_id, history, created_at, updated_at FROM chats
		WHERE id = $1 AND user_id = $2
	`
	var (
		chat    models.Chat
		history []byte
	)
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&chat.ID, &chat.UserID, &history, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(history, &chat.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if chat.History == nil {
		chat.History = []models.Turn{}
	}
	return &chat, nil
}

// AppendTurns appends turns, in order, to the history of the chat in a
// single statement. It returns the number of chats matched (0 or 1).
func (r *PostgresRepository) AppendTurns(ctx context.Context, userID, id string, turns []models.Turn) (int64, error) {
	payload, err := json.Marshal(turns)
	if err != nil {
		return 0, fmt.Errorf("marshal turns: %w", err)
	}

	query := `
		UPDATE chats SET history = history || $3::jsonb, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID, string(payload))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// Delete removes the chat if userID owns it and returns the rows removed.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
