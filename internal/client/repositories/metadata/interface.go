// Package metadata keeps the client's local state in sqlite: the saved
// bearer token and the chats whose opening question was already sent to
// the model.
package metadata

import (
	"context"
)

type Repository interface {
	// Token returns the saved bearer token, or "" if none was saved.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error

	// Answered reports whether the opening question of chatID was sent.
	Answered(ctx context.Context, chatID string) (bool, error)
	MarkAnswered(ctx context.Context, chatID string) error
	// Forget drops everything kept for chatID.
	Forget(ctx context.Context, chatID string) error
}
