package chats

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, chat *models.Chat) error
	Get(ctx context.Context, userID, id string) (*models.Chat, error)
	AppendTurns(ctx context.Context, userID, id string, turns []models.Turn) (int64, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}
