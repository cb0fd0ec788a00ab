package userchats

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID string, entry models.ChatIndexEntry) error
	Remove(ctx context.Context, userID, chatID string) error
	List(ctx context.Context, userID string) ([]models.ChatIndexEntry, error)
}
