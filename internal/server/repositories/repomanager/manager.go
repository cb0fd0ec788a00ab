package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/chats"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/userchats"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Chats(db dbx.DBTX) chats.Repository
	UserChats(db dbx.DBTX) userchats.Repository
}
