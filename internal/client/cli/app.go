package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/ai"
	"github.com/dmitrijs2005/gophchat/internal/client/api"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/conversation"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/client/storage"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

const renderWidth = 80

// chatClient is the REST surface the shell uses.
type chatClient interface {
	conversation.ChatAPI
	SetToken(token string)
	CreateChat(ctx context.Context, text string) (string, error)
	DeleteChat(ctx context.Context, id string) error
	ListChats(ctx context.Context) ([]models.ChatIndexEntry, error)
	UploadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	meta    metadata.Repository
	api     chatClient
	gen     conversation.Generator
	render  *renderer
	in      *bufio.Scanner
	out     io.Writer
	closeFn func() error

	token   string
	entries []models.ChatIndexEntry
	view    *conversation.View
	pending *conversation.Attachment

	// streaming is set while an answer is being revealed; printed counts
	// the runes of it already written to out.
	streaming bool
	printed   int
}

// NewApp opens the local store, restores the saved token (unless one is
// configured) and connects the REST client and the AI bridge.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	token := c.Token
	if token == "" {
		token, err = repos.Metadata.Token(ctx)
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("load token: %w", err)
		}
	}

	client := api.New(c.ServerURL, nil, c.ListRetryDelay)
	client.SetToken(token)

	bridge, err := ai.NewBridge(ctx, c.GeminiAPIKey, c.GeminiModel, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	r, err := newRenderer(renderWidth)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger.With("module", "cli"),
		meta:    repos.Metadata,
		api:     client,
		gen:     bridge,
		render:  r,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		closeFn: repos.Close,
		token:   token,
	}, nil
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			if err := a.closeFn(); err != nil {
				a.logger.Warn(ctx, "close local store", "error", err)
			}
		}
	}()

	fmt.Fprintln(a.out, "Welcome to GophChat (type 'help' for commands)")
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "No token stored. Use 'login' to set one.")
	}

	runREPL(ctx, a, a.getStatus, a.in)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) isChatOpen() bool {
	return a.view != nil
}

func (a *App) getStatus() string {
	if a.view == nil {
		return ""
	}
	s := " " + a.titleOf(a.view.ChatID())
	if a.pending != nil {
		s += " +img"
	}
	return s
}

// titleOf returns the listed title of id, or a short form of the id.
func (a *App) titleOf(id string) string {
	for _, e := range a.entries {
		if e.ID == id {
			return fmt.Sprintf("[%s]", e.Title)
		}
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("[%s]", id)
}
