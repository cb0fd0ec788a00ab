package services

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// newChatID is a seam for tests.
var newChatID = uuid.NewString

// AppendRequest is the body of an append: an optional question (with an
// optional image reference) followed by the model's answer.
type AppendRequest struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
	Img      string `json:"img,omitempty"`
}

// ChatService implements the transcript operations behind the REST facade.
// Every operation is scoped to the calling user.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChatService(db *sql.DB, repomanager repomanager.RepositoryManager) *ChatService {
	return &ChatService{
		db:          db,
		repomanager: repomanager,
	}
}

// Create starts a transcript with a single user turn and adds it to the
// user's index. Both writes commit or neither does.
func (s *ChatService) Create(ctx context.Context, userID, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: text is required", common.ErrValidation)
	}

	chat := &models.Chat{
		ID:      newChatID(),
		UserID:  userID,
		History: []models.Turn{models.NewTurn(common.RoleUser, text, "")},
	}

	id, err := dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		if err := s.repomanager.Chats(tx).Create(ctx, chat); err != nil {
			return "", err
		}
		err := s.repomanager.UserChats(tx).Add(ctx, userID, models.ChatIndexEntry{
			ID:    chat.ID,
			Title: common.Title(text),
		})
		return chat.ID, err
	})
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	return id, nil
}

// Get returns the user's transcript. Missing and foreign chats are both
// reported as common.ErrorNotFound.
func (s *ChatService) Get(ctx context.Context, userID, id string) (*models.Chat, error) {
	chat, err := s.repomanager.Chats(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return chat, nil
}

// AppendTurns appends [user turn (when a question is given), model turn]
// to the transcript in one statement.
func (s *ChatService) AppendTurns(ctx context.Context, userID, id string, req AppendRequest) (*models.UpdateResult, error) {
	if utf8.RuneCountInString(req.Answer) < common.MinAnswerLength {
		return nil, fmt.Errorf("%w: answer must be at least %d characters", common.ErrValidation, common.MinAnswerLength)
	}

	turns := make([]models.Turn, 0, 2)
	if req.Question != "" {
		turns = append(turns, models.NewTurn(common.RoleUser, req.Question, req.Img))
	}
	turns = append(turns, models.NewTurn(common.RoleModel, req.Answer, ""))

	n, err := s.repomanager.Chats(s.db).AppendTurns(ctx, userID, id, turns)
	if err != nil {
		return nil, fmt.Errorf("append turns: %w", err)
	}

	return &models.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

// Delete removes the transcript and its index entry in one transaction.
// Deleting a chat that does not exist succeeds.
func (s *ChatService) Delete(ctx context.Context, userID, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Chats(tx).Delete(ctx, userID, id); err != nil {
			return err
		}
		return s.repomanager.UserChats(tx).Remove(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// List returns the user's conversation index, oldest first.
func (s *ChatService) List(ctx context.Context, userID string) ([]models.ChatIndexEntry, error) {
	entries, err := s.repomanager.UserChats(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return entries, nil
}
