package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/chats"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/userchats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeChatsRepo struct {
	chats.Repository

	created   []*models.Chat
	createErr error

	chat   *models.Chat
	getErr error

	appended  [][]models.Turn
	matched   int64
	appendErr error

	deleted   []string
	deleteErr error
}

func (f *fakeChatsRepo) Create(ctx context.Context, chat *models.Chat) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, chat)
	return nil
}

func (f *fakeChatsRepo) Get(ctx context.Context, userID, id string) (*models.Chat, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.chat == nil || f.chat.ID != id || f.chat.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return f.chat, nil
}

func (f *fakeChatsRepo) AppendTurns(ctx context.Context, userID, id string, turns []models.Turn) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.appended = append(f.appended, turns)
	return f.matched, nil
}

func (f *fakeChatsRepo) Delete(ctx context.Context, userID, id string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return 1, nil
}

type fakeUserChatsRepo struct {
	userchats.Repository

	added  []models.ChatIndexEntry
	addErr error

	removed   []string
	removeErr error

	list    []models.ChatIndexEntry
	listErr error
}

func (f *fakeUserChatsRepo) Add(ctx context.Context, userID string, entry models.ChatIndexEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, entry)
	return nil
}

func (f *fakeUserChatsRepo) Remove(ctx context.Context, userID, chatID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, chatID)
	return nil
}

func (f *fakeUserChatsRepo) List(ctx context.Context, userID string) ([]models.ChatIndexEntry, error) {
	return f.list, f.listErr
}

type fakeRepoMgr struct {
	chats     *fakeChatsRepo
	userChats *fakeUserChatsRepo
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoMgr) Chats(dbx.DBTX) chats.Repository              { return m.chats }
func (m *fakeRepoMgr) UserChats(dbx.DBTX) userchats.Repository      { return m.userChats }

func newChatSvc(t *testing.T) (*ChatService, *fakeRepoMgr, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := &fakeRepoMgr{chats: &fakeChatsRepo{}, userChats: &fakeUserChatsRepo{}}
	return NewChatService(db, rm), rm, mock
}

func withChatID(t *testing.T, id string) {
	t.Helper()
	orig := newChatID
	newChatID = func() string { return id }
	t.Cleanup(func() { newChatID = orig })
}

func TestChatService_Create_CommitsBothWrites(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	withChatID(t, "c1")

	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), "u1", "Explain recursion")
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	require.Len(t, rm.chats.created, 1)
	created := rm.chats.created[0]
	assert.Equal(t, "u1", created.UserID)
	require.Len(t, created.History, 1)
	assert.Equal(t, common.RoleUser, created.History[0].Role)
	assert.Equal(t, "Explain recursion", created.History[0].Text())

	assert.Equal(t, []models.ChatIndexEntry{{ID: "c1", Title: "Explain recursion"}}, rm.userChats.added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_Create_TitleIsFirst40Runes(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	withChatID(t, "c1")
	mock.ExpectBegin()
	mock.ExpectCommit()

	text := strings.Repeat("ж", 50)
	_, err := svc.Create(context.Background(), "u1", text)
	require.NoError(t, err)

	require.Len(t, rm.userChats.added, 1)
	assert.Equal(t, strings.Repeat("ж", 40), rm.userChats.added[0].Title)
	assert.Equal(t, text, rm.chats.created[0].History[0].Text())
}

func TestChatService_Create_EmptyText(t *testing.T) {
	svc, rm, mock := newChatSvc(t)

	_, err := svc.Create(context.Background(), "u1", "")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, rm.chats.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_Create_WhitespaceTextIsKeptVerbatim(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	withChatID(t, "c1")
	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := svc.Create(context.Background(), "u1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "c1", id)

	require.Len(t, rm.chats.created, 1)
	assert.Equal(t, "   ", rm.chats.created[0].History[0].Text())
	require.Len(t, rm.userChats.added, 1)
	assert.Equal(t, "   ", rm.userChats.added[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_Create_IndexFailureRollsBack(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	withChatID(t, "c1")
	rm.userChats.addErr = errors.New("index down")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "u1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_Create_BeginError(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	_, err := svc.Create(context.Background(), "u1", "hello")
	require.Error(t, err)
	assert.Empty(t, rm.chats.created)
}

func TestChatService_Get(t *testing.T) {
	svc, rm, _ := newChatSvc(t)
	rm.chats.chat = &models.Chat{ID: "c1", UserID: "u1"}

	chat, err := svc.Get(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)

	_, err = svc.Get(context.Background(), "u2", "c1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.Get(context.Background(), "u1", "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestChatService_AppendTurns_Order(t *testing.T) {
	svc, rm, _ := newChatSvc(t)
	rm.chats.matched = 1

	res, err := svc.AppendTurns(context.Background(), "u1", "c1", AppendRequest{Question: "q", Answer: "ok", Img: "uploads/1"})
	require.NoError(t, err)
	assert.Equal(t, &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, res)

	require.Len(t, rm.chats.appended, 1)
	turns := rm.chats.appended[0]
	require.Len(t, turns, 2)
	assert.Equal(t, models.NewTurn(common.RoleUser, "q", "uploads/1"), turns[0])
	assert.Equal(t, models.NewTurn(common.RoleModel, "ok", ""), turns[1])
}

func TestChatService_AppendTurns_AnswerOnly(t *testing.T) {
	svc, rm, _ := newChatSvc(t)

	res, err := svc.AppendTurns(context.Background(), "u1", "c1", AppendRequest{Answer: "Recursion is..."})
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	assert.EqualValues(t, 0, res.MatchedCount)

	require.Len(t, rm.chats.appended[0], 1)
	assert.Equal(t, common.RoleModel, rm.chats.appended[0][0].Role)
}

func TestChatService_AppendTurns_AnswerLength(t *testing.T) {
	tests := []struct {
		answer  string
		wantErr bool
	}{
		{"", true},
		{"a", true},
		{"é", true},
		{"ok", false},
		{"日本", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			svc, rm, _ := newChatSvc(t)
			_, err := svc.AppendTurns(context.Background(), "u1", "c1", AppendRequest{Answer: tt.answer})
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				assert.Empty(t, rm.chats.appended)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.answer, rm.chats.appended[0][0].Text())
		})
	}
}

func TestChatService_AppendTurns_RepoError(t *testing.T) {
	svc, rm, _ := newChatSvc(t)
	rm.chats.appendErr = errors.New("db")

	_, err := svc.AppendTurns(context.Background(), "u1", "c1", AppendRequest{Answer: "ok"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrValidation)
}

func TestChatService_Delete_CommitsBothWrites(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
	assert.Equal(t, []string{"c1"}, rm.chats.deleted)
	assert.Equal(t, []string{"c1"}, rm.userChats.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_Delete_IndexFailureRollsBack(t *testing.T) {
	svc, rm, mock := newChatSvc(t)
	rm.userChats.removeErr = errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Error(t, svc.Delete(context.Background(), "u1", "c1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_List(t *testing.T) {
	svc, rm, _ := newChatSvc(t)
	rm.userChats.list = []models.ChatIndexEntry{{ID: "c1", Title: "t"}}

	got, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, rm.userChats.list, got)

	rm.userChats.listErr = errors.New("db")
	_, err = svc.List(context.Background(), "u1")
	require.Error(t, err)
}
