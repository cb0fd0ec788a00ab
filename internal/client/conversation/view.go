package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/ai"
	"github.com/dmitrijs2005/gophchat/internal/client/api"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/client/reveal"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// ChatAPI is the part of the REST client a view needs.
type ChatAPI interface {
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	AppendTurns(ctx context.Context, id string, req api.AppendRequest) (*models.UpdateResult, error)
}

// Generator streams model answers.
type Generator interface {
	GenerateStream(ctx context.Context, prompt string, img *ai.Image, onFragment func(cumulative string)) (string, error)
}

// Attachment is an image sent with a prompt: Key references the uploaded
// copy in the transcript, Image carries the bytes for the model.
type Attachment struct {
	Key   string
	Image *ai.Image
}

// View is the controller of one open chat.
type View struct {
	chatID   string
	api      ChatAPI
	gen      Generator
	meta     metadata.Repository
	interval time.Duration
	logger   logging.Logger

	state   State
	opening string

	// OnReveal, when set, receives the streaming text after every reveal.
	OnReveal func(text string)
}

func NewView(chatID string, chats ChatAPI, gen Generator, meta metadata.Repository,
	interval time.Duration, logger logging.Logger) *View {
	return &View{
		chatID:   chatID,
		api:      chats,
		gen:      gen,
		meta:     meta,
		interval: interval,
		logger:   logger.With("module", "conversation", "chat", chatID),
	}
}

func (v *View) ChatID() string { return v.chatID }

// State returns the displayed conversation.
func (v *View) State() *State { return &v.state }

// Load fetches the transcript and shows it. On failure the view stays in
// the error state.
func (v *View) Load(ctx context.Context) error {
	chat, err := v.api.GetChat(ctx, v.chatID)
	if err != nil {
		v.state.Fail(LoadErrorMessage)
		return fmt.Errorf("load chat: %w", err)
	}
	v.state.Reset(chat.History)

	v.opening = ""
	if len(chat.History) == 1 && chat.History[0].Role == common.RoleUser {
		v.opening = chat.History[0].Text()
	}
	return nil
}

// AnswerOpening answers a chat that holds only its opening question. The
// local store remembers that the question was sent, so it is sent once per
// chat. It reports whether an answer was requested.
func (v *View) AnswerOpening(ctx context.Context) (bool, error) {
	if v.opening == "" {
		return false, nil
	}

	answered, err := v.meta.Answered(ctx, v.chatID)
	if err != nil {
		return false, fmt.Errorf("answered flag: %w", err)
	}
	if answered {
		return false, nil
	}
	if err := v.meta.MarkAnswered(ctx, v.chatID); err != nil {
		return false, fmt.Errorf("answered flag: %w", err)
	}

	prompt := v.opening
	v.opening = ""

	// The user turn is already stored, so only the answer is persisted.
	return true, v.exchange(ctx, prompt, nil, "", "")
}

// Submit sends a prompt typed by the user. Blank input without an image
// is rejected with common.ErrEmptyPrompt.
func (v *View) Submit(ctx context.Context, text string, att *Attachment) error {
	text = strings.TrimSpace(text)

	var img *ai.Image
	var key string
	if att != nil {
		img, key = att.Image, att.Key
	}
	if text == "" && img == nil {
		return common.ErrEmptyPrompt
	}

	v.state.AppendUser(text, key)
	return v.exchange(ctx, text, img, text, key)
}

// exchange streams one answer into a new model message and persists the
// result exactly once. Cancelling ctx stops the reveal; nothing is
// finalized or persisted then.
func (v *View) exchange(ctx context.Context, prompt string, img *ai.Image, question, key string) error {
	v.state.AppendEmptyModel()

	p := reveal.New(v.interval, func(text string) {
		v.state.RevealTick(text)
		if v.OnReveal != nil {
			v.OnReveal(text)
		}
	})

	genCtx := context.WithoutCancel(ctx)
	var genErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer p.Close()
		_, genErr = v.gen.GenerateStream(genCtx, prompt, img, p.Push)
	}()

	answer, err := p.Run(ctx)
	if err != nil {
		return err
	}
	<-done

	v.state.Finalize(answer, genErr != nil)
	if genErr != nil {
		v.logger.Warn(ctx, "generation failed", "error", genErr)
	}

	_, perr := v.api.AppendTurns(ctx, v.chatID, api.AppendRequest{
		Question: question,
		Answer:   answer,
		Img:      key,
	})
	if perr != nil {
		v.logger.Error(ctx, "persist exchange failed", "error", perr)
		perr = fmt.Errorf("persist exchange: %w", perr)
	}

	return errors.Join(genErr, perr)
}
