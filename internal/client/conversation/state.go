// Package conversation drives one open chat: it loads the transcript,
// sends prompts to the model, paces the answer through the reveal
// pipeline and persists each finished exchange.
package conversation

import (
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// LoadErrorMessage is shown when the transcript cannot be fetched.
const LoadErrorMessage = "Failed to load chat history"

// Message is one entry of the displayed conversation.
type Message struct {
	Role      string
	Text      string
	Img       string
	Streaming bool
	Failed    bool
}

// State is the displayed conversation. All transitions are safe for
// concurrent use.
type State struct {
	mu       sync.Mutex
	messages []Message
	err      string
}

// Reset replaces the messages with the turns of a loaded transcript.
// Turns that are not user turns are shown as model turns.
func (s *State) Reset(history []models.Turn) {
	msgs := make([]Message, 0, len(history))
	for _, t := range history {
		role := common.RoleModel
		if t.Role == common.RoleUser {
			role = common.RoleUser
		}
		msgs = append(msgs, Message{Role: role, Text: t.Text(), Img: t.Img})
	}

	s.mu.Lock()
	s.messages = msgs
	s.err = ""
	s.mu.Unlock()
}

// AppendUser adds a user message.
func (s *State) AppendUser(text, img string) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{Role: common.RoleUser, Text: text, Img: img})
	s.mu.Unlock()
}

// AppendEmptyModel adds the model message that the next answer streams
// into.
func (s *State) AppendEmptyModel() {
	s.mu.Lock()
	s.messages = append(s.messages, Message{Role: common.RoleModel, Streaming: true})
	s.mu.Unlock()
}

// RevealTick sets the text of the streaming message. It is a no-op when
// nothing is streaming.
func (s *State) RevealTick(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.streaming(); m != nil {
		m.Text = text
	}
}

// Finalize closes the streaming message with its final text.
func (s *State) Finalize(text string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.streaming(); m != nil {
		m.Text = text
		m.Streaming = false
		m.Failed = failed
	}
}

// Fail puts the view into a persistent error state.
func (s *State) Fail(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

// Err returns the error shown instead of the conversation, if any.
func (s *State) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Messages returns a copy of the displayed messages.
func (s *State) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// streaming must be called with mu held.
func (s *State) streaming() *Message {
	if n := len(s.messages); n > 0 && s.messages[n-1].Streaming {
		return &s.messages[n-1]
	}
	return nil
}
