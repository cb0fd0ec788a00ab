package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/gophchat/internal/client/conversation"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// renderer formats chats for the terminal. Model answers are markdown.
type renderer struct {
	md *glamour.TermRenderer

	user   lipgloss.Style
	model  lipgloss.Style
	failed lipgloss.Style
	dim    lipgloss.Style
}

func newRenderer(width int) (*renderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &renderer{
		md:     md,
		user:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		model:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		failed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Faint(true),
	}, nil
}

func (r *renderer) label(role string) string {
	if role == common.RoleUser {
		return r.user.Render("you ▸")
	}
	return r.model.Render("model ▸")
}

func (r *renderer) markdown(text string) string {
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Message renders one displayed message.
func (r *renderer) Message(m conversation.Message) string {
	var b strings.Builder
	b.WriteString(r.label(m.Role))
	b.WriteString("\n")

	switch {
	case m.Role == common.RoleUser:
		b.WriteString(m.Text)
		if m.Img != "" {
			b.WriteString("\n")
			b.WriteString(r.dim.Render("[image " + m.Img + "]"))
		}
	case m.Failed:
		if m.Text != "" {
			b.WriteString(r.markdown(m.Text))
			b.WriteString("\n")
		}
		b.WriteString(r.failed.Render("Generation failed."))
	default:
		b.WriteString(r.markdown(m.Text))
	}
	return b.String()
}

// Chat renders a whole conversation, or its error state.
func (r *renderer) Chat(s *conversation.State) string {
	if msg := s.Err(); msg != "" {
		return r.failed.Render(msg)
	}
	msgs := s.Messages()
	if len(msgs) == 0 {
		return r.dim.Render("(empty chat)")
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Message(m))
	}
	return strings.Join(parts, "\n\n")
}

// Index renders the chat list, numbered from 1.
func (r *renderer) Index(entries []models.ChatIndexEntry) string {
	if len(entries) == 0 {
		return r.dim.Render("No chats yet. Start one with: new <text>")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%3d. %s %s", i+1, e.Title, r.dim.Render("("+e.ID+")"))
	}
	return b.String()
}
