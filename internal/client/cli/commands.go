package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/ai"
	"github.com/dmitrijs2005/gophchat/internal/client/conversation"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// report logs err and tells the user what went wrong.
func (a *App) report(ctx context.Context, what string, err error) {
	a.logger.Error(ctx, what, "error", err)
	if errors.Is(err, common.ErrorUnauthorized) {
		fmt.Fprintln(a.out, "Not authenticated. Use 'login' to set a valid token.")
		return
	}
	fmt.Fprintf(a.out, "Error: %s: %v\n", what, err)
}

// Login asks for a bearer token and stores it for later sessions.
func (a *App) Login(ctx context.Context) error {
	token, err := GetSecret(scannerLines(a.in), "Enter bearer token", a.out)
	if err != nil {
		a.report(ctx, "read token", err)
		return err
	}
	if token == "" {
		fmt.Fprintln(a.out, "Token is empty, nothing changed.")
		return nil
	}

	if err := a.meta.SetToken(ctx, token); err != nil {
		a.report(ctx, "save token", err)
		return err
	}
	a.api.SetToken(token)
	a.token = token
	fmt.Fprintln(a.out, "Token saved.")
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	entries, err := a.api.ListChats(ctx)
	if err != nil {
		return err
	}
	a.entries = entries
	return nil
}

// List prints the chat index.
func (a *App) List(ctx context.Context) error {
	if err := a.refresh(ctx); err != nil {
		a.report(ctx, "list chats", err)
		return err
	}
	fmt.Fprintln(a.out, a.render.Index(a.entries))
	return nil
}

// New starts a chat with text as its first question and opens it. Without
// text the question is read from the input.
func (a *App) New(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = GetMultiline(scannerLines(a.in), "Enter your question", a.out)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(a.out, "Nothing to send.")
		return nil
	}

	id, err := a.api.CreateChat(ctx, text)
	if err != nil {
		a.report(ctx, "create chat", err)
		return err
	}

	if err := a.refresh(ctx); err != nil {
		a.logger.Warn(ctx, "refresh chat list", "error", err)
	}
	return a.Open(ctx, id)
}

// resolve maps a number from the last listing to its chat id.
func (a *App) resolve(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(a.entries) {
		return a.entries[n-1].ID
	}
	return arg
}

// Open loads a chat, prints it and answers its opening question if that
// was never sent.
func (a *App) Open(ctx context.Context, arg string) error {
	id := a.resolve(arg)
	a.closeView()

	v := conversation.NewView(id, a.api, a.gen, a.meta, a.config.RevealInterval, a.logger)
	v.OnReveal = a.streamTo

	if err := v.Load(ctx); err != nil {
		a.logger.Error(ctx, "load chat", "chat", id, "error", err)
		fmt.Fprintln(a.out, a.render.Chat(v.State()))
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Fprintln(a.out, "Not authenticated. Use 'login' to set a valid token.")
		}
		return err
	}
	a.view = v
	fmt.Fprintln(a.out, a.render.Chat(v.State()))

	_, err := v.AnswerOpening(ctx)
	a.endStream()
	if err != nil {
		a.reportExchange(ctx, err)
	}
	return err
}

// Attach uploads an image and keeps it for the next message.
func (a *App) Attach(ctx context.Context, path string) error {
	if a.view == nil {
		fmt.Fprintln(a.out, "Open a chat first.")
		return nil
	}

	data, mimeType, err := filex.ReadImage(path)
	if err != nil {
		a.report(ctx, "read image", err)
		return err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		err := fmt.Errorf("%s is %s, not an image", path, mimeType)
		a.report(ctx, "attach", err)
		return err
	}

	key, err := a.api.UploadImage(ctx, data, mimeType)
	if err != nil {
		a.report(ctx, "upload image", err)
		return err
	}

	a.pending = &conversation.Attachment{
		Key:   key,
		Image: &ai.Image{Data: data, MIMEType: mimeType},
	}
	fmt.Fprintf(a.out, "Attached %s. It is sent with your next message.\n", path)
	return nil
}

// Say sends text, and the pending image if any, to the open chat.
func (a *App) Say(ctx context.Context, text string) error {
	if a.view == nil {
		fmt.Fprintln(a.out, "No chat is open. Use 'new <text>' or 'open <id>'.")
		return nil
	}
	if strings.TrimSpace(text) == "" && a.pending == nil {
		fmt.Fprintln(a.out, "Nothing to send.")
		return nil
	}

	att := a.pending
	a.pending = nil

	err := a.view.Submit(ctx, text, att)
	a.endStream()
	if err != nil {
		a.reportExchange(ctx, err)
	}
	return err
}

// Delete removes a chat. Deleting the open chat closes it.
func (a *App) Delete(ctx context.Context, arg string) error {
	id := a.resolve(arg)

	if err := a.api.DeleteChat(ctx, id); err != nil {
		a.report(ctx, "delete chat", err)
		return err
	}
	if err := a.meta.Forget(ctx, id); err != nil {
		a.logger.Warn(ctx, "forget chat flags", "chat", id, "error", err)
	}

	a.entries = slices.DeleteFunc(a.entries, func(e models.ChatIndexEntry) bool { return e.ID == id })
	if a.view != nil && a.view.ChatID() == id {
		a.closeView()
		fmt.Fprintln(a.out, "Deleted the open chat; it was closed.")
		return nil
	}
	fmt.Fprintf(a.out, "Deleted chat %s.\n", id)
	return nil
}

// Show prints the open chat with answers rendered as markdown.
func (a *App) Show(ctx context.Context) error {
	if a.view == nil {
		fmt.Fprintln(a.out, "No chat is open.")
		return nil
	}
	fmt.Fprintln(a.out, a.render.Chat(a.view.State()))
	return nil
}

// Close leaves the open chat.
func (a *App) Close(ctx context.Context) error {
	if a.view == nil {
		fmt.Fprintln(a.out, "No chat is open.")
		return nil
	}
	a.closeView()
	fmt.Fprintln(a.out, "Chat closed.")
	return nil
}

func (a *App) closeView() {
	a.view = nil
	a.pending = nil
}

// streamTo prints the newly revealed part of the streaming answer.
func (a *App) streamTo(text string) {
	if !a.streaming {
		fmt.Fprintln(a.out, a.render.label(common.RoleModel))
		a.streaming = true
	}
	runes := []rune(text)
	if len(runes) > a.printed {
		fmt.Fprint(a.out, string(runes[a.printed:]))
		a.printed = len(runes)
	}
}

func (a *App) endStream() {
	if a.streaming {
		fmt.Fprintln(a.out)
	}
	a.streaming = false
	a.printed = 0
}

// reportExchange explains a failed exchange. A generation failure is shown
// on the message itself.
func (a *App) reportExchange(ctx context.Context, err error) {
	if errors.Is(err, common.ErrGenerationFailed) {
		fmt.Fprintln(a.out, a.render.failed.Render("Generation failed."))
		a.logger.Warn(ctx, "exchange", "error", err)
		return
	}
	a.report(ctx, "exchange", err)
}
