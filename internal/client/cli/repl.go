package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and promptFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	promptFn  = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isChatOpen() bool
	Login(ctx context.Context) error
	List(ctx context.Context) error
	New(ctx context.Context, text string) error
	Open(ctx context.Context, id string) error
	Attach(ctx context.Context, path string) error
	Say(ctx context.Context, text string) error
	Delete(ctx context.Context, id string) error
	Show(ctx context.Context) error
	Close(ctx context.Context) error
}

// needsLogin lists the commands that talk to the server on the user's behalf.
var needsLogin = map[string]bool{
	"l": true, "list": true, "new": true, "open": true,
	"attach": true, "say": true, "delete": true,
}

// runREPL starts a simple read–eval–print loop for the GophChat CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. While a chat is open, a line
// that is not a command is sent to the model as is. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
// Commands:
//
//	help              show available commands
//	login             store a bearer token
//	list | l          list chats
//	new <text>        start a chat with text as the first question
//	open <id|n>       open a chat by id or by its number in the last list
//	attach <path>     attach an image to the next message
//	say <text>        send text to the open chat
//	delete <id|n>     delete a chat
//	show              print the open chat
//	close             close the open chat
//	exit | quit       leave the program
//
// Any errors returned by command handlers are ignored here; handlers
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		promptFn(fmt.Sprintf("chat%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if needsLogin[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first (login).")
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText(a))

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "new":
			_ = a.New(ctx, rest)

		case "open":
			if rest == "" {
				printlnFn("Usage: open <id|n>")
				continue
			}
			_ = a.Open(ctx, rest)

		case "attach":
			if rest == "" {
				printlnFn("Usage: attach <path>")
				continue
			}
			_ = a.Attach(ctx, rest)

		case "say":
			_ = a.Say(ctx, rest)

		case "delete":
			if rest == "" {
				printlnFn("Usage: delete <id|n>")
				continue
			}
			_ = a.Delete(ctx, rest)

		case "show":
			_ = a.Show(ctx)

		case "close":
			_ = a.Close(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if a.isChatOpen() && a.isLoggedIn() {
				_ = a.Say(ctx, line)
				continue
			}
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return "Available commands: login, exit"
	case a.isChatOpen():
		return "Available commands: say <text> (or just type), attach <path>, show, close, (l)ist, new <text>, open <id>, delete <id>, exit"
	default:
		return "Available commands: (l)ist, new <text>, open <id>, delete <id>, login, exit"
	}
}
