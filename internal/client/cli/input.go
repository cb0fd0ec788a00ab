package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// lineSource returns the next input line without its line ending; ok is
// false once input is exhausted. The REPL and the prompts share one source
// so a prompt reads exactly the line that follows its command.
type lineSource func() (line string, ok bool)

func scannerLines(sc *bufio.Scanner) lineSource {
	return func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
}

// GetSimpleText prints a prompt to w and reads a single line of input.
// A final line without a newline is returned as is; io.EOF is returned
// when no line is left.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(next lineSource, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, ok := next()
	if !ok {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}

// GetSecret prints prompt to w and reads a value without echo when stdin
// is a terminal. Otherwise the value is read as a plain line from next.
func GetSecret(next lineSource, prompt string, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return GetSimpleText(next, prompt, w)
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	secret, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// GetMultiline prints a prompt to w and reads lines until an empty line or
// the end of input. The collected text is joined with '\n'.
func GetMultiline(next lineSource, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, ok := next()
		line = strings.TrimRight(line, "\r")
		if !ok || line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
