// Package prompt asks the user questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/iasql/cli/internal/ui"
)

// ErrNoSelection is returned by MultiSelect when the user picks nothing.
var ErrNoSelection = errors.New("nothing selected")

// Prompter asks interactive questions.
type Prompter interface {
	// Confirm asks a yes/no question. An empty answer selects def.
	Confirm(message string, def bool) (bool, error)
	// Input reads a line of text. Optional inputs may be answered with an empty line.
	Input(message string, optional bool) (string, error)
	// Secret reads a line without echoing it when attached to a terminal.
	Secret(message string) (string, error)
	// Select picks one item by number. An empty answer selects def.
	Select(message string, items []string, def int) (int, error)
	// MultiSelect picks any number of items by comma-separated numbers.
	MultiSelect(message string, items []string) ([]int, error)
}

// Terminal is a line-based Prompter reading from in and writing to out.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// Compile-time check to ensure Terminal implements Prompter
var _ Prompter = (*Terminal)(nil)

// New creates a Terminal on the process's stdin and stdout.
func New() *Terminal {
	return NewTerminal(os.Stdin, os.Stdout)
}

// NewTerminal creates a Terminal on the given streams. Secrets are read without
// echo only when in is an *os.File attached to a terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm asks a yes/no question until it gets a usable answer.
func (t *Terminal) Confirm(message string, def bool) (bool, error) {
	hint := "Y/n"
	if !def {
		hint = "y/N"
	}
	for {
		t.ask(fmt.Sprintf("%s %s", message, ui.Gray("["+hint+"]")))
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = fmt.Fprintf(t.out, "%s Please answer y or n\n", ui.ErrorPrefix())
	}
}

// Input reads a line of text, asking again when a required answer is empty.
func (t *Terminal) Input(message string, optional bool) (string, error) {
	for {
		t.ask(message)
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" || optional {
			return answer, nil
		}
	}
}

// Secret reads a line without echo on a terminal, and as plain input otherwise.
func (t *Terminal) Secret(message string) (string, error) {
	if t.fd < 0 || !term.IsTerminal(t.fd) {
		return t.Input(message, false)
	}
	for {
		t.ask(message)
		raw, err := term.ReadPassword(t.fd)
		_, _ = fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		if answer := strings.TrimSpace(string(raw)); answer != "" {
			return answer, nil
		}
	}
}

// Select lists items with 1-based numbers and returns the chosen index.
func (t *Terminal) Select(message string, items []string, def int) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("no items to select from")
	}
	if def < 0 || def >= len(items) {
		def = 0
	}
	t.list(items)
	for {
		t.ask(fmt.Sprintf("%s %s", message, ui.Gray(fmt.Sprintf("[%d]", def+1))))
		answer, err := t.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		_, _ = fmt.Fprintf(t.out, "%s Enter a number between 1 and %d\n", ui.ErrorPrefix(), len(items))
	}
}

// MultiSelect lists items and returns the indices of every chosen item in the
// order given, without duplicates.
func (t *Terminal) MultiSelect(message string, items []string) ([]int, error) {
	if len(items) == 0 {
		return nil, errors.New("no items to select from")
	}
	t.list(items)
	for {
		t.ask(fmt.Sprintf("%s %s", message, ui.Gray("[comma-separated numbers]")))
		answer, err := t.readLine()
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return nil, ErrNoSelection
		}
		picked, ok := parseSelection(answer, len(items))
		if ok {
			return picked, nil
		}
		_, _ = fmt.Fprintf(t.out, "%s Enter numbers between 1 and %d\n", ui.ErrorPrefix(), len(items))
	}
}

func parseSelection(answer string, n int) ([]int, bool) {
	seen := make(map[int]bool)
	var picked []int
	for _, field := range strings.Split(answer, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		i, err := strconv.Atoi(field)
		if err != nil || i < 1 || i > n {
			return nil, false
		}
		if !seen[i-1] {
			seen[i-1] = true
			picked = append(picked, i-1)
		}
	}
	return picked, len(picked) > 0
}

func (t *Terminal) ask(message string) {
	_, _ = fmt.Fprintf(t.out, "%s %s: ", ui.PromptPrefix(), ui.Bold(message))
}

func (t *Terminal) list(items []string) {
	for i, item := range items {
		_, _ = fmt.Fprintf(t.out, "  %s %s\n", ui.Gray(fmt.Sprintf("%d)", i+1)), item)
	}
}

// readLine returns the next line without its line ending. A final line without
// a newline is still returned; io.EOF is only reported when nothing was read.
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
