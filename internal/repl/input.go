package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"taskpro/internal/command"
)

// LineInput reads one command line at a time.
type LineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewBasicInput reads lines from in, echoing the prompt to out. Used when stdin is not a terminal.
func NewBasicInput(in io.Reader, out io.Writer) LineInput {
	return &basicLineInput{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil && prompt != "" {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		// last line without a trailing newline still counts
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// completer offers every command name and alias for tab completion.
func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, spec := range command.Specs {
		items = append(items, readline.PcItem(spec.Name))
		for _, alias := range spec.Aliases {
			items = append(items, readline.PcItem(alias))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// NewLineInput prefers readline with persistent history. When readline cannot
// start it still returns a usable plain-stdin input, together with the error.
func NewLineInput(historyPath string) (LineInput, error) {
	rl, err := newReadlineInput(historyPath)
	if err == nil {
		return rl, nil
	}
	return NewBasicInput(os.Stdin, os.Stdout), err
}
