// Package command maps a text command line to exactly one store operation.
// The REPL uses it for every line; the TUI uses it for its ":" prompt.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskpro/internal/export"
	"taskpro/internal/task"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrRowOutOfRange  = errors.New("row out of range")
	ErrUsage          = errors.New("usage")
	ErrInvalidDate    = errors.New("invalid date")
)

// Kind identifies an action.
type Kind int

const (
	KindNone Kind = iota
	KindAdd
	KindToggle
	KindPin
	KindEdit
	KindDelete
	KindUndo
	KindMove
	KindSwipe
	KindSearch
	KindExport
	KindTheme
	KindList
	KindStats
	KindHelp
	KindQuit
)

// Action is a parsed command. Row and To are 0-based list positions.
type Action struct {
	Kind   Kind
	Row    int
	To     int
	Text   string
	Date   string
	Query  string
	DeltaX float64
	Format export.Format
	Path   string
	Theme  string
}

// Spec describes one command for help output.
type Spec struct {
	Name     string
	Aliases  []string
	Usage    string
	Synopsis string
	kind     Kind
	parse    func(args []string, rest string) (Action, error)
}

var exportUsage = func() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return "export " + strings.Join(names, "|") + " [file]"
}()

// Specs is the command table in help order.
var Specs = []Spec{
	{Name: "add", Aliases: []string{"a"}, Usage: "add <text> [@YYYY-MM-DD]", Synopsis: "add a task, optionally with a due date", kind: KindAdd, parse: parseAdd},
	{Name: "done", Aliases: []string{"toggle", "x"}, Usage: "done <n>", Synopsis: "toggle done on row n", kind: KindToggle, parse: rowOnly(KindToggle, "done <n>")},
	{Name: "pin", Usage: "pin <n>", Synopsis: "move row n to the top", kind: KindPin, parse: rowOnly(KindPin, "pin <n>")},
	{Name: "edit", Aliases: []string{"e"}, Usage: "edit <n> <text>", Synopsis: "replace the text of row n", kind: KindEdit, parse: parseEdit},
	{Name: "del", Aliases: []string{"rm", "delete"}, Usage: "del <n>", Synopsis: "delete row n (undo available briefly)", kind: KindDelete, parse: rowOnly(KindDelete, "del <n>")},
	{Name: "undo", Aliases: []string{"u"}, Usage: "undo", Synopsis: "restore the last deleted task", kind: KindUndo},
	{Name: "move", Aliases: []string{"mv"}, Usage: "move <from> <to>", Synopsis: "reorder a task", kind: KindMove, parse: parseMove},
	{Name: "swipe", Usage: "swipe <n> <dx>", Synopsis: "swipe row n: dx>threshold toggles, dx<-threshold deletes", kind: KindSwipe, parse: parseSwipe},
	{Name: "search", Aliases: []string{"/", "find"}, Usage: "search [query]", Synopsis: "filter rows; no query clears", kind: KindSearch, parse: parseSearch},
	{Name: "export", Usage: exportUsage, Synopsis: "export the list", kind: KindExport, parse: parseExport},
	{Name: "theme", Usage: "theme [dark|light|toggle]", Synopsis: "show or change the theme", kind: KindTheme, parse: parseTheme},
	{Name: "list", Aliases: []string{"ls"}, Usage: "list", Synopsis: "show tasks", kind: KindList},
	{Name: "stats", Usage: "stats", Synopsis: "show progress", kind: KindStats},
	{Name: "help", Aliases: []string{"?", "h"}, Usage: "help", Synopsis: "show this help", kind: KindHelp},
	{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Synopsis: "leave", kind: KindQuit},
}

// Lookup finds a command by name or alias.
func Lookup(name string) (Spec, bool) {
	name = strings.ToLower(name)
	for _, s := range Specs {
		if s.Name == name {
			return s, true
		}
		for _, a := range s.Aliases {
			if a == name {
				return s, true
			}
		}
	}
	return Spec{}, false
}

// Parse 解析一行命令
// Parse turns a command line into an Action. A blank line is KindNone with no error.
func Parse(line string) (Action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Action{Kind: KindNone}, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	spec, ok := Lookup(name)
	if !ok {
		return Action{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if spec.parse == nil {
		return Action{Kind: spec.kind}, nil
	}
	return spec.parse(strings.Fields(rest), rest)
}

func usage(u string) error {
	return fmt.Errorf("%w: %s", ErrUsage, u)
}

// ParseRow converts a 1-based row number to a list index.
func ParseRow(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s", ErrRowOutOfRange, s)
	}
	return n - 1, nil
}

func rowOnly(kind Kind, u string) func([]string, string) (Action, error) {
	return func(args []string, _ string) (Action, error) {
		if len(args) != 1 {
			return Action{}, usage(u)
		}
		row, err := ParseRow(args[0])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: kind, Row: row}, nil
	}
}

func parseAdd(args []string, rest string) (Action, error) {
	if len(args) == 0 {
		return Action{}, usage("add <text> [@YYYY-MM-DD]")
	}
	text, date := rest, ""
	if last := args[len(args)-1]; strings.HasPrefix(last, "@") {
		date = strings.TrimPrefix(last, "@")
		if _, err := time.Parse(task.DateLayout, date); err != nil {
			return Action{}, fmt.Errorf("%w: %s", ErrInvalidDate, date)
		}
		text = strings.TrimSpace(strings.TrimSuffix(rest, last))
	}
	return Action{Kind: KindAdd, Text: text, Date: date}, nil
}

func parseEdit(args []string, rest string) (Action, error) {
	if len(args) == 0 {
		return Action{}, usage("edit <n> <text>")
	}
	row, err := ParseRow(args[0])
	if err != nil {
		return Action{}, err
	}
	text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	return Action{Kind: KindEdit, Row: row, Text: text}, nil
}

func parseMove(args []string, _ string) (Action, error) {
	if len(args) != 2 {
		return Action{}, usage("move <from> <to>")
	}
	from, err := ParseRow(args[0])
	if err != nil {
		return Action{}, err
	}
	to, err := ParseRow(args[1])
	if err != nil {
		return Action{}, err
	}
	return Action{Kind: KindMove, Row: from, To: to}, nil
}

func parseSwipe(args []string, _ string) (Action, error) {
	if len(args) != 2 {
		return Action{}, usage("swipe <n> <dx>")
	}
	row, err := ParseRow(args[0])
	if err != nil {
		return Action{}, err
	}
	dx, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Action{}, usage("swipe <n> <dx>")
	}
	return Action{Kind: KindSwipe, Row: row, DeltaX: dx}, nil
}

func parseSearch(_ []string, rest string) (Action, error) {
	return Action{Kind: KindSearch, Query: rest}, nil
}

func parseExport(args []string, _ string) (Action, error) {
	if len(args) == 0 || len(args) > 2 {
		return Action{}, usage(exportUsage)
	}
	f, err := export.ParseFormat(args[0])
	if err != nil {
		return Action{}, usage(exportUsage)
	}
	a := Action{Kind: KindExport, Format: f}
	if len(args) == 2 {
		a.Path = args[1]
	}
	return a, nil
}

func parseTheme(args []string, _ string) (Action, error) {
	switch len(args) {
	case 0:
		return Action{Kind: KindTheme}, nil
	case 1:
		switch v := strings.ToLower(args[0]); v {
		case "dark", "light", "toggle":
			return Action{Kind: KindTheme, Theme: v}, nil
		}
	}
	return Action{}, usage("theme [dark|light|toggle]")
}
