// Package repl is the line-mode front end: one command per line, same store as the TUI.
package repl

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"taskpro/internal/command"
	"taskpro/internal/export"
	"taskpro/internal/i18n"
	"taskpro/internal/taskstore"
	"taskpro/internal/view"
)

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiDim     = "\x1b[90m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
	ansiStrike  = "\x1b[9m"
)

// maxTextWidth caps the text column so dates stay aligned on narrow terminals.
const maxTextWidth = 48

type palette struct {
	accent, ok, warn, err, muted string
}

var (
	darkPalette  = palette{accent: ansiCyan, ok: ansiGreen, warn: ansiYellow, err: ansiRed, muted: ansiDim}
	lightPalette = palette{accent: ansiBlue, ok: ansiGreen, warn: ansiMagenta, err: ansiRed, muted: ansiFaint}
)

// Options configures a Loop.
type Options struct {
	Store  *taskstore.Store
	Locale *i18n.I18n
	Logger *log.Logger
	Out    io.Writer
	// Color enables ANSI output; see UseColor.
	Color bool
	// ExportDir receives PDF exports that name no file.
	ExportDir string
}

// Loop holds REPL state. The search query is the only state beyond the store.
// Loop 持有 REPL 状态：除 store 外只有搜索词
type Loop struct {
	store     *taskstore.Store
	locale    *i18n.I18n
	logger    *log.Logger
	out       io.Writer
	color     bool
	exportDir string
	query     string
}

// NewLoop builds a REPL loop over an already loaded store.
func NewLoop(opts Options) *Loop {
	l := &Loop{
		store:     opts.Store,
		locale:    opts.Locale,
		logger:    opts.Logger,
		out:       opts.Out,
		color:     opts.Color,
		exportDir: opts.ExportDir,
	}
	if l.locale == nil {
		l.locale = i18n.New("en")
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.exportDir == "" {
		l.exportDir = "."
	}
	return l
}

// Run prints the list, then executes lines until quit or end of input.
func (l *Loop) Run(in LineInput) error {
	fmt.Fprintln(l.out, l.paint(ansiBold, l.locale.T("repl.welcome")))
	l.printList()
	for {
		line, err := in.ReadLine(l.prompt())
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(l.out)
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(l.out, l.locale.T("repl.bye"))
			return nil
		}
		if err != nil {
			return err
		}
		if l.Exec(line) {
			fmt.Fprintln(l.out, l.locale.T("repl.bye"))
			return nil
		}
	}
}

// Exec runs one command line and reports whether the loop should stop.
func (l *Loop) Exec(line string) bool {
	act, err := command.Parse(line)
	if err != nil {
		l.fail(command.Describe(err, l.locale.T))
		return false
	}
	switch act.Kind {
	case command.KindNone:
		return false
	case command.KindQuit:
		return true
	case command.KindHelp:
		l.printHelp()
		return false
	case command.KindList:
		l.printList()
		return false
	case command.KindStats:
		l.printStats()
		return false
	case command.KindSearch:
		l.query = act.Query
		if strings.TrimSpace(act.Query) == "" {
			l.info(l.locale.T("status.search_cleared"))
		} else {
			l.info(l.locale.T("status.search", act.Query))
		}
		l.printList()
		return false
	case command.KindExport:
		if act.Path == "" && act.Format == export.PDF {
			act.Path = filepath.Join(l.exportDir, act.Format.FileName())
		}
	}

	res, err := command.Apply(l.store, act)
	if err != nil {
		switch {
		case command.IsUserError(err):
			l.fail(command.Describe(err, l.locale.T))
			return false
		case act.Kind == command.KindExport:
			l.logger.Error("export failed", "format", act.Format, "err", err)
			l.fail(l.locale.T("error.export", err))
			return false
		default:
			l.logger.Error("persist failed", "action", line, "err", err)
			l.fail(l.locale.T("status.persist_failed", err))
		}
	}
	l.describe(res)
	return false
}

// describe prints the outcome of a store action and, for changes, the list.
func (l *Loop) describe(res command.Result) {
	act := res.Action
	switch act.Kind {
	case command.KindExport:
		if act.Path == "" {
			l.out.Write(res.Data)
			if len(res.Data) > 0 && res.Data[len(res.Data)-1] != '\n' {
				fmt.Fprintln(l.out)
			}
			return
		}
		l.ok(l.locale.T("status.exported", string(act.Format), act.Path))
		return
	case command.KindTheme:
		l.info(l.locale.T("status.theme", l.locale.T("theme."+res.Theme)))
		return
	case command.KindUndo:
		if !res.Changed {
			l.info(l.locale.T("undo.nothing"))
			return
		}
		l.ok(l.locale.T("undo.restored", res.Task.Text))
	}
	if !res.Changed {
		return
	}
	switch act.Kind {
	case command.KindAdd:
		l.ok(l.locale.T("status.added", res.Task.Text))
	case command.KindToggle:
		l.ok(l.doneMessage(res))
	case command.KindPin:
		l.ok(l.locale.T("status.pinned", res.Task.Text))
	case command.KindEdit:
		if strings.TrimSpace(act.Text) == "" {
			l.info(l.locale.T("status.blank"))
		} else {
			l.ok(l.locale.T("status.edited", res.Task.Text))
		}
	case command.KindMove:
		l.ok(l.locale.T("status.moved", act.To+1))
	case command.KindDelete:
		l.warn(l.undoToast(res.Undo))
	case command.KindSwipe:
		switch res.Swipe {
		case taskstore.SwipeToggle:
			l.ok(l.doneMessage(res))
		case taskstore.SwipeDelete:
			l.warn(l.undoToast(res.Undo))
		}
	}
	l.printList()
}

func (l *Loop) doneMessage(res command.Result) string {
	if res.Task.Done {
		return l.locale.T("status.done", res.Task.Text)
	}
	return l.locale.T("status.pending", res.Task.Text)
}

func (l *Loop) undoToast(info taskstore.UndoInfo) string {
	secs := int(math.Ceil(info.Deadline.Sub(l.store.Now()).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return l.locale.T("undo.toast", info.Task.Text, secs)
}

func (l *Loop) printList() {
	v := view.Render(l.store.Tasks(), l.store.Now(), l.query)
	p := l.palette()
	if len(v.Rows) == 0 {
		if strings.TrimSpace(l.query) != "" {
			fmt.Fprintln(l.out, l.paint(p.muted, l.locale.T("list.no_match", l.query)))
		} else {
			fmt.Fprintln(l.out, l.paint(p.muted, l.locale.T("list.empty")))
		}
		l.printStats()
		return
	}
	width := 0
	for _, r := range v.Rows {
		width = max(width, runewidth.StringWidth(r.Text))
	}
	width = min(width, maxTextWidth)
	for _, r := range v.Rows {
		fmt.Fprintln(l.out, l.formatRow(r, width, p))
	}
	l.printStats()
}

// formatRow renders "  1. [x] 📌 text   📅 date overdue", padding text by display width.
func (l *Loop) formatRow(r view.Row, width int, p palette) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d. ", r.Index+1)
	if r.Done {
		b.WriteString(l.paint(p.ok, "[x]"))
	} else {
		b.WriteString("[ ]")
	}
	b.WriteByte(' ')
	if r.Pinned {
		b.WriteString(runewidth.FillRight("📌", 3))
	} else {
		b.WriteString("   ")
	}
	text := runewidth.FillRight(runewidth.Truncate(r.Text, width, "…"), width)
	if r.Done {
		text = l.paint(p.muted+ansiStrike, text)
	}
	b.WriteString(text)
	if r.DateLabel != "" {
		date := "  " + r.DateLabel
		if r.Overdue {
			date = l.paint(p.err, date+" "+l.locale.T("label.overdue"))
		} else {
			date = l.paint(p.accent, date)
		}
		b.WriteString(date)
	}
	return strings.TrimRight(b.String(), " ")
}

func (l *Loop) printStats() {
	st := view.Render(l.store.Tasks(), l.store.Now(), "").Stats
	fmt.Fprintln(l.out, l.paint(l.palette().muted, l.locale.T("stats.summary", st.Total, st.DoneCount, st.Percent)))
}

func (l *Loop) printHelp() {
	p := l.palette()
	fmt.Fprintln(l.out, l.paint(ansiBold, l.locale.T("help.title")))
	for _, spec := range command.Specs {
		usage := runewidth.FillRight(spec.Usage, 32)
		line := "  " + l.paint(p.accent, usage) + " " + spec.Synopsis
		if len(spec.Aliases) > 0 {
			line += l.paint(p.muted, " ("+strings.Join(spec.Aliases, ", ")+")")
		}
		fmt.Fprintln(l.out, line)
	}
}

func (l *Loop) prompt() string {
	p := l.palette()
	if _, ok := l.store.PendingUndo(); ok {
		return l.paint(p.accent, "taskpro") + l.paint(p.warn, " (undo)") + "> "
	}
	return l.paint(p.accent, "taskpro") + "> "
}

func (l *Loop) palette() palette {
	if l.store.Theme() == taskstore.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

func (l *Loop) paint(code, s string) string {
	if !l.color || code == "" {
		return s
	}
	return code + s + ansiReset
}

func (l *Loop) ok(msg string)   { fmt.Fprintln(l.out, l.paint(l.palette().ok, msg)) }
func (l *Loop) info(msg string) { fmt.Fprintln(l.out, msg) }
func (l *Loop) warn(msg string) { fmt.Fprintln(l.out, l.paint(l.palette().warn, msg)) }
func (l *Loop) fail(msg string) { fmt.Fprintln(l.out, l.paint(l.palette().err, msg)) }

// UseColor reports whether fd is a terminal that accepts ANSI colour.
func UseColor(fd int) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) == "dumb" {
		return false
	}
	return term.IsTerminal(fd)
}

// Run starts an interactive loop on stdin/stdout with readline history at historyPath.
func Run(opts Options, historyPath string) error {
	in, err := NewLineInput(historyPath)
	if err != nil && opts.Logger != nil {
		opts.Logger.Warn("readline unavailable, using plain input", "err", err)
	}
	defer in.Close()
	return NewLoop(opts).Run(in)
}
