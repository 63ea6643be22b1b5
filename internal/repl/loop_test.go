package repl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"taskpro/internal/i18n"
	"taskpro/internal/storage"
	"taskpro/internal/task"
	"taskpro/internal/taskstore"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

type fixture struct {
	loop  *Loop
	store *taskstore.Store
	kv    *storage.MemoryStore
	clock *fakeClock
	out   *bytes.Buffer
	dir   string
}

func newFixture(t *testing.T, list ...task.Task) *fixture {
	t.Helper()
	f := &fixture{
		kv:    storage.NewMemoryStore(),
		clock: &fakeClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)},
		out:   &bytes.Buffer{},
		dir:   t.TempDir(),
	}
	raw, _ := taskstore.EncodeTasks(list)
	_ = f.kv.Set(storage.KeyTasks, raw)
	f.store = taskstore.New(taskstore.Options{Storage: f.kv, Now: f.clock.Now, UndoWindow: 4 * time.Second})
	f.store.Load()
	f.loop = NewLoop(Options{
		Store:     f.store,
		Locale:    i18n.New("en"),
		Out:       f.out,
		ExportDir: f.dir,
	})
	return f
}

func tasks(texts ...string) []task.Task {
	list := make([]task.Task, 0, len(texts))
	for i, text := range texts {
		list = append(list, task.Task{ID: int64(i + 1), Text: text})
	}
	return list
}

func (f *fixture) exec(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	if f.loop.Exec(line) {
		t.Fatalf("Exec(%q) asked to quit", line)
	}
	return f.out.String()
}

func (f *fixture) texts() []string {
	var out []string
	for _, tk := range f.store.Tasks() {
		out = append(out, tk.Text)
	}
	return out
}

func TestExec_AddAndList(t *testing.T) {
	f := newFixture(t)
	out := f.exec(t, "add Buy milk @2024-05-01")
	if !strings.Contains(out, `Added "Buy milk"`) {
		t.Fatalf("missing status: %q", out)
	}
	if !strings.Contains(out, "  1. [ ] 📌 Buy milk  📅 2024-05-01 overdue") {
		t.Fatalf("unexpected row: %q", out)
	}
	if !strings.Contains(out, "1 tasks · 0 done · 0%") {
		t.Fatalf("missing stats: %q", out)
	}
	if got := f.store.Tasks()[0].Date; got != "2024-05-01" {
		t.Fatalf("date=%q", got)
	}
}

func TestExec_ColumnsAlignByDisplayWidth(t *testing.T) {
	list := tasks("买牛奶", "walk dog")
	list[0].Date = "2024-06-01"
	list[1].Date = "2024-06-02"
	f := newFixture(t, list...)
	out := f.exec(t, "list")
	lines := strings.Split(out, "\n")
	col := func(s string) int {
		return runewidth.StringWidth(s[:strings.Index(s, "📅")])
	}
	if col(lines[0]) != col(lines[1]) {
		t.Fatalf("dates not aligned:\n%s\n%s", lines[0], lines[1])
	}
}

func TestExec_RowCommands(t *testing.T) {
	f := newFixture(t, tasks("A", "B", "C")...)

	out := f.exec(t, "done 2")
	if !strings.Contains(out, `Marked "B" done`) || !f.store.Tasks()[1].Done {
		t.Fatalf("done: %q", out)
	}
	f.exec(t, "pin 3")
	if got := strings.Join(f.texts(), ","); got != "C,A,B" {
		t.Fatalf("pin order=%s", got)
	}
	f.exec(t, "move 1 3")
	if got := strings.Join(f.texts(), ","); got != "A,B,C" {
		t.Fatalf("move order=%s", got)
	}
	f.exec(t, "edit 1 Apples")
	if f.texts()[0] != "Apples" {
		t.Fatalf("edit: %v", f.texts())
	}
	out = f.exec(t, "edit 1   ")
	if !strings.Contains(out, "cannot be empty") || f.texts()[0] != "Apples" {
		t.Fatalf("blank edit: %q %v", out, f.texts())
	}
}

func TestExec_Errors(t *testing.T) {
	f := newFixture(t, tasks("A")...)
	tests := []struct {
		line string
		want string
	}{
		{"frob", `Unknown command "frob"`},
		{"done 5", "No task at row 5"},
		{"done x", "No task at row x"},
		{"move 1", "Usage: move <from> <to>"},
		{"add milk @tomorrow", `Invalid date "tomorrow"`},
	}
	for _, tt := range tests {
		if out := f.exec(t, tt.line); !strings.Contains(out, tt.want) {
			t.Errorf("%q: got %q, want %q", tt.line, out, tt.want)
		}
	}
	if got := f.texts(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("errors changed the list: %v", got)
	}
}

func TestExec_DeleteAndUndo(t *testing.T) {
	f := newFixture(t, tasks("A", "B", "C")...)
	out := f.exec(t, "del 2")
	if !strings.Contains(out, `Deleted "B" · undo within 4s`) {
		t.Fatalf("toast: %q", out)
	}
	if !strings.Contains(f.loop.prompt(), "(undo)") {
		t.Fatalf("prompt should advertise undo: %q", f.loop.prompt())
	}
	f.clock.t = f.clock.t.Add(3 * time.Second)
	out = f.exec(t, "undo")
	if !strings.Contains(out, `Restored "B"`) {
		t.Fatalf("undo: %q", out)
	}
	if got := strings.Join(f.texts(), ","); got != "A,B,C" {
		t.Fatalf("order after undo=%s", got)
	}
}

func TestExec_UndoAfterWindow(t *testing.T) {
	f := newFixture(t, tasks("A", "B")...)
	f.exec(t, "rm 1")
	f.clock.t = f.clock.t.Add(5 * time.Second)
	if strings.Contains(f.loop.prompt(), "(undo)") {
		t.Fatal("prompt still offers undo after the window")
	}
	out := f.exec(t, "u")
	if !strings.Contains(out, "Nothing to undo") {
		t.Fatalf("late undo: %q", out)
	}
	if got := strings.Join(f.texts(), ","); got != "B" {
		t.Fatalf("list=%s", got)
	}
}

func TestExec_Swipe(t *testing.T) {
	f := newFixture(t, tasks("A", "B")...)
	if out := f.exec(t, "swipe 1 81"); !strings.Contains(out, `Marked "A" done`) {
		t.Fatalf("swipe right: %q", out)
	}
	if out := f.exec(t, "swipe 2 80"); out != "" {
		t.Fatalf("swipe at threshold should do nothing, got %q", out)
	}
	if out := f.exec(t, "swipe 2 -81"); !strings.Contains(out, `Deleted "B"`) {
		t.Fatalf("swipe left: %q", out)
	}
}

func TestExec_SearchKeepsRowNumbers(t *testing.T) {
	f := newFixture(t, tasks("Buy milk", "Walk dog", "Buy bread")...)
	out := f.exec(t, "/ buy")
	if strings.Contains(out, "Walk dog") {
		t.Fatalf("filter leaked: %q", out)
	}
	if !strings.Contains(out, "  3. [ ]") {
		t.Fatalf("row numbers should follow the full list: %q", out)
	}
	if !strings.Contains(out, "3 tasks · 0 done · 0%") {
		t.Fatalf("stats should cover the full list: %q", out)
	}
	out = f.exec(t, "search zzz")
	if !strings.Contains(out, `No tasks match "zzz"`) {
		t.Fatalf("no match: %q", out)
	}
	out = f.exec(t, "search")
	if !strings.Contains(out, "Filter cleared") || !strings.Contains(out, "Walk dog") {
		t.Fatalf("clear: %q", out)
	}
}

func TestExec_Export(t *testing.T) {
	list := tasks("Buy milk", "Walk dog")
	list[1].Done = true
	f := newFixture(t, list...)

	out := f.exec(t, "export csv")
	if !strings.Contains(out, "Task,Status,Due Date\n\"Buy milk\",Pending,\n\"Walk dog\",Done,\n") {
		t.Fatalf("csv: %q", out)
	}
	out = f.exec(t, "export pdf")
	path := filepath.Join(f.dir, "tasks.pdf")
	if !strings.Contains(out, path) {
		t.Fatalf("pdf status: %q", out)
	}
	if data, err := os.ReadFile(path); err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf file: %v", err)
	}
	md := filepath.Join(f.dir, "list.md")
	f.exec(t, "export md "+md)
	if data, err := os.ReadFile(md); err != nil || !strings.Contains(string(data), "~~Walk dog") {
		t.Fatalf("md file: %q %v", data, err)
	}
	out = f.exec(t, "export csv "+filepath.Join(f.dir, "missing", "x.csv"))
	if !strings.Contains(out, "Export failed") {
		t.Fatalf("write failure: %q", out)
	}
}

func TestExec_Theme(t *testing.T) {
	f := newFixture(t)
	if out := f.exec(t, "theme"); !strings.Contains(out, "Theme: dark") {
		t.Fatalf("theme: %q", out)
	}
	if out := f.exec(t, "theme toggle"); !strings.Contains(out, "Theme: light") {
		t.Fatalf("toggle: %q", out)
	}
	if got, _ := f.kv.Get(storage.KeyTheme); got != taskstore.ThemeLight {
		t.Fatalf("persisted theme=%q", got)
	}
	if f.loop.palette() != lightPalette {
		t.Fatal("light theme should use the light palette")
	}
}

func TestExec_PersistFailureIsReported(t *testing.T) {
	f := newFixture(t, tasks("A")...)
	f.kv.FailSet = errors.New("disk full")
	out := f.exec(t, "add B")
	if !strings.Contains(out, "Not saved: disk full") {
		t.Fatalf("missing persist error: %q", out)
	}
	if got := strings.Join(f.texts(), ","); got != "A,B" {
		t.Fatalf("change should stay in memory: %s", got)
	}
}

func TestExec_HelpListsEveryCommand(t *testing.T) {
	f := newFixture(t)
	out := f.exec(t, "help")
	for _, want := range []string{"Commands", "add <text> [@YYYY-MM-DD]", "del <n>", "(rm, delete)", "export csv|print|pdf|md [file]"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestRun_ReadsUntilQuit(t *testing.T) {
	f := newFixture(t)
	in := NewBasicInput(strings.NewReader("add one\n\nadd two\nquit\nadd three\n"), f.out)
	if err := f.loop.Run(in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(f.texts(), ","); got != "one,two" {
		t.Fatalf("list=%s", got)
	}
	out := f.out.String()
	if !strings.HasPrefix(out, "TaskPro · type help for commands") || !strings.HasSuffix(out, "Bye\n") {
		t.Fatalf("output framing: %q", out)
	}
}

func TestRun_StopsAtEOFWithoutTrailingNewline(t *testing.T) {
	f := newFixture(t)
	in := NewBasicInput(strings.NewReader("add last"), nil)
	if err := f.loop.Run(in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(f.texts(), ","); got != "last" {
		t.Fatalf("list=%s", got)
	}
}

func TestPaint(t *testing.T) {
	f := newFixture(t)
	if got := f.loop.paint(ansiRed, "x"); got != "x" {
		t.Fatalf("colour off: %q", got)
	}
	f.loop.color = true
	if got := f.loop.paint(ansiRed, "x"); got != ansiRed+"x"+ansiReset {
		t.Fatalf("colour on: %q", got)
	}
}

func TestUseColor_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if UseColor(int(os.Stdout.Fd())) {
		t.Fatal("NO_COLOR must disable colour")
	}
}
