package tui

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"taskpro/internal/command"
	"taskpro/internal/defaults"
	"taskpro/internal/export"
	"taskpro/internal/i18n"
	"taskpro/internal/task"
	"taskpro/internal/taskstore"
	"taskpro/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeAddDate
	modeEdit
	modeSearch
	modeCommand
	modePreview
)

// listTop is the screen row of the first task row: title, stats and filter lines come first.
const listTop = 3

// undoTickMsg 撤销倒计时刷新；seq 对应某一次删除
// undoTickMsg refreshes the undo countdown for the deletion with seq.
type undoTickMsg struct{ seq uint64 }

// live is shared by every copy of App; the store subscription writes into it.
type live struct {
	snap  taskstore.Snapshot
	theme Theme
}

type dragState struct {
	id     int64
	index  int
	startX int
	startY int
	x      int
	y      int
}

// Options configures NewApp.
type Options struct {
	Store          *taskstore.Store
	Locale         *i18n.I18n
	Logger         *log.Logger
	SwipeCellUnits float64
	SwipeThreshold float64
	ExportDir      string
	Clipboard      func(string) error
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int
	cursor int
	offset int

	// 输入 / Input
	mode        mode
	input       textinput.Model
	pendingText string
	editID      int64
	query       string

	preview viewport.Model
	help    help.Model
	drag    *dragState

	status    string
	statusErr bool

	store     *taskstore.Store
	live      *live
	keys      KeyMap
	locale    *i18n.I18n
	logger    *log.Logger
	cellUnits float64
	threshold float64
	exportDir string
	clipboard func(string) error
}

// NewApp 创建 TUI 应用并订阅 store 变更
// NewApp creates the TUI application and subscribes it to store changes.
func NewApp(opts Options) App {
	if opts.Locale == nil {
		opts.Locale = i18n.New("")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.SwipeCellUnits <= 0 {
		opts.SwipeCellUnits = defaults.SwipeCellUnits
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = defaults.SwipeThreshold
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.CharLimit = 512
	ti.Prompt = "› "

	snap := opts.Store.Snapshot()
	lv := &live{snap: snap, theme: ThemeFor(snap.Theme)}
	opts.Store.Subscribe(func(s taskstore.Snapshot) {
		if s.Theme != lv.snap.Theme {
			lv.theme = ThemeFor(s.Theme)
		}
		lv.snap = s
	})

	return App{
		input:     ti,
		help:      help.New(),
		store:     opts.Store,
		live:      lv,
		keys:      DefaultKeyMap(),
		locale:    opts.Locale,
		logger:    opts.Logger,
		cellUnits: opts.SwipeCellUnits,
		threshold: opts.SwipeThreshold,
		exportDir: opts.ExportDir,
		clipboard: opts.Clipboard,
	}
}

func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle(defaults.AppName)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.handle(msg)
	a.clamp()
	return a, cmd
}

func (a *App) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		if a.mode == modePreview {
			a.openPreview()
		}
		return nil

	case undoTickMsg:
		return a.onUndoTick(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		switch a.mode {
		case modeList:
			return a.handleListKey(msg)
		case modePreview:
			return a.handlePreviewKey(msg)
		default:
			return a.handleInputKey(msg)
		}
	}

	if a.inputMode() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd
	}
	return nil
}

// --- 列表模式 / List mode ---

func (a *App) handleListKey(msg tea.KeyMsg) tea.Cmd {
	row, hasRow := a.selected()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Up):
		a.cursor--
	case key.Matches(msg, a.keys.Down):
		a.cursor++
	case key.Matches(msg, a.keys.MoveUp):
		if hasRow {
			a.reorder(row, row.Index-1)
		}
	case key.Matches(msg, a.keys.MoveDown):
		if hasRow {
			a.reorder(row, row.Index+1)
		}
	case key.Matches(msg, a.keys.Add):
		return a.openInput(modeAdd, a.locale.T("input.add"), "")
	case key.Matches(msg, a.keys.Edit):
		if hasRow {
			a.editID = row.ID
			return a.openInput(modeEdit, a.locale.T("input.edit"), row.Text)
		}
	case key.Matches(msg, a.keys.Toggle):
		if hasRow {
			a.toggle(row)
		}
	case key.Matches(msg, a.keys.Pin):
		if hasRow {
			_, err := a.store.Pin(row.ID)
			a.report(err, a.locale.T("status.pinned", row.Text))
			a.focusID(row.ID)
		}
	case key.Matches(msg, a.keys.Delete):
		if hasRow {
			return a.deleteRow(row)
		}
	case key.Matches(msg, a.keys.Undo):
		a.undo()
	case key.Matches(msg, a.keys.Search):
		return a.openInput(modeSearch, a.locale.T("input.search"), a.query)
	case key.Matches(msg, a.keys.Command):
		return a.openInput(modeCommand, "", "")
	case key.Matches(msg, a.keys.Theme):
		theme, err := a.store.ToggleTheme()
		a.report(err, a.locale.T("status.theme", a.locale.T("theme."+theme)))
	case key.Matches(msg, a.keys.CSV):
		a.exportTo(export.CSV)
	case key.Matches(msg, a.keys.PDF):
		a.exportTo(export.PDF)
	case key.Matches(msg, a.keys.Copy):
		a.copyCSV()
	case key.Matches(msg, a.keys.Preview):
		a.openPreview()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return nil
}

func (a *App) toggle(row view.Row) {
	_, err := a.store.ToggleDone(row.ID)
	msgKey := "status.done"
	if row.Done {
		msgKey = "status.pending"
	}
	a.report(err, a.locale.T(msgKey, row.Text))
}

func (a *App) reorder(row view.Row, to int) {
	ok, err := a.store.Reorder(row.Index, to)
	if !ok {
		return
	}
	a.report(err, a.locale.T("status.moved", to+1))
	a.focusID(row.ID)
}

func (a *App) deleteRow(row view.Row) tea.Cmd {
	info, ok, err := a.store.Delete(row.Index)
	if !ok {
		return nil
	}
	a.report(err, "")
	return a.undoTick(info)
}

func (a *App) undo() {
	info, pending := a.store.PendingUndo()
	ok, err := a.store.Undo()
	if !ok {
		a.setStatus(a.locale.T("undo.nothing"), false)
		return
	}
	if pending {
		a.report(err, a.locale.T("undo.restored", info.Task.Text))
		a.focusID(info.Task.ID)
	}
}

// --- 输入模式 / Input modes ---

func (a *App) inputMode() bool {
	switch a.mode {
	case modeAdd, modeAddDate, modeEdit, modeSearch, modeCommand:
		return true
	}
	return false
}

func (a *App) openInput(m mode, placeholder, value string) tea.Cmd {
	a.mode = m
	a.input.Placeholder = placeholder
	a.input.Prompt = "› "
	if m == modeCommand {
		a.input.Prompt = ": "
	}
	a.input.SetValue(value)
	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) closeInput() {
	a.mode = modeList
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		switch a.mode {
		case modeSearch:
			a.query = ""
			a.setStatus(a.locale.T("status.search_cleared"), false)
		case modeAddDate:
			// skip the date and add without one
			a.addPending("")
		}
		a.closeInput()
		return nil
	case "enter":
		return a.submitInput()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if a.mode == modeSearch {
		a.query = a.input.Value()
		a.cursor = 0
	}
	return cmd
}

func (a *App) submitInput() tea.Cmd {
	value := a.input.Value()
	switch a.mode {
	case modeAdd:
		text, ok := task.NormalizeText(value)
		if !ok {
			a.closeInput()
			return nil
		}
		a.pendingText = text
		return a.openInput(modeAddDate, a.locale.T("input.date"), "")
	case modeAddDate:
		date := strings.TrimSpace(value)
		if date != "" {
			if _, err := time.Parse(task.DateLayout, date); err != nil {
				a.setStatus(a.locale.T("error.date", date), true)
				return nil
			}
		}
		a.addPending(date)
	case modeEdit:
		a.commitEdit()
		return nil
	case modeSearch:
		a.query = strings.TrimSpace(value)
		if a.query == "" {
			a.setStatus(a.locale.T("status.search_cleared"), false)
		} else {
			a.setStatus(a.locale.T("status.search", a.query), false)
		}
	case modeCommand:
		a.closeInput()
		return a.runCommand(value)
	}
	a.closeInput()
	return nil
}

func (a *App) addPending(date string) {
	text := a.pendingText
	a.pendingText = ""
	ok, err := a.store.Add(text, date)
	if !ok {
		return
	}
	a.report(err, a.locale.T("status.added", text))
	if last, ok := a.store.At(a.store.Len() - 1); ok {
		a.focusID(last.ID)
	}
}

// commitEdit accepts the edit in progress; blank text keeps the old text.
func (a *App) commitEdit() {
	if a.mode != modeEdit {
		return
	}
	value := a.input.Value()
	id := a.editID
	a.closeInput()
	ok, err := a.store.Edit(id, value)
	if !ok {
		return
	}
	text, _ := task.NormalizeText(value)
	if text == "" {
		a.setStatus(a.locale.T("status.blank"), false)
		return
	}
	a.report(err, a.locale.T("status.edited", text))
}

func (a *App) runCommand(line string) tea.Cmd {
	act, err := command.Parse(line)
	if err != nil {
		a.setStatus(a.describeError(err), true)
		return nil
	}
	switch act.Kind {
	case command.KindNone:
		return nil
	case command.KindQuit:
		return tea.Quit
	case command.KindHelp:
		a.help.ShowAll = true
		return nil
	case command.KindList:
		a.query = ""
		return nil
	case command.KindStats:
		st := task.ComputeStats(a.live.snap.Tasks)
		a.setStatus(a.locale.T("stats.summary", st.Total, st.DoneCount, st.Percent), false)
		return nil
	case command.KindSearch:
		a.query = act.Query
		a.cursor = 0
		return nil
	case command.KindExport:
		if act.Path == "" {
			act.Path = filepath.Join(a.exportDir, act.Format.FileName())
		}
	}

	res, err := command.Apply(a.store, act)
	if err != nil {
		switch {
		case command.IsUserError(err):
			a.setStatus(a.describeError(err), true)
		case act.Kind == command.KindExport:
			a.setStatus(a.locale.T("error.export", err), true)
		default:
			a.report(err, "")
			if res.Undo.State == taskstore.UndoPending {
				return a.undoTick(res.Undo)
			}
		}
		return nil
	}
	switch act.Kind {
	case command.KindExport:
		a.setStatus(a.locale.T("status.exported", string(act.Format), act.Path), false)
	case command.KindTheme:
		a.setStatus(a.locale.T("status.theme", a.locale.T("theme."+res.Theme)), false)
	case command.KindAdd:
		if res.Changed {
			a.setStatus(a.locale.T("status.added", res.Task.Text), false)
			a.focusID(res.Task.ID)
		}
	case command.KindUndo:
		if !res.Changed {
			a.setStatus(a.locale.T("undo.nothing"), false)
		}
	case command.KindPin, command.KindMove, command.KindToggle, command.KindEdit:
		if res.Changed {
			a.focusID(res.Task.ID)
		}
	}
	if res.Undo.State == taskstore.UndoPending {
		return a.undoTick(res.Undo)
	}
	return nil
}

func (a *App) describeError(err error) string {
	return command.Describe(err, a.locale.T)
}

// --- 导出与预览 / Export and preview ---

func (a *App) exportTo(f export.Format) {
	path := filepath.Join(a.exportDir, f.FileName())
	_, err := command.Apply(a.store, command.Action{Kind: command.KindExport, Format: f, Path: path})
	if err != nil {
		a.logger.Error("export failed", "format", f, "err", err)
		a.setStatus(a.locale.T("error.export", err), true)
		return
	}
	a.setStatus(a.locale.T("status.exported", string(f), path), false)
}

func (a *App) copyCSV() {
	if err := a.clipboard(export.CSVString(a.live.snap.Tasks)); err != nil {
		a.logger.Warn("clipboard write failed", "err", err)
		a.setStatus(a.locale.T("error.clipboard", err), true)
		return
	}
	a.setStatus(a.locale.T("status.copied"), false)
}

func (a *App) openPreview() {
	a.mode = modePreview
	a.relayout()
	md := export.MarkdownListing(a.live.snap.Tasks)
	a.preview.SetContent(RenderMarkdown(md, a.width-2, a.live.snap.Theme))
	a.preview.GotoTop()
}

func (a *App) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "v":
		a.mode = modeList
		return nil
	}
	var cmd tea.Cmd
	a.preview, cmd = a.preview.Update(msg)
	return cmd
}

// --- 撤销计时 / Undo timer ---

func (a *App) undoTick(info taskstore.UndoInfo) tea.Cmd {
	wait := info.Deadline.Sub(a.store.Now())
	if wait > time.Second {
		wait = time.Second
	}
	if wait < 0 {
		wait = 0
	}
	seq := info.Seq
	return tea.Tick(wait, func(time.Time) tea.Msg { return undoTickMsg{seq: seq} })
}

func (a *App) onUndoTick(msg undoTickMsg) tea.Cmd {
	info := a.live.snap.Undo
	if info.Seq != msg.seq || info.State != taskstore.UndoPending {
		return nil
	}
	if !a.store.Now().Before(info.Deadline) {
		a.store.ExpireUndo(msg.seq)
		return nil
	}
	return a.undoTick(info)
}

// --- 鼠标 / Mouse ---

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.mode == modePreview {
		var cmd tea.Cmd
		a.preview, cmd = a.preview.Update(msg)
		return cmd
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		a.cursor--
	case msg.Button == tea.MouseButtonWheelDown:
		a.cursor++
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// clicking away from an open editor accepts the edit
		a.commitEdit()
		pos, ok := a.rowAt(msg.Y)
		if !ok {
			return nil
		}
		row := a.rows()[pos]
		a.cursor = pos
		a.drag = &dragState{id: row.ID, index: row.Index, startX: msg.X, startY: msg.Y, x: msg.X, y: msg.Y}
	case msg.Action == tea.MouseActionMotion && a.drag != nil:
		a.drag.x, a.drag.y = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease && a.drag != nil:
		d := *a.drag
		a.drag = nil
		return a.finishDrag(d, msg.X, msg.Y)
	}
	return nil
}

// finishDrag turns a release into a reorder when it lands on another row,
// otherwise into a swipe measured in swipe units.
func (a *App) finishDrag(d dragState, x, y int) tea.Cmd {
	startPos, _ := a.rowAt(d.startY)
	if pos, ok := a.rowAt(y); ok && pos != startPos {
		target := a.rows()[pos]
		if row, ok := a.rowByID(d.id); ok {
			a.reorder(row, target.Index)
		}
		return nil
	}

	dx := float64(x-d.startX) * a.cellUnits
	row, ok := a.rowByID(d.id)
	if !ok {
		return nil
	}
	action, err := a.store.Swipe(row.Index, dx)
	switch action {
	case taskstore.SwipeToggle:
		msgKey := "status.done"
		if row.Done {
			msgKey = "status.pending"
		}
		a.report(err, a.locale.T(msgKey, row.Text))
	case taskstore.SwipeDelete:
		a.report(err, "")
		if info, ok := a.store.PendingUndo(); ok {
			return a.undoTick(info)
		}
	}
	return nil
}

// --- 辅助 / Helpers ---

func (a *App) rows() []view.Row {
	return view.Render(a.live.snap.Tasks, a.store.Now(), a.query).Rows
}

func (a *App) selected() (view.Row, bool) {
	rows := a.rows()
	if a.cursor < 0 || a.cursor >= len(rows) {
		return view.Row{}, false
	}
	return rows[a.cursor], true
}

func (a *App) rowByID(id int64) (view.Row, bool) {
	for _, r := range view.Render(a.live.snap.Tasks, a.store.Now(), "").Rows {
		if r.ID == id {
			return r, true
		}
	}
	return view.Row{}, false
}

func (a *App) focusID(id int64) {
	for i, r := range a.rows() {
		if r.ID == id {
			a.cursor = i
			return
		}
	}
}

// rowAt maps a screen row to a position in the visible rows.
func (a *App) rowAt(y int) (int, bool) {
	if y < listTop || y >= listTop+a.listHeight() {
		return 0, false
	}
	pos := a.offset + y - listTop
	if pos >= len(a.rows()) {
		return 0, false
	}
	return pos, true
}

func (a *App) clamp() {
	n := len(a.rows())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	h := a.listHeight()
	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+h {
		a.offset = a.cursor - h + 1
	}
	if a.offset > 0 && a.offset > n-h {
		a.offset = max(0, n-h)
	}
}

func (a *App) listHeight() int {
	footer := 1 + lipgloss.Height(a.help.View(a.keys))
	if a.inputMode() {
		footer += 2
	}
	h := a.height - listTop - footer
	if h < 1 {
		h = 1
	}
	return h
}

func (a *App) relayout() {
	a.help.Width = a.width
	a.input.Width = a.width - 4
	a.preview = viewport.New(a.width, max(1, a.height-2))
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
}

// report shows ok, or the persistence error when the store returned one.
func (a *App) report(err error, ok string) {
	if err != nil {
		a.logger.Error("store mutation not persisted", "err", err)
		a.setStatus(a.locale.T("status.persist_failed", err), true)
		return
	}
	a.setStatus(ok, false)
}

func undoSeconds(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Seconds()))
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
