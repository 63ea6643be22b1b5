// Package taskstore owns the ordered task list. Every mutation is followed by
// a full persist and a change notification to subscribers.
package taskstore

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"taskpro/internal/defaults"
	"taskpro/internal/storage"
	"taskpro/internal/task"
)

// Snapshot is what subscribers receive after a change.
type Snapshot struct {
	Tasks []task.Task
	Theme string
	Undo  UndoInfo
}

// Options configures a Store.
type Options struct {
	Storage        storage.Store
	Logger         *log.Logger
	Now            func() time.Time
	UndoWindow     time.Duration
	SwipeThreshold float64
	DefaultTheme   string
	SeedTexts      []string
}

// Store 持有任务列表并在每次变更后持久化
// Store holds the task list, persists it after every mutation and notifies
// subscribers. It is not safe for concurrent use; front ends drive it from a
// single goroutine.
type Store struct {
	kv        storage.Store
	logger    *log.Logger
	now       func() time.Time
	ids       *task.IDSource
	swipe     float64
	seedTexts []string

	tasks []task.Task
	theme string
	undo  undoSlot

	subs   map[int]func(Snapshot)
	nextID int
}

// New creates a store. Call Load before use.
func New(opts Options) *Store {
	if opts.Storage == nil {
		opts.Storage = storage.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = defaults.UndoWindow
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = defaults.SwipeThreshold
	}
	theme, ok := NormalizeTheme(opts.DefaultTheme)
	if !ok {
		theme = defaults.Theme
	}
	if opts.SeedTexts == nil {
		opts.SeedTexts = defaults.SeedTexts
	}
	return &Store{
		kv:        opts.Storage,
		logger:    opts.Logger,
		now:       opts.Now,
		ids:       task.NewIDSource(opts.Now),
		swipe:     opts.SwipeThreshold,
		seedTexts: opts.SeedTexts,
		theme:     theme,
		undo:      undoSlot{window: opts.UndoWindow},
		subs:      make(map[int]func(Snapshot)),
	}
}

// Load 读取持久化状态；缺失或无法解析时使用种子任务
// Load reads the persisted list and theme. A missing or unusable list is
// replaced by the seed tasks. Subscribers are notified once afterwards.
func (s *Store) Load() {
	raw, err := s.kv.Get(storage.KeyTasks)
	switch {
	case err == nil:
		list, decodeErr := DecodeTasks(raw)
		if decodeErr != nil {
			s.logger.Warn("persisted tasks unusable, seeding defaults", "err", decodeErr)
			s.tasks = s.seed()
			break
		}
		s.ids.Observe(list)
		s.tasks = s.dedupe(list)
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Info("no persisted tasks, seeding defaults")
		s.tasks = s.seed()
	default:
		s.logger.Error("read tasks failed, seeding defaults", "err", err)
		s.tasks = s.seed()
	}

	if v, err := s.kv.Get(storage.KeyTheme); err == nil {
		if theme, ok := NormalizeTheme(v); ok {
			s.theme = theme
		}
	}
	s.notify()
}

func (s *Store) seed() []task.Task {
	out := make([]task.Task, 0, len(s.seedTexts))
	for _, text := range s.seedTexts {
		out = append(out, task.Task{ID: s.ids.Next(), Text: text})
	}
	return out
}

// dedupe gives later duplicates of an id a fresh one so ids stay unique.
func (s *Store) dedupe(list []task.Task) []task.Task {
	seen := make(map[int64]struct{}, len(list))
	for i := range list {
		if _, dup := seen[list[i].ID]; dup {
			fresh := s.ids.Next()
			s.logger.Warn("duplicate task id reassigned", "old", list[i].ID, "new", fresh)
			list[i].ID = fresh
		}
		seen[list[i].ID] = struct{}{}
	}
	return list
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []task.Task { return task.Clone(s.tasks) }

// Len is the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// At returns the task at index i.
func (s *Store) At(i int) (task.Task, bool) {
	if i < 0 || i >= len(s.tasks) {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Theme is the current theme, dark or light.
func (s *Store) Theme() string { return s.theme }

// Now is the store's clock, shared with rendering so overdue checks agree.
func (s *Store) Now() time.Time { return s.now() }

// Snapshot copies the observable state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Tasks: s.Tasks(), Theme: s.theme, Undo: s.undo.info()}
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) notify() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// commit persists the list and notifies. The in-memory change stays applied
// even when the write fails.
func (s *Store) commit() error {
	err := s.persist()
	s.notify()
	return err
}

func (s *Store) persist() error {
	raw, err := EncodeTasks(s.tasks)
	if err != nil {
		s.logger.Error("encode tasks failed", "err", err)
		return err
	}
	if err := s.kv.Set(storage.KeyTasks, raw); err != nil {
		s.logger.Error("persist tasks failed", "err", err)
		return err
	}
	return nil
}

// Add 追加新任务；空文本为 no-op
// Add appends a task. Blank text is ignored and reports false.
func (s *Store) Add(text, date string) (bool, error) {
	text, ok := task.NormalizeText(text)
	if !ok {
		return false, nil
	}
	t := task.Task{ID: s.ids.Next(), Text: text, Date: strings.TrimSpace(date)}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID)
	return true, s.commit()
}

// ToggleDone flips the done flag of the task with id.
func (s *Store) ToggleDone(id int64) (bool, error) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i].Done = !s.tasks[i].Done
	return true, s.commit()
}

// Pin moves the task with id to the front.
func (s *Store) Pin(id int64) (bool, error) {
	list, ok := task.Pin(s.tasks, id)
	if !ok {
		return false, nil
	}
	s.tasks = list
	return true, s.commit()
}

// Edit accepts an edit of the task with id. Blank text keeps the old text;
// the accepted edit is persisted either way. Reports whether the id exists.
func (s *Store) Edit(id int64, newText string) (bool, error) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return false, nil
	}
	if text, ok := task.NormalizeText(newText); ok {
		s.tasks[i].Text = text
	}
	return true, s.commit()
}

// Delete removes the task at index and records it as the one recoverable
// deletion, replacing any earlier record.
func (s *Store) Delete(index int) (UndoInfo, bool, error) {
	list, removed, ok := task.RemoveAt(s.tasks, index)
	if !ok {
		return UndoInfo{}, false, nil
	}
	s.tasks = list
	info := s.undo.record(removed, index, s.now())
	s.logger.Debug("task deleted", "id", removed.ID, "undo_seq", info.Seq)
	return info, true, s.commit()
}

// Undo reinserts the last deleted task at its recorded index while the undo
// window is open. Outside the window, or when already undone, it is a no-op.
func (s *Store) Undo() (bool, error) {
	d, ok := s.undo.claim(s.now())
	if !ok {
		return false, nil
	}
	s.tasks = task.InsertAt(s.tasks, d.index, d.task)
	return true, s.commit()
}

// ExpireUndo closes the undo window for deletion seq. Stale seqs are ignored.
func (s *Store) ExpireUndo(seq uint64) bool {
	if !s.undo.expire(seq) {
		return false
	}
	s.notify()
	return true
}

// PendingUndo returns the deletion that can still be undone, if any.
func (s *Store) PendingUndo() (UndoInfo, bool) {
	info := s.undo.info()
	if info.State != UndoPending || !s.now().Before(info.Deadline) {
		return UndoInfo{}, false
	}
	return info, true
}

// Reorder moves the task at from to to, both relative to the list before removal.
func (s *Store) Reorder(from, to int) (bool, error) {
	list, ok := task.Move(s.tasks, from, to)
	if !ok {
		return false, nil
	}
	s.tasks = list
	return true, s.commit()
}

// SwipeAction is what a horizontal swipe resolved to.
type SwipeAction int

const (
	SwipeNone SwipeAction = iota
	SwipeToggle
	SwipeDelete
)

// Swipe maps a horizontal gesture on row index to toggle (right) or delete (left).
func (s *Store) Swipe(index int, deltaX float64) (SwipeAction, error) {
	if index < 0 || index >= len(s.tasks) {
		return SwipeNone, nil
	}
	switch {
	case deltaX > s.swipe:
		_, err := s.ToggleDone(s.tasks[index].ID)
		return SwipeToggle, err
	case deltaX < -s.swipe:
		_, _, err := s.Delete(index)
		return SwipeDelete, err
	default:
		return SwipeNone, nil
	}
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(v string) error {
	theme, ok := NormalizeTheme(v)
	if !ok {
		return errors.New("theme must be dark or light")
	}
	s.theme = theme
	err := s.kv.Set(storage.KeyTheme, theme)
	if err != nil {
		s.logger.Error("persist theme failed", "err", err)
	}
	s.notify()
	return err
}

// ToggleTheme switches between dark and light.
func (s *Store) ToggleTheme() (string, error) {
	next := ThemeDark
	if s.theme == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(next)
}
