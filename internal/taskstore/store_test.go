package taskstore

import (
	"errors"
	"testing"
	"time"

	"taskpro/internal/storage"
	"taskpro/internal/task"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
}

func newTestStore(t *testing.T, kv storage.Store, clock *fakeClock) *Store {
	t.Helper()
	s := New(Options{Storage: kv, Now: clock.Now, UndoWindow: 4 * time.Second})
	s.Load()
	return s
}

func seedList(t *testing.T, kv storage.Store, texts ...string) {
	t.Helper()
	list := make([]task.Task, 0, len(texts))
	for i, text := range texts {
		list = append(list, task.Task{ID: int64(i + 1), Text: text})
	}
	raw, err := EncodeTasks(list)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := kv.Set(storage.KeyTasks, raw); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func texts(list []task.Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Text
	}
	return out
}

func equalTexts(t *testing.T, got []task.Task, want ...string) {
	t.Helper()
	g := texts(got)
	if len(g) != len(want) {
		t.Fatalf("tasks = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("tasks = %v, want %v", g, want)
		}
	}
}

func TestLoad_SeedsWhenMissing(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv, newClock())

	equalTexts(t, s.Tasks(), "Welcome to TaskPro 👋", "Drag or swipe tasks")
	if s.Tasks()[0].ID == s.Tasks()[1].ID {
		t.Fatalf("seed ids collide")
	}
	if _, err := kv.Get(storage.KeyTasks); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("seed should not be persisted before the first mutation, err=%v", err)
	}
	if s.Theme() != ThemeDark {
		t.Fatalf("theme = %q", s.Theme())
	}
}

func TestLoad_SeedsWhenInvalid(t *testing.T) {
	cases := []string{`not json`, `null`, `{"id":1}`, `[{"text":"x"}]`, `[{"id":1,"text":2,"done":false}]`}
	for _, raw := range cases {
		kv := storage.NewMemoryStore()
		_ = kv.Set(storage.KeyTasks, raw)
		s := newTestStore(t, kv, newClock())
		if s.Len() != 2 {
			t.Fatalf("%q: expected seed tasks, got %v", raw, texts(s.Tasks()))
		}
	}
}

func TestLoad_EmptyArrayStaysEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	_ = kv.Set(storage.KeyTasks, `[]`)
	s := newTestStore(t, kv, newClock())
	if s.Len() != 0 {
		t.Fatalf("expected empty list, got %v", texts(s.Tasks()))
	}
}

func TestLoad_ReassignsDuplicateIDs(t *testing.T) {
	kv := storage.NewMemoryStore()
	_ = kv.Set(storage.KeyTasks, `[{"id":5,"text":"a","done":false},{"id":5,"text":"b","done":true}]`)
	s := newTestStore(t, kv, newClock())
	list := s.Tasks()
	if list[0].ID != 5 || list[1].ID == 5 {
		t.Fatalf("ids = %d, %d", list[0].ID, list[1].ID)
	}
	if !list[1].Done {
		t.Fatalf("fields lost during reassignment")
	}
}

func TestLoad_Theme(t *testing.T) {
	kv := storage.NewMemoryStore()
	_ = kv.Set(storage.KeyTheme, "light")
	s := newTestStore(t, kv, newClock())
	if s.Theme() != ThemeLight {
		t.Fatalf("theme = %q", s.Theme())
	}

	kv = storage.NewMemoryStore()
	_ = kv.Set(storage.KeyTheme, "purple")
	s = newTestStore(t, kv, newClock())
	if s.Theme() != ThemeDark {
		t.Fatalf("unknown theme should fall back to dark, got %q", s.Theme())
	}
}

func TestAdd(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv)
	s := newTestStore(t, kv, newClock())

	ok, err := s.Add("  Buy milk  ", "2024-05-12")
	if err != nil || !ok {
		t.Fatalf("add: ok=%v err=%v", ok, err)
	}
	got := s.Tasks()
	if len(got) != 1 || got[0].Text != "Buy milk" || got[0].Done || got[0].Date != "2024-05-12" {
		t.Fatalf("unexpected task: %+v", got)
	}

	raw, _ := kv.Get(storage.KeyTasks)
	persisted, err := DecodeTasks(raw)
	if err != nil || len(persisted) != 1 || persisted[0] != got[0] {
		t.Fatalf("persisted = %v (%v)", persisted, err)
	}
}

func TestAdd_BlankIsNoop(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A")
	s := newTestStore(t, kv, newClock())
	notified := 0
	s.Subscribe(func(Snapshot) { notified++ })

	for _, text := range []string{"", "   ", "\t\n"} {
		ok, err := s.Add(text, "")
		if ok || err != nil {
			t.Fatalf("add %q: ok=%v err=%v", text, ok, err)
		}
	}
	if s.Len() != 1 || notified != 0 {
		t.Fatalf("blank add changed state: len=%d notified=%d", s.Len(), notified)
	}
}

func TestAdd_IDsUniqueWithinSameMillisecond(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv)
	s := newTestStore(t, kv, newClock())
	for i := 0; i < 5; i++ {
		_, _ = s.Add("x", "")
	}
	seen := map[int64]bool{}
	for _, tk := range s.Tasks() {
		if seen[tk.ID] {
			t.Fatalf("duplicate id %d", tk.ID)
		}
		seen[tk.ID] = true
	}
}

func TestToggleDone(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B")
	s := newTestStore(t, kv, newClock())

	if ok, _ := s.ToggleDone(2); !ok {
		t.Fatalf("toggle failed")
	}
	if !s.Tasks()[1].Done {
		t.Fatalf("B should be done")
	}
	_, _ = s.ToggleDone(2)
	if s.Tasks()[1].Done {
		t.Fatalf("second toggle should restore pending")
	}
	if ok, _ := s.ToggleDone(99); ok {
		t.Fatalf("unknown id should be a no-op")
	}
}

func TestPin(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C")
	s := newTestStore(t, kv, newClock())

	_, _ = s.Pin(3)
	equalTexts(t, s.Tasks(), "C", "A", "B")
	_, _ = s.Pin(3)
	equalTexts(t, s.Tasks(), "C", "A", "B")
}

func TestEdit(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A")
	s := newTestStore(t, kv, newClock())

	_, _ = s.Edit(1, " Renamed ")
	equalTexts(t, s.Tasks(), "Renamed")

	ok, err := s.Edit(1, "   ")
	if !ok || err != nil {
		t.Fatalf("blank edit: ok=%v err=%v", ok, err)
	}
	equalTexts(t, s.Tasks(), "Renamed")
}

func TestDeleteUndo_RestoresExactState(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C")
	s := newTestStore(t, kv, clock)
	_, _ = s.ToggleDone(2)
	before := s.Tasks()

	info, ok, err := s.Delete(1)
	if !ok || err != nil {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if info.State != UndoPending || info.Task.Text != "B" || info.Index != 1 {
		t.Fatalf("undo info = %+v", info)
	}
	equalTexts(t, s.Tasks(), "A", "C")

	clock.Advance(time.Second)
	if ok, _ := s.Undo(); !ok {
		t.Fatalf("undo inside window should restore")
	}
	after := s.Tasks()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("restored list differs at %d: %+v vs %+v", i, before[i], after[i])
		}
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("second undo should be a no-op")
	}
}

func TestDeleteTwice_OnlyLastRecoverable(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C")
	s := newTestStore(t, kv, clock)

	_, _, _ = s.Delete(0)
	_, _, _ = s.Delete(0)
	equalTexts(t, s.Tasks(), "C")

	_, _ = s.Undo()
	equalTexts(t, s.Tasks(), "B", "C")
	_, _ = s.Undo()
	equalTexts(t, s.Tasks(), "B", "C")
}

func TestUndo_AfterWindowIsNoop(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B")
	s := newTestStore(t, kv, clock)

	_, _, _ = s.Delete(0)
	clock.Advance(4 * time.Second)
	if _, ok := s.PendingUndo(); ok {
		t.Fatalf("window should be closed at the deadline")
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("undo after the window should be a no-op")
	}
	equalTexts(t, s.Tasks(), "B")
	if s.Snapshot().Undo.State != UndoExpired {
		t.Fatalf("state = %v", s.Snapshot().Undo.State)
	}
}

func TestExpireUndo_IgnoresStaleSeq(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C")
	s := newTestStore(t, kv, clock)

	first, _, _ := s.Delete(0)
	second, _, _ := s.Delete(0)
	if s.ExpireUndo(first.Seq) {
		t.Fatalf("stale seq should not expire the newer deletion")
	}
	if _, ok := s.PendingUndo(); !ok {
		t.Fatalf("newer deletion should still be pending")
	}
	if !s.ExpireUndo(second.Seq) {
		t.Fatalf("current seq should expire")
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("undo after expiry should be a no-op")
	}
}

func TestUndo_ReinsertsAtRecordedIndexAfterReorder(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C")
	s := newTestStore(t, kv, clock)

	_, _, _ = s.Delete(2)
	_, _ = s.Reorder(0, 1)
	_, _ = s.Undo()
	equalTexts(t, s.Tasks(), "B", "A", "C")
}

func TestReorder(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B", "C", "D")
	s := newTestStore(t, kv, newClock())

	if ok, _ := s.Reorder(0, 2); !ok {
		t.Fatalf("reorder failed")
	}
	equalTexts(t, s.Tasks(), "B", "C", "A", "D")

	for _, c := range [][2]int{{1, 1}, {-1, 0}, {0, 4}} {
		if ok, _ := s.Reorder(c[0], c[1]); ok {
			t.Fatalf("reorder %v should be a no-op", c)
		}
	}
	equalTexts(t, s.Tasks(), "B", "C", "A", "D")
}

func TestSwipe(t *testing.T) {
	tests := []struct {
		name   string
		dx     float64
		action SwipeAction
		want   []string
		done   bool
	}{
		{"right past threshold toggles", 81, SwipeToggle, []string{"A", "B"}, true},
		{"left past threshold deletes", -81, SwipeDelete, []string{"B"}, false},
		{"exactly threshold does nothing", 80, SwipeNone, []string{"A", "B"}, false},
		{"exactly negative threshold does nothing", -80, SwipeNone, []string{"A", "B"}, false},
		{"small drag does nothing", 20, SwipeNone, []string{"A", "B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			seedList(t, kv, "A", "B")
			s := newTestStore(t, kv, newClock())
			action, err := s.Swipe(0, tt.dx)
			if err != nil {
				t.Fatalf("swipe: %v", err)
			}
			if action != tt.action {
				t.Fatalf("action = %v, want %v", action, tt.action)
			}
			equalTexts(t, s.Tasks(), tt.want...)
			if s.Tasks()[0].Done != tt.done {
				t.Fatalf("done = %v", s.Tasks()[0].Done)
			}
		})
	}
}

func TestSwipeDeleteIsUndoable(t *testing.T) {
	clock := newClock()
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A", "B")
	s := newTestStore(t, kv, clock)

	_, _ = s.Swipe(1, -200)
	if _, ok := s.PendingUndo(); !ok {
		t.Fatalf("swipe delete should offer undo")
	}
	_, _ = s.Undo()
	equalTexts(t, s.Tasks(), "A", "B")
}

func TestPersistFailureKeepsChangeInMemory(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A")
	s := newTestStore(t, kv, newClock())

	boom := errors.New("quota exceeded")
	kv.FailSet = boom
	var got Snapshot
	s.Subscribe(func(snap Snapshot) { got = snap })

	ok, err := s.Add("B", "")
	if !ok || !errors.Is(err, boom) {
		t.Fatalf("add: ok=%v err=%v", ok, err)
	}
	equalTexts(t, s.Tasks(), "A", "B")
	equalTexts(t, got.Tasks, "A", "B")

	raw, _ := kv.Get(storage.KeyTasks)
	persisted, _ := DecodeTasks(raw)
	equalTexts(t, persisted, "A")
}

func TestTheme(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv, newClock())

	next, err := s.ToggleTheme()
	if err != nil || next != ThemeLight {
		t.Fatalf("toggle: %q %v", next, err)
	}
	if v, _ := kv.Get(storage.KeyTheme); v != "light" {
		t.Fatalf("persisted theme = %q", v)
	}
	if err := s.SetTheme("blue"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	if s.Theme() != ThemeLight {
		t.Fatalf("theme changed by invalid value")
	}

	reloaded := newTestStore(t, kv, newClock())
	if reloaded.Theme() != ThemeLight {
		t.Fatalf("theme not restored after reload")
	}
}

func TestSubscribe(t *testing.T) {
	kv := storage.NewMemoryStore()
	seedList(t, kv, "A")
	s := newTestStore(t, kv, newClock())

	calls := 0
	unsubscribe := s.Subscribe(func(Snapshot) { calls++ })
	_, _ = s.Add("B", "")
	unsubscribe()
	_, _ = s.Add("C", "")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestPersistedStateRoundTripsThroughSQLite(t *testing.T) {
	path := t.TempDir() + "/taskpro.db"
	kv, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := newTestStore(t, kv, newClock())
	_, _ = s.Add("Buy milk", "2024-05-01")
	_, _ = s.ToggleDone(s.Tasks()[0].ID)
	want := s.Tasks()
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	kv, err = storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	got := newTestStore(t, kv, newClock()).Tasks()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("task %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
