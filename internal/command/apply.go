package command

import (
	"fmt"
	"os"

	"taskpro/internal/export"
	"taskpro/internal/task"
	"taskpro/internal/taskstore"
)

// Result reports what Apply did so a front end can describe it.
type Result struct {
	Action  Action
	Changed bool
	// Task is the task the action touched, as it is after the action.
	Task  task.Task
	Undo  taskstore.UndoInfo
	Swipe taskstore.SwipeAction
	// Data holds export output when no path was given.
	Data  []byte
	Theme string
}

// Apply 执行动作；持久化失败时变更仍保留在内存中，错误一并返回
// Apply runs a store-backed action. View-only kinds (list, stats, search, help,
// quit) pass through untouched for the front end to handle. A persistence
// error is returned alongside a Result whose Changed is true.
func Apply(s *taskstore.Store, a Action) (Result, error) {
	res := Result{Action: a}
	switch a.Kind {
	case KindAdd:
		ok, err := s.Add(a.Text, a.Date)
		res.Changed = ok
		if ok {
			res.Task, _ = s.At(s.Len() - 1)
		}
		return res, err

	case KindToggle, KindPin, KindEdit:
		t, err := rowTask(s, a.Row)
		if err != nil {
			return res, err
		}
		var ok bool
		switch a.Kind {
		case KindToggle:
			ok, err = s.ToggleDone(t.ID)
		case KindPin:
			ok, err = s.Pin(t.ID)
		default:
			ok, err = s.Edit(t.ID, a.Text)
		}
		res.Changed = ok
		res.Task = findByID(s, t.ID)
		return res, err

	case KindDelete:
		if _, err := rowTask(s, a.Row); err != nil {
			return res, err
		}
		info, ok, err := s.Delete(a.Row)
		res.Changed, res.Undo, res.Task = ok, info, info.Task
		return res, err

	case KindUndo:
		info, pending := s.PendingUndo()
		ok, err := s.Undo()
		res.Changed = ok
		if ok && pending {
			res.Task = info.Task
		}
		return res, err

	case KindMove:
		if _, err := rowTask(s, a.Row); err != nil {
			return res, err
		}
		if _, err := rowTask(s, a.To); err != nil {
			return res, err
		}
		ok, err := s.Reorder(a.Row, a.To)
		res.Changed = ok
		res.Task, _ = s.At(a.To)
		return res, err

	case KindSwipe:
		t, err := rowTask(s, a.Row)
		if err != nil {
			return res, err
		}
		action, err := s.Swipe(a.Row, a.DeltaX)
		res.Swipe = action
		res.Changed = action != taskstore.SwipeNone
		switch action {
		case taskstore.SwipeDelete:
			res.Undo, _ = s.PendingUndo()
			res.Task = t
		case taskstore.SwipeToggle:
			res.Task = findByID(s, t.ID)
		}
		return res, err

	case KindExport:
		data, err := export.Export(s.Tasks(), a.Format)
		if err != nil {
			return res, err
		}
		if a.Path == "" {
			res.Data = data
			return res, nil
		}
		if err := os.WriteFile(a.Path, data, 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", a.Path, err)
		}
		return res, nil

	case KindTheme:
		var err error
		switch a.Theme {
		case "":
		case "toggle":
			_, err = s.ToggleTheme()
			res.Changed = true
		default:
			res.Changed = a.Theme != s.Theme()
			err = s.SetTheme(a.Theme)
		}
		res.Theme = s.Theme()
		return res, err
	}
	return res, nil
}

func rowTask(s *taskstore.Store, row int) (task.Task, error) {
	t, ok := s.At(row)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, row+1)
	}
	return t, nil
}

func findByID(s *taskstore.Store, id int64) task.Task {
	for _, t := range s.Tasks() {
		if t.ID == id {
			return t
		}
	}
	return task.Task{}
}
