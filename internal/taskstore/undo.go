package taskstore

import (
	"time"

	"taskpro/internal/task"
)

// UndoState is the lifecycle of the single recoverable deletion.
type UndoState int

const (
	UndoNone UndoState = iota
	UndoPending
	UndoConfirmed
	UndoExpired
)

func (s UndoState) String() string {
	switch s {
	case UndoPending:
		return "pending"
	case UndoConfirmed:
		return "confirmed"
	case UndoExpired:
		return "expired"
	default:
		return "none"
	}
}

// UndoInfo describes the current deletion for the undo affordance.
type UndoInfo struct {
	Seq      uint64
	Task     task.Task
	Index    int
	Deadline time.Time
	State    UndoState
}

type deletion struct {
	seq      uint64
	task     task.Task
	index    int
	deadline time.Time
	state    UndoState
}

// undoSlot holds at most one deletion; recording a new one forfeits the old.
type undoSlot struct {
	window time.Duration
	seq    uint64
	cur    *deletion
}

func (u *undoSlot) record(t task.Task, index int, now time.Time) UndoInfo {
	u.seq++
	u.cur = &deletion{
		seq:      u.seq,
		task:     t,
		index:    index,
		deadline: now.Add(u.window),
		state:    UndoPending,
	}
	return u.info()
}

// claim moves a live pending deletion to confirmed and returns it.
func (u *undoSlot) claim(now time.Time) (deletion, bool) {
	if u.cur == nil || u.cur.state != UndoPending {
		return deletion{}, false
	}
	if !now.Before(u.cur.deadline) {
		u.cur.state = UndoExpired
		return deletion{}, false
	}
	u.cur.state = UndoConfirmed
	return *u.cur, true
}

func (u *undoSlot) expire(seq uint64) bool {
	if u.cur == nil || u.cur.seq != seq || u.cur.state != UndoPending {
		return false
	}
	u.cur.state = UndoExpired
	return true
}

func (u *undoSlot) info() UndoInfo {
	if u.cur == nil {
		return UndoInfo{}
	}
	return UndoInfo{
		Seq:      u.cur.seq,
		Task:     u.cur.task,
		Index:    u.cur.index,
		Deadline: u.cur.deadline,
		State:    u.cur.state,
	}
}
