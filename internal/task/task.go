// Package task holds the task record and the ordered-list primitives the store is built on.
package task

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// Task 单个待办条目
// Task is a single to-do item. Date is "" when no due date is set.
type Task struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
	Date string `json:"date"`
}

// Status returns the export label for the completion flag.
func (t Task) Status() string {
	if t.Done {
		return "Done"
	}
	return "Pending"
}

// DateLabel is the date as shown next to the task text, empty when unset.
func (t Task) DateLabel() string {
	if strings.TrimSpace(t.Date) == "" {
		return ""
	}
	return "📅 " + t.Date
}

// IsOverdue 判断任务是否逾期：有截止日期、早于今天且未完成
// IsOverdue reports whether the task has a due date strictly before today's
// local calendar date and is not done.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Done {
		return false
	}
	date := strings.TrimSpace(t.Date)
	if date == "" {
		return false
	}
	due, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// NormalizeText trims surrounding whitespace; an empty result means the text is rejected.
func NormalizeText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(list []Task, id int64) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of list.
func Clone(list []Task) []Task {
	if list == nil {
		return nil
	}
	out := make([]Task, len(list))
	copy(out, list)
	return out
}

// RemoveAt removes the task at index i. ok is false when i is out of range.
func RemoveAt(list []Task, i int) ([]Task, Task, bool) {
	if i < 0 || i >= len(list) {
		return list, Task{}, false
	}
	removed := list[i]
	out := make([]Task, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, removed, true
}

// InsertAt inserts t before position i; i is clamped to [0, len(list)].
func InsertAt(list []Task, i int, t Task) []Task {
	if i < 0 {
		i = 0
	}
	if i > len(list) {
		i = len(list)
	}
	out := make([]Task, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, t)
	out = append(out, list[i:]...)
	return out
}

// Move removes the task at from and reinserts it at to. Both indices refer to the
// list before removal, so Move(list, 0, 2) on [A B C D] yields [B C A D].
func Move(list []Task, from, to int) ([]Task, bool) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return list, false
	}
	rest, moved, _ := RemoveAt(list, from)
	return InsertAt(rest, to, moved), true
}

// Pin moves the task with id to the front of the list.
func Pin(list []Task, id int64) ([]Task, bool) {
	i := IndexOf(list, id)
	if i < 0 {
		return list, false
	}
	rest, pinned, _ := RemoveAt(list, i)
	return InsertAt(rest, 0, pinned), true
}
