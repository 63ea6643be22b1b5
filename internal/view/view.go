// Package view turns a task list into display rows. It has no side effects.
package view

import (
	"strings"
	"time"

	"taskpro/internal/task"
)

// Row is one rendered task.
type Row struct {
	// Index is the position in the full list, used for reorder/delete/swipe.
	Index     int
	ID        int64
	Text      string
	Done      bool
	DateLabel string
	Overdue   bool
	Pinned    bool
}

// Label is the row's visible text, the text search matches against.
func (r Row) Label() string {
	if r.DateLabel == "" {
		return r.Text
	}
	return r.Text + " " + r.DateLabel
}

// View is the render output.
type View struct {
	Rows  []Row
	Stats task.Stats
	// Hidden counts rows filtered out by the query.
	Hidden int
}

// Render 生成行与统计；统计总是基于完整列表
// Render builds rows for the tasks matching query. Stats always describe the whole list.
func Render(list []task.Task, now time.Time, query string) View {
	v := View{
		Rows:  make([]Row, 0, len(list)),
		Stats: task.ComputeStats(list),
	}
	for i, t := range list {
		row := Row{
			Index:     i,
			ID:        t.ID,
			Text:      t.Text,
			Done:      t.Done,
			DateLabel: t.DateLabel(),
			Overdue:   t.IsOverdue(now),
			Pinned:    i == 0,
		}
		if !Matches(row, query) {
			v.Hidden++
			continue
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Matches is a case-insensitive substring test on the row label. Blank queries match everything.
func Matches(r Row, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Label()), strings.ToLower(q))
}
