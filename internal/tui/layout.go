package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"taskpro/internal/defaults"
	"taskpro/internal/view"
)

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}
	th := a.live.theme

	if a.mode == modePreview {
		title := th.TitleStyle.Render(" " + a.locale.T("preview.title"))
		hint := th.MutedStyle.Render(" " + a.locale.T("preview.hint"))
		return lipgloss.JoinVertical(lipgloss.Left, title, a.preview.View(), hint)
	}

	v := view.Render(a.live.snap.Tasks, a.store.Now(), a.query)
	lines := []string{
		a.renderHeader(th),
		a.renderStats(v, th),
		a.renderFilter(v, th),
	}
	lines = append(lines, a.renderRows(v, th)...)
	lines = append(lines, a.renderToast(th))
	if a.inputMode() {
		lines = append(lines, th.InputStyle.Width(a.width).Render(a.input.View()))
	}
	lines = append(lines, a.help.View(a.keys))
	return strings.Join(lines, "\n")
}

func (a App) renderHeader(th Theme) string {
	left := th.TitleStyle.Render(" " + defaults.AppName)
	right := th.MutedStyle.Render(a.locale.T("theme."+a.live.snap.Theme) + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) renderStats(v view.View, th Theme) string {
	summary := a.locale.T("stats.summary", v.Stats.Total, v.Stats.DoneCount, v.Stats.Percent)
	barWidth := a.width - lipgloss.Width(summary) - 4
	if barWidth > 30 {
		barWidth = 30
	}
	return " " + th.MutedStyle.Render(summary) + "  " + renderProgressBar(v.Stats.Percent, barWidth, th)
}

func (a App) renderFilter(v view.View, th Theme) string {
	if strings.TrimSpace(a.query) == "" || a.mode == modeSearch {
		return ""
	}
	return " " + th.MutedStyle.Render("/ "+a.query)
}

// renderRows returns exactly listHeight lines so the footer stays anchored.
func (a App) renderRows(v view.View, th Theme) []string {
	h := a.listHeight()
	out := make([]string, 0, h)
	if len(v.Rows) == 0 {
		msg := a.locale.T("list.empty")
		if v.Hidden > 0 {
			msg = a.locale.T("list.no_match", a.query)
		}
		out = append(out, "  "+th.MutedStyle.Render(msg))
	}
	for i := a.offset; i < len(v.Rows) && len(out) < h; i++ {
		out = append(out, a.renderRow(v.Rows[i], i == a.cursor, th))
	}
	for len(out) < h {
		out = append(out, "")
	}
	return out
}

func (a App) renderRow(r view.Row, selected bool, th Theme) string {
	cursor := "  "
	if selected {
		cursor = th.CursorStyle.Render("› ")
	}
	check := "[ ]"
	if r.Done {
		check = th.SuccessStyle.Render("[x]")
	}
	pin := "  "
	if r.Pinned {
		pin = th.PinStyle.Render("📌")
	}

	textWidth := a.width - 12
	if r.DateLabel != "" {
		textWidth -= runewidth.StringWidth(r.DateLabel) + 2
	}
	if textWidth < 8 {
		textWidth = 8
	}
	text := runewidth.Truncate(r.Text, textWidth, "…")
	textStyle := th.RowStyle
	if r.Done {
		textStyle = th.DoneStyle
	}

	line := fmt.Sprintf("%s%s %s %s", cursor, check, pin, textStyle.Render(text))
	if r.DateLabel != "" {
		dateStyle := th.DateStyle
		if r.Overdue {
			dateStyle = th.OverdueStyle
		}
		line += "  " + dateStyle.Render(r.DateLabel)
		if r.Overdue {
			line += " " + dateStyle.Render(a.locale.T("label.overdue"))
		}
	}

	if a.drag != nil && a.drag.id == r.ID {
		line = a.swipeFeedback(line, th)
	}
	return line
}

// swipeFeedback shifts the dragged row and marks it once the swipe would act.
func (a App) swipeFeedback(line string, th Theme) string {
	cols := a.drag.x - a.drag.startX
	units := float64(cols) * a.cellUnits
	switch {
	case units > a.threshold:
		return th.SwipeDoneStyle.Render(" ✓ ") + line
	case units < -a.threshold:
		return th.SwipeDelStyle.Render(" ✗ ") + line
	case cols > 0:
		return strings.Repeat(" ", cols) + line
	}
	return line
}

func (a App) renderToast(th Theme) string {
	if info, ok := a.store.PendingUndo(); ok {
		secs := undoSeconds(info.Deadline, a.store.Now())
		return th.ToastStyle.Render(a.locale.T("undo.toast", info.Task.Text, secs) + "  [u]")
	}
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return " " + th.ErrorStyle.Render(a.status)
	}
	return " " + th.SuccessStyle.Render(a.status)
}
