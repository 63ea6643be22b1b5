package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour in the given standard style.
func RenderMarkdown(content string, width int, style string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	if style != "light" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// renderProgressBar draws percent (0-100) as a bar of width cells.
func renderProgressBar(percent, width int, theme Theme) string {
	if width < 4 {
		width = 4
	}
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return theme.BarFullStyle.Render(strings.Repeat("█", filled)) +
		theme.BarEmptyStyle.Render(strings.Repeat("░", width-filled))
}
