package tui

import "github.com/charmbracelet/lipgloss"

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	Name string

	// 基础色 / Base colors
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
	BgBar   lipgloss.Color
	Border  lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle     lipgloss.Style
	StatusBarStyle lipgloss.Style
	RowStyle       lipgloss.Style
	CursorStyle    lipgloss.Style
	DoneStyle      lipgloss.Style
	DateStyle      lipgloss.Style
	OverdueStyle   lipgloss.Style
	PinStyle       lipgloss.Style
	InputStyle     lipgloss.Style
	ToastStyle     lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	MutedStyle     lipgloss.Style
	SwipeDoneStyle lipgloss.Style
	SwipeDelStyle  lipgloss.Style
	BarFullStyle   lipgloss.Style
	BarEmptyStyle  lipgloss.Style
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	return buildTheme(Theme{
		Name:    "dark",
		Primary: lipgloss.Color("#7C3AED"),
		Accent:  lipgloss.Color("#F59E0B"),
		Danger:  lipgloss.Color("#EF4444"),
		Success: lipgloss.Color("#10B981"),
		Muted:   lipgloss.Color("#6B7280"),
		Text:    lipgloss.Color("#E5E7EB"),
		TextDim: lipgloss.Color("#9CA3AF"),
		BgBar:   lipgloss.Color("#111827"),
		Border:  lipgloss.Color("#374151"),
	})
}

// LightTheme 亮色主题
// LightTheme is the light counterpart
func LightTheme() Theme {
	return buildTheme(Theme{
		Name:    "light",
		Primary: lipgloss.Color("#6D28D9"),
		Accent:  lipgloss.Color("#B45309"),
		Danger:  lipgloss.Color("#DC2626"),
		Success: lipgloss.Color("#047857"),
		Muted:   lipgloss.Color("#6B7280"),
		Text:    lipgloss.Color("#111827"),
		TextDim: lipgloss.Color("#4B5563"),
		BgBar:   lipgloss.Color("#E5E7EB"),
		Border:  lipgloss.Color("#D1D5DB"),
	})
}

// ThemeFor returns the theme named by a persisted theme value.
func ThemeFor(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

func buildTheme(t Theme) Theme {
	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.BgBar)

	t.RowStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	t.CursorStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.DoneStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Strikethrough(true)

	t.DateStyle = lipgloss.NewStyle().
		Foreground(t.TextDim)

	t.OverdueStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.PinStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	t.InputStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.ToastStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Primary).
		Padding(0, 1)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.SwipeDoneStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Success)

	t.SwipeDelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Danger)

	t.BarFullStyle = lipgloss.NewStyle().Foreground(t.Success)
	t.BarEmptyStyle = lipgloss.NewStyle().Foreground(t.Border)

	return t
}
