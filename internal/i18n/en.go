package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Header / footer
	"app.title":     "TaskPro",
	"stats.summary": "%d tasks · %d done · %d%%",
	"theme.dark":    "dark",
	"theme.light":   "light",

	// Inputs
	"input.add":    "Add a task…",
	"input.date":   "Due date YYYY-MM-DD (optional)",
	"input.edit":   "Edit task",
	"input.search": "Search tasks",

	// List
	"list.empty":    "No tasks yet.",
	"list.no_match": "No tasks match %q.",
	"label.done":    "done",
	"label.pending": "pending",
	"label.overdue": "overdue",

	// Undo toast
	"undo.toast":    "Deleted %q · undo within %ds",
	"undo.restored": "Restored %q",
	"undo.nothing":  "Nothing to undo",

	// Status line
	"status.added":          "Added %q",
	"status.done":           "Marked %q done",
	"status.pending":        "Marked %q pending",
	"status.pinned":         "Pinned %q",
	"status.edited":         "Saved %q",
	"status.moved":          "Moved to row %d",
	"status.theme":          "Theme: %s",
	"status.exported":       "Exported %s to %s",
	"status.copied":         "CSV copied to clipboard",
	"status.search":         "Filter: %q",
	"status.search_cleared": "Filter cleared",
	"status.persist_failed": "Not saved: %v",
	"status.blank":          "Task text cannot be empty",

	// Errors
	"error.unknown_command": "Unknown command %q, type help",
	"error.row":             "No task at row %s",
	"error.usage":           "Usage: %s",
	"error.date":            "Invalid date %q, expected YYYY-MM-DD",
	"error.export":          "Export failed: %v",
	"error.clipboard":       "Clipboard unavailable: %v",

	// REPL
	"repl.welcome": "TaskPro · type help for commands",
	"repl.bye":     "Bye",

	// Print preview
	"preview.title": "Print preview",
	"preview.hint":  "esc to close · ↑/↓ scroll",

	// Help
	"help.title": "Commands",
}
