// Package export renders the task list as CSV, a print listing, a PDF document
// or a markdown preview. Every function is read-only over the list.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskpro/internal/defaults"
	"taskpro/internal/task"
)

// Format is an export target.
type Format string

const (
	CSV      Format = "csv"
	Print    Format = "print"
	PDF      Format = "pdf"
	Markdown Format = "md"
)

// Formats lists every supported format in menu order.
var Formats = []Format{CSV, Print, PDF, Markdown}

// ParseFormat accepts a format name case-insensitively; "markdown" and "txt" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "print", "txt", "text":
		return Print, nil
	case "pdf":
		return PDF, nil
	case "md", "markdown":
		return Markdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// FileName is the default download name for a format.
func (f Format) FileName() string {
	switch f {
	case Print:
		return "tasks.txt"
	case Markdown:
		return "tasks.md"
	default:
		return "tasks." + string(f)
	}
}

// Export renders list in format f.
func Export(list []task.Task, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return []byte(CSVString(list)), nil
	case Print:
		return []byte(PrintListing(list)), nil
	case Markdown:
		return []byte(MarkdownListing(list)), nil
	case PDF:
		var buf bytes.Buffer
		if err := WritePDF(&buf, list); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// CSVString 生成 CSV：文本始终加双引号，内部引号加倍
// CSVString renders the header and one row per task. The text column is always
// quoted, with embedded quotes doubled; status and date are written bare.
func CSVString(list []task.Task) string {
	var b strings.Builder
	b.WriteString("Task,Status,Due Date\n")
	for _, t := range list {
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(t.Text, `"`, `""`))
		b.WriteString(`",`)
		b.WriteString(t.Status())
		b.WriteByte(',')
		b.WriteString(t.Date)
		b.WriteByte('\n')
	}
	return b.String()
}

// PrintListing is the plain print-ready view: a title then "text - Status" lines.
func PrintListing(list []task.Task) string {
	var b strings.Builder
	b.WriteString(defaults.AppName)
	b.WriteString("\n\n")
	for _, t := range list {
		fmt.Fprintf(&b, "%s - %s\n", t.Text, t.Status())
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "#", `\#`, "<", `\<`,
)

// MarkdownListing renders the print listing as markdown for the preview pane.
func MarkdownListing(list []task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", defaults.AppName)
	if len(list) == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}
	for _, t := range list {
		line := markdownEscaper.Replace(t.Text) + " - " + t.Status()
		if t.Done {
			line = "~~" + line + "~~"
		}
		if t.Date != "" {
			line += " · " + t.Date
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// WritePDF writes an A4 document with the title and one line per task.
func WritePDF(w io.Writer, list []task.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(defaults.AppName, true)
	pdf.SetCreator(defaults.AppName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, defaults.AppName)
	pdf.Ln(14)
	pdf.SetFont("Arial", "", 11)
	for _, t := range list {
		line := fmt.Sprintf("%s - %s", t.Text, t.Status())
		if t.Date != "" {
			line += "  (" + t.Date + ")"
		}
		pdf.MultiCell(0, 7, tr(line), "0", "L", false)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
