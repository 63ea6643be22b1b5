// Package logging builds the charmbracelet/log logger shared by the store and front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Path is the log file. Empty means Writer is used instead.
	Path   string
	Writer io.Writer
	Level  string
	Prefix string
}

// New 打开日志文件并返回 logger；TUI 占用终端，所以日志只写文件
// New opens the log file and returns a logger writing to it together with the
// closer for the file. The TUI owns the terminal, so logs never go to stdout.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	w := opts.Writer
	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(opts.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	if w == nil {
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel accepts debug, info, warn (or warning) and error; empty means info.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
