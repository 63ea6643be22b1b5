// Package bootstrap wires config, logging, storage and the task store. It knows nothing about the UI.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"taskpro/internal/config"
	"taskpro/internal/i18n"
	"taskpro/internal/logging"
	"taskpro/internal/storage"
	"taskpro/internal/taskstore"
)

// BuildResult 与 UI 无关的构建结果，供 main 选择 TUI 或 REPL
// BuildResult is UI-agnostic; main hands it to the TUI or the REPL.
type BuildResult struct {
	Config  config.Config
	Logger  *log.Logger
	Storage storage.Store
	Store   *taskstore.Store
	Locale  *i18n.I18n

	closers []io.Closer
}

// HistoryPath is the REPL readline history file.
func (r *BuildResult) HistoryPath() string {
	return filepath.Join(r.Config.Storage.BaseDir, "history")
}

// Close 关闭存储与日志文件 / Close releases storage and the log file.
func (r *BuildResult) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// Options tweak Build for callers that need more than config.
type Options struct {
	// LogWriter replaces the log file, mainly for tests.
	LogWriter io.Writer
}

// Build 按顺序初始化：数据目录 → 日志 → 存储 → 任务仓库(已加载)；调用方负责 Close
// Build creates the data dir, opens the log and the database, then builds and
// loads the task store. The caller must Close the result.
func Build(cfg config.Config, opts Options) (*BuildResult, error) {
	if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}

	res := &BuildResult{Config: cfg}
	logOpts := logging.Options{Level: cfg.Log.Level, Prefix: "taskpro"}
	if opts.LogWriter != nil {
		logOpts.Writer = opts.LogWriter
	} else {
		logOpts.Path = cfg.LogPath()
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	res.Logger = logger
	res.closers = append(res.closers, logCloser)

	kv, err := openStorage(cfg)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	res.Storage = kv
	res.closers = append(res.closers, kv)
	if sq, ok := kv.(*storage.SQLiteStore); ok {
		logger.Debug("sqlite opened", "path", sq.Path())
	}

	res.Locale = i18n.New(cfg.UI.Locale)

	res.Store = taskstore.New(taskstore.Options{
		Storage:        kv,
		Logger:         logger,
		UndoWindow:     cfg.UndoWindow(),
		SwipeThreshold: cfg.UI.SwipeThreshold,
		DefaultTheme:   cfg.UI.Theme,
	})
	res.Store.Load()

	logger.Info("started", "db", cfg.DBPath(), "tasks", res.Store.Len(), "theme", res.Store.Theme(), "locale", res.Locale.Locale())
	return res, nil
}

// OpenStorage opens the configured backend without building a task store.
// The import command writes through it directly.
func OpenStorage(cfg config.Config) (storage.Store, error) {
	if cfg.DBPath() != config.MemoryDBName {
		if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("create base dir: %w", err)
		}
	}
	return openStorage(cfg)
}

func openStorage(cfg config.Config) (storage.Store, error) {
	if cfg.DBPath() == config.MemoryDBName {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewSQLiteStore(cfg.DBPath())
}
