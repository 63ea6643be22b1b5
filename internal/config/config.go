package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
	DBName  string `json:"db_name"`
}

type UIConfig struct {
	// Theme 首次启动时的主题；持久化的 theme 键优先
	// Theme is the theme used until one is persisted under the theme key.
	Theme          string  `json:"theme"`
	UndoWindowMS   int     `json:"undo_window_ms"`
	SwipeThreshold float64 `json:"swipe_threshold"`
	// SwipeCellUnits 每列鼠标拖动折算的滑动距离
	// SwipeCellUnits is the swipe distance credited per terminal column of mouse drag.
	SwipeCellUnits float64 `json:"swipe_cell_units"`
	Locale         string  `json:"locale"`
}

type LogConfig struct {
	Level string `json:"level"`
}

type Config struct {
	Storage StorageConfig `json:"storage"`
	UI      UIConfig      `json:"ui"`
	Log     LogConfig     `json:"log"`
}

type fileConfig struct {
	Storage *StorageConfig `json:"storage"`
	UI      *UIConfig      `json:"ui"`
	Log     *LogConfig     `json:"log"`
}

func Default() Config {
	return Config{
		Storage: StorageConfig{
			BaseDir: DefaultBaseDir,
			DBName:  DefaultDBName,
		},
		UI: UIConfig{
			Theme:          DefaultTheme,
			UndoWindowMS:   DefaultUndoWindowMS,
			SwipeThreshold: DefaultSwipeThreshold,
			SwipeCellUnits: DefaultSwipeCellUnits,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// DBPath 数据库文件的绝对路径；":memory:" 原样返回
// DBPath is the absolute database path, or ":memory:" when configured so.
func (c Config) DBPath() string {
	if c.Storage.DBName == MemoryDBName {
		return MemoryDBName
	}
	return filepath.Join(c.Storage.BaseDir, c.Storage.DBName)
}

// LogPath is where the log file lives.
func (c Config) LogPath() string {
	return filepath.Join(c.Storage.BaseDir, "taskpro.log")
}

// UndoWindow is the undo window as a duration.
func (c Config) UndoWindow() time.Duration {
	return time.Duration(c.UI.UndoWindowMS) * time.Millisecond
}

// Load 按 默认值 → 全局配置 → 项目配置 → 环境变量 的顺序合并配置
// Load merges defaults, the global config, the project config and env overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("TASKPRO_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".taskpro", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"taskpro.config.json",
		".taskpro/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.UI != nil {
		cfg.UI = mergeUI(cfg.UI, *fc.UI)
	}
	if fc.Log != nil && strings.TrimSpace(fc.Log.Level) != "" {
		cfg.Log.Level = fc.Log.Level
	}
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	if strings.TrimSpace(override.DBName) != "" {
		base.DBName = override.DBName
	}
	return base
}

func mergeUI(base UIConfig, override UIConfig) UIConfig {
	if strings.TrimSpace(override.Theme) != "" {
		base.Theme = override.Theme
	}
	if override.UndoWindowMS > 0 {
		base.UndoWindowMS = override.UndoWindowMS
	}
	if override.SwipeThreshold > 0 {
		base.SwipeThreshold = override.SwipeThreshold
	}
	if override.SwipeCellUnits > 0 {
		base.SwipeCellUnits = override.SwipeCellUnits
	}
	if strings.TrimSpace(override.Locale) != "" {
		base.Locale = override.Locale
	}
	return base
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = DefaultBaseDir
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = baseDir
	cfg.Storage.DBName = strings.TrimSpace(cfg.Storage.DBName)
	if cfg.Storage.DBName == "" {
		cfg.Storage.DBName = DefaultDBName
	}

	switch theme := strings.ToLower(strings.TrimSpace(cfg.UI.Theme)); theme {
	case "dark", "light":
		cfg.UI.Theme = theme
	default:
		cfg.UI.Theme = DefaultTheme
	}
	if cfg.UI.UndoWindowMS <= 0 {
		cfg.UI.UndoWindowMS = DefaultUndoWindowMS
	}
	if cfg.UI.SwipeThreshold <= 0 {
		cfg.UI.SwipeThreshold = DefaultSwipeThreshold
	}
	if cfg.UI.SwipeCellUnits <= 0 {
		cfg.UI.SwipeCellUnits = DefaultSwipeCellUnits
	}
	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)

	switch level := strings.ToLower(strings.TrimSpace(cfg.Log.Level)); level {
	case "debug", "info", "warn", "error":
		cfg.Log.Level = level
	case "warning":
		cfg.Log.Level = "warn"
	default:
		cfg.Log.Level = DefaultLogLevel
	}
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("TASKPRO_HOME")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKPRO_UNDO_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid TASKPRO_UNDO_MS: %q", v)
		}
		cfg.UI.UndoWindowMS = n
	}
	if v := strings.TrimSpace(os.Getenv("TASKPRO_THEME")); v != "" {
		cfg.UI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKPRO_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKPRO_LANG")); v != "" {
		cfg.UI.Locale = v
	}

	return cfg, normalize(&cfg)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

// stripJSONComments removes // and /* */ comments outside string literals.
func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case c == '"':
				state = stateString
				out.WriteByte(c)
			case c == '/' && next == '/':
				state = stateLineComment
				i++
			case c == '/' && next == '*':
				state = stateBlockComment
				i++
			default:
				out.WriteByte(c)
			}
		case stateString:
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
