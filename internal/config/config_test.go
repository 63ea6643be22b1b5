package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"TASKPRO_CONFIG_PATH", "TASKPRO_HOME", "TASKPRO_UNDO_MS", "TASKPRO_THEME", "TASKPRO_LOG_LEVEL", "TASKPRO_LANG"} {
		t.Setenv(k, "")
	}
	work = t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, work
}

func TestDefaults(t *testing.T) {
	home, _ := isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.BaseDir != filepath.Join(home, ".taskpro") {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.DBPath() != filepath.Join(home, ".taskpro", "taskpro.db") {
		t.Fatalf("db path=%q", cfg.DBPath())
	}
	if cfg.UI.Theme != "dark" || cfg.UndoWindow() != 4*time.Second {
		t.Fatalf("ui=%+v", cfg.UI)
	}
	if cfg.UI.SwipeThreshold != 80 || cfg.UI.SwipeCellUnits != 10 {
		t.Fatalf("swipe=%+v", cfg.UI)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level=%q", cfg.Log.Level)
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home, _ := isolate(t)

	globalDir := filepath.Join(home, ".taskpro")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "ui": {"theme": "light", "undo_window_ms": 2000},
  "log": {"level": "debug"}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project wins */
  "ui": {"undo_window_ms": 6000, "locale": "zh-CN"},
  "storage": {"db_name": "work.db"}
}`
	if err := os.WriteFile("taskpro.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("theme=%q", cfg.UI.Theme)
	}
	if cfg.UI.UndoWindowMS != 6000 {
		t.Fatalf("undo_window_ms=%d", cfg.UI.UndoWindowMS)
	}
	if cfg.UI.Locale != "zh-CN" || cfg.Log.Level != "debug" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if filepath.Base(cfg.DBPath()) != "work.db" {
		t.Fatalf("db path=%q", cfg.DBPath())
	}
}

func TestExplicitPathAndEnvPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	_ = os.WriteFile(a, []byte(`{"ui":{"theme":"light"}}`), 0o644)
	_ = os.WriteFile(b, []byte(`{"ui":{"swipe_threshold":120}}`), 0o644)

	cfg, err := Load(a)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("theme=%q", cfg.UI.Theme)
	}

	t.Setenv("TASKPRO_CONFIG_PATH", b)
	cfg, err = Load(a)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "dark" || cfg.UI.SwipeThreshold != 120 {
		t.Fatalf("env path should replace the explicit path: %+v", cfg.UI)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv("TASKPRO_HOME", home)
	t.Setenv("TASKPRO_UNDO_MS", "1500")
	t.Setenv("TASKPRO_THEME", "LIGHT")
	t.Setenv("TASKPRO_LOG_LEVEL", "warning")
	t.Setenv("TASKPRO_LANG", "en")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.BaseDir != home {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.UI.UndoWindowMS != 1500 || cfg.UI.Theme != "light" || cfg.Log.Level != "warn" || cfg.UI.Locale != "en" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestInvalidUndoEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKPRO_UNDO_MS", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric TASKPRO_UNDO_MS")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	isolate(t)
	_ = os.WriteFile("taskpro.config.json", []byte(`{"ui":{"theme":"neon","undo_window_ms":-5},"log":{"level":"loud"}}`), 0o644)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "dark" || cfg.UI.UndoWindowMS != DefaultUndoWindowMS || cfg.Log.Level != "info" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestMalformedConfig(t *testing.T) {
	isolate(t)
	_ = os.WriteFile("taskpro.config.json", []byte(`{"ui":`), 0o644)
	if _, err := Load(""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMemoryDB(t *testing.T) {
	isolate(t)
	_ = os.WriteFile("taskpro.config.json", []byte(`{"storage":{"db_name":":memory:"}}`), 0o644)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath() != MemoryDBName {
		t.Fatalf("db path=%q", cfg.DBPath())
	}
}

func TestStripJSONComments(t *testing.T) {
	in := `{"a": "http://x//y", /* c */ "b": 1 // tail
}`
	got := string(stripJSONComments([]byte(in)))
	want := "{\"a\": \"http://x//y\",  \"b\": 1 \n}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestInitProjectConfigScaffold(t *testing.T) {
	dir := t.TempDir()
	path, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"ui":{"theme":"light"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := InitProjectConfigScaffold(dir)
	if err != nil || again != path {
		t.Fatalf("second init: %q %v", again, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"ui":{"theme":"light"}}` {
		t.Fatalf("existing config overwritten: %s", data)
	}
}
