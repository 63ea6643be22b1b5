package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitProjectConfigScaffold 在 dir 下写入 .taskpro/config.json 模板；已存在则保留
// InitProjectConfigScaffold writes a .taskpro/config.json template under dir unless one exists.
func InitProjectConfigScaffold(dir string) (string, error) {
	cfgDir := filepath.Join(strings.TrimSpace(dir), ".taskpro")
	path := filepath.Join(cfgDir, "config.json")

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("project config path is a directory: %s", path)
		}
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat project config: %w", err)
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir .taskpro: %w", err)
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write project config: %w", err)
	}
	return path, nil
}
