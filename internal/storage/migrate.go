package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CheckFunc 校验单个键值，返回错误则拒绝导入
// CheckFunc validates one key/value pair before it is imported.
type CheckFunc func(key, value string) error

// ReadDump 解析浏览器 localStorage 导出文件
// ReadDump parses a localStorage dump. Two shapes are accepted: a bare tasks
// array, or an object whose members are either JSON-encoded strings (as
// localStorage stores them) or inline JSON values.
func ReadDump(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("dump path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return ParseDump(data)
}

// ParseDump is ReadDump on bytes already in memory.
func ParseDump(data []byte) (map[string]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("dump is empty")
	}
	out := make(map[string]string)
	if trimmed[0] == '[' {
		out[KeyTasks] = string(trimmed)
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("parse dump: %w", err)
	}
	for k, raw := range obj {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(raw)
	}
	return out, nil
}

// MigrateFromJSON 将 localStorage 导出文件导入到存储中
// MigrateFromJSON imports a localStorage dump into dst. Only keys known to
// the application are copied; every value must pass check. Nothing is
// written unless all values pass. Returns the number of keys written.
func MigrateFromJSON(path string, dst Store, check CheckFunc) (int, error) {
	dump, err := ReadDump(path)
	if err != nil {
		return 0, err
	}

	accepted := make(map[string]string)
	for _, key := range []string{KeyTasks, KeyTheme} {
		value, ok := dump[key]
		if !ok {
			continue
		}
		if check != nil {
			if err := check(key, value); err != nil {
				return 0, fmt.Errorf("invalid %s: %w", key, err)
			}
		}
		accepted[key] = value
	}
	if len(accepted) == 0 {
		return 0, fmt.Errorf("dump has no %q or %q key", KeyTasks, KeyTheme)
	}

	if batch, ok := dst.(*SQLiteStore); ok {
		if err := batch.SetMany(accepted); err != nil {
			return 0, err
		}
		return len(accepted), nil
	}
	for k, v := range accepted {
		if err := dst.Set(k, v); err != nil {
			return 0, err
		}
	}
	return len(accepted), nil
}
