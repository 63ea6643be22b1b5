package taskstore

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskpro/internal/storage"
	"taskpro/internal/task"
)

//go:embed tasks.schema.json
var tasksSchemaJSON string

var tasksSchema = jsonschema.MustCompileString("taskpro://tasks.schema.json", tasksSchemaJSON)

// Theme values accepted under the theme key.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// DecodeTasks 解析并校验持久化的任务数组
// DecodeTasks parses a persisted task array and validates it against the
// task-list schema. Any failure means the value is unusable as a whole.
func DecodeTasks(raw string) ([]task.Task, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty task list value")
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if err := tasksSchema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var list []task.Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if list == nil {
		list = []task.Task{}
	}
	return list, nil
}

// EncodeTasks serializes the list in the persisted shape. An empty list is "[]".
func EncodeTasks(list []task.Task) (string, error) {
	if list == nil {
		list = []task.Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(data), nil
}

// NormalizeTheme maps a stored theme value to dark or light; ok is false for anything else.
func NormalizeTheme(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	default:
		return "", false
	}
}

// CheckImport validates a key/value pair read from a legacy dump.
func CheckImport(key, value string) error {
	switch key {
	case storage.KeyTasks:
		_, err := DecodeTasks(value)
		return err
	case storage.KeyTheme:
		if _, ok := NormalizeTheme(value); !ok {
			return fmt.Errorf("unknown theme %q", value)
		}
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return fmt.Errorf("invalid task list: %s", ve.Message)
	}
	return fmt.Errorf("invalid task list at %s: %s", loc, ve.Message)
}
