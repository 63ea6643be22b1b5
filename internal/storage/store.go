package storage

import "errors"

// Well-known keys of the persisted state.
const (
	KeyTasks = "tasks"
	KeyTheme = "theme"
)

// ErrNotFound 键不存在
// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("storage: key not found")

// Store 同步键值持久化接口，支持多后端 (SQLite / memory)
// Store is a synchronous key-value medium with multiple backends (SQLite / memory).
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)

	// 生命周期 / Lifecycle
	Close() error
}
