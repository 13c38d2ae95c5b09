package persist

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Storage keys for the persisted stores.
const (
	KeyAuth    = "auth-storage"
	KeyTasks   = "task-storage"
	KeyOptions = "options-storage"
	KeyEmail   = "email-storage"
	KeyStatus  = "status-store"
)

// ErrNoEntry is returned by Load when nothing was saved under the key.
var ErrNoEntry = errors.New("no entry for key")

// Backend is a keyed blob store used to carry store state across runs.
// Implementations must tolerate concurrent use from a single process.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// LoadJSON loads and decodes the value under key into a zero-initialized T.
// A missing entry returns the zero value and no error.
func LoadJSON[T any](b Backend, key string) (T, error) {
	var out T
	data, err := b.Load(key)
	if err != nil {
		if errors.Is(err, ErrNoEntry) {
			return out, nil
		}
		return out, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Save(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
