package persist

import (
	"os"
	"path/filepath"
	"sync"
)

// FileBackend stores each key as a JSON file under a base directory.
type FileBackend struct {
	baseDir string
	mu      sync.Mutex
}

// NewFileBackend creates the base directory if needed.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{baseDir: baseDir}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.baseDir, key+".json")
}

func (f *FileBackend) Load(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoEntry
		}
		return nil, err
	}
	return data, nil
}

func (f *FileBackend) Save(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Write-then-rename so a crash mid-save never leaves a torn entry.
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
