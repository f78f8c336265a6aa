package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists the session id between runs. A browser widget uses
// localStorage for this; embedders on other platforms plug in their own.
type Storage interface {
	// Load returns the stored session id, or "" when none is stored.
	Load() (string, error)
	// Save stores the session id.
	Save(id string) error
}

// FileStorage keeps the session id in a single file.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage backed by the given path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the stored session id. A missing file means no id is stored.
func (s *FileStorage) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save writes the session id, creating parent directories as needed.
func (s *FileStorage) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id), 0600); err != nil {
		return fmt.Errorf("write session id: %w", err)
	}
	return nil
}
