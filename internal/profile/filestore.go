package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileStore persists the record as pretty-printed JSON on disk. An absent
// file loads as an empty record.
type FileStore struct {
	Path string
}

// NewFileStore returns a store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and parses the record file.
func (s *FileStore) Load(_ context.Context) (*Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{}, nil
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", s.Path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", s.Path, err)
	}
	return &rec, nil
}

// Save writes the record atomically via a temp file rename.
func (s *FileStore) Save(_ context.Context, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}
