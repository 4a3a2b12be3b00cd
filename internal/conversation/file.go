package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the conversation as a single JSON file, written
// atomically (tmp + rename) so a crash mid-write never corrupts history.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full message list. A missing file is an empty conversation,
// not an error.
func (f *FileStore) Load() ([]ChatMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversation file: %w", err)
	}

	var messages []ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("unmarshalling conversation: %w", err)
	}
	return messages, nil
}

// Save writes the full message list atomically.
func (f *FileStore) Save(messages []ChatMessage) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("creating conversation directory: %w", err)
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling conversation: %w", err)
	}

	tempFile := f.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("writing conversation file: %w", err)
	}
	if err := os.Rename(tempFile, f.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("replacing conversation file: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error { return nil }
