package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists credentials between runs
type Store interface {
	Load() (*Credential, error)
	Save(cred *Credential) error
	Clear() error
}

// FileStore keeps the credential as a JSON file on disk
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the given file path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the default credential file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scene-hunter/session.json"
	}
	return filepath.Join(home, ".scene-hunter", "session.json")
}

// Load reads the cached credential. A missing file is not an error;
// it returns (nil, nil).
func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &cred, nil
}

// Save writes the credential, creating the parent directory if needed
func (s *FileStore) Save(cred *Credential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the cached credential
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
