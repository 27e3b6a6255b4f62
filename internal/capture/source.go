package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileSource serves frames from image files on disk. It stands in for
// a camera in the terminal client: each Capture returns the next file
// in the directory, cycling when it runs out.
type FileSource struct {
	dir string

	mu    sync.Mutex
	files []string
	next  int
}

var _ FrameSource = (*FileSource)(nil)

// NewFileSource creates a source that reads frames from the given
// directory. A path to a single file is also accepted.
func NewFileSource(path string) *FileSource {
	return &FileSource{dir: path}
}

// Start scans the directory for image files
func (s *FileSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("failed to open frame source: %w", err)
	}

	if !info.IsDir() {
		s.files = []string{s.dir}
		s.next = 0
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(s.dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files in %s", s.dir)
	}

	sort.Strings(files)
	s.files = files
	s.next = 0
	return nil
}

// Capture returns the next frame, cycling through the files
func (s *FileSource) Capture(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.files) == 0 {
		return nil, fmt.Errorf("frame source not started")
	}

	path := s.files[s.next%len(s.files)]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	return data, nil
}

// Close releases the source
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
	return nil
}
