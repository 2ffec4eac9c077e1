// Package preview keeps a playable copy of the last recording.
package preview

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/browser"

	"github.com/rbright/recite/internal/capture"
	"github.com/rbright/recite/internal/paths"
)

// Opener hands a file to the desktop's default application.
type Opener func(path string) error

// Store writes previews into one directory and opens them on request.
type Store struct {
	dir  string
	open Opener
	now  func() time.Time
}

// NewStore roots previews at dir, or at <state dir>/previews when dir is empty.
func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		state, err := paths.StateDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(state, "previews")
	}
	return &Store{dir: dir, open: browser.OpenFile, now: time.Now}, nil
}

// Dir returns the preview directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes artifact as a WAV file and returns its path.
func (s *Store) Save(artifact capture.Artifact) (string, error) {
	path, err := capture.WritePreview(s.dir, artifact, s.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("save preview: %w", err)
	}
	return path, nil
}

// Open plays a previously saved preview.
func (s *Store) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("no preview recorded yet")
	}
	if err := s.open(path); err != nil {
		return fmt.Errorf("open preview %s: %w", path, err)
	}
	return nil
}
