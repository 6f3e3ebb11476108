package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/starford/inkwell/internal/models"
)

// FileSlot keeps the snapshot in <dir>/<key>.json.
type FileSlot struct {
	path string
}

var _ Slot = (*FileSlot)(nil)

// NewFileSlot returns a slot stored under dir. The directory is created on first Save.
func NewFileSlot(dir, key string) *FileSlot {
	if key == "" {
		key = DefaultKey
	}
	return &FileSlot{path: filepath.Join(dir, key+".json")}
}

// Path is the snapshot file location.
func (s *FileSlot) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is ErrMiss.
func (s *FileSlot) Load(_ context.Context) ([]models.Post, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", s.path, err)
	}
	return decode(data)
}

// Save replaces the snapshot atomically: tmp file, fsync, rename.
func (s *FileSlot) Save(_ context.Context, posts []models.Post) error {
	data, err := encode(posts)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".inkwell-tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("cache: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("cache: rename: %w", err)
	}
	success = true
	return nil
}
