package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a Store backed by one file per key in a fixed directory.
type Dir struct {
	path string
}

// OpenDir returns a Dir rooted at path, creating the directory if it
// does not exist.
func OpenDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Get(url string) ([]byte, bool) {
	data, err := os.ReadFile(d.entryPath(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (d *Dir) Put(url string, response []byte) error {
	// Written in place, no temp file and no lock: last writer wins.
	if err := os.WriteFile(d.entryPath(url), response, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (d *Dir) entryPath(url string) string {
	return filepath.Join(d.path, Key(url))
}
