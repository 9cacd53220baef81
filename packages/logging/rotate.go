// Package logging provides the size-rotated request log.
package logging

import (
	"fmt"
	"os"
	"sync"
)

// DefaultMaxSize is the rotation threshold when none is configured.
const DefaultMaxSize = 1 << 20 // 1 MiB

// RotatingWriter appends to a file and, once the file has reached
// maxSize, renames it to <path>.1 (replacing any previous predecessor)
// and starts a fresh file. Exactly one rotated predecessor is kept.
//
// Writes from goroutines in this process are serialized; appends from
// separate processes may interleave at the line level, there is no
// cross-process locking.
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	file    *os.File
	size    int64
}

func NewRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	w := &RotatingWriter{path: path, maxSize: maxSize}
	if err := w.open(); err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size >= w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) rotate() error {
	_ = w.file.Close()
	if err := os.Rename(w.path, w.path+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log: %w", err)
	}
	return w.open()
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
