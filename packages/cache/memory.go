package cache

import "sync"

// Memory is an in-process Store used by tests and by runs that want
// caching without touching the filesystem.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(url string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[Key(url)]
	return data, ok
}

func (m *Memory) Put(url string, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(url)] = response
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
