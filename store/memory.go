package store

import (
	"encoding/json"
	"sync"
)

// Memory is an in-memory Cache for tests and dry runs. Values round-trip
// through JSON so behavior matches the durable implementation.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Get(key string, dest any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if dest != nil {
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *Memory) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = string(raw)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Contains(key string) (bool, error) {
	m.mu.Lock()
	_, ok := m.entries[key]
	m.mu.Unlock()
	return ok, nil
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
