package repository

import (
	"context"
	"sync"
)

// MemoryKV is a process-local KVStore used by tests across packages.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
	// Writes counts successful Set/Delete calls.
	Writes int
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	m.Writes++
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.values, key)
	m.Writes++
	return nil
}
