// Package storage provides durable key-value slots.
//
// A Slot stores one opaque value per key and nothing else; callers own
// the encoding. Three backends exist: a directory of files, a SQLite table
// and an in-memory map for tests.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Slot is a durable key-value store. Put must be durable when it returns.
type Slot interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Close() error
}

// Backend names a Slot implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Open returns the slot for backend rooted at dataDir.
func Open(backend Backend, dataDir string) (Slot, error) {
	switch backend {
	case BackendFile, "":
		return NewFileSlot(dataDir)
	case BackendSQLite:
		return NewSQLiteSlot(dataDir)
	case BackendMemory:
		return NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("storage: unknown backend %q", backend)
}

// MemorySlot keeps values in process memory. Values are copied on the way
// in and out.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (m *MemorySlot) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlot) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemorySlot) Close() error { return nil }
