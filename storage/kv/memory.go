package kv

import (
	"context"
	"sync"

	"github.com/espanolfacil/academy/core/session"
)

// MemoryBackend keeps session records in a process-local map.
type MemoryBackend struct {
	prefix string

	mu      sync.RWMutex
	records map[string][]byte
}

var _ session.Backend = (*MemoryBackend)(nil) // interface compliance check

func NewMemoryBackend(prefix string) *MemoryBackend {
	return &MemoryBackend{prefix: prefix, records: make(map[string][]byte)}
}

func (b *MemoryBackend) Record(contextID string) session.Store {
	return &memoryRecord{backend: b, key: Key(b.prefix, contextID)}
}

// Raw returns the stored value under key, for inspection.
func (b *MemoryBackend) Raw(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.records[key]
	return data, ok
}

// Put stores a raw value under key.
func (b *MemoryBackend) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[key] = data
}

type memoryRecord struct {
	backend *MemoryBackend
	key     string
}

func (r *memoryRecord) Get(_ context.Context) ([]byte, error) {
	data, ok := r.backend.Raw(r.key)
	if !ok {
		return nil, session.ErrNoRecord
	}
	return data, nil
}

func (r *memoryRecord) Set(_ context.Context, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	r.backend.Put(r.key, cp)
	return nil
}

func (r *memoryRecord) Delete(_ context.Context) error {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	delete(r.backend.records, r.key)
	return nil
}
