package testutil

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/cache"
)

// MemoryKV is an in-memory cache.KeyValueStore. TTLs are ignored.
type MemoryKV struct {
	mu   sync.Mutex
	Data map[string][]byte
}

var _ cache.KeyValueStore = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{Data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Data[key], nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Data, k)
	}
	return nil
}

// DeletePattern matches keys with path.Match, which agrees with Redis globs
// for the keys used here.
func (m *MemoryKV) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.Data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.Data, k)
		}
	}
	return nil
}

func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Data)
}
