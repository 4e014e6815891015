package lock

import (
	"context"
	"fmt"
	"sync"
)

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// Memory serializes callers within a single process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
