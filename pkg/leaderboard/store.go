// Package leaderboard persists per-player kill totals outside the tick loop.
package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Record is a score increment for one player.
type Record struct {
	Player string  `json:"player"`
	Name   string  `json:"name,omitempty"`
	Delta  float64 `json:"delta"`
}

// Entry is one leaderboard row.
type Entry struct {
	Player string  `json:"player"`
	Name   string  `json:"name,omitempty"`
	Score  float64 `json:"score"`
}

type Store interface {
	// Add applies a batch of increments.
	Add(ctx context.Context, records []Record) error
	// Top returns the n best entries, highest score first. Tie order is up to the store.
	Top(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

// MemoryStore is the Store used when no Redis address is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (m *MemoryStore) Add(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		e, ok := m.entries[r.Player]
		if !ok {
			e = &Entry{Player: r.Player}
			m.entries[r.Player] = e
		}
		if r.Name != "" {
			e.Name = r.Name
		}
		e.Score += r.Delta
	}
	return nil
}

func (m *MemoryStore) Top(_ context.Context, n int) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
