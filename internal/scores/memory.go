package scores

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store, used when no database is available.
type Memory struct {
	mu    sync.Mutex
	games map[string][]Entry
	last  map[string]int
	seq   int64
	now   func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{games: map[string][]Entry{}, last: map[string]int{}, now: time.Now}
}

func (m *Memory) Submit(_ context.Context, game, player string, score int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := newEntry(game, player, score, m.now())
	e.seq = m.seq
	es := append(m.games[game], e)
	sortEntries(es)
	if len(es) > Capacity {
		es = es[:Capacity]
	}
	m.games[game] = es
	m.last[game] = score
	return append([]Entry(nil), es...), nil
}

func (m *Memory) Top(_ context.Context, game string, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	es := m.games[game]
	if n > 0 && n < len(es) {
		es = es[:n]
	}
	return append([]Entry(nil), es...), nil
}

func (m *Memory) LastScore(_ context.Context, game string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.last[game]
	return s, ok, nil
}

func (m *Memory) IsNewHighScore(_ context.Context, game string, score int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return qualifies(m.games[game], score), nil
}

func (m *Memory) Close() error { return nil }
