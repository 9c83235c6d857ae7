// internal/history/memory.go
//
// History of finished matches.
// Defines the Store interface and an in-memory implementation used when no
// database is configured (DB_PATH empty) and in tests.
//
// Characteristics:
//   - Records keyed by match ID plus an insertion-ordered slice for Recent().
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package history

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown match IDs.
var ErrNotFound = errors.New("match not found")

// MaxRecent caps Recent() results.
const MaxRecent = 50

// Match is a finished match as stored in history.
type Match struct {
	ID         string    `json:"id"`
	Players    [2]string `json:"players"` // display names of seats 1 and 2
	Winner     int       `json:"winner"`
	Reason     string    `json:"reason"`
	Shots      [2]int    `json:"shots"`
	Hits       [2]int    `json:"hits"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store persists finished matches.
// Implementations may be backed by memory (this file) or SQLite (sqlite.go).
type Store interface {
	// Save inserts a match; saving an existing ID is a no-op.
	Save(ctx context.Context, m Match) error

	// Get retrieves a match by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (Match, error)

	// Recent lists the latest finished matches, newest first.
	Recent(ctx context.Context, limit int) ([]Match, error)
}

type memory struct {
	mu      sync.RWMutex
	matches map[string]Match
	order   []string // insertion order, oldest first
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{matches: make(map[string]Match)}
}

func (m *memory) Save(ctx context.Context, rec Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[rec.ID]; ok {
		return nil
	}
	m.matches[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.matches[id]; ok {
		return rec, nil
	}
	return Match{}, ErrNotFound
}

func (m *memory) Recent(ctx context.Context, limit int) ([]Match, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Match, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.matches[m.order[i]])
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxRecent {
		return MaxRecent
	}
	return limit
}
