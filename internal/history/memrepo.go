package history

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository keeps results in process. Used when no database is configured and in
// tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*Result
	byPlayer map[string][]string // playerID -> game ids, oldest first
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*Result),
		byPlayer: make(map[string][]string),
	}
}

func (m *MemoryRepository) SaveResult(ctx context.Context, r *Result) error {
	if r == nil || strings.TrimSpace(r.GameID) == "" {
		return ErrNotFound
	}
	copy := cloneResult(r)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[r.GameID]; !exists {
		for _, p := range []string{r.WhiteID, r.BlackID} {
			if p != "" {
				m.byPlayer[p] = append(m.byPlayer[p], r.GameID)
			}
		}
	}
	m.byID[r.GameID] = copy
	return nil
}

func (m *MemoryRepository) RecentByPlayer(ctx context.Context, playerID string, limit int) ([]*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byPlayer[playerID]
	items := make([]*Result, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		items = append(items, cloneResult(m.byID[ids[i]]))
	}
	// EndedAt desc; ties keep the newest save first
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EndedAt.After(items[j].EndedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryRepository) Get(ctx context.Context, gameID string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneResult(r), nil
}

func cloneResult(r *Result) *Result {
	copy := *r
	copy.Moves = append([]string(nil), r.Moves...)
	return &copy
}
