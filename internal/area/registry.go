package area

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-area/internal/obslog"
)

// Registry maps area ids to areas, creating them on first use.
type Registry struct {
	deps    Deps
	allowed map[string]struct{}

	mu    sync.RWMutex
	areas map[string]*Area
}

// NewRegistry returns a registry. A non-empty allowed list restricts which ids exist.
func NewRegistry(allowed []string, deps Deps) *Registry {
	r := &Registry{deps: deps, areas: make(map[string]*Area)}
	if len(allowed) > 0 {
		r.allowed = make(map[string]struct{}, len(allowed))
		for _, id := range allowed {
			r.allowed[strings.TrimSpace(id)] = struct{}{}
		}
	}
	return r
}

func (r *Registry) permitted(id string) bool {
	if id == "" {
		return false
	}
	if r.allowed == nil {
		return true
	}
	_, ok := r.allowed[id]
	return ok
}

// Get returns the area with id, loading its persisted record on first use.
func (r *Registry) Get(ctx context.Context, id string) (*Area, error) {
	id = strings.TrimSpace(id)
	if !r.permitted(id) {
		return nil, ErrAreaNotFound
	}
	r.mu.RLock()
	a, ok := r.areas[id]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.areas[id]; ok {
		return a, nil
	}
	a = New(id, r.deps)
	if r.deps.Store != nil {
		rec, err := r.deps.Store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			a.restore(rec)
			obslog.L().Info("area_restored", zap.String("area_id", id), zap.Int64("version", rec.Version))
		}
	}
	r.areas[id] = a
	return a, nil
}

// Lookup returns an already opened area.
func (r *Registry) Lookup(id string) (*Area, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.areas[strings.TrimSpace(id)]
	return a, ok
}

// IDs lists the opened areas in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.areas))
	for id := range r.areas {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Known lists opened areas plus, when the store can enumerate them, persisted ones that
// are still permitted.
func (r *Registry) Known(ctx context.Context) ([]string, error) {
	ids := r.IDs()
	lister, ok := r.deps.Store.(AreaLister)
	if !ok {
		return ids, nil
	}
	stored, err := lister.AreaIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ids)+len(stored))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range stored {
		if _, dup := seen[id]; dup || !r.permitted(id) {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
