package heads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// MemoryRepository keeps heads in process memory. It backs tests and
// database-free runs; the engine logic cannot tell it apart from Postgres.
type MemoryRepository struct {
	mu    sync.RWMutex
	heads map[uuid.UUID]Head

	// ReferencedFn lets tests and wiring simulate voucher references.
	ReferencedFn func(id uuid.UUID) bool
}

// NewMemoryRepository returns an empty in-memory head repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{heads: make(map[uuid.UUID]Head)}
}

func (r *MemoryRepository) Insert(_ context.Context, head Head) (Head, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.heads {
		if existing.Kind == head.Kind && foldName(existing.Name) == foldName(head.Name) {
			return Head{}, shared.InvalidArgument("name", "head name already used within kind")
		}
	}
	now := time.Now().UTC()
	head.CreatedAt = now
	head.UpdatedAt = now
	r.heads[head.ID] = head
	return head, nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (Head, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	head, ok := r.heads[id]
	if !ok {
		return Head{}, shared.NotFound("head", "id")
	}
	return head, nil
}

func (r *MemoryRepository) List(_ context.Context, kind *Kind) ([]Head, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Head
	for _, head := range r.heads {
		if kind != nil && head.Kind != *kind {
			continue
		}
		out = append(out, head)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return foldName(out[i].Name) < foldName(out[j].Name)
	})
	return out, nil
}

func (r *MemoryRepository) Rename(_ context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	head, ok := r.heads[id]
	if !ok {
		return shared.NotFound("head", "id")
	}
	for otherID, existing := range r.heads {
		if otherID != id && existing.Kind == head.Kind && foldName(existing.Name) == foldName(name) {
			return shared.InvalidArgument("name", "head name already used within kind")
		}
	}
	head.Name = name
	head.UpdatedAt = time.Now().UTC()
	r.heads[id] = head
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.heads[id]; !ok {
		return shared.NotFound("head", "id")
	}
	if r.ReferencedFn != nil && r.ReferencedFn(id) {
		return shared.ReferentialIntegrity("head")
	}
	delete(r.heads, id)
	return nil
}
