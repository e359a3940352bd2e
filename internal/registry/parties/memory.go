package parties

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// MemoryRepository keeps parties in process memory for tests and
// database-free runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	parties map[uuid.UUID]Party

	// ReferencedFn lets tests and wiring simulate voucher references.
	ReferencedFn func(id uuid.UUID) bool
}

// NewMemoryRepository returns an empty in-memory party repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{parties: make(map[uuid.UUID]Party)}
}

func (r *MemoryRepository) Insert(_ context.Context, party Party) (Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	party.CreatedAt = now
	party.UpdatedAt = now
	r.parties[party.ID] = party
	return party, nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	party, ok := r.parties[id]
	if !ok {
		return Party{}, shared.NotFound("party", "id")
	}
	return party, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Party, 0, len(r.parties))
	for _, party := range r.parties {
		out = append(out, party)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, party Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.parties[party.ID]
	if !ok {
		return shared.NotFound("party", "id")
	}
	party.CreatedAt = current.CreatedAt
	party.UpdatedAt = time.Now().UTC()
	r.parties[party.ID] = party
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parties[id]; !ok {
		return shared.NotFound("party", "id")
	}
	if r.ReferencedFn != nil && r.ReferencedFn(id) {
		return shared.ReferentialIntegrity("party")
	}
	delete(r.parties, id)
	return nil
}
