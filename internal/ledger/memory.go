package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// MemoryRepository keeps the voucher log in process memory behind a single
// mutex. Writes are serialized and reads copy out a snapshot, which is all
// the isolation the engine asks of a store.
type MemoryRepository struct {
	mu       sync.RWMutex
	vouchers map[uuid.UUID]Voucher
	nextSeq  int64
}

// NewMemoryRepository returns an empty in-memory voucher repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{vouchers: make(map[uuid.UUID]Voucher)}
}

func (r *MemoryRepository) Insert(_ context.Context, v Voucher) (Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	v.Number = r.nextSeq
	v.VoucherNo = FormatVoucherNo(v.Number)
	v.Status = StatusActive
	v.CreatedAt = time.Now().UTC()
	r.vouchers[v.ID] = v
	return v, nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vouchers[id]
	if !ok {
		return Voucher{}, shared.NotFound("voucher", "id")
	}
	return v, nil
}

func (r *MemoryRepository) Update(_ context.Context, v Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.vouchers[v.ID]
	if !ok {
		return shared.NotFound("voucher", "id")
	}
	current.Date = v.Date
	current.Description = v.Description
	current.Amount = v.Amount
	current.PartyID = v.PartyID
	r.vouchers[v.ID] = current
	return nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, id uuid.UUID, status VoucherStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return false, nil
	}
	v.Status = status
	r.vouchers[id] = v
	return true, nil
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Voucher
	for _, v := range r.vouchers {
		if matchesStructural(v, f) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *MemoryRepository) HeadReferenced(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vouchers {
		if v.From.ID == id || (v.To != nil && v.To.ID == id) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) PartyReferenced(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.vouchers {
		if v.PartyID != nil && *v.PartyID == id {
			return true, nil
		}
	}
	return false, nil
}

// matchesStructural applies the filter fields a SQL store would push into
// its WHERE clause. Text search is left to the engine.
func matchesStructural(v Voucher, f Filter) bool {
	if f.FromDate != nil && v.Date.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && v.Date.After(*f.ToDate) {
		return false
	}
	if f.Type != nil && v.Type != *f.Type {
		return false
	}
	if f.HeadKind != nil {
		if v.From.Kind != *f.HeadKind && (v.To == nil || v.To.Kind != *f.HeadKind) {
			return false
		}
	}
	if f.HeadID != nil {
		if v.From.ID != *f.HeadID && (v.To == nil || v.To.ID != *f.HeadID) {
			return false
		}
	}
	if f.PartyID != nil {
		if v.PartyID == nil || *v.PartyID != *f.PartyID {
			return false
		}
	}
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	return true
}
