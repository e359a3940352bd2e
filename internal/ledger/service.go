package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates voucher writes, validation against the registries,
// and the derived read side. It is safe for concurrent use; all state
// lives in the repository.
type Service struct {
	repo    Repository
	heads   HeadDirectory
	parties PartyDirectory
	audit   AuditPort
	cache   *Cache
	now     func() time.Time
}

// NewService constructs the ledger service. Audit and cache may be nil.
func NewService(repo Repository, heads HeadDirectory, parties PartyDirectory, audit AuditPort, cache *Cache) *Service {
	return &Service{repo: repo, heads: heads, parties: parties, audit: audit, cache: cache, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and appends a voucher. The stored voucher, including
// its generated id and number, is returned.
func (s *Service) Create(ctx context.Context, in CreateInput) (Voucher, error) {
	if err := in.Validate(); err != nil {
		return Voucher{}, err
	}
	fromHead, err := s.heads.Get(ctx, in.From.ID)
	if err != nil {
		return Voucher{}, err
	}
	if fromHead.Kind != in.From.Kind {
		return Voucher{}, shared.InvalidArgument("fromHeadType", "head kind does not match fromHeadType")
	}
	if in.To != nil {
		toHead, err := s.heads.Get(ctx, in.To.ID)
		if err != nil {
			return Voucher{}, err
		}
		if toHead.Kind != in.To.Kind {
			return Voucher{}, shared.InvalidArgument("toHeadType", "head kind does not match toHeadType")
		}
	}
	if in.PartyID != nil {
		if _, err := s.parties.Get(ctx, *in.PartyID); err != nil {
			return Voucher{}, err
		}
	}
	voucher, err := s.repo.Insert(ctx, Voucher{
		ID:          uuid.New(),
		Date:        in.Date,
		Type:        in.Type,
		PartyID:     in.PartyID,
		From:        in.From,
		To:          in.To,
		Description: in.Description,
		Amount:      in.Amount,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return Voucher{}, err
	}
	s.invalidate(ctx)
	s.record(ctx, voucher.CreatedBy, "voucher.create", voucher.ID, map[string]any{
		"voucher_number": voucher.VoucherNo,
		"voucher_type":   string(voucher.Type),
		"amount":         voucher.Amount.String(),
	})
	return voucher, nil
}

// Update edits the mutable fields of an active voucher. Type and head
// linkage are immutable: a payload naming a different value for them is
// rejected. Soft-deleted vouchers cannot be edited.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Voucher, error) {
	voucher, err := s.repo.Get(ctx, id)
	if err != nil {
		return Voucher{}, err
	}
	if voucher.Status != StatusActive {
		return Voucher{}, shared.InvalidArgument("status", "inactive vouchers cannot be edited")
	}
	if in.Type != nil && *in.Type != voucher.Type {
		return Voucher{}, shared.Immutable("voucherType")
	}
	if in.FromHeadID != nil && *in.FromHeadID != voucher.From.ID {
		return Voucher{}, shared.Immutable("fromHeadId")
	}
	if in.ToHeadID != nil {
		if voucher.To == nil || *in.ToHeadID != voucher.To.ID {
			return Voucher{}, shared.Immutable("toHeadId")
		}
	}
	if in.Amount != nil {
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return Voucher{}, shared.InvalidArgument("amount", "amount must be greater than zero")
		}
		voucher.Amount = *in.Amount
	}
	if in.Date != nil {
		voucher.Date = *in.Date
	}
	if in.Description != nil {
		voucher.Description = *in.Description
	}
	if in.PartyID != nil {
		if _, err := s.parties.Get(ctx, *in.PartyID); err != nil {
			return Voucher{}, err
		}
		voucher.PartyID = in.PartyID
	}
	if err := s.repo.Update(ctx, voucher); err != nil {
		return Voucher{}, err
	}
	s.invalidate(ctx)
	s.record(ctx, voucher.CreatedBy, "voucher.update", voucher.ID, map[string]any{
		"voucher_number": voucher.VoucherNo,
	})
	return voucher, nil
}

// SoftDelete flips each voucher to inactive. Each id succeeds or fails on
// its own; already-inactive vouchers are a no-op, unknown ids are reported
// in FailedIDs without aborting the batch.
func (s *Service) SoftDelete(ctx context.Context, ids []uuid.UUID) (BulkDeleteResult, error) {
	result := BulkDeleteResult{FailedIDs: []uuid.UUID{}}
	for _, id := range ids {
		found, err := s.repo.SetStatus(ctx, id, StatusInactive)
		if err != nil {
			return result, err
		}
		if !found {
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.DeletedCount++
		s.record(ctx, "", "voucher.soft_delete", id, nil)
	}
	if result.DeletedCount > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}

// Get fetches one voucher by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	return s.repo.Get(ctx, id)
}

// Query returns the filtered, ordered voucher rows together with the
// statistics for the full filtered set. Pagination slices rows only; it
// never changes the stats.
func (s *Service) Query(ctx context.Context, f Filter, page, perPage int) (QueryResult, error) {
	vouchers, err := s.filtered(ctx, f)
	if err != nil {
		return QueryResult{}, err
	}
	sortVouchers(vouchers)
	stats := ComputeStats(vouchers)
	pagination := shared.NewPagination(page, perPage, len(vouchers))
	from, to := pagination.Slice(len(vouchers))
	rows := vouchers[from:to]
	if rows == nil {
		rows = []Voucher{}
	}
	return QueryResult{Rows: rows, Stats: stats, Pagination: pagination}, nil
}

// Stats computes the aggregate statistics for a filter. The unfiltered
// aggregate is cached and invalidated on every write.
func (s *Service) Stats(ctx context.Context, f Filter) (Stats, error) {
	if f.IsZero() && s.cache != nil {
		key, err := s.cache.BuildKey(ctx, "ledger", "stats")
		if err == nil {
			var stats Stats
			err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
				return s.computeStats(ctx, f)
			})
			if err == nil {
				return stats, nil
			}
		}
		// cache trouble is never fatal to a read
	}
	return s.computeStats(ctx, f)
}

// HeadBalance derives the net position of a head from its active vouchers.
func (s *Service) HeadBalance(ctx context.Context, headID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.heads.Get(ctx, headID); err != nil {
		return decimal.Zero, err
	}
	if s.cache != nil {
		key, err := s.cache.BuildKey(ctx, "ledger", "balance", headID.String())
		if err == nil {
			var balance decimal.Decimal
			err = s.cache.FetchJSON(ctx, key, &balance, func(ctx context.Context) (interface{}, error) {
				return s.computeHeadBalance(ctx, headID)
			})
			if err == nil {
				return balance, nil
			}
		}
	}
	return s.computeHeadBalance(ctx, headID)
}

func (s *Service) computeHeadBalance(ctx context.Context, headID uuid.UUID) (decimal.Decimal, error) {
	vouchers, err := s.repo.List(ctx, Filter{HeadID: &headID})
	if err != nil {
		return decimal.Zero, err
	}
	return BalanceOf(headID, vouchers), nil
}

func (s *Service) computeStats(ctx context.Context, f Filter) (Stats, error) {
	vouchers, err := s.filtered(ctx, f)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(vouchers), nil
}

// filtered loads the structurally filtered rows from the store and applies
// text search, which needs registry display names, in the engine.
func (s *Service) filtered(ctx context.Context, f Filter) ([]Voucher, error) {
	vouchers, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.Search == "" {
		return vouchers, nil
	}
	resolver := newNameResolver(s.heads, s.parties)
	matched := vouchers[:0]
	for _, v := range vouchers {
		if resolver.matchesSearch(ctx, v, f.Search) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) record(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "voucher",
		EntityID: id.String(),
		Meta:     meta,
		At:       s.now(),
	})
}
