package heads

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ReferenceChecker answers whether any voucher, active or inactive, still
// points at the head. Implemented by the ledger repository.
type ReferenceChecker interface {
	HeadReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuditPort records registry mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns account head lifecycle.
type Service struct {
	repo  Repository
	refs  ReferenceChecker
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the head registry service.
func NewService(repo Repository, refs ReferenceChecker, audit AuditPort) *Service {
	return &Service{repo: repo, refs: refs, audit: audit, now: time.Now}
}

// Create registers a new head. Names are unique case-insensitively within a kind.
func (s *Service) Create(ctx context.Context, name string, kind Kind) (Head, error) {
	if err := s.validate(name, kind); err != nil {
		return Head{}, err
	}
	head, err := s.repo.Insert(ctx, Head{ID: uuid.New(), Name: strings.TrimSpace(name), Kind: kind})
	if err != nil {
		return Head{}, err
	}
	s.record(ctx, "head.create", head.ID, map[string]any{"name": head.Name, "kind": string(head.Kind)})
	return head, nil
}

// Get fetches a single head by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Head, error) {
	return s.repo.Get(ctx, id)
}

// List returns heads, optionally restricted to one kind.
func (s *Service) List(ctx context.Context, kind *Kind) ([]Head, error) {
	if kind != nil && !kind.Valid() {
		return nil, shared.InvalidArgument("kind", "unknown head kind")
	}
	return s.repo.List(ctx, kind)
}

// Rename changes a head's display name. Kind never changes once set.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.InvalidArgument("name", "head name is required")
	}
	if err := s.repo.Rename(ctx, id, strings.TrimSpace(name)); err != nil {
		return err
	}
	s.record(ctx, "head.rename", id, map[string]any{"name": strings.TrimSpace(name)})
	return nil
}

// Delete removes an unreferenced head. Heads with voucher history are kept
// so historic balances stay derivable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if s.refs != nil {
		referenced, err := s.refs.HeadReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return shared.ReferentialIntegrity("head")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "head.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "account_head",
		EntityID: id.String(),
		Meta:     meta,
		At:       s.now(),
	})
}
