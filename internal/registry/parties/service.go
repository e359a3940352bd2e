package parties

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ReferenceChecker answers whether any voucher, active or inactive, still
// points at the party. Implemented by the ledger repository.
type ReferenceChecker interface {
	PartyReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuditPort records registry mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns party lifecycle. Party names need not be unique.
type Service struct {
	repo  Repository
	refs  ReferenceChecker
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the party registry service.
func NewService(repo Repository, refs ReferenceChecker, audit AuditPort) *Service {
	return &Service{repo: repo, refs: refs, audit: audit, now: time.Now}
}

// Create registers a new party.
func (s *Service) Create(ctx context.Context, name, phone, address string) (Party, error) {
	if strings.TrimSpace(name) == "" {
		return Party{}, shared.InvalidArgument("name", "party name is required")
	}
	party, err := s.repo.Insert(ctx, Party{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
	})
	if err != nil {
		return Party{}, err
	}
	s.record(ctx, "party.create", party.ID, map[string]any{"name": party.Name})
	return party, nil
}

// Get fetches a single party by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Party, error) {
	return s.repo.Get(ctx, id)
}

// List returns all registered parties.
func (s *Service) List(ctx context.Context) ([]Party, error) {
	return s.repo.List(ctx)
}

// Rename changes a party's display name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.InvalidArgument("name", "party name is required")
	}
	party, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	party.Name = strings.TrimSpace(name)
	if err := s.repo.Update(ctx, party); err != nil {
		return err
	}
	s.record(ctx, "party.rename", id, map[string]any{"name": party.Name})
	return nil
}

// Delete removes a party. A party with voucher history cannot be removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if s.refs != nil {
		referenced, err := s.refs.PartyReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return shared.ReferentialIntegrity("party")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "party.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "party",
		EntityID: id.String(),
		Meta:     meta,
		At:       s.now(),
	})
}
