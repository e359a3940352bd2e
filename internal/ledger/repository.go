package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
	"github.com/meridian-erp/meridian-erp/internal/registry/parties"
)

// Repository is the injected storage abstraction over the voucher log.
// Implementations must serialize writes and give reads a consistent
// snapshot; they never need cross-voucher locks because balances are
// derived, not stored.
type Repository interface {
	// Insert appends a voucher, assigning its sequential number and
	// creation timestamp. The stored voucher is returned.
	Insert(ctx context.Context, v Voucher) (Voucher, error)
	Get(ctx context.Context, id uuid.UUID) (Voucher, error)
	// Update persists the editable fields of an existing voucher.
	Update(ctx context.Context, v Voucher) error
	// SetStatus flips a voucher's status. The boolean reports whether the
	// id existed.
	SetStatus(ctx context.Context, id uuid.UUID, status VoucherStatus) (bool, error)
	// List returns vouchers matching the structural parts of the filter
	// (dates, type, heads, party, status). Text search is resolved by the
	// engine because it spans registry display names.
	List(ctx context.Context, f Filter) ([]Voucher, error)

	HeadReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	PartyReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// HeadDirectory resolves account heads for validation and text search.
// Satisfied by the head registry service.
type HeadDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (heads.Head, error)
}

// PartyDirectory resolves parties for validation and text search.
// Satisfied by the party registry service.
type PartyDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (parties.Party, error)
}
