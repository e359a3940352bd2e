package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// CreateInput groups the fields required to record a voucher.
type CreateInput struct {
	Date        Date
	Type        VoucherType
	PartyID     *uuid.UUID
	From        HeadRef
	To          *HeadRef
	Description string
	Amount      decimal.Decimal
	CreatedBy   string
}

// Validate checks the structural invariants before any registry lookup.
func (in CreateInput) Validate() error {
	if !in.Type.Valid() {
		return shared.InvalidArgument("voucherType", "unknown voucher type")
	}
	if in.Date.IsZero() {
		return shared.InvalidArgument("date", "date is required")
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.InvalidArgument("amount", "amount must be greater than zero")
	}
	if in.From.ID == uuid.Nil {
		return shared.InvalidArgument("fromHeadId", "from head is required")
	}
	if !in.From.Kind.Valid() {
		return shared.InvalidArgument("fromHeadType", "unknown head kind")
	}
	if in.Type.Transfer() && in.To == nil {
		return shared.InvalidArgument("toHeadId", "transfer vouchers require a to head")
	}
	if in.To != nil {
		if in.To.ID == uuid.Nil {
			return shared.InvalidArgument("toHeadId", "to head id is required when a to head is given")
		}
		if !in.To.Kind.Valid() {
			return shared.InvalidArgument("toHeadType", "unknown head kind")
		}
		if in.To.ID == in.From.ID {
			return shared.InvalidArgument("toHeadId", "to head must differ from the from head")
		}
	}
	return nil
}

// UpdateInput carries the editable voucher fields. Type and head linkage are
// locked at creation; supplying a different value for them is rejected with
// an Immutable error rather than silently ignored.
type UpdateInput struct {
	Date        *Date
	Description *string
	Amount      *decimal.Decimal
	PartyID     *uuid.UUID

	Type       *VoucherType
	FromHeadID *uuid.UUID
	ToHeadID   *uuid.UUID
}

// Filter narrows the voucher set for queries and statistics. Date bounds
// are inclusive and compare on the business date, never on CreatedAt.
type Filter struct {
	FromDate *Date
	ToDate   *Date
	Type     *VoucherType
	HeadKind *heads.Kind
	HeadID   *uuid.UUID
	PartyID  *uuid.UUID
	Status   *VoucherStatus
	Search   string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.FromDate == nil && f.ToDate == nil && f.Type == nil &&
		f.HeadKind == nil && f.HeadID == nil && f.PartyID == nil &&
		f.Status == nil && f.Search == ""
}

// Stats aggregates the filtered voucher set. Amount totals cover active
// vouchers only; the status counts deliberately include inactive rows so
// deletions stay auditable.
type Stats struct {
	TotalTransactions int             `json:"total_transactions"`
	TotalReceive      decimal.Decimal `json:"total_receive"`
	TotalPayment      decimal.Decimal `json:"total_payment"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ActiveCount       int             `json:"active_count"`
	InactiveCount     int             `json:"inactive_count"`
}

// QueryResult pairs one page of rows with statistics over the full
// filtered set.
type QueryResult struct {
	Rows       []Voucher         `json:"rows"`
	Stats      Stats             `json:"stats"`
	Pagination shared.Pagination `json:"pagination"`
}

// BulkDeleteResult reports partial-success outcomes for bulk soft-deletes.
type BulkDeleteResult struct {
	DeletedCount int         `json:"deleted_count"`
	FailedIDs    []uuid.UUID `json:"failed_ids"`
}
