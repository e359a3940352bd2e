// Package ledger implements the voucher store, the balance projector, and
// the query engine. Vouchers are immutable financial events; every derived
// figure (head balance, receive/payment totals) is a pure function of the
// voucher log, never a separately mutated column.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
)

// VoucherType enumerates the financial event kinds.
type VoucherType string

const (
	TypeReceive  VoucherType = "receive"
	TypePayment  VoucherType = "payment"
	TypeSales    VoucherType = "sales_voucher"
	TypePurchase VoucherType = "purchase_voucher"
	TypeJournal  VoucherType = "journal"
	TypeContra   VoucherType = "contra"
)

// Valid reports whether the type is one of the known voucher types.
func (t VoucherType) Valid() bool {
	switch t {
	case TypeReceive, TypePayment, TypeSales, TypePurchase, TypeJournal, TypeContra:
		return true
	}
	return false
}

// Transfer reports whether the type moves money between two heads with no
// receive/payment classification.
func (t VoucherType) Transfer() bool {
	return t == TypeJournal || t == TypeContra
}

// ReceiveClass reports whether the type counts toward totalReceive.
func (t VoucherType) ReceiveClass() bool {
	return t == TypeReceive || t == TypeSales
}

// PaymentClass reports whether the type counts toward totalPayment.
func (t VoucherType) PaymentClass() bool {
	return t == TypePayment || t == TypePurchase
}

// VoucherStatus enumerates voucher lifecycle values.
type VoucherStatus string

const (
	StatusActive   VoucherStatus = "active"
	StatusInactive VoucherStatus = "inactive"
)

// HeadRef points at an account head together with its expected kind. The
// store validates the kind against the registry at creation time.
type HeadRef struct {
	Kind heads.Kind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Voucher is one immutable financial event record.
type Voucher struct {
	ID          uuid.UUID       `json:"id"`
	Number      int64           `json:"number"`
	VoucherNo   string          `json:"voucher_number"`
	Date        Date            `json:"date"`
	Type        VoucherType     `json:"voucher_type"`
	PartyID     *uuid.UUID      `json:"party_id,omitempty"`
	From        HeadRef         `json:"from_head"`
	To          *HeadRef        `json:"to_head,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      VoucherStatus   `json:"status"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FormatVoucherNo renders the sequential number in its human-readable form.
func FormatVoucherNo(number int64) string {
	return fmt.Sprintf("VCH-%06d", number)
}

// Date is a business calendar date without a time component. It is distinct
// from CreatedAt: filters and ordering compare on Date.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads an ISO-8601 calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format(dateLayout) }

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d falls after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("ledger: invalid date %q", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
