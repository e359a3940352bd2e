package heads

import (
	"time"

	"github.com/google/uuid"
)

// Kind groups account heads into the four ledger buckets.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindBank    Kind = "bank"
	KindOthers  Kind = "others"
)

// Valid reports whether the kind is one of the known buckets.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindBank, KindOthers:
		return true
	}
	return false
}

// Head is a named account bucket against which money flows are recorded.
type Head struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
