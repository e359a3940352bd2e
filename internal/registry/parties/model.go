package parties

import (
	"time"

	"github.com/google/uuid"
)

// Party is a counterparty (customer or supplier) referenced by vouchers.
type Party struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
