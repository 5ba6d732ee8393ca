package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant represents a registered store operating POS terminals.
type Merchant struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	StoreName    string    `json:"store_name"`
	OwnerName    string    `json:"owner_name"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
