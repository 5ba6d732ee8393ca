package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// cardUIDPattern matches the token printed on the physical RFID cards
// handed out by the store: "RF" followed by six digits.
var cardUIDPattern = regexp.MustCompile(`^RF\d{6}$`)

// pinPattern matches a 6-digit numeric PIN.
var pinPattern = regexp.MustCompile(`^\d{6}$`)

// Card represents a stored-value RFID card. The balance is kept in the
// smallest currency unit and may only change through the conditional
// debit/credit paths of the card repository.
type Card struct {
	ID         uuid.UUID  `json:"id"`
	CardUID    string     `json:"card_uid"` // Scanned token, unique, immutable once issued
	OwnerName  string     `json:"owner_name"`
	Phone      *string    `json:"phone,omitempty"`
	PINHash    string     `json:"-"` // Argon2id hash, never expose
	Balance    int64      `json:"balance"`
	Active     bool       `json:"is_active"`
	MerchantID *uuid.UUID `json:"merchant_id,omitempty"` // nil for customer self-issued cards
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsUsable returns true if the card may participate in a payment.
// Deactivated cards are rejected regardless of a correct PIN.
func (c *Card) IsUsable() bool {
	return c.Active
}

// ValidCardUID reports whether the scanned token has the issued card format.
func ValidCardUID(uid string) bool {
	return cardUIDPattern.MatchString(uid)
}

// ValidPIN reports whether the presented PIN is exactly six ASCII digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}
