package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog caches the result of a committed payment so that a client
// retry after a lost response replays the stored outcome instead of
// charging the card twice.
type IdempotencyLog struct {
	Key           string    `json:"key"` // Format: "card_uid:reference_id"
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"` // Cached response to return
	CreatedAt     time.Time `json:"created_at"`
}

// BuildPaymentIdempotencyKey constructs the standard key format.
func BuildPaymentIdempotencyKey(cardUID, referenceID string) string {
	return cardUID + ":" + referenceID
}
