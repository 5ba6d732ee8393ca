package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the recorded outcome of a payment.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger entry for a completed card payment.
// It is written exactly once, inside the same database transaction that
// debits the card and decrements stock, and never mutated afterwards.
type Transaction struct {
	ID         uuid.UUID         `json:"id"`
	CardID     uuid.UUID         `json:"card_id"`
	CardUID    string            `json:"card_uid"`
	MerchantID *uuid.UUID        `json:"merchant_id,omitempty"`
	Amount     int64             `json:"amount"`
	Status     TransactionStatus `json:"status"`
	Items      []TransactionItem `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TransactionItem captures one cart line as sold: quantity and the unit
// price that was current at processing time, not whatever the client sent.
type TransactionItem struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Quantity      int64     `json:"quantity"`
	UnitPrice     int64     `json:"unit_price"`
}

// Subtotal returns the line total for this item.
func (i *TransactionItem) Subtotal() int64 {
	return i.UnitPrice * i.Quantity
}

// TotalAmount recomputes the transaction amount from its items.
func (t *Transaction) TotalAmount() int64 {
	var total int64
	for i := range t.Items {
		total += t.Items[i].Subtotal()
	}
	return total
}
