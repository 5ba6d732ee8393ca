package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable catalog item. Price is in the smallest currency
// unit; stock is mutated only by the payment engine during a sale or by an
// explicit restock.
type Product struct {
	ID         uuid.UUID `json:"id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"`
	Stock      int64     `json:"stock"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasStock returns true if the product can cover the requested quantity.
func (p *Product) HasStock(quantity int64) bool {
	return p.Stock >= quantity
}
