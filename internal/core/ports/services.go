package ports

import (
	"context"
	"time"

	"rfid-pos-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles PIN and password hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT token operations for merchant dashboard sessions.
type TokenService interface {
	Generate(merchantID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	MerchantID uuid.UUID
	Email      string
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// PaymentService is the stored-value payment engine. A payment verifies the
// card and PIN, validates the cart against current stock and prices, and
// applies stock decrements, the balance debit and the ledger write as one
// atomic unit.
type PaymentService interface {
	ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// CartLine is one (product, quantity) pair in a payment request. Unit price
// is deliberately absent: the engine re-reads prices at processing time.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// PaymentRequest holds validated input for payment processing.
type PaymentRequest struct {
	MerchantID  uuid.UUID
	CardUID     string
	PIN         string
	ReferenceID string // optional idempotency key supplied by the terminal
	Lines       []CartLine
}

// PaymentResult is the success variant returned to the POS terminal.
type PaymentResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	CardUID       string    `json:"card_uid"`
	Amount        int64     `json:"amount"`
	OldBalance    int64     `json:"old_balance"`
	NewBalance    int64     `json:"new_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// CardService covers the card lifecycle around the engine: registration,
// the read-only pre-payment check, top-ups and activation toggling.
type CardService interface {
	Register(ctx context.Context, req RegisterCardRequest) (*domain.Card, error)
	// Verify is the read-only identity check shown before the "ready to pay"
	// screen. It must not mutate any state.
	Verify(ctx context.Context, cardUID, pin string) (*CardDisplay, error)
	TopUp(ctx context.Context, req TopUpRequest) (*TopUpResult, error)
	SetActive(ctx context.Context, merchantID uuid.UUID, cardUID string, active bool) (*domain.Card, error)
	List(ctx context.Context, merchantID uuid.UUID) ([]domain.Card, error)
}

// RegisterCardRequest holds input for card registration.
type RegisterCardRequest struct {
	CardUID        string
	OwnerName      string
	Phone          *string
	PIN            string
	InitialBalance int64
	MerchantID     *uuid.UUID // nil for customer self-issued cards
}

// CardDisplay is the read-only projection shown on the POS terminal.
type CardDisplay struct {
	CardUID   string `json:"card_uid"`
	OwnerName string `json:"owner_name"`
	Balance   int64  `json:"balance"`
}

// TopUpRequest holds input for a balance top-up. MerchantID identifies the
// merchant session performing the top-up; cards issued by another merchant
// are rejected.
type TopUpRequest struct {
	MerchantID uuid.UUID
	CardUID    string
	Amount     int64
	PIN        string // optional; verified when supplied
}

// TopUpResult reports the balance movement of a top-up.
type TopUpResult struct {
	CardUID    string `json:"card_uid"`
	OwnerName  string `json:"owner_name"`
	Amount     int64  `json:"amount"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
}

// AuthService defines merchant authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req MerchantRegisterRequest) (*domain.Merchant, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// MerchantRegisterRequest holds input for merchant registration.
type MerchantRegisterRequest struct {
	Email     string
	Password  string
	StoreName string
	OwnerName string
	Phone     *string
	Address   *string
}

// CatalogService defines merchant-scoped product management.
type CatalogService interface {
	Create(ctx context.Context, req ProductRequest) (*domain.Product, error)
	Update(ctx context.Context, productID uuid.UUID, req ProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, productID, merchantID uuid.UUID) error
	List(ctx context.Context, merchantID uuid.UUID) ([]domain.Product, error)
	Restock(ctx context.Context, productID, merchantID uuid.UUID, quantity int64) (*domain.Product, error)
}

// ProductRequest holds validated input for product create/update.
type ProductRequest struct {
	MerchantID uuid.UUID
	Name       string
	Price      int64
	Stock      int64
	Category   string
}

// ReportingService defines dashboard/reporting business logic.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*TransactionStats, error)
}
