package ports

import (
	"context"
	"time"

	"rfid-pos-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CardRepository defines persistence operations for stored-value cards.
// Balance never changes through a read-modify-write cycle: Debit and Credit
// are the only mutation paths and both are single conditional updates, so a
// debit can never drive the balance negative even under concurrent attempts.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByUID(ctx context.Context, cardUID string) (*domain.Card, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Card, error)
	// Debit subtracts amount inside the given database transaction, guarded
	// by "balance >= amount". ok is false when the guard rejected the update
	// (the card row exists but funds were insufficient at commit time).
	Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, ok bool, err error)
	// Credit adds amount to the card balance. ok is false if no row matched.
	Credit(ctx context.Context, id uuid.UUID, amount int64) (newBalance int64, ok bool, err error)
	SetActive(ctx context.Context, cardUID string, active bool) (*domain.Card, error)
}

// ProductRepository defines persistence operations for catalog items.
// DecrementStock mirrors CardRepository.Debit: a single conditional update
// guarded by "stock >= quantity" so stock never goes negative.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID, merchantID uuid.UUID) (bool, error)
	// DecrementStock runs inside the payment's database transaction. ok is
	// false when the stock guard rejected the update.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int64) (ok bool, err error)
	// IncrementStock is the explicit restock path, outside the payment flow.
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int64) (*domain.Product, error)
}

// TransactionRepository defines persistence for the append-only payment ledger.
type TransactionRepository interface {
	// Create inserts the transaction and its items within a database
	// transaction. Ledger rows are never updated afterwards.
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing ledger entries.
type TransactionListParams struct {
	MerchantID uuid.UUID
	CardUID    *string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// TransactionStats holds aggregated revenue figures for the dashboard.
type TransactionStats struct {
	TotalTransactions int64
	TotalRevenue      int64
	ItemsSold         int64
}

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
}

// IdempotencyRepository defines persistence for idempotency logs (DB layer).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
