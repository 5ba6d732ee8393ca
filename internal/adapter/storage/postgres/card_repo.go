package postgres

import (
	"context"
	"errors"
	"fmt"

	"rfid-pos-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CardRepo implements ports.CardRepository.
type CardRepo struct {
	pool Pool
}

// NewCardRepo creates a new CardRepo.
func NewCardRepo(pool Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

const cardColumns = `id, card_uid, owner_name, phone, pin_hash, balance, is_active, merchant_id, created_at, updated_at`

// Create inserts a new card into the database.
func (r *CardRepo) Create(ctx context.Context, c *domain.Card) error {
	query := `INSERT INTO cards (id, card_uid, owner_name, phone, pin_hash, balance, is_active, merchant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.CardUID, c.OwnerName, c.Phone, c.PINHash,
		c.Balance, c.Active, c.MerchantID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// GetByUID fetches a card by its scanned token. Returns nil, nil when the
// card is not registered.
func (r *CardRepo) GetByUID(ctx context.Context, cardUID string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_uid = $1`

	c := &domain.Card{}
	err := r.pool.QueryRow(ctx, query, cardUID).Scan(
		&c.ID, &c.CardUID, &c.OwnerName, &c.Phone, &c.PINHash,
		&c.Balance, &c.Active, &c.MerchantID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card by uid: %w", err)
	}
	return c, nil
}

// ListByMerchant fetches all cards issued by a merchant, newest first.
func (r *CardRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(
			&c.ID, &c.CardUID, &c.OwnerName, &c.Phone, &c.PINHash,
			&c.Balance, &c.Active, &c.MerchantID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// Debit subtracts amount from the card balance within a database
// transaction. The "balance >= amount" guard is the storage-level invariant
// that keeps balances non-negative under concurrent debits: a losing racer
// matches zero rows instead of overdrawing.
func (r *CardRepo) Debit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, bool, error) {
	query := `UPDATE cards SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance`

	var newBalance int64
	err := tx.QueryRow(ctx, query, amount, id).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("debit card: %w", err)
	}
	return newBalance, true, nil
}

// Credit adds amount to the card balance (top-up path).
func (r *CardRepo) Credit(ctx context.Context, id uuid.UUID, amount int64) (int64, bool, error) {
	query := `UPDATE cards SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance`

	var newBalance int64
	err := r.pool.QueryRow(ctx, query, amount, id).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("credit card: %w", err)
	}
	return newBalance, true, nil
}

// SetActive toggles the card's active flag and returns the updated card.
// Returns nil, nil when no card matches.
func (r *CardRepo) SetActive(ctx context.Context, cardUID string, active bool) (*domain.Card, error) {
	query := `UPDATE cards SET is_active = $1, updated_at = NOW()
		WHERE card_uid = $2
		RETURNING ` + cardColumns

	c := &domain.Card{}
	err := r.pool.QueryRow(ctx, query, active, cardUID).Scan(
		&c.ID, &c.CardUID, &c.OwnerName, &c.Phone, &c.PINHash,
		&c.Balance, &c.Active, &c.MerchantID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("set card active: %w", err)
	}
	return c, nil
}
