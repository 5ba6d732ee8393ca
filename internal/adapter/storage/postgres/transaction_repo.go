package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository over the
// append-only ledger tables (transactions + transaction_items).
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction and its items within a database transaction.
// It runs inside the same transaction that debits the card and decrements
// stock, so the ledger entry appears if and only if the payment commits.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, card_id, card_uid, merchant_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.CardID, t.CardUID, t.MerchantID, t.Amount, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	itemQuery := `INSERT INTO transaction_items (id, transaction_id, product_id, product_name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i := range t.Items {
		item := &t.Items[i]
		_, err := tx.Exec(ctx, itemQuery,
			item.ID, item.TransactionID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}
	return nil
}

// GetByID fetches a transaction with its items.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, card_id, card_uid, merchant_id, amount, status, created_at
		FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.CardID, &t.CardUID, &t.MerchantID, &t.Amount, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}

	items, err := r.loadItems(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

// List fetches ledger entries with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
	args = append(args, params.MerchantID)
	argIdx++

	if params.CardUID != nil {
		conditions = append(conditions, fmt.Sprintf("card_uid = $%d", argIdx))
		args = append(args, *params.CardUID)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	listQuery := fmt.Sprintf(
		`SELECT id, card_id, card_uid, merchant_id, amount, status, created_at
		FROM transactions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1,
	)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.CardID, &t.CardUID, &t.MerchantID, &t.Amount, &t.Status, &t.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}

	for i := range transactions {
		items, err := r.loadItems(ctx, transactions[i].ID)
		if err != nil {
			return nil, 0, err
		}
		transactions[i].Items = items
	}

	return transactions, total, nil
}

// GetStats aggregates completed payments for the merchant dashboard.
func (r *TransactionRepo) GetStats(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*ports.TransactionStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("t.merchant_id = $%d", argIdx))
	args = append(args, merchantID)
	argIdx++
	conditions = append(conditions, "t.status = 'COMPLETED'")

	if from != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at >= $%d", argIdx))
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at <= $%d", argIdx))
		args = append(args, *to)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	stats := &ports.TransactionStats{}

	totalsQuery := `SELECT COUNT(*), COALESCE(SUM(t.amount), 0) FROM transactions t WHERE ` + where
	if err := r.pool.QueryRow(ctx, totalsQuery, args...).Scan(
		&stats.TotalTransactions, &stats.TotalRevenue,
	); err != nil {
		return nil, fmt.Errorf("get transaction totals: %w", err)
	}

	itemsQuery := `SELECT COALESCE(SUM(i.quantity), 0)
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE ` + where
	if err := r.pool.QueryRow(ctx, itemsQuery, args...).Scan(&stats.ItemsSold); err != nil {
		return nil, fmt.Errorf("get items sold: %w", err)
	}

	return stats, nil
}

// loadItems fetches the items of one transaction.
func (r *TransactionRepo) loadItems(ctx context.Context, transactionID uuid.UUID) ([]domain.TransactionItem, error) {
	query := `SELECT id, transaction_id, product_id, product_name, quantity, unit_price
		FROM transaction_items WHERE transaction_id = $1`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	var items []domain.TransactionItem
	for rows.Next() {
		var item domain.TransactionItem
		if err := rows.Scan(
			&item.ID, &item.TransactionID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction items: %w", err)
	}
	return items, nil
}
