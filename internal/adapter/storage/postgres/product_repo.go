package postgres

import (
	"context"
	"errors"
	"fmt"

	"rfid-pos-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, merchant_id, name, price, stock, category, created_at, updated_at`

// Create inserts a new product into the database.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (id, merchant_id, name, price, stock, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.MerchantID, p.Name, p.Price, p.Stock, p.Category,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID fetches a product by its UUID. Returns nil, nil when absent.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.Price, &p.Stock, &p.Category,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// ListByMerchant fetches a merchant's products, newest first.
func (r *ProductRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE merchant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.MerchantID, &p.Name, &p.Price, &p.Stock, &p.Category,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Update rewrites the editable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $1, price = $2, stock = $3, category = $4, updated_at = $5
		WHERE id = $6 AND merchant_id = $7`

	tag, err := r.pool.Exec(ctx, query,
		p.Name, p.Price, p.Stock, p.Category, p.UpdatedAt,
		p.ID, p.MerchantID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %s", p.ID)
	}
	return nil
}

// Delete removes a product owned by the merchant. Returns false when no
// row matched.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID, merchantID uuid.UUID) (bool, error) {
	query := `DELETE FROM products WHERE id = $1 AND merchant_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, merchantID)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementStock subtracts quantity within a database transaction, guarded
// by "stock >= quantity" so a sale can never drive stock negative. A losing
// concurrent sale matches zero rows and reports ok=false.
func (r *ProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int64) (bool, error) {
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`

	tag, err := tx.Exec(ctx, query, quantity, id)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementStock adds quantity to a product's stock (explicit restock).
// Returns nil, nil when the product does not exist.
func (r *ProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, quantity int64) (*domain.Product, error) {
	query := `UPDATE products SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + productColumns

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, quantity, id).Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.Price, &p.Stock, &p.Category,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}
