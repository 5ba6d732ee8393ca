package service

import (
	"context"
	"fmt"
	"time"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogServiceImpl implements ports.CatalogService. All operations are
// merchant-scoped: a merchant can only see and modify its own products.
type CatalogServiceImpl struct {
	productRepo ports.ProductRepository
	log         zerolog.Logger
}

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(productRepo ports.ProductRepository, log zerolog.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{productRepo: productRepo, log: log}
}

// Create adds a product to the merchant's catalog.
func (s *CatalogServiceImpl) Create(ctx context.Context, req ports.ProductRequest) (*domain.Product, error) {
	if req.Name == "" || req.Price <= 0 || req.Stock < 0 {
		return nil, apperror.Validation("name, positive price and non-negative stock are required")
	}
	if req.Category == "" {
		req.Category = "Lainnya"
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:         uuid.New(),
		MerchantID: req.MerchantID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		Category:   req.Category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create product: %w", err))
	}

	return product, nil
}

// Update edits an existing product owned by the merchant.
func (s *CatalogServiceImpl) Update(ctx context.Context, productID uuid.UUID, req ports.ProductRequest) (*domain.Product, error) {
	if req.Price <= 0 || req.Stock < 0 {
		return nil, apperror.Validation("positive price and non-negative stock are required")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load product: %w", err))
	}
	if product == nil || product.MerchantID != req.MerchantID {
		return nil, apperror.ErrProductNotFound(productID.String())
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	product.Price = req.Price
	product.Stock = req.Stock
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("update product: %w", err))
	}

	return product, nil
}

// Delete removes a product from the merchant's catalog.
func (s *CatalogServiceImpl) Delete(ctx context.Context, productID, merchantID uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, productID, merchantID)
	if err != nil {
		return apperror.ErrStorageUnavailable(fmt.Errorf("delete product: %w", err))
	}
	if !deleted {
		return apperror.ErrProductNotFound(productID.String())
	}
	return nil
}

// List returns the merchant's products.
func (s *CatalogServiceImpl) List(ctx context.Context, merchantID uuid.UUID) ([]domain.Product, error) {
	products, err := s.productRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list products: %w", err))
	}
	return products, nil
}

// Restock adds stock to a product. This is the explicit restock path,
// separate from the payment engine's conditional decrement.
func (s *CatalogServiceImpl) Restock(ctx context.Context, productID, merchantID uuid.UUID, quantity int64) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load product: %w", err))
	}
	if product == nil || product.MerchantID != merchantID {
		return nil, apperror.ErrProductNotFound(productID.String())
	}

	updated, err := s.productRepo.IncrementStock(ctx, productID, quantity)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("restock product: %w", err))
	}
	if updated == nil {
		return nil, apperror.ErrProductNotFound(productID.String())
	}

	s.log.Info().
		Str("product_id", productID.String()).
		Int64("quantity", quantity).
		Int64("stock", updated.Stock).
		Msg("product restocked")

	return updated, nil
}
