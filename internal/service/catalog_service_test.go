package service

import (
	"context"
	"testing"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type catalogTestDeps struct {
	svc         *CatalogServiceImpl
	productRepo *mocks.MockProductRepository
	ctrl        *gomock.Controller
}

func setupCatalogService(t *testing.T) *catalogTestDeps {
	ctrl := gomock.NewController(t)
	d := &catalogTestDeps{
		productRepo: mocks.NewMockProductRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewCatalogService(d.productRepo, zerolog.Nop())
	return d
}

func TestCatalogService_Create_Success(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()

	d.productRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Product) error {
			assert.Equal(t, merchantID, p.MerchantID)
			assert.Equal(t, "Es Teh Manis", p.Name)
			assert.Equal(t, int64(5000), p.Price)
			return nil
		})

	product, err := d.svc.Create(ctx, ports.ProductRequest{
		MerchantID: merchantID,
		Name:       "Es Teh Manis",
		Price:      5000,
		Stock:      100,
		Category:   "Minuman",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), product.Stock)
	assert.Equal(t, "Minuman", product.Category)
}

func TestCatalogService_Create_DefaultCategory(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.productRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	product, err := d.svc.Create(ctx, ports.ProductRequest{
		MerchantID: uuid.New(),
		Name:       "Kerupuk",
		Price:      2000,
		Stock:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lainnya", product.Category)
}

func TestCatalogService_Create_Validation(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	cases := []ports.ProductRequest{
		{Name: "", Price: 5000, Stock: 1},
		{Name: "Es Teh", Price: 0, Stock: 1},
		{Name: "Es Teh", Price: -1, Stock: 1},
		{Name: "Es Teh", Price: 5000, Stock: -1},
	}
	for _, req := range cases {
		req.MerchantID = uuid.New()
		product, err := d.svc.Create(context.Background(), req)
		assert.Nil(t, product)
		assert.Equal(t, "PAY_002", appCode(t, err))
	}
}

func TestCatalogService_Update_Success(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	product := testProduct(merchantID, 18000, 45)

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.productRepo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Product) error {
			assert.Equal(t, int64(20000), p.Price)
			assert.Equal(t, int64(30), p.Stock)
			return nil
		})

	updated, err := d.svc.Update(ctx, product.ID, ports.ProductRequest{
		MerchantID: merchantID,
		Price:      20000,
		Stock:      30,
	})
	require.NoError(t, err)
	// Empty name keeps the existing one.
	assert.Equal(t, "Nasi Gudeg Special", updated.Name)
}

func TestCatalogService_Update_OtherMerchant(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	product := testProduct(uuid.New(), 18000, 45)

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	updated, err := d.svc.Update(ctx, product.ID, ports.ProductRequest{
		MerchantID: uuid.New(),
		Price:      20000,
		Stock:      30,
	})
	assert.Nil(t, updated)
	assert.Equal(t, "ITEM_001", appCode(t, err))
}

func TestCatalogService_Delete_NotFound(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	productID, merchantID := uuid.New(), uuid.New()

	d.productRepo.EXPECT().Delete(ctx, productID, merchantID).Return(false, nil)

	err := d.svc.Delete(ctx, productID, merchantID)
	assert.Equal(t, "ITEM_001", appCode(t, err))
}

func TestCatalogService_Restock_Success(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	product := testProduct(merchantID, 18000, 5)
	restocked := testProduct(merchantID, 18000, 25)
	restocked.ID = product.ID

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.productRepo.EXPECT().IncrementStock(ctx, product.ID, int64(20)).Return(restocked, nil)

	updated, err := d.svc.Restock(ctx, product.ID, merchantID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.Stock)
}

func TestCatalogService_Restock_NonPositiveQuantity(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	updated, err := d.svc.Restock(context.Background(), uuid.New(), uuid.New(), 0)
	assert.Nil(t, updated)
	assert.Equal(t, "PAY_002", appCode(t, err))
}

func TestCatalogService_List(t *testing.T) {
	d := setupCatalogService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	d.productRepo.EXPECT().ListByMerchant(ctx, merchantID).Return([]domain.Product{
		*testProduct(merchantID, 18000, 45),
		*testProduct(merchantID, 5000, 100),
	}, nil)

	products, err := d.svc.List(ctx, merchantID)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
