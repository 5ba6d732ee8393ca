package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/internal/core/ports/mocks"
	"rfid-pos-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type paymentTestDeps struct {
	svc         *PaymentServiceImpl
	cardRepo    *mocks.MockCardRepository
	productRepo *mocks.MockProductRepository
	txRepo      *mocks.MockTransactionRepository
	idempRepo   *mocks.MockIdempotencyRepository
	idempCache  *mocks.MockIdempotencyCache
	hashSvc     *mocks.MockHashService
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupPaymentService(t *testing.T) *paymentTestDeps {
	ctrl := gomock.NewController(t)
	d := &paymentTestDeps{
		cardRepo:    mocks.NewMockCardRepository(ctrl),
		productRepo: mocks.NewMockProductRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		idempRepo:   mocks.NewMockIdempotencyRepository(ctrl),
		idempCache:  mocks.NewMockIdempotencyCache(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewPaymentService(
		d.cardRepo, d.productRepo, d.txRepo, d.idempRepo,
		d.idempCache, d.hashSvc, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func testCard(balance int64) *domain.Card {
	return &domain.Card{
		ID:        uuid.New(),
		CardUID:   "RF001234",
		OwnerName: "Budi Santoso",
		PINHash:   "$argon2id$hash",
		Balance:   balance,
		Active:    true,
	}
}

func testProduct(merchantID uuid.UUID, price, stock int64) *domain.Product {
	return &domain.Product{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       "Nasi Gudeg Special",
		Price:      price,
		Stock:      stock,
		Category:   "Makanan",
	}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

// ==================== ProcessPayment Tests ====================

func TestPaymentService_ProcessPayment_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 45)
	tx := &mockTx{}

	req := ports.PaymentRequest{
		MerchantID:  merchantID,
		CardUID:     "RF001234",
		PIN:         "123456",
		ReferenceID: "POS-20260831-0001",
		Lines:       []ports.CartLine{{ProductID: product.ID, Quantity: 2}},
	}

	idempKey := domain.BuildPaymentIdempotencyKey("RF001234", "POS-20260831-0001")

	// Redis cache miss, then DB idempotency miss
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	// Card + PIN verification
	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	// Product validation
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	// Atomic mutation phase
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.productRepo.EXPECT().DecrementStock(ctx, tx, product.ID, int64(2)).Return(true, nil)
	d.cardRepo.EXPECT().Debit(ctx, tx, card.ID, int64(36000)).Return(int64(64000), true, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, card.ID, txn.CardID)
			assert.Equal(t, int64(36000), txn.Amount)
			assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
			require.Len(t, txn.Items, 1)
			assert.Equal(t, int64(2), txn.Items[0].Quantity)
			assert.Equal(t, int64(18000), txn.Items[0].UnitPrice)
			return nil
		})
	d.idempRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Best-effort cache write after commit
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "RF001234", result.CardUID)
	assert.Equal(t, int64(36000), result.Amount)
	assert.Equal(t, int64(100000), result.OldBalance)
	assert.Equal(t, int64(64000), result.NewBalance)
}

func TestPaymentService_ProcessPayment_InsufficientFunds(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(10000)
	product := testProduct(merchantID, 18000, 45)

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 1}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "PAY_001", appCode(t, err))
	assert.Contains(t, err.Error(), "Saldo tidak cukup")
}

func TestPaymentService_ProcessPayment_CardNotFound(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	req := ports.PaymentRequest{
		MerchantID: uuid.New(),
		CardUID:    "RF999999",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: uuid.New(), Quantity: 1}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF999999").Return(nil, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "CARD_001", appCode(t, err))
}

func TestPaymentService_ProcessPayment_InactiveCard(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	card := testCard(100000)
	card.Active = false

	req := ports.PaymentRequest{
		MerchantID: uuid.New(),
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: uuid.New(), Quantity: 1}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "CARD_001", appCode(t, err))
}

func TestPaymentService_ProcessPayment_WrongPIN(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	card := testCard(100000)

	req := ports.PaymentRequest{
		MerchantID: uuid.New(),
		CardUID:    "RF001234",
		PIN:        "654321",
		Lines:      []ports.CartLine{{ProductID: uuid.New(), Quantity: 1}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("654321", card.PINHash).Return(false, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "CARD_002", appCode(t, err))
}

func TestPaymentService_ProcessPayment_InsufficientStock(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 1)

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 2}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "ITEM_002", appCode(t, err))
	assert.Contains(t, err.Error(), "Nasi Gudeg Special")
}

func TestPaymentService_ProcessPayment_ProductOfOtherMerchant(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	card := testCard(100000)
	product := testProduct(uuid.New(), 18000, 45)

	req := ports.PaymentRequest{
		MerchantID: uuid.New(), // not the product's merchant
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 1}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "ITEM_001", appCode(t, err))
}

func TestPaymentService_ProcessPayment_EmptyCart(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	req := ports.PaymentRequest{
		MerchantID: uuid.New(),
		CardUID:    "RF001234",
		PIN:        "123456",
	}

	result, err := d.svc.ProcessPayment(context.Background(), req)
	assert.Nil(t, result)
	assert.Equal(t, "PAY_002", appCode(t, err))
}

func TestPaymentService_ProcessPayment_NonPositiveQuantity(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	req := ports.PaymentRequest{
		MerchantID: uuid.New(),
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: uuid.New(), Quantity: 0}},
	}

	result, err := d.svc.ProcessPayment(context.Background(), req)
	assert.Nil(t, result)
	assert.Equal(t, "PAY_002", appCode(t, err))
}

func TestPaymentService_ProcessPayment_DuplicateLinesAreAdditive(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 3)

	// The same product twice (2 + 2 = 4) exceeds stock of 3 even though
	// each line alone would pass.
	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines: []ports.CartLine{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 2},
		},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "ITEM_002", appCode(t, err))
}

func TestPaymentService_ProcessPayment_IdempotentReplayFromCache(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txID := uuid.New()
	cached, _ := json.Marshal(&ports.PaymentResult{
		TransactionID: txID,
		CardUID:       "RF001234",
		Amount:        36000,
		OldBalance:    100000,
		NewBalance:    64000,
	})

	req := ports.PaymentRequest{
		MerchantID:  uuid.New(),
		CardUID:     "RF001234",
		PIN:         "123456",
		ReferenceID: "POS-20260831-0001",
		Lines:       []ports.CartLine{{ProductID: uuid.New(), Quantity: 2}},
	}

	idempKey := domain.BuildPaymentIdempotencyKey("RF001234", "POS-20260831-0001")
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(cached, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, txID, result.TransactionID)
	assert.Equal(t, int64(64000), result.NewBalance)
}

func TestPaymentService_ProcessPayment_IdempotentReplayFromDB(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txID := uuid.New()
	respJSON, _ := json.Marshal(&ports.PaymentResult{
		TransactionID: txID,
		CardUID:       "RF001234",
		Amount:        36000,
		NewBalance:    64000,
	})

	req := ports.PaymentRequest{
		MerchantID:  uuid.New(),
		CardUID:     "RF001234",
		PIN:         "123456",
		ReferenceID: "POS-20260831-0001",
		Lines:       []ports.CartLine{{ProductID: uuid.New(), Quantity: 2}},
	}

	idempKey := domain.BuildPaymentIdempotencyKey("RF001234", "POS-20260831-0001")
	// Redis misses (even errors fall through to the DB layer)
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, errors.New("redis down"))
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(&domain.IdempotencyLog{
		Key:           idempKey,
		TransactionID: txID,
		ResponseJSON:  respJSON,
	}, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, txID, result.TransactionID)
}

func TestPaymentService_ProcessPayment_StockRaceRollsBack(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 2)
	tx := &mockTx{}

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 2}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	// The conditional decrement loses to a concurrent sale.
	d.productRepo.EXPECT().DecrementStock(ctx, tx, product.ID, int64(2)).Return(false, nil)
	// The error re-reads current stock for the message.
	drained := testProduct(merchantID, 18000, 0)
	drained.ID = product.ID
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(drained, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "ITEM_002", appCode(t, err))
	assert.Contains(t, err.Error(), "tersisa: 0")
}

func TestPaymentService_ProcessPayment_DebitRaceRollsBack(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(40000)
	product := testProduct(merchantID, 18000, 45)
	tx := &mockTx{}

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 2}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.productRepo.EXPECT().DecrementStock(ctx, tx, product.ID, int64(2)).Return(true, nil)
	// The conditional debit loses to a concurrent payment.
	d.cardRepo.EXPECT().Debit(ctx, tx, card.ID, int64(36000)).Return(int64(0), false, nil)
	// The error re-reads the committed balance.
	racedCard := testCard(5000)
	racedCard.ID = card.ID
	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(racedCard, nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "PAY_001", appCode(t, err))
	assert.Contains(t, err.Error(), "saldo: 5000")
}

func TestPaymentService_ProcessPayment_LedgerWriteFailureAborts(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 45)
	tx := &mockTx{}

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 2}},
	}

	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.productRepo.EXPECT().DecrementStock(ctx, tx, product.ID, int64(2)).Return(true, nil)
	d.cardRepo.EXPECT().Debit(ctx, tx, card.ID, int64(36000)).Return(int64(64000), true, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(errors.New("db write failed"))

	result, err := d.svc.ProcessPayment(ctx, req)
	assert.Nil(t, result)
	assert.Equal(t, "SYS_001", appCode(t, err))
}

func TestPaymentService_ProcessPayment_NoReferenceIDSkipsIdempotency(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	merchantID := uuid.New()
	card := testCard(100000)
	product := testProduct(merchantID, 18000, 45)
	tx := &mockTx{}

	req := ports.PaymentRequest{
		MerchantID: merchantID,
		CardUID:    "RF001234",
		PIN:        "123456",
		Lines:      []ports.CartLine{{ProductID: product.ID, Quantity: 1}},
	}

	// No idempotency lookups expected at all.
	d.cardRepo.EXPECT().GetByUID(ctx, "RF001234").Return(card, nil)
	d.hashSvc.EXPECT().Verify("123456", card.PINHash).Return(true, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.productRepo.EXPECT().DecrementStock(ctx, tx, product.ID, int64(1)).Return(true, nil)
	d.cardRepo.EXPECT().Debit(ctx, tx, card.ID, int64(18000)).Return(int64(82000), true, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.ProcessPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(82000), result.NewBalance)
}

func TestMergeLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	order, quantities := mergeLines([]ports.CartLine{
		{ProductID: a, Quantity: 1},
		{ProductID: b, Quantity: 2},
		{ProductID: a, Quantity: 3},
	})

	require.Len(t, order, 2)
	assert.Equal(t, a, order[0])
	assert.Equal(t, b, order[1])
	assert.Equal(t, int64(4), quantities[a])
	assert.Equal(t, int64(2), quantities[b])
}
