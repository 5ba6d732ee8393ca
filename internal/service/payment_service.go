package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// PaymentServiceImpl implements ports.PaymentService.
//
// A payment runs in two phases. Verification (card, PIN, products, stock,
// balance) performs reads only, so every failure up to that point leaves the
// system provably unchanged. The mutation phase is a single database
// transaction of conditional updates: each stock decrement is guarded by
// "stock >= quantity" and the balance debit by "balance >= amount", so two
// payments racing on the same card or item serialize on the guards rather
// than on an application-level lock.
type PaymentServiceImpl struct {
	cardRepo    ports.CardRepository
	productRepo ports.ProductRepository
	txRepo      ports.TransactionRepository
	idempRepo   ports.IdempotencyRepository
	idempCache  ports.IdempotencyCache
	hashSvc     ports.HashService
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	cardRepo ports.CardRepository,
	productRepo ports.ProductRepository,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	hashSvc ports.HashService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		cardRepo:    cardRepo,
		productRepo: productRepo,
		txRepo:      txRepo,
		idempRepo:   idempRepo,
		idempCache:  idempCache,
		hashSvc:     hashSvc,
		transactor:  transactor,
		log:         log,
	}
}

// mergedLine is a cart line after duplicate product IDs have been folded
// together, with the product as read at processing time.
type mergedLine struct {
	product  *domain.Product
	quantity int64
}

// ProcessPayment implements the card payment algorithm.
func (s *PaymentServiceImpl) ProcessPayment(ctx context.Context, req ports.PaymentRequest) (*ports.PaymentResult, error) {
	if req.CardUID == "" {
		return nil, apperror.ErrInvalidCardUID()
	}
	if !domain.ValidPIN(req.PIN) {
		return nil, apperror.ErrInvalidPin()
	}
	if len(req.Lines) == 0 {
		return nil, apperror.ErrEmptyCart()
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.ErrInvalidAmount()
		}
	}

	// Duplicate product IDs in one cart are additive: stock is checked and
	// decremented against the summed quantity, never per stale line.
	order, quantities := mergeLines(req.Lines)

	var idempKey string
	if req.ReferenceID != "" {
		idempKey = domain.BuildPaymentIdempotencyKey(req.CardUID, req.ReferenceID)

		// Layer 1: Redis idempotency check
		cached, err := s.idempCache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
		}
		if cached != nil {
			return s.unmarshalCachedResult(cached)
		}

		// Layer 2: DB idempotency check
		idempLog, err := s.idempRepo.Get(ctx, idempKey)
		if err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("db idempotency check: %w", err))
		}
		if idempLog != nil {
			return s.unmarshalCachedResult(idempLog.ResponseJSON)
		}
	}

	// Verify card + PIN
	card, err := s.cardRepo.GetByUID(ctx, req.CardUID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load card: %w", err))
	}
	if card == nil || !card.IsUsable() {
		return nil, apperror.ErrCardInvalid()
	}

	pinOK, err := s.hashSvc.Verify(req.PIN, card.PINHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}
	if !pinOK {
		return nil, apperror.ErrPinIncorrect()
	}

	// Load products, check stock, compute the charge from prices read now.
	// The whole cart fails on the first missing or under-stocked item.
	lines := make([]mergedLine, 0, len(order))
	var total int64
	for _, productID := range order {
		quantity := quantities[productID]

		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load product: %w", err))
		}
		if product == nil || product.MerchantID != req.MerchantID {
			return nil, apperror.ErrProductNotFound(productID.String())
		}
		if !product.HasStock(quantity) {
			return nil, apperror.ErrInsufficientStock(product.Name, product.Stock)
		}

		lines = append(lines, mergedLine{product: product, quantity: quantity})
		total += product.Price * quantity
	}
	if total <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if card.Balance < total {
		return nil, apperror.ErrInsufficientFunds(card.Balance, total)
	}

	// Mutation phase: all or nothing.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	for _, line := range lines {
		ok, err := s.productRepo.DecrementStock(ctx, dbTx, line.product.ID, line.quantity)
		if err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("decrement stock: %w", err))
		}
		if !ok {
			// A concurrent sale won the stock between validation and here.
			// The rollback undoes every decrement already applied.
			return nil, s.stockRaceError(ctx, line.product)
		}
	}

	newBalance, ok, err := s.cardRepo.Debit(ctx, dbTx, card.ID, total)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("debit card: %w", err))
	}
	if !ok {
		// A concurrent payment won the balance. Report the funds error with
		// the balance as currently committed.
		return nil, s.fundsRaceError(ctx, req.CardUID, card.Balance, total)
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:         uuid.New(),
		CardID:     card.ID,
		CardUID:    card.CardUID,
		MerchantID: &req.MerchantID,
		Amount:     total,
		Status:     domain.TransactionStatusCompleted,
		CreatedAt:  now,
	}
	for _, line := range lines {
		txn.Items = append(txn.Items, domain.TransactionItem{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			ProductID:     line.product.ID,
			ProductName:   line.product.Name,
			Quantity:      line.quantity,
			UnitPrice:     line.product.Price,
		})
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create transaction: %w", err))
	}

	result := &ports.PaymentResult{
		TransactionID: txn.ID,
		CardUID:       card.CardUID,
		Amount:        total,
		OldBalance:    newBalance + total,
		NewBalance:    newBalance,
		CreatedAt:     now,
	}

	respJSON, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}

	if idempKey != "" {
		idempLogEntry := &domain.IdempotencyLog{
			Key:           idempKey,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     now,
		}
		if err := s.idempRepo.Create(ctx, dbTx, idempLogEntry); err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("save idempotency log: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	if idempKey != "" {
		if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
		}
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("card_uid", card.CardUID).
		Int64("amount", total).
		Int64("new_balance", newBalance).
		Int("items", len(txn.Items)).
		Msg("payment processed successfully")

	return result, nil
}

// mergeLines folds duplicate product IDs into summed quantities while
// preserving first-seen order.
func mergeLines(lines []ports.CartLine) ([]uuid.UUID, map[uuid.UUID]int64) {
	order := make([]uuid.UUID, 0, len(lines))
	quantities := make(map[uuid.UUID]int64, len(lines))
	for _, line := range lines {
		if _, seen := quantities[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	return order, quantities
}

// stockRaceError re-reads the product to report the stock that is actually
// available after losing a concurrent decrement.
func (s *PaymentServiceImpl) stockRaceError(ctx context.Context, product *domain.Product) error {
	current, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil || current == nil {
		return apperror.ErrInsufficientStock(product.Name, 0)
	}
	return apperror.ErrInsufficientStock(current.Name, current.Stock)
}

// fundsRaceError re-reads the card to report the committed balance after
// losing a concurrent debit.
func (s *PaymentServiceImpl) fundsRaceError(ctx context.Context, cardUID string, fallbackBalance, required int64) error {
	current, err := s.cardRepo.GetByUID(ctx, cardUID)
	if err != nil || current == nil {
		return apperror.ErrInsufficientFunds(fallbackBalance, required)
	}
	return apperror.ErrInsufficientFunds(current.Balance, required)
}

// unmarshalCachedResult deserializes a cached payment result.
func (s *PaymentServiceImpl) unmarshalCachedResult(data []byte) (*ports.PaymentResult, error) {
	result := &ports.PaymentResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	return result, nil
}
