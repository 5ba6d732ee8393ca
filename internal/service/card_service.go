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

// CardServiceImpl implements ports.CardService.
type CardServiceImpl struct {
	cardRepo ports.CardRepository
	hashSvc  ports.HashService
	log      zerolog.Logger
}

// NewCardService creates a new CardServiceImpl.
func NewCardService(cardRepo ports.CardRepository, hashSvc ports.HashService, log zerolog.Logger) *CardServiceImpl {
	return &CardServiceImpl{cardRepo: cardRepo, hashSvc: hashSvc, log: log}
}

// Register issues a new stored-value card. The raw PIN is hashed before
// anything touches storage and is never persisted or logged.
func (s *CardServiceImpl) Register(ctx context.Context, req ports.RegisterCardRequest) (*domain.Card, error) {
	if !domain.ValidCardUID(req.CardUID) {
		return nil, apperror.ErrInvalidCardUID()
	}
	if !domain.ValidPIN(req.PIN) {
		return nil, apperror.ErrInvalidPin()
	}
	if req.InitialBalance < 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.OwnerName == "" {
		req.OwnerName = "Pemilik Kartu"
	}

	existing, err := s.cardRepo.GetByUID(ctx, req.CardUID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("check card uid: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrCardExists()
	}

	pinHash, err := s.hashSvc.Hash(req.PIN)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash pin: %w", err))
	}

	now := time.Now().UTC()
	card := &domain.Card{
		ID:         uuid.New(),
		CardUID:    req.CardUID,
		OwnerName:  req.OwnerName,
		Phone:      req.Phone,
		PINHash:    pinHash,
		Balance:    req.InitialBalance,
		Active:     true,
		MerchantID: req.MerchantID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create card: %w", err))
	}

	s.log.Info().
		Str("card_uid", card.CardUID).
		Int64("initial_balance", card.Balance).
		Bool("merchant_issued", card.MerchantID != nil).
		Msg("card registered")

	return card, nil
}

// Verify is the read-only identity check used before showing the
// "ready to pay" screen. It mutates nothing.
func (s *CardServiceImpl) Verify(ctx context.Context, cardUID, pin string) (*ports.CardDisplay, error) {
	if cardUID == "" {
		return nil, apperror.ErrInvalidCardUID()
	}
	if !domain.ValidPIN(pin) {
		return nil, apperror.ErrInvalidPin()
	}

	card, err := s.cardRepo.GetByUID(ctx, cardUID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load card: %w", err))
	}
	if card == nil || !card.IsUsable() {
		return nil, apperror.ErrCardInvalid()
	}

	pinOK, err := s.hashSvc.Verify(pin, card.PINHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}
	if !pinOK {
		return nil, apperror.ErrPinIncorrect()
	}

	return &ports.CardDisplay{
		CardUID:   card.CardUID,
		OwnerName: card.OwnerName,
		Balance:   card.Balance,
	}, nil
}

// TopUp credits the card balance through the conditional credit path. The
// PIN is verified when the terminal supplies one (in-store top-ups by the
// cashier may omit it, matching how the hardware flow works). Cards issued
// by another merchant are reported as not found.
func (s *CardServiceImpl) TopUp(ctx context.Context, req ports.TopUpRequest) (*ports.TopUpResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	card, err := s.cardRepo.GetByUID(ctx, req.CardUID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load card: %w", err))
	}
	if card == nil || !card.IsUsable() {
		return nil, apperror.ErrCardInvalid()
	}
	if !cardServiceableBy(card, req.MerchantID) {
		return nil, apperror.ErrCardInvalid()
	}

	if req.PIN != "" {
		pinOK, err := s.hashSvc.Verify(req.PIN, card.PINHash)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("verify pin: %w", err))
		}
		if !pinOK {
			return nil, apperror.ErrPinIncorrect()
		}
	}

	newBalance, ok, err := s.cardRepo.Credit(ctx, card.ID, req.Amount)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("credit card: %w", err))
	}
	if !ok {
		return nil, apperror.ErrCardInvalid()
	}

	s.log.Info().
		Str("card_uid", card.CardUID).
		Int64("amount", req.Amount).
		Int64("new_balance", newBalance).
		Msg("top up processed")

	return &ports.TopUpResult{
		CardUID:    card.CardUID,
		OwnerName:  card.OwnerName,
		Amount:     req.Amount,
		OldBalance: newBalance - req.Amount,
		NewBalance: newBalance,
	}, nil
}

// SetActive toggles a card's active flag. Only the issuing merchant may
// toggle an issued card; self-issued cards can be serviced by any merchant
// so a lost card can be blocked at the counter where it is reported.
func (s *CardServiceImpl) SetActive(ctx context.Context, merchantID uuid.UUID, cardUID string, active bool) (*domain.Card, error) {
	card, err := s.cardRepo.GetByUID(ctx, cardUID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("load card: %w", err))
	}
	if card == nil || !cardServiceableBy(card, merchantID) {
		return nil, apperror.ErrCardInvalid()
	}

	card, err = s.cardRepo.SetActive(ctx, cardUID, active)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("set card active: %w", err))
	}
	if card == nil {
		return nil, apperror.ErrCardInvalid()
	}

	s.log.Info().
		Str("card_uid", cardUID).
		Bool("active", active).
		Msg("card status updated")

	return card, nil
}

// cardServiceableBy reports whether a merchant session may manage a card.
// Issued cards belong to their issuer; self-issued cards have no owner and
// any merchant may service them.
func cardServiceableBy(card *domain.Card, merchantID uuid.UUID) bool {
	return card.MerchantID == nil || *card.MerchantID == merchantID
}

// List returns the cards issued by a merchant.
func (s *CardServiceImpl) List(ctx context.Context, merchantID uuid.UUID) ([]domain.Card, error) {
	cards, err := s.cardRepo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list cards: %w", err))
	}
	return cards, nil
}
