package handler

import (
	"rfid-pos-gateway/internal/adapter/http/dto"
	"rfid-pos-gateway/internal/adapter/http/middleware"
	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"
	"rfid-pos-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CardHandler handles card lifecycle endpoints.
type CardHandler struct {
	cardSvc ports.CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardSvc ports.CardService) *CardHandler {
	return &CardHandler{cardSvc: cardSvc}
}

// Register handles POST /api/v1/cards/register. The endpoint is public so
// cards can be issued at a kiosk; when a merchant session is present the
// card is linked to that merchant.
func (h *CardHandler) Register(c *gin.Context) {
	var req dto.RegisterCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var merchantID *uuid.UUID
	if mid, ok := c.Get(middleware.CtxMerchantID); ok {
		if id, ok := mid.(uuid.UUID); ok {
			merchantID = &id
		}
	}

	card, err := h.cardSvc.Register(c.Request.Context(), ports.RegisterCardRequest{
		CardUID:        req.CardUID,
		OwnerName:      req.OwnerName,
		Phone:          req.Phone,
		PIN:            req.PIN,
		InitialBalance: req.InitialBalance,
		MerchantID:     merchantID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toCardResponse(card))
}

// TopUp handles POST /api/v1/cards/topup. Top-ups are taken at the counter,
// so a merchant session is required.
func (h *CardHandler) TopUp(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.cardSvc.TopUp(c.Request.Context(), ports.TopUpRequest{
		MerchantID: merchantID.(uuid.UUID),
		CardUID:    req.CardUID,
		Amount:     req.Amount,
		PIN:        req.PIN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TopUpResponse{
		CardUID:    result.CardUID,
		OwnerName:  result.OwnerName,
		Amount:     result.Amount,
		OldBalance: result.OldBalance,
		NewBalance: result.NewBalance,
	})
}

// SetActive handles PATCH /api/v1/cards/:card_uid/status.
func (h *CardHandler) SetActive(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	cardUID := c.Param("card_uid")

	var req dto.SetCardActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	card, err := h.cardSvc.SetActive(c.Request.Context(), merchantID.(uuid.UUID), cardUID, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toCardResponse(card))
}

// List handles GET /api/v1/cards for the merchant dashboard.
func (h *CardHandler) List(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	cards, err := h.cardSvc.List(c.Request.Context(), merchantID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CardResponse, 0, len(cards))
	for i := range cards {
		items = append(items, toCardResponse(&cards[i]))
	}
	response.OK(c, items)
}

// toCardResponse converts domain.Card to DTO. The PIN hash never leaves
// the service boundary.
func toCardResponse(card *domain.Card) dto.CardResponse {
	return dto.CardResponse{
		CardUID:   card.CardUID,
		OwnerName: card.OwnerName,
		Balance:   card.Balance,
		Active:    card.Active,
		CreatedAt: card.CreatedAt.Format(timeLayout),
	}
}
