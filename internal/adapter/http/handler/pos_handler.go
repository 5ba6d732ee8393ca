package handler

import (
	"rfid-pos-gateway/internal/adapter/http/dto"
	"rfid-pos-gateway/internal/adapter/http/middleware"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"
	"rfid-pos-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// POSHandler handles the terminal-facing endpoints: the read-only card
// check and payment processing.
type POSHandler struct {
	paymentSvc ports.PaymentService
	cardSvc    ports.CardService
}

// NewPOSHandler creates a new POSHandler.
func NewPOSHandler(paymentSvc ports.PaymentService, cardSvc ports.CardService) *POSHandler {
	return &POSHandler{paymentSvc: paymentSvc, cardSvc: cardSvc}
}

// VerifyCard handles POST /api/v1/pos/verify. It authenticates the card and
// PIN and returns the owner name and balance without mutating anything.
func (h *POSHandler) VerifyCard(c *gin.Context) {
	var req dto.VerifyCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	display, err := h.cardSvc.Verify(c.Request.Context(), req.CardUID, req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CardResponse{
		CardUID:   display.CardUID,
		OwnerName: display.OwnerName,
		Balance:   display.Balance,
		Active:    true,
	})
}

// ProcessPayment handles POST /api/v1/pos/payments.
func (h *POSHandler) ProcessPayment(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	lines := make([]ports.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid product_id: "+item.ProductID))
			return
		}
		lines = append(lines, ports.CartLine{ProductID: productID, Quantity: item.Quantity})
	}

	result, err := h.paymentSvc.ProcessPayment(c.Request.Context(), ports.PaymentRequest{
		MerchantID:  merchantID.(uuid.UUID),
		CardUID:     req.CardUID,
		PIN:         req.PIN,
		ReferenceID: req.ReferenceID,
		Lines:       lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentResponse{
		TransactionID: result.TransactionID.String(),
		CardUID:       result.CardUID,
		Amount:        result.Amount,
		OldBalance:    result.OldBalance,
		NewBalance:    result.NewBalance,
		CreatedAt:     result.CreatedAt.Format(timeLayout),
	})
}
