package handler

import (
	"math"
	"strconv"
	"time"

	"rfid-pos-gateway/internal/adapter/http/dto"
	"rfid-pos-gateway/internal/adapter/http/middleware"
	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"
	"rfid-pos-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler handles dashboard and transaction history endpoints.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	from := parseTimeQuery(c, "from")
	to := parseTimeQuery(c, "to")

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), merchantID.(uuid.UUID), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		TotalRevenue:      stats.TotalRevenue,
		ItemsSold:         stats.ItemsSold,
	})
}

// ListTransactions handles GET /api/v1/transactions.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	params := ports.TransactionListParams{
		MerchantID: merchantID.(uuid.UUID),
		Page:       page,
		PageSize:   pageSize,
		From:       parseTimeQuery(c, "from"),
		To:         parseTimeQuery(c, "to"),
	}

	if uid := c.Query("card_uid"); uid != "" {
		params.CardUID = &uid
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// parseTimeQuery reads an RFC 3339 timestamp query parameter, nil if absent
// or malformed.
func parseTimeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	items := make([]dto.TransactionItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, dto.TransactionItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return dto.TransactionResponse{
		ID:        t.ID.String(),
		CardUID:   t.CardUID,
		Amount:    t.Amount,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.Format(timeLayout),
		Items:     items,
	}
}
