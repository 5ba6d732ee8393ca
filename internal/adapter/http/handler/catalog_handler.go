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

// CatalogHandler handles merchant product management endpoints.
type CatalogHandler struct {
	catalogSvc ports.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogSvc ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// Create handles POST /api/v1/products.
func (h *CatalogHandler) Create(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product, err := h.catalogSvc.Create(c.Request.Context(), ports.ProductRequest{
		MerchantID: merchantID.(uuid.UUID),
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		Category:   req.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toProductResponse(product))
}

// Update handles PUT /api/v1/products/:id.
func (h *CatalogHandler) Update(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product, err := h.catalogSvc.Update(c.Request.Context(), productID, ports.ProductRequest{
		MerchantID: merchantID.(uuid.UUID),
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		Category:   req.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProductResponse(product))
}

// Delete handles DELETE /api/v1/products/:id.
func (h *CatalogHandler) Delete(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	if err := h.catalogSvc.Delete(c.Request.Context(), productID, merchantID.(uuid.UUID)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// List handles GET /api/v1/products.
func (h *CatalogHandler) List(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	products, err := h.catalogSvc.List(c.Request.Context(), merchantID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	response.OK(c, items)
}

// Restock handles POST /api/v1/products/:id/restock.
func (h *CatalogHandler) Restock(c *gin.Context) {
	merchantID, ok := c.Get(middleware.CtxMerchantID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	product, err := h.catalogSvc.Restock(c.Request.Context(), productID, merchantID.(uuid.UUID), req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProductResponse(product))
}

// toProductResponse converts domain.Product to DTO.
func toProductResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Category:  p.Category,
		CreatedAt: p.CreatedAt.Format(timeLayout),
		UpdatedAt: p.UpdatedAt.Format(timeLayout),
	}
}
