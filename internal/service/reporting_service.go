package service

import (
	"context"
	"fmt"
	"time"

	"rfid-pos-gateway/internal/core/domain"
	"rfid-pos-gateway/internal/core/ports"
	"rfid-pos-gateway/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService over the ledger.
type ReportingServiceImpl struct {
	txRepo ports.TransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{txRepo: txRepo}
}

// ListTransactions returns ledger entries with filtering and pagination.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	transactions, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrStorageUnavailable(fmt.Errorf("list transactions: %w", err))
	}
	return transactions, total, nil
}

// GetStats returns aggregated revenue figures for the merchant dashboard.
func (s *ReportingServiceImpl) GetStats(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*ports.TransactionStats, error) {
	stats, err := s.txRepo.GetStats(ctx, merchantID, from, to)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("get stats: %w", err))
	}
	return stats, nil
}
