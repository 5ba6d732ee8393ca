package ports

import (
	"context"

	"rfid-pos-gateway/internal/core/domain"
)

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// AuditService records audited actions. Implementations must not block the
// caller; persistence failures are logged, never surfaced.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
