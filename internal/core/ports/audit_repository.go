package ports

import (
	"context"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

// AuditRepository persists the append-only security audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditService processes a single audit event off the dispatcher queue.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
