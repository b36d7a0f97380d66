package ports

import (
	"context"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// AuditRepository persists the authentication audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService records a single audit event.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink accepts audit events without blocking the request path.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
