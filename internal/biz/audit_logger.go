package biz

import (
	"context"

	"CourseLane/internal/model"
)

// AuditLogger records audit events. Implementations must not block the caller.
type AuditLogger interface {
	Record(ctx context.Context, entry *model.AuditEntry)
}

// Notifier publishes enrollment lifecycle events for downstream consumers such as the email service.
type Notifier interface {
	PublishEnrollmentEvent(ctx context.Context, event *model.EnrollmentEvent) error
}
