package model

// Audit event type constants
const (
	AuditEventEnrollmentSubmitted = "ENROLLMENT_SUBMITTED"
	AuditEventEnrollmentApproved  = "ENROLLMENT_APPROVED"
	AuditEventEnrollmentRejected  = "ENROLLMENT_REJECTED"
	AuditEventEnrollmentCancelled = "ENROLLMENT_CANCELLED"
	AuditEventEnrollmentExpired   = "ENROLLMENT_EXPIRED"
	AuditEventQuotaUpdated        = "QUOTA_UPDATED"
	AuditEventBreakerOpened       = "BREAKER_OPENED"
	AuditEventBreakerHalfOpen     = "BREAKER_HALF_OPEN"
	AuditEventBreakerClosed       = "BREAKER_CLOSED"
	AuditEventBreakerReset        = "BREAKER_RESET"
)

// AuditEntry is one row of the enrollment audit trail.
// ActorID is empty for system actions (breaker transitions, expiry job).
type AuditEntry struct {
	EventType string
	SubjectID string
	ActorID   string
	Details   map[string]interface{}
}
