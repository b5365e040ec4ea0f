package model

import "time"

// Notification event types published for the email service
const (
	NotificationEnrollmentSubmitted = "enrollment.submitted"
	NotificationEnrollmentApproved  = "enrollment.approved"
	NotificationEnrollmentRejected  = "enrollment.rejected"
	NotificationEnrollmentCancelled = "enrollment.cancelled"
)

// EnrollmentEvent is the payload of an enrollment notification.
type EnrollmentEvent struct {
	Type         string    `json:"type"`
	EnrollmentID string    `json:"enrollmentId"`
	UserID       string    `json:"userId"`
	CourseID     string    `json:"courseId"`
	PackageType  string    `json:"packageType"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurredAt"`
}
