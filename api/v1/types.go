// Package v1 holds the CourseLane v1 API: request and reply messages, HTTP route
// registration and the gRPC enrollment status service.
package v1

import "time"

// CreateCourseRequest creates a course.
type CreateCourseRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Level       string `json:"level"`
	Quota       int32  `json:"quota"`
	EntryQuota  int32  `json:"entryQuota"`
	BundleQuota int32  `json:"bundleQuota"`
}

// GetCourseRequest addresses one course.
type GetCourseRequest struct {
	CourseID string `json:"courseId"`
}

// UpdateCourseQuotaRequest replaces the quotas of a course.
type UpdateCourseQuotaRequest struct {
	CourseID    string `json:"courseId"`
	Quota       int32  `json:"quota"`
	EntryQuota  int32  `json:"entryQuota"`
	BundleQuota int32  `json:"bundleQuota"`
}

// Course is a course with its quotas.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Quota       int32     `json:"quota"`
	EntryQuota  int32     `json:"entryQuota"`
	BundleQuota int32     `json:"bundleQuota"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetAvailabilityRequest asks for the seats left in a course.
type GetAvailabilityRequest struct {
	CourseID string `json:"courseId"`
}

// Availability is the number of seats left per bucket.
type Availability struct {
	CourseID                   string `json:"courseId"`
	EntryIntermediateAvailable int64  `json:"entryIntermediateAvailable"`
	BundleAvailable            int64  `json:"bundleAvailable"`
}

// SubmitEnrollmentRequest submits an enrollment/payment record.
type SubmitEnrollmentRequest struct {
	UserID      string `json:"userId,omitempty"`
	CourseID    string `json:"courseId"`
	PackageID   string `json:"packageId,omitempty"`
	PackageType string `json:"packageType"`
	Amount      int64  `json:"amount"`
	PaymentRef  string `json:"paymentRef,omitempty"`
}

// EnrollmentIDRequest addresses one enrollment.
type EnrollmentIDRequest struct {
	ID string `json:"id"`
}

// Enrollment is an enrollment/payment record.
type Enrollment struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CourseID    string     `json:"courseId"`
	PackageID   string     `json:"packageId,omitempty"`
	PackageType string     `json:"packageType"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	PaymentRef  string     `json:"paymentRef,omitempty"`
	ApprovedBy  string     `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// GetEnrollmentStatusRequest asks whether a user is enrolled in a course.
// UserID defaults to the caller.
type GetEnrollmentStatusRequest struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId,omitempty"`
}

// EnrollmentStatus answers GetEnrollmentStatusRequest.
type EnrollmentStatus struct {
	UserID     string `json:"userId"`
	CourseID   string `json:"courseId"`
	IsEnrolled bool   `json:"isEnrolled"`
}

// UserCourse is one pair of a batch status lookup.
type UserCourse struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}

// BatchEnrollmentStatusRequest asks for the status of many pairs at once.
type BatchEnrollmentStatusRequest struct {
	Pairs []UserCourse `json:"pairs"`
}

// BatchEnrollmentStatusReply lists the answers in request order.
type BatchEnrollmentStatusReply struct {
	Results []*EnrollmentStatus `json:"results"`
}

// ListMaterialsRequest lists the materials of a course.
type ListMaterialsRequest struct {
	CourseID string `json:"courseId"`
}

// Material is one course material.
type Material struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Position int32  `json:"position"`
}

// ListMaterialsReply lists materials ordered by position.
type ListMaterialsReply struct {
	Materials []*Material `json:"materials"`
}

// ListBreakersRequest lists every circuit breaker.
type ListBreakersRequest struct{}

// Breaker is a circuit breaker snapshot.
type Breaker struct {
	Name             string     `json:"name"`
	State            string     `json:"state"`
	FailureCount     int        `json:"failureCount"`
	FailureThreshold int        `json:"failureThreshold"`
	LastFailureTime  *time.Time `json:"lastFailureTime,omitempty"`
	ResetTimeout     string     `json:"resetTimeout"`
}

// ListBreakersReply lists breakers ordered by name.
type ListBreakersReply struct {
	Breakers []*Breaker `json:"breakers"`
}

// ResetBreakerRequest forces a breaker CLOSED.
type ResetBreakerRequest struct {
	Name string `json:"name"`
}
