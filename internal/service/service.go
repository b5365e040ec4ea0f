// Package service implements the API layer: it adapts v1 requests to biz usecases.
package service

import (
	"context"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"
	"CourseLane/internal/data"
	"CourseLane/internal/model"

	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(
	NewCourseService,
	NewEnrollmentService,
	NewEnrollmentStatusGRPCService,
	NewMaterialService,
	NewBreakerService,
)

// principal returns the caller authenticated by the auth middleware.
func principal(ctx context.Context) (*model.Principal, error) {
	p, ok := model.PrincipalFromContext(ctx)
	if !ok {
		return nil, biz.ErrUnauthorized
	}
	return p, nil
}

func convertCourse(c *data.Course) *v1.Course {
	return &v1.Course{
		ID:          c.ID,
		Title:       c.Title,
		Level:       string(c.Level),
		Quota:       c.Quota,
		EntryQuota:  c.EntryQuota,
		BundleQuota: c.BundleQuota,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func convertEnrollment(e *data.Enrollment) *v1.Enrollment {
	out := &v1.Enrollment{
		ID:          e.ID,
		UserID:      e.UserID,
		CourseID:    e.CourseID,
		PackageType: string(e.PackageType),
		Status:      string(e.Status),
		Amount:      e.Amount,
		PaymentRef:  e.PaymentRef,
		ApprovedAt:  e.ApprovedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.PackageID != nil {
		out.PackageID = *e.PackageID
	}
	if e.ApprovedBy != nil {
		out.ApprovedBy = *e.ApprovedBy
	}
	return out
}

func convertEnrollmentStatus(r *biz.EnrollmentStatusResult) *v1.EnrollmentStatus {
	return &v1.EnrollmentStatus{
		UserID:     r.UserID,
		CourseID:   r.CourseID,
		IsEnrolled: r.IsEnrolled,
	}
}

func convertBreaker(s model.BreakerStats) *v1.Breaker {
	return &v1.Breaker{
		Name:             s.Name,
		State:            string(s.State),
		FailureCount:     s.FailureCount,
		FailureThreshold: s.FailureThreshold,
		LastFailureTime:  s.LastFailureTime,
		ResetTimeout:     s.ResetTimeout,
	}
}
