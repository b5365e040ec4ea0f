package biz

import (
	stderrors "errors"

	"CourseLane/internal/data"

	"github.com/go-kratos/kratos/v2/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error reasons returned to API clients.
const (
	ReasonValidationFailed        = "VALIDATION_FAILED"
	ReasonUnauthorized            = "UNAUTHORIZED"
	ReasonForbidden               = "FORBIDDEN"
	ReasonNotEnrolled             = "NOT_ENROLLED"
	ReasonCourseNotFound          = "COURSE_NOT_FOUND"
	ReasonEnrollmentNotFound      = "ENROLLMENT_NOT_FOUND"
	ReasonBreakerNotFound         = "BREAKER_NOT_FOUND"
	ReasonCourseExists            = "COURSE_EXISTS"
	ReasonClassClosed             = "CLASS_CLOSED"
	ReasonAlreadyEnrolled         = "ALREADY_ENROLLED"
	ReasonInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ReasonQuotaBelowUsage         = "QUOTA_BELOW_USAGE"
	ReasonInternal                = "INTERNAL"
)

var (
	ErrUnauthorized            = errors.Unauthorized(ReasonUnauthorized, "authentication required")
	ErrForbidden               = errors.Forbidden(ReasonForbidden, "insufficient permissions")
	ErrNotEnrolled             = errors.Forbidden(ReasonNotEnrolled, "user is not enrolled in this course")
	ErrCourseNotFound          = errors.NotFound(ReasonCourseNotFound, "course not found")
	ErrEnrollmentNotFound      = errors.NotFound(ReasonEnrollmentNotFound, "enrollment not found")
	ErrBreakerNotFound         = errors.NotFound(ReasonBreakerNotFound, "circuit breaker not found")
	ErrCourseExists            = errors.Conflict(ReasonCourseExists, "course already exists")
	ErrClassClosed             = errors.Conflict(ReasonClassClosed, "class closed: no seats left for this package")
	ErrAlreadyEnrolled         = errors.Conflict(ReasonAlreadyEnrolled, "user already holds an enrollment for this course")
	ErrInvalidStatusTransition = errors.Conflict(ReasonInvalidStatusTransition, "enrollment is not pending")
	ErrQuotaBelowUsage         = errors.Conflict(ReasonQuotaBelowUsage, "quota cannot drop below seats already taken")
)

// newValidationError converts ozzo-validation errors into a 400 with one metadata entry per field.
func newValidationError(err error) error {
	fields := map[string]string{}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
	} else {
		fields["request"] = err.Error()
	}

	return errors.BadRequest(ReasonValidationFailed, "validation failed").WithMetadata(fields)
}

// fieldError builds a validation error for a single field.
func fieldError(field, msg string) error {
	return errors.BadRequest(ReasonValidationFailed, "validation failed").
		WithMetadata(map[string]string{field: msg})
}

// translate maps data layer sentinels to API errors. Unknown errors become 500.
func translate(err error) error {
	var apiErr *errors.Error
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &apiErr):
		return err
	case stderrors.Is(err, data.ErrCourseNotFound):
		return ErrCourseNotFound
	case stderrors.Is(err, data.ErrEnrollmentNotFound):
		return ErrEnrollmentNotFound
	case stderrors.Is(err, data.ErrCourseExists):
		return ErrCourseExists
	case stderrors.Is(err, data.ErrClassClosed):
		return ErrClassClosed
	case stderrors.Is(err, data.ErrAlreadyEnrolled):
		return ErrAlreadyEnrolled
	case stderrors.Is(err, data.ErrInvalidTransition):
		return ErrInvalidStatusTransition
	case stderrors.Is(err, data.ErrQuotaBelowUsage):
		return ErrQuotaBelowUsage
	default:
		return errors.InternalServer(ReasonInternal, "internal server error").WithCause(err)
	}
}
