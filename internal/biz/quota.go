package biz

import (
	"context"
	stderrors "errors"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/data"
	"CourseLane/internal/model"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const (
	defaultPendingTTL = 48 * time.Hour
	expireBatchSize   = 500
	maxBatchPairs     = 100
)

// CourseRepo 课程数据访问接口
// Implementation is in data layer (data.CourseRepo).
type CourseRepo interface {
	CreateCourse(ctx context.Context, course *data.Course) error
	GetCourse(ctx context.Context, id string) (*data.Course, error)
	UpdateCourseQuota(ctx context.Context, id string, quota, entryQuota, bundleQuota int32) (*data.Course, error)
}

// EnrollmentRepo 报名记录与席位统计数据访问接口
// Implementation is in data layer (data.EnrollmentRepo).
type EnrollmentRepo interface {
	GetUsage(ctx context.Context, courseID string) (data.QuotaUsage, error)
	ReserveSeat(ctx context.Context, enrollment *data.Enrollment) error
	GetEnrollment(ctx context.Context, id string) (*data.Enrollment, error)
	TransitionStatus(ctx context.Context, id string, from, to data.EnrollmentStatus, actorID string) (*data.Enrollment, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*data.Enrollment, error)
	HasApprovedEnrollment(ctx context.Context, userID, courseID string) (bool, error)
	ApprovedPairs(ctx context.Context, pairs []data.UserCourse) (map[data.UserCourse]bool, error)
}

// Availability 各名额桶剩余席位（不会为负数）
type Availability struct {
	CourseID                   string `json:"courseId"`
	EntryIntermediateAvailable int64  `json:"entryIntermediateAvailable"`
	BundleAvailable            int64  `json:"bundleAvailable"`
}

// SubmitEnrollmentRequest is the payload of an enrollment submission.
// UserID may only be set by admins; it defaults to the caller.
type SubmitEnrollmentRequest struct {
	UserID      string `json:"userId,omitempty"`
	CourseID    string `json:"courseId"`
	PackageID   string `json:"packageId,omitempty"`
	PackageType string `json:"packageType"`
	Amount      int64  `json:"amount"`
	PaymentRef  string `json:"paymentRef,omitempty"`
}

// Validate checks the request fields.
func (r *SubmitEnrollmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, is.UUID),
		validation.Field(&r.CourseID, validation.Required, is.UUID),
		validation.Field(&r.PackageID, is.UUID),
		validation.Field(&r.PackageType, validation.Required,
			validation.In(string(data.PackageEntry), string(data.PackageIntermediate), string(data.PackageBundle))),
		validation.Field(&r.Amount, validation.Min(int64(0))),
		validation.Field(&r.PaymentRef, validation.Length(0, 100)),
	)
}

// EnrollmentStatusResult answers whether a user holds an approved enrollment.
type EnrollmentStatusResult struct {
	UserID     string `json:"userId"`
	CourseID   string `json:"courseId"`
	IsEnrolled bool   `json:"isEnrolled"`
}

// QuotaUsecase 负责席位统计与报名生命周期
type QuotaUsecase struct {
	courses     CourseRepo
	enrollments EnrollmentRepo
	checker     *EnrollmentChecker
	audit       AuditLogger
	notifier    Notifier
	pendingTTL  time.Duration
	now         func() time.Time
	logger      *pkglog.LogHelper
}

// NewQuotaUsecase 创建名额用例
func NewQuotaUsecase(courses CourseRepo, enrollments EnrollmentRepo, checker *EnrollmentChecker, audit AuditLogger, notifier Notifier, c *conf.Quota, logger log.Logger) *QuotaUsecase {
	ttl := defaultPendingTTL
	if c != nil && c.PendingTTL > 0 {
		ttl = c.PendingTTL
	}
	return &QuotaUsecase{
		courses:     courses,
		enrollments: enrollments,
		checker:     checker,
		audit:       audit,
		notifier:    notifier,
		pendingTTL:  ttl,
		now:         time.Now,
		logger:      pkglog.NewLogHelper(logger),
	}
}

// GetAvailability 获取课程两个名额桶的剩余席位
func (uc *QuotaUsecase) GetAvailability(ctx context.Context, courseID string) (*Availability, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, fieldError("courseId", "must be a valid UUID")
	}

	course, err := uc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, translate(err)
	}
	usage, err := uc.enrollments.GetUsage(ctx, courseID)
	if err != nil {
		return nil, translate(err)
	}

	return &Availability{
		CourseID:                   courseID,
		EntryIntermediateAvailable: max(int64(course.EntryQuota)-usage.Entry, 0),
		BundleAvailable:            max(int64(course.BundleQuota)-usage.Bundle, 0),
	}, nil
}

// SubmitEnrollment 预占席位并创建 PENDING 报名记录
func (uc *QuotaUsecase) SubmitEnrollment(ctx context.Context, p *model.Principal, req *SubmitEnrollmentRequest) (*data.Enrollment, error) {
	if p == nil || p.UserID == "" {
		return nil, ErrUnauthorized
	}
	if req == nil {
		return nil, fieldError("request", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, newValidationError(err)
	}

	userID := p.UserID
	if req.UserID != "" && req.UserID != p.UserID {
		if !p.IsAdmin() {
			return nil, ErrForbidden
		}
		userID = req.UserID
	}

	enrollment := &data.Enrollment{
		ID:          uuid.NewString(),
		UserID:      userID,
		CourseID:    req.CourseID,
		PackageType: data.PackageType(req.PackageType),
		Amount:      req.Amount,
		PaymentRef:  req.PaymentRef,
	}
	if req.PackageID != "" {
		pkgID := req.PackageID
		enrollment.PackageID = &pkgID
	}

	if err := uc.enrollments.ReserveSeat(ctx, enrollment); err != nil {
		if stderrors.Is(err, data.ErrClassClosed) {
			uc.logger.Quota("enrollment refused, bucket full",
				"course_id", req.CourseID,
				"package_type", req.PackageType)
		}
		return nil, translate(err)
	}

	uc.record(ctx, model.AuditEventEnrollmentSubmitted, enrollment, p.UserID, map[string]interface{}{
		"course_id":    enrollment.CourseID,
		"package_type": string(enrollment.PackageType),
		"amount":       enrollment.Amount,
	})
	uc.publish(ctx, model.NotificationEnrollmentSubmitted, enrollment)
	uc.logger.Enrollment("enrollment submitted",
		"enrollment_id", enrollment.ID,
		"course_id", enrollment.CourseID,
		"package_type", string(enrollment.PackageType))

	return enrollment, nil
}

// ApproveEnrollment 审核通过 PENDING 报名（仅管理员）
func (uc *QuotaUsecase) ApproveEnrollment(ctx context.Context, p *model.Principal, id string) (*data.Enrollment, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return uc.changeStatus(ctx, p, id, data.StatusApproved,
		model.AuditEventEnrollmentApproved, model.NotificationEnrollmentApproved)
}

// RejectEnrollment 拒绝 PENDING 报名并释放席位（仅管理员）
func (uc *QuotaUsecase) RejectEnrollment(ctx context.Context, p *model.Principal, id string) (*data.Enrollment, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return uc.changeStatus(ctx, p, id, data.StatusRejected,
		model.AuditEventEnrollmentRejected, model.NotificationEnrollmentRejected)
}

// CancelEnrollment moves a PENDING enrollment to CANCELLED, returning its seat.
// Owners may cancel their own enrollments, admins any.
func (uc *QuotaUsecase) CancelEnrollment(ctx context.Context, p *model.Principal, id string) (*data.Enrollment, error) {
	if p == nil || (p.UserID == "" && !p.IsAdmin()) {
		return nil, ErrUnauthorized
	}
	if !p.IsAdmin() {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fieldError("id", "must be a valid UUID")
		}
		existing, err := uc.enrollments.GetEnrollment(ctx, id)
		if err != nil {
			return nil, translate(err)
		}
		if existing.UserID != p.UserID {
			return nil, ErrForbidden
		}
	}
	return uc.changeStatus(ctx, p, id, data.StatusCancelled,
		model.AuditEventEnrollmentCancelled, model.NotificationEnrollmentCancelled)
}

func (uc *QuotaUsecase) changeStatus(ctx context.Context, p *model.Principal, id string, to data.EnrollmentStatus, auditEvent, notification string) (*data.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fieldError("id", "must be a valid UUID")
	}

	enrollment, err := uc.enrollments.TransitionStatus(ctx, id, data.StatusPending, to, p.UserID)
	if err != nil {
		if stderrors.Is(err, data.ErrInvalidTransition) && enrollment != nil {
			return nil, ErrInvalidStatusTransition.WithMetadata(map[string]string{
				"current_status": string(enrollment.Status),
			})
		}
		return nil, translate(err)
	}

	uc.checker.InvalidateEnrollment(ctx, enrollment.UserID, enrollment.CourseID)
	uc.record(ctx, auditEvent, enrollment, p.UserID, map[string]interface{}{
		"course_id": enrollment.CourseID,
		"user_id":   enrollment.UserID,
		"status":    string(to),
	})
	uc.publish(ctx, notification, enrollment)

	return enrollment, nil
}

// ExpirePendingEnrollments cancels PENDING enrollments older than olderThan
// (the configured pending TTL when olderThan is not positive) and returns how many were cancelled.
func (uc *QuotaUsecase) ExpirePendingEnrollments(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = uc.pendingTTL
	}
	cutoff := uc.now().Add(-olderThan)

	expired := 0
	for {
		batch, err := uc.enrollments.ListPendingBefore(ctx, cutoff, expireBatchSize)
		if err != nil {
			return expired, err
		}

		progressed := 0
		for _, e := range batch {
			enrollment, err := uc.enrollments.TransitionStatus(ctx, e.ID, data.StatusPending, data.StatusCancelled, "")
			switch {
			case stderrors.Is(err, data.ErrInvalidTransition):
				// approved or cancelled concurrently
				progressed++
				continue
			case err != nil:
				uc.logger.Warnw("msg", "failed to expire enrollment", "enrollment_id", e.ID, "error", err)
				continue
			}

			progressed++
			expired++
			uc.checker.InvalidateEnrollment(ctx, enrollment.UserID, enrollment.CourseID)
			uc.record(ctx, model.AuditEventEnrollmentExpired, enrollment, "", map[string]interface{}{
				"course_id":  enrollment.CourseID,
				"created_at": enrollment.CreatedAt,
				"cutoff":     cutoff,
			})
			uc.publish(ctx, model.NotificationEnrollmentCancelled, enrollment)
		}

		if len(batch) < expireBatchSize || progressed == 0 {
			break
		}
	}

	uc.logger.Infow("msg", "pending enrollments expired",
		"expired", expired,
		"cutoff", cutoff)
	return expired, nil
}

// CheckEnrollment reports whether userID holds an APPROVED enrollment in the course.
// Users may only ask about themselves; admins and services may ask about anyone.
func (uc *QuotaUsecase) CheckEnrollment(ctx context.Context, p *model.Principal, userID, courseID string) (*EnrollmentStatusResult, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	if userID == "" {
		userID = p.UserID
	}
	if userID != p.UserID && !p.IsAdmin() && !p.IsService() {
		return nil, ErrForbidden
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, fieldError("userId", "must be a valid UUID")
	}
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, fieldError("courseId", "must be a valid UUID")
	}

	enrolled, err := uc.enrollments.HasApprovedEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, translate(err)
	}
	return &EnrollmentStatusResult{UserID: userID, CourseID: courseID, IsEnrolled: enrolled}, nil
}

// BatchCheckEnrollment answers CheckEnrollment for many pairs at once. Service or admin only.
func (uc *QuotaUsecase) BatchCheckEnrollment(ctx context.Context, p *model.Principal, pairs []data.UserCourse) ([]*EnrollmentStatusResult, error) {
	if !p.IsService() && !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if len(pairs) == 0 {
		return []*EnrollmentStatusResult{}, nil
	}
	if len(pairs) > maxBatchPairs {
		return nil, fieldError("pairs", "at most 100 pairs per request")
	}
	for _, pair := range pairs {
		if _, err := uuid.Parse(pair.UserID); err != nil {
			return nil, fieldError("pairs", "userId must be a valid UUID")
		}
		if _, err := uuid.Parse(pair.CourseID); err != nil {
			return nil, fieldError("pairs", "courseId must be a valid UUID")
		}
	}

	approved, err := uc.enrollments.ApprovedPairs(ctx, pairs)
	if err != nil {
		return nil, translate(err)
	}

	results := make([]*EnrollmentStatusResult, 0, len(pairs))
	for _, pair := range pairs {
		results = append(results, &EnrollmentStatusResult{
			UserID:     pair.UserID,
			CourseID:   pair.CourseID,
			IsEnrolled: approved[pair],
		})
	}
	return results, nil
}

func (uc *QuotaUsecase) record(ctx context.Context, event string, e *data.Enrollment, actorID string, details map[string]interface{}) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(ctx, &model.AuditEntry{
		EventType: event,
		SubjectID: e.ID,
		ActorID:   actorID,
		Details:   details,
	})
}

// publish 发送通知，失败只记录日志，不影响请求结果
func (uc *QuotaUsecase) publish(ctx context.Context, eventType string, e *data.Enrollment) {
	if uc.notifier == nil {
		return
	}
	err := uc.notifier.PublishEnrollmentEvent(ctx, &model.EnrollmentEvent{
		Type:         eventType,
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		CourseID:     e.CourseID,
		PackageType:  string(e.PackageType),
		Status:       string(e.Status),
		OccurredAt:   uc.now(),
	})
	if err != nil {
		uc.logger.Warnw("msg", "failed to publish enrollment notification",
			"enrollment_id", e.ID,
			"type", eventType,
			"error", err)
	}
}
