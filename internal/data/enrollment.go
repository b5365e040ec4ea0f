package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "CourseLane/pkg/errors"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PackageType 套餐类型，决定占用哪个名额桶
type PackageType string

// Package types. ENTRY and INTERMEDIATE share the entry bucket.
const (
	PackageEntry        PackageType = "ENTRY"
	PackageIntermediate PackageType = "INTERMEDIATE"
	PackageBundle       PackageType = "BUNDLE"
)

// EnrollmentStatus 报名/支付记录状态
type EnrollmentStatus string

// Enrollment statuses. Only PENDING records can change state.
const (
	StatusPending   EnrollmentStatus = "PENDING"
	StatusApproved  EnrollmentStatus = "APPROVED"
	StatusRejected  EnrollmentStatus = "REJECTED"
	StatusCancelled EnrollmentStatus = "CANCELLED"
)

// activeStatuses are the statuses that hold a seat.
var activeStatuses = []EnrollmentStatus{StatusPending, StatusApproved}

var (
	// ErrEnrollmentNotFound is returned when no enrollment has the requested id.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrClassClosed is returned when the requested bucket has no seat left.
	ErrClassClosed = errors.New("class closed")
	// ErrAlreadyEnrolled is returned when the user already holds a seat in the course.
	ErrAlreadyEnrolled = errors.New("already enrolled")
	// ErrInvalidTransition is returned when the enrollment is not in the expected status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Enrollment 报名表 GORM 模型
type Enrollment struct {
	ID          string           `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	UserID      string           `gorm:"column:user_id;type:char(36);not null;index:idx_enrollments_user_course" json:"userId"`
	CourseID    string           `gorm:"column:course_id;type:char(36);not null;index:idx_enrollments_user_course;index:idx_enrollments_course_status" json:"courseId"`
	PackageID   *string          `gorm:"column:package_id;type:char(36)" json:"packageId,omitempty"`
	PackageType PackageType      `gorm:"column:package_type;type:varchar(20);not null" json:"packageType"`
	Status      EnrollmentStatus `gorm:"column:status;type:varchar(20);not null;index:idx_enrollments_course_status" json:"status"`
	Amount      int64            `gorm:"column:amount;not null;default:0" json:"amount"`
	PaymentRef  string           `gorm:"column:payment_ref;size:100" json:"paymentRef,omitempty"`
	ApprovedBy  *string          `gorm:"column:approved_by;type:char(36)" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time       `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName 指定表名
func (Enrollment) TableName() string {
	return "enrollments"
}

// QuotaUsage is the number of seats held per bucket.
type QuotaUsage struct {
	Entry  int64
	Bundle int64
}

// Used returns the seats held in the bucket of the package type.
func (u QuotaUsage) Used(pkg PackageType) int64 {
	if pkg == PackageBundle {
		return u.Bundle
	}
	return u.Entry
}

// UserCourse identifies one (user, course) pair of a batch lookup.
type UserCourse struct {
	UserID   string
	CourseID string
}

// EnrollmentRepo implements biz.EnrollmentRepo.
type EnrollmentRepo struct {
	db     *gorm.DB
	logger *log.Helper
}

// NewEnrollmentRepo 创建报名 Repository
func NewEnrollmentRepo(data *Data, logger log.Logger) *EnrollmentRepo {
	return &EnrollmentRepo{
		db:     data.DB(),
		logger: log.NewHelper(logger),
	}
}

// countUsage counts seats held per bucket. tx may be a transaction holding the course lock.
func countUsage(tx *gorm.DB, courseID string) (QuotaUsage, error) {
	var rows []struct {
		PackageType PackageType
		Total       int64
	}

	err := tx.Model(&Enrollment{}).
		Select("package_type, COUNT(*) AS total").
		Where("course_id = ? AND status IN ?", courseID, activeStatuses).
		Group("package_type").
		Scan(&rows).Error
	if err != nil {
		return QuotaUsage{}, fmt.Errorf("failed to count quota usage: %w", err)
	}

	var usage QuotaUsage
	for _, row := range rows {
		if row.PackageType == PackageBundle {
			usage.Bundle += row.Total
		} else {
			usage.Entry += row.Total
		}
	}
	return usage, nil
}

// GetUsage returns the seats held per bucket of a course.
func (r *EnrollmentRepo) GetUsage(ctx context.Context, courseID string) (QuotaUsage, error) {
	return countUsage(r.db.WithContext(ctx), courseID)
}

// ReserveSeat inserts a PENDING enrollment if its bucket still has a seat.
// The course row is locked (SELECT ... FOR UPDATE) for the duration of the check and insert,
// so concurrent reservations on the same course are serialized.
func (r *EnrollmentRepo) ReserveSeat(ctx context.Context, enrollment *Enrollment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", enrollment.CourseID).
			First(&course).Error; err != nil {
			if pkgerrors.IsNotFound(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to lock course: %w", err)
		}

		var held int64
		if err := tx.Model(&Enrollment{}).
			Where("user_id = ? AND course_id = ? AND status IN ?", enrollment.UserID, enrollment.CourseID, activeStatuses).
			Count(&held).Error; err != nil {
			return fmt.Errorf("failed to check existing enrollment: %w", err)
		}
		if held > 0 {
			return ErrAlreadyEnrolled
		}

		usage, err := countUsage(tx, enrollment.CourseID)
		if err != nil {
			return err
		}
		if int64(course.BucketQuota(enrollment.PackageType))-usage.Used(enrollment.PackageType) <= 0 {
			return ErrClassClosed
		}

		enrollment.Status = StatusPending
		if err := tx.Create(enrollment).Error; err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Infow("msg", "seat reserved",
		"enrollment_id", enrollment.ID,
		"course_id", enrollment.CourseID,
		"user_id", enrollment.UserID,
		"package_type", enrollment.PackageType)
	return nil
}

// GetEnrollment 根据 ID 获取报名记录
func (r *EnrollmentRepo) GetEnrollment(ctx context.Context, id string) (*Enrollment, error) {
	var enrollment Enrollment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&enrollment).Error; err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

// TransitionStatus moves an enrollment from one status to another with a conditional update.
// It returns ErrInvalidTransition when the record exists but is not in status from.
func (r *EnrollmentRepo) TransitionStatus(ctx context.Context, id string, from, to EnrollmentStatus, actorID string) (*Enrollment, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if to == StatusApproved {
		updates["approved_by"] = actorID
		updates["approved_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update enrollment status: %w", result.Error)
	}

	enrollment, err := r.GetEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return enrollment, ErrInvalidTransition
	}

	r.logger.Infow("msg", "enrollment status changed",
		"enrollment_id", id,
		"from", from,
		"to", to)
	return enrollment, nil
}

// ListPendingBefore 查询截止时间之前创建的 PENDING 报名（最多 limit 条）
func (r *EnrollmentRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*Enrollment, error) {
	var enrollments []*Enrollment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("created_at").
		Limit(limit).
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending enrollments: %w", err)
	}
	return enrollments, nil
}

// HasApprovedEnrollment reports whether the user holds an APPROVED enrollment in the course.
func (r *EnrollmentRepo) HasApprovedEnrollment(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, StatusApproved).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// ApprovedPairs returns the subset of pairs that hold an APPROVED enrollment.
func (r *EnrollmentRepo) ApprovedPairs(ctx context.Context, pairs []UserCourse) (map[UserCourse]bool, error) {
	found := make(map[UserCourse]bool, len(pairs))
	if len(pairs) == 0 {
		return found, nil
	}

	userIDs := make([]string, 0, len(pairs))
	courseIDs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		userIDs = append(userIDs, p.UserID)
		courseIDs = append(courseIDs, p.CourseID)
	}

	var rows []UserCourse
	if err := r.db.WithContext(ctx).
		Model(&Enrollment{}).
		Select("user_id, course_id").
		Where("user_id IN ? AND course_id IN ? AND status = ?", userIDs, courseIDs, StatusApproved).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to batch check enrollments: %w", err)
	}

	for _, row := range rows {
		found[row] = true
	}
	return found, nil
}
