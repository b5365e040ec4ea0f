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

// CourseLevel 课程难度等级
type CourseLevel string

// Course levels
const (
	LevelEntry        CourseLevel = "ENTRY"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
)

var (
	// ErrCourseNotFound is returned when no course has the requested id.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseExists is returned when a course id is already taken.
	ErrCourseExists = errors.New("course already exists")
	// ErrQuotaBelowUsage is returned when a quota update would drop a bucket below its consumed seats.
	ErrQuotaBelowUsage = errors.New("quota below current usage")
)

// Course 课程表 GORM 模型
// EntryQuota is shared by ENTRY and INTERMEDIATE enrollments, BundleQuota by BUNDLE ones.
type Course struct {
	ID          string      `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	Title       string      `gorm:"column:title;size:200;not null" json:"title"`
	Level       CourseLevel `gorm:"column:level;type:varchar(20);not null" json:"level"`
	Quota       int32       `gorm:"column:quota;not null" json:"quota"`
	EntryQuota  int32       `gorm:"column:entry_quota;not null" json:"entryQuota"`
	BundleQuota int32       `gorm:"column:bundle_quota;not null" json:"bundleQuota"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}

// BucketQuota returns the quota of the bucket the package type draws from.
func (c *Course) BucketQuota(pkg PackageType) int32 {
	if pkg == PackageBundle {
		return c.BundleQuota
	}
	return c.EntryQuota
}

// CourseRepo implements biz.CourseRepo.
type CourseRepo struct {
	db     *gorm.DB
	cache  CacheClient
	logger *log.Helper
}

// NewCourseRepo 创建课程 Repository
func NewCourseRepo(data *Data, logger log.Logger) *CourseRepo {
	return &CourseRepo{
		db:     data.DB(),
		cache:  data.GetCache(),
		logger: log.NewHelper(logger),
	}
}

// CreateCourse 创建课程
func (r *CourseRepo) CreateCourse(ctx context.Context, course *Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return ErrCourseExists
		}
		return fmt.Errorf("failed to create course: %w", err)
	}

	r.logger.Infow("msg", "course created", "course_id", course.ID, "quota", course.Quota)
	return nil
}

// GetCourse 获取课程（优先读取 Redis 缓存）
func (r *CourseRepo) GetCourse(ctx context.Context, id string) (*Course, error) {
	cacheKey := BuildCacheKey(CacheKeyCourse, id)

	var cached Course
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var course Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, &course, TTLCourse); err != nil {
		r.logger.Debugw("msg", "failed to cache course", "course_id", id, "error", err)
	}

	return &course, nil
}

// UpdateCourseQuota replaces the quota split of a course. The course row is locked and the
// update is refused when a bucket would fall below the seats already consumed.
func (r *CourseRepo) UpdateCourseQuota(ctx context.Context, id string, quota, entryQuota, bundleQuota int32) (*Course, error) {
	var updated Course

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&updated).Error; err != nil {
			if pkgerrors.IsNotFound(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to lock course: %w", err)
		}

		usage, err := countUsage(tx, id)
		if err != nil {
			return err
		}
		if int64(entryQuota) < usage.Entry || int64(bundleQuota) < usage.Bundle {
			return ErrQuotaBelowUsage
		}

		updated.Quota = quota
		updated.EntryQuota = entryQuota
		updated.BundleQuota = bundleQuota

		result := tx.Model(&Course{}).Where("id = ?", id).Updates(map[string]interface{}{
			"quota":        quota,
			"entry_quota":  entryQuota,
			"bundle_quota": bundleQuota,
			"updated_at":   time.Now(),
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update course quota: %w", result.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	r.logger.Infow("msg", "course quota updated",
		"course_id", id,
		"quota", quota,
		"entry_quota", entryQuota,
		"bundle_quota", bundleQuota)
	return &updated, nil
}

func (r *CourseRepo) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, BuildCacheKey(CacheKeyCourse, id)); err != nil {
		r.logger.Debugw("msg", "failed to delete course cache", "course_id", id, "error", err)
	}
}
