package biz

import (
	"context"

	"CourseLane/internal/data"
	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// CreateCourseRequest 创建课程请求，ID 为空时自动生成
type CreateCourseRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Level       string `json:"level"`
	Quota       int32  `json:"quota"`
	EntryQuota  int32  `json:"entryQuota"`
	BundleQuota int32  `json:"bundleQuota"`
}

// Validate checks the request fields and the bucket invariant.
func (r *CreateCourseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, is.UUID),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Level, validation.Required,
			validation.In(string(data.LevelEntry), string(data.LevelIntermediate))),
		validation.Field(&r.Quota, validation.Min(int32(0))),
		validation.Field(&r.EntryQuota, validation.Min(int32(0))),
		validation.Field(&r.BundleQuota, validation.Min(int32(0)), validation.By(bucketsWithin(r.Quota, r.EntryQuota))),
	)
}

// UpdateQuotaRequest is the payload of a quota update.
type UpdateQuotaRequest struct {
	Quota       int32 `json:"quota"`
	EntryQuota  int32 `json:"entryQuota"`
	BundleQuota int32 `json:"bundleQuota"`
}

// Validate checks the request fields and the bucket invariant.
func (r *UpdateQuotaRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Quota, validation.Min(int32(0))),
		validation.Field(&r.EntryQuota, validation.Min(int32(0))),
		validation.Field(&r.BundleQuota, validation.Min(int32(0)), validation.By(bucketsWithin(r.Quota, r.EntryQuota))),
	)
}

// bucketsWithin 校验 entryQuota + bundleQuota <= quota
func bucketsWithin(quota, entryQuota int32) validation.RuleFunc {
	return func(value interface{}) error {
		bundle, _ := value.(int32)
		if int64(entryQuota)+int64(bundle) > int64(quota) {
			return validation.NewError("validation_bucket_sum", "entryQuota + bundleQuota must not exceed quota")
		}
		return nil
	}
}

// CourseUsecase 课程及名额管理用例
type CourseUsecase struct {
	repo   CourseRepo
	audit  AuditLogger
	logger *log.Helper
}

// NewCourseUsecase 创建课程用例
func NewCourseUsecase(repo CourseRepo, audit AuditLogger, logger log.Logger) *CourseUsecase {
	return &CourseUsecase{
		repo:   repo,
		audit:  audit,
		logger: log.NewHelper(logger),
	}
}

// CreateCourse 创建课程（仅管理员）
func (uc *CourseUsecase) CreateCourse(ctx context.Context, p *model.Principal, req *CreateCourseRequest) (*data.Course, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if req == nil {
		return nil, fieldError("request", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, newValidationError(err)
	}

	course := &data.Course{
		ID:          req.ID,
		Title:       req.Title,
		Level:       data.CourseLevel(req.Level),
		Quota:       req.Quota,
		EntryQuota:  req.EntryQuota,
		BundleQuota: req.BundleQuota,
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}

	if err := uc.repo.CreateCourse(ctx, course); err != nil {
		return nil, translate(err)
	}

	uc.logger.Infow("msg", "course created",
		"course_id", course.ID,
		"quota", course.Quota,
		"entry_quota", course.EntryQuota,
		"bundle_quota", course.BundleQuota)
	return course, nil
}

// GetCourse 根据 ID 获取课程
func (uc *CourseUsecase) GetCourse(ctx context.Context, id string) (*data.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fieldError("courseId", "must be a valid UUID")
	}
	course, err := uc.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return course, nil
}

// UpdateCourseQuota 更新课程名额（仅管理员）
// 任一名额桶不能低于已占用的席位数
func (uc *CourseUsecase) UpdateCourseQuota(ctx context.Context, p *model.Principal, id string, req *UpdateQuotaRequest) (*data.Course, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fieldError("courseId", "must be a valid UUID")
	}
	if req == nil {
		return nil, fieldError("request", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, newValidationError(err)
	}

	course, err := uc.repo.UpdateCourseQuota(ctx, id, req.Quota, req.EntryQuota, req.BundleQuota)
	if err != nil {
		return nil, translate(err)
	}

	if uc.audit != nil {
		uc.audit.Record(ctx, &model.AuditEntry{
			EventType: model.AuditEventQuotaUpdated,
			SubjectID: id,
			ActorID:   p.UserID,
			Details: map[string]interface{}{
				"quota":        req.Quota,
				"entry_quota":  req.EntryQuota,
				"bundle_quota": req.BundleQuota,
			},
		})
	}
	return course, nil
}
