package biz

import (
	"context"

	"CourseLane/internal/data"
	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
)

// MaterialRepo 课程资料数据访问接口
// Implementation is in data layer (data.MaterialRepo).
type MaterialRepo interface {
	ListByCourse(ctx context.Context, courseID string) ([]*data.Material, error)
}

// MaterialUsecase 课程资料访问用例，只有已报名用户可访问
type MaterialUsecase struct {
	courses   CourseRepo
	materials MaterialRepo
	checker   *EnrollmentChecker
	logger    *log.Helper
}

// NewMaterialUsecase 创建课程资料用例
func NewMaterialUsecase(courses CourseRepo, materials MaterialRepo, checker *EnrollmentChecker, logger log.Logger) *MaterialUsecase {
	return &MaterialUsecase{
		courses:   courses,
		materials: materials,
		checker:   checker,
		logger:    log.NewHelper(logger),
	}
}

// ListMaterials returns the materials of a course if the caller is enrolled in it.
func (uc *MaterialUsecase) ListMaterials(ctx context.Context, p *model.Principal, courseID string) ([]*data.Material, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	if _, err := uc.courses.GetCourse(ctx, courseID); err != nil {
		return nil, translate(err)
	}

	if !uc.checker.IsUserEnrolled(ctx, p, courseID) {
		uc.logger.Infow("msg", "material access denied",
			"user_id", p.UserID,
			"course_id", courseID)
		return nil, ErrNotEnrolled
	}

	materials, err := uc.materials.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, translate(err)
	}
	return materials, nil
}
