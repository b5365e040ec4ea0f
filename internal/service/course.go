package service

import (
	"context"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// CourseService implements v1.CourseServiceHTTPServer.
type CourseService struct {
	courses *biz.CourseUsecase
	quota   *biz.QuotaUsecase
	logger  *log.Helper
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(courses *biz.CourseUsecase, quota *biz.QuotaUsecase, logger log.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		quota:   quota,
		logger:  log.NewHelper(logger),
	}
}

// CreateCourse 创建课程
func (s *CourseService) CreateCourse(ctx context.Context, req *v1.CreateCourseRequest) (*v1.Course, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("msg", "CreateCourse called", "title", req.Title, "quota", req.Quota)

	course, err := s.courses.CreateCourse(ctx, p, &biz.CreateCourseRequest{
		ID:          req.ID,
		Title:       req.Title,
		Level:       req.Level,
		Quota:       req.Quota,
		EntryQuota:  req.EntryQuota,
		BundleQuota: req.BundleQuota,
	})
	if err != nil {
		return nil, err
	}
	return convertCourse(course), nil
}

// GetCourse 获取课程详情
func (s *CourseService) GetCourse(ctx context.Context, req *v1.GetCourseRequest) (*v1.Course, error) {
	if _, err := principal(ctx); err != nil {
		return nil, err
	}

	course, err := s.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	return convertCourse(course), nil
}

// UpdateCourseQuota 更新课程名额
func (s *CourseService) UpdateCourseQuota(ctx context.Context, req *v1.UpdateCourseQuotaRequest) (*v1.Course, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("msg", "UpdateCourseQuota called",
		"course_id", req.CourseID,
		"quota", req.Quota,
		"entry_quota", req.EntryQuota,
		"bundle_quota", req.BundleQuota)

	course, err := s.courses.UpdateCourseQuota(ctx, p, req.CourseID, &biz.UpdateQuotaRequest{
		Quota:       req.Quota,
		EntryQuota:  req.EntryQuota,
		BundleQuota: req.BundleQuota,
	})
	if err != nil {
		return nil, err
	}
	return convertCourse(course), nil
}

// GetAvailability 查询剩余席位
func (s *CourseService) GetAvailability(ctx context.Context, req *v1.GetAvailabilityRequest) (*v1.Availability, error) {
	if _, err := principal(ctx); err != nil {
		return nil, err
	}

	a, err := s.quota.GetAvailability(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	return &v1.Availability{
		CourseID:                   a.CourseID,
		EntryIntermediateAvailable: a.EntryIntermediateAvailable,
		BundleAvailable:            a.BundleAvailable,
	}, nil
}
