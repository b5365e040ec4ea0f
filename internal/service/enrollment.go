package service

import (
	"context"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"
	"CourseLane/internal/data"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// EnrollmentService implements v1.EnrollmentServiceHTTPServer.
type EnrollmentService struct {
	quota  *biz.QuotaUsecase
	logger *log.Helper
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(quota *biz.QuotaUsecase, logger log.Logger) *EnrollmentService {
	return &EnrollmentService{
		quota:  quota,
		logger: log.NewHelper(logger),
	}
}

// SubmitEnrollment reserves a seat and records a PENDING enrollment.
func (s *EnrollmentService) SubmitEnrollment(ctx context.Context, req *v1.SubmitEnrollmentRequest) (*v1.Enrollment, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("msg", "SubmitEnrollment called",
		"course_id", req.CourseID,
		"package_type", req.PackageType,
		"user_id", p.UserID)

	enrollment, err := s.quota.SubmitEnrollment(ctx, p, &biz.SubmitEnrollmentRequest{
		UserID:      req.UserID,
		CourseID:    req.CourseID,
		PackageID:   req.PackageID,
		PackageType: req.PackageType,
		Amount:      req.Amount,
		PaymentRef:  req.PaymentRef,
	})
	if err != nil {
		return nil, err
	}
	return convertEnrollment(enrollment), nil
}

// ApproveEnrollment 审核通过报名
func (s *EnrollmentService) ApproveEnrollment(ctx context.Context, req *v1.EnrollmentIDRequest) (*v1.Enrollment, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.quota.ApproveEnrollment(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return convertEnrollment(enrollment), nil
}

// RejectEnrollment 拒绝报名
func (s *EnrollmentService) RejectEnrollment(ctx context.Context, req *v1.EnrollmentIDRequest) (*v1.Enrollment, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.quota.RejectEnrollment(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return convertEnrollment(enrollment), nil
}

// CancelEnrollment 取消报名
func (s *EnrollmentService) CancelEnrollment(ctx context.Context, req *v1.EnrollmentIDRequest) (*v1.Enrollment, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.quota.CancelEnrollment(ctx, p, req.ID)
	if err != nil {
		return nil, err
	}
	return convertEnrollment(enrollment), nil
}

// GetEnrollmentStatus reports whether a user holds an APPROVED enrollment in a course.
func (s *EnrollmentService) GetEnrollmentStatus(ctx context.Context, req *v1.GetEnrollmentStatusRequest) (*v1.EnrollmentStatus, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.quota.CheckEnrollment(ctx, p, req.UserID, req.CourseID)
	if err != nil {
		return nil, err
	}
	return convertEnrollmentStatus(result), nil
}

// BatchGetEnrollmentStatus answers GetEnrollmentStatus for many pairs.
func (s *EnrollmentService) BatchGetEnrollmentStatus(ctx context.Context, req *v1.BatchEnrollmentStatusRequest) (*v1.BatchEnrollmentStatusReply, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make([]data.UserCourse, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		pairs = append(pairs, data.UserCourse{UserID: pair.UserID, CourseID: pair.CourseID})
	}

	results, err := s.quota.BatchCheckEnrollment(ctx, p, pairs)
	if err != nil {
		return nil, err
	}

	reply := &v1.BatchEnrollmentStatusReply{Results: make([]*v1.EnrollmentStatus, 0, len(results))}
	for _, r := range results {
		reply.Results = append(reply.Results, convertEnrollmentStatus(r))
	}
	return reply, nil
}

// EnrollmentStatusGRPCService implements v1.EnrollmentStatusGRPCServer.
type EnrollmentStatusGRPCService struct {
	quota *biz.QuotaUsecase
}

// NewEnrollmentStatusGRPCService creates the gRPC enrollment status service.
func NewEnrollmentStatusGRPCService(quota *biz.QuotaUsecase) *EnrollmentStatusGRPCService {
	return &EnrollmentStatusGRPCService{quota: quota}
}

// GetEnrollmentStatus reads {"courseId", "userId"} and answers {"userId", "courseId", "isEnrolled"}.
func (s *EnrollmentStatusGRPCService) GetEnrollmentStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	fields := in.GetFields()
	courseID := fields["courseId"].GetStringValue()
	userID := fields["userId"].GetStringValue()
	if courseID == "" {
		return nil, errors.BadRequest(biz.ReasonValidationFailed, "courseId is required").
			WithMetadata(map[string]string{"courseId": "is required"})
	}

	result, err := s.quota.CheckEnrollment(ctx, p, userID, courseID)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]interface{}{
		"userId":     result.UserID,
		"courseId":   result.CourseID,
		"isEnrolled": result.IsEnrolled,
	})
}
