package v1

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names, used by middleware selectors and in request logs.
const (
	OperationCourseServiceCreateCourse                 = "/courselane.v1.CourseService/CreateCourse"
	OperationCourseServiceGetCourse                    = "/courselane.v1.CourseService/GetCourse"
	OperationCourseServiceUpdateCourseQuota            = "/courselane.v1.CourseService/UpdateCourseQuota"
	OperationCourseServiceGetAvailability              = "/courselane.v1.CourseService/GetAvailability"
	OperationEnrollmentServiceSubmitEnrollment         = "/courselane.v1.EnrollmentService/SubmitEnrollment"
	OperationEnrollmentServiceApproveEnrollment        = "/courselane.v1.EnrollmentService/ApproveEnrollment"
	OperationEnrollmentServiceRejectEnrollment         = "/courselane.v1.EnrollmentService/RejectEnrollment"
	OperationEnrollmentServiceCancelEnrollment         = "/courselane.v1.EnrollmentService/CancelEnrollment"
	OperationEnrollmentServiceBatchGetEnrollmentStatus = "/courselane.v1.EnrollmentService/BatchGetEnrollmentStatus"
	OperationEnrollmentServiceGetEnrollmentStatus      = "/courselane.v1.EnrollmentService/GetEnrollmentStatus"
	OperationMaterialServiceListMaterials              = "/courselane.v1.MaterialService/ListMaterials"
	OperationBreakerServiceListBreakers                = "/courselane.v1.BreakerService/ListBreakers"
	OperationBreakerServiceResetBreaker                = "/courselane.v1.BreakerService/ResetBreaker"
)

// CourseServiceHTTPServer is implemented by the course service.
type CourseServiceHTTPServer interface {
	CreateCourse(context.Context, *CreateCourseRequest) (*Course, error)
	GetCourse(context.Context, *GetCourseRequest) (*Course, error)
	UpdateCourseQuota(context.Context, *UpdateCourseQuotaRequest) (*Course, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*Availability, error)
}

// RegisterCourseServiceHTTPServer mounts the CourseService routes on s.
func RegisterCourseServiceHTTPServer(s *http.Server, srv CourseServiceHTTPServer) {
	r := s.Route("/")
	r.POST("/api/v1/courses", _CourseService_CreateCourse0_HTTP_Handler(srv))
	r.GET("/api/v1/courses/{courseId}", _CourseService_GetCourse0_HTTP_Handler(srv))
	r.PUT("/api/v1/courses/{courseId}/quota", _CourseService_UpdateCourseQuota0_HTTP_Handler(srv))
	r.GET("/api/v1/courses/{courseId}/availability", _CourseService_GetAvailability0_HTTP_Handler(srv))
}

func _CourseService_CreateCourse0_HTTP_Handler(srv CourseServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in CreateCourseRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationCourseServiceCreateCourse)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CreateCourse(ctx, req.(*CreateCourseRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Course)
		return ctx.Result(201, reply)
	}
}

func _CourseService_GetCourse0_HTTP_Handler(srv CourseServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetCourseRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationCourseServiceGetCourse)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetCourse(ctx, req.(*GetCourseRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Course)
		return ctx.Result(200, reply)
	}
}

func _CourseService_UpdateCourseQuota0_HTTP_Handler(srv CourseServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in UpdateCourseQuotaRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationCourseServiceUpdateCourseQuota)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.UpdateCourseQuota(ctx, req.(*UpdateCourseQuotaRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Course)
		return ctx.Result(200, reply)
	}
}

func _CourseService_GetAvailability0_HTTP_Handler(srv CourseServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetAvailabilityRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationCourseServiceGetAvailability)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetAvailability(ctx, req.(*GetAvailabilityRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Availability)
		return ctx.Result(200, reply)
	}
}

// EnrollmentServiceHTTPServer is implemented by the enrollment service.
type EnrollmentServiceHTTPServer interface {
	SubmitEnrollment(context.Context, *SubmitEnrollmentRequest) (*Enrollment, error)
	ApproveEnrollment(context.Context, *EnrollmentIDRequest) (*Enrollment, error)
	RejectEnrollment(context.Context, *EnrollmentIDRequest) (*Enrollment, error)
	CancelEnrollment(context.Context, *EnrollmentIDRequest) (*Enrollment, error)
	BatchGetEnrollmentStatus(context.Context, *BatchEnrollmentStatusRequest) (*BatchEnrollmentStatusReply, error)
	GetEnrollmentStatus(context.Context, *GetEnrollmentStatusRequest) (*EnrollmentStatus, error)
}

// RegisterEnrollmentServiceHTTPServer mounts the EnrollmentService routes on s.
func RegisterEnrollmentServiceHTTPServer(s *http.Server, srv EnrollmentServiceHTTPServer) {
	r := s.Route("/")
	r.POST("/api/v1/enrollments", _EnrollmentService_SubmitEnrollment0_HTTP_Handler(srv))
	r.POST("/api/v1/enrollments/{id}/approve", _EnrollmentService_ApproveEnrollment0_HTTP_Handler(srv))
	r.POST("/api/v1/enrollments/{id}/reject", _EnrollmentService_RejectEnrollment0_HTTP_Handler(srv))
	r.POST("/api/v1/enrollments/{id}/cancel", _EnrollmentService_CancelEnrollment0_HTTP_Handler(srv))
	r.POST("/api/v1/enrollments/batch-status", _EnrollmentService_BatchGetEnrollmentStatus0_HTTP_Handler(srv))
	r.GET("/api/v1/enrollments/{courseId}/status", _EnrollmentService_GetEnrollmentStatus0_HTTP_Handler(srv))
}

func _EnrollmentService_SubmitEnrollment0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SubmitEnrollmentRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceSubmitEnrollment)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.SubmitEnrollment(ctx, req.(*SubmitEnrollmentRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Enrollment)
		return ctx.Result(201, reply)
	}
}

func _EnrollmentService_ApproveEnrollment0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in EnrollmentIDRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceApproveEnrollment)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ApproveEnrollment(ctx, req.(*EnrollmentIDRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Enrollment)
		return ctx.Result(200, reply)
	}
}

func _EnrollmentService_RejectEnrollment0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in EnrollmentIDRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceRejectEnrollment)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.RejectEnrollment(ctx, req.(*EnrollmentIDRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Enrollment)
		return ctx.Result(200, reply)
	}
}

func _EnrollmentService_CancelEnrollment0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in EnrollmentIDRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceCancelEnrollment)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CancelEnrollment(ctx, req.(*EnrollmentIDRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Enrollment)
		return ctx.Result(200, reply)
	}
}

func _EnrollmentService_BatchGetEnrollmentStatus0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in BatchEnrollmentStatusRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceBatchGetEnrollmentStatus)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.BatchGetEnrollmentStatus(ctx, req.(*BatchEnrollmentStatusRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*BatchEnrollmentStatusReply)
		return ctx.Result(200, reply)
	}
}

func _EnrollmentService_GetEnrollmentStatus0_HTTP_Handler(srv EnrollmentServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetEnrollmentStatusRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationEnrollmentServiceGetEnrollmentStatus)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetEnrollmentStatus(ctx, req.(*GetEnrollmentStatusRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*EnrollmentStatus)
		return ctx.Result(200, reply)
	}
}

// MaterialServiceHTTPServer is implemented by the material service.
type MaterialServiceHTTPServer interface {
	ListMaterials(context.Context, *ListMaterialsRequest) (*ListMaterialsReply, error)
}

// RegisterMaterialServiceHTTPServer mounts the MaterialService routes on s.
func RegisterMaterialServiceHTTPServer(s *http.Server, srv MaterialServiceHTTPServer) {
	r := s.Route("/")
	r.GET("/api/v1/materials/{courseId}", _MaterialService_ListMaterials0_HTTP_Handler(srv))
}

func _MaterialService_ListMaterials0_HTTP_Handler(srv MaterialServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListMaterialsRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationMaterialServiceListMaterials)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListMaterials(ctx, req.(*ListMaterialsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListMaterialsReply)
		return ctx.Result(200, reply)
	}
}

// BreakerServiceHTTPServer is implemented by the breaker service.
type BreakerServiceHTTPServer interface {
	ListBreakers(context.Context, *ListBreakersRequest) (*ListBreakersReply, error)
	ResetBreaker(context.Context, *ResetBreakerRequest) (*Breaker, error)
}

// RegisterBreakerServiceHTTPServer mounts the BreakerService routes on s.
func RegisterBreakerServiceHTTPServer(s *http.Server, srv BreakerServiceHTTPServer) {
	r := s.Route("/")
	r.GET("/api/v1/breakers", _BreakerService_ListBreakers0_HTTP_Handler(srv))
	r.POST("/api/v1/breakers/{name}/reset", _BreakerService_ResetBreaker0_HTTP_Handler(srv))
}

func _BreakerService_ListBreakers0_HTTP_Handler(srv BreakerServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListBreakersRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationBreakerServiceListBreakers)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListBreakers(ctx, req.(*ListBreakersRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListBreakersReply)
		return ctx.Result(200, reply)
	}
}

func _BreakerService_ResetBreaker0_HTTP_Handler(srv BreakerServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ResetBreakerRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationBreakerServiceResetBreaker)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ResetBreaker(ctx, req.(*ResetBreakerRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*Breaker)
		return ctx.Result(200, reply)
	}
}
