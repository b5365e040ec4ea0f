package server

import (
	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"
	"CourseLane/internal/conf"
	"CourseLane/internal/server/middleware"
	"CourseLane/internal/service"
	"CourseLane/pkg/auth"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/selector"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	ac *conf.Auth,
	rc *conf.RateLimit,
	tokens *auth.Manager,
	limiter *biz.RateLimiterUseCase,
	courses *service.CourseService,
	enrollments *service.EnrollmentService,
	materials *service.MaterialService,
	breakers *service.BreakerService,
	logger log.Logger,
) *http.Server {
	var submitRPM int32
	if rc != nil {
		submitRPM = rc.SubmitRPM
	}

	opts := httpOptions(tokens, ac.ServiceKey, limiter, submitRPM, pkglog.NewLogHelper(logger))
	if c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, http.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout > 0 {
			opts = append(opts, http.Timeout(c.Http.Timeout))
		}
	}
	srv := http.NewServer(opts...)

	v1.RegisterCourseServiceHTTPServer(srv, courses)
	v1.RegisterEnrollmentServiceHTTPServer(srv, enrollments)
	v1.RegisterMaterialServiceHTTPServer(srv, materials)
	v1.RegisterBreakerServiceHTTPServer(srv, breakers)

	return srv
}

// httpOptions returns the middleware chain and envelope encoders shared by every route.
func httpOptions(tokens *auth.Manager, serviceKey string, limiter *biz.RateLimiterUseCase, submitRPM int32, logHelper *pkglog.LogHelper) []http.ServerOption {
	return []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			middleware.Logging(logHelper),
			middleware.Auth(tokens, serviceKey, logHelper),
			selector.Server(middleware.RateLimit(limiter, submitRPM, logHelper)).
				Path(v1.OperationEnrollmentServiceSubmitEnrollment).
				Build(),
		),
		http.ResponseEncoder(EncodeResponse),
		http.ErrorEncoder(EncodeError),
	}
}
