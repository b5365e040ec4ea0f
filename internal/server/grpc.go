package server

import (
	v1 "CourseLane/api/v1"
	"CourseLane/internal/conf"
	"CourseLane/internal/server/middleware"
	"CourseLane/internal/service"
	"CourseLane/pkg/auth"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
)

// NewGRPCServer new a gRPC server exposing the enrollment status service.
func NewGRPCServer(c *conf.Server, ac *conf.Auth, tokens *auth.Manager, status *service.EnrollmentStatusGRPCService, logger log.Logger) *grpc.Server {
	opts := grpcOptions(tokens, ac.ServiceKey, pkglog.NewLogHelper(logger))
	if c.Grpc != nil {
		if c.Grpc.Network != "" {
			opts = append(opts, grpc.Network(c.Grpc.Network))
		}
		if c.Grpc.Addr != "" {
			opts = append(opts, grpc.Address(c.Grpc.Addr))
		}
		if c.Grpc.Timeout > 0 {
			opts = append(opts, grpc.Timeout(c.Grpc.Timeout))
		}
	}
	srv := grpc.NewServer(opts...)

	v1.RegisterEnrollmentStatusGRPCServer(srv, status)

	return srv
}

func grpcOptions(tokens *auth.Manager, serviceKey string, logHelper *pkglog.LogHelper) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
			middleware.Logging(logHelper),
			middleware.Auth(tokens, serviceKey, logHelper),
		),
	}
}
