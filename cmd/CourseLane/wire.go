//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"CourseLane/internal/biz"
	"CourseLane/internal/conf"
	"CourseLane/internal/data"
	"CourseLane/internal/server"
	"CourseLane/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Auth, *conf.Enrollment, *conf.Breaker, *conf.Quota, *conf.RateLimit, *conf.Notify, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		server.ProviderSet,
		newExpiryCron,
		newApp,
	))
}
