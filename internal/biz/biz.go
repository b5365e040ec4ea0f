// Package biz contains business logic layer implementations.
// This layer holds the core business rules and domain models.
package biz

import (
	"CourseLane/internal/data"
	"CourseLane/pkg/auth"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewCourseUsecase,
	NewQuotaUsecase,
	NewMaterialUsecase,
	NewEnrollmentChecker,
	NewBreakerRegistry,
	NewRateLimiterUseCase,
	auth.NewManagerFromConfig,
	// Import data layer providers
	data.NewCourseRepo,
	data.NewEnrollmentRepo,
	data.NewMaterialRepo,
	data.NewEnrollmentServiceClient,
	data.NewBreakerStateRepo,
	data.NewRateLimitRepo,
	data.NewAuditLogger,
	data.NewNotifier,
	// Bind data layer implementations to biz layer interfaces
	wire.Bind(new(CourseRepo), new(*data.CourseRepo)),
	wire.Bind(new(EnrollmentRepo), new(*data.EnrollmentRepo)),
	wire.Bind(new(MaterialRepo), new(*data.MaterialRepo)),
	wire.Bind(new(EnrollmentStatusClient), new(*data.EnrollmentServiceClient)),
	wire.Bind(new(BreakerStateRepo), new(*data.BreakerStateRepo)),
	wire.Bind(new(RateLimitRepo), new(*data.RateLimitRepo)),
	wire.Bind(new(AuditLogger), new(*data.AuditLoggerImpl)),
	wire.Bind(new(Notifier), new(*data.Notifier)),
)
