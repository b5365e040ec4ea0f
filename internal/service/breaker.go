package service

import (
	"context"

	v1 "CourseLane/api/v1"
	"CourseLane/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// BreakerService implements v1.BreakerServiceHTTPServer.
type BreakerService struct {
	registry *biz.BreakerRegistry
	logger   *log.Helper
}

// NewBreakerService 创建 BreakerService 实例
func NewBreakerService(registry *biz.BreakerRegistry, logger log.Logger) *BreakerService {
	return &BreakerService{
		registry: registry,
		logger:   log.NewHelper(logger),
	}
}

// ListBreakers 列出所有熔断器（仅管理员）
func (s *BreakerService) ListBreakers(ctx context.Context, _ *v1.ListBreakersRequest) (*v1.ListBreakersReply, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, biz.ErrForbidden
	}

	stats := s.registry.List()
	reply := &v1.ListBreakersReply{Breakers: make([]*v1.Breaker, 0, len(stats))}
	for _, st := range stats {
		reply.Breakers = append(reply.Breakers, convertBreaker(st))
	}
	return reply, nil
}

// ResetBreaker 强制关闭熔断器（仅管理员）
func (s *BreakerService) ResetBreaker(ctx context.Context, req *v1.ResetBreakerRequest) (*v1.Breaker, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, biz.ErrForbidden
	}

	s.logger.Infow("msg", "ResetBreaker called", "breaker", req.Name, "actor_id", p.UserID)
	stats, err := s.registry.Reset(ctx, req.Name, p.UserID)
	if err != nil {
		return nil, err
	}
	return convertBreaker(stats), nil
}
