package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/model"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultFailureThreshold = 5
	defaultResetTimeout     = 30 * time.Second
	// sharedPollInterval CLOSED 状态下读取共享熔断状态的最小间隔
	sharedPollInterval = time.Second
)

// BreakerStateRepo 在多个实例之间共享熔断状态
// Implementation is in data layer (data.BreakerStateRepo).
type BreakerStateRepo interface {
	Enabled() bool
	MarkOpen(ctx context.Context, name string, at time.Time, ttl time.Duration) error
	OpenSince(ctx context.Context, name string) (*time.Time, error)
	AcquireProbe(ctx context.Context, name string, ttl time.Duration) (bool, error)
	MarkClosed(ctx context.Context, name string) error
}

// BreakerOption customizes a circuit breaker.
type BreakerOption func(*breakerCore)

// WithClock 替换 time.Now（测试中用于推进时间）
func WithClock(now func() time.Time) BreakerOption {
	return func(c *breakerCore) {
		c.now = now
	}
}

// WithSharedState publishes trips through repo so every instance honors them.
func WithSharedState(repo BreakerStateRepo) BreakerOption {
	return func(c *breakerCore) {
		c.shared = repo
	}
}

// WithAuditLogger records state transitions in the audit trail.
func WithAuditLogger(audit AuditLogger) BreakerOption {
	return func(c *breakerCore) {
		c.audit = audit
	}
}

// callToken ties an admitted call to the breaker generation it was admitted in.
// Results from an older generation are ignored.
type callToken struct {
	generation uint64
	probe      bool
}

type transition struct {
	from, to     model.BreakerState
	at           time.Time
	failureCount int
	remote       bool
}

// breakerCore holds the state machine shared by every CircuitBreaker[T].
type breakerCore struct {
	name         string
	threshold    int
	resetTimeout time.Duration
	now          func() time.Time
	shared       BreakerStateRepo
	audit        AuditLogger
	logger       *pkglog.LogHelper

	mu           sync.Mutex
	state        model.BreakerState
	failureCount int
	lastFailure  time.Time
	generation   uint64
	sharedPolled time.Time
}

// CircuitBreaker guards calls to one remote target and returns fallback while the target is failing.
//
// CLOSED: calls run; failureThreshold consecutive failures trip to OPEN.
// OPEN: calls return fallback until resetTimeout has elapsed since the last failure.
// HALF_OPEN: exactly one trial call runs; success closes, failure re-opens and restarts the timer.
type CircuitBreaker[T any] struct {
	*breakerCore
	fallback T
}

// NewCircuitBreaker creates a breaker in the CLOSED state.
func NewCircuitBreaker[T any](name string, threshold int, resetTimeout time.Duration, fallback T, logger log.Logger, opts ...BreakerOption) *CircuitBreaker[T] {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = defaultResetTimeout
	}

	core := &breakerCore{
		name:         name,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
		logger:       pkglog.NewLogHelper(log.With(logger, "breaker", name)),
		state:        model.BreakerClosed,
	}
	for _, opt := range opts {
		opt(core)
	}

	return &CircuitBreaker[T]{breakerCore: core, fallback: fallback}
}

// Execute runs op under the breaker. It never returns an error: failures, panics and
// short-circuited calls all yield the fallback value.
func (cb *CircuitBreaker[T]) Execute(ctx context.Context, op func(context.Context) (T, error)) T {
	token, ok := cb.admit(ctx)
	if !ok {
		return cb.fallback
	}

	result, err := safeCall(ctx, op)
	cb.complete(ctx, token, err)
	if err != nil {
		cb.logger.Debugw("msg", "guarded call failed", "error", err)
		return cb.fallback
	}
	return result
}

func safeCall[T any](ctx context.Context, op func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (c *breakerCore) sharedEnabled() bool {
	return c.shared != nil && c.shared.Enabled()
}

// admit decides whether a call may run.
func (c *breakerCore) admit(ctx context.Context) (callToken, bool) {
	var remoteOpen *time.Time
	if c.pollShared() {
		since, err := c.shared.OpenSince(ctx, c.name)
		if err != nil {
			c.logger.Warnw("msg", "shared breaker state unavailable, using local state", "error", err)
		} else {
			remoteOpen = since
		}
	}

	c.mu.Lock()
	now := c.now()
	var changes []transition

	if remoteOpen != nil && c.state != model.BreakerHalfOpen &&
		remoteOpen.After(c.lastFailure) && now.Sub(*remoteOpen) < c.resetTimeout {
		if c.state != model.BreakerOpen {
			changes = append(changes, c.setState(model.BreakerOpen, now, true))
		}
		c.lastFailure = *remoteOpen
	}

	var token callToken
	admitted := false
	switch c.state {
	case model.BreakerClosed:
		token, admitted = callToken{generation: c.generation}, true
	case model.BreakerOpen:
		if now.Sub(c.lastFailure) >= c.resetTimeout {
			changes = append(changes, c.setState(model.BreakerHalfOpen, now, false))
			token, admitted = callToken{generation: c.generation, probe: true}, true
		}
	case model.BreakerHalfOpen:
		// trial already in flight
	}
	c.mu.Unlock()

	if admitted && token.probe && c.sharedEnabled() {
		acquired, err := c.shared.AcquireProbe(ctx, c.name, c.resetTimeout)
		if err != nil {
			c.logger.Warnw("msg", "shared probe lock unavailable, probing locally", "error", err)
			acquired = true
		}
		if !acquired {
			// another instance owns the trial; stay OPEN and keep the timer
			c.mu.Lock()
			if c.generation == token.generation && c.state == model.BreakerHalfOpen {
				c.state = model.BreakerOpen
				c.generation++
			}
			c.mu.Unlock()
			c.emit(ctx, changes[:len(changes)-1])
			return callToken{}, false
		}
	}

	c.emit(ctx, changes)
	return token, admitted
}

// pollShared reports whether admit should read the shared trip key.
// While CLOSED the key is read at most once per sharedPollInterval.
func (c *breakerCore) pollShared() bool {
	if !c.sharedEnabled() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if c.state == model.BreakerClosed && !c.sharedPolled.IsZero() && now.Sub(c.sharedPolled) < sharedPollInterval {
		return false
	}
	c.sharedPolled = now
	return true
}

// abandoned reports whether the call ended because the caller went away.
func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil && stderrors.Is(err, context.Canceled)
}

// complete records the outcome of an admitted call.
func (c *breakerCore) complete(ctx context.Context, token callToken, callErr error) {
	c.mu.Lock()
	if token.generation != c.generation {
		c.mu.Unlock()
		return
	}

	if callErr != nil && abandoned(ctx, callErr) {
		// 调用方取消不代表依赖故障；试探调用被放弃时回到 OPEN，保留原计时以便下一个请求立即试探
		if token.probe && c.state == model.BreakerHalfOpen {
			c.state = model.BreakerOpen
			c.generation++
		}
		c.mu.Unlock()
		return
	}

	now := c.now()
	var changes []transition

	if callErr == nil {
		c.failureCount = 0
		if token.probe && c.state == model.BreakerHalfOpen {
			changes = append(changes, c.setState(model.BreakerClosed, now, false))
		}
	} else {
		c.failureCount++
		c.lastFailure = now
		switch {
		case token.probe && c.state == model.BreakerHalfOpen:
			changes = append(changes, c.setState(model.BreakerOpen, now, false))
		case c.state == model.BreakerClosed && c.failureCount >= c.threshold:
			changes = append(changes, c.setState(model.BreakerOpen, now, false))
		}
	}
	c.mu.Unlock()

	c.emit(ctx, changes)
}

// setState must be called with mu held.
func (c *breakerCore) setState(to model.BreakerState, at time.Time, remote bool) transition {
	t := transition{from: c.state, to: to, at: at, failureCount: c.failureCount, remote: remote}
	c.state = to
	c.generation++
	if to == model.BreakerClosed {
		c.failureCount = 0
	}
	return t
}

// emit performs the side effects of transitions outside the lock.
func (c *breakerCore) emit(ctx context.Context, changes []transition) {
	if len(changes) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	for _, t := range changes {
		var event string
		switch t.to {
		case model.BreakerOpen:
			event = model.AuditEventBreakerOpened
			c.logger.Breaker("circuit breaker opened",
				"from", t.from,
				"failure_count", t.failureCount,
				"threshold", c.threshold,
				"remote", t.remote)
			if !t.remote && c.sharedEnabled() {
				if err := c.shared.MarkOpen(ctx, c.name, t.at, c.resetTimeout); err != nil {
					c.logger.Warnw("msg", "failed to publish breaker trip", "error", err)
				}
			}
		case model.BreakerHalfOpen:
			event = model.AuditEventBreakerHalfOpen
			c.logger.Infow("msg", "circuit breaker half-open, running trial call")
		case model.BreakerClosed:
			event = model.AuditEventBreakerClosed
			c.logger.Breaker("circuit breaker closed", "from", t.from)
			if c.sharedEnabled() {
				if err := c.shared.MarkClosed(ctx, c.name); err != nil {
					c.logger.Warnw("msg", "failed to clear shared breaker state", "error", err)
				}
			}
		}

		if c.audit != nil {
			c.audit.Record(ctx, &model.AuditEntry{
				EventType: event,
				SubjectID: c.name,
				Details: map[string]interface{}{
					"from":          string(t.from),
					"to":            string(t.to),
					"failure_count": t.failureCount,
					"remote":        t.remote,
				},
			})
		}
	}
}

// State returns the current state.
func (c *breakerCore) State() model.BreakerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of the breaker.
func (c *breakerCore) Stats() model.BreakerStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := model.BreakerStats{
		Name:             c.name,
		State:            c.state,
		FailureCount:     c.failureCount,
		FailureThreshold: c.threshold,
		ResetTimeout:     c.resetTimeout.String(),
	}
	if !c.lastFailure.IsZero() {
		last := c.lastFailure
		stats.LastFailureTime = &last
	}
	return stats
}

// Reset forces the breaker CLOSED and clears the shared trip.
func (c *breakerCore) Reset(ctx context.Context, actorID string) {
	c.mu.Lock()
	from := c.state
	c.state = model.BreakerClosed
	c.failureCount = 0
	c.generation++
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if c.sharedEnabled() {
		if err := c.shared.MarkClosed(ctx, c.name); err != nil {
			c.logger.Warnw("msg", "failed to clear shared breaker state", "error", err)
		}
	}

	c.logger.Infow("msg", "circuit breaker reset", "from", from, "actor_id", actorID)
	if c.audit != nil {
		c.audit.Record(ctx, &model.AuditEntry{
			EventType: model.AuditEventBreakerReset,
			SubjectID: c.name,
			ActorID:   actorID,
			Details:   map[string]interface{}{"from": string(from)},
		})
	}
}

// managedBreaker is the type-erased view the registry keeps.
type managedBreaker interface {
	Stats() model.BreakerStats
	Reset(ctx context.Context, actorID string)
}

// BreakerRegistry 熔断器注册表，每个远程目标一个熔断器
type BreakerRegistry struct {
	threshold    int
	resetTimeout time.Duration
	opts         []BreakerOption
	logger       log.Logger

	mu       sync.RWMutex
	breakers map[string]managedBreaker
}

// NewBreakerRegistry creates a registry whose breakers share the configured threshold,
// reset timeout, shared state and audit logger.
func NewBreakerRegistry(c *conf.Breaker, shared BreakerStateRepo, audit AuditLogger, logger log.Logger) *BreakerRegistry {
	r := &BreakerRegistry{
		threshold:    defaultFailureThreshold,
		resetTimeout: defaultResetTimeout,
		logger:       logger,
		breakers:     make(map[string]managedBreaker),
	}
	if c != nil {
		r.threshold = c.FailureThreshold
		r.resetTimeout = c.ResetTimeout
	}
	if shared != nil {
		r.opts = append(r.opts, WithSharedState(shared))
	}
	if audit != nil {
		r.opts = append(r.opts, WithAuditLogger(audit))
	}
	return r
}

// GetOrCreateBreaker returns the breaker registered under name, creating it on first use.
// It panics if name is already registered with a different result type.
func GetOrCreateBreaker[T any](r *BreakerRegistry, name string, fallback T, opts ...BreakerOption) *CircuitBreaker[T] {
	r.mu.RLock()
	existing, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return mustBreaker[T](name, existing)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.breakers[name]; ok {
		return mustBreaker[T](name, existing)
	}

	all := append(append([]BreakerOption{}, r.opts...), opts...)
	cb := NewCircuitBreaker(name, r.threshold, r.resetTimeout, fallback, r.logger, all...)
	r.breakers[name] = cb
	return cb
}

func mustBreaker[T any](name string, b managedBreaker) *CircuitBreaker[T] {
	cb, ok := b.(*CircuitBreaker[T])
	if !ok {
		panic(fmt.Sprintf("circuit breaker %q registered with a different result type", name))
	}
	return cb
}

// List 返回所有熔断器快照（按名称排序）
func (r *BreakerRegistry) List() []model.BreakerStats {
	r.mu.RLock()
	stats := make([]model.BreakerStats, 0, len(r.breakers))
	for _, b := range r.breakers {
		stats = append(stats, b.Stats())
	}
	r.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Reset forces the named breaker CLOSED.
func (r *BreakerRegistry) Reset(ctx context.Context, name, actorID string) (model.BreakerStats, error) {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if !ok {
		return model.BreakerStats{}, ErrBreakerNotFound
	}

	b.Reset(ctx, actorID)
	return b.Stats(), nil
}
