package biz

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"CourseLane/internal/data"
	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/mock"
)

var testLogger = log.DefaultLogger

// MockCourseRepo is a mock implementation of CourseRepo for testing.
type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) CreateCourse(ctx context.Context, course *data.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepo) GetCourse(ctx context.Context, id string) (*data.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Course), args.Error(1)
}

func (m *MockCourseRepo) UpdateCourseQuota(ctx context.Context, id string, quota, entryQuota, bundleQuota int32) (*data.Course, error) {
	args := m.Called(ctx, id, quota, entryQuota, bundleQuota)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Course), args.Error(1)
}

// MockEnrollmentRepo is a mock implementation of EnrollmentRepo for testing.
type MockEnrollmentRepo struct {
	mock.Mock
}

func (m *MockEnrollmentRepo) GetUsage(ctx context.Context, courseID string) (data.QuotaUsage, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(data.QuotaUsage), args.Error(1)
}

func (m *MockEnrollmentRepo) ReserveSeat(ctx context.Context, enrollment *data.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepo) GetEnrollment(ctx context.Context, id string) (*data.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) TransitionStatus(ctx context.Context, id string, from, to data.EnrollmentStatus, actorID string) (*data.Enrollment, error) {
	args := m.Called(ctx, id, from, to, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*data.Enrollment, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) HasApprovedEnrollment(ctx context.Context, userID, courseID string) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentRepo) ApprovedPairs(ctx context.Context, pairs []data.UserCourse) (map[data.UserCourse]bool, error) {
	args := m.Called(ctx, pairs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[data.UserCourse]bool), args.Error(1)
}

// MockMaterialRepo is a mock implementation of MaterialRepo for testing.
type MockMaterialRepo struct {
	mock.Mock
}

func (m *MockMaterialRepo) ListByCourse(ctx context.Context, courseID string) ([]*data.Material, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*data.Material), args.Error(1)
}

// MockEnrollmentStatusClient is a mock implementation of EnrollmentStatusClient for testing.
type MockEnrollmentStatusClient struct {
	mock.Mock
}

func (m *MockEnrollmentStatusClient) FetchEnrollmentStatus(ctx context.Context, userID, courseID string) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

// MockRateLimitRepo is a mock implementation of RateLimitRepo for testing.
type MockRateLimitRepo struct {
	mock.Mock
}

func (m *MockRateLimitRepo) IncrementRPM(ctx context.Context, subject string) (int32, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockRateLimitRepo) RetryAfter(ctx context.Context, subject string) (time.Duration, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(time.Duration), args.Error(1)
}

// recordingAudit keeps every audit entry in memory.
type recordingAudit struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, entry *model.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.EventType)
	}
	return out
}

// recordingNotifier keeps every published event in memory.
type recordingNotifier struct {
	mu     sync.Mutex
	events []*model.EnrollmentEvent
	err    error
}

func (n *recordingNotifier) PublishEnrollmentEvent(_ context.Context, event *model.EnrollmentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// contextAwareClient is a healthy enrollment service that honors the call context.
// When release is set the call blocks until it is closed.
type contextAwareClient struct {
	enrolled bool
	started  chan struct{}
	release  chan struct{}
	calls    int32
}

func (c *contextAwareClient) FetchEnrollmentStatus(ctx context.Context, _, _ string) (bool, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.started != nil {
		select {
		case c.started <- struct{}{}:
		default:
		}
	}
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.enrolled, nil
}
