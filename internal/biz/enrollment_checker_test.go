package biz

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/data"
	"CourseLane/internal/model"
	"CourseLane/pkg/auth"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID   = "7f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
	testCourseID = "3a9b8c7d-6e5f-4a3b-9c2d-1e0f9a8b7c6d"
)

func newTestChecker(client EnrollmentStatusClient, failOpen bool, cache data.CacheClient) *EnrollmentChecker {
	registry := NewBreakerRegistry(&conf.Breaker{FailureThreshold: 5, ResetTimeout: 30 * time.Second}, nil, nil, testLogger)
	return NewEnrollmentChecker(&conf.Enrollment{
		CacheTTL:  5 * time.Minute,
		CacheSize: 100,
		FailOpen:  failOpen,
	}, client, registry, cache, testLogger)
}

func student() *model.Principal {
	return &model.Principal{UserID: testUserID, Role: auth.RoleUser}
}

func TestIsUserEnrolled_AdminBypass(t *testing.T) {
	client := new(MockEnrollmentStatusClient)
	checker := newTestChecker(client, false, nil)

	admin := &model.Principal{UserID: "ops-admin", Role: auth.RoleAdmin}
	assert.True(t, checker.IsUserEnrolled(context.Background(), admin, testCourseID))
	client.AssertNotCalled(t, "FetchEnrollmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestIsUserEnrolled_AdminSubstringIsNotAdmin(t *testing.T) {
	client := new(MockEnrollmentStatusClient)
	checker := newTestChecker(client, false, nil)

	// a user id containing "admin" carries no privilege
	p := &model.Principal{UserID: "admin-" + testUserID, Role: auth.RoleUser}
	assert.False(t, checker.IsUserEnrolled(context.Background(), p, testCourseID))
	client.AssertNotCalled(t, "FetchEnrollmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestIsUserEnrolled_MalformedIDsUseFailurePolicy(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		courseID string
		failOpen bool
	}{
		{name: "bad user id fail open", userID: "not-a-uuid", courseID: testCourseID, failOpen: true},
		{name: "bad course id fail open", userID: testUserID, courseID: "course-1", failOpen: true},
		{name: "bad user id fail closed", userID: "not-a-uuid", courseID: testCourseID, failOpen: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockEnrollmentStatusClient)
			checker := newTestChecker(client, tt.failOpen, nil)

			p := &model.Principal{UserID: tt.userID, Role: auth.RoleUser}
			assert.Equal(t, tt.failOpen, checker.IsUserEnrolled(context.Background(), p, tt.courseID))
			client.AssertNotCalled(t, "FetchEnrollmentStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestIsUserEnrolled_CachesSuccessfulLookups(t *testing.T) {
	client := new(MockEnrollmentStatusClient)
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).Return(false, nil).Once()
	checker := newTestChecker(client, true, nil)
	ctx := context.Background()

	assert.False(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	assert.False(t, checker.IsUserEnrolled(ctx, student(), testCourseID))

	client.AssertNumberOfCalls(t, "FetchEnrollmentStatus", 1)
}

func TestIsUserEnrolled_FailurePolicy(t *testing.T) {
	for _, failOpen := range []bool{true, false} {
		client := new(MockEnrollmentStatusClient)
		client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).
			Return(false, errors.New("connection refused"))
		checker := newTestChecker(client, failOpen, nil)

		assert.Equal(t, failOpen, checker.IsUserEnrolled(context.Background(), student(), testCourseID))
	}
}

func TestIsUserEnrolled_FallbackNotCached(t *testing.T) {
	client := new(MockEnrollmentStatusClient)
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).
		Return(false, errors.New("timeout")).Once()
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).
		Return(false, nil).Once()
	checker := newTestChecker(client, true, nil)
	ctx := context.Background()

	assert.True(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	assert.False(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	client.AssertNumberOfCalls(t, "FetchEnrollmentStatus", 2)
}

func TestIsUserEnrolled_BreakerStopsRemoteCalls(t *testing.T) {
	client := new(MockEnrollmentStatusClient)
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).
		Return(false, errors.New("503"))
	checker := newTestChecker(client, true, nil)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		assert.True(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	}

	client.AssertNumberOfCalls(t, "FetchEnrollmentStatus", 5)
	assert.Equal(t, model.BreakerOpen, checker.breaker.State())
}

func TestIsUserEnrolled_CancelledCallerDoesNotTripBreaker(t *testing.T) {
	client := &contextAwareClient{enrolled: false}
	checker := newTestChecker(client, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		assert.False(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	}

	assert.Equal(t, model.BreakerClosed, checker.breaker.State())
	assert.Equal(t, 0, checker.breaker.Stats().FailureCount)

	// the real answer was cached, not the fail-open fallback
	assert.False(t, checker.IsUserEnrolled(context.Background(), student(), testCourseID))
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
}

func TestIsUserEnrolled_LeaderCancelledWhileOthersWait(t *testing.T) {
	client := &contextAwareClient{
		enrolled: true,
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	checker := newTestChecker(client, false, nil)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	results := make(chan bool, 2)
	go func() {
		results <- checker.IsUserEnrolled(leaderCtx, student(), testCourseID)
	}()
	<-client.started

	go func() {
		results <- checker.IsUserEnrolled(context.Background(), student(), testCourseID)
	}()
	cancelLeader()
	close(client.release)

	assert.True(t, <-results)
	assert.True(t, <-results)
	assert.Equal(t, model.BreakerClosed, checker.breaker.State())
	assert.Equal(t, 0, checker.breaker.Stats().FailureCount)
}

func TestIsUserEnrolled_LocalTierShortenedWithSharedCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	withShared := newTestChecker(new(MockEnrollmentStatusClient), false, data.NewCacheClient(rdb))
	assert.Equal(t, 5*time.Minute, withShared.ttl)
	assert.Equal(t, localTierMaxTTL, withShared.localTTL)

	localOnly := newTestChecker(new(MockEnrollmentStatusClient), false, nil)
	assert.Equal(t, 5*time.Minute, localOnly.localTTL)
}

func TestIsUserEnrolled_SharedCacheTier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := data.NewCacheClient(rdb)
	ctx := context.Background()

	first := new(MockEnrollmentStatusClient)
	first.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).Return(true, nil).Once()
	assert.True(t, newTestChecker(first, false, cache).IsUserEnrolled(ctx, student(), testCourseID))

	require.True(t, mr.Exists("enrollment:"+testUserID+":"+testCourseID))
	ttl := mr.TTL("enrollment:" + testUserID + ":" + testCourseID)
	assert.Equal(t, 5*time.Minute, ttl)

	// another instance answers from Redis
	second := new(MockEnrollmentStatusClient)
	assert.True(t, newTestChecker(second, false, cache).IsUserEnrolled(ctx, student(), testCourseID))
	second.AssertNotCalled(t, "FetchEnrollmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvalidateEnrollment(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	client := new(MockEnrollmentStatusClient)
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).Return(false, nil).Once()
	client.On("FetchEnrollmentStatus", mock.Anything, testUserID, testCourseID).Return(true, nil).Once()
	checker := newTestChecker(client, false, data.NewCacheClient(rdb))
	ctx := context.Background()

	assert.False(t, checker.IsUserEnrolled(ctx, student(), testCourseID))

	checker.InvalidateEnrollment(ctx, testUserID, testCourseID)
	assert.False(t, mr.Exists("enrollment:"+testUserID+":"+testCourseID))

	assert.True(t, checker.IsUserEnrolled(ctx, student(), testCourseID))
	client.AssertNumberOfCalls(t, "FetchEnrollmentStatus", 2)
}
