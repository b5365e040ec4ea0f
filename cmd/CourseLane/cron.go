package main

import (
	"context"
	"time"

	"CourseLane/internal/biz"
	"CourseLane/internal/conf"
	pkglog "CourseLane/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
)

const (
	// defaultExpireSpec runs the expiry job hourly (秒 分 时 日 月 周).
	defaultExpireSpec = "0 0 * * * *"
	expireJobTimeout  = 30 * time.Minute
)

// ExpiryCron cancels PENDING enrollments older than the pending TTL so their seats return to the pool.
// It implements transport.Server and is started and stopped with the application.
type ExpiryCron struct {
	cron   *cron.Cron
	spec   string
	quota  *biz.QuotaUsecase
	logger *pkglog.LogHelper
}

func newExpiryCron(c *conf.Quota, quota *biz.QuotaUsecase, logger log.Logger) (*ExpiryCron, error) {
	spec := defaultExpireSpec
	if c != nil && c.ExpireCron != "" {
		spec = c.ExpireCron
	}

	job := &ExpiryCron{
		cron:   cron.New(cron.WithSeconds()),
		spec:   spec,
		quota:  quota,
		logger: pkglog.NewLogHelper(logger),
	}
	if _, err := job.cron.AddFunc(spec, job.run); err != nil {
		return nil, err
	}
	return job, nil
}

func (j *ExpiryCron) run() {
	ctx, cancel := context.WithTimeout(context.Background(), expireJobTimeout)
	defer cancel()

	start := time.Now()
	expired, err := j.quota.ExpirePendingEnrollments(ctx, 0)
	if err != nil {
		j.logger.Errorw("msg", "pending enrollment expiry failed", "expired", expired, "error", err, "type", "scheduler")
		return
	}
	if expired > 0 {
		j.logger.Scheduler("Expired pending enrollments",
			"expired", expired,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Start starts the scheduler.
func (j *ExpiryCron) Start(context.Context) error {
	j.cron.Start()
	j.logger.Scheduler("Pending expiry job started", "spec", j.spec)
	return nil
}

// Stop waits for a running job to finish or ctx to be done.
func (j *ExpiryCron) Stop(ctx context.Context) error {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	return nil
}
