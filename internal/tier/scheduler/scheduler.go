// Package scheduler runs the monthly spend reset on the store calendar.
package scheduler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MonthlySpec fires at 00:00 on the first day of every month.
const MonthlySpec = "0 0 1 * *"

const lockKey = "lock:tier:monthly-reset"

// Locker keeps two instances from resetting at the same time. The lock must be held for ttl,
// since a reset can run for as long as the scheduler's timeout.
type Locker interface {
	LockFor(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

type Scheduler struct {
	cron    *cron.Cron
	uc      tier.UseCase
	locker  Locker
	logger  logger.ZapLogger
	timeout time.Duration
	now     func() time.Time
}

func New(uc tier.UseCase, loc *time.Location, locker Locker, log logger.ZapLogger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		uc:      uc,
		locker:  locker,
		logger:  log,
		timeout: 30 * time.Minute,
		now:     time.Now,
	}
}

// Start runs one catch-up reset for a month boundary missed while the service was down, then
// schedules the monthly job.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(MonthlySpec, func() { s.Run(context.Background()) }); err != nil {
		return err
	}
	s.Run(ctx)
	s.cron.Start()
	s.logger.Info("Monthly tier reset scheduler started", zap.String("schedule", MonthlySpec))
	return nil
}

// Stop waits for a running reset to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.locker != nil {
		unlock, err := s.locker.LockFor(ctx, lockKey, s.timeout)
		if err != nil {
			s.logger.Info("monthly reset skipped, another instance holds the lock", zap.Error(err))
			return
		}
		defer unlock()
	}

	summary, err := s.uc.ResetMonthlySpend(ctx, s.now())
	if err != nil {
		s.logger.Error("monthly reset failed", zap.Error(err))
		return
	}
	if summary.Failed > 0 {
		s.logger.Warn("monthly reset left customers unreset", zap.Int("failed", summary.Failed))
	}
}
