package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/telegram"
	"tournament_scheduler/internal/infra/lock"
)

const (
	sweepLockKey = "sweep"
	retryLockKey = "notification-retry"

	defaultSweepTimeout = 4 * time.Minute
)

// Sweeper is the part of app.StatusManager the scheduler drives.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*app.SweepReport, error)
	RetryFailedNotifications(ctx context.Context, maxAttempts, limit int) (*app.RetryReport, error)
}

type Config struct {
	SweepSpec        string // e.g. "*/5 * * * *"
	RetrySpec        string // empty disables the retry job
	SweepTimeout     time.Duration
	LeaseTTL         time.Duration // defaults to twice SweepTimeout
	RetryMaxAttempts int
	RetryBatch       int
}

// TournamentScheduler runs the periodic lifecycle sweep and the notification retry job.
type TournamentScheduler struct {
	cronEngine *cron.Cron
	sweeper    Sweeper
	locker     lock.Locker
	ledger     app.SweepLedger        // optional
	notifier   telegram.AdminNotifier // optional
	cfg        Config
	logger     *logrus.Entry
	now        func() time.Time
}

func NewTournamentScheduler(
	sweeper Sweeper,
	locker lock.Locker,
	ledger app.SweepLedger,
	notifier telegram.AdminNotifier,
	cfg Config,
	logger *logrus.Entry,
) *TournamentScheduler {
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = defaultSweepTimeout
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 2 * cfg.SweepTimeout
	}
	logger = logger.WithField("component", "scheduler")
	cronLogger := cron.PrintfLogger(logger)
	return &TournamentScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper:  sweeper,
		locker:   locker,
		ledger:   ledger,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *TournamentScheduler) Start() error {
	s.logger.Info("Starting tournament scheduler...")

	_, err := s.cronEngine.AddFunc(s.cfg.SweepSpec, func() {
		s.logger.Debug("Cron job triggered for lifecycle sweep")
		if _, err := s.RunSweep(context.Background()); err != nil {
			if errors.Is(err, app.ErrSweepInProgress) {
				s.logger.Info("Previous sweep still holds the lease; skipping this tick")
				return
			}
			s.logger.WithError(err).Error("Lifecycle sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add sweep cron job %q: %w", s.cfg.SweepSpec, err)
	}

	if s.cfg.RetrySpec != "" {
		_, err = s.cronEngine.AddFunc(s.cfg.RetrySpec, func() {
			s.logger.Debug("Cron job triggered for notification retry")
			if _, err := s.RunRetry(context.Background()); err != nil && !errors.Is(err, app.ErrSweepInProgress) {
				s.logger.WithError(err).Error("Notification retry failed")
			}
		})
		if err != nil {
			return fmt.Errorf("could not add notification retry cron job %q: %w", s.cfg.RetrySpec, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"sweep_spec": s.cfg.SweepSpec,
		"retry_spec": s.cfg.RetrySpec,
	}).Info("Tournament scheduler started")
	return nil
}

// RunSweep runs one sweep tick under the sweep lease. It returns app.ErrSweepInProgress
// when another tick holds the lease.
func (s *TournamentScheduler) RunSweep(ctx context.Context) (*app.SweepReport, error) {
	release, err := s.acquire(ctx, sweepLockKey)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, sweepLockKey, release)

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	report, err := s.sweeper.Sweep(sweepCtx, s.now())
	if err != nil {
		s.alert(fmt.Sprintf("Tournament sweep failed: %v", err))
		return nil, err
	}

	s.persist(ctx, report)
	if failed := report.Failed(); len(failed) > 0 {
		s.alert(failureAlert(report.RunID, failed))
	}
	return report, nil
}

// RunRetry runs one pass over the notification retry ledger under its own lease.
func (s *TournamentScheduler) RunRetry(ctx context.Context) (*app.RetryReport, error) {
	release, err := s.acquire(ctx, retryLockKey)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, retryLockKey, release)

	retryCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()
	return s.sweeper.RetryFailedNotifications(retryCtx, s.cfg.RetryMaxAttempts, s.cfg.RetryBatch)
}

func (s *TournamentScheduler) acquire(ctx context.Context, key string) (lock.ReleaseFunc, error) {
	release, err := s.locker.Acquire(ctx, key, s.cfg.LeaseTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, app.ErrSweepInProgress
		}
		return nil, fmt.Errorf("acquiring %s lease: %w", key, err)
	}
	return release, nil
}

func (s *TournamentScheduler) release(ctx context.Context, key string, release lock.ReleaseFunc) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WithError(err).WithField("lease", key).Warn("Failed to release lease; it will expire on its own")
	}
}

func (s *TournamentScheduler) persist(ctx context.Context, report *app.SweepReport) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Save(context.WithoutCancel(ctx), report.Summary()); err != nil {
		s.logger.WithError(err).WithField("run_id", report.RunID).Error("Failed to save sweep report")
	}
}

func (s *TournamentScheduler) alert(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAdmin(text); err != nil {
		s.logger.WithError(err).Warn("Failed to send admin alert")
	}
}

func failureAlert(runID string, failed []app.TournamentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sweep %s: %d tournament(s) failed to transition:\n", runID, len(failed))
	for _, r := range failed {
		fmt.Fprintf(&b, "- %s: %s\n", r.TournamentID, r.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *TournamentScheduler) Stop() {
	s.logger.Info("Stopping tournament scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Tournament scheduler gracefully stopped")
}
