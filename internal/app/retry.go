package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tournament_scheduler/internal/domain/notification"
	"tournament_scheduler/internal/domain/tournament"
)

// RetryReport summarises one pass over the notification retry ledger.
type RetryReport struct {
	Attempted int
	Resolved  int
	Failed    int
}

// RetryFailedNotifications re-attempts undelivered go-live notifications recorded
// by earlier fan-outs. Rows that keep failing are retried until maxAttempts.
func (m *StatusManager) RetryFailedNotifications(ctx context.Context, maxAttempts, limit int) (*RetryReport, error) {
	report := &RetryReport{}
	if m.failures == nil {
		return report, nil
	}

	pending, err := m.failures.ListPending(ctx, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing pending notification failures: %w", ErrRepository, err)
	}
	if len(pending) == 0 {
		return report, nil
	}

	cache := make(map[string]*tournament.Tournament)
	for _, f := range pending {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++
		log := m.logger.WithFields(logrus.Fields{
			"failure_id":    f.ID,
			"tournament_id": f.TournamentID,
			"kind":          f.Kind,
			"attempt":       f.Attempts + 1,
		})

		err := m.retryOne(ctx, f, cache)
		if err != nil {
			report.Failed++
			log.WithError(err).Warn("Notification retry failed")
			if errAttempt := m.failures.RecordAttempt(ctx, f.ID, err.Error()); errAttempt != nil {
				log.WithError(errAttempt).Error("Failed to record retry attempt")
			}
			continue
		}

		report.Resolved++
		if errResolve := m.failures.MarkResolved(ctx, f.ID); errResolve != nil {
			log.WithError(errResolve).Error("Failed to mark notification failure as resolved")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"resolved":  report.Resolved,
		"failed":    report.Failed,
	}).Info("Notification retry pass finished")
	return report, nil
}

func (m *StatusManager) retryOne(ctx context.Context, f *notification.Failure, cache map[string]*tournament.Tournament) error {
	t, ok := cache[f.TournamentID]
	if !ok {
		var err error
		t, err = m.tournaments.GetByID(ctx, f.TournamentID)
		if err != nil {
			return fmt.Errorf("fetching tournament %s: %w", f.TournamentID, err)
		}
		cache[f.TournamentID] = t
	}

	title := notification.GoLiveTitle(t)
	body := notification.GoLiveMessage(t)

	switch f.Kind {
	case notification.FailureKindUser:
		return m.sink.CreateUserNotification(ctx, f.UserID, title, body, t.ID)
	case notification.FailureKindAnnouncement:
		return m.sink.CreateAnnouncement(ctx, title, body, t.ID)
	case notification.FailureKindFanout:
		res := m.fanOut(ctx, t)
		if res.ListErr != nil {
			return res.ListErr
		}
		// Partial failures of the re-run become their own ledger rows.
		m.recordFailures(ctx, res.Failures())
		return nil
	default:
		return fmt.Errorf("unknown notification failure kind %q", f.Kind)
	}
}
