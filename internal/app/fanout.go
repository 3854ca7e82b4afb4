package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tournament_scheduler/internal/domain/notification"
	"tournament_scheduler/internal/domain/registration"
	"tournament_scheduler/internal/domain/tournament"
)

// fanOut notifies every registered user, then creates the single announcement.
// Nothing here is rolled back: the tournament is already live.
func (m *StatusManager) fanOut(ctx context.Context, t *tournament.Tournament) *FanoutResult {
	log := m.logger.WithField("tournament_id", t.ID)
	res := &FanoutResult{TournamentID: t.ID, Distribution: t.Distribution()}

	if !res.Distribution.WithinBudget {
		log.WithFields(logrus.Fields{
			"prize_pool":               res.Distribution.PrizePool,
			"total_prize_distribution": res.Distribution.TotalPrizeDistribution,
		}).Warn("Tournament prize distribution exceeds its prize pool")
	}

	regs, err := m.registrations.ListByTournament(ctx, t.ID)
	if err != nil {
		res.ListErr = fmt.Errorf("%w: listing registrations: %w", ErrRepository, err)
		log.WithError(err).Error("Failed to list registrations; go-live notifications not sent")
		return res
	}
	res.Registrations = len(regs)

	userIDs := uniqueUserIDs(regs)
	if len(userIDs) == 0 {
		log.Info("No registrations found; nothing to notify")
		return res
	}

	title := notification.GoLiveTitle(t)
	body := notification.GoLiveMessage(t)

	res.Notifications = runBestEffort(ctx, userIDs, m.policy.FanoutConcurrency, func(ctx context.Context, userID string) error {
		return m.sink.CreateUserNotification(ctx, userID, title, body, t.ID)
	})
	for _, f := range res.Notifications.Failed {
		log.WithField("user_id", f.ID).WithError(f.Err).Warn("Failed to create go-live notification")
	}

	if err := m.sink.CreateAnnouncement(ctx, title, body, t.ID); err != nil {
		res.AnnouncementErr = err
		log.WithError(err).Error("Failed to create go-live announcement")
	} else {
		res.Announced = true
	}

	log.WithFields(logrus.Fields{
		"registrations": res.Registrations,
		"notified":      len(res.Notifications.Succeeded),
		"failed":        len(res.Notifications.Failed),
		"announced":     res.Announced,
	}).Info("Go-live fan-out finished")
	return res
}

func (m *StatusManager) recordFailures(ctx context.Context, failures []*notification.Failure) {
	if m.failures == nil || len(failures) == 0 {
		return
	}
	if err := m.failures.RecordFailures(ctx, failures); err != nil {
		m.logger.WithError(err).WithField("failures", len(failures)).Error("Failed to record undelivered notifications for retry")
	}
}

// uniqueUserIDs keeps the first registration of each user, so a user registered
// twice still gets one notification.
func uniqueUserIDs(regs []*registration.Registration) []string {
	seen := make(map[string]struct{}, len(regs))
	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		if r == nil || r.UserID == "" {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	return ids
}
