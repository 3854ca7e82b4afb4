// internal/app/status_manager.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tournament_scheduler/internal/domain/notification"
	"tournament_scheduler/internal/domain/registration"
	"tournament_scheduler/internal/domain/tournament"
)

// StatusManager drives tournaments through upcoming -> live -> completed and fans
// out go-live notifications. It holds no per-tournament state: the conditional
// status write in the tournament repository is what makes go-live at-most-once.
type StatusManager struct {
	tournaments   tournament.Repository
	registrations registration.Repository
	sink          notification.Sink
	failures      notification.FailureRepository // optional
	policy        Policy
	logger        *logrus.Entry
}

func NewStatusManager(
	tr tournament.Repository,
	rr registration.Repository,
	sink notification.Sink,
	failures notification.FailureRepository, // nil disables the retry ledger
	policy Policy,
	logger *logrus.Entry,
) *StatusManager {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &StatusManager{
		tournaments:   tr,
		registrations: rr,
		sink:          sink,
		failures:      failures,
		policy:        policy.withDefaults(),
		logger:        logger.WithField("component", "status_manager"),
	}
}

// Sweep evaluates every non-terminal tournament once. Only a failure to list the
// working set fails the sweep; per-tournament failures are reported in the result.
func (m *StatusManager) Sweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	report := &SweepReport{
		RunID:     uuid.NewString(),
		Now:       now,
		StartedAt: time.Now(),
	}
	log := m.logger.WithField("run_id", report.RunID)

	working, err := m.tournaments.ListNonTerminal(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list non-terminal tournaments")
		return nil, fmt.Errorf("%w: listing non-terminal tournaments: %w", ErrRepository, err)
	}
	log.WithField("tournaments", len(working)).Debug("Sweep started")

	results := make([]TournamentResult, len(working))
	var g errgroup.Group
	g.SetLimit(m.policy.SweepConcurrency)
	for i, t := range working {
		g.Go(func() error {
			results[i] = m.process(ctx, t, now)
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.FinishedAt = time.Now()
	log.WithFields(logrus.Fields{
		"transitioned": report.Count(OutcomeTransitioned),
		"unchanged":    report.Count(OutcomeUnchanged),
		"failed":       report.Count(OutcomeFailed),
		"deferred":     report.Count(OutcomeDeferred),
	}).Info("Sweep finished")
	return report, nil
}

// ManualStart forces an upcoming tournament live regardless of its start time.
// It returns tournament.ErrNotFound for unknown ids and ErrInvalidState when the
// tournament is not upcoming, including when a concurrent sweep won the race.
func (m *StatusManager) ManualStart(ctx context.Context, id string, now time.Time) (*FanoutResult, error) {
	log := m.logger.WithFields(logrus.Fields{"tournament_id": id, "trigger": "manual"})

	t, err := m.tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, tournament.ErrNotFound) {
			log.Warn("Manual start requested for unknown tournament")
			return nil, fmt.Errorf("tournament %s: %w", id, err)
		}
		log.WithError(err).Error("Failed to fetch tournament for manual start")
		return nil, fmt.Errorf("%w: fetching tournament %s: %w", ErrRepository, id, err)
	}
	if t.Status != tournament.StatusUpcoming {
		log.WithField("status", t.Status).Warn("Manual start rejected")
		return nil, fmt.Errorf("%w: tournament %s is %s", ErrInvalidState, id, t.Status)
	}
	if now.Before(t.StartTime) {
		log.WithField("early_by", t.StartTime.Sub(now).String()).Info("Starting tournament ahead of schedule")
	}

	fanout, err := m.goLive(ctx, t)
	if err != nil {
		if errors.Is(err, tournament.ErrStatusConflict) {
			log.Info("Tournament was transitioned concurrently; skipping fan-out")
			return nil, fmt.Errorf("%w: tournament %s: %w", ErrInvalidState, id, err)
		}
		if errors.Is(err, tournament.ErrNotFound) {
			return nil, fmt.Errorf("tournament %s: %w", id, err)
		}
		return nil, fmt.Errorf("starting tournament %s: %w", id, err)
	}
	return fanout, nil
}

// nextStatus applies the transition rules; ok is false when nothing changes.
func (m *StatusManager) nextStatus(t *tournament.Tournament, now time.Time) (tournament.Status, bool) {
	switch t.Status {
	case tournament.StatusUpcoming:
		if !now.Before(t.StartTime) {
			return tournament.StatusLive, true
		}
	case tournament.StatusLive:
		if !now.Before(t.StartTime.Add(m.policy.CompletionWindow)) {
			return tournament.StatusCompleted, true
		}
	}
	return "", false
}

func (m *StatusManager) process(ctx context.Context, t *tournament.Tournament, now time.Time) (res TournamentResult) {
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic while processing tournament: %v", r)
			res.Reason = res.Err.Error()
			m.logger.WithField("tournament_id", res.TournamentID).WithError(res.Err).Error("Recovered from panic during sweep")
		}
	}()

	res = TournamentResult{TournamentID: t.ID, From: t.Status, To: t.Status}
	log := m.logger.WithFields(logrus.Fields{"tournament_id": t.ID, "from": t.Status})

	if err := ctx.Err(); err != nil {
		res.Outcome = OutcomeDeferred
		res.Reason = "sweep deadline reached before processing"
		return res
	}

	next, ok := m.nextStatus(t, now)
	if !ok {
		res.Outcome = OutcomeUnchanged
		return res
	}
	log = log.WithField("to", next)

	var err error
	switch next {
	case tournament.StatusLive:
		res.Fanout, err = m.goLive(ctx, t)
	case tournament.StatusCompleted:
		err = m.tournaments.UpdateStatus(ctx, t.ID, tournament.StatusCompleted, tournament.StatusLive)
	}

	switch {
	case err == nil:
		res.To = next
		res.Outcome = OutcomeTransitioned
		log.Info("Tournament status updated")
	case errors.Is(err, tournament.ErrStatusConflict):
		res.Outcome = OutcomeUnchanged
		res.Reason = "status changed concurrently"
		log.Debug("Status write lost the race; another caller already transitioned the tournament")
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Reason = err.Error()
		log.WithError(err).Error("Failed to update tournament status")
	}
	return res
}

// goLive writes live only if the tournament is still upcoming, then fans out.
// Fan-out never runs when the write fails, so a lost race sends nothing.
func (m *StatusManager) goLive(ctx context.Context, t *tournament.Tournament) (*FanoutResult, error) {
	if err := m.tournaments.UpdateStatus(ctx, t.ID, tournament.StatusLive, tournament.StatusUpcoming); err != nil {
		return nil, err
	}

	// The tournament is live from here on; the fan-out gets its own deadline so a
	// sweep running out of time does not cut it short.
	fanoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.policy.FanoutTimeout)
	defer cancel()

	res := m.fanOut(fanoutCtx, t)
	m.recordFailures(fanoutCtx, res.Failures())
	return res, nil
}
