package app

import (
	"context"
	"sort"
	"time"

	"tournament_scheduler/internal/domain/notification"
	"tournament_scheduler/internal/domain/prize"
	"tournament_scheduler/internal/domain/tournament"
)

// Outcome is what happened to one tournament during a sweep.
type Outcome string

const (
	OutcomeTransitioned Outcome = "transitioned"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeFailed       Outcome = "failed"
	// OutcomeDeferred means the sweep ran out of time before reaching the tournament; the next tick picks it up.
	OutcomeDeferred Outcome = "deferred"
)

// TournamentResult is the per-tournament line of a SweepReport.
type TournamentResult struct {
	TournamentID string
	From         tournament.Status
	To           tournament.Status
	Outcome      Outcome
	Reason       string
	Err          error
	Fanout       *FanoutResult
}

// SweepReport is returned by every sweep that managed to list its working set.
type SweepReport struct {
	RunID      string
	Now        time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []TournamentResult
}

func (r *SweepReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failed returns the results whose processing failed.
func (r *SweepReport) Failed() []TournamentResult {
	var failed []TournamentResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *SweepReport) ResultFor(tournamentID string) (TournamentResult, bool) {
	for _, res := range r.Results {
		if res.TournamentID == tournamentID {
			return res, true
		}
	}
	return TournamentResult{}, false
}

// IDsWithOutcome lists tournament ids with the given outcome in id order.
func (r *SweepReport) IDsWithOutcome(o Outcome) []string {
	ids := make([]string, 0)
	for _, res := range r.Results {
		if res.Outcome == o {
			ids = append(ids, res.TournamentID)
		}
	}
	sort.Strings(ids)
	return ids
}

// FanoutResult describes the go-live notification fan-out of one tournament.
type FanoutResult struct {
	TournamentID    string
	Registrations   int
	Notifications   BatchResult
	Announced       bool
	AnnouncementErr error
	// ListErr is set when registrations could not be loaded; nothing was sent.
	ListErr      error
	Distribution prize.Distribution
}

// Failures converts the undelivered parts of the fan-out into retry ledger rows.
func (f *FanoutResult) Failures() []*notification.Failure {
	var out []*notification.Failure
	if f.ListErr != nil {
		out = append(out, &notification.Failure{
			TournamentID: f.TournamentID,
			Kind:         notification.FailureKindFanout,
			LastError:    f.ListErr.Error(),
			Attempts:     1,
		})
		return out
	}
	for _, failed := range f.Notifications.Failed {
		out = append(out, &notification.Failure{
			TournamentID: f.TournamentID,
			UserID:       failed.ID,
			Kind:         notification.FailureKindUser,
			LastError:    failed.Err.Error(),
			Attempts:     1,
		})
	}
	if f.AnnouncementErr != nil {
		out = append(out, &notification.Failure{
			TournamentID: f.TournamentID,
			Kind:         notification.FailureKindAnnouncement,
			LastError:    f.AnnouncementErr.Error(),
			Attempts:     1,
		})
	}
	return out
}

// SweepSummary is the persisted, operator-facing form of a SweepReport.
type SweepSummary struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Transitioned []string
	Failed       []string
	Unchanged    int
	Deferred     int
	// FailureReasons maps a failed tournament id to its error text.
	FailureReasons map[string]string
}

func (r *SweepReport) Summary() SweepSummary {
	reasons := make(map[string]string)
	for _, res := range r.Failed() {
		reasons[res.TournamentID] = res.Reason
	}
	return SweepSummary{
		RunID:          r.RunID,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Transitioned:   r.IDsWithOutcome(OutcomeTransitioned),
		Failed:         r.IDsWithOutcome(OutcomeFailed),
		Unchanged:      r.Count(OutcomeUnchanged),
		Deferred:       r.Count(OutcomeDeferred),
		FailureReasons: reasons,
	}
}

// SweepLedger persists sweep summaries for operational reporting.
type SweepLedger interface {
	Save(ctx context.Context, summary SweepSummary) error
	ListRecent(ctx context.Context, limit int) ([]SweepSummary, error)
}
