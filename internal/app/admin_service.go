package app

import (
	"context"
	"fmt"
	"time"

	"tournament_scheduler/internal/domain/prize"
)

// SweepRunner runs one guarded sweep tick on demand.
type SweepRunner interface {
	RunSweep(ctx context.Context) (*SweepReport, error)
}

// AdminService exposes the scheduler's manual operations to the admin bot.
type AdminService struct {
	manager         *StatusManager
	sweeps          SweepRunner
	ledger          SweepLedger // optional
	adminTelegramID int64
	startTimeout    time.Duration // zero leaves the caller's deadline alone
	now             func() time.Time
}

func NewAdminService(manager *StatusManager, sweeps SweepRunner, ledger SweepLedger, adminID int64) *AdminService {
	return &AdminService{
		manager:         manager,
		sweeps:          sweeps,
		ledger:          ledger,
		adminTelegramID: adminID,
		now:             time.Now,
	}
}

// WithManualStartTimeout bounds how long a manual start may take.
func (s *AdminService) WithManualStartTimeout(d time.Duration) *AdminService {
	s.startTimeout = d
	return s
}

// StartTournament force-starts an upcoming tournament on behalf of the admin.
func (s *AdminService) StartTournament(ctx context.Context, performingAdminID int64, tournamentID string) (*FanoutResult, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if s.startTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.startTimeout)
		defer cancel()
	}
	return s.manager.ManualStart(ctx, tournamentID, s.now())
}

// RunSweep triggers an immediate sweep tick.
func (s *AdminService) RunSweep(ctx context.Context, performingAdminID int64) (*SweepReport, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.sweeps.RunSweep(ctx)
}

// RecentSweeps lists the latest persisted sweep summaries.
func (s *AdminService) RecentSweeps(ctx context.Context, performingAdminID int64, limit int) ([]SweepSummary, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if s.ledger == nil {
		return nil, nil
	}
	summaries, err := s.ledger.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sweeps: %w", err)
	}
	return summaries, nil
}

// PreviewPrize runs the prize calculator for a draft tournament configuration.
func (s *AdminService) PreviewPrize(performingAdminID int64, entryFee, totalPlayers, commission, firstPrize, perKill float64, matchType string) (prize.Distribution, error) {
	if performingAdminID != s.adminTelegramID {
		return prize.Distribution{}, ErrAdminNotAuthorized
	}
	return prize.ComputeDistribution(entryFee, totalPlayers, commission, firstPrize, perKill, matchType), nil
}
