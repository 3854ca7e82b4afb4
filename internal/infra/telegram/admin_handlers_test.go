package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/tournament"
)

func newHandlers(admin *fakeAdmin) *adminHandlers {
	return &adminHandlers{ctx: context.Background(), admin: admin, adminID: testAdminID, logger: testLogger()}
}

func TestStartTournamentCommand(t *testing.T) {
	t.Run("rejects non-admin senders", func(t *testing.T) {
		admin := &fakeAdmin{}
		c := newFakeContext(1, "t1")
		require.NoError(t, newHandlers(admin).startTournament(c))
		assert.Equal(t, unauthorizedReply, c.lastReply())
		assert.Empty(t, admin.startedID)
	})

	t.Run("requires a tournament id", func(t *testing.T) {
		c := newFakeContext(testAdminID)
		require.NoError(t, newHandlers(&fakeAdmin{}).startTournament(c))
		assert.Contains(t, c.lastReply(), "Invalid format")
	})

	t.Run("reports fan-out outcome", func(t *testing.T) {
		admin := &fakeAdmin{fanout: &app.FanoutResult{
			TournamentID:  "t1",
			Notifications: app.BatchResult{Succeeded: []string{"u1", "u2"}, Failed: []app.BatchFailure{{ID: "u3", Err: errors.New("x")}}},
			Announced:     true,
		}}
		c := newFakeContext(testAdminID, "t1")
		require.NoError(t, newHandlers(admin).startTournament(c))
		assert.Equal(t, "t1", admin.startedID)
		assert.Equal(t, "Tournament t1 is now LIVE.\nNotified 2 of 3 registered users, announcement created.", c.lastReply())
	})

	cases := map[string]struct {
		err  error
		want string
	}{
		"not found":     {fmt.Errorf("tournament t1: %w", tournament.ErrNotFound), "Tournament t1 not found."},
		"invalid state": {fmt.Errorf("%w: tournament t1 is live", app.ErrInvalidState), "no longer upcoming"},
		"other":         {errors.New("mongo down"), "mongo down"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newFakeContext(testAdminID, "t1")
			require.NoError(t, newHandlers(&fakeAdmin{startErr: tc.err}).startTournament(c))
			assert.Contains(t, c.lastReply(), tc.want)
		})
	}
}

func TestSweepCommand(t *testing.T) {
	started := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	admin := &fakeAdmin{report: &app.SweepReport{
		RunID:     "run-1",
		StartedAt: started,
		Results: []app.TournamentResult{
			{TournamentID: "t1", Outcome: app.OutcomeTransitioned},
			{TournamentID: "t2", Outcome: app.OutcomeFailed, Reason: "timeout"},
		},
	}}
	c := newFakeContext(testAdminID)
	require.NoError(t, newHandlers(admin).sweep(c))
	assert.Equal(t, "Sweep run-1 at 2025-03-01 18:00:00\nTransitioned: 1, unchanged: 0, failed: 1, deferred: 0\n- t2: timeout", c.lastReply())

	busy := newFakeContext(testAdminID)
	require.NoError(t, newHandlers(&fakeAdmin{sweepErr: app.ErrSweepInProgress}).sweep(busy))
	assert.Contains(t, busy.lastReply(), "already running")
}

func TestPrizeCommand(t *testing.T) {
	t.Run("computes a preview", func(t *testing.T) {
		admin := &fakeAdmin{}
		c := newFakeContext(testAdminID, "50", "100", "10", "2000", "100", "squad")
		require.NoError(t, newHandlers(admin).prize(c))
		assert.Equal(t, []float64{50, 100, 10, 2000, 100}, admin.prizeArgs)
		assert.Contains(t, c.lastReply(), "Prize pool: 4500.00")
		assert.Contains(t, c.lastReply(), "Kill rewards: 96 x 100.00 = 9600.00")
		assert.Contains(t, c.lastReply(), "Within budget: NO")
	})

	t.Run("defaults to squad", func(t *testing.T) {
		admin := &fakeAdmin{}
		c := newFakeContext(testAdminID, "10", "8", "0", "10", "1")
		require.NoError(t, newHandlers(admin).prize(c))
		assert.Equal(t, "squad", admin.matchType)
	})

	for name, args := range map[string][]string{
		"too few args":        {"1", "2"},
		"not a number":        {"x", "100", "10", "2000", "100"},
		"negative":            {"10", "-1", "10", "2000", "100"},
		"commission over 100": {"10", "100", "150", "2000", "100"},
		"nan entry fee":       {"NaN", "100", "10", "2000", "100"},
		"infinite players":    {"10", "Inf", "10", "2000", "100"},
		"negative infinity":   {"10", "100", "10", "-Inf", "100"},
	} {
		t.Run(name, func(t *testing.T) {
			admin := &fakeAdmin{}
			c := newFakeContext(testAdminID, args...)
			require.NoError(t, newHandlers(admin).prize(c))
			assert.Nil(t, admin.prizeArgs)
			assert.NotEmpty(t, c.lastReply())
		})
	}
}

func TestReportsCommand(t *testing.T) {
	admin := &fakeAdmin{}
	c := newFakeContext(testAdminID)
	require.NoError(t, newHandlers(admin).reports(c))
	assert.Equal(t, defaultReportsLimit, admin.limit)
	assert.Equal(t, "No sweep reports recorded yet.", c.lastReply())

	admin.summaries = []app.SweepSummary{{RunID: "a"}, {RunID: "b"}}
	c = newFakeContext(testAdminID, "500")
	require.NoError(t, newHandlers(admin).reports(c))
	assert.Equal(t, maxReportsLimit, admin.limit)
	assert.Contains(t, c.lastReply(), "Sweep a")
	assert.Contains(t, c.lastReply(), "Sweep b")
}

func TestBotCommands(t *testing.T) {
	h := &botCommands{adminID: testAdminID, logger: testLogger()}

	c := newFakeContext(testAdminID)
	require.NoError(t, h.start(c))
	assert.Contains(t, c.lastReply(), "Hello, Ana")

	c = newFakeContext(testAdminID)
	require.NoError(t, h.help(c))
	assert.Contains(t, c.lastReply(), "/start_tournament")

	c = newFakeContext(7)
	require.NoError(t, h.help(c))
	assert.Equal(t, "No commands are available to you.", c.lastReply())
}

func TestNotifyAdmin(t *testing.T) {
	s := &fakeSender{}
	adapter := &TelebotAdapter{bot: s, adminChatID: testAdminID}

	require.NoError(t, adapter.NotifyAdmin("sweep failed"))
	assert.Equal(t, "4242", s.to.Recipient())
	assert.Equal(t, "sweep failed", s.what)

	s.err = errors.New("forbidden")
	assert.Error(t, adapter.NotifyAdmin("again"))
}
