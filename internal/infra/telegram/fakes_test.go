package telegram

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/prize"
)

const testAdminID int64 = 4242

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeContext implements the few telebot.Context methods the handlers call.
type fakeContext struct {
	telebot.Context
	sender *telebot.User
	args   []string
	sent   []string
}

func newFakeContext(senderID int64, args ...string) *fakeContext {
	return &fakeContext{sender: &telebot.User{ID: senderID, FirstName: "Ana"}, args: args}
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }
func (c *fakeContext) Args() []string        { return c.args }
func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

func (c *fakeContext) lastReply() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type fakeAdmin struct {
	fanout    *app.FanoutResult
	startErr  error
	startedID string
	report    *app.SweepReport
	sweepErr  error
	summaries []app.SweepSummary
	limit     int
	prizeArgs []float64
	matchType string
}

func (a *fakeAdmin) StartTournament(_ context.Context, _ int64, id string) (*app.FanoutResult, error) {
	a.startedID = id
	return a.fanout, a.startErr
}

func (a *fakeAdmin) RunSweep(_ context.Context, _ int64) (*app.SweepReport, error) {
	return a.report, a.sweepErr
}

func (a *fakeAdmin) RecentSweeps(_ context.Context, _ int64, limit int) ([]app.SweepSummary, error) {
	a.limit = limit
	return a.summaries, nil
}

func (a *fakeAdmin) PreviewPrize(_ int64, entryFee, totalPlayers, commission, firstPrize, perKill float64, matchType string) (prize.Distribution, error) {
	a.prizeArgs = []float64{entryFee, totalPlayers, commission, firstPrize, perKill}
	a.matchType = matchType
	return prize.ComputeDistribution(entryFee, totalPlayers, commission, firstPrize, perKill, matchType), nil
}

type fakeSender struct {
	to   telebot.Recipient
	what interface{}
	err  error
}

func (s *fakeSender) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	s.to = to
	s.what = what
	return &telebot.Message{}, s.err
}
