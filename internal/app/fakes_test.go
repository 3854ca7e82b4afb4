package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tournament_scheduler/internal/domain/notification"
	"tournament_scheduler/internal/domain/registration"
	"tournament_scheduler/internal/domain/tournament"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type statusWrite struct {
	ID       string
	Next     tournament.Status
	Expected tournament.Status
}

// fakeTournamentRepo stores tournaments by value so callers never share state with the store.
type fakeTournamentRepo struct {
	mu          sync.Mutex
	items       map[string]tournament.Tournament
	writes      []statusWrite
	listErr     error
	updateErrs  map[string]error
	panicOn     map[string]bool
	beforeWrite func(id string)
}

func newFakeTournamentRepo(ts ...tournament.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{
		items:      make(map[string]tournament.Tournament),
		updateErrs: make(map[string]error),
		panicOn:    make(map[string]bool),
	}
	for _, t := range ts {
		r.items[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) ListNonTerminal(_ context.Context) ([]*tournament.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*tournament.Tournament, 0, len(r.items))
	for _, t := range r.items {
		if t.Status.IsTerminal() {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*tournament.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, tournament.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id string, next, expected tournament.Status) error {
	if r.beforeWrite != nil {
		r.beforeWrite(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panicOn[id] {
		panic("storage exploded")
	}
	if err := r.updateErrs[id]; err != nil {
		return err
	}
	t, ok := r.items[id]
	if !ok {
		return tournament.ErrNotFound
	}
	if t.Status != expected {
		return tournament.ErrStatusConflict
	}
	t.Status = next
	r.items[id] = t
	r.writes = append(r.writes, statusWrite{ID: id, Next: next, Expected: expected})
	return nil
}

func (r *fakeTournamentRepo) status(id string) tournament.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Status
}

func (r *fakeTournamentRepo) writesTo(id string, next tournament.Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.writes {
		if w.ID == id && w.Next == next {
			n++
		}
	}
	return n
}

func (r *fakeTournamentRepo) totalWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

type fakeRegistrationRepo struct {
	byTournament map[string][]*registration.Registration
	err          error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byTournament: make(map[string][]*registration.Registration)}
}

func (r *fakeRegistrationRepo) register(tournamentID string, userIDs ...string) {
	for _, u := range userIDs {
		r.byTournament[tournamentID] = append(r.byTournament[tournamentID], &registration.Registration{
			ID:           fmt.Sprintf("%s-%s", tournamentID, u),
			UserID:       u,
			TournamentID: tournamentID,
		})
	}
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, tournamentID string) ([]*registration.Registration, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byTournament[tournamentID], nil
}

type sentNotification struct {
	UserID       string
	Title        string
	Body         string
	TournamentID string
}

type sentAnnouncement struct {
	Title        string
	Body         string
	TournamentID string
}

type fakeSink struct {
	mu              sync.Mutex
	notifications   []sentNotification
	announcements   []sentAnnouncement
	failUsers       map[string]error
	announcementErr error
}

func newFakeSink() *fakeSink {
	return &fakeSink{failUsers: make(map[string]error)}
}

func (s *fakeSink) CreateUserNotification(_ context.Context, userID, title, body, tournamentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failUsers[userID]; err != nil {
		return fmt.Errorf("%w: %w", notification.ErrSink, err)
	}
	s.notifications = append(s.notifications, sentNotification{UserID: userID, Title: title, Body: body, TournamentID: tournamentID})
	return nil
}

func (s *fakeSink) CreateAnnouncement(_ context.Context, title, body, tournamentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.announcementErr != nil {
		return fmt.Errorf("%w: %w", notification.ErrSink, s.announcementErr)
	}
	s.announcements = append(s.announcements, sentAnnouncement{Title: title, Body: body, TournamentID: tournamentID})
	return nil
}

func (s *fakeSink) notificationsFor(tournamentID string) []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentNotification
	for _, n := range s.notifications {
		if n.TournamentID == tournamentID {
			out = append(out, n)
		}
	}
	return out
}

func (s *fakeSink) announcementsFor(tournamentID string) []sentAnnouncement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentAnnouncement
	for _, a := range s.announcements {
		if a.TournamentID == tournamentID {
			out = append(out, a)
		}
	}
	return out
}

type fakeFailureRepo struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*notification.Failure
	listErr  error
	resolved []int64
}

func newFakeFailureRepo() *fakeFailureRepo {
	return &fakeFailureRepo{rows: make(map[int64]*notification.Failure)}
}

func (r *fakeFailureRepo) RecordFailures(_ context.Context, failures []*notification.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range failures {
		r.nextID++
		row := *f
		row.ID = r.nextID
		r.rows[row.ID] = &row
	}
	return nil
}

func (r *fakeFailureRepo) ListPending(_ context.Context, maxAttempts int, limit int) ([]*notification.Failure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*notification.Failure
	for _, f := range r.rows {
		if f.ResolvedAt.Valid || f.Attempts >= maxAttempts {
			continue
		}
		row := *f
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFailureRepo) MarkResolved(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return errors.New("no such failure")
	}
	f.ResolvedAt.Valid = true
	f.ResolvedAt.Time = time.Now()
	r.resolved = append(r.resolved, id)
	return nil
}

func (r *fakeFailureRepo) RecordAttempt(_ context.Context, id int64, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return errors.New("no such failure")
	}
	f.Attempts++
	f.LastError = lastError
	return nil
}

func (r *fakeFailureRepo) pending() []*notification.Failure {
	out, _ := r.ListPending(context.Background(), 1<<30, 1<<30)
	return out
}

type fakeSweepRunner struct {
	report *SweepReport
	err    error
	calls  int
}

func (f *fakeSweepRunner) RunSweep(_ context.Context) (*SweepReport, error) {
	f.calls++
	return f.report, f.err
}
