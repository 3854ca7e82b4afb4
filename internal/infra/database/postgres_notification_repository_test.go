package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament_scheduler/internal/domain/notification"
)

func newMock(t *testing.T) (*PostgresNotificationFailureRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresNotificationFailureRepository(db), mock
}

func TestRecordFailures_InsertsInOneTransaction(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO notification_failures"))
	prep.ExpectQuery().
		WithArgs("t1", "u1", notification.FailureKindUser, "sink down", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))
	prep.ExpectQuery().
		WithArgs("t1", "", notification.FailureKindAnnouncement, "sink down", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(8, now, now))
	mock.ExpectCommit()

	failures := []*notification.Failure{
		{TournamentID: "t1", UserID: "u1", Kind: notification.FailureKindUser, LastError: "sink down", Attempts: 1},
		{TournamentID: "t1", Kind: notification.FailureKindAnnouncement, LastError: "sink down"},
	}
	require.NoError(t, repo.RecordFailures(context.Background(), failures))

	assert.Equal(t, int64(7), failures[0].ID)
	assert.Equal(t, int64(8), failures[1].ID)
	assert.Equal(t, 1, failures[1].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailures_RollsBackOnError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO notification_failures"))
	prep.ExpectQuery().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.RecordFailures(context.Background(), []*notification.Failure{
		{TournamentID: "t1", UserID: "u1", Kind: notification.FailureKindUser, LastError: "x", Attempts: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailures_EmptyIsNoop(t *testing.T) {
	repo, mock := newMock(t)
	require.NoError(t, repo.RecordFailures(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "tournament_id", "user_id", "kind", "last_error", "attempts", "resolved_at", "created_at", "updated_at"}).
		AddRow(1, "t1", "u1", "USER_NOTIFICATION", "timeout", 2, nil, now, now).
		AddRow(2, "t2", "", "FANOUT", "list failed", 1, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_failures")).
		WithArgs(5, 100).
		WillReturnRows(rows)

	pending, err := repo.ListPending(context.Background(), 5, 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, notification.FailureKindUser, pending[0].Kind)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.False(t, pending[0].ResolvedAt.Valid)
	assert.Equal(t, notification.FailureKindFanout, pending[1].Kind)
	assert.Empty(t, pending[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkResolvedAndRecordAttempt(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("SET resolved_at = NOW()")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET attempts = attempts + 1")).
		WithArgs(int64(4), "still down").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET resolved_at = NOW()")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkResolved(context.Background(), 3))
	require.NoError(t, repo.RecordAttempt(context.Background(), 4, "still down"))
	assert.ErrorIs(t, repo.MarkResolved(context.Background(), 99), ErrFailureNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
