// internal/domain/notification/failure.go
package notification

import (
	"context"
	"database/sql"
	"time"
)

// FailureKind tells the retrier which sink call to repeat.
type FailureKind string

const (
	FailureKindUser         FailureKind = "USER_NOTIFICATION"
	FailureKindAnnouncement FailureKind = "ANNOUNCEMENT"
	// FailureKindFanout means registrations could not be listed, so the whole fan-out is pending.
	FailureKindFanout FailureKind = "FANOUT"
)

// Failure is one undelivered go-live notification or announcement.
// UserID is empty for announcements.
type Failure struct {
	ID           int64
	TournamentID string
	UserID       string
	Kind         FailureKind
	LastError    string
	Attempts     int
	ResolvedAt   sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FailureRepository is the retry ledger for best-effort fan-out.
type FailureRepository interface {
	RecordFailures(ctx context.Context, failures []*Failure) error
	ListPending(ctx context.Context, maxAttempts int, limit int) ([]*Failure, error)
	MarkResolved(ctx context.Context, id int64) error
	RecordAttempt(ctx context.Context, id int64, lastError string) error
}
