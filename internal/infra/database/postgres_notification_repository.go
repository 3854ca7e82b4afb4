// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tournament_scheduler/internal/domain/notification"
)

var ErrFailureNotFound = errors.New("notification failure not found")

// PostgresNotificationFailureRepository is the retry ledger for go-live notifications
// that could not be delivered during fan-out.
type PostgresNotificationFailureRepository struct {
	db *sql.DB
}

func NewPostgresNotificationFailureRepository(db *sql.DB) *PostgresNotificationFailureRepository {
	return &PostgresNotificationFailureRepository{db: db}
}

func (r *PostgresNotificationFailureRepository) RecordFailures(ctx context.Context, failures []*notification.Failure) error {
	if len(failures) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for notification failures: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO notification_failures (tournament_id, user_id, kind, last_error, attempts, created_at, updated_at)
                                         VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
                                         RETURNING id, created_at, updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for notification failures: %w", err)
	}
	defer stmt.Close()

	for _, f := range failures {
		attempts := f.Attempts
		if attempts <= 0 {
			attempts = 1
		}
		err := stmt.QueryRowContext(ctx, f.TournamentID, f.UserID, f.Kind, f.LastError, attempts).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error recording notification failure (tournament %s, user %q, kind %s): %w", f.TournamentID, f.UserID, f.Kind, err)
		}
		f.Attempts = attempts
	}

	return txn.Commit()
}

// ListPending returns unresolved failures with fewer than maxAttempts attempts, oldest first.
func (r *PostgresNotificationFailureRepository) ListPending(ctx context.Context, maxAttempts int, limit int) ([]*notification.Failure, error) {
	query := `SELECT id, tournament_id, user_id, kind, last_error, attempts, resolved_at, created_at, updated_at
               FROM notification_failures
               WHERE resolved_at IS NULL AND attempts < $1
               ORDER BY id ASC
               LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pending notification failures: %w", err)
	}
	defer rows.Close()

	var failures []*notification.Failure
	for rows.Next() {
		f := &notification.Failure{}
		if err := rows.Scan(&f.ID, &f.TournamentID, &f.UserID, &f.Kind, &f.LastError, &f.Attempts, &f.ResolvedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification failures: %w", err)
	}
	return failures, nil
}

func (r *PostgresNotificationFailureRepository) MarkResolved(ctx context.Context, id int64) error {
	query := `UPDATE notification_failures SET resolved_at = NOW(), updated_at = NOW() WHERE id = $1 AND resolved_at IS NULL`
	return r.execOne(ctx, query, "marking notification failure resolved", id)
}

func (r *PostgresNotificationFailureRepository) RecordAttempt(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE notification_failures SET attempts = attempts + 1, last_error = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, "recording notification retry attempt", id, lastError)
}

func (r *PostgresNotificationFailureRepository) execOne(ctx context.Context, query, action string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error %s: %w", action, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected while %s: %w", action, err)
	}
	if affected == 0 {
		return ErrFailureNotFound
	}
	return nil
}
