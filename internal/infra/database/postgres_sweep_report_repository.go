package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq" // For pq.Array

	"tournament_scheduler/internal/app"
)

// PostgresSweepReportRepository stores one row per sweep tick for operators.
type PostgresSweepReportRepository struct {
	db *sql.DB
}

func NewPostgresSweepReportRepository(db *sql.DB) *PostgresSweepReportRepository {
	return &PostgresSweepReportRepository{db: db}
}

func (r *PostgresSweepReportRepository) Save(ctx context.Context, s app.SweepSummary) error {
	reasons := s.FailureReasons
	if reasons == nil {
		reasons = map[string]string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("error encoding failure reasons for sweep %s: %w", s.RunID, err)
	}

	query := `INSERT INTO sweep_reports (run_id, started_at, finished_at, transitioned, failed, unchanged, deferred, failure_reasons)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (run_id) DO NOTHING`
	_, err = r.db.ExecContext(ctx, query,
		s.RunID, s.StartedAt, s.FinishedAt,
		pq.Array(nonNil(s.Transitioned)), pq.Array(nonNil(s.Failed)),
		s.Unchanged, s.Deferred, reasonsJSON,
	)
	if err != nil {
		return fmt.Errorf("error saving sweep report %s: %w", s.RunID, err)
	}
	return nil
}

// ListRecent returns the latest sweep summaries, newest first.
func (r *PostgresSweepReportRepository) ListRecent(ctx context.Context, limit int) ([]app.SweepSummary, error) {
	query := `SELECT run_id, started_at, finished_at, transitioned, failed, unchanged, deferred, failure_reasons
               FROM sweep_reports
               ORDER BY started_at DESC
               LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing sweep reports: %w", err)
	}
	defer rows.Close()

	var summaries []app.SweepSummary
	for rows.Next() {
		var s app.SweepSummary
		var reasonsJSON []byte
		if err := rows.Scan(&s.RunID, &s.StartedAt, &s.FinishedAt,
			pq.Array(&s.Transitioned), pq.Array(&s.Failed),
			&s.Unchanged, &s.Deferred, &reasonsJSON,
		); err != nil {
			return nil, fmt.Errorf("error scanning sweep report: %w", err)
		}
		if len(reasonsJSON) > 0 {
			if err := json.Unmarshal(reasonsJSON, &s.FailureReasons); err != nil {
				return nil, fmt.Errorf("error decoding failure reasons for sweep %s: %w", s.RunID, err)
			}
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweep reports: %w", err)
	}
	return summaries, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
