package history

import (
	"context"
	"fmt"
	"time"

	"aurelion/internal/metrics"
)

// Run is one recorded pipeline execution.
type Run struct {
	RunID      string
	Mode       string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Seconds    float64
}

// StageRow is one recorded stage execution of a run.
type StageRow struct {
	RunID   string
	Name    string
	Status  string
	Seconds float64
	RowsIn  int
	RowsOut int
	Error   string
}

// RecordRun stores a run and its stages in one transaction.
func (s *Store) RecordRun(ctx context.Context, record metrics.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, status, started_at, finished_at, seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.Mode, record.Status,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.FinishedAt.UTC().Format(time.RFC3339Nano),
		record.Seconds)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, stage := range record.Stages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO stage_executions (run_id, name, status, seconds, rows_in, rows_out, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.RunID, stage.Name, stage.Status, stage.Seconds,
			stage.RowsIn, stage.RowsOut, stage.ErrorMsg)
		if err != nil {
			return fmt.Errorf("insert stage %s: %w", stage.Name, err)
		}
	}

	return tx.Commit()
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, mode, status, started_at, finished_at, seconds
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.RunID, &run.Mode, &run.Status, &started, &finished, &run.Seconds); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stages returns the stage executions of one run in insertion order.
func (s *Store) Stages(ctx context.Context, runID string) ([]StageRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, status, seconds, rows_in, rows_out, error
		 FROM stage_executions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRow
	for rows.Next() {
		var stage StageRow
		if err := rows.Scan(&stage.RunID, &stage.Name, &stage.Status, &stage.Seconds,
			&stage.RowsIn, &stage.RowsOut, &stage.Error); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}
