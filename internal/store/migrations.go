package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all GoPlan tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS problems (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		definition       TEXT NOT NULL,
		work_count       INTEGER NOT NULL,
		contractor_count INTEGER NOT NULL,
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		problem_id       TEXT NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		chromosome_count INTEGER NOT NULL,
		feasible_count   INTEGER NOT NULL,
		best_fitness     INTEGER NOT NULL,
		elapsed_ms       INTEGER NOT NULL,
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_results (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx     INTEGER NOT NULL,
		fitness INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		PRIMARY KEY (run_id, idx)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_problem_id ON runs(problem_id)`,
	`CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
