package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/goplan/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Problem CRUD ---

func (s *SQLiteStore) CreateProblem(ctx context.Context, p *model.Problem) error {
	s.logger.Debug("sql", "op", "insert", "table", "problems", "id", p.ID)

	defJSON, err := json.Marshal(p.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO problems (id, name, definition, work_count, contractor_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(defJSON), p.WorkCount, p.ContractorCount,
		p.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, definition, work_count, contractor_count, created_at
		 FROM problems WHERE id = ?`, id)
	p, err := scanProblem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) ListProblems(ctx context.Context, opts model.ListOptions) ([]*model.Problem, int, error) {
	opts.Clamp()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, definition, work_count, contractor_count, created_at
		 FROM problems ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var problems []*model.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, 0, err
		}
		problems = append(problems, p)
	}
	return problems, total, rows.Err()
}

func (s *SQLiteStore) DeleteProblem(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "problems", "id", id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM problems WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Run operations ---

// CreateRun inserts the run summary and its per-chromosome results in one
// transaction, so a run is never visible without its results.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run, results []model.RunResult) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID, "results", len(results))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, problem_id, chromosome_count, feasible_count, best_fitness, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProblemID, run.ChromosomeCount, run.FeasibleCount,
		int64(run.BestFitness), run.ElapsedMS,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, idx, fitness, verdict) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, run.ID, r.Index, int64(r.Fitness), string(r.Verdict)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, problem_id, chromosome_count, feasible_count, best_fitness, elapsed_ms, created_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRunsByProblem(ctx context.Context, problemID string, opts model.ListOptions) ([]*model.Run, int, error) {
	opts.Clamp()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE problem_id = ?`, problemID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, problem_id, chromosome_count, feasible_count, best_fitness, elapsed_ms, created_at
		 FROM runs WHERE problem_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		problemID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) ListRunResults(ctx context.Context, runID string) ([]model.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, idx, fitness, verdict FROM run_results WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.RunResult
	for rows.Next() {
		var r model.RunResult
		var fitness int64
		var verdict string
		if err := rows.Scan(&r.RunID, &r.Index, &fitness, &verdict); err != nil {
			return nil, err
		}
		r.Fitness = model.Fitness(fitness)
		r.Verdict = model.Verdict(verdict)
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(row rowScanner) (*model.Problem, error) {
	var p model.Problem
	var defJSON, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &defJSON, &p.WorkCount, &p.ContractorCount, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(defJSON), &p.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	var fitness int64
	var createdAt string
	if err := row.Scan(&run.ID, &run.ProblemID, &run.ChromosomeCount, &run.FeasibleCount,
		&fitness, &run.ElapsedMS, &createdAt); err != nil {
		return nil, err
	}
	run.BestFitness = model.Fitness(fitness)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	return &run, nil
}
