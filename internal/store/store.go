package store

import (
	"context"

	"github.com/me/goplan/pkg/model"
)

// Store defines the persistence layer for GoPlan entities: registered
// problems and the evaluation runs scored against them. The evaluation core
// never touches the store; only the service layer does.
type Store interface {
	// Problem CRUD
	CreateProblem(ctx context.Context, p *model.Problem) error
	GetProblem(ctx context.Context, id string) (*model.Problem, error)
	ListProblems(ctx context.Context, opts model.ListOptions) ([]*model.Problem, int, error)
	DeleteProblem(ctx context.Context, id string) error

	// Run operations
	CreateRun(ctx context.Context, run *model.Run, results []model.RunResult) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRunsByProblem(ctx context.Context, problemID string, opts model.ListOptions) ([]*model.Run, int, error)
	ListRunResults(ctx context.Context, runID string) ([]model.RunResult, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
