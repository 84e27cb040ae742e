/*
store.go - Persistence interface for scenarios and simulation runs

PURPOSE:
  Defines the interface between the API and the database. Scenarios are
  editable documents (save overwrites by id). Runs are an append-only
  history of simulations executed against a scenario.

APPEND-ONLY RUNS:
  - AppendRun(): single run write, rejected when the id already exists
  - NO update or delete of runs. Deleting a scenario keeps its history.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - scenario/store/memory.go: In-memory for tests and the CLI

SEE ALSO:
  - scenario.go: The stored document
  - api/handlers.go: Main consumer
*/
package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a scenario id does not exist.
	ErrNotFound = errors.New("scenario not found")

	// ErrDuplicateRun is returned when a run id was already recorded.
	ErrDuplicateRun = errors.New("run already recorded")
)

// Record is a stored scenario with its bookkeeping timestamps.
type Record struct {
	Scenario  Scenario
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Run summarizes one simulation executed against a stored scenario.
type Run struct {
	ID             string
	ScenarioID     string
	AsOf           time.Time
	GrandTotal     decimal.Decimal
	TotalHeadcount int
	Employees      int // classified roster rows
	Excluded       int // rejected roster rows
	CreatedAt      time.Time
}

// Store persists scenarios and their run history.
type Store interface {
	// SaveScenario inserts or replaces a scenario by id.
	SaveScenario(ctx context.Context, sc Scenario) error

	// GetScenario returns ErrNotFound when id is unknown.
	GetScenario(ctx context.Context, id string) (*Record, error)

	// ListScenarios returns every scenario ordered by id.
	ListScenarios(ctx context.Context) ([]Record, error)

	// DeleteScenario returns ErrNotFound when id is unknown.
	DeleteScenario(ctx context.Context, id string) error

	// AppendRun records a run. This is the only write for runs.
	AppendRun(ctx context.Context, run Run) error

	// ListRuns returns the runs of a scenario, newest first.
	ListRuns(ctx context.Context, scenarioID string) ([]Run, error)
}
