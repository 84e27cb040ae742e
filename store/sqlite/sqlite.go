/*
Package sqlite provides a SQLite-backed implementation of scenario.Store.

PURPOSE:
  Persists saved scenarios and the history of simulation runs so the API
  can list, reload and re-run configurations across restarts.

KEY TABLES:
  scenarios: One row per scenario id, definition stored as JSON
  runs:      Append-only history of simulations per scenario

APPEND-ONLY RUNS:
  - No UPDATE statements on the runs table
  - No DELETE statements on the runs table
  - Deleting a scenario keeps its runs for audit

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of a single connection.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/simulator.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - scenario/store.go: Interface definition
  - scenario/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/career-simulator/scenario"
)

const (
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00" // fixed width, sorts as text
	dateLayout      = "2006-01-02"
)

// Store implements scenario.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ scenario.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Scenarios (editable)
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		definition_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Runs (append-only)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		as_of TEXT NOT NULL,
		grand_total TEXT NOT NULL,
		total_headcount INTEGER NOT NULL,
		employees INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scenario_created
		ON runs(scenario_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCENARIOS
// =============================================================================

// SaveScenario inserts or replaces a scenario, bumping its version.
func (s *Store) SaveScenario(ctx context.Context, sc scenario.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	definition, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	query := `
		INSERT INTO scenarios (id, name, definition_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			definition_json = excluded.definition_json,
			version = scenarios.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(timestampLayout)
	if _, err := s.db.ExecContext(ctx, query, sc.ID, sc.Name, string(definition), now, now); err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// GetScenario retrieves a scenario by ID.
func (s *Store) GetScenario(ctx context.Context, id string) (*scenario.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT definition_json, created_at, updated_at FROM scenarios WHERE id = ?", id)
	rec, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scenario.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListScenarios returns all scenarios ordered by id.
func (s *Store) ListScenarios(ctx context.Context) ([]scenario.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT definition_json, created_at, updated_at FROM scenarios ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []scenario.Record{}
	for rows.Next() {
		rec, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteScenario removes a scenario. Its runs are kept.
func (s *Store) DeleteScenario(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scenario.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScenario(row scanner) (scenario.Record, error) {
	var rec scenario.Record
	var definition, createdAt, updatedAt string
	if err := row.Scan(&definition, &createdAt, &updatedAt); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(definition), &rec.Scenario); err != nil {
		return rec, fmt.Errorf("failed to decode scenario: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	rec.UpdatedAt, _ = time.Parse(timestampLayout, updatedAt)
	return rec, nil
}

// =============================================================================
// RUNS
// =============================================================================

// AppendRun records a run. Append-only.
func (s *Store) AppendRun(ctx context.Context, run scenario.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs
		(id, scenario_id, as_of, grand_total, total_headcount, employees, excluded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.ScenarioID,
		run.AsOf.Format(dateLayout),
		run.GrandTotal.String(),
		run.TotalHeadcount,
		run.Employees,
		run.Excluded,
		run.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return scenario.ErrDuplicateRun
		}
		return fmt.Errorf("failed to append run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of a scenario, newest first.
func (s *Store) ListRuns(ctx context.Context, scenarioID string) ([]scenario.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_id, as_of, grand_total, total_headcount, employees, excluded, created_at
		FROM runs WHERE scenario_id = ? ORDER BY created_at DESC, id DESC
	`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []scenario.Run{}
	for rows.Next() {
		var r scenario.Run
		var asOf, total, createdAt string
		if err := rows.Scan(&r.ID, &r.ScenarioID, &asOf, &total,
			&r.TotalHeadcount, &r.Employees, &r.Excluded, &createdAt); err != nil {
			return nil, err
		}
		r.AsOf, _ = time.Parse(dateLayout, asOf)
		r.GrandTotal, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad grand total %q: %w", r.ID, total, err)
		}
		r.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Helper functions

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
