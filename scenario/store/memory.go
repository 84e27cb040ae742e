// Package store provides in-memory scenario.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/career-simulator/scenario"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	scenarios map[string]scenario.Record
	runs      map[string][]scenario.Run
	runIDs    map[string]bool
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		scenarios: make(map[string]scenario.Record),
		runs:      make(map[string][]scenario.Run),
		runIDs:    make(map[string]bool),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SaveScenario inserts or replaces by id, keeping the original CreatedAt.
func (m *Memory) SaveScenario(_ context.Context, sc scenario.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec := scenario.Record{Scenario: sc, CreatedAt: now, UpdatedAt: now}
	if prev, ok := m.scenarios[sc.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	m.scenarios[sc.ID] = rec
	return nil
}

func (m *Memory) GetScenario(_ context.Context, id string) (*scenario.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.scenarios[id]
	if !ok {
		return nil, scenario.ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) ListScenarios(_ context.Context) ([]scenario.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]scenario.Record, 0, len(m.scenarios))
	for _, rec := range m.scenarios {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Scenario.ID < result[j].Scenario.ID
	})
	return result, nil
}

func (m *Memory) DeleteScenario(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[id]; !ok {
		return scenario.ErrNotFound
	}
	delete(m.scenarios, id)
	return nil
}

// AppendRun adds a run. Append-only.
func (m *Memory) AppendRun(_ context.Context, run scenario.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runIDs[run.ID] {
		return scenario.ErrDuplicateRun
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = m.now()
	}

	runs := m.runs[run.ScenarioID]
	// Keep newest first.
	i := sort.Search(len(runs), func(i int) bool {
		return !runs[i].CreatedAt.After(run.CreatedAt)
	})
	runs = append(runs, scenario.Run{})
	copy(runs[i+1:], runs[i:])
	runs[i] = run
	m.runs[run.ScenarioID] = runs
	m.runIDs[run.ID] = true
	return nil
}

func (m *Memory) ListRuns(_ context.Context, scenarioID string) ([]scenario.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]scenario.Run, len(m.runs[scenarioID]))
	copy(result, m.runs[scenarioID])
	return result, nil
}
