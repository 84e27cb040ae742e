/*
Package career provides the horizontal career cost engine.

PURPOSE:
  Given a career ladder (number of grades and the years each grade lasts),
  an allocation table (annual amount per grade and organizational level)
  and an employee roster, the engine derives how many people sit in every
  (grade, level) cell and what the scenario costs.

KEY CONCEPTS IN THIS FILE (types.go):
  - Grade: A stage of the horizontal career (GDP), 1..N
  - Level: An organizational/pay level (CD), one of 14..30
  - Cell: A (Grade, Level) coordinate in every table
  - Tables: AllocationTable (money) and HeadcountTable (people)

DESIGN PRINCIPLES:
  1. Pure functions: every component takes its inputs explicitly, no globals
  2. Precision: money uses decimal.Decimal, sums are exact and order independent
  3. Full grids: every grade carries all 17 levels, zero by default
  4. Recoverable rows: one bad roster row never aborts a run

PIPELINE:
  Config.Allocation ──┐
                      ├─> ComputeCosts ─> AssembleReport
  ClassifyRoster ─> CountHeadcount ─> ApplyOverrides ──┘

SEE ALSO:
  - allocation.go: Allocation table builders
  - seniority.go: Tenure to grade classification
  - roster.go: Roster classification and headcount
  - cost.go: Cost aggregation
  - report.go: Report shaping
  - simulate.go: One-call orchestration
*/
package career

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRADES AND LEVELS
// =============================================================================

// Grade is a career stage, 1 is earliest-career.
type Grade int

// MaxGrades is the largest ladder a configuration may declare.
const MaxGrades = 10

func (g Grade) String() string { return fmt.Sprintf("Grado %d", int(g)) }

// Level is an organizational level code (CD).
type Level int

const (
	MinLevel Level = 14
	MaxLevel Level = 30

	// LevelCount is the size of the closed level set.
	LevelCount = int(MaxLevel-MinLevel) + 1
)

// Levels returns the 17 recognized levels in ascending order.
func Levels() []Level {
	levels := make([]Level, 0, LevelCount)
	for l := MinLevel; l <= MaxLevel; l++ {
		levels = append(levels, l)
	}
	return levels
}

// Valid reports whether l belongs to the closed level set.
func (l Level) Valid() bool { return l >= MinLevel && l <= MaxLevel }

// Index is the zero-based position of l counted from the lowest level.
func (l Level) Index() int { return int(l - MinLevel) }

func (l Level) String() string { return fmt.Sprintf("CD%d", int(l)) }

// Cell addresses one entry of a grade × level table.
type Cell struct {
	Grade Grade
	Level Level
}

func (c Cell) String() string { return fmt.Sprintf("G%d/CD%d", int(c.Grade), int(c.Level)) }

// =============================================================================
// ALLOCATION MODE
// =============================================================================

type AllocationMode string

const (
	ModeManual       AllocationMode = "manual"
	ModeProportional AllocationMode = "proportional"
)

// Label is the human readable mode name used in reports.
func (m AllocationMode) Label() string {
	switch m {
	case ModeManual:
		return "Manual"
	case ModeProportional:
		return "Proporcional desde CD14 por grado"
	default:
		return string(m)
	}
}

// =============================================================================
// ALLOCATION TABLE - Annual unit amount per cell
// =============================================================================

// AllocationTable holds the annual unit allocation of every (grade, level)
// cell. It is built once per run and read-only afterwards.
type AllocationTable struct {
	grades int
	cells  [][]decimal.Decimal
}

func newAllocationTable(grades int) *AllocationTable {
	cells := make([][]decimal.Decimal, grades)
	for i := range cells {
		row := make([]decimal.Decimal, LevelCount)
		for j := range row {
			row[j] = decimal.Zero
		}
		cells[i] = row
	}
	return &AllocationTable{grades: grades, cells: cells}
}

// Grades returns N.
func (t *AllocationTable) Grades() int { return t.grades }

// Get returns the unit allocation for a cell, zero outside the domain.
func (t *AllocationTable) Get(g Grade, l Level) decimal.Decimal {
	if !t.contains(g, l) {
		return decimal.Zero
	}
	return t.cells[g-1][l.Index()]
}

// LowestLevel returns the CD14 amount of every grade, in grade order.
func (t *AllocationTable) LowestLevel() []decimal.Decimal {
	out := make([]decimal.Decimal, t.grades)
	for i := range out {
		out[i] = t.cells[i][0]
	}
	return out
}

func (t *AllocationTable) contains(g Grade, l Level) bool {
	return g >= 1 && int(g) <= t.grades && l.Valid()
}

// =============================================================================
// HEADCOUNT TABLE - People per cell
// =============================================================================

// HeadcountTable counts employees per (grade, level) cell.
type HeadcountTable struct {
	grades int
	cells  [][]int
}

// NewHeadcountTable returns an all-zero table for the given ladder size.
func NewHeadcountTable(grades int) *HeadcountTable {
	cells := make([][]int, grades)
	for i := range cells {
		cells[i] = make([]int, LevelCount)
	}
	return &HeadcountTable{grades: grades, cells: cells}
}

func (t *HeadcountTable) Grades() int { return t.grades }

// Get returns the count for a cell, zero outside the domain.
func (t *HeadcountTable) Get(g Grade, l Level) int {
	if !t.contains(g, l) {
		return 0
	}
	return t.cells[g-1][l.Index()]
}

// Total is the headcount across all cells.
func (t *HeadcountTable) Total() int {
	total := 0
	for _, row := range t.cells {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// Clone returns an independent copy.
func (t *HeadcountTable) Clone() *HeadcountTable {
	c := NewHeadcountTable(t.grades)
	for i, row := range t.cells {
		copy(c.cells[i], row)
	}
	return c
}

func (t *HeadcountTable) add(g Grade, l Level, n int) {
	t.cells[g-1][l.Index()] += n
}

func (t *HeadcountTable) set(g Grade, l Level, n int) {
	t.cells[g-1][l.Index()] = n
}

func (t *HeadcountTable) contains(g Grade, l Level) bool {
	return g >= 1 && int(g) <= t.grades && l.Valid()
}

// Overrides are manual headcount edits keyed by cell.
type Overrides map[Cell]int
