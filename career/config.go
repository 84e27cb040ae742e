package career

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Config is everything a simulation run needs besides the roster.
type Config struct {
	Grades    int
	Durations []int // years per grade, one per grade
	Mode      AllocationMode

	// Manual mode: explicit amount per cell. Missing cells are zero.
	Manual map[Cell]decimal.Decimal

	// Proportional mode: CD14 amount per grade and growth per level step.
	BaseAmounts []decimal.Decimal
	GrowthRate  decimal.Decimal
}

// Validate checks every field and returns all problems joined together.
// The result satisfies errors.Is(err, ErrInvalidConfiguration).
func (c Config) Validate() error {
	var errs []error

	if c.Grades < 1 || c.Grades > MaxGrades {
		errs = append(errs, configErr("grades", "must be between 1 and %d, got %d", MaxGrades, c.Grades))
	}

	if len(c.Durations) != c.Grades {
		errs = append(errs, configErr("durations", "expected %d entries, got %d", c.Grades, len(c.Durations)))
	}
	for i, d := range c.Durations {
		if d <= 0 {
			errs = append(errs, configErr(fmt.Sprintf("durations[%d]", i), "must be positive, got %d", d))
		}
	}

	switch c.Mode {
	case ModeManual:
		errs = append(errs, c.validateManual()...)
	case ModeProportional:
		errs = append(errs, c.validateProportional()...)
	default:
		errs = append(errs, configErr("mode", "unknown allocation mode %q", c.Mode))
	}

	return errors.Join(errs...)
}

func (c Config) validateManual() []error {
	var errs []error
	for _, cell := range sortedCells(c.Manual) {
		amount := c.Manual[cell]
		if cell.Grade < 1 || int(cell.Grade) > c.Grades {
			errs = append(errs, configErr("manual", "grade %d outside 1..%d", cell.Grade, c.Grades))
		}
		if !cell.Level.Valid() {
			errs = append(errs, configErr("manual", "unknown level %d", cell.Level))
		}
		if amount.IsNegative() {
			errs = append(errs, configErr("manual", "negative amount %s at %s", amount, cell))
		}
	}
	return errs
}

func (c Config) validateProportional() []error {
	var errs []error
	if len(c.BaseAmounts) != c.Grades {
		errs = append(errs, configErr("base_amounts", "expected %d entries, got %d", c.Grades, len(c.BaseAmounts)))
	}
	for i, b := range c.BaseAmounts {
		if b.IsNegative() {
			errs = append(errs, configErr(fmt.Sprintf("base_amounts[%d]", i), "negative amount %s", b))
		}
	}
	if c.GrowthRate.IsNegative() {
		errs = append(errs, configErr("growth_rate", "negative rate %s", c.GrowthRate))
	}
	return errs
}

// Allocation validates the configuration and builds the allocation table
// for the configured mode.
func (c Config) Allocation() (*AllocationTable, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Mode == ModeManual {
		return BuildManualAllocation(c.Grades, c.Manual)
	}
	return BuildProportionalAllocation(c.BaseAmounts, c.GrowthRate), nil
}

// Ladder builds the seniority classifier for the configured durations.
func (c Config) Ladder() (*Ladder, error) {
	return NewLadder(c.Durations)
}

func sortedCells[V any](m map[Cell]V) []Cell {
	cells := make([]Cell, 0, len(m))
	for cell := range m {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Grade != cells[j].Grade {
			return cells[i].Grade < cells[j].Grade
		}
		return cells[i].Level < cells[j].Level
	})
	return cells
}
