package career

import (
	"errors"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION TABLE BUILDERS
// =============================================================================

var decimalOne = decimal.NewFromInt(1)

// BuildManualAllocation copies explicit per-cell amounts into a full table.
// Cells missing from amounts stay at zero. Negative amounts and cells outside
// the ladder are rejected.
func BuildManualAllocation(grades int, amounts map[Cell]decimal.Decimal) (*AllocationTable, error) {
	if grades < 1 || grades > MaxGrades {
		return nil, configErr("grades", "must be between 1 and %d, got %d", MaxGrades, grades)
	}

	table := newAllocationTable(grades)
	var errs []error
	for _, cell := range sortedCells(amounts) {
		amount := amounts[cell]
		switch {
		case !table.contains(cell.Grade, cell.Level):
			errs = append(errs, configErr("manual", "cell %s outside the ladder", cell))
		case amount.IsNegative():
			errs = append(errs, configErr("manual", "negative amount %s at %s", amount, cell))
		default:
			table.cells[cell.Grade-1][cell.Level.Index()] = amount
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return table, nil
}

// BuildProportionalAllocation grows each grade's CD14 base amount by rate
// per level step:
//
//	allocation[g][level_i] = round(base[g] × (1 + rate)^i, 2)
//
// Rounding is half-up. Inputs are expected to be validated (non-negative).
func BuildProportionalAllocation(bases []decimal.Decimal, rate decimal.Decimal) *AllocationTable {
	table := newAllocationTable(len(bases))
	step := decimalOne.Add(rate)

	for g, base := range bases {
		factor := decimalOne
		for i := 0; i < LevelCount; i++ {
			table.cells[g][i] = base.Mul(factor).Round(2)
			factor = factor.Mul(step)
		}
	}
	return table
}
