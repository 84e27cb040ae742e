package career

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COST AGGREGATOR
// =============================================================================

var monthsPerYear = decimal.NewFromInt(12)

// CostCell is the cost picture of one (grade, level) cell.
type CostCell struct {
	Grade       Grade
	Level       Level
	Headcount   int
	UnitAnnual  decimal.Decimal
	UnitMonthly decimal.Decimal // UnitAnnual / 12, unrounded
	Total       decimal.Decimal // Headcount × UnitAnnual
}

// CostSheet is the full grade × level cost grid plus its totals.
type CostSheet struct {
	grades         int
	cells          [][]CostCell
	GrandTotal     decimal.Decimal
	TotalHeadcount int
}

// ComputeCosts combines headcounts with unit allocations. Every cell of the
// grid is filled, zero-headcount cells included. Sums are exact decimals so
// the grand total does not depend on iteration order.
func ComputeCosts(headcount *HeadcountTable, allocation *AllocationTable) (*CostSheet, error) {
	if headcount.Grades() != allocation.Grades() {
		return nil, fmt.Errorf("%w: headcount has %d, allocation has %d",
			ErrGradeMismatch, headcount.Grades(), allocation.Grades())
	}

	sheet := &CostSheet{
		grades:     headcount.Grades(),
		cells:      make([][]CostCell, headcount.Grades()),
		GrandTotal: decimal.Zero,
	}

	for gi := range sheet.cells {
		g := Grade(gi + 1)
		row := make([]CostCell, LevelCount)
		for _, l := range Levels() {
			n := headcount.Get(g, l)
			unit := allocation.Get(g, l)
			cell := CostCell{
				Grade:       g,
				Level:       l,
				Headcount:   n,
				UnitAnnual:  unit,
				UnitMonthly: unit.Div(monthsPerYear),
				Total:       unit.Mul(decimal.NewFromInt(int64(n))),
			}
			row[l.Index()] = cell
			sheet.GrandTotal = sheet.GrandTotal.Add(cell.Total)
			sheet.TotalHeadcount += n
		}
		sheet.cells[gi] = row
	}
	return sheet, nil
}

func (s *CostSheet) Grades() int { return s.grades }

// Cell returns one grid entry. Outside the domain it returns a zero cell.
func (s *CostSheet) Cell(g Grade, l Level) CostCell {
	if g < 1 || int(g) > s.grades || !l.Valid() {
		return CostCell{Grade: g, Level: l, UnitAnnual: decimal.Zero, UnitMonthly: decimal.Zero, Total: decimal.Zero}
	}
	return s.cells[g-1][l.Index()]
}

// Itemized lists the cells with people in them, ordered by grade then level.
func (s *CostSheet) Itemized() []CostCell {
	var out []CostCell
	for _, row := range s.cells {
		for _, cell := range row {
			if cell.Headcount > 0 {
				out = append(out, cell)
			}
		}
	}
	return out
}
