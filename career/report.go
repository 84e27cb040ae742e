package career

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT SHAPES
// =============================================================================

// HeadcountRow is one level across all grades.
type HeadcountRow struct {
	Level  Level
	Values []int // one per grade
	Total  int
}

// HeadcountGrid has rows = levels (all 17) and columns = grades + Total.
type HeadcountGrid struct {
	Grades       int
	Rows         []HeadcountRow
	ColumnTotals []int
	GrandTotal   int
}

// CostRow is one level across all grades.
type CostRow struct {
	Level  Level
	Values []decimal.Decimal
	Total  decimal.Decimal
}

// CostGrid has rows = levels (all 17) and columns = grades + Total.
type CostGrid struct {
	Grades       int
	Rows         []CostRow
	ColumnTotals []decimal.Decimal
	GrandTotal   decimal.Decimal
}

// UnitCost is one line of the itemized unit-cost listing.
type UnitCost struct {
	Grade     Grade
	Level     Level
	Headcount int
	Annual    decimal.Decimal
	Monthly   decimal.Decimal
}

// ConfigSummary describes the configuration a report was computed with.
type ConfigSummary struct {
	Grades      int
	Durations   []int
	Boundaries  []int
	Stages      []Stage
	Mode        AllocationMode
	LowestLevel []decimal.Decimal // CD14 amount per grade
	GrowthRate  *decimal.Decimal  // proportional mode only
}

// Report is everything the rendering and export collaborators consume.
type Report struct {
	AsOf           time.Time
	Summary        ConfigSummary
	Headcount      HeadcountGrid
	Costs          CostGrid
	UnitCosts      []UnitCost
	GrandTotal     decimal.Decimal
	TotalHeadcount int
	Employees      []Employee
	Excluded       []*RowError
}

// =============================================================================
// REPORT DATA ASSEMBLER
// =============================================================================

// ReportInput gathers the already computed pieces of a run.
type ReportInput struct {
	Config     Config
	Ladder     *Ladder
	Allocation *AllocationTable
	Costs      *CostSheet
	Roster     RosterResult
	AsOf       time.Time
}

// AssembleReport reshapes a computed run for rendering. It performs no
// validation; an empty sheet yields well-formed all-zero grids.
func AssembleReport(in ReportInput) *Report {
	sheet := in.Costs

	r := &Report{
		AsOf:           in.AsOf,
		Summary:        summarize(in.Config, in.Ladder, in.Allocation),
		Headcount:      headcountGrid(sheet),
		Costs:          costGrid(sheet),
		GrandTotal:     sheet.GrandTotal,
		TotalHeadcount: sheet.TotalHeadcount,
		Employees:      in.Roster.Employees,
		Excluded:       in.Roster.Excluded,
	}

	for _, cell := range sheet.Itemized() {
		r.UnitCosts = append(r.UnitCosts, UnitCost{
			Grade:     cell.Grade,
			Level:     cell.Level,
			Headcount: cell.Headcount,
			Annual:    cell.UnitAnnual,
			Monthly:   cell.UnitMonthly,
		})
	}
	if r.UnitCosts == nil {
		r.UnitCosts = []UnitCost{}
	}
	return r
}

func headcountGrid(sheet *CostSheet) HeadcountGrid {
	grid := HeadcountGrid{
		Grades:       sheet.Grades(),
		Rows:         make([]HeadcountRow, 0, LevelCount),
		ColumnTotals: make([]int, sheet.Grades()),
	}
	for _, l := range Levels() {
		row := HeadcountRow{Level: l, Values: make([]int, sheet.Grades())}
		for gi := range row.Values {
			n := sheet.Cell(Grade(gi+1), l).Headcount
			row.Values[gi] = n
			row.Total += n
			grid.ColumnTotals[gi] += n
		}
		grid.GrandTotal += row.Total
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

func costGrid(sheet *CostSheet) CostGrid {
	grid := CostGrid{
		Grades:       sheet.Grades(),
		Rows:         make([]CostRow, 0, LevelCount),
		ColumnTotals: make([]decimal.Decimal, sheet.Grades()),
		GrandTotal:   decimal.Zero,
	}
	for gi := range grid.ColumnTotals {
		grid.ColumnTotals[gi] = decimal.Zero
	}
	for _, l := range Levels() {
		row := CostRow{Level: l, Values: make([]decimal.Decimal, sheet.Grades()), Total: decimal.Zero}
		for gi := range row.Values {
			total := sheet.Cell(Grade(gi+1), l).Total
			row.Values[gi] = total
			row.Total = row.Total.Add(total)
			grid.ColumnTotals[gi] = grid.ColumnTotals[gi].Add(total)
		}
		grid.GrandTotal = grid.GrandTotal.Add(row.Total)
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

func summarize(cfg Config, ladder *Ladder, alloc *AllocationTable) ConfigSummary {
	s := ConfigSummary{
		Grades:      cfg.Grades,
		Durations:   append([]int(nil), cfg.Durations...),
		Mode:        cfg.Mode,
		LowestLevel: alloc.LowestLevel(),
	}
	if ladder != nil {
		s.Boundaries = ladder.Boundaries()
		s.Stages = ladder.Stages()
	}
	if cfg.Mode == ModeProportional {
		rate := cfg.GrowthRate
		s.GrowthRate = &rate
	}
	return s
}
