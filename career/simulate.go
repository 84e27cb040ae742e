package career

import (
	"fmt"
	"time"
)

// Input is the per-run data that is not part of the configuration.
type Input struct {
	Roster    []RosterRow
	Overrides Overrides // manual edits, applied on top of the roster counts
	AsOf      time.Time // zero means today
	ParseDate DateParser
}

// Result keeps every intermediate table of a run next to the final report.
type Result struct {
	Allocation *AllocationTable
	Ladder     *Ladder
	Roster     RosterResult
	Headcount  *HeadcountTable
	Costs      *CostSheet
	Report     *Report
}

// Simulate runs the whole pipeline. Configuration problems (including bad
// overrides) abort the run and return no result; malformed roster rows are
// excluded and listed in Result.Roster.Excluded.
func Simulate(cfg Config, in Input) (*Result, error) {
	allocation, err := cfg.Allocation()
	if err != nil {
		return nil, err
	}
	ladder, err := cfg.Ladder()
	if err != nil {
		return nil, err
	}

	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = Today()
	}

	roster := ClassifyRoster(in.Roster, ladder, RosterOptions{AsOf: asOf, ParseDate: in.ParseDate})
	headcount, err := ApplyOverrides(CountHeadcount(cfg.Grades, roster.Employees), in.Overrides)
	if err != nil {
		return nil, err
	}

	costs, err := ComputeCosts(headcount, allocation)
	if err != nil {
		return nil, fmt.Errorf("computing costs: %w", err)
	}

	return &Result{
		Allocation: allocation,
		Ladder:     ladder,
		Roster:     roster,
		Headcount:  headcount,
		Costs:      costs,
		Report: AssembleReport(ReportInput{
			Config:     cfg,
			Ladder:     ladder,
			Allocation: allocation,
			Costs:      costs,
			Roster:     roster,
			AsOf:       asOf,
		}),
	}, nil
}
