package career

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ROSTER INPUT
// =============================================================================

// RosterRow is one raw employee record as read from the roster source.
// Only the admission date and the level code take part in classification.
type RosterRow struct {
	Line          int
	ID            string
	AdmissionDate string
	Level         string
}

func (r RosterRow) blank() bool {
	return strings.TrimSpace(r.ID) == "" &&
		strings.TrimSpace(r.AdmissionDate) == "" &&
		strings.TrimSpace(r.Level) == ""
}

// Employee is a roster row that survived parsing, with its derived grade.
type Employee struct {
	Line          int
	ID            string
	AdmissionDate time.Time
	Level         Level
	Tenure        int
	Grade         Grade
}

// DateParser turns a raw admission date cell into a date.
type DateParser func(string) (time.Time, error)

// RosterOptions control how rows are parsed.
type RosterOptions struct {
	AsOf      time.Time  // tenure reference date; zero means today
	ParseDate DateParser // nil means ParseDate
}

// RosterResult separates usable employees from excluded rows.
type RosterResult struct {
	Employees []Employee
	Excluded  []*RowError
}

// =============================================================================
// ROSTER AGGREGATOR
// =============================================================================

// ClassifyRoster parses every row and assigns its grade. Rows with an
// unparseable admission date or a level outside 14..30 are excluded and
// reported; the remaining rows are always processed. Completely blank rows
// are ignored.
func ClassifyRoster(rows []RosterRow, ladder *Ladder, opts RosterOptions) RosterResult {
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = Today()
	}
	parse := opts.ParseDate
	if parse == nil {
		parse = ParseDate
	}

	result := RosterResult{Employees: make([]Employee, 0, len(rows))}
	for _, row := range rows {
		if row.blank() {
			continue
		}
		id := strings.TrimSpace(row.ID)

		admission, err := parse(row.AdmissionDate)
		if err != nil {
			result.Excluded = append(result.Excluded, &RowError{
				Line: row.Line, ID: id, Kind: RowErrorDate, Value: row.AdmissionDate, Err: err,
			})
			continue
		}

		level, err := ParseLevel(row.Level)
		if err != nil {
			result.Excluded = append(result.Excluded, &RowError{
				Line: row.Line, ID: id, Kind: RowErrorLevel, Value: row.Level, Err: err,
			})
			continue
		}

		tenure := Tenure(admission, asOf)
		result.Employees = append(result.Employees, Employee{
			Line:          row.Line,
			ID:            id,
			AdmissionDate: admission,
			Level:         level,
			Tenure:        tenure,
			Grade:         ladder.Classify(tenure),
		})
	}
	return result
}

// CountHeadcount groups classified employees by (grade, level). Employees
// whose cell lies outside the table are skipped.
func CountHeadcount(grades int, employees []Employee) *HeadcountTable {
	table := NewHeadcountTable(grades)
	for _, e := range employees {
		if table.contains(e.Grade, e.Level) {
			table.add(e.Grade, e.Level, 1)
		}
	}
	return table
}

// ApplyOverrides merges manual edits into a headcount table.
//
// Precedence: a cell present in overrides takes the override value, even
// zero; cells absent from overrides keep the base count. The base table is
// not modified.
func ApplyOverrides(base *HeadcountTable, overrides Overrides) (*HeadcountTable, error) {
	merged := base.Clone()
	var errs []error
	for _, cell := range sortedCells(overrides) {
		n := overrides[cell]
		switch {
		case !merged.contains(cell.Grade, cell.Level):
			errs = append(errs, configErr("overrides", "cell %s outside the ladder", cell))
		case n < 0:
			errs = append(errs, configErr("overrides", "negative headcount %d at %s", n, cell))
		default:
			merged.set(cell.Grade, cell.Level, n)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return merged, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"2.1.2006",
}

// ParseDate accepts ISO dates and the usual spreadsheet renderings.
// Slash dates are read month first and fall back to day first when the
// month would be out of range.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseLevel reads a level code such as "14", "14.0" or "CD14".
func ParseLevel(value string) (Level, error) {
	v := strings.TrimSpace(value)
	if len(v) >= 2 && strings.EqualFold(v[:2], "cd") {
		v = strings.TrimSpace(v[2:])
	}
	if v == "" {
		return 0, errors.New("empty level")
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("level %q is not an integer", value)
		}
		n = int(f)
	}

	level := Level(n)
	if !level.Valid() {
		return 0, fmt.Errorf("level %d outside %d..%d", n, MinLevel, MaxLevel)
	}
	return level, nil
}

// Today is the current UTC calendar day.
func Today() time.Time {
	return dateOnly(time.Now())
}
