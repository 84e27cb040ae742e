package career

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// LADDER - Tenure to grade classification
// =============================================================================

// Ladder classifies whole years of tenure into grades using cumulative
// grade durations.
//
// Durations [5, 5, 5] give boundaries [0, 5, 10, 15] and the brackets
//
//	grade 1: [0, 5)
//	grade 2: [5, 10)
//	grade 3: [10, ∞)   top grade is open-ended
//
// Reaching a boundary moves the employee into the next grade.
type Ladder struct {
	durations []int
	limits    []int
}

// NewLadder validates durations and computes the cumulative boundaries.
func NewLadder(durations []int) (*Ladder, error) {
	if len(durations) < 1 || len(durations) > MaxGrades {
		return nil, configErr("durations", "expected 1 to %d grades, got %d", MaxGrades, len(durations))
	}

	var errs []error
	limits := make([]int, 0, len(durations)+1)
	limits = append(limits, 0)
	for i, d := range durations {
		if d <= 0 {
			errs = append(errs, configErr(fmt.Sprintf("durations[%d]", i), "must be positive, got %d", d))
		}
		limits = append(limits, limits[i]+d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Ladder{
		durations: append([]int(nil), durations...),
		limits:    limits,
	}, nil
}

// Grades returns N.
func (l *Ladder) Grades() int { return len(l.durations) }

// Durations returns a copy of the years per grade.
func (l *Ladder) Durations() []int { return append([]int(nil), l.durations...) }

// Boundaries returns [0, d1, d1+d2, ..., Σd], length N+1.
func (l *Ladder) Boundaries() []int { return append([]int(nil), l.limits...) }

// Classify returns the grade for a tenure in whole years.
// Negative tenure (admission in the future) lands in grade 1, tenure at or
// beyond the start of the top grade lands in grade N.
func (l *Ladder) Classify(tenure int) Grade {
	n := len(l.durations)
	if tenure < 0 {
		return 1
	}
	for g := 1; g < n; g++ {
		if l.limits[g-1] <= tenure && tenure < l.limits[g] {
			return Grade(g)
		}
	}
	return Grade(n)
}

// Stage is the tenure span covered by one grade.
type Stage struct {
	Grade Grade
	From  int // inclusive, years
	To    int // exclusive, years; end of the configured duration
	Open  bool
}

// Stages returns one span per grade for timeline rendering. The top grade is
// flagged Open: it keeps absorbing tenure beyond To.
func (l *Ladder) Stages() []Stage {
	stages := make([]Stage, len(l.durations))
	for i := range l.durations {
		stages[i] = Stage{
			Grade: Grade(i + 1),
			From:  l.limits[i],
			To:    l.limits[i+1],
			Open:  i == len(l.durations)-1,
		}
	}
	return stages
}

// =============================================================================
// TENURE
// =============================================================================

// daysPerYear is the fixed divisor used to turn elapsed days into years.
const daysPerYear = 365

// Tenure returns whole years between admission and asOf as
// floor(days / 365). Both instants are truncated to their UTC calendar day.
// An admission after asOf yields a negative tenure.
func Tenure(admission, asOf time.Time) int {
	days := DaysBetween(admission, asOf)
	return floorDiv(days, daysPerYear)
}

// DaysBetween counts calendar days from one date to another. Unix seconds
// are used because time.Duration saturates after about 292 years.
func DaysBetween(from, to time.Time) int {
	return int((dateOnly(to).Unix() - dateOnly(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
