package career_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/career"
)

func TestSimulate_EndToEnd(t *testing.T) {
	// GIVEN: Two 5-year grades, 1000 at CD14 with 2% growth, three employees
	// WHEN: Simulating as of 2025-01-01
	// THEN: Employees land in the expected cells and the total matches
	asOf := date(2025, time.January, 1)
	cfg := career.Config{
		Grades:      2,
		Durations:   []int{5, 5},
		Mode:        career.ModeProportional,
		BaseAmounts: decs("1000", "1000"),
		GrowthRate:  dec("0.02"),
	}
	rows := []career.RosterRow{
		{Line: 2, ID: "A", AdmissionDate: "2023-01-01", Level: "14"}, // tenure 2 -> G1
		{Line: 3, ID: "B", AdmissionDate: "2015-01-01", Level: "15"}, // tenure 10 -> G2
		{Line: 4, ID: "C", AdmissionDate: "2019-06-01", Level: "14"}, // tenure 5 -> G2
		{Line: 5, ID: "D", AdmissionDate: "??", Level: "14"},
	}

	res, err := career.Simulate(cfg, career.Input{Roster: rows, AsOf: asOf})
	require.NoError(t, err)

	assert.Len(t, res.Roster.Employees, 3)
	assert.Len(t, res.Roster.Excluded, 1)
	assert.Equal(t, 1, res.Headcount.Get(1, 14))
	assert.Equal(t, 1, res.Headcount.Get(2, 14))
	assert.Equal(t, 1, res.Headcount.Get(2, 15))

	// 1000 + 1000 + 1020
	assertDecimal(t, "3020", res.Report.GrandTotal)
	assert.Equal(t, 3, res.Report.TotalHeadcount)
	assert.Len(t, res.Report.Excluded, 1)
	assert.Equal(t, asOf, res.Report.AsOf)
}

func TestSimulate_OverridesReplaceRosterCounts(t *testing.T) {
	cfg := career.Config{
		Grades:      1,
		Durations:   []int{5},
		Mode:        career.ModeProportional,
		BaseAmounts: decs("1000"),
		GrowthRate:  decimal.Zero,
	}
	rows := []career.RosterRow{{ID: "A", AdmissionDate: "2020-01-01", Level: "14"}}

	res, err := career.Simulate(cfg, career.Input{
		Roster:    rows,
		Overrides: career.Overrides{{Grade: 1, Level: 14}: 10},
		AsOf:      date(2025, 1, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Headcount.Get(1, 14))
	assertDecimal(t, "10000", res.Report.GrandTotal)
}

func TestSimulate_ManualHeadcountWithoutRoster(t *testing.T) {
	cfg := career.Config{
		Grades:    2,
		Durations: []int{4, 4},
		Mode:      career.ModeManual,
		Manual: map[career.Cell]decimal.Decimal{
			{Grade: 1, Level: 20}: dec("1200"),
			{Grade: 2, Level: 20}: dec("1800"),
		},
	}

	res, err := career.Simulate(cfg, career.Input{Overrides: career.Overrides{
		{Grade: 1, Level: 20}: 2,
		{Grade: 2, Level: 20}: 1,
	}})
	require.NoError(t, err)

	assertDecimal(t, "4200", res.Report.GrandTotal)
	assert.Empty(t, res.Report.Employees)
	assert.False(t, res.Report.AsOf.IsZero(), "as-of defaults to today")
}

func TestSimulate_InvalidConfigurationIsFatal(t *testing.T) {
	cases := map[string]career.Config{
		"no grades":       {Grades: 0, Mode: career.ModeProportional},
		"too many grades": {Grades: 11, Durations: make([]int, 11), Mode: career.ModeProportional},
		"zero duration": {
			Grades: 1, Durations: []int{0}, Mode: career.ModeProportional, BaseAmounts: decs("1"),
		},
		"negative base": {
			Grades: 1, Durations: []int{1}, Mode: career.ModeProportional, BaseAmounts: decs("-5"),
		},
		"negative rate": {
			Grades: 1, Durations: []int{1}, Mode: career.ModeProportional, BaseAmounts: decs("5"), GrowthRate: dec("-0.01"),
		},
		"negative manual amount": {
			Grades: 1, Durations: []int{1}, Mode: career.ModeManual,
			Manual: map[career.Cell]decimal.Decimal{{Grade: 1, Level: 14}: dec("-1")},
		},
		"unknown mode": {Grades: 1, Durations: []int{1}, Mode: "random"},
		"durations length": {
			Grades: 2, Durations: []int{1}, Mode: career.ModeProportional, BaseAmounts: decs("1", "1"),
		},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := career.Simulate(cfg, career.Input{})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, career.ErrInvalidConfiguration)
		})
	}
}

func TestSimulate_BadOverridesAreFatal(t *testing.T) {
	cfg := career.Config{
		Grades: 1, Durations: []int{1}, Mode: career.ModeProportional, BaseAmounts: decs("1"),
	}
	res, err := career.Simulate(cfg, career.Input{Overrides: career.Overrides{{Grade: 1, Level: 14}: -3}})
	assert.Nil(t, res)
	assert.True(t, career.IsConfigError(err))
}

func TestConfigValidate_ReportsEveryProblem(t *testing.T) {
	cfg := career.Config{
		Grades:      2,
		Durations:   []int{0, -1},
		Mode:        career.ModeProportional,
		BaseAmounts: decs("-1", "1"),
		GrowthRate:  dec("-1"),
	}

	err := cfg.Validate()
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 4)
}
