package scenario_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/scenario"
)

const baseYAML = `
id: carrera-base
name: Base
grades: 2
grade_years: [5, 5]
allocation:
  mode: proportional
  growth_rate: 0.02
  base_amounts: [1000, 1500]
headcount_overrides:
  - {grade: 1, level: 14, count: 3}
`

// failedFields lists the Field of every ConfigError in a joined error.
func failedFields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	var fields []string
	for _, e := range errs {
		var ce *career.ConfigError
		require.True(t, errors.As(e, &ce), "unexpected error %v", e)
		fields = append(fields, ce.Field)
	}
	return fields
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse_YAML(t *testing.T) {
	sc, err := scenario.Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "carrera-base", sc.ID)
	assert.Equal(t, 2, sc.Grades)
	assert.Equal(t, []int{5, 5}, sc.GradeYears)

	cfg, err := sc.Config()
	require.NoError(t, err)
	assert.Equal(t, career.ModeProportional, cfg.Mode)
	assert.Equal(t, "0.02", cfg.GrowthRate.String())
	require.Len(t, cfg.BaseAmounts, 2)
	assert.Equal(t, "1500", cfg.BaseAmounts[1].String())

	assert.Equal(t, career.Overrides{{Grade: 1, Level: 14}: 3}, sc.HeadcountOverrides())
}

func TestParse_JSON(t *testing.T) {
	data := `{
		"id": "manual",
		"grades": 1,
		"grade_years": [3],
		"allocation": {"mode": "manual", "amounts": [{"grade": 1, "level": 20, "amount": 1234.5}]}
	}`

	sc, err := scenario.Parse([]byte(data))
	require.NoError(t, err)

	cfg, err := sc.Config()
	require.NoError(t, err)
	assert.Equal(t, career.ModeManual, cfg.Mode)
	assert.Equal(t, "1234.5", cfg.Manual[career.Cell{Grade: 1, Level: 20}].String())
	assert.Nil(t, sc.HeadcountOverrides())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := scenario.Parse([]byte("grades: 1\ngrade_years: [1]\ncolour: red\n"))
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := scenario.Parse([]byte("   \n"))
	assert.ErrorContains(t, err, "empty")
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_ReportsSerializedFieldNames(t *testing.T) {
	cases := map[string]struct {
		yaml  string
		field string
	}{
		"grades above ten": {
			yaml:  "grades: 11\ngrade_years: [1,1,1,1,1,1,1,1,1,1,1]\nallocation: {mode: manual}\n",
			field: "grades",
		},
		"durations per grade": {
			yaml:  "grades: 2\ngrade_years: [5]\nallocation: {mode: proportional, base_amounts: [1, 1]}\n",
			field: "grade_years",
		},
		"zero duration": {
			yaml:  "grades: 1\ngrade_years: [0]\nallocation: {mode: proportional, base_amounts: [1]}\n",
			field: "grade_years[0]",
		},
		"unknown mode": {
			yaml:  "grades: 1\ngrade_years: [1]\nallocation: {mode: random}\n",
			field: "allocation.mode",
		},
		"negative rate": {
			yaml:  "grades: 1\ngrade_years: [1]\nallocation: {mode: proportional, growth_rate: -0.1, base_amounts: [1]}\n",
			field: "allocation.growth_rate",
		},
		"bases per grade": {
			yaml:  "grades: 2\ngrade_years: [1, 1]\nallocation: {mode: proportional, base_amounts: [1]}\n",
			field: "allocation.base_amounts",
		},
		"level out of range": {
			yaml:  "grades: 1\ngrade_years: [1]\nallocation: {mode: manual, amounts: [{grade: 1, level: 13, amount: 1}]}\n",
			field: "allocation.amounts[0].level",
		},
		"negative override": {
			yaml:  "grades: 1\ngrade_years: [1]\nallocation: {mode: manual}\nheadcount_overrides: [{grade: 1, level: 14, count: -2}]\n",
			field: "headcount_overrides[0].count",
		},
		"override above ladder": {
			yaml:  "grades: 1\ngrade_years: [1]\nallocation: {mode: manual}\nheadcount_overrides: [{grade: 2, level: 14, count: 1}]\n",
			field: "headcount_overrides",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, career.ErrInvalidConfiguration)
			assert.Contains(t, failedFields(t, err), tc.field)
		})
	}
}

func TestParse_RejectsNonFiniteAmounts(t *testing.T) {
	// GIVEN: Scenario files using YAML's .inf and .nan literals
	// WHEN: Parsing them
	// THEN: A configuration error is returned instead of a decimal panic
	cases := map[string]struct {
		yaml  string
		field string
	}{
		"infinite base": {
			yaml:  "grades: 1\ngrade_years: [5]\nallocation: {mode: proportional, base_amounts: [.inf]}\n",
			field: "allocation.base_amounts[0]",
		},
		"infinite rate": {
			yaml:  "grades: 1\ngrade_years: [5]\nallocation: {mode: proportional, growth_rate: .inf, base_amounts: [1000]}\n",
			field: "allocation.growth_rate",
		},
		"nan amount": {
			yaml:  "grades: 1\ngrade_years: [5]\nallocation: {mode: manual, amounts: [{grade: 1, level: 14, amount: .nan}]}\n",
			field: "allocation.amounts[0].amount",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tc.yaml))
			assert.True(t, career.IsConfigError(err))
			assert.Contains(t, failedFields(t, err), tc.field)
		})
	}

	sc := scenario.Scenario{
		Grades:     1,
		GradeYears: []int{5},
		Allocation: scenario.AllocationJSON{Mode: "proportional", BaseAmounts: []float64{math.Inf(1)}},
	}
	assert.NotPanics(t, func() {
		_, err := sc.Config()
		assert.True(t, career.IsConfigError(err))
	})
}

func TestParse_RejectsDuplicateCells(t *testing.T) {
	// GIVEN: A scenario listing G1/CD14 twice in amounts and G1/CD15 twice in overrides
	// WHEN: Parsing it
	// THEN: Both lists are reported instead of the last entry silently winning
	data := `
grades: 1
grade_years: [5]
allocation:
  mode: manual
  amounts:
    - {grade: 1, level: 14, amount: 1000}
    - {grade: 1, level: 14, amount: 1100}
headcount_overrides:
  - {grade: 1, level: 15, count: 2}
  - {grade: 1, level: 15, count: 3}
`
	_, err := scenario.Parse([]byte(data))
	assert.ErrorIs(t, err, career.ErrInvalidConfiguration)
	fields := failedFields(t, err)
	assert.Contains(t, fields, "allocation.amounts")
	assert.Contains(t, fields, "headcount_overrides")
	assert.Contains(t, err.Error(), "G1/CD14 more than once")
}

// =============================================================================
// PRESETS
// =============================================================================

func TestPresets_AreValidAndSimulate(t *testing.T) {
	for _, p := range scenario.Presets() {
		t.Run(p.ID, func(t *testing.T) {
			cfg, err := p.Config()
			require.NoError(t, err)

			res, err := career.Simulate(cfg, career.Input{Overrides: career.Overrides{{Grade: 1, Level: 14}: 1}})
			require.NoError(t, err)
			assert.True(t, res.Report.GrandTotal.IsPositive())
		})
	}
}

func TestPreset_BaseCareer(t *testing.T) {
	p, ok := scenario.Preset(scenario.PresetBase)
	require.True(t, ok)
	cfg, err := p.Config()
	require.NoError(t, err)

	alloc, err := cfg.Allocation()
	require.NoError(t, err)
	assert.Equal(t, "1000", alloc.Get(1, 14).String())
	assert.Equal(t, "1020", alloc.Get(1, 15).String())
	assert.Equal(t, "1040.4", alloc.Get(4, 16).String())

	_, ok = scenario.Preset("nope")
	assert.False(t, ok)
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestFromConfig_RebuildsSameConfig(t *testing.T) {
	sc, err := scenario.Parse([]byte(baseYAML))
	require.NoError(t, err)
	cfg, err := sc.Config()
	require.NoError(t, err)

	back := scenario.FromConfig(sc.ID, sc.Name, cfg, sc.HeadcountOverrides())
	assert.Equal(t, *sc, back)

	data, err := back.Marshal()
	require.NoError(t, err)
	again, err := scenario.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, back, *again)
}
