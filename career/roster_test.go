package career_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/career"
)

func fiveYearLadder(t *testing.T) *career.Ladder {
	t.Helper()
	ladder, err := career.NewLadder([]int{5, 5})
	require.NoError(t, err)
	return ladder
}

// =============================================================================
// CLASSIFY ROSTER
// =============================================================================

func TestClassifyRoster_MalformedDateIsExcludedNotFatal(t *testing.T) {
	// GIVEN: 10 roster rows, one with an unparseable admission date
	// WHEN: Classifying the roster
	// THEN: 9 employees are classified and 1 diagnostic is reported
	asOf := date(2025, time.January, 1)
	var rows []career.RosterRow
	for i := 1; i <= 10; i++ {
		rows = append(rows, career.RosterRow{
			Line:          i + 1,
			ID:            fmt.Sprintf("E%02d", i),
			AdmissionDate: asOf.AddDate(-i, 0, 0).Format("2006-01-02"),
			Level:         "18",
		})
	}
	rows[4].AdmissionDate = "not a date"

	result := career.ClassifyRoster(rows, fiveYearLadder(t), career.RosterOptions{AsOf: asOf})

	assert.Len(t, result.Employees, 9)
	require.Len(t, result.Excluded, 1)

	bad := result.Excluded[0]
	assert.Equal(t, "E05", bad.ID)
	assert.Equal(t, 6, bad.Line)
	assert.Equal(t, career.RowErrorDate, bad.Kind)
	assert.ErrorIs(t, bad, career.ErrMalformedRosterRow)
	assert.True(t, career.IsRowError(bad))
}

func TestClassifyRoster_UnknownLevelIsExcluded(t *testing.T) {
	rows := []career.RosterRow{
		{Line: 2, ID: "A", AdmissionDate: "2020-01-01", Level: "14"},
		{Line: 3, ID: "B", AdmissionDate: "2020-01-01", Level: "31"},
		{Line: 4, ID: "C", AdmissionDate: "2020-01-01", Level: "CD13"},
		{Line: 5, ID: "D", AdmissionDate: "2020-01-01", Level: "jefe"},
	}

	result := career.ClassifyRoster(rows, fiveYearLadder(t), career.RosterOptions{AsOf: date(2025, time.June, 1)})

	require.Len(t, result.Employees, 1)
	assert.Equal(t, "A", result.Employees[0].ID)
	require.Len(t, result.Excluded, 3)
	for _, e := range result.Excluded {
		assert.Equal(t, career.RowErrorLevel, e.Kind)
	}
}

func TestClassifyRoster_AssignsTenureAndGrade(t *testing.T) {
	asOf := date(2025, time.June, 1)
	rows := []career.RosterRow{
		{ID: "junior", AdmissionDate: asOf.AddDate(0, 0, -4*365).Format("2006-01-02"), Level: "14"},
		{ID: "boundary", AdmissionDate: asOf.AddDate(0, 0, -5*365).Format("2006-01-02"), Level: "20"},
		{ID: "veteran", AdmissionDate: "1990-01-01", Level: "30"},
		{ID: "future", AdmissionDate: "2030-01-01", Level: "15"},
	}

	result := career.ClassifyRoster(rows, fiveYearLadder(t), career.RosterOptions{AsOf: asOf})
	require.Len(t, result.Employees, 4)
	require.Empty(t, result.Excluded)

	byID := map[string]career.Employee{}
	for _, e := range result.Employees {
		byID[e.ID] = e
	}

	assert.Equal(t, 4, byID["junior"].Tenure)
	assert.Equal(t, career.Grade(1), byID["junior"].Grade)
	assert.Equal(t, 5, byID["boundary"].Tenure)
	assert.Equal(t, career.Grade(2), byID["boundary"].Grade)
	assert.Equal(t, career.Grade(2), byID["veteran"].Grade)
	assert.Less(t, byID["future"].Tenure, 0)
	assert.Equal(t, career.Grade(1), byID["future"].Grade)
	assert.Equal(t, career.Level(30), byID["veteran"].Level)
}

func TestClassifyRoster_SkipsBlankRowsSilently(t *testing.T) {
	rows := []career.RosterRow{
		{ID: "A", AdmissionDate: "2020-01-01", Level: "14"},
		{ID: "  ", AdmissionDate: "", Level: ""},
	}

	result := career.ClassifyRoster(rows, fiveYearLadder(t), career.RosterOptions{AsOf: date(2025, 1, 1)})
	assert.Len(t, result.Employees, 1)
	assert.Empty(t, result.Excluded)
}

func TestClassifyRoster_CustomDateParser(t *testing.T) {
	parse := func(string) (time.Time, error) { return date(2010, 1, 1), nil }
	rows := []career.RosterRow{{ID: "A", AdmissionDate: "whatever", Level: "22"}}

	result := career.ClassifyRoster(rows, fiveYearLadder(t), career.RosterOptions{
		AsOf:      date(2025, 1, 1),
		ParseDate: parse,
	})
	require.Len(t, result.Employees, 1)
	assert.Equal(t, date(2010, 1, 1), result.Employees[0].AdmissionDate)
}

// =============================================================================
// HEADCOUNT
// =============================================================================

func TestCountHeadcount_GroupsByGradeAndLevel(t *testing.T) {
	employees := []career.Employee{
		{ID: "a", Grade: 1, Level: 14},
		{ID: "b", Grade: 1, Level: 14},
		{ID: "c", Grade: 2, Level: 14},
		{ID: "d", Grade: 2, Level: 30},
	}

	table := career.CountHeadcount(2, employees)

	assert.Equal(t, 2, table.Get(1, 14))
	assert.Equal(t, 1, table.Get(2, 14))
	assert.Equal(t, 1, table.Get(2, 30))
	assert.Equal(t, 0, table.Get(1, 30))
	assert.Equal(t, 4, table.Total())
}

func TestApplyOverrides_OverrideWinsPerCell(t *testing.T) {
	// GIVEN: Roster-derived counts and manual edits on some cells
	// WHEN: Merging
	// THEN: Edited cells take the edit (even zero), others keep the roster count
	base := career.CountHeadcount(2, []career.Employee{
		{Grade: 1, Level: 14}, {Grade: 1, Level: 14}, {Grade: 2, Level: 20},
	})

	merged, err := career.ApplyOverrides(base, career.Overrides{
		{Grade: 1, Level: 14}: 0,
		{Grade: 1, Level: 15}: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, merged.Get(1, 14))
	assert.Equal(t, 7, merged.Get(1, 15))
	assert.Equal(t, 1, merged.Get(2, 20))
	assert.Equal(t, 2, base.Get(1, 14), "base table must not change")
}

func TestApplyOverrides_RejectsNegativeAndOutOfDomain(t *testing.T) {
	base := career.NewHeadcountTable(1)

	_, err := career.ApplyOverrides(base, career.Overrides{{Grade: 1, Level: 14}: -1})
	assert.ErrorIs(t, err, career.ErrInvalidConfiguration)

	_, err = career.ApplyOverrides(base, career.Overrides{{Grade: 2, Level: 14}: 1})
	assert.ErrorIs(t, err, career.ErrInvalidConfiguration)
}

func TestApplyOverrides_NilMapKeepsBase(t *testing.T) {
	base := career.CountHeadcount(1, []career.Employee{{Grade: 1, Level: 16}})
	merged, err := career.ApplyOverrides(base, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Get(1, 16))
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

func TestParseDate_Layouts(t *testing.T) {
	cases := map[string]time.Time{
		"2019-03-15":          date(2019, 3, 15),
		" 2019-03-15 ":        date(2019, 3, 15),
		"2019-03-15 08:30:00": date(2019, 3, 15),
		"2019/03/15":          date(2019, 3, 15),
		"3/15/2019":           date(2019, 3, 15),
		"15/03/2019":          date(2019, 3, 15),
		"15.03.2019":          date(2019, 3, 15),
	}
	for input, expected := range cases {
		got, err := career.ParseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	for _, bad := range []string{"", "yesterday", "2019-13-45", "45/45/2019"} {
		_, err := career.ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLevel(t *testing.T) {
	for input, expected := range map[string]career.Level{
		"14": 14, " 30 ": 30, "22.0": 22, "CD18": 18, "cd 19": 19,
	} {
		got, err := career.ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	for _, bad := range []string{"", "13", "31", "14.5", "CD", "x"} {
		_, err := career.ParseLevel(bad)
		assert.Error(t, err, bad)
	}
}
