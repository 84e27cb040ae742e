package career_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/career"
)

func headcountWith(t *testing.T, grades int, counts career.Overrides) *career.HeadcountTable {
	t.Helper()
	table, err := career.ApplyOverrides(career.NewHeadcountTable(grades), counts)
	require.NoError(t, err)
	return table
}

func manualTable(t *testing.T, grades int, amounts map[career.Cell]decimal.Decimal) *career.AllocationTable {
	t.Helper()
	table, err := career.BuildManualAllocation(grades, amounts)
	require.NoError(t, err)
	return table
}

// =============================================================================
// COST AGGREGATOR
// =============================================================================

func TestComputeCosts_SinglePopulatedCell(t *testing.T) {
	// GIVEN: 3 people in grade 1 / CD14 with a 1000 allocation
	// WHEN: Computing costs
	// THEN: One itemized line, 1000 annual, ~83.33 monthly, 3000 total
	headcount := headcountWith(t, 2, career.Overrides{{Grade: 1, Level: 14}: 3})
	allocation := manualTable(t, 2, map[career.Cell]decimal.Decimal{{Grade: 1, Level: 14}: dec("1000")})

	sheet, err := career.ComputeCosts(headcount, allocation)
	require.NoError(t, err)

	items := sheet.Itemized()
	require.Len(t, items, 1)
	assertDecimal(t, "1000", items[0].UnitAnnual)
	assert.InDelta(t, 83.33, items[0].UnitMonthly.InexactFloat64(), 0.005)
	assertDecimal(t, "3000", items[0].Total)
	assertDecimal(t, "3000", sheet.GrandTotal)
	assert.Equal(t, 3, sheet.TotalHeadcount)
}

func TestComputeCosts_ZeroCellsStayInGrid(t *testing.T) {
	headcount := headcountWith(t, 2, career.Overrides{{Grade: 2, Level: 25}: 1})
	allocation := career.BuildProportionalAllocation(decs("1000", "2000"), dec("0.02"))

	sheet, err := career.ComputeCosts(headcount, allocation)
	require.NoError(t, err)

	empty := sheet.Cell(1, 14)
	assert.Equal(t, 0, empty.Headcount)
	assertDecimal(t, "1000", empty.UnitAnnual, "unit amount still visible")
	assertDecimal(t, "0", empty.Total)
	assert.Len(t, sheet.Itemized(), 1)
}

func TestComputeCosts_GrandTotalMatchesIndependentSum(t *testing.T) {
	// Property: grand total == Σ headcount×allocation, whatever the order.
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		grades := 1 + rng.Intn(career.MaxGrades)
		counts := career.Overrides{}
		amounts := map[career.Cell]decimal.Decimal{}
		for g := 1; g <= grades; g++ {
			for _, l := range career.Levels() {
				cell := career.Cell{Grade: career.Grade(g), Level: l}
				counts[cell] = rng.Intn(6)
				amounts[cell] = decimal.NewFromInt(int64(rng.Intn(500000))).Shift(-2)
			}
		}

		sheet, err := career.ComputeCosts(headcountWith(t, grades, counts), manualTable(t, grades, amounts))
		require.NoError(t, err)

		// Independent float sum, reverse order.
		expected := 0.0
		levels := career.Levels()
		for g := grades; g >= 1; g-- {
			for i := len(levels) - 1; i >= 0; i-- {
				cell := career.Cell{Grade: career.Grade(g), Level: levels[i]}
				expected += float64(counts[cell]) * amounts[cell].InexactFloat64()
			}
		}

		assert.InDelta(t, expected, sheet.GrandTotal.InexactFloat64(), 1e-6, "trial %d", trial)
	}
}

func TestComputeCosts_Idempotent(t *testing.T) {
	headcount := headcountWith(t, 3, career.Overrides{
		{Grade: 1, Level: 14}: 2, {Grade: 2, Level: 22}: 5, {Grade: 3, Level: 30}: 1,
	})
	allocation := career.BuildProportionalAllocation(decs("900", "1000", "1100"), dec("0.03"))

	first, err := career.ComputeCosts(headcount, allocation)
	require.NoError(t, err)
	second, err := career.ComputeCosts(headcount, allocation)
	require.NoError(t, err)

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	for g := 1; g <= 3; g++ {
		for _, l := range career.Levels() {
			a, b := first.Cell(career.Grade(g), l), second.Cell(career.Grade(g), l)
			assert.Equal(t, a.Headcount, b.Headcount)
			assert.True(t, a.Total.Equal(b.Total))
			assert.True(t, a.UnitMonthly.Equal(b.UnitMonthly))
		}
	}
}

func TestComputeCosts_EmptyHeadcountIsAllZero(t *testing.T) {
	sheet, err := career.ComputeCosts(career.NewHeadcountTable(4), career.BuildProportionalAllocation(decs("1", "2", "3", "4"), dec("0.1")))
	require.NoError(t, err)

	assert.True(t, sheet.GrandTotal.IsZero())
	assert.Equal(t, 0, sheet.TotalHeadcount)
	assert.Empty(t, sheet.Itemized())
}

func TestComputeCosts_GradeMismatch(t *testing.T) {
	_, err := career.ComputeCosts(career.NewHeadcountTable(2), career.BuildProportionalAllocation(decs("1"), decimal.Zero))
	assert.ErrorIs(t, err, career.ErrGradeMismatch)
}

func TestComputeCosts_ItemizedOrder(t *testing.T) {
	headcount := headcountWith(t, 2, career.Overrides{
		{Grade: 2, Level: 14}: 1, {Grade: 1, Level: 30}: 1, {Grade: 1, Level: 15}: 1,
	})
	sheet, err := career.ComputeCosts(headcount, career.BuildProportionalAllocation(decs("1", "1"), decimal.Zero))
	require.NoError(t, err)

	items := sheet.Itemized()
	require.Len(t, items, 3)
	assert.Equal(t, career.Cell{Grade: 1, Level: 15}, career.Cell{Grade: items[0].Grade, Level: items[0].Level})
	assert.Equal(t, career.Cell{Grade: 1, Level: 30}, career.Cell{Grade: items[1].Grade, Level: items[1].Level})
	assert.Equal(t, career.Cell{Grade: 2, Level: 14}, career.Cell{Grade: items[2].Grade, Level: items[2].Level})
}
