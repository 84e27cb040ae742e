package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/api"
	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/scenario"
	"github.com/warp/career-simulator/scenario/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSimulation_PresetWithOverrides(t *testing.T) {
	// GIVEN: The base preset and three people forced into G1/CD14
	// WHEN: Running without a roster
	// THEN: The text report shows the headcount and the 3,000.00 total
	var out bytes.Buffer
	err := runSimulation(&out, discard(), runOptions{
		preset:    scenario.PresetBase,
		asOf:      "2025-01-01",
		overrides: []string{"1:14=3"},
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Distribución por CD y Grado")
	assert.Contains(t, text, "Coste total:  3,000.00")
	assert.Contains(t, text, "Empleados:    3")
	assert.Contains(t, text, "Crecimiento por CD:   2%")
}

func TestRunSimulation_RosterFileAndJSON(t *testing.T) {
	roster := writeTemp(t, "plantilla.csv", "REF;fanti;CD\nA;2023-01-01;CD14\nB;nunca;14\n")
	sc := writeTemp(t, "escenario.yaml", `
id: dos
name: Dos grados
grades: 2
grade_years: [3, 3]
allocation:
  mode: proportional
  growth_rate: 0
  base_amounts: [1200, 1500]
`)

	var out bytes.Buffer
	err := runSimulation(&out, discard(), runOptions{
		scenarioPath: sc,
		rosterPath:   roster,
		asOf:         "2025-01-01",
		asJSON:       true,
	})
	require.NoError(t, err)

	var dto api.ReportDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &dto))
	assert.InDelta(t, 1200.0, dto.GrandTotal, 0.001)
	assert.Len(t, dto.Employees, 1)
	require.Len(t, dto.Excluded, 1)
	assert.Equal(t, "B", dto.Excluded[0].ID)
}

func TestRunSimulation_WritesDocuments(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "informe.pdf")
	xlsxPath := filepath.Join(dir, "informe.xlsx")

	var out bytes.Buffer
	err := runSimulation(&out, discard(), runOptions{
		preset:    scenario.PresetManual,
		overrides: []string{"2:CD20=1"},
		pdfPath:   pdfPath,
		xlsxPath:  xlsxPath,
	})
	require.NoError(t, err)

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunSimulation_Errors(t *testing.T) {
	cases := map[string]runOptions{
		"no scenario":      {},
		"both sources":     {preset: scenario.PresetBase, scenarioPath: "x.yaml"},
		"unknown preset":   {preset: "nope"},
		"bad as-of":        {preset: scenario.PresetBase, asOf: "01/01/2025"},
		"bad override":     {preset: scenario.PresetBase, overrides: []string{"1-14=3"}},
		"override outside": {preset: scenario.PresetBase, overrides: []string{"9:14=3"}},
		"missing roster":   {preset: scenario.PresetBase, rosterPath: "/nonexistent/plantilla.xlsx"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			err := runSimulation(io.Discard, discard(), opts)
			assert.Error(t, err)
		})
	}
}

func TestParseOverride(t *testing.T) {
	cell, count, err := parseOverride("2:CD15=4")
	require.NoError(t, err)
	assert.Equal(t, career.Cell{Grade: 2, Level: 15}, cell)
	assert.Equal(t, 4, count)

	for _, bad := range []string{"", "2:15", "2=4", "x:15=4", "2:CD99=4", "2:15=many"} {
		_, _, err := parseOverride(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunValidate(t *testing.T) {
	good := writeTemp(t, "ok.yaml", `
grades: 1
grade_years: [5]
allocation:
  mode: manual
  amounts:
    - {grade: 1, level: 14, amount: 1000}
`)
	var out bytes.Buffer
	require.NoError(t, runValidate(&out, good))
	assert.Contains(t, out.String(), "Result: VALID")

	bad := writeTemp(t, "bad.yaml", `
grades: 3
grade_years: [5]
allocation:
  mode: proportional
  base_amounts: [1000]
`)
	out.Reset()
	assert.Error(t, runValidate(&out, bad))
	assert.Contains(t, out.String(), "ERRORS (2)")
	assert.Contains(t, out.String(), "grade_years")

	assert.Error(t, runValidate(io.Discard, writeTemp(t, "junk.yaml", "grades: [")))
}

func TestSeedPresets_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, seedPresets(ctx, mem))
	list, err := mem.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(scenario.Presets()))

	require.NoError(t, mem.DeleteScenario(ctx, scenario.PresetBase))
	require.NoError(t, seedPresets(ctx, mem))
	list, err = mem.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(scenario.Presets())-1, "a non-empty store is left alone")
}

func TestRootCommand_Presets(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"presets", scenario.PresetBase})

	require.NoError(t, root.Execute())
	parsed, err := scenario.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, scenario.PresetBase, parsed.ID)
}
