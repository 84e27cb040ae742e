/*
Package scenario provides file/JSON to engine configuration conversion.

PURPOSE:
  Converts scenario definitions (YAML or JSON) into career.Config and
  headcount overrides. Scenarios can be edited by HR without code changes,
  stored in the database, and loaded from the command line.

SCHEMA:
  id: carrera-base
  name: Carrera horizontal 4 grados
  grades: 4
  grade_years: [5, 5, 5, 5]
  allocation:
    mode: proportional          # or manual
    growth_rate: 0.02
    base_amounts: [1000, 1000, 1000, 1000]
    amounts:                    # manual mode
      - {grade: 1, level: 14, amount: 1200}
  headcount_overrides:
    - {grade: 1, level: 14, count: 3}

KEY FEATURES:
  - YAML and JSON accepted through the same decoder (YAML is a superset)
  - Unknown fields are rejected
  - Struct tags validated with go-playground/validator, cross-field rules
    (one entry per grade) checked at struct level
  - Validation failures unwrap to career.ErrInvalidConfiguration

USAGE:
  sc, err := scenario.Load("escenario.yaml")
  cfg, err := sc.Config()
  res, err := career.Simulate(cfg, career.Input{Overrides: sc.HeadcountOverrides()})

SEE ALSO:
  - career/config.go: Engine configuration
  - presets.go: Built-in scenarios
  - store.go: Persistence interface
*/
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/career-simulator/career"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// Scenario is the serialized form of a simulation configuration.
type Scenario struct {
	ID         string          `json:"id" yaml:"id" validate:"omitempty,max=64"`
	Name       string          `json:"name" yaml:"name" validate:"max=200"`
	Grades     int             `json:"grades" yaml:"grades" validate:"min=1,max=10"`
	GradeYears []int           `json:"grade_years" yaml:"grade_years" validate:"required,dive,gte=1"`
	Allocation AllocationJSON  `json:"allocation" yaml:"allocation"`
	Overrides  []HeadcountJSON `json:"headcount_overrides,omitempty" yaml:"headcount_overrides,omitempty" validate:"dive"`
}

// AllocationJSON configures the allocation table.
type AllocationJSON struct {
	Mode        string       `json:"mode" yaml:"mode" validate:"required,oneof=manual proportional"`
	GrowthRate  float64      `json:"growth_rate,omitempty" yaml:"growth_rate,omitempty" validate:"gte=0"`
	BaseAmounts []float64    `json:"base_amounts,omitempty" yaml:"base_amounts,omitempty" validate:"dive,gte=0"`
	Amounts     []AmountJSON `json:"amounts,omitempty" yaml:"amounts,omitempty" validate:"dive"`
}

// AmountJSON is one manual allocation cell.
type AmountJSON struct {
	Grade  int     `json:"grade" yaml:"grade" validate:"min=1,max=10"`
	Level  int     `json:"level" yaml:"level" validate:"min=14,max=30"`
	Amount float64 `json:"amount" yaml:"amount" validate:"gte=0"`
}

// HeadcountJSON is one manual headcount edit.
type HeadcountJSON struct {
	Grade int `json:"grade" yaml:"grade" validate:"min=1,max=10"`
	Level int `json:"level" yaml:"level" validate:"min=14,max=30"`
	Count int `json:"count" yaml:"count" validate:"gte=0"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON scenario and validates it.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing scenario: empty document")
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Marshal renders the scenario as YAML.
func (sc Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(sc)
}

// =============================================================================
// CONVERSION
// =============================================================================

// Config converts the scenario into an engine configuration.
func (sc Scenario) Config() (career.Config, error) {
	if err := sc.Validate(); err != nil {
		return career.Config{}, err
	}

	cfg := career.Config{
		Grades:    sc.Grades,
		Durations: append([]int(nil), sc.GradeYears...),
		Mode:      career.AllocationMode(sc.Allocation.Mode),
	}

	switch cfg.Mode {
	case career.ModeManual:
		cfg.Manual = make(map[career.Cell]decimal.Decimal, len(sc.Allocation.Amounts))
		for _, a := range sc.Allocation.Amounts {
			cfg.Manual[career.Cell{Grade: career.Grade(a.Grade), Level: career.Level(a.Level)}] = decimal.NewFromFloat(a.Amount)
		}
	case career.ModeProportional:
		cfg.GrowthRate = decimal.NewFromFloat(sc.Allocation.GrowthRate)
		for _, b := range sc.Allocation.BaseAmounts {
			cfg.BaseAmounts = append(cfg.BaseAmounts, decimal.NewFromFloat(b))
		}
	}

	return cfg, cfg.Validate()
}

// HeadcountOverrides returns the manual headcount edits, nil when none.
func (sc Scenario) HeadcountOverrides() career.Overrides {
	if len(sc.Overrides) == 0 {
		return nil
	}
	out := make(career.Overrides, len(sc.Overrides))
	for _, o := range sc.Overrides {
		out[career.Cell{Grade: career.Grade(o.Grade), Level: career.Level(o.Level)}] = o.Count
	}
	return out
}

// FromConfig converts an engine configuration back to its serialized form.
func FromConfig(id, name string, cfg career.Config, overrides career.Overrides) Scenario {
	sc := Scenario{
		ID:         id,
		Name:       name,
		Grades:     cfg.Grades,
		GradeYears: append([]int(nil), cfg.Durations...),
		Allocation: AllocationJSON{Mode: string(cfg.Mode)},
	}

	switch cfg.Mode {
	case career.ModeManual:
		for g := 1; g <= cfg.Grades; g++ {
			for _, l := range career.Levels() {
				amount, ok := cfg.Manual[career.Cell{Grade: career.Grade(g), Level: l}]
				if !ok {
					continue
				}
				sc.Allocation.Amounts = append(sc.Allocation.Amounts, AmountJSON{
					Grade: g, Level: int(l), Amount: amount.InexactFloat64(),
				})
			}
		}
	case career.ModeProportional:
		sc.Allocation.GrowthRate = cfg.GrowthRate.InexactFloat64()
		for _, b := range cfg.BaseAmounts {
			sc.Allocation.BaseAmounts = append(sc.Allocation.BaseAmounts, b.InexactFloat64())
		}
	}

	for g := 1; g <= cfg.Grades; g++ {
		for _, l := range career.Levels() {
			n, ok := overrides[career.Cell{Grade: career.Grade(g), Level: l}]
			if !ok {
				continue
			}
			sc.Overrides = append(sc.Overrides, HeadcountJSON{Grade: g, Level: int(l), Count: n})
		}
	}
	return sc
}
