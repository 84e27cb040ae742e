/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-based model from the external API contract. Money
  leaves the API as JSON numbers rounded to cents.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Simulation:
    SimulateRequest, RunRequest, RosterRowDTO, ReportDTO and its parts

  Scenarios:
    ScenarioDTO, RunDTO

VALIDATION:
  Request types carry go-playground/validator tags, checked in handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - scenario/scenario.go: Scenario schema embedded in requests
*/
package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/scenario"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RunRequest is the per-run input shared by every simulate/report endpoint.
// All fields are optional: without a roster only the overrides populate
// the headcount.
type RunRequest struct {
	AsOf      string                   `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Roster    []RosterRowDTO           `json:"roster,omitempty" validate:"dive"`
	Overrides []scenario.HeadcountJSON `json:"headcount_overrides,omitempty" validate:"dive"`
}

// SimulateRequest runs an unsaved scenario.
type SimulateRequest struct {
	Scenario scenario.Scenario `json:"scenario"`
	RunRequest
}

// RosterRowDTO mirrors the spreadsheet columns. Line defaults to the
// position in the list.
type RosterRowDTO struct {
	Line          int        `json:"line,omitempty" validate:"gte=0"`
	ID            string     `json:"ref"`
	AdmissionDate flexString `json:"fanti"`
	Level         flexString `json:"cd"`
}

// flexString accepts a JSON string or number, so {"cd": 14} and
// {"cd": "CD14"} both decode.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// =============================================================================
// SIMULATION RESPONSE
// =============================================================================

// ReportDTO is the full result of a simulation.
type ReportDTO struct {
	RunID          string           `json:"run_id,omitempty"`
	ScenarioID     string           `json:"scenario_id,omitempty"`
	AsOf           string           `json:"as_of"`
	GrandTotal     float64          `json:"grand_total"`
	TotalHeadcount int              `json:"total_headcount"`
	Summary        SummaryDTO       `json:"summary"`
	Headcount      HeadcountGridDTO `json:"headcount"`
	Costs          CostGridDTO      `json:"costs"`
	UnitCosts      []UnitCostDTO    `json:"unit_costs"`
	Employees      []EmployeeDTO    `json:"employees"`
	Excluded       []ExcludedRowDTO `json:"excluded"`
}

// SummaryDTO describes the configuration of a run.
type SummaryDTO struct {
	Grades      int        `json:"grades"`
	GradeYears  []int      `json:"grade_years"`
	Boundaries  []int      `json:"boundaries"`
	Stages      []StageDTO `json:"stages"`
	Mode        string     `json:"mode"`
	ModeLabel   string     `json:"mode_label"`
	LowestLevel []float64  `json:"cd14_amounts"`
	GrowthRate  *float64   `json:"growth_rate,omitempty"`
}

// StageDTO is one grade span on the career timeline.
type StageDTO struct {
	Grade int  `json:"grade"`
	From  int  `json:"from"`
	To    int  `json:"to"`
	Open  bool `json:"open"`
}

type HeadcountRowDTO struct {
	Level  string `json:"level"`
	Values []int  `json:"values"`
	Total  int    `json:"total"`
}

type HeadcountGridDTO struct {
	Rows         []HeadcountRowDTO `json:"rows"`
	ColumnTotals []int             `json:"column_totals"`
	GrandTotal   int               `json:"grand_total"`
}

type CostRowDTO struct {
	Level  string    `json:"level"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}

type CostGridDTO struct {
	Rows         []CostRowDTO `json:"rows"`
	ColumnTotals []float64    `json:"column_totals"`
	GrandTotal   float64      `json:"grand_total"`
}

type UnitCostDTO struct {
	Grade     int     `json:"grade"`
	Level     string  `json:"level"`
	Headcount int     `json:"headcount"`
	Annual    float64 `json:"annual"`
	Monthly   float64 `json:"monthly"`
}

type EmployeeDTO struct {
	Line          int    `json:"line,omitempty"`
	ID            string `json:"ref"`
	AdmissionDate string `json:"fanti"`
	Level         string `json:"cd"`
	Tenure        int    `json:"tenure_years"`
	Grade         int    `json:"grade"`
}

type ExcludedRowDTO struct {
	Line   int    `json:"line,omitempty"`
	ID     string `json:"ref"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// =============================================================================
// SCENARIOS AND RUNS
// =============================================================================

// ScenarioDTO is a stored scenario.
type ScenarioDTO struct {
	scenario.Scenario
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RunDTO struct {
	ID             string    `json:"id"`
	ScenarioID     string    `json:"scenario_id"`
	AsOf           string    `json:"as_of"`
	GrandTotal     float64   `json:"grand_total"`
	TotalHeadcount int       `json:"total_headcount"`
	Employees      int       `json:"employees"`
	Excluded       int       `json:"excluded"`
	CreatedAt      time.Time `json:"created_at"`
}

// LevelsDTO lists the organizational levels and ladder limits.
type LevelsDTO struct {
	Levels    []string `json:"levels"`
	MinLevel  int      `json:"min_level"`
	MaxLevel  int      `json:"max_level"`
	MaxGrades int      `json:"max_grades"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// NewReportDTO converts an engine report to its JSON shape.
func NewReportDTO(r *career.Report) ReportDTO {
	dto := ReportDTO{
		AsOf:           r.AsOf.Format(dateLayout),
		GrandTotal:     money(r.GrandTotal),
		TotalHeadcount: r.TotalHeadcount,
		Summary:        toSummaryDTO(r.Summary),
		UnitCosts:      make([]UnitCostDTO, 0, len(r.UnitCosts)),
		Employees:      make([]EmployeeDTO, 0, len(r.Employees)),
		Excluded:       make([]ExcludedRowDTO, 0, len(r.Excluded)),
	}

	for _, row := range r.Headcount.Rows {
		dto.Headcount.Rows = append(dto.Headcount.Rows, HeadcountRowDTO{
			Level: row.Level.String(), Values: row.Values, Total: row.Total,
		})
	}
	dto.Headcount.ColumnTotals = r.Headcount.ColumnTotals
	dto.Headcount.GrandTotal = r.Headcount.GrandTotal

	for _, row := range r.Costs.Rows {
		values := make([]float64, len(row.Values))
		for i, v := range row.Values {
			values[i] = money(v)
		}
		dto.Costs.Rows = append(dto.Costs.Rows, CostRowDTO{
			Level: row.Level.String(), Values: values, Total: money(row.Total),
		})
	}
	for _, v := range r.Costs.ColumnTotals {
		dto.Costs.ColumnTotals = append(dto.Costs.ColumnTotals, money(v))
	}
	dto.Costs.GrandTotal = money(r.Costs.GrandTotal)

	for _, u := range r.UnitCosts {
		dto.UnitCosts = append(dto.UnitCosts, UnitCostDTO{
			Grade:     int(u.Grade),
			Level:     u.Level.String(),
			Headcount: u.Headcount,
			Annual:    money(u.Annual),
			Monthly:   money(u.Monthly),
		})
	}
	for _, e := range r.Employees {
		dto.Employees = append(dto.Employees, EmployeeDTO{
			Line:          e.Line,
			ID:            e.ID,
			AdmissionDate: e.AdmissionDate.Format(dateLayout),
			Level:         e.Level.String(),
			Tenure:        e.Tenure,
			Grade:         int(e.Grade),
		})
	}
	for _, e := range r.Excluded {
		reason := ""
		if e.Err != nil {
			reason = e.Err.Error()
		}
		dto.Excluded = append(dto.Excluded, ExcludedRowDTO{
			Line: e.Line, ID: e.ID, Field: string(e.Kind), Value: e.Value, Reason: reason,
		})
	}
	return dto
}

func toSummaryDTO(s career.ConfigSummary) SummaryDTO {
	dto := SummaryDTO{
		Grades:      s.Grades,
		GradeYears:  s.Durations,
		Boundaries:  s.Boundaries,
		Mode:        string(s.Mode),
		ModeLabel:   s.Mode.Label(),
		LowestLevel: make([]float64, len(s.LowestLevel)),
	}
	for i, v := range s.LowestLevel {
		dto.LowestLevel[i] = money(v)
	}
	for _, st := range s.Stages {
		dto.Stages = append(dto.Stages, StageDTO{Grade: int(st.Grade), From: st.From, To: st.To, Open: st.Open})
	}
	if s.GrowthRate != nil {
		rate := s.GrowthRate.InexactFloat64()
		dto.GrowthRate = &rate
	}
	return dto
}

func toScenarioDTO(rec scenario.Record) ScenarioDTO {
	return ScenarioDTO{Scenario: rec.Scenario, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}

func toRunDTO(r scenario.Run) RunDTO {
	return RunDTO{
		ID:             r.ID,
		ScenarioID:     r.ScenarioID,
		AsOf:           r.AsOf.Format(dateLayout),
		GrandTotal:     money(r.GrandTotal),
		TotalHeadcount: r.TotalHeadcount,
		Employees:      r.Employees,
		Excluded:       r.Excluded,
		CreatedAt:      r.CreatedAt,
	}
}
