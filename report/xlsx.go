package report

import (
	"fmt"
	"io"

	"github.com/warp/career-simulator/career"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSummary   = "Resumen"
	SheetHeadcount = "Personas"
	SheetCosts     = "Costes"
	SheetUnitCosts = "Unitarios"
	SheetEmployees = "Empleados"
	SheetExcluded  = "Excluidas"
)

// Built-in number formats.
const (
	numFmtMoney = 4  // #,##0.00
	numFmtDate  = 14 // locale short date
)

type xlsxWriter struct {
	f     *excelize.File
	bold  int
	money int
	date  int
	err   error
}

// WriteXLSX exports every table of the report into one workbook.
// Amounts are stored as numbers so they stay usable in formulas.
func WriteXLSX(w io.Writer, r *career.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	x := &xlsxWriter{f: f}
	x.styles()

	if x.err == nil {
		x.err = f.SetSheetName(f.GetSheetName(0), SheetSummary)
	}
	x.summary(r)
	x.headcount(r)
	x.costs(r)
	x.unitCosts(r)
	x.employees(r)
	if len(r.Excluded) > 0 {
		x.excluded(r)
	}

	if x.err != nil {
		return fmt.Errorf("building workbook: %w", x.err)
	}
	f.SetActiveSheet(0)
	_, err := f.WriteTo(w)
	return err
}

// =============================================================================
// SHEETS
// =============================================================================

func (x *xlsxWriter) summary(r *career.Report) {
	s := r.Summary
	rows := [][]any{
		{"Fecha de cálculo", r.AsOf},
		{"Coste total (euros)", r.GrandTotal.InexactFloat64()},
		{"Número total de empleados", r.TotalHeadcount},
		{"Número de grados", s.Grades},
		{"Años por grado", joinInts(s.Durations)},
		{"Modo de asignación", s.Mode.Label()},
	}
	if s.GrowthRate != nil {
		rows = append(rows, []any{"Incremento por nivel", s.GrowthRate.InexactFloat64()})
	}
	for i, amount := range s.LowestLevel {
		rows = append(rows, []any{fmt.Sprintf("CD14 Grado %d (euros)", i+1), amount.InexactFloat64()})
	}
	for i, st := range s.Stages {
		to := fmt.Sprint(st.To)
		if st.Open {
			to += "+"
		}
		rows = append(rows, []any{fmt.Sprintf("Tramo Grado %d (años)", i+1), fmt.Sprintf("%d - %s", st.From, to)})
	}

	x.rows(SheetSummary, 1, rows)
	x.style(SheetSummary, "A1", cell(1, len(rows)), x.bold)
	x.style(SheetSummary, "B1", "B1", x.date)
	x.style(SheetSummary, "B2", "B2", x.money)
	for i := range s.LowestLevel {
		c := cell(2, len(rows)-len(s.Stages)-len(s.LowestLevel)+i+1)
		x.style(SheetSummary, c, c, x.money)
	}
	x.width(SheetSummary, "A", "A", 32)
	x.width(SheetSummary, "B", "B", 22)
}

func (x *xlsxWriter) headcount(r *career.Report) {
	g := r.Headcount
	x.sheet(SheetHeadcount)
	x.rows(SheetHeadcount, 1, [][]any{gridHeader(g.Grades)})

	rows := make([][]any, 0, len(g.Rows)+1)
	for _, row := range g.Rows {
		line := []any{row.Level.String()}
		for _, v := range row.Values {
			line = append(line, v)
		}
		rows = append(rows, append(line, row.Total))
	}
	total := []any{"Total"}
	for _, v := range g.ColumnTotals {
		total = append(total, v)
	}
	rows = append(rows, append(total, g.GrandTotal))
	x.rows(SheetHeadcount, 2, rows)

	x.style(SheetHeadcount, "A1", cell(g.Grades+2, 1), x.bold)
	x.style(SheetHeadcount, cell(1, len(rows)+1), cell(g.Grades+2, len(rows)+1), x.bold)
}

func (x *xlsxWriter) costs(r *career.Report) {
	g := r.Costs
	x.sheet(SheetCosts)
	x.rows(SheetCosts, 1, [][]any{gridHeader(g.Grades)})

	rows := make([][]any, 0, len(g.Rows)+1)
	for _, row := range g.Rows {
		line := []any{row.Level.String()}
		for _, v := range row.Values {
			line = append(line, v.InexactFloat64())
		}
		rows = append(rows, append(line, row.Total.InexactFloat64()))
	}
	total := []any{"Total"}
	for _, v := range g.ColumnTotals {
		total = append(total, v.InexactFloat64())
	}
	rows = append(rows, append(total, g.GrandTotal.InexactFloat64()))
	x.rows(SheetCosts, 2, rows)

	x.style(SheetCosts, "B2", cell(g.Grades+2, len(rows)+1), x.money)
	x.style(SheetCosts, "A1", cell(g.Grades+2, 1), x.bold)
	x.width(SheetCosts, "B", col(g.Grades+2), 14)
}

func (x *xlsxWriter) unitCosts(r *career.Report) {
	x.sheet(SheetUnitCosts)
	rows := [][]any{{"Grado", "CD", "Personas", "Anual (euros)", "Mensual (euros)"}}
	for _, u := range r.UnitCosts {
		rows = append(rows, []any{
			int(u.Grade), u.Level.String(), u.Headcount,
			u.Annual.InexactFloat64(), u.Monthly.InexactFloat64(),
		})
	}
	x.rows(SheetUnitCosts, 1, rows)
	x.style(SheetUnitCosts, "A1", "E1", x.bold)
	if len(rows) > 1 {
		x.style(SheetUnitCosts, "D2", cell(5, len(rows)), x.money)
	}
	x.width(SheetUnitCosts, "D", "E", 16)
}

func (x *xlsxWriter) employees(r *career.Report) {
	x.sheet(SheetEmployees)
	rows := [][]any{{"REF", "fanti", "CD", "Antigüedad (años)", "Grado"}}
	for _, e := range r.Employees {
		rows = append(rows, []any{e.ID, e.AdmissionDate, e.Level.String(), e.Tenure, int(e.Grade)})
	}
	x.rows(SheetEmployees, 1, rows)
	x.style(SheetEmployees, "A1", "E1", x.bold)
	if len(rows) > 1 {
		x.style(SheetEmployees, "B2", cell(2, len(rows)), x.date)
	}
	x.width(SheetEmployees, "A", "D", 16)
}

func (x *xlsxWriter) excluded(r *career.Report) {
	x.sheet(SheetExcluded)
	rows := [][]any{{"Fila", "REF", "Campo", "Valor", "Motivo"}}
	for _, e := range r.Excluded {
		reason := ""
		if e.Err != nil {
			reason = e.Err.Error()
		}
		rows = append(rows, []any{e.Line, e.ID, kindLabel(e.Kind), e.Value, reason})
	}
	x.rows(SheetExcluded, 1, rows)
	x.style(SheetExcluded, "A1", "E1", x.bold)
	x.width(SheetExcluded, "D", "E", 30)
}

// =============================================================================
// HELPERS
// =============================================================================

// Each helper is a no-op once an error has been recorded.

func (x *xlsxWriter) styles() {
	x.bold, x.err = x.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if x.err != nil {
		return
	}
	x.money, x.err = x.f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if x.err != nil {
		return
	}
	x.date, x.err = x.f.NewStyle(&excelize.Style{NumFmt: numFmtDate})
}

func (x *xlsxWriter) sheet(name string) {
	if x.err != nil {
		return
	}
	_, x.err = x.f.NewSheet(name)
}

func (x *xlsxWriter) rows(sheet string, firstRow int, rows [][]any) {
	for i, row := range rows {
		if x.err != nil {
			return
		}
		r := row
		x.err = x.f.SetSheetRow(sheet, cell(1, firstRow+i), &r)
	}
}

func (x *xlsxWriter) style(sheet, from, to string, style int) {
	if x.err != nil {
		return
	}
	x.err = x.f.SetCellStyle(sheet, from, to, style)
}

func (x *xlsxWriter) width(sheet, from, to string, w float64) {
	if x.err != nil {
		return
	}
	x.err = x.f.SetColWidth(sheet, from, to, w)
}

func gridHeader(grades int) []any {
	header := []any{"CD"}
	for g := 1; g <= grades; g++ {
		header = append(header, fmt.Sprintf("G%d", g))
	}
	return append(header, "Total")
}

// cell converts 1-based coordinates; inputs are always in range.
func cell(c, r int) string {
	name, _ := excelize.CoordinatesToCellName(c, r)
	return name
}

func col(c int) string {
	name, _ := excelize.ColumnNumberToName(c)
	return name
}
