package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/warp/career-simulator/career"
)

// PDFOptions controls the PDF document.
type PDFOptions struct {
	Title       string    // defaults to DefaultTitle
	LeftLogo    string    // image path, optional
	RightLogo   string    // image path, optional
	GeneratedAt time.Time // defaults to now
}

// DefaultTitle is the PDF heading.
const DefaultTitle = "Informe de Simulación de costes de Carrera Profesional"

// A4 portrait layout, millimeters.
const (
	pageWidth   = 210.0
	margin      = 10.0
	usableWidth = pageWidth - 2*margin
	logoWidth   = 30.0
	logoBand    = 40.0 // header height when logos are drawn
	rowHeight   = 5.0
)

// Timeline palette, cycled per grade.
var stageColors = [][3]int{
	{66, 133, 244}, {52, 168, 83}, {251, 188, 5}, {234, 67, 53}, {142, 36, 170},
	{0, 172, 193}, {255, 112, 67}, {158, 157, 36}, {92, 107, 192}, {240, 98, 146},
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// WritePDF renders the report as a three-page A4 document:
//  1. totals, configuration, CD14 amounts and the career timeline
//  2. headcount and cost grids by CD and grade
//  3. unit annual and monthly costs, plus excluded roster rows
func WritePDF(w io.Writer, r *career.Report, opts PDFOptions) error {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("career-simulator", true)
	pdf.SetCreationDate(opts.GeneratedAt)
	pdf.AliasNbPages("")

	p := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetHeaderFunc(func() { p.header(opts) })
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	p.summaryPage(r, opts)
	p.gridPage(r)
	p.unitCostPage(r)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf.Output(w)
}

// =============================================================================
// PAGES
// =============================================================================

func (p *pdfWriter) header(opts PDFOptions) {
	pdf := p.pdf
	drawn := false
	if opts.LeftLogo != "" {
		pdf.ImageOptions(opts.LeftLogo, margin, margin, logoWidth, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
		drawn = true
	}
	if opts.RightLogo != "" {
		pdf.ImageOptions(opts.RightLogo, pageWidth-margin-logoWidth, margin, logoWidth, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
		drawn = true
	}
	if drawn {
		pdf.SetY(logoBand)
	}
}

func (p *pdfWriter) summaryPage(r *career.Report, opts PDFOptions) {
	pdf := p.pdf
	s := r.Summary
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, p.tr(opts.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Fecha: "+opts.GeneratedAt.Format("02/01/2006"), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, p.tr("Antigüedad calculada a: "+r.AsOf.Format("02/01/2006")), "", 1, "", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Coste total del escenario: "+Money(r.GrandTotal)+" euros", "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, p.tr(fmt.Sprintf("Número total de empleados: %d", r.TotalHeadcount)), "", 1, "", false, 0, "")

	p.section("Configuración del escenario")
	pdf.SetFont("Helvetica", "", 10)
	p.line(fmt.Sprintf("Número de grados: %d", s.Grades))
	p.line("Años por grado: " + joinInts(s.Durations))
	p.line("Modo de asignación: " + s.Mode.Label())
	if s.GrowthRate != nil {
		p.line("Incremento por nivel: " + s.GrowthRate.Shift(2).StringFixed(2) + " %")
	}

	p.section("Importes para CD14 por grado")
	pdf.SetFont("Helvetica", "", 10)
	for i, amount := range s.LowestLevel {
		p.line(fmt.Sprintf("Grado %d: %s euros", i+1, Money(amount)))
	}

	p.section("Años por grado")
	p.timeline(s.Stages)
}

func (p *pdfWriter) gridPage(r *career.Report) {
	pdf := p.pdf
	pdf.AddPage()

	p.section("Distribución por CD y Grado (personas)")
	hc := r.Headcount
	p.gridHeader(hc.Grades)
	for _, row := range hc.Rows {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = strconv.Itoa(v)
		}
		p.gridRow(row.Level.String(), cells, strconv.Itoa(row.Total), false)
	}
	totals := make([]string, len(hc.ColumnTotals))
	for i, v := range hc.ColumnTotals {
		totals[i] = strconv.Itoa(v)
	}
	p.gridRow("Total", totals, strconv.Itoa(hc.GrandTotal), true)

	p.section("Importes asignados por CD y Grado (euros)")
	costs := r.Costs
	p.gridHeader(costs.Grades)
	for _, row := range costs.Rows {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = Money(v)
		}
		p.gridRow(row.Level.String(), cells, Money(row.Total), false)
	}
	money := make([]string, len(costs.ColumnTotals))
	for i, v := range costs.ColumnTotals {
		money[i] = Money(v)
	}
	p.gridRow("Total", money, Money(costs.GrandTotal), true)
}

func (p *pdfWriter) unitCostPage(r *career.Report) {
	pdf := p.pdf
	pdf.AddPage()

	p.section("Coste unitario anual y mensual por CD y Grado")
	widths := []float64{20, 20, 25, 40, 40}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Grado", "CD", "Personas", "Anual (euros)", "Mensual (euros)"} {
		pdf.CellFormat(widths[i], rowHeight+1, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, u := range r.UnitCosts {
		pdf.CellFormat(widths[0], rowHeight, strconv.Itoa(int(u.Grade)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, u.Level.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, strconv.Itoa(u.Headcount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], rowHeight, Money(u.Annual), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], rowHeight, Money(u.Monthly), "1", 1, "R", false, 0, "")
	}
	if len(r.UnitCosts) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, rowHeight, "Sin personas asignadas", "", 1, "", false, 0, "")
	}

	if len(r.Excluded) == 0 {
		return
	}
	p.section(fmt.Sprintf("Filas excluidas de la plantilla (%d)", len(r.Excluded)))
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range r.Excluded {
		p.line(fmt.Sprintf("Fila %d (%s): %s no válido \"%s\"", e.Line, e.ID, kindLabel(e.Kind), e.Value))
	}
}

// =============================================================================
// BUILDING BLOCKS
// =============================================================================

func (p *pdfWriter) section(title string) {
	p.pdf.Ln(4)
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 8, p.tr(title), "", 1, "", false, 0, "")
}

func (p *pdfWriter) line(text string) {
	p.pdf.CellFormat(0, 6, p.tr(text), "", 1, "", false, 0, "")
}

// gridWidths fits the level column, one column per grade and the total
// column into the usable width.
func gridWidths(grades int) (level, grade, total float64) {
	level, total = 14, 24
	grade = 18
	if avail := (usableWidth - level - total) / float64(grades); avail < grade {
		grade = avail
	}
	return level, grade, total
}

func (p *pdfWriter) gridHeader(grades int) {
	pdf := p.pdf
	lw, gw, tw := gridWidths(grades)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(lw, rowHeight+1, "CD", "1", 0, "C", true, 0, "")
	for g := 1; g <= grades; g++ {
		pdf.CellFormat(gw, rowHeight+1, "G"+strconv.Itoa(g), "1", 0, "C", true, 0, "")
	}
	pdf.CellFormat(tw, rowHeight+1, "Total", "1", 1, "C", true, 0, "")
}

func (p *pdfWriter) gridRow(label string, cells []string, total string, bold bool) {
	pdf := p.pdf
	lw, gw, tw := gridWidths(len(cells))
	style := ""
	if bold {
		style = "B"
	}
	size := 8.0
	if len(cells) > 6 {
		size = 6.5
	}
	pdf.SetFont("Helvetica", style, size)
	pdf.CellFormat(lw, rowHeight, label, "1", 0, "C", false, 0, "")
	for _, c := range cells {
		pdf.CellFormat(gw, rowHeight, c, "1", 0, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", size)
	pdf.CellFormat(tw, rowHeight, total, "1", 1, "R", false, 0, "")
}

// timeline draws one colored segment per grade on a shared year axis with
// tick marks at each boundary. The last segment carries a "+" since the top
// grade has no upper limit.
func (p *pdfWriter) timeline(stages []career.Stage) {
	if len(stages) == 0 {
		return
	}
	pdf := p.pdf
	span := stages[len(stages)-1].To
	if span <= 0 {
		return
	}

	const barHeight = 10.0
	x0 := margin + 5
	width := usableWidth - 15
	scale := width / float64(span)
	y := pdf.GetY() + 4

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetDrawColor(255, 255, 255)
	for i, st := range stages {
		c := stageColors[i%len(stageColors)]
		pdf.SetFillColor(c[0], c[1], c[2])
		x := x0 + float64(st.From)*scale
		w := float64(st.To-st.From) * scale
		pdf.Rect(x, y, w, barHeight, "FD")

		label := "G" + strconv.Itoa(int(st.Grade))
		if st.Open {
			label += "+"
		}
		pdf.SetTextColor(255, 255, 255)
		pdf.SetXY(x, y)
		pdf.CellFormat(w, barHeight, label, "", 0, "C", false, 0, "")
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 7)
	axis := y + barHeight + 1
	pdf.Line(x0, axis, x0+width, axis)
	ticks := []int{stages[0].From}
	for _, st := range stages {
		ticks = append(ticks, st.To)
	}
	for _, t := range ticks {
		x := x0 + float64(t)*scale
		pdf.Line(x, axis, x, axis+1.5)
		label := strconv.Itoa(t)
		pdf.Text(x-pdf.GetStringWidth(label)/2, axis+4.5, label)
	}

	pdf.SetXY(margin, axis+7)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, p.tr("Años de antigüedad acumulados"), "", 1, "C", false, 0, "")
}

func kindLabel(k career.RowErrorKind) string {
	switch k {
	case career.RowErrorDate:
		return "fecha"
	case career.RowErrorLevel:
		return "CD"
	default:
		return string(k)
	}
}
