package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/report"
	"github.com/warp/career-simulator/scenario"
)

func displayName(sc *scenario.Scenario) string {
	switch {
	case sc.Name != "":
		return sc.Name
	case sc.ID != "":
		return sc.ID
	default:
		return "unnamed scenario"
	}
}

// printProblems lists every configuration problem of a joined error.
func printProblems(out io.Writer, err error) {
	var list []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		list = joined.Unwrap()
	} else {
		list = []error{err}
	}

	fmt.Fprintf(out, "ERRORS (%d):\n", len(list))
	for _, e := range list {
		fmt.Fprintf(out, "  %s\n", e)
	}
	fmt.Fprintln(out)
}

func printReport(out io.Writer, sc *scenario.Scenario, r *career.Report) {
	s := r.Summary

	fmt.Fprintln(out, displayName(sc))
	fmt.Fprintln(out, strings.Repeat("=", len([]rune(displayName(sc)))))
	fmt.Fprintf(out, "  Fecha de referencia:  %s\n", r.AsOf.Format("2006-01-02"))
	fmt.Fprintf(out, "  Grados:               %d\n", s.Grades)
	fmt.Fprintf(out, "  Años por grado:       %s\n", joinInts(s.Durations))
	fmt.Fprintf(out, "  Asignación:           %s\n", s.Mode.Label())
	if s.GrowthRate != nil {
		fmt.Fprintf(out, "  Crecimiento por CD:   %s%%\n", s.GrowthRate.Shift(2).String())
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Trayectoria")
	fmt.Fprintln(out, "-----------")
	for _, st := range s.Stages {
		if st.Open {
			fmt.Fprintf(out, "  G%-3d %2d+ años          CD14: %s\n", st.Grade, st.From, report.Money(s.LowestLevel[st.Grade-1]))
			continue
		}
		fmt.Fprintf(out, "  G%-3d %2d-%-2d años         CD14: %s\n", st.Grade, st.From, st.To, report.Money(s.LowestLevel[st.Grade-1]))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Distribución por CD y Grado")
	fmt.Fprintln(out, "---------------------------")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	gridHeader(tw, s.Grades)
	for _, row := range r.Headcount.Rows {
		fmt.Fprintf(tw, "%s\t", row.Level)
		for _, v := range row.Values {
			fmt.Fprintf(tw, "%d\t", v)
		}
		fmt.Fprintf(tw, "%d\t\n", row.Total)
	}
	fmt.Fprint(tw, "Total\t")
	for _, v := range r.Headcount.ColumnTotals {
		fmt.Fprintf(tw, "%d\t", v)
	}
	fmt.Fprintf(tw, "%d\t\n", r.Headcount.GrandTotal)
	tw.Flush()
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Coste anual por CD y Grado")
	fmt.Fprintln(out, "--------------------------")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	gridHeader(tw, s.Grades)
	for _, row := range r.Costs.Rows {
		fmt.Fprintf(tw, "%s\t", row.Level)
		for _, v := range row.Values {
			fmt.Fprintf(tw, "%s\t", report.Money(v))
		}
		fmt.Fprintf(tw, "%s\t\n", report.Money(row.Total))
	}
	fmt.Fprint(tw, "Total\t")
	for _, v := range r.Costs.ColumnTotals {
		fmt.Fprintf(tw, "%s\t", report.Money(v))
	}
	fmt.Fprintf(tw, "%s\t\n", report.Money(r.Costs.GrandTotal))
	tw.Flush()
	fmt.Fprintln(out)

	if len(r.UnitCosts) > 0 {
		fmt.Fprintln(out, "Costes unitarios")
		fmt.Fprintln(out, "----------------")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Grado\tCD\tPersonas\tAnual\tMensual\t")
		for _, u := range r.UnitCosts {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\n",
				u.Grade, u.Level, u.Headcount, report.Money(u.Annual), report.Money(u.Monthly))
		}
		tw.Flush()
		fmt.Fprintln(out)
	}

	if len(r.Excluded) > 0 {
		fmt.Fprintf(out, "FILAS EXCLUIDAS (%d):\n", len(r.Excluded))
		for _, e := range r.Excluded {
			fmt.Fprintf(out, "  %s\n", e)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Resumen")
	fmt.Fprintln(out, "-------")
	fmt.Fprintf(out, "  Empleados:    %d\n", r.TotalHeadcount)
	fmt.Fprintf(out, "  Coste total:  %s\n", report.Money(r.GrandTotal))
}

func gridHeader(w io.Writer, grades int) {
	fmt.Fprint(w, "CD\t")
	for g := 1; g <= grades; g++ {
		fmt.Fprintf(w, "G%d\t", g)
	}
	fmt.Fprintln(w, "Total\t")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
