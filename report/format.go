/*
Package report renders simulation results as PDF and Excel documents.

PURPOSE:
  Consumes career.Report and produces the two downloadable artifacts:
  a three-page PDF (summary with career timeline, cost grid, unit costs)
  and a workbook with one sheet per table.

SEE ALSO:
  - career/report.go: Report assembly
  - pdf.go, xlsx.go: Renderers
*/
package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// moneyPrinter groups thousands with commas and uses a dot for decimals.
var moneyPrinter = message.NewPrinter(language.English)

// Money formats an amount with two decimals and comma thousands separators.
// Rounding happens in decimal before the value reaches the printer.
func Money(d decimal.Decimal) string {
	v := d.Round(2).InexactFloat64()
	return moneyPrinter.Sprint(number.Decimal(v, number.Scale(2)))
}

// joinInts renders [5 5 4] as "5, 5, 4".
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
