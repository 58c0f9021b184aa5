package result

import (
	"fmt"
	"io"

	"github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Specify Language specific case wrapper as global variable
var caser = cases.Title(language.English)

// Method to init common table structure.
func initTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// Title returns the human readable name of a report kind, e.g. "📊 Aggregate Results".
func Title(k Kind) string {
	return fmt.Sprintf("📊 %s Results", caser.String(string(k)))
}

func formatCells(vals []Value) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.String())
	}
	return out
}

// ShowMetrics writes the aggregate or percentiles table of t to w.
func ShowMetrics(w io.Writer, k Kind, t MetricsTable) {
	logging.Debugf("Rendering %s results", k)
	fmt.Fprintln(w, Title(k))
	table := initTable(w, append([]string{"Label", "Samples"}, k.Header()...))
	for _, r := range t.Rows {
		table.Append(append([]string{r.Label, fmt.Sprint(r.Count)}, formatCells(r.Cells(k))...))
	}
	table.Render()
}

// ShowComparison writes the comparison table to w. Absent cells stay empty.
func ShowComparison(w io.Writer, t ComparisonTable) {
	logging.Debug("Rendering comparison results")
	fmt.Fprintln(w, Title(Compare))
	table := initTable(w, append([]string{"Label"}, Compare.Header()...))
	for _, r := range t.Rows {
		table.Append(append([]string{r.Label}, formatCells(r.Cells())...))
	}
	table.Render()
}
