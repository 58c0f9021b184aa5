package result

import (
	"fmt"

	"github.com/cloud-bulldozer/jmeter-reports/pkg/sample"
)

// ComparisonRow pairs the metrics of one label across two result sets.
// A side is nil when the label does not appear in that set, and the trends
// are absent then, or when one of the compared values is zero.
type ComparisonRow struct {
	Label       string     `json:"label"`
	First       *MetricRow `json:"first"`
	Second      *MetricRow `json:"second"`
	MeanTrend   Value      `json:"meanTrend"`
	MedianTrend Value      `json:"medianTrend"`
	P90Trend    Value      `json:"p90Trend"`
}

// ComparisonTable is the full outer join of two MetricsTables on label.
// Labels of the first set come first in their order, then labels only
// present in the second set.
type ComparisonTable struct {
	Rows   []ComparisonRow
	First  MetricsTable
	Second MetricsTable
}

// Len returns the number of labels in either set.
func (t ComparisonTable) Len() int {
	return len(t.Rows)
}

// Labels returns the labels in row order.
func (t ComparisonTable) Labels() []string {
	labels := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		labels = append(labels, r.Label)
	}
	return labels
}

// CompareSamples aggregates both sample tables and joins them by label.
func CompareSamples(first, second sample.Table) (ComparisonTable, error) {
	ft, fsums, err := compute(first)
	if err != nil {
		return ComparisonTable{}, fmt.Errorf("result set 1: %w", err)
	}
	st, ssums, err := compute(second)
	if err != nil {
		return ComparisonTable{}, fmt.Errorf("result set 2: %w", err)
	}
	ct := ComparisonTable{
		Rows:   make([]ComparisonRow, 0, ft.Len()),
		First:  ft,
		Second: st,
	}
	for i := range ft.Rows {
		row := ComparisonRow{Label: ft.Rows[i].Label, First: &ft.Rows[i]}
		if j, ok := st.index[row.Label]; ok {
			row.Second = &st.Rows[j]
			row.trends(fsums[i], ssums[j])
		}
		ct.Rows = append(ct.Rows, row)
	}
	for j := range st.Rows {
		if _, ok := ft.index[st.Rows[j].Label]; ok {
			continue
		}
		ct.Rows = append(ct.Rows, ComparisonRow{Label: st.Rows[j].Label, Second: &st.Rows[j]})
	}
	return ct, nil
}

// trends are computed on unrounded metrics and rounded afterwards.
func (r *ComparisonRow) trends(a, b summary) {
	r.MeanTrend = trendValue(a.mean, b.mean)
	r.MedianTrend = trendValue(a.median, b.median)
	r.P90Trend = trendValue(a.lines[90], b.lines[90])
}

func trendValue(a, b float64) Value {
	t, err := Trend(a, b)
	if err != nil {
		return Value{}
	}
	return present(t)
}

// Cells returns the row values in the order of Compare.Header().
func (r ComparisonRow) Cells() []Value {
	side := func(m *MetricRow, f func(MetricRow) Value) Value {
		if m == nil {
			return Value{}
		}
		return f(*m)
	}
	mean := func(m MetricRow) Value { return present(m.Mean) }
	median := func(m MetricRow) Value { return present(m.Median) }
	p90 := func(m MetricRow) Value { return present(m.P90) }
	lowest := func(m MetricRow) Value { return present(m.Min) }
	highest := func(m MetricRow) Value { return present(m.Max) }
	tput := func(m MetricRow) Value { return m.Throughput }
	return []Value{
		side(r.First, mean), side(r.Second, mean), r.MeanTrend,
		side(r.First, median), side(r.Second, median), r.MedianTrend,
		side(r.First, p90), side(r.Second, p90), r.P90Trend,
		side(r.First, lowest), side(r.Second, lowest),
		side(r.First, highest), side(r.Second, highest),
		side(r.First, tput), side(r.Second, tput),
	}
}
