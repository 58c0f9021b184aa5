package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/cloud-bulldozer/jmeter-reports/pkg/sample"
)

var (
	// ErrEmptyInput no samples to aggregate
	ErrEmptyInput = errors.New("no samples to aggregate")
	// ErrDataFormat missing or malformed required column
	ErrDataFormat = sample.ErrDataFormat
	// ErrDivisionByZero degenerate trend or throughput input
	ErrDivisionByZero = errors.New("division by zero")
)

// confidence level of the interval reported with each mean
const confidence = 0.95

// Percentile lines reported by the percentiles report, besides the median.
var percentileLines = []float64{60, 70, 80, 90}

// Value is a rounded metric cell. An absent value has Valid set to false and
// is rendered empty, never as zero.
type Value struct {
	Float64 float64
	Valid   bool
}

func present(v float64) Value {
	return Value{Float64: round(v), Valid: true}
}

// String formats the value with 2 decimals, absent values are empty.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', 2, 64)
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON reads a number, null leaves the value absent.
func (v *Value) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		*v = Value{}
		return nil
	}
	if err := json.Unmarshal(p, &v.Float64); err != nil {
		return err
	}
	v.Valid = true
	return nil
}

// Group holds the latencies of one label in input order.
type Group struct {
	Label     string
	Latencies []float64
}

// MetricRow the aggregated metrics of one label, rounded to 2 decimals.
type MetricRow struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P60    float64 `json:"p60"`
	P70    float64 `json:"p70"`
	P80    float64 `json:"p80"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
	// Throughput is absent when the latency sum of the label is zero.
	Throughput Value     `json:"throughput"`
	Confidence []float64 `json:"confidence"`
}

// MetricsTable is one MetricRow per label, in order of first appearance.
// Groups carries the samples each row was computed from.
type MetricsTable struct {
	Rows   []MetricRow
	Groups []Group
	index  map[string]int
}

// Len returns the number of labels.
func (t MetricsTable) Len() int {
	return len(t.Rows)
}

// Get returns the row of a label.
func (t MetricsTable) Get(label string) (MetricRow, bool) {
	i, ok := t.index[label]
	if !ok {
		return MetricRow{}, false
	}
	return t.Rows[i], true
}

// Group returns the latencies of a label.
func (t MetricsTable) Group(label string) (Group, bool) {
	i, ok := t.index[label]
	if !ok {
		return Group{}, false
	}
	return t.Groups[i], true
}

// Labels returns the labels in row order.
func (t MetricsTable) Labels() []string {
	labels := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		labels = append(labels, r.Label)
	}
	return labels
}

// summary is the unrounded form of a MetricRow.
type summary struct {
	label      string
	count      int
	mean       float64
	median     float64
	lines      map[float64]float64
	min        float64
	max        float64
	stddev     float64
	throughput float64
	tputValid  bool
	lo, hi     float64
}

// Compute groups the samples by label and aggregates the latencies of every
// group. It does not modify the table.
func Compute(samples sample.Table) (MetricsTable, error) {
	t, _, err := compute(samples)
	return t, err
}

func compute(samples sample.Table) (MetricsTable, []summary, error) {
	groups, err := groupByLabel(samples)
	if err != nil {
		return MetricsTable{}, nil, err
	}
	t := MetricsTable{
		Rows:   make([]MetricRow, 0, len(groups)),
		Groups: groups,
		index:  make(map[string]int, len(groups)),
	}
	sums := make([]summary, 0, len(groups))
	for i, g := range groups {
		s, err := summarize(g)
		if err != nil {
			return MetricsTable{}, nil, fmt.Errorf("label %q: %w", g.Label, err)
		}
		sums = append(sums, s)
		t.Rows = append(t.Rows, s.row())
		t.index[g.Label] = i
	}
	return t, sums, nil
}

// groupByLabel partitions the samples by label, keeping the order in which
// labels first appear and the sample order within each label.
func groupByLabel(samples sample.Table) ([]Group, error) {
	if samples.Len() == 0 {
		return nil, ErrEmptyInput
	}
	var groups []Group
	index := make(map[string]int)
	for i, s := range samples {
		if s.Label == "" {
			return nil, fmt.Errorf("sample %d: empty label: %w", i, ErrDataFormat)
		}
		if math.IsNaN(s.Latency) || math.IsInf(s.Latency, 0) || s.Latency < 0 {
			return nil, fmt.Errorf("sample %d: invalid latency %v: %w", i, s.Latency, ErrDataFormat)
		}
		gi, ok := index[s.Label]
		if !ok {
			gi = len(groups)
			index[s.Label] = gi
			groups = append(groups, Group{Label: s.Label})
		}
		groups[gi].Latencies = append(groups[gi].Latencies, s.Latency)
	}
	return groups, nil
}

func summarize(g Group) (summary, error) {
	vals := g.Latencies
	s := summary{
		label: g.Label,
		count: len(vals),
		lines: make(map[float64]float64, len(percentileLines)),
	}
	var err error
	if s.mean, err = Average(vals); err != nil {
		return s, err
	}
	if s.median, err = Median(vals); err != nil {
		return s, err
	}
	for _, p := range percentileLines {
		if s.lines[p], err = Percentile(vals, p); err != nil {
			return s, err
		}
	}
	if s.stddev, err = StdDev(vals); err != nil {
		return s, err
	}
	s.min, s.max = vals[0], vals[0]
	sum := 0.0
	for _, v := range vals {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
		sum += v
	}
	tput, err := Throughput(s.count, sum)
	switch {
	case err == nil:
		s.throughput, s.tputValid = tput, true
	case !errors.Is(err, ErrDivisionByZero):
		return s, err
	}
	s.lo, s.hi = ConfidenceInterval(vals, confidence)
	return s, nil
}

func (s summary) row() MetricRow {
	r := MetricRow{
		Label:      s.label,
		Count:      s.count,
		Mean:       round(s.mean),
		Median:     round(s.median),
		P60:        round(s.lines[60]),
		P70:        round(s.lines[70]),
		P80:        round(s.lines[80]),
		P90:        round(s.lines[90]),
		Min:        round(s.min),
		Max:        round(s.max),
		StdDev:     round(s.stddev),
		Confidence: []float64{round(s.lo), round(s.hi)},
	}
	if s.tputValid {
		r.Throughput = present(s.throughput)
	}
	return r
}
