package result

// Kind selects which report is built and which columns it shows.
type Kind string

const (
	// Aggregate Mean, Median, 90% Line, Min, Max and Throughput by label.
	Aggregate Kind = "aggregate"
	// Percentiles 50% to 90% lines by label.
	Percentiles Kind = "percentiles"
	// Compare two result sets side by side with trends.
	Compare Kind = "compare"
)

// Kinds supported by the report generator
var Kinds = []Kind{Aggregate, Percentiles, Compare}

// Header returns the column names of a report, label column excluded.
func (k Kind) Header() []string {
	switch k {
	case Aggregate:
		return []string{
			"Mean, msec",
			"Median, msec",
			"90% Line, msec",
			"Min, msec",
			"Max, msec",
			"Throughput, req/sec",
		}
	case Percentiles:
		return []string{
			"50% Line, msec",
			"60% Line, msec",
			"70% Line, msec",
			"80% Line, msec",
			"90% Line, msec",
		}
	case Compare:
		return []string{
			"Mean 1, msec", "Mean 2, msec", "Mean trend, %",
			"Median 1, msec", "Median 2, msec", "Median trend, %",
			"90% Line 1, msec", "90% Line 2, msec", "90% Line trend, %",
			"Min 1, msec", "Min 2, msec",
			"Max 1, msec", "Max 2, msec",
			"Throughput 1, req/sec", "Throughput 2, req/sec",
		}
	}
	return nil
}

// Classes are short column identifiers matching Header, used as CSS classes
// and CSV-friendly keys.
func (k Kind) Classes() []string {
	switch k {
	case Aggregate:
		return []string{"mean", "median", "line90", "min", "max", "throughput"}
	case Percentiles:
		return []string{"50line", "60line", "70line", "80line", "90line"}
	case Compare:
		return []string{
			"mean1", "mean2", "mean_trend",
			"median1", "median2", "median_trend",
			"line901", "line902", "line90_trend",
			"min1", "min2",
			"max1", "max2",
			"throughput1", "throughput2",
		}
	}
	return nil
}

// Cells returns the row values in the order of k.Header(). Compare is not a
// single-table kind and yields nil.
func (r MetricRow) Cells(k Kind) []Value {
	switch k {
	case Aggregate:
		return []Value{
			present(r.Mean),
			present(r.Median),
			present(r.P90),
			present(r.Min),
			present(r.Max),
			r.Throughput,
		}
	case Percentiles:
		return []Value{
			present(r.Median),
			present(r.P60),
			present(r.P70),
			present(r.P80),
			present(r.P90),
		}
	}
	return nil
}
