package result

import (
	"fmt"
	"math"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"
	stats "github.com/montanaflynn/stats"
)

// Average accepts array of floats to calculate average
func Average(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, ErrEmptyInput
	}
	return stats.Mean(vals)
}

// Median accepts array of floats to calculate the median. For an even count
// it is the midpoint of the two middle values.
func Median(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, ErrEmptyInput
	}
	return stats.Median(vals)
}

// StdDev is the sample standard deviation, 0 for a single value.
func StdDev(vals []float64) (float64, error) {
	switch len(vals) {
	case 0:
		return 0, ErrEmptyInput
	case 1:
		return 0, nil
	}
	return stats.StandardDeviationSample(vals)
}

// Percentile accepts array of floats and the desired %tile (0..100) to calculate.
// The value is linearly interpolated between the two closest ranks of the
// sorted data, so Percentile(vals, 50) is the median.
func Percentile(vals []float64, ptile float64) (float64, error) {
	if len(vals) == 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(ptile) || ptile < 0 || ptile > 100 {
		return 0, fmt.Errorf("percentile %v out of range [0, 100]", ptile)
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return percentileSorted(sorted, ptile), nil
}

func percentileSorted(sorted []float64, ptile float64) float64 {
	rank := ptile / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	// weighted form keeps the 50th percentile bit-identical to the median
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Throughput is the requests per second of a label derived from its summed
// latency. The latency sum stands in for busy time, this is not wall-clock
// throughput.
func Throughput(count int, latencySumMs float64) (float64, error) {
	if count < 1 {
		return 0, ErrEmptyInput
	}
	if latencySumMs == 0 {
		return 0, ErrDivisionByZero
	}
	return float64(count) / latencySumMs * 1000, nil
}

// ConfidenceInterval returns the bounds of the confidence interval of the mean.
// A single value has a zero-width interval.
func ConfidenceInterval(vals []float64, ci float64) (float64, float64) {
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], vals[0]
	}
	_, lo, hi := moremath.MeanCI(vals, ci)
	return lo, hi
}

// Trend is the signed percentage by which a differs from b, positive when a
// is larger. The smaller value is the base of the percentage, so a doubling
// reads as 100 and a halving as -100.
func Trend(a, b float64) (float64, error) {
	if a == 0 || b == 0 {
		return 0, ErrDivisionByZero
	}
	switch {
	case a == b:
		return 0, nil
	case a > b:
		return (a/b)*100 - 100, nil
	}
	return -((b/a)*100 - 100), nil
}

// round to 2 decimals, ties to even.
func round(v float64) float64 {
	r := math.RoundToEven(v*100) / 100
	if r == 0 {
		// no negative zero in reports
		return 0
	}
	return r
}
