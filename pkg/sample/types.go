package sample

import (
	"errors"
	"time"
)

// ErrDataFormat is returned when a required column is absent or a value
// can not be parsed.
var ErrDataFormat = errors.New("data format error")

// Sample describes one request record of a load-test result log.
type Sample struct {
	Label     string
	Latency   float64
	Timestamp time.Time
}

// Table is an ordered sequence of samples loaded from one or more result files.
type Table []Sample

// Len returns the number of samples in the table.
func (t Table) Len() int {
	return len(t)
}

// Latencies returns the latency column in table order.
func (t Table) Latencies() []float64 {
	vals := make([]float64, 0, len(t))
	for _, s := range t {
		vals = append(vals, s.Latency)
	}
	return vals
}
