package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	log "github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
)

const (
	labelColumn     = "label"
	timestampColumn = "timestamp"
)

// latencyColumns in order of preference. JMeter writes both "Latency" (time to
// first byte) and "elapsed".
var latencyColumns = []string{"latency", "elapsed"}

// ReadCSV loads every result file into a single Table, keeping file order and
// row order within each file.
func ReadCSV(paths ...string) (Table, error) {
	if len(paths) < 1 {
		return nil, fmt.Errorf("no result file given")
	}
	var t Table
	for _, p := range paths {
		rows, err := readFile(p)
		if err != nil {
			return nil, err
		}
		t = append(t, rows...)
	}
	return t, nil
}

func readFile(fn string) (Table, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if fi, err := fp.Stat(); err == nil {
		log.Infof("📒 Reading %s file (%s). ", fn, bytefmt.ByteSize(uint64(fi.Size())))
	}
	t, err := Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("in file %q: %w", fn, err)
	}
	log.Debugf("Loaded %d samples from %s", len(t), fn)
	return t, nil
}

// Parse reads CSV with a header row from r. The header must name a label
// column and a latency column; a timeStamp column is optional.
func Parse(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row: %w", ErrDataFormat)
		}
		return nil, err
	}
	labelIdx, latencyIdx, tsIdx := columns(header)
	if labelIdx < 0 {
		return nil, fmt.Errorf("missing %q column: %w", labelColumn, ErrDataFormat)
	}
	if latencyIdx < 0 {
		return nil, fmt.Errorf("missing latency column (one of %s): %w", strings.Join(latencyColumns, ", "), ErrDataFormat)
	}
	var t Table
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, ErrDataFormat)
		}
		if len(record) <= labelIdx || len(record) <= latencyIdx {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d: %w", line, max(labelIdx, latencyIdx)+1, len(record), ErrDataFormat)
		}
		latency, err := strconv.ParseFloat(strings.TrimSpace(record[latencyIdx]), 64)
		if err != nil || math.IsNaN(latency) || math.IsInf(latency, 0) {
			return nil, fmt.Errorf("line %d: non-numeric latency %q: %w", line, record[latencyIdx], ErrDataFormat)
		}
		s := Sample{
			Label:   record[labelIdx],
			Latency: latency,
		}
		if tsIdx >= 0 && tsIdx < len(record) {
			s.Timestamp = parseTimestamp(record[tsIdx])
		}
		t = append(t, s)
	}
	return t, nil
}

// columns resolves the header indexes, -1 when a column is missing.
func columns(header []string) (label, latency, ts int) {
	label, latency, ts = -1, -1, -1
	names := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := names[name]; !ok {
			names[name] = i
		}
	}
	if i, ok := names[labelColumn]; ok {
		label = i
	}
	for _, c := range latencyColumns {
		if i, ok := names[c]; ok {
			latency = i
			break
		}
	}
	if i, ok := names[timestampColumn]; ok {
		ts = i
	}
	return label, latency, ts
}

// parseTimestamp accepts epoch milliseconds or RFC3339. Timestamps do not
// feed any metric, so anything else is left as the zero time.
func parseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	return time.Time{}
}
