package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/cloud-bulldozer/jmeter-reports/pkg/config"
	"github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
	result "github.com/cloud-bulldozer/jmeter-reports/pkg/results"
)

const (
	ltcyMetric   = "msec"
	tputMetric   = "req/sec"
	indexRetries = 3

	// ResultFile is the CSV archive written next to the report
	ResultFile = "result.csv"
)

// Doc struct of the JSON document to be indexed, one per label and result set.
type Doc struct {
	UUID        string             `json:"uuid"`
	Timestamp   time.Time          `json:"timestamp"`
	Name        string             `json:"name"`
	Kind        result.Kind        `json:"kind"`
	Label       string             `json:"label"`
	Set         int                `json:"resultSet"`
	Samples     int                `json:"samples"`
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	P60         float64            `json:"p60"`
	P70         float64            `json:"p70"`
	P80         float64            `json:"p80"`
	P90         float64            `json:"p90"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	StdDev      float64            `json:"stddev"`
	Throughput  result.Value       `json:"throughput"`
	MeanTrend   *result.Value      `json:"meanTrend,omitempty"`
	MedianTrend *result.Value      `json:"medianTrend,omitempty"`
	P90Trend    *result.Value      `json:"p90Trend,omitempty"`
	TputMetric  string             `json:"tputMetric"`
	LtcyMetric  string             `json:"ltcyMetric"`
	Confidence  []float64          `json:"confidence"`
	Description string             `json:"description,omitempty"`
	Environment config.Environment `json:"environment,omitempty"`
}

// Run identifies the documents of one report.
type Run struct {
	UUID        string
	Name        string
	Kind        result.Kind
	Description config.Description
	Timestamp   time.Time
}

// Connect returns a client connected to the desired cluster.
func Connect(url, index string) (*indexers.Indexer, error) {
	indexerConfig := indexers.IndexerConfig{
		Type:               "opensearch",
		Servers:            []string{url},
		Index:              index,
		InsecureSkipVerify: true,
	}
	logging.Infof("📁 Creating indexer: %s", indexerConfig.Type)
	indexer, err := indexers.NewIndexer(indexerConfig)
	if err != nil {
		logging.Errorf("%v indexer: %v", indexerConfig.Type, err.Error())
		return nil, fmt.Errorf("failure while connecting to OpenSearch: %w", err)
	}
	logging.Infof("Connected to : %s ", url)
	return indexer, nil
}

// Index sends docs to the indexer, retrying with exponential backoff.
func Index(idx *indexers.Indexer, docs []interface{}) error {
	op := func() error {
		resp, err := (*idx).Index(docs, indexers.IndexingOpts{})
		if err != nil {
			logging.Warnf("Indexing failed, retrying: %v", err)
			return err
		}
		logging.Info(resp)
		return nil
	}
	return backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), indexRetries))
}

func (r Run) doc(set int, m result.MetricRow) Doc {
	return Doc{
		UUID:        r.UUID,
		Timestamp:   r.Timestamp,
		Name:        r.Name,
		Kind:        r.Kind,
		Label:       m.Label,
		Set:         set,
		Samples:     m.Count,
		Mean:        m.Mean,
		Median:      m.Median,
		P60:         m.P60,
		P70:         m.P70,
		P80:         m.P80,
		P90:         m.P90,
		Min:         m.Min,
		Max:         m.Max,
		StdDev:      m.StdDev,
		Throughput:  m.Throughput,
		TputMetric:  tputMetric,
		LtcyMetric:  ltcyMetric,
		Confidence:  m.Confidence,
		Description: r.Description.Description,
		Environment: r.Description.Environment,
	}
}

// BuildDocs returns the documents of one result set.
func BuildDocs(r Run, t result.MetricsTable) ([]interface{}, error) {
	if t.Len() < 1 {
		return nil, fmt.Errorf("no result documents")
	}
	docs := make([]interface{}, 0, t.Len())
	for _, m := range t.Rows {
		docs = append(docs, r.doc(1, m))
	}
	return docs, nil
}

// BuildComparisonDocs returns one document per label and side present. The
// trends are attached to the documents of the second set.
func BuildComparisonDocs(r Run, ct result.ComparisonTable) ([]interface{}, error) {
	if ct.Len() < 1 {
		return nil, fmt.Errorf("no result documents")
	}
	var docs []interface{}
	for _, c := range ct.Rows {
		if c.First != nil {
			docs = append(docs, r.doc(1, *c.First))
		}
		if c.Second != nil {
			d := r.doc(2, *c.Second)
			if c.First != nil {
				d.MeanTrend, d.MedianTrend, d.P90Trend = &c.MeanTrend, &c.MedianTrend, &c.P90Trend
			}
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// WriteJSON writes the documents as indented JSON to w.
func WriteJSON(w io.Writer, docs []interface{}) error {
	p, err := json.MarshalIndent(docs, " ", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(p))
	return err
}

// WriteJSONResult sends the documents as JSON to stdout
func WriteJSONResult(docs []interface{}) error {
	return WriteJSON(os.Stdout, docs)
}

func csvHeader(k result.Kind) []string {
	return append([]string{"Label", "Samples"}, k.Header()...)
}

func cells(vals []result.Value) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.String())
	}
	return out
}

// WriteCSV writes the table of a single result set report to w.
func WriteCSV(w io.Writer, k result.Kind, t result.MetricsTable) error {
	archive := csv.NewWriter(w)
	if err := archive.Write(csvHeader(k)); err != nil {
		return fmt.Errorf("failed to write result archive: %w", err)
	}
	for _, m := range t.Rows {
		if err := archive.Write(append([]string{m.Label, fmt.Sprint(m.Count)}, cells(m.Cells(k))...)); err != nil {
			return fmt.Errorf("failed to write result archive: %w", err)
		}
	}
	archive.Flush()
	return archive.Error()
}

// WriteComparisonCSV writes the comparison table to w. The sample column
// holds both counts separated by a slash.
func WriteComparisonCSV(w io.Writer, ct result.ComparisonTable) error {
	archive := csv.NewWriter(w)
	if err := archive.Write(csvHeader(result.Compare)); err != nil {
		return fmt.Errorf("failed to write result archive: %w", err)
	}
	for _, c := range ct.Rows {
		var n1, n2 string
		if c.First != nil {
			n1 = fmt.Sprint(c.First.Count)
		}
		if c.Second != nil {
			n2 = fmt.Sprint(c.Second.Count)
		}
		if err := archive.Write(append([]string{c.Label, n1 + "/" + n2}, cells(c.Cells())...)); err != nil {
			return fmt.Errorf("failed to write result archive: %w", err)
		}
	}
	archive.Flush()
	return archive.Error()
}

// createFile opens the CSV archive for writing.
var createFile = func(fn string) (io.WriteCloser, error) {
	return os.Create(fn)
}

// WriteCSVResult writes the result archive into dir using write.
func WriteCSVResult(dir string, write func(io.Writer) error) (err error) {
	fn := filepath.Join(dir, ResultFile)
	fp, err := createFile(fn)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive file: %w", cerr)
		}
	}()
	if err := write(fp); err != nil {
		return err
	}
	logging.Infof("Archive written to %s", fn)
	return nil
}
