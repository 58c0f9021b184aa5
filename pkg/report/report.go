package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cloud-bulldozer/jmeter-reports/pkg/config"
	log "github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
	"github.com/cloud-bulldozer/jmeter-reports/pkg/plots"
	result "github.com/cloud-bulldozer/jmeter-reports/pkg/results"
)

//go:embed index.html.tmpl
var indexTemplate string

var tmpl = template.Must(template.New("index").Parse(indexTemplate))

const (
	// PlotDir relative to the report directory
	PlotDir = "plots"

	// Index is the report page
	Index     = "index.html"
	tsLayout  = "20060102_150405"
	absentCSS = "absent"
)

// Report describes one generated report.
type Report struct {
	Name        string
	Kind        result.Kind
	RunID       string
	Description config.Description
	Generated   time.Time
	// Plots adds per-label plot rows. The images must exist under PlotDir.
	Plots bool
}

type column struct {
	Name  string
	Class string
}

type cell struct {
	Text  string
	Class string
}

type row struct {
	Label string
	ID    string
	Cells []cell
	Plots []string
}

type page struct {
	Title       string
	Generated   string
	RunID       string
	Description string
	Environment config.Environment
	Overview    []string
	Columns     []column
	Rows        []row
	Span        int
}

// Prepare creates <root>/<timestamp>_<name> and its plot directory. A
// directory already holding that name is moved aside first.
func Prepare(root, name string, now time.Time) (string, error) {
	if err := config.ValidName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(root, now.Format(tsLayout)+"_"+name)
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		moved := dir + "_before_" + time.Now().Format(tsLayout)
		log.Warnf("Report directory %s exists, moving it to %s", dir, moved)
		if err := os.Rename(dir, moved); err != nil {
			return "", fmt.Errorf("failed to move previous report: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, PlotDir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	log.Infof("📁 Report directory %s", dir)
	return dir, nil
}

func (r Report) page(k result.Kind) page {
	p := page{
		Title:       fmt.Sprintf("%s - %s", r.Name, result.Title(k)),
		Generated:   r.Generated.Format(time.RFC1123),
		RunID:       r.RunID,
		Description: r.Description.Description,
		Environment: r.Description.Environment,
	}
	classes := k.Classes()
	for i, h := range k.Header() {
		p.Columns = append(p.Columns, column{Name: h, Class: classes[i]})
	}
	p.Span = len(p.Columns) + 1
	return p
}

func (r Report) newRow(label, id string, classes []string, vals []result.Value) row {
	rw := row{Label: label, ID: id}
	for i, v := range vals {
		c := cell{Text: v.String(), Class: classes[i]}
		if !v.Valid {
			c.Class += " " + absentCSS
		}
		rw.Cells = append(rw.Cells, c)
	}
	if r.Plots {
		for _, suffix := range []string{plots.HistAll, plots.Hist90Line, plots.Requests} {
			rw.Plots = append(rw.Plots, path.Join(PlotDir, id+suffix))
		}
	}
	return rw
}

// RenderMetrics writes the aggregate or percentiles page of t.
func (r Report) RenderMetrics(w io.Writer, t result.MetricsTable) error {
	k := r.Kind
	if k == result.Compare {
		return fmt.Errorf("%s report needs two result sets", k)
	}
	p := r.page(k)
	names := plots.FileNames(t.Labels())
	for _, m := range t.Rows {
		p.Rows = append(p.Rows, r.newRow(m.Label, names[m.Label], k.Classes(), m.Cells(k)))
	}
	return tmpl.Execute(w, p)
}

// RenderComparison writes the comparison page of ct.
func (r Report) RenderComparison(w io.Writer, ct result.ComparisonTable) error {
	p := r.page(result.Compare)
	if r.Plots {
		p.Overview = []string{
			path.Join(PlotDir, "hist_prob_all.png"),
			path.Join(PlotDir, "hist_prob_90line.png"),
		}
	}
	names := plots.FileNames(ct.Labels())
	for _, c := range ct.Rows {
		p.Rows = append(p.Rows, r.newRow(c.Label, names[c.Label], result.Compare.Classes(), c.Cells()))
	}
	return tmpl.Execute(w, p)
}

// WriteMetrics renders the report of one result set into dir, plots included
// when enabled.
func (r Report) WriteMetrics(dir string, t result.MetricsTable) error {
	if r.Plots {
		if err := plots.Metrics(filepath.Join(dir, PlotDir), t); err != nil {
			log.Warnf("😥 Unable to generate plots: %v", err)
			r.Plots = false
		}
	}
	return writeIndex(dir, func(w io.Writer) error {
		return r.RenderMetrics(w, t)
	})
}

// WriteComparison renders the comparison report into dir.
func (r Report) WriteComparison(dir string, ct result.ComparisonTable) error {
	if r.Plots {
		if err := plots.Comparison(filepath.Join(dir, PlotDir), ct); err != nil {
			log.Warnf("😥 Unable to generate plots: %v", err)
			r.Plots = false
		}
	}
	return writeIndex(dir, func(w io.Writer) error {
		return r.RenderComparison(w, ct)
	})
}

// createFile opens the report page for writing.
var createFile = func(fn string) (io.WriteCloser, error) {
	return os.Create(fn)
}

func writeIndex(dir string, render func(io.Writer) error) (err error) {
	fn := filepath.Join(dir, Index)
	fp, err := createFile(fn)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()
	if err := render(fp); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	log.Infof("Report written to %s", fn)
	return nil
}
