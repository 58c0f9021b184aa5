package plots

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"regexp"

	log "github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
	result "github.com/cloud-bulldozer/jmeter-reports/pkg/results"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot file suffixes, one set per label.
const (
	HistAll    = "_hist_prob_all.png"
	Hist90Line = "_hist_prob_90line.png"
	Requests   = "_requests.png"
)

const (
	allBins    = 100
	lineBins   = 60
	lineCutoff = 90
)

var (
	green = color.RGBA{R: 0, G: 128, B: 0, A: 128}
	blue  = color.RGBA{R: 0, G: 0, B: 200, A: 128}
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileName turns a label into a name usable in file names and HTML ids.
func FileName(label string) string {
	return unsafeChars.ReplaceAllString(label, "_")
}

// FileNames maps every label to a distinct FileName. Labels are taken in
// order, a name already in use gets a "_<n>" suffix.
func FileNames(labels []string) map[string]string {
	names := make(map[string]string, len(labels))
	used := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := names[l]; ok {
			continue
		}
		name := FileName(l)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", FileName(l), n)
		}
		used[name] = true
		names[l] = name
	}
	return names
}

// series is one result set of a label.
type series struct {
	name  string
	vals  []float64
	color color.Color
}

// Metrics draws the per-label plots of one result set into dir.
func Metrics(dir string, t result.MetricsTable) error {
	names := FileNames(t.Labels())
	for _, g := range t.Groups {
		s := []series{{name: g.Label, vals: g.Latencies, color: green}}
		if err := labelPlots(dir, names[g.Label], s, allBins, lineBins); err != nil {
			return fmt.Errorf("plotting %q: %w", g.Label, err)
		}
	}
	return nil
}

// Comparison draws the overlays of both whole result sets, then one set of
// plots per label with whichever sides are present.
func Comparison(dir string, ct result.ComparisonTable) error {
	first := flatten(ct.First)
	second := flatten(ct.Second)
	bins := cubeRootBins(len(first))
	if err := histogram(filepath.Join(dir, "hist_prob_all.png"), "Histogram of all response time", bins, []series{
		{name: "1", vals: first, color: green},
		{name: "2", vals: second, color: blue},
	}); err != nil {
		return err
	}
	first90, second90 := below(first, lineCutoff), below(second, lineCutoff)
	if err := histogram(filepath.Join(dir, "hist_prob_90line.png"), "Histogram of 90% line response time", cubeRootBins(len(first90)), []series{
		{name: "1", vals: first90, color: green},
		{name: "2", vals: second90, color: blue},
	}); err != nil {
		return err
	}
	names := FileNames(ct.Labels())
	for _, r := range ct.Rows {
		var s []series
		if g, ok := ct.First.Group(r.Label); ok {
			s = append(s, series{name: "1", vals: g.Latencies, color: green})
		}
		if g, ok := ct.Second.Group(r.Label); ok {
			s = append(s, series{name: "2", vals: g.Latencies, color: blue})
		}
		n := 0
		for _, v := range s {
			n = max(n, len(v.vals))
		}
		if err := labelPlots(dir, names[r.Label], s, cubeRootBins(n), cubeRootBins(n)); err != nil {
			return fmt.Errorf("plotting %q: %w", r.Label, err)
		}
	}
	return nil
}

func labelPlots(dir, name string, s []series, bins, bins90 int) error {
	log.Debugf("Plotting %s", name)
	if err := histogram(filepath.Join(dir, name+HistAll), "Histogram of all response time", bins, s); err != nil {
		return err
	}
	cut := make([]series, 0, len(s))
	for _, v := range s {
		cut = append(cut, series{name: v.name, vals: below(v.vals, lineCutoff), color: v.color})
	}
	if err := histogram(filepath.Join(dir, name+Hist90Line), "Histogram of 90% line response time", bins90, cut); err != nil {
		return err
	}
	return scatter(filepath.Join(dir, name+Requests), s)
}

// histogram draws normalized histograms of every non-empty series.
func histogram(fn, title string, bins int, s []series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Response time"
	p.Y.Label.Text = "Probability"
	for _, v := range s {
		if len(v.vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(v.vals), bins)
		if err != nil {
			return err
		}
		h.Normalize(1)
		h.FillColor = v.color
		h.LineStyle.Width = vg.Points(0.5)
		p.Add(h)
		if len(s) > 1 {
			p.Legend.Add(v.name, h)
		}
	}
	p.Legend.Top = true
	return p.Save(6*vg.Inch, 4*vg.Inch, fn)
}

// scatter draws request index against latency.
func scatter(fn string, s []series) error {
	p := plot.New()
	p.Title.Text = "Requests times"
	p.X.Label.Text = "Request"
	p.Y.Label.Text = "Time"
	for _, v := range s {
		pts := make(plotter.XYs, len(v.vals))
		for i, l := range v.vals {
			pts[i].X = float64(i + 1)
			pts[i].Y = l
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = v.color
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		if len(s) > 1 {
			p.Legend.Add(v.name, sc)
		}
	}
	p.Legend.Top = true
	return p.Save(6*vg.Inch, 4*vg.Inch, fn)
}

// below returns the values strictly under the given percentile.
func below(vals []float64, ptile float64) []float64 {
	limit, err := result.Percentile(vals, ptile)
	if err != nil {
		return nil
	}
	var out []float64
	for _, v := range vals {
		if v < limit {
			out = append(out, v)
		}
	}
	return out
}

func flatten(t result.MetricsTable) []float64 {
	var out []float64
	for _, g := range t.Groups {
		out = append(out, g.Latencies...)
	}
	return out
}

// cubeRootBins is the bin count used for comparison plots.
func cubeRootBins(n int) int {
	return max(1, int(math.Cbrt(float64(n))))
}
