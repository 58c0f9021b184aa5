package report

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloud-bulldozer/jmeter-reports/pkg/config"
	result "github.com/cloud-bulldozer/jmeter-reports/pkg/results"
	"github.com/cloud-bulldozer/jmeter-reports/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

func samples(label string, vals ...float64) sample.Table {
	var t sample.Table
	for _, v := range vals {
		t = append(t, sample.Sample{Label: label, Latency: v})
	}
	return t
}

func TestPrepare(t *testing.T) {
	root := t.TempDir()
	dir, err := Prepare(root, "nightly", generated)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "20240301_140509_nightly"), dir)
	fi, err := os.Stat(filepath.Join(dir, PlotDir))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	require.NoError(t, os.WriteFile(filepath.Join(dir, Index), []byte("old"), 0o644))
	again, err := Prepare(root, "nightly", generated)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	_, err = os.Stat(filepath.Join(again, Index))
	assert.True(t, os.IsNotExist(err))

	moved, err := filepath.Glob(filepath.Join(root, "20240301_140509_nightly_before_*"))
	require.NoError(t, err)
	require.Len(t, moved, 1)
	old, err := os.ReadFile(filepath.Join(moved[0], Index))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestPrepareBadName(t *testing.T) {
	_, err := Prepare(t.TempDir(), "../escape", generated)
	assert.Error(t, err)
}

func TestRenderAggregate(t *testing.T) {
	mt, err := result.Compute(append(samples("A", 10, 20), samples("<B>", 0)...))
	require.NoError(t, err)
	r := Report{
		Name:      "nightly",
		Kind:      result.Aggregate,
		RunID:     "1234",
		Generated: generated,
		Description: config.Description{
			Description: "CMS regression",
			Environment: config.Environment{{Key: "Threads", Value: "50"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderMetrics(&buf, mt))
	out := buf.String()
	assert.Contains(t, out, "<title>nightly - 📊 Aggregate Results</title>")
	assert.Contains(t, out, "CMS regression")
	assert.Contains(t, out, "<b>Threads</b>: 50")
	assert.Contains(t, out, `<th class="line90">90% Line, msec</th>`)
	assert.Contains(t, out, `<td class="throughput">66.67</td>`)
	// escaped label, zero latency sum leaves throughput empty
	assert.Contains(t, out, "&lt;B&gt;")
	assert.Contains(t, out, `<td class="throughput absent"></td>`)
	assert.NotContains(t, out, "<img")
}

func TestRenderPercentilesWithPlots(t *testing.T) {
	mt, err := result.Compute(samples("GET /login", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	require.NoError(t, err)
	r := Report{Name: "p", Kind: result.Percentiles, Generated: generated, Plots: true}
	var buf bytes.Buffer
	require.NoError(t, r.RenderMetrics(&buf, mt))
	out := buf.String()
	for _, v := range []string{"5.50", "6.40", "7.30", "8.20", "9.10"} {
		assert.Contains(t, out, ">"+v+"<")
	}
	assert.Contains(t, out, `<a href="#GET__login">GET /login</a>`)
	assert.Contains(t, out, `src="plots/GET__login_requests.png"`)
}

func TestRenderMetricsRejectsCompare(t *testing.T) {
	mt, err := result.Compute(samples("A", 1))
	require.NoError(t, err)
	r := Report{Kind: result.Compare}
	assert.Error(t, r.RenderMetrics(&bytes.Buffer{}, mt))
}

func TestRenderComparison(t *testing.T) {
	ct, err := result.CompareSamples(
		append(samples("A", 20, 40), samples("OLD", 5)...),
		append(samples("A", 10, 20), samples("NEW", 7)...),
	)
	require.NoError(t, err)
	r := Report{Name: "cmp", Kind: result.Compare, Generated: generated, Plots: true}
	var buf bytes.Buffer
	require.NoError(t, r.RenderComparison(&buf, ct))
	out := buf.String()
	assert.Contains(t, out, `src="plots/hist_prob_all.png"`)
	assert.Contains(t, out, `<td class="mean_trend">100.00</td>`)
	assert.Contains(t, out, `<td class="mean2 absent"></td>`)
	assert.Contains(t, out, `<td class="mean1 absent"></td>`)
	assert.Less(t, strings.Index(out, `id="OLD-row"`), strings.Index(out, `id="NEW-row"`))
}

func TestWriteComparison(t *testing.T) {
	dir, err := Prepare(t.TempDir(), "cmp", generated)
	require.NoError(t, err)
	ct, err := result.CompareSamples(samples("A", 10, 20, 30), samples("A", 15, 25))
	require.NoError(t, err)
	r := Report{Name: "cmp", Kind: result.Compare, Generated: generated, Plots: true}
	require.NoError(t, r.WriteComparison(dir, ct))
	for _, fn := range []string{Index, "plots/hist_prob_all.png", "plots/A_hist_prob_90line.png"} {
		_, err := os.Stat(filepath.Join(dir, fn))
		assert.NoError(t, err, fn)
	}
}

func TestRenderCollidingLabels(t *testing.T) {
	mt, err := result.Compute(append(samples("GET /a", 10), samples("GET_/a", 20)...))
	require.NoError(t, err)
	r := Report{Name: "ids", Kind: result.Aggregate, Generated: generated, Plots: true}
	var buf bytes.Buffer
	require.NoError(t, r.RenderMetrics(&buf, mt))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `id="GET__a"`))
	assert.Equal(t, 1, strings.Count(out, `id="GET__a_2"`))
	assert.Equal(t, 1, strings.Count(out, `src="plots/GET__a_hist_prob_all.png"`))
	assert.Equal(t, 1, strings.Count(out, `src="plots/GET__a_2_hist_prob_all.png"`))
}

func TestWriteMetricsCollidingLabels(t *testing.T) {
	dir, err := Prepare(t.TempDir(), "ids", generated)
	require.NoError(t, err)
	mt, err := result.Compute(append(samples("Login (1)", 10, 12), samples("Login [1]", 20, 22)...))
	require.NoError(t, err)
	r := Report{Name: "ids", Kind: result.Aggregate, Generated: generated, Plots: true}
	require.NoError(t, r.WriteMetrics(dir, mt))
	for _, fn := range []string{"Login__1__requests.png", "Login__1__2_requests.png"} {
		_, err := os.Stat(filepath.Join(dir, PlotDir, fn))
		assert.NoError(t, err, fn)
	}
}

type failingCloser struct {
	bytes.Buffer
}

func (failingCloser) Close() error {
	return errors.New("disk full")
}

func TestWriteIndexCloseError(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	createFile = func(string) (io.WriteCloser, error) {
		return &failingCloser{}, nil
	}
	mt, err := result.Compute(samples("A", 1))
	require.NoError(t, err)
	r := Report{Name: "close", Kind: result.Aggregate, Generated: generated}
	err = r.WriteMetrics(t.TempDir(), mt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
