package plots

import (
	"os"
	"path/filepath"
	"testing"

	result "github.com/cloud-bulldozer/jmeter-reports/pkg/results"
	"github.com/cloud-bulldozer/jmeter-reports/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(label string, vals ...float64) sample.Table {
	var t sample.Table
	for _, v := range vals {
		t = append(t, sample.Sample{Label: label, Latency: v})
	}
	return t
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "CMS_ADD_INQUIRY__without_custom_attributes_", FileName("CMS_ADD_INQUIRY (without custom attributes)"))
	assert.Equal(t, "login-2", FileName("login-2"))
	assert.Equal(t, "GET__api_v1", FileName("GET /api/v1"))
}

func TestFileNames(t *testing.T) {
	names := FileNames([]string{"GET /a", "GET_/a", "GET /a", "GET?/a", "b"})
	assert.Equal(t, map[string]string{
		"GET /a": "GET__a",
		"GET_/a": "GET__a_2",
		"GET?/a": "GET__a_3",
		"b":      "b",
	}, names)
	// a suffixed name never takes the plain name of a later label
	names = FileNames([]string{"x y", "x_y", "x_y_2"})
	assert.Equal(t, "x_y_2", names["x_y"])
	assert.Equal(t, "x_y_2_2", names["x_y_2"])
}

func TestMetricsCollidingLabels(t *testing.T) {
	dir := t.TempDir()
	mt, err := result.Compute(append(samples("GET /a", 10, 11), samples("GET_/a", 20, 21)...))
	require.NoError(t, err)
	require.NoError(t, Metrics(dir, mt))
	for _, name := range []string{"GET__a", "GET__a_2"} {
		_, err := os.Stat(filepath.Join(dir, name+HistAll))
		assert.NoError(t, err, name)
	}
}

func TestMetrics(t *testing.T) {
	dir := t.TempDir()
	in := append(samples("GET /login", 10, 12, 15, 30, 11), samples("single", 7)...)
	mt, err := result.Compute(in)
	require.NoError(t, err)
	require.NoError(t, Metrics(dir, mt))
	for _, name := range []string{"GET__login", "single"} {
		for _, suffix := range []string{HistAll, Hist90Line, Requests} {
			_, err := os.Stat(filepath.Join(dir, name+suffix))
			assert.NoError(t, err, name+suffix)
		}
	}
}

func TestComparison(t *testing.T) {
	dir := t.TempDir()
	ct, err := result.CompareSamples(
		append(samples("A", 10, 20, 30), samples("B", 5)...),
		samples("A", 15, 25),
	)
	require.NoError(t, err)
	require.NoError(t, Comparison(dir, ct))
	for _, fn := range []string{"hist_prob_all.png", "hist_prob_90line.png", "A" + HistAll, "B" + Requests} {
		_, err := os.Stat(filepath.Join(dir, fn))
		assert.NoError(t, err, fn)
	}
}

func TestBelow(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, below([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90))
	assert.Empty(t, below([]float64{4, 4}, 90))
	assert.Nil(t, below(nil, 90))
}

func TestCubeRootBins(t *testing.T) {
	assert.Equal(t, 1, cubeRootBins(0))
	assert.Equal(t, 3, cubeRootBins(28))
	assert.Equal(t, 10, cubeRootBins(1001))
}
