package config

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	for _, k := range []string{"JMETER_REPORTS_OUTPUT", "JMETER_REPORTS_INDEX"} {
		// restored by t.Setenv cleanup
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	s, err := LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "results", s.Output)
	assert.Equal(t, "jmeter-reports", s.Index)
}

func TestLoadSettingsEnv(t *testing.T) {
	t.Setenv("JMETER_REPORTS_OUTPUT", "/tmp/reports")
	t.Setenv("JMETER_REPORTS_SEARCH_URL", "https://search.example.com:9200")
	s, err := LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", s.Output)
	assert.Equal(t, "https://search.example.com:9200", s.SearchURL)
}

func TestValidName(t *testing.T) {
	for _, n := range []string{"nightly", "build-2.14", "cms_regression"} {
		assert.NoError(t, ValidName(n), n)
	}
	for _, n := range []string{"", "..", "a/b", "with space"} {
		assert.Error(t, ValidName(n), n)
	}
}
