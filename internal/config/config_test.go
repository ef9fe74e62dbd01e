package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	settings := Default()
	assert.False(t, settings.BailOnError)
	assert.True(t, settings.Color)
	assert.Equal(t, ".", settings.CommandIdentifier)
	assert.Equal(t, "en", settings.Locale)
	assert.Equal(t, "psql", settings.ResultsFormat)
	assert.Equal(t, 100, settings.ResultsLimit)
	assert.Equal(t, 1000, settings.HistoryLimit)
	assert.True(t, settings.ResultsTimer)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RSQL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "psql", settings.ResultsFormat)
	assert.True(t, settings.ResultsHeader)
	assert.Equal(t, 100, settings.ResultsLimit)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("results_format: json\nresults_limit: 10\n"), 0o644))

	settings, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", settings.ResultsFormat)
	assert.Equal(t, 10, settings.ResultsLimit)
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: de\n"), 0o644))
	t.Setenv("RSQL_CONFIG", path)

	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "de", settings.Locale)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("results_format: json\n"), 0o644))
	t.Setenv("RSQL_RESULTS_FORMAT", "csv")

	settings, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", settings.ResultsFormat)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("RSQL_RESULTS_FORMAT", "csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "psql", "")
	require.NoError(t, flags.Parse([]string{"--format", "yaml"}))

	settings, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "yaml", settings.ResultsFormat)
}

func TestLoadUnchangedFlagIgnored(t *testing.T) {
	t.Setenv("RSQL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "psql", "")
	require.NoError(t, flags.Parse(nil))

	settings, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "psql", settings.ResultsFormat)
}

func TestLoadExpandsFileValues(t *testing.T) {
	t.Setenv("MY_HISTORY", "/tmp/hist.txt")
	path := filepath.Join(t.TempDir(), "rsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_file: ${MY_HISTORY}\n"), 0o644))

	settings, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hist.txt", settings.HistoryFile)
}

func TestLoadHistoryFileDefault(t *testing.T) {
	t.Setenv("RSQL_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RSQL_HISTORY", "/var/hist")
	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/hist", settings.HistoryFile)
}
