package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivasurya/lineageflow/internal/lineagelog"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lineageflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
summariesDir: /data/summaries
edgeBudget: 5000
format: sarif
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/summaries", cfg.SummariesDir)
	assert.Equal(t, 5000, cfg.EdgeBudget)
	assert.Equal(t, lineagelog.FormatSARIF, cfg.Format)
	assert.Equal(t, Default().DescriptionsFile, cfg.DescriptionsFile)
}

func TestApplyOverrides_FlagsWinOverFile(t *testing.T) {
	cfg := Default()
	cfg = cfg.ApplyOverrides("/flag/summaries", "", "", 10, "sarif")

	assert.Equal(t, "/flag/summaries", cfg.SummariesDir)
	assert.Equal(t, Default().DescriptionsFile, cfg.DescriptionsFile)
	assert.Equal(t, 10, cfg.EdgeBudget)
	assert.Equal(t, lineagelog.FormatSARIF, cfg.Format)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Format = "csv"
	assert.Error(t, cfg.Validate())
}
