package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, cfg.NVD.MinInterval)
	assert.Equal(t, 5, cfg.Ranking.TopNDefault)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
search:
  narrowTarget: 15
ranking:
  topNMax: 10
  topNDefault: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Search.NarrowTarget)
	assert.Equal(t, 10, cfg.Ranking.TopNMax)
	assert.Equal(t, 3, cfg.Ranking.TopNDefault)
	// Values not present in the file fall back to defaults.
	assert.Equal(t, 6*time.Second, cfg.NVD.MinInterval)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Search.NarrowTarget)
}

func TestLoadRejectsWeightsNotSummingToOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
scoring:
  weights:
    vendor: 0.5
    product: 0.5
    version: 0.5
    tokenOverlap: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsTopNDefaultAboveMax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
ranking:
  topNMax: 5
  topNDefault: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
