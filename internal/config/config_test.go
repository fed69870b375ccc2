package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/engine"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "assetrisk.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20, cfg.Server.RequestsPerSec, 0.001)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, "Asset_Risk__c", cfg.Salesforce.Object)

	// Engine defaults are the canonical balanced profile.
	assert.Equal(t, engine.ProfileBalanced, cfg.Engine.Profile)
	assert.InDelta(t, 30, cfg.Engine.LowThreshold, 0.001)
	assert.InDelta(t, 70, cfg.Engine.MediumThreshold, 0.001)
	assert.InDelta(t, 0.25, cfg.Engine.Weights.Condition, 0.001)
	assert.NoError(t, cfg.Engine.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/assetrisk
log:
  level: debug
  format: console
server:
  port: 9090
engine:
  weight_profile: condition_weighted
  vacancy_threshold: 0.15
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)

	// The named profile selects its weight set when no explicit
	// weights are configured.
	assert.Equal(t, engine.ProfileConditionWeighted, cfg.Engine.Profile)
	assert.InDelta(t, 0.30, cfg.Engine.Weights.Condition, 0.001)
	assert.InDelta(t, 0.15, cfg.Engine.VacancyThreshold, 0.001)

	// Untouched engine settings keep their defaults.
	assert.InDelta(t, 70, cfg.Engine.MediumThreshold, 0.001)
}

func TestLoadRejectsBrokenEngineConfig(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
engine:
  low_threshold: 90
  medium_threshold: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level"}))
}
