package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Dispatcher.DailyLimit)
	assert.Equal(t, 10, cfg.Dispatcher.HourlyLimit)
	assert.Equal(t, 30, cfg.Dispatcher.SendDelaySeconds)
	assert.Equal(t, []string{"general", "automation", "growth"}, cfg.Composer.Campaigns)
	assert.Equal(t, 70, cfg.Composer.PersonalizationThreshold)
	assert.Equal(t, 200, cfg.Scoring.MinScoreThreshold)
	assert.Equal(t, "18:00", cfg.Tracking.ReportTime)
	assert.InDelta(t, 15.0, cfg.Optimization.OpenRateFloor, 0.001)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OUTBOUND_ADDR", ":9090")
	t.Setenv("OUTBOUND_LOG_LEVEL", "debug")
	t.Setenv("OUTBOUND_DISPATCHER__DAILY_LIMIT", "100")
	t.Setenv("OUTBOUND_SMTP__HOST", "mail.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 100, cfg.Dispatcher.DailyLimit)
	assert.Equal(t, "mail.internal", cfg.SMTP.Host)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Dispatcher.HourlyLimit)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outbound.yaml")
	yaml := []byte("addr: \":7000\"\ndispatcher:\n  daily_limit: 20\n  hourly_limit: 5\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	t.Setenv("OUTBOUND_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 20, cfg.Dispatcher.DailyLimit)
	assert.Equal(t, 5, cfg.Dispatcher.HourlyLimit)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outbound.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\n"), 0o644))

	t.Setenv("OUTBOUND_CONFIG", path)
	t.Setenv("OUTBOUND_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Addr)
}

func TestValidateRejectsBadLimits(t *testing.T) {
	t.Setenv("OUTBOUND_DISPATCHER__HOURLY_LIMIT", "500")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly limit")
}

func TestValidateRejectsNoCampaigns(t *testing.T) {
	cfg := Default()
	cfg.Composer.Campaigns = nil
	assert.Error(t, cfg.validate())
}
