package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8099", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.True(t, cfg.Scheduler.MonthlyRoiRate.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, 3, cfg.Scheduler.RetryAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VESTRA_DATABASE_DRIVER", "sqlite")
	t.Setenv("VESTRA_DATABASE_DSN", "file:vestra.db")
	t.Setenv("VESTRA_SCHEDULER_CRON_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:vestra.db", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.Scheduler.CronKey)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vestra.yaml")
	body := `
server:
  port: "9000"
scheduler:
  enabled: true
  interval: 30m
  monthly_roi_rate: "0.015"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	assert.True(t, cfg.Scheduler.MonthlyRoiRate.Equal(decimal.RequireFromString("0.015")))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"VESTRA_DATABASE_DRIVER": "postgres"}},
		{name: "non-numeric rate", env: map[string]string{"VESTRA_SCHEDULER_MONTHLY_ROI_RATE": "two percent"}},
		{name: "negative rate", env: map[string]string{"VESTRA_SCHEDULER_MONTHLY_ROI_RATE": "-0.01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}
