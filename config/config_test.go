package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/advisor/pkg/errors"
)

var today = time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)

func valid() *Config {
	cfg := Default()
	cfg.Backtest.Symbol = "AAPL"
	cfg.Backtest.StartDate = "2024-01-01"
	cfg.Backtest.EndDate = "2024-06-30"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.CommissionRate)
	assert.Equal(t, 5, cfg.Backtest.MinConfidence)
	assert.Equal(t, "ema-cross", cfg.Oracle.Kind)

	// symbol and dates have no default
	err := cfg.ValidateAt(today)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
	assert.NoError(t, valid().ValidateAt(today))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"missing symbol", func(c *Config) { c.Backtest.Symbol = "" }, "backtest.symbol is required"},
		{"bad date", func(c *Config) { c.Backtest.StartDate = "01/02/2024" }, "backtest.start_date must be a date"},
		{"negative capital", func(c *Config) { c.Backtest.InitialCapital = -1000 }, "backtest.initial_capital"},
		{"position size above one", func(c *Config) { c.Backtest.PositionSize = 1.5 }, "backtest.position_size"},
		{"confidence gate out of range", func(c *Config) { c.Backtest.MinConfidence = 11 }, "backtest.min_confidence"},
		{"unknown oracle", func(c *Config) { c.Oracle.Kind = "magic" }, "oracle.kind must be one of"},
		{"recorded needs a file", func(c *Config) { c.Oracle.Kind = "recorded" }, "oracle.recommendations is required"},
		{"csv needs a path", func(c *Config) { c.Data.Path = "" }, "data.path is required"},
		{"polygon needs no path", func(c *Config) { c.Data.Provider = "polygon"; c.Data.Path = "" }, ""},
		{"end before start", func(c *Config) { c.Backtest.EndDate = "2023-12-01" }, "must be before end date"},
		{"end in the future", func(c *Config) { c.Backtest.EndDate = "2025-07-01" }, "is in the future"},
		{"end today", func(c *Config) { c.Backtest.EndDate = "2025-06-30" }, ""},
		{"too short", func(c *Config) { c.Backtest.EndDate = "2024-01-03" }, "at least 5 days"},
		{"ema order", func(c *Config) { c.Oracle.FastEMA = 30; c.Oracle.SlowEMA = 10 }, "oracle.fast_ema"},
		{"bad timeout", func(c *Config) { c.Oracle.Timeout = "soon" }, "oracle.timeout"},
		{"zero timeout", func(c *Config) { c.Oracle.Timeout = "0s" }, "oracle.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateAt(today)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			cfg.Oracle.RateLimit = 2
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backtest:\n  symbol: MSFT\n  initial_capital: 5000\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", cfg.Backtest.Symbol)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.CommissionRate)
	assert.Equal(t, "300s", cfg.Oracle.Timeout)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not: [valid"), 0644))
	_, err = LoadFromFile(path)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
}

func TestParams(t *testing.T) {
	cfg := valid()
	cfg.Backtest.Symbol = " aapl "
	p, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, "AAPL", p.Symbol)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, 5, p.Policy.MinConfidence)
	assert.Equal(t, "ema-cross", p.Oracle)
	assert.NoError(t, p.Validate())
}

func TestAdapterConfig(t *testing.T) {
	cfg := valid()
	cfg.Oracle.Timeout = "45s"
	cfg.Oracle.MaxRetries = 4
	cfg.Oracle.RateLimit = 0.5

	ac, err := cfg.AdapterConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, ac.Timeout)
	assert.Equal(t, 4, ac.MaxRetries)
	assert.Equal(t, time.Second, ac.InitialBackoff)
	assert.Equal(t, 30*time.Second, ac.MaxBackoff)
	require.NotNil(t, ac.Limiter)

	cfg.Oracle.RateLimit = 0
	ac, err = cfg.AdapterConfig()
	require.NoError(t, err)
	assert.Nil(t, ac.Limiter)
}
