package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/advisor/backtest"
	"github.com/rustyeddy/advisor/market"
	"github.com/rustyeddy/advisor/oracle"
	"github.com/rustyeddy/advisor/pkg/errors"
	"github.com/rustyeddy/advisor/risk"
)

// Config represents the complete backtest configuration
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Oracle   OracleConfig   `json:"oracle" yaml:"oracle"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}

// BacktestConfig contains the run parameters
type BacktestConfig struct {
	Symbol         string  `json:"symbol" yaml:"symbol" validate:"required"`
	StartDate      string  `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string  `json:"end_date" yaml:"end_date" validate:"required,datetime=2006-01-02"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital" validate:"gt=0"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate" validate:"gte=0,lt=1"`
	PositionSize   float64 `json:"position_size" yaml:"position_size" validate:"gt=0,lte=1"`
	MinConfidence  int     `json:"min_confidence" yaml:"min_confidence" validate:"min=1,max=10"`
}

// OracleConfig selects and tunes the recommendation backend
type OracleConfig struct {
	Kind            string `json:"kind" yaml:"kind" validate:"oneof=ema-cross recorded gemini hold"`
	Recommendations string `json:"recommendations,omitempty" yaml:"recommendations,omitempty" validate:"required_if=Kind recorded"`
	Model           string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKeyEnv       string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`

	FastEMA int `json:"fast_ema,omitempty" yaml:"fast_ema,omitempty" validate:"gte=0"`
	SlowEMA int `json:"slow_ema,omitempty" yaml:"slow_ema,omitempty" validate:"gte=0"`
	// TrendSMA enables the SMA trend filter on ema-cross signals. 0 disables.
	TrendSMA int `json:"trend_sma,omitempty" yaml:"trend_sma,omitempty" validate:"gte=0"`

	Timeout    string `json:"timeout" yaml:"timeout"`         // e.g. "300s"
	MaxRetries int    `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	Backoff    string `json:"backoff" yaml:"backoff"`         // initial, e.g. "1s"
	MaxBackoff string `json:"max_backoff" yaml:"max_backoff"` // e.g. "30s"
	// RateLimit is calls per second across every run sharing the oracle. 0 disables.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"`
}

// DataConfig selects the price source
type DataConfig struct {
	Provider       string `json:"provider" yaml:"provider" validate:"oneof=csv polygon"`
	Path           string `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Provider csv"`
	APIKeyEnv      string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	MinTradingDays int    `json:"min_trading_days" yaml:"min_trading_days" validate:"min=1"`
}

// OutputConfig controls where results go
type OutputConfig struct {
	Dir     string `json:"dir" yaml:"dir" validate:"required"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Debug   bool   `json:"debug" yaml:"debug"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// LoadFromFile loads configuration from a file (YAML or JSON). Values missing
// from the file keep their defaults. The result is not validated so command
// line flags can fill gaps first.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfiguration, err, "read config file %s", path)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfiguration, jerr, "parse config %s (tried YAML and JSON)", path)
		}
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration against today's date.
func (c *Config) Validate() error {
	return c.ValidateAt(time.Now())
}

// ValidateAt checks field constraints and the cross-field rules that depend
// on the current date.
func (c *Config) ValidateAt(now time.Time) error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, describe(err), err)
	}

	start, end, err := c.Dates()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return errors.Newf(errors.ErrCodeConfiguration, "start date %s must be before end date %s",
			c.Backtest.StartDate, c.Backtest.EndDate)
	}
	if end.After(market.TruncateDay(now)) {
		return errors.Newf(errors.ErrCodeConfiguration, "end date %s is in the future", c.Backtest.EndDate)
	}
	if days := market.CalendarDays(start, end); days < c.Data.MinTradingDays {
		return errors.Newf(errors.ErrCodeConfiguration,
			"backtest period must span at least %d days, got %d", c.Data.MinTradingDays, days)
	}

	if c.Oracle.SlowEMA > 0 && c.Oracle.FastEMA >= c.Oracle.SlowEMA {
		return errors.Newf(errors.ErrCodeConfiguration,
			"oracle.fast_ema (%d) must be below oracle.slow_ema (%d)", c.Oracle.FastEMA, c.Oracle.SlowEMA)
	}
	if _, err := c.AdapterConfig(); err != nil {
		return err
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, field+" is required")
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date like %s", field, market.DateLayout))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Dates parses the configured start and end dates.
func (c *Config) Dates() (time.Time, time.Time, error) {
	start, err := market.ParseDate(c.Backtest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeConfiguration, err, "invalid start date %q", c.Backtest.StartDate)
	}
	end, err := market.ParseDate(c.Backtest.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeConfiguration, err, "invalid end date %q", c.Backtest.EndDate)
	}
	return start, end, nil
}

// Params converts the configuration into engine parameters.
func (c *Config) Params() (backtest.Params, error) {
	start, end, err := c.Dates()
	if err != nil {
		return backtest.Params{}, err
	}
	return backtest.Params{
		Symbol:         strings.ToUpper(strings.TrimSpace(c.Backtest.Symbol)),
		Start:          start,
		End:            end,
		InitialCapital: c.Backtest.InitialCapital,
		Policy: risk.Policy{
			MinConfidence:  c.Backtest.MinConfidence,
			PositionSize:   c.Backtest.PositionSize,
			CommissionRate: c.Backtest.CommissionRate,
		},
		Oracle: c.Oracle.Kind,
	}, nil
}

// AdapterConfig converts the oracle retry settings. The rate limiter, if
// any, is fresh; share it explicitly across engines that should share it.
func (c *Config) AdapterConfig() (oracle.AdapterConfig, error) {
	out := oracle.DefaultAdapterConfig()
	out.MaxRetries = c.Oracle.MaxRetries

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"oracle.timeout", c.Oracle.Timeout, &out.Timeout},
		{"oracle.backoff", c.Oracle.Backoff, &out.InitialBackoff},
		{"oracle.max_backoff", c.Oracle.MaxBackoff, &out.MaxBackoff},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil || v <= 0 {
			return out, errors.Newf(errors.ErrCodeConfiguration, "%s must be a positive duration like 30s, got %q", d.name, d.raw)
		}
		*d.dst = v
	}

	if c.Oracle.RateLimit > 0 {
		out.Limiter = rate.NewLimiter(rate.Limit(c.Oracle.RateLimit), 1)
	}
	return out, nil
}

// Default returns a configuration with sensible defaults. Symbol and dates
// have no default.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: 100000,
			CommissionRate: 0.001,
			PositionSize:   1.0,
			MinConfidence:  5,
		},
		Oracle: OracleConfig{
			Kind:       "ema-cross",
			Model:      oracle.DefaultGenAIModel,
			APIKeyEnv:  "GEMINI_API_KEY",
			FastEMA:    10,
			SlowEMA:    30,
			Timeout:    "300s",
			MaxRetries: 2,
			Backoff:    "1s",
			MaxBackoff: "30s",
		},
		Data: DataConfig{
			Provider:       "csv",
			Path:           "./data/{symbol}.csv",
			APIKeyEnv:      "POLYGON_API_KEY",
			MinTradingDays: 5,
		},
		Output: OutputConfig{
			Dir: "./backtest_results",
		},
	}
}
