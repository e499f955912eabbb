package backtest

import (
	"github.com/go-playground/validator/v10"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/mankiwan/news-algo/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters of a single backtest run.
type Config struct {
	// Asset is the cryptocurrency whose news events are traded.
	Asset types.Asset `yaml:"asset" validate:"required"`
	// WindowMinutes is the signal window in minutes.
	WindowMinutes float64 `yaml:"window_minutes" validate:"gt=0"`
	// ThresholdMinutes is the exit threshold in minutes. Must exceed the window.
	ThresholdMinutes float64 `yaml:"threshold_minutes" validate:"gt=0,gtfield=WindowMinutes"`
	// ToleranceSeconds is the maximum gap for nearest-price lookups.
	ToleranceSeconds int64 `yaml:"tolerance_seconds" validate:"gte=0"`
	// Costs is the optional flat cost model, zero by default.
	Costs types.TradingCosts `yaml:"costs"`
}

// DefaultConfig returns the historical default parameters: 1 minute window,
// 10 minute threshold, 120 second tolerance, no costs.
func DefaultConfig() Config {
	return Config{
		Asset:            types.AssetBTC,
		WindowMinutes:    1,
		ThresholdMinutes: 10,
		ToleranceSeconds: DefaultToleranceSeconds,
		Costs:            types.TradingCosts{},
	}
}

// ParseConfig parses a YAML config document and validates it.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks field constraints and asset support.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if _, err := c.Asset.Patterns(); err != nil {
		return err
	}

	return nil
}

// Combination returns the configured (window, threshold) pair.
func (c Config) Combination() types.ParameterCombination {
	return types.ParameterCombination{
		WindowMinutes:    c.WindowMinutes,
		ThresholdMinutes: c.ThresholdMinutes,
	}
}
