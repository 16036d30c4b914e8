package analytics

import "errors"

type Thresholds struct {
	HeartRateLow        float64 `mapstructure:"heart_rate_low"`
	HeartRateSevereLow  float64 `mapstructure:"heart_rate_severe_low"`
	HeartRateHigh       float64 `mapstructure:"heart_rate_high"`
	HeartRateSevereHigh float64 `mapstructure:"heart_rate_severe_high"`

	SpO2Low      float64 `mapstructure:"spo2_low"`
	SpO2Critical float64 `mapstructure:"spo2_critical"`

	TemperatureLow        float64 `mapstructure:"temperature_low"`
	TemperatureHigh       float64 `mapstructure:"temperature_high"`
	TemperatureSevereHigh float64 `mapstructure:"temperature_severe_high"`
}

type Config struct {
	MaxHistory          int        `mapstructure:"max_history"`
	MinTrendHistory     int        `mapstructure:"min_trend_history"`
	HeartRateZThreshold float64    `mapstructure:"heart_rate_z_threshold"`
	SpO2ZThreshold      float64    `mapstructure:"spo2_z_threshold"`
	Thresholds          Thresholds `mapstructure:"thresholds"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRateLow:          60,
		HeartRateSevereLow:    50,
		HeartRateHigh:         100,
		HeartRateSevereHigh:   120,
		SpO2Low:               95,
		SpO2Critical:          90,
		TemperatureLow:        97.0,
		TemperatureHigh:       99.5,
		TemperatureSevereHigh: 101,
	}
}

func DefaultConfig() Config {
	return Config{
		MaxHistory:          100,
		MinTrendHistory:     10,
		HeartRateZThreshold: 2.5,
		SpO2ZThreshold:      2.0,
		Thresholds:          DefaultThresholds(),
	}
}

func (c Config) Validate() error {
	if c.MaxHistory <= 0 {
		return errors.New("max_history must be positive")
	}
	if c.MinTrendHistory < 2 {
		return errors.New("min_trend_history must be at least 2")
	}
	if c.MinTrendHistory > c.MaxHistory {
		return errors.New("min_trend_history must not exceed max_history")
	}
	if c.HeartRateZThreshold <= 0 || c.SpO2ZThreshold <= 0 {
		return errors.New("z-score thresholds must be positive")
	}

	th := c.Thresholds
	if th.HeartRateSevereLow > th.HeartRateLow || th.HeartRateLow >= th.HeartRateHigh || th.HeartRateHigh > th.HeartRateSevereHigh {
		return errors.New("heart rate thresholds must satisfy severe_low <= low < high <= severe_high")
	}
	if th.SpO2Critical > th.SpO2Low {
		return errors.New("spo2_critical must not exceed spo2_low")
	}
	if th.TemperatureLow >= th.TemperatureHigh || th.TemperatureHigh > th.TemperatureSevereHigh {
		return errors.New("temperature thresholds must satisfy low < high <= severe_high")
	}
	return nil
}
