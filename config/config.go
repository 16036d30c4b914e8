package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"vitals-monitor/analytics"
)

const (
	EnvPrefix     = "VITALS"
	ConfigFileEnv = "VITALS_CONFIG_FILE"
)

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	ResultTTL    time.Duration `mapstructure:"result_ttl"`
	RecentLimit  int           `mapstructure:"recent_limit"`
}

// Broker == "" отключает MQTT
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      byte   `mapstructure:"qos"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Service string `mapstructure:"service"`
}

type Config struct {
	HTTP      HTTPConfig              `mapstructure:"http"`
	Redis     RedisConfig             `mapstructure:"redis"`
	MQTT      MQTTConfig              `mapstructure:"mqtt"`
	Log       LogConfig               `mapstructure:"log"`
	Engine    analytics.EngineOptions `mapstructure:"engine"`
	Analytics analytics.Config        `mapstructure:"analytics"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 10)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.result_ttl", 5*time.Minute)
	v.SetDefault("redis.recent_limit", 100)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic", "vitals/+/readings")
	v.SetDefault("mqtt.qos", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.service", "vitals-monitor")

	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.queue_size", 10000)
	v.SetDefault("engine.save_timeout", 2*time.Second)

	a := analytics.DefaultConfig()
	v.SetDefault("analytics.max_history", a.MaxHistory)
	v.SetDefault("analytics.min_trend_history", a.MinTrendHistory)
	v.SetDefault("analytics.heart_rate_z_threshold", a.HeartRateZThreshold)
	v.SetDefault("analytics.spo2_z_threshold", a.SpO2ZThreshold)
	v.SetDefault("analytics.thresholds.heart_rate_low", a.Thresholds.HeartRateLow)
	v.SetDefault("analytics.thresholds.heart_rate_severe_low", a.Thresholds.HeartRateSevereLow)
	v.SetDefault("analytics.thresholds.heart_rate_high", a.Thresholds.HeartRateHigh)
	v.SetDefault("analytics.thresholds.heart_rate_severe_high", a.Thresholds.HeartRateSevereHigh)
	v.SetDefault("analytics.thresholds.spo2_low", a.Thresholds.SpO2Low)
	v.SetDefault("analytics.thresholds.spo2_critical", a.Thresholds.SpO2Critical)
	v.SetDefault("analytics.thresholds.temperature_low", a.Thresholds.TemperatureLow)
	v.SetDefault("analytics.thresholds.temperature_high", a.Thresholds.TemperatureHigh)
	v.SetDefault("analytics.thresholds.temperature_severe_high", a.Thresholds.TemperatureSevereHigh)
}

// Load reads defaults, an optional config file named by VITALS_CONFIG_FILE and
// VITALS_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// старое имя переменной из docker-compose
	if err := v.BindEnv("redis.addr", EnvPrefix+"_REDIS_ADDR", "REDIS_ADDR"); err != nil {
		return nil, err
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Redis.RecentLimit <= 0 {
		return errors.New("redis.recent_limit must be positive")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return errors.New("mqtt.topic is required when mqtt.broker is set")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	return nil
}
