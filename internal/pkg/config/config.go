package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Ranker    RankerConfig    `mapstructure:"ranker"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int `mapstructure:"port"`
	ReadTimeout   int `mapstructure:"read_timeout"`
	WriteTimeout  int `mapstructure:"write_timeout"`
	NearbyTimeout int `mapstructure:"nearby_timeout"`
}

// DirectoryConfig points the client at the radio directory API.
type DirectoryConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // seconds
}

type RankerConfig struct {
	FetchConcurrency int `mapstructure:"fetch_concurrency"`
}

// CacheConfig controls the optional read-through cache. TTLs are in seconds.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	PlacesTTL  int  `mapstructure:"places_ttl"`
	ChannelTTL int  `mapstructure:"channel_ttl"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.nearby_timeout", 120)
	v.SetDefault("directory.base_url", "https://radio.garden/api")
	v.SetDefault("directory.user_agent", "radiodial/1.0")
	v.SetDefault("directory.timeout", 30)
	v.SetDefault("ranker.fetch_concurrency", 1)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.places_ttl", 3600)
	v.SetDefault("cache.channel_ttl", 600)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: RADIODIAL_DIRECTORY_BASE_URL → directory.base_url
	v.SetEnvPrefix("RADIODIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.NearbyTimeout <= 0 {
		errs = append(errs, "server.nearby_timeout must be positive")
	}
	if u, err := url.Parse(c.Directory.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("directory.base_url must be an absolute URL, got %q", c.Directory.BaseURL))
	}
	if c.Directory.Timeout <= 0 {
		errs = append(errs, "directory.timeout must be positive")
	}
	if c.Ranker.FetchConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("ranker.fetch_concurrency must be >= 1, got %d", c.Ranker.FetchConcurrency))
	}
	if c.Cache.Enabled {
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required when cache.enabled")
		}
		if c.Cache.PlacesTTL <= 0 || c.Cache.ChannelTTL <= 0 {
			errs = append(errs, "cache TTLs must be positive")
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
