package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"3001"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory"` // memory, redis or layered
		Redis   struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			PoolSize     int           `yaml:"pool_size" default:"10"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"5"`
			PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
			Prefix       string        `yaml:"prefix" default:"cryptointel"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		Market struct {
			BaseURL      string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
			TTL          time.Duration `yaml:"ttl" default:"30s"`
			FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
			TopN         int           `yaml:"top_n" default:"100"`
		} `yaml:"market"`
		Sentiment struct {
			BaseURL      string        `yaml:"base_url" default:"https://api.alternative.me"`
			TTL          time.Duration `yaml:"ttl" default:"5m"`
			FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
		} `yaml:"sentiment"`
		Whales struct {
			TTL       time.Duration `yaml:"ttl" default:"1m"`
			BatchSize int           `yaml:"batch_size" default:"15"`
		} `yaml:"whales"`
		Chains struct {
			BaseURL      string        `yaml:"base_url" default:"https://api.llama.fi"`
			TTL          time.Duration `yaml:"ttl" default:"5m"`
			FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
			TopN         int           `yaml:"top_n" default:"15"`
		} `yaml:"chains"`
		News struct {
			BaseURL      string        `yaml:"base_url" default:"https://cryptopanic.com/api/free/v1"`
			APIKey       string        `yaml:"api_key"`
			TTL          time.Duration `yaml:"ttl" default:"5m"`
			FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
			Limit        int           `yaml:"limit" default:"20"`
		} `yaml:"news"`
	} `yaml:"sources"`
	Broadcast struct {
		Interval time.Duration `yaml:"interval" default:"30s"`
	} `yaml:"broadcast"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"market.signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Fill zero-valued fields with struct defaults
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Broadcast.Interval <= 0 {
		return fmt.Errorf("broadcast.interval must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Sources.Market.TopN <= 0 {
		return fmt.Errorf("sources.market.top_n must be positive")
	}
	return nil
}
