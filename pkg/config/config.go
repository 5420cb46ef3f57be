package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"MarketPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Engine struct {
		Symbols           []string      `yaml:"symbols"`
		LookbackDays      int           `yaml:"lookback_days"`
		MineWorkers       int           `yaml:"mine_workers"`
		RecommendInterval time.Duration `yaml:"recommend_interval"`
		TrendInterval     time.Duration `yaml:"trend_interval"`
	} `yaml:"engine"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		ActiveKey string `yaml:"active_key"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled              bool     `yaml:"enabled"`
		Brokers              []string `yaml:"brokers"`
		RecommendationsTopic string   `yaml:"recommendations_topic"`
		TrendTopic           string   `yaml:"trend_topic"`
		RequiredAcks         int      `yaml:"required_acks"`
		Compression          string   `yaml:"compression"`
		Producer             struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Market struct {
		QuoteURL    string        `yaml:"quote_url"`
		APIKey      string        `yaml:"api_key"`
		IndexSymbol string        `yaml:"index_symbol"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"market"`
	Cache struct {
		Redis bool          `yaml:"redis"`
		TTL   time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
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

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Engine.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		c.Market.APIKey = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		c.Engine.LookbackDays = util.ParseIntDefault(v, c.Engine.LookbackDays)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("engine.symbols cannot be empty")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Engine.LookbackDays <= 0 {
		c.Engine.LookbackDays = 7
	}
	if c.Engine.MineWorkers <= 0 {
		c.Engine.MineWorkers = 4
	}
	if c.Engine.RecommendInterval <= 0 {
		c.Engine.RecommendInterval = 5 * time.Minute
	}
	if c.Engine.TrendInterval <= 0 {
		c.Engine.TrendInterval = time.Hour
	}
	if c.Redis.ActiveKey == "" {
		c.Redis.ActiveKey = "marketpulse:recommendations:active"
	}
	return nil
}
