package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Binance struct {
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"binance"`
	Pair struct {
		SymbolA string `yaml:"symbol_a"`
		SymbolB string `yaml:"symbol_b"`
		Window  int    `yaml:"window" default:"20"`
	} `yaml:"pair"`
	Store struct {
		RawHighWater int `yaml:"raw_high_water" default:"10000"`
		RawLowWater  int `yaml:"raw_low_water" default:"5000"`
		BarCap       int `yaml:"bar_cap" default:"2000"`
		BarRetain    int `yaml:"bar_retain" default:"1000"`
	} `yaml:"store"`
	Resample struct {
		Interval time.Duration `yaml:"interval" default:"1s"`
	} `yaml:"resample"`
	Sink struct {
		Backend    string `yaml:"backend" default:"none"` // none, clickhouse, kafka
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"pairscope"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"clickhouse"`
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			TickTopic    string        `yaml:"tick_topic" default:"pairscope.ticks"`
			BarTopic     string        `yaml:"bar_topic" default:"pairscope.bars"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		} `yaml:"kafka"`
	} `yaml:"sink"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"5s"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
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
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SINK_BACKEND"); v != "" {
		c.Sink.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sink.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Sink.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Sink.Backend {
	case "none", "clickhouse", "kafka":
	default:
		return fmt.Errorf("sink.backend must be 'none', 'clickhouse' or 'kafka', got '%s'", c.Sink.Backend)
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	if c.Pair.SymbolA == "" || c.Pair.SymbolB == "" {
		return fmt.Errorf("pair.symbol_a and pair.symbol_b are required")
	}
	if c.Pair.Window < 2 {
		return fmt.Errorf("pair.window must be >= 2, got %d", c.Pair.Window)
	}
	if c.Store.RawLowWater > c.Store.RawHighWater {
		return fmt.Errorf("store.raw_low_water must not exceed store.raw_high_water")
	}
	if c.Store.BarRetain > c.Store.BarCap {
		return fmt.Errorf("store.bar_retain must not exceed store.bar_cap")
	}
	return nil
}
