package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Engine struct {
		Input        string  `yaml:"input" default:"data/vacancies.csv"`
		Vacancy      string  `yaml:"vacancy"`
		BaseCurrency string  `yaml:"base_currency" default:"RUR" validate:"required,len=3"`
		Workers      int     `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
		ShareFloor   float64 `yaml:"share_floor" default:"0.01" validate:"gte=0,lte=1"`
		TopN         int     `yaml:"top_n" default:"10" validate:"gte=1"`
		PartitionDir string  `yaml:"partition_dir"`
	} `yaml:"engine"`
	Currency struct {
		Static               map[string]float64 `yaml:"static"`
		MonthlyEnabled       bool               `yaml:"monthly_enabled"`
		PreferMonthly        bool               `yaml:"prefer_monthly"`
		MaterialityThreshold int                `yaml:"materiality_threshold" default:"5000" validate:"gte=0"`
		SourceURL            string             `yaml:"source_url" default:"http://www.cbr.ru/scripts/XML_daily.asp" validate:"required,url"`
		FetchTimeout         time.Duration      `yaml:"fetch_timeout" default:"10s"`
		RequestsPerSecond    float64            `yaml:"requests_per_second" default:"5" validate:"gt=0"`
	} `yaml:"currency"`
	Cache struct {
		Type   string        `yaml:"type" default:"memory" validate:"oneof=none memory redis layered"`
		TTL    time.Duration `yaml:"ttl" default:"720h"`
		Prefix string        `yaml:"prefix" default:"vacancypulse"`
		Redis  struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sink struct {
		Type string `yaml:"type" default:"console" validate:"oneof=console clickhouse kafka"`
	} `yaml:"sink"`
	ClickHouse struct {
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"vacancypulse"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"vacancy-reports"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
		RateLimit       float64       `yaml:"rate_limit" default:"1" validate:"gte=0"`
		RateBurst       float64       `yaml:"rate_burst" default:"5" validate:"gte=1"`
	} `yaml:"server"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("VACANCY_INPUT"); v != "" {
		c.Engine.Input = v
	}
	if v := os.Getenv("VACANCY_FILTER"); v != "" {
		c.Engine.Vacancy = v
	}
	if v := os.Getenv("SINK_TYPE"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			p, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("REDIS_ADDR port: %w", err)
			}
			c.Cache.Redis.Port = p
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags and the rules that span several sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for code, f := range c.Currency.Static {
		if len(code) != 3 {
			return fmt.Errorf("currency.static: code %q must have 3 letters", code)
		}
		if f <= 0 {
			return fmt.Errorf("currency.static: factor for %s must be positive", code)
		}
	}
	if c.Sink.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when sink.type is kafka")
	}
	if c.Sink.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when sink.type is clickhouse")
	}
	return nil
}
