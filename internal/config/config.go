package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" env:", prefix=STOCKSCOPE_SERVER_"`
	DataSource DataSourceConfig `yaml:"data_source" env:", prefix=STOCKSCOPE_DATA_"`
	Analysis   AnalysisConfig   `yaml:"analysis" env:", prefix=STOCKSCOPE_ANALYSIS_"`
	Session    SessionConfig    `yaml:"session" env:", prefix=STOCKSCOPE_SESSION_"`
	Database   DatabaseConfig   `yaml:"database" env:", prefix=STOCKSCOPE_DB_"`
	Log        LogConfig        `yaml:"log" env:", prefix=STOCKSCOPE_LOG_"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" env:"ADDR, overwrite" validate:"required"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS, overwrite"`
}

type DataSourceConfig struct {
	BaseURL       string        `yaml:"base_url" env:"BASE_URL, overwrite" validate:"required,url"`
	NewsURL       string        `yaml:"news_url" env:"NEWS_URL, overwrite" validate:"required,url"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite" validate:"gt=0"`
	Proxy         string        `yaml:"proxy" env:"PROXY, overwrite" validate:"omitempty,url"`
	RatePerSecond float64       `yaml:"rate_per_second" env:"RATE_PER_SECOND, overwrite" validate:"gt=0"`
	UserAgent     string        `yaml:"user_agent" env:"USER_AGENT, overwrite"`
}

type AnalysisConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate" env:"RISK_FREE_RATE, overwrite" validate:"gte=0,lt=1"`
	IncludeFinancials bool    `yaml:"include_financials" env:"INCLUDE_FINANCIALS, overwrite"`
}

type SessionConfig struct {
	MaxIdle   time.Duration `yaml:"max_idle" env:"MAX_IDLE, overwrite" validate:"gt=0"`
	SweepCron string        `yaml:"sweep_cron" env:"SWEEP_CRON, overwrite" validate:"required"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH, overwrite"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL, overwrite" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" env:"FORMAT, overwrite" validate:"oneof=text json"`
	Output string `yaml:"output" env:"OUTPUT, overwrite"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.DataSource.NewsURL == "" {
		c.DataSource.NewsURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 10 * time.Second
	}
	if c.DataSource.RatePerSecond == 0 {
		c.DataSource.RatePerSecond = 5
	}
	if c.DataSource.UserAgent == "" {
		c.DataSource.UserAgent = "Mozilla/5.0"
	}
	if c.Analysis.RiskFreeRate == 0 {
		c.Analysis.RiskFreeRate = 0.02
	}
	if c.Session.MaxIdle == 0 {
		c.Session.MaxIdle = 30 * time.Minute
	}
	if c.Session.SweepCron == "" {
		c.Session.SweepCron = "0 */5 * * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
