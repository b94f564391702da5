package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port                   int `yaml:"port" env:"ADMISSIONS_SERVER_PORT"`
		ShutdownTimeoutSeconds int `yaml:"shutdownTimeoutSeconds" env:"ADMISSIONS_SERVER_SHUTDOWN_TIMEOUT_SECONDS"`
	} `yaml:"server"`

	Upstream struct {
		BaseURL                string `yaml:"baseURL" env:"ADMISSIONS_UPSTREAM_BASE_URL"`
		TimeoutSeconds         int    `yaml:"timeoutSeconds" env:"ADMISSIONS_UPSTREAM_TIMEOUT_SECONDS"`
		RefreshIntervalSeconds int    `yaml:"refreshIntervalSeconds" env:"ADMISSIONS_UPSTREAM_REFRESH_INTERVAL_SECONDS"`
	} `yaml:"upstream"`

	Database struct {
		Driver   string `yaml:"driver" env:"ADMISSIONS_DB_DRIVER"`
		Host     string `yaml:"host" env:"ADMISSIONS_DB_HOST"`
		Port     int    `yaml:"port" env:"ADMISSIONS_DB_PORT"`
		User     string `yaml:"user" env:"ADMISSIONS_DB_USER"`
		Password string `yaml:"password" env:"ADMISSIONS_DB_PASSWORD"`
		Name     string `yaml:"name" env:"ADMISSIONS_DB_NAME"`
		SSLMode  string `yaml:"sslMode" env:"ADMISSIONS_DB_SSLMODE"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint" env:"ADMISSIONS_MINIO_ENDPOINT"`
		AccessKey  string `yaml:"accessKey" env:"ADMISSIONS_MINIO_ACCESS_KEY"`
		SecretKey  string `yaml:"secretKey" env:"ADMISSIONS_MINIO_SECRET_KEY"`
		BucketName string `yaml:"bucketName" env:"ADMISSIONS_MINIO_BUCKET"`
		Region     string `yaml:"region" env:"ADMISSIONS_MINIO_REGION"`
		UseSSL     bool   `yaml:"useSSL" env:"ADMISSIONS_MINIO_USE_SSL"`
	} `yaml:"minio"`

	AI struct {
		// Provider is "openai", "heuristic" or empty for no briefs.
		Provider       string `yaml:"provider" env:"ADMISSIONS_AI_PROVIDER"`
		APIKey         string `yaml:"apiKey" env:"ADMISSIONS_AI_API_KEY"`
		Model          string `yaml:"model" env:"ADMISSIONS_AI_MODEL"`
		BaseURL        string `yaml:"baseURL" env:"ADMISSIONS_AI_BASE_URL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"ADMISSIONS_AI_TIMEOUT_SECONDS"`
	} `yaml:"ai"`

	Log struct {
		Level string `yaml:"level" env:"ADMISSIONS_LOG_LEVEL"`
	} `yaml:"log"`

	RateLimit struct {
		LoginCapacity   int `yaml:"loginCapacity" env:"ADMISSIONS_RATELIMIT_LOGIN_CAPACITY"`
		LoginRefillRate int `yaml:"loginRefillRate" env:"ADMISSIONS_RATELIMIT_LOGIN_REFILL_RATE"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" env:"ADMISSIONS_CORS_ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"cors"`

	Console struct {
		DataDir string `yaml:"dataDir" env:"ADMISSIONS_CONSOLE_DATA_DIR"`
	} `yaml:"console"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	DefaultUpstreamURL = "https://app.bigwigmedia.in/"
)

// Load reads config.yaml (skipped when path is empty), then lets ADMISSIONS_*
// environment variables override it, then fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 5
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultUpstreamURL
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 30
	}
	// refreshIntervalSeconds: 0 means the default, negative disables
	if c.Upstream.RefreshIntervalSeconds == 0 {
		c.Upstream.RefreshIntervalSeconds = 300
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMySQL
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == DriverPostgres {
			c.Database.Port = 5432
		} else {
			c.Database.Port = 3306
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "admissions-snapshots"
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RateLimit.LoginCapacity == 0 {
		c.RateLimit.LoginCapacity = 5
	}
	if c.RateLimit.LoginRefillRate == 0 {
		c.RateLimit.LoginRefillRate = 1
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.Console.DataDir == "" {
		c.Console.DataDir = ".admissions-desk"
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Database.Driver != DriverMySQL && c.Database.Driver != DriverPostgres {
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverMySQL, DriverPostgres, c.Database.Driver))
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("upstream.baseURL must be an http(s) URL, got %q", c.Upstream.BaseURL))
	}
	switch c.AI.Provider {
	case "", "heuristic":
	case "openai":
		if c.AI.APIKey == "" {
			errs = append(errs, errors.New("ai.apiKey is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ai.provider %q", c.AI.Provider))
	}
	return errors.Join(errs...)
}

// MySQLDSN builds the go-sql-driver DSN; parseTime is required by the repositories.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverPostgres {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

// RefreshInterval is zero when periodic refreshes are disabled.
func (c *Config) RefreshInterval() time.Duration {
	if c.Upstream.RefreshIntervalSeconds < 0 {
		return 0
	}
	return time.Duration(c.Upstream.RefreshIntervalSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}
