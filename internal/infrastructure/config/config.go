package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Event     EventConfig     `mapstructure:"event"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Invoice   InvoiceConfig   `mapstructure:"invoice"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes

	// statements slower than this are logged at warn
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	LogQueryParams     bool          `mapstructure:"log_query_params"` // log bound values instead of placeholders
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

// Event publish modes
const (
	PublishModeDirect = "direct"
	PublishModeOutbox = "outbox"
)

// Backends for idempotency keys and invoice number sequences
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDatabase = "database"
)

// EventConfig controls how domain events leave a committed transaction
type EventConfig struct {
	PublishMode        string        `mapstructure:"publish_mode"`
	ProcessorEnabled   bool          `mapstructure:"processor_enabled"`
	BatchSize          int           `mapstructure:"batch_size"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	MaxRetries         int           `mapstructure:"max_retries"`
	CleanupEnabled     bool          `mapstructure:"cleanup_enabled"`
	CleanupRetention   time.Duration `mapstructure:"cleanup_retention"`
	IdempotencyBackend string        `mapstructure:"idempotency_backend"`
	IdempotencyTTL     time.Duration `mapstructure:"idempotency_ttl"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	ConflictRetries  int           `mapstructure:"conflict_retries"` // retries of a command that lost an optimistic-lock race
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig holds OpenTelemetry export settings. Enabled covers traces only.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"` // mirror zap output to the collector
}

type InvoiceConfig struct {
	NumberPrefix    string `mapstructure:"number_prefix"`
	SequenceBackend string `mapstructure:"sequence_backend"` // database or redis
	DefaultCurrency string `mapstructure:"default_currency"`
}

// Load reads config.toml from the working directory or /etc/invoiceme and
// overlays INVOICE_* environment variables, e.g. INVOICE_DATABASE_HOST.
// A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/invoiceme")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns an instance with every known key defaulted, so that
// Unmarshal also picks up environment overrides for keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent or unsafe values
func (c *Config) Validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if err := oneOf("event.publish_mode", c.Event.PublishMode, PublishModeDirect, PublishModeOutbox); err != nil {
		return err
	}
	if err := oneOf("event.idempotency_backend", c.Event.IdempotencyBackend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("invoice.sequence_backend", c.Invoice.SequenceBackend, BackendDatabase, BackendRedis); err != nil {
		return err
	}

	if c.HTTP.ConflictRetries < 0 {
		return fmt.Errorf("http.conflict_retries cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	switch {
	case c.Database.Password == "":
		return fmt.Errorf("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	case c.Telemetry.DBLogFullSQL:
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
	case c.Database.LogQueryParams:
		return fmt.Errorf("database.log_query_params must be false in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("http.cors_allow_origins cannot be '*' in production")
		}
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %q, got %q", key, allowed, value)
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
