package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const redactedValue = "********"

// Config holds all configuration for the talent API service.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	// Env is the deployment environment name (ENV, default: dev)
	Env string `mapstructure:"env" yaml:"env"`

	// LogLevel is one of debug, info, warn, error (LOG_LEVEL, default: info).
	// Unknown levels fall back to info.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	API struct {
		Host            string        `mapstructure:"host" yaml:"host"`
		Port            int           `mapstructure:"port" yaml:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
		RateLimit       struct {
			RequestsPerSecond int `mapstructure:"rps" yaml:"rps"`
			Burst             int `mapstructure:"burst" yaml:"burst"`
		} `mapstructure:"rate_limit" yaml:"rate_limit"`
	} `mapstructure:"api" yaml:"api"`

	// DB is the Postgres datastore. Only used for readiness checks when Enabled,
	// and only validated then.
	DB struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		Host     string `mapstructure:"host" yaml:"host" validate:"required"`
		Port     int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
		User     string `mapstructure:"user" yaml:"user"`
		Password string `mapstructure:"password" yaml:"password"`
		Name     string `mapstructure:"name" yaml:"name"`
		SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	} `mapstructure:"db" yaml:"db"`

	// Redis is the cache store. Only used for readiness checks when Enabled,
	// and only validated then.
	Redis struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		Host     string `mapstructure:"host" yaml:"host" validate:"required"`
		Port     int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
		Password string `mapstructure:"password" yaml:"password"`
		DB       int    `mapstructure:"db" yaml:"db" validate:"min=0"`
	} `mapstructure:"redis" yaml:"redis"`

	warnings []string
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")

	v.SetDefault("api.host", "localhost")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("api.rate_limit.rps", 0) // 0 disables rate limiting
	v.SetDefault("api.rate_limit.burst", 0)

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "redis")
	v.SetDefault("redis.db", 0)
}

// loadFromEnv maps every key to its upper-case env name: api.port -> API_PORT.
// Env vars that match no key are never read.
func loadFromEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment, in increasing order of precedence. Flags bound on v win over all
// of them. When no search paths are given, "." and "./config" are used.
func Load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	loadFromEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	level, known := normalizeLogLevel(config.LogLevel)
	if !known {
		config.warnings = append(config.warnings,
			fmt.Sprintf("unknown log level %q, using info", config.LogLevel))
	}
	config.LogLevel = level

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// New loads configuration into a fresh viper instance.
func New() (*Config, error) {
	return Load(viper.New())
}

// Warnings lists values Load replaced with a fallback
func (c *Config) Warnings() []string {
	return c.warnings
}

// normalizeLogLevel maps the usual aliases ("WARNING", "critical") onto zap
// level names. Anything zap does not know becomes info and reports false.
func normalizeLogLevel(level string) (string, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return "info", true
	case "warning":
		return "warn", true
	case "critical":
		return "fatal", true
	}
	if _, err := zapcore.ParseLevel(level); err != nil {
		return "info", false
	}
	return level, true
}

var validate = validator.New()

// validateConfig checks the settings of enabled backing services. Disabled
// services are never dialed, so their values are not checked.
func validateConfig(config *Config) error {
	var errs []error
	if config.DB.Enabled {
		errs = append(errs, validateSection("db", &config.DB))
	}
	if config.Redis.Enabled {
		errs = append(errs, validateSection("redis", &config.Redis))
	}
	return errors.Join(errs...)
}

func validateSection(name string, section interface{}) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s.%s: invalid value %v (rule %s)",
			name, strings.ToLower(fe.Field()), fe.Value(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Addr returns the host:port the API server binds to
func (c *Config) Addr() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// DSN returns the Postgres connection URL for the datastore
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DB.User, c.DB.Password),
		Host:   net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:   "/" + c.DB.Name,
	}
	if c.DB.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.DB.SSLMode}}.Encode()
	}
	return u.String()
}

// RedisAddr returns the host:port of the cache store
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// IsProduction reports whether the service runs in a production environment
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Redacted returns a copy of the config with credentials masked, safe to log or print
func (c *Config) Redacted() Config {
	out := *c
	if out.DB.Password != "" {
		out.DB.Password = redactedValue
	}
	if out.Redis.Password != "" {
		out.Redis.Password = redactedValue
	}
	return out
}
