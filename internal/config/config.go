package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DECOROPS"

// Config is the process configuration for the dashboard backend.
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	DataService DataServiceConfig `mapstructure:"dataservice"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Workflow    WorkflowConfig    `mapstructure:"workflow"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	StaticDir       string        `mapstructure:"static_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DataServiceConfig points at the remote REST service that owns events.
type DataServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig locates the local sqlite move journal.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds the HS256 secret used to verify bearer tokens. An empty
// secret switches the API to header-selected roles.
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	DefaultRole string `mapstructure:"default_role"`
}

type WorkflowConfig struct {
	Transitions string `mapstructure:"transitions"`
}

// Load reads defaults, then the optional config file, then DECOROPS_*
// environment variables. When file is empty, config.yaml is looked up in the
// working directory and ./config; a missing file is not an error.
func Load(file string) (Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("error loading configuration: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataService.BaseURL) == "" {
		return errors.New("dataservice.base_url is required")
	}
	if c.DataService.Timeout <= 0 {
		return errors.New("dataservice.timeout must be positive")
	}
	switch c.Workflow.Transitions {
	case "any", "adjacent":
	default:
		return fmt.Errorf("workflow.transitions must be any or adjacent, got %q", c.Workflow.Transitions)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// IsDevelopment reports whether the process runs outside production.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "production")

	// HTTP Server
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.static_dir", "web/dist")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Remote data service
	v.SetDefault("dataservice.base_url", "http://127.0.0.1:8000/api/v1")
	v.SetDefault("dataservice.token", "")
	v.SetDefault("dataservice.timeout", "10s")

	// Move journal
	v.SetDefault("database.path", "data/decorops.db")

	// Catalogue cache
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	// Auth
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.default_role", "")

	v.SetDefault("workflow.transitions", "any")
}
