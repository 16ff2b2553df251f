package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/devghori1264/aerophoenix/razord/internal/models"
)

// ServerConfig holds listener settings
type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr" json:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr" yaml:"grpc_addr" json:"grpc_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr" yaml:"metrics_addr" json:"metrics_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StorageConfig holds node repository settings
type StorageConfig struct {
	Type     string `mapstructure:"type" yaml:"type" json:"type"` // "badger" or "memory"
	Path     string `mapstructure:"path" yaml:"path" json:"path"`
	Fixtures string `mapstructure:"fixtures" yaml:"fixtures" json:"fixtures"`
}

// AuthConfig holds basic auth credentials for the command API
type AuthConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Username string `mapstructure:"username" yaml:"username" json:"username"`
	Password string `mapstructure:"password" yaml:"password" json:"password"`
}

// NATSConfig holds event publishing settings; an empty URL disables events
type NATSConfig struct {
	URL string `mapstructure:"url" yaml:"url" json:"url"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
}

// Config represents the main configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth" json:"auth"`
	NATS    NATSConfig    `mapstructure:"nats" yaml:"nats" json:"nats"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
	Tasks   []models.Task `mapstructure:"tasks" yaml:"tasks" json:"tasks"`
}

// DefaultConfig returns a configuration suitable for local development
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			MetricsAddr:     ":9090",
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Type: "badger",
			Path: "./data/badger",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "razord",
		},
	}
}

// LoadConfig loads configuration from file, then RAZORD_* environment
// variables. A missing default config file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	config := DefaultConfig()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("razord")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/razord")
	}

	v.SetEnvPrefix("RAZORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// bindEnv registers keys so AutomaticEnv applies to Unmarshal even when the
// key is absent from the config file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.http_addr", "server.grpc_addr", "server.metrics_addr", "server.shutdown_timeout",
		"storage.type", "storage.path", "storage.fixtures",
		"auth.enabled", "auth.username", "auth.password",
		"nats.url",
		"logging.level", "logging.format",
		"tracing.enabled", "tracing.service_name",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "badger":
		if c.Storage.Path == "" {
			return errors.New("storage.path required for badger storage")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}

	if c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr required")
	}

	if c.Auth.Enabled && (c.Auth.Username == "" || c.Auth.Password == "") {
		return errors.New("auth enabled but username or password missing")
	}

	for _, t := range c.Tasks {
		if t.Name == "" {
			return errors.New("task name required")
		}
	}
	return nil
}
