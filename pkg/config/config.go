// Package config loads and validates redbiom configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (REDBIOM_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the redbiom configuration.
//
// It captures the static aspects of the tool: which key-value backend to
// talk to, logging behavior, and the API and metrics servers started by
// `redbiom serve`.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Store selects and configures the key-value backend
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// API contains the HTTP API server configuration
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	// Backend is the key-value implementation: badger (embedded) or
	// webdis (HTTP gateway in front of Redis)
	Backend string `mapstructure:"backend" validate:"required,oneof=badger webdis" yaml:"backend"`

	// Badger configures the embedded backend
	Badger BadgerConfig `mapstructure:"badger" yaml:"badger"`

	// Webdis configures the gateway backend
	Webdis WebdisConfig `mapstructure:"webdis" yaml:"webdis"`
}

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the database directory.
	// Default: $XDG_DATA_HOME/redbiom/db
	Path string `mapstructure:"path" yaml:"path"`
}

// WebdisConfig configures the Webdis gateway backend.
type WebdisConfig struct {
	// Host is the gateway base URL, e.g. http://127.0.0.1:7379
	Host string `mapstructure:"host" validate:"omitempty,url" yaml:"host"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	// Port is the HTTP port for the API server. Default: 7380
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds request reads. Default: 30s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds response writes. Default: 60s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds idle keep-alive connections. Default: 120s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// Auth configures bearer-token auth on admin routes
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`
}

// AuthConfig configures JWT bearer auth for admin routes.
//
// The secret can also be supplied via REDBIOM_API_AUTH_SECRET, which takes
// precedence over the file value so that secrets stay out of config files.
type AuthConfig struct {
	// Enabled turns on bearer-token checks for admin routes
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Secret is the HS256 signing secret (min 32 bytes when enabled)
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`
}

// EnvAuthSecret is the environment variable overriding AuthConfig.Secret.
const EnvAuthSecret = "REDBIOM_API_AUTH_SECRET"

// GetAuthSecret returns the auth secret, preferring the environment.
func (c *APIConfig) GetAuthSecret() string {
	if secret := os.Getenv(EnvAuthSecret); secret != "" {
		return secret
	}
	return c.Auth.Secret
}

// MetricsConfig contains Prometheus metrics server configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the metrics HTTP
	// server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint. Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from the given path (or the default location
// when empty), applies environment overrides and defaults, and validates
// the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		applyEnvOverrides(v, cfg)
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when an
// explicitly requested file does not exist. A missing default file is not
// an error; the defaults are used.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Create it first:\n"+
				"  redbiom config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path in YAML.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may carry the API auth secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variables and config file search.
// Environment variables use the REDBIOM_ prefix with underscores, e.g.
// REDBIOM_LOGGING_LEVEL=DEBUG or REDBIOM_STORE_WEBDIS_HOST=....
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("REDBIOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(GetConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the config file, reporting whether one was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// applyEnvOverrides copies recognized environment overrides onto a
// default-built config. Used on the no-config-file path, where viper has
// no file keys to bind against.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if s := v.GetString("logging.level"); s != "" {
		cfg.Logging.Level = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.Logging.Format = s
	}
	if s := v.GetString("logging.output"); s != "" {
		cfg.Logging.Output = s
	}
	if s := v.GetString("store.backend"); s != "" {
		cfg.Store.Backend = s
	}
	if s := v.GetString("store.badger.path"); s != "" {
		cfg.Store.Badger.Path = s
	}
	if s := v.GetString("store.webdis.host"); s != "" {
		cfg.Store.Webdis.Host = s
	}
}

// configDecodeHooks returns the mapstructure decode hooks used when
// unmarshaling, currently just flexible duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook parses "30s" style strings into time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch value := data.(type) {
		case string:
			return time.ParseDuration(value)
		case int:
			// Raw integers are nanoseconds, matching yaml's encoding of
			// time.Duration.
			return time.Duration(value), nil
		case int64:
			return time.Duration(value), nil
		case float64:
			return time.Duration(value), nil
		default:
			return data, nil
		}
	}
}

// GetConfigDir returns the redbiom configuration directory, honoring
// XDG_CONFIG_HOME.
func GetConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redbiom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".redbiom"
	}
	return filepath.Join(home, ".config", "redbiom")
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetDataDir returns the redbiom data directory, honoring XDG_DATA_HOME.
func GetDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "redbiom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".redbiom"
	}
	return filepath.Join(home, ".local", "share", "redbiom")
}
