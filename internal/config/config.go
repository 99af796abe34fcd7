// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// PipelineConfig bounds the post-completion artifact pipeline. MaxWait is the
// hard deadline for one completion wait; PollInterval is the spacing between
// status reads.
type PipelineConfig struct {
	MaxWait      time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// StorageConfig selects and parameterizes the artifact store backend.
type StorageConfig struct {
	// Backend is either "file" or "postgres".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Dir is the root directory for the file backend.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// DatabaseURL is the connection string for the postgres backend.
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`
}

// DetectorConfig points at the external detector service.
type DetectorConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "codetriage")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Pipeline --
	v.SetDefault("pipeline.max_wait", 5*time.Minute)
	v.SetDefault("pipeline.poll_interval", 2*time.Second)

	// -- Storage --
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", defaultArtifactDir())
	v.SetDefault("storage.database_url", "")

	// -- Detector --
	v.SetDefault("detector.base_url", "http://localhost:8001")
	v.SetDefault("detector.request_timeout", 15*time.Second)

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the static defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object and
// validates it.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Pipeline.MaxWait <= 0 {
		return fmt.Errorf("pipeline.max_wait must be a positive duration")
	}
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("pipeline.poll_interval must be a positive duration")
	}
	if c.Pipeline.PollInterval > c.Pipeline.MaxWait {
		return fmt.Errorf("pipeline.poll_interval must not exceed pipeline.max_wait")
	}
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file backend")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if c.Detector.BaseURL == "" {
		return fmt.Errorf("detector.base_url is a required configuration field")
	}
	return nil
}

// defaultArtifactDir resolves ~/.codetriage/artifacts, falling back to a
// relative directory when the home directory cannot be determined.
func defaultArtifactDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "artifacts"
	}
	return filepath.Join(home, ".codetriage", "artifacts")
}
