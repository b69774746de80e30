// Package config holds the service configuration, read from an optional YAML file
// and overridden by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration
const (
	DefaultAddr           = ":5000"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 1024 * 1024 // 1MB
	DefaultModelsPath     = "rf_trained_models.json"
	DefaultThresholdsPath = "rf_thresholds.json"
	DefaultBatchSize      = 64
)

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Models ModelsConfig `yaml:"models"`
	Log    LogConfig    `yaml:"log"`
	Batch  BatchConfig  `yaml:"batch"`
	WarmUp bool         `yaml:"warm_up"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int           `yaml:"max_request_size"`
	// Concurrency limits concurrent requests; 0 uses the server default.
	Concurrency int `yaml:"concurrency"`
}

// ModelsConfig locates the model artifacts.
type ModelsConfig struct {
	// Path and Thresholds are local paths or file://, s3:// or gs:// URIs.
	Path       string `yaml:"path"`
	Thresholds string `yaml:"thresholds"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

// LogConfig configures logging.
type LogConfig struct {
	File string `yaml:"file"`
	JSON bool   `yaml:"json"`
}

// BatchConfig configures offline batch classification.
type BatchConfig struct {
	// Workers is the number of concurrent classifiers; 0 uses GOMAXPROCS.
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
			MaxRequestSize: DefaultMaxRequestSize,
		},
		Models: ModelsConfig{
			Path:       DefaultModelsPath,
			Thresholds: DefaultThresholdsPath,
		},
		Batch: BatchConfig{
			BatchSize: DefaultBatchSize,
		},
		WarmUp: true,
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Server.MaxRequestSize <= 0 {
		return errors.New("max request size must be greater than 0")
	}
	if c.Server.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if c.Models.Path == "" || c.Models.Thresholds == "" {
		return errors.New("models and thresholds locations are required")
	}
	if c.Batch.Workers < 0 {
		return errors.New("batch workers must not be negative")
	}
	if c.Batch.BatchSize <= 0 {
		return errors.New("batch size must be greater than 0")
	}
	return nil
}
