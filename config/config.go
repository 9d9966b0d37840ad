/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads process configuration for the registration backend.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cerrors "github.com/suparena/cardreg/errors"
)

// FileEnv names the environment variable holding the optional YAML file.
const FileEnv = "CARDREG_CONFIG"

type Config struct {
	LogLevel     string             `yaml:"log_level" env:"CARDREG_LOG_LEVEL"`
	AWS          AWSConfig          `yaml:"aws"`
	Tracking     TrackingConfig     `yaml:"tracking"`
	Search       SearchConfig       `yaml:"search"`
	Registration RegistrationConfig `yaml:"registration"`
}

// AWSConfig selects the DynamoDB table registrations are stored in. Empty
// keys fall back to the SDK's default credential chain.
type AWSConfig struct {
	AccessKey string `yaml:"access_key" env:"AWS_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"AWS_SECRET_KEY"`
	Region    string `yaml:"region" env:"AWS_REGION"`
	Table     string `yaml:"table" env:"AWS_DDB_TABLE"`
}

type TrackingConfig struct {
	CacheSize int           `yaml:"cache_size" env:"CARDREG_LOOKUP_CACHE_SIZE"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CARDREG_LOOKUP_CACHE_TTL"`
}

// SearchConfig locates search documents. An empty Table shares the AWS
// table; an empty MappingFile uses the built-in patron mapping.
type SearchConfig struct {
	Table       string `yaml:"table" env:"CARDREG_SEARCH_TABLE"`
	Index       string `yaml:"index" env:"CARDREG_SEARCH_INDEX"`
	MappingFile string `yaml:"mapping_file" env:"CARDREG_SEARCH_MAPPING"`
}

type RegistrationConfig struct {
	DefaultPatronType int    `yaml:"default_patron_type" env:"CARDREG_DEFAULT_PATRON_TYPE"`
	Location          string `yaml:"location" env:"CARDREG_LOCATION"`
}

// Default returns the configuration used before any source is applied.
func Default() Config {
	return Config{
		LogLevel: "info",
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Tracking: TrackingConfig{
			CacheSize: 1024,
			CacheTTL:  5 * time.Minute,
		},
		Search: SearchConfig{
			Index: "patron",
		},
		Registration: RegistrationConfig{
			DefaultPatronType: 15,
			Location:          "unknown",
		},
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file named by CARDREG_CONFIG, and the environment. The dotenv
// files in paths (".env" when none are given) are loaded into the
// environment first; missing files are ignored.
func Load(paths ...string) (*Config, error) {
	if err := loadDotenv(paths); err != nil {
		return nil, err
	}

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if cfg.Search.Table == "" {
		cfg.Search.Table = cfg.AWS.Table
	}
	return &cfg, nil
}

func loadDotenv(paths []string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AWS.Region) == "" {
		return cerrors.NewValidationError("aws.region", "required")
	}
	if strings.TrimSpace(c.AWS.Table) == "" {
		return cerrors.NewValidationError("aws.table", "required")
	}
	if (c.AWS.AccessKey == "") != (c.AWS.SecretKey == "") {
		return cerrors.NewValidationError("aws.secret_key", "access key and secret key must be set together")
	}
	if c.Search.Index == "" {
		return cerrors.NewValidationError("search.index", "required")
	}
	if c.Tracking.CacheSize < 0 {
		return cerrors.NewValidationError("tracking.cache_size", "must not be negative")
	}
	if c.Registration.DefaultPatronType < 0 {
		return cerrors.NewValidationError("registration.default_patron_type", "must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return cerrors.NewValidationError("log_level", err.Error())
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	level, _ := c.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
