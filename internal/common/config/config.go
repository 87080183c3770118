package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/pkg/helper"
	"github.com/xint-dev/xint/pkg/trace"
)

// DefaultConfigFile is looked up when --conf is not given
const DefaultConfigFile = "xint.yaml"

type (
	// XintConfig is the root configuration of the xint server
	XintConfig struct {
		Logger      LoggerConfig      `yaml:"logger" toml:"logger"`
		Policy      PolicyConfig      `yaml:"policy" toml:"policy"`
		Budget      BudgetConfig      `yaml:"budget" toml:"budget"`
		Reliability ReliabilityConfig `yaml:"reliability" toml:"reliability"`
		PackageAPI  PackageAPIConfig  `yaml:"package_api" toml:"package_api"`
		HTTP        HTTPConfig        `yaml:"http" toml:"http"`
		Metrics     MetricsConfig     `yaml:"metrics" toml:"metrics"`
		Tracing     trace.Config      `yaml:"tracing" toml:"tracing"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level" toml:"level"`             // debug, info, warn, error
		Format     string `yaml:"format" toml:"format"`           // json, console
		Output     string `yaml:"output" toml:"output"`           // stderr, file
		FilePath   string `yaml:"file_path" toml:"file_path"`     // path to log file when output is file
		MaxSize    int    `yaml:"max_size" toml:"max_size"`       // max size of log file in MB
		MaxBackups int    `yaml:"max_backups" toml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age" toml:"max_age"`         // max age of backup files in days
		Compress   bool   `yaml:"compress" toml:"compress"`       // whether to compress backup files
		Color      bool   `yaml:"color" toml:"color"`             // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace" toml:"stacktrace"`   // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone" toml:"time_zone"`     // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format" toml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}

	// PolicyConfig holds the default operating mode
	PolicyConfig struct {
		Mode string `yaml:"mode" toml:"mode"` // read_only, engagement, moderation
	}

	// BudgetConfig configures the daily spend guard
	BudgetConfig struct {
		Enforce       bool                `yaml:"enforce" toml:"enforce"`
		DailyLimitUSD float64             `yaml:"daily_limit_usd" toml:"daily_limit_usd"`
		Storage       BudgetStorageConfig `yaml:"storage" toml:"storage"`
	}

	// BudgetStorageConfig selects where spend entries live
	BudgetStorageConfig struct {
		Type     string            `yaml:"type" toml:"type"` // file, redis or db
		File     FileStorageConfig `yaml:"file" toml:"file"`
		Redis    RedisConfig       `yaml:"redis" toml:"redis"`
		Database DatabaseConfig    `yaml:"database" toml:"database"`
	}

	FileStorageConfig struct {
		Path string `yaml:"path" toml:"path"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr" toml:"addr"`
		Username string `yaml:"username" toml:"username"`
		Password string `yaml:"password" toml:"password"`
		DB       int    `yaml:"db" toml:"db"`
		Prefix   string `yaml:"prefix" toml:"prefix"`
	}

	// ReliabilityConfig configures the command result store
	ReliabilityConfig struct {
		Enabled bool   `yaml:"enabled" toml:"enabled"`
		Path    string `yaml:"path" toml:"path"`
	}

	// PackageAPIConfig holds transport settings of the package API client.
	// Endpoint and credentials are runtime settings, see Settings.
	PackageAPIConfig struct {
		Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	}

	// HTTPConfig enables the HTTP transport next to stdio
	HTTPConfig struct {
		Enabled         bool          `yaml:"enabled" toml:"enabled"`
		Addr            string        `yaml:"addr" toml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	}

	MetricsConfig struct {
		Namespace string    `yaml:"namespace" toml:"namespace"`
		Buckets   []float64 `yaml:"buckets" toml:"buckets"`
	}
)

// Default returns the configuration used when no file is present
func Default() *XintConfig {
	return &XintConfig{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Policy: PolicyConfig{Mode: cnst.PolicyReadOnly.String()},
		Budget: BudgetConfig{
			Enforce:       true,
			DailyLimitUSD: cnst.DefaultDailyBudgetUSD,
			Storage: BudgetStorageConfig{
				Type: "file",
				File: FileStorageConfig{Path: filepath.Join(cnst.DefaultDataDir, "costs.json")},
				Redis: RedisConfig{
					Addr:   "localhost:6379",
					Prefix: "xint",
				},
				Database: DatabaseConfig{
					Type:   "sqlite",
					DBName: filepath.Join(cnst.DefaultDataDir, "xint.db"),
				},
			},
		},
		Reliability: ReliabilityConfig{
			Enabled: true,
			Path:    filepath.Join(cnst.DefaultDataDir, "reliability.json"),
		},
		PackageAPI: PackageAPIConfig{Timeout: 30 * time.Second},
		HTTP: HTTPConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{Namespace: cnst.AppName},
		Tracing: trace.Config{
			ServiceName: cnst.AppName,
			SamplerRate: 1,
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file with environment
// variable support. Values missing from the file keep their defaults.
func LoadConfig(filename string) (*XintConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := Default()
	if filename == "" {
		filename = DefaultConfigFile
	}
	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	if strings.EqualFold(filepath.Ext(cfgPath), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, cfgPath, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cfgPath, fmt.Errorf("parse %s: %w", cfgPath, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, cfgPath, err
	}
	return cfg, cfgPath, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to Default when
// the file does not exist
func LoadConfigOrDefault(filename string) (*XintConfig, string, error) {
	cfg, cfgPath, err := LoadConfig(filename)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.normalize()
		return cfg, "", nil
	}
	return cfg, cfgPath, err
}

// Validate checks values that cannot be fixed by defaults
func (c *XintConfig) Validate() error {
	if _, err := cnst.ParsePolicyMode(c.Policy.Mode); err != nil {
		return err
	}
	switch c.Budget.Storage.Type {
	case "file", "redis", "db":
	default:
		return fmt.Errorf("budget storage: %w: %q", cnst.ErrUnknownStorageType, c.Budget.Storage.Type)
	}
	if c.Budget.DailyLimitUSD < 0 {
		return fmt.Errorf("budget.daily_limit_usd must not be negative, got %.2f", c.Budget.DailyLimitUSD)
	}
	return nil
}

func (c *XintConfig) normalize() {
	if c.Budget.Storage.Type == "" {
		c.Budget.Storage.Type = "file"
	}
	if c.PackageAPI.Timeout <= 0 {
		c.PackageAPI.Timeout = 30 * time.Second
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}
	c.Budget.Storage.File.Path = helper.ExpandHome(c.Budget.Storage.File.Path)
	c.Reliability.Path = helper.ExpandHome(c.Reliability.Path)
	c.Logger.FilePath = helper.ExpandHome(c.Logger.FilePath)
	if c.Budget.Storage.Database.Type == "sqlite" {
		c.Budget.Storage.Database.DBName = helper.ExpandHome(c.Budget.Storage.Database.DBName)
	}
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces environment variable placeholders in config content
func resolveEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := envPattern.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
