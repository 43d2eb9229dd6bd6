package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PAYRECON_DATABASE_PATH for database.path.
const EnvPrefix = "PAYRECON"

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Tenants   TenantsConfig   `mapstructure:"tenants" yaml:"tenants"`
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference"`
	CSV       CSVConfig       `mapstructure:"csv" yaml:"csv"`
	Parsers   ParsersConfig   `mapstructure:"parsers" yaml:"parsers"`
	Matching  MatchingConfig  `mapstructure:"matching" yaml:"matching"`
	Review    ReviewConfig    `mapstructure:"review" yaml:"review"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// TenantsConfig points at the YAML tenant directory holding each tenant's
// collection account.
type TenantsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type ReferenceConfig struct {
	// DefaultStyle is used when neither the request nor the tenant account
	// decides the reference style: "qrr" or "scor".
	DefaultStyle string `mapstructure:"default_style" yaml:"default_style"`
}

type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

type ParsersConfig struct {
	CAMT struct {
		StrictValidation bool `mapstructure:"strict_validation" yaml:"strict_validation"`
	} `mapstructure:"camt" yaml:"camt"`
}

type MatchingConfig struct {
	DateWindowDays int `mapstructure:"date_window_days" yaml:"date_window_days"`
}

type ReviewConfig struct {
	MaxReferenceDistance int `mapstructure:"max_reference_distance" yaml:"max_reference_distance"`
}

type AIConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey         string `mapstructure:"api_key" yaml:"-"`
}

// InitializeConfig resolves configuration in increasing precedence:
// defaults, config file, environment.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile behaves like InitializeConfig but reads the given
// file instead of searching the default locations when path is not empty.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("payrecon")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.payrecon")
		v.AddConfigPath(".payrecon")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration obtained from defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "payrecon.db")
	v.SetDefault("tenants.file", "tenants.yaml")
	v.SetDefault("reference.default_style", "qrr")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("parsers.camt.strict_validation", false)

	v.SetDefault("matching.date_window_days", 1)
	v.SetDefault("review.max_reference_distance", 2)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.api_key", "")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if len([]rune(cfg.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", cfg.CSV.Delimiter)
	}
	switch cfg.Reference.DefaultStyle {
	case "qrr", "scor":
	default:
		return fmt.Errorf("reference.default_style must be 'qrr' or 'scor', got: %s", cfg.Reference.DefaultStyle)
	}
	if cfg.Matching.DateWindowDays < 0 || cfg.Matching.DateWindowDays > 31 {
		return fmt.Errorf("matching.date_window_days must be between 0 and 31, got: %d", cfg.Matching.DateWindowDays)
	}
	if cfg.Review.MaxReferenceDistance < 0 {
		return fmt.Errorf("review.max_reference_distance must not be negative, got: %d", cfg.Review.MaxReferenceDistance)
	}
	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if cfg.AI.TimeoutSeconds < 1 || cfg.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", cfg.AI.TimeoutSeconds)
		}
	}
	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}
