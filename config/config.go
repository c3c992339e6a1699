package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/s0up4200/fredstat/fred"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FREDSTAT_FRED_API_KEY
const EnvPrefix = "FREDSTAT"

// Load loads the configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".fredstat"))
		}

		v.AddConfigPath("/etc/fredstat/")
	}

	// A missing file is fine when the environment supplies the key
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// api_key has no default but must be known to viper for env binding
	v.SetDefault("fred.api_key", "")
	v.SetDefault("fred.url", fred.DefaultBaseURL)
	v.SetDefault("fred.timeout", fred.DefaultTimeout)
	v.SetDefault("fred.call_limit", fred.DefaultCallLimit)
	v.SetDefault("fred.max_pages", fred.DefaultMaxPages)
	v.SetDefault("fred.followup_bounds", "today")
	v.SetDefault("fred.concurrency", fred.DefaultConcurrency)

	v.SetDefault("filter.default_expression", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Fred.APIKey == "" || cfg.Fred.APIKey == "your-api-key-here" {
		return fmt.Errorf("fred.api_key is required")
	}

	if cfg.Fred.URL == "" {
		return fmt.Errorf("fred.url is required")
	}

	if cfg.Fred.Timeout < 0 {
		return fmt.Errorf("fred.timeout must not be negative")
	}

	if cfg.Fred.CallLimit <= 0 || cfg.Fred.CallLimit > fred.DefaultCallLimit {
		return fmt.Errorf("fred.call_limit must be between 1 and %d", fred.DefaultCallLimit)
	}

	if cfg.Fred.MaxPages < 0 {
		return fmt.Errorf("fred.max_pages must not be negative")
	}

	if _, err := fred.ParseFollowUpBounds(cfg.Fred.FollowUpBounds); err != nil {
		return fmt.Errorf("invalid fred.followup_bounds: %s (must be 'today' or 'release')", cfg.Fred.FollowUpBounds)
	}

	if cfg.Fred.Concurrency < 1 {
		return fmt.Errorf("fred.concurrency must be at least 1")
	}

	for name, p := range cfg.Filter.Presets {
		if strings.TrimSpace(p.Expression) == "" {
			return fmt.Errorf("filter.presets.%s has no expression", name)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
