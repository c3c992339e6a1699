package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Fred    FredConfig    `mapstructure:"fred"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FredConfig holds FRED API connection and pagination settings
type FredConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// CallLimit is the page size requested from release/series
	CallLimit int `mapstructure:"call_limit"`
	// MaxPages caps pagination per release, 0 disables the cap
	MaxPages int `mapstructure:"max_pages"`
	// FollowUpBounds is "today" or "release"
	FollowUpBounds string `mapstructure:"followup_bounds"`
	// Concurrency bounds how many releases load at once
	Concurrency int `mapstructure:"concurrency"`
}

// FilterConfig contains filter definitions
type FilterConfig struct {
	DefaultExpression string            `mapstructure:"default_expression"`
	Presets           map[string]Preset `mapstructure:"presets"`
}

// Preset is a named filter expression
type Preset struct {
	Expression  string `mapstructure:"expression"`
	Description string `mapstructure:"description"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// PresetExpressions returns the preset expressions keyed by name
func (f FilterConfig) PresetExpressions() map[string]string {
	out := make(map[string]string, len(f.Presets))
	for name, p := range f.Presets {
		out[name] = p.Expression
	}
	return out
}
