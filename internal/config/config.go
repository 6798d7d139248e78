package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/oopscan/internal/analyzer"
)

// DefaultMaxFileSize is the largest file the analyzer will read
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultOutputFormat is used when no format is configured
const DefaultOutputFormat = "json"

// DefaultIncludePatterns selects Python sources
func DefaultIncludePatterns() []string {
	return []string{"*.py"}
}

// DefaultExcludePatterns skips test files
func DefaultExcludePatterns() []string {
	return []string{"**/test_*.py", "**/*_test.py", "**/tests/**"}
}

// RuleConfig is the configuration of a single rule
type RuleConfig struct {
	// Enabled controls whether the rule runs
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Severity is the reporting severity: error, warning, info
	Severity string `json:"severity" mapstructure:"severity" yaml:"severity"`

	// Options holds rule-specific thresholds and switches
	Options map[string]interface{} `json:"options" mapstructure:"options" yaml:"options"`
}

// Config is the analyzer configuration
type Config struct {
	// Rules maps rule names to their configurations
	Rules map[string]RuleConfig `json:"rules" mapstructure:"rules" yaml:"rules"`

	// OutputFormat is the default report format: text, json, yaml, html
	OutputFormat string `json:"output_format" mapstructure:"output_format" yaml:"output_format"`

	// IncludePatterns are glob patterns files must match to be analyzed
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns are glob patterns that exclude files from analysis
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// MaxFileSize is the maximum file size in bytes to analyze
	MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size" yaml:"max_file_size"`
}

// defaultRuleConfig is the configuration a rule gets when the config file
// does not mention it
func defaultRuleConfig() RuleConfig {
	return RuleConfig{
		Enabled:  true,
		Severity: "warning",
		Options:  map[string]interface{}{},
	}
}

// DefaultConfig returns the default configuration with all rules enabled
func DefaultConfig() *Config {
	rules := map[string]RuleConfig{}
	for _, info := range analyzer.AllRules() {
		rules[info.Name] = defaultRuleConfig()
	}
	return &Config{
		Rules:           rules,
		OutputFormat:    DefaultOutputFormat,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// MinimalConfig returns a configuration with only the essential rules
// enabled
func MinimalConfig() *Config {
	cfg := DefaultConfig()
	cfg.EnableOnly("encapsulation", "coupling")
	return cfg
}

// EnableOnly enables exactly the named rules and disables all others
func (c *Config) EnableOnly(names ...string) {
	wanted := map[string]bool{}
	for _, name := range names {
		wanted[name] = true
	}
	for _, info := range analyzer.AllRules() {
		rc := defaultRuleConfig()
		rc.Enabled = wanted[info.Name]
		c.Rules[info.Name] = rc
	}
}

// EnabledRules returns the enabled rule names in registry order
func (c *Config) EnabledRules() []string {
	var names []string
	for _, info := range analyzer.AllRules() {
		if rc, ok := c.Rules[info.Name]; ok && rc.Enabled {
			names = append(names, info.Name)
		}
	}
	return names
}

// IsRuleEnabled checks whether a rule is enabled
func (c *Config) IsRuleEnabled(name string) bool {
	rc, ok := c.Rules[name]
	return ok && rc.Enabled
}

// RuleOptions returns the option map of a rule
func (c *Config) RuleOptions(name string) analyzer.Options {
	if rc, ok := c.Rules[name]; ok && rc.Options != nil {
		return analyzer.Options(rc.Options)
	}
	return analyzer.Options{}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"html": true,
	}
	if !validFormats[c.OutputFormat] {
		return fmt.Errorf("invalid output_format '%s', must be one of: text, json, yaml, html", c.OutputFormat)
	}

	validSeverities := map[string]bool{
		"error":   true,
		"warning": true,
		"info":    true,
	}
	for name, rc := range c.Rules {
		if _, ok := analyzer.RuleByName(name); !ok {
			return fmt.Errorf("unknown rule '%s' in configuration", name)
		}
		if rc.Severity != "" && !validSeverities[rc.Severity] {
			return fmt.Errorf("invalid severity '%s' for rule '%s', must be one of: error, warning, info", rc.Severity, name)
		}
	}

	if len(c.IncludePatterns) == 0 {
		return fmt.Errorf("include_patterns cannot be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be > 0, got %d", c.MaxFileSize)
	}
	return nil
}

// LoadConfig loads configuration from file or returns the default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file near
// the target path when none is given explicitly
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per load avoids shared state
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if v.IsSet("output_format") {
		config.OutputFormat = v.GetString("output_format")
	}
	if v.IsSet("include_patterns") {
		config.IncludePatterns = v.GetStringSlice("include_patterns")
	}
	if v.IsSet("exclude_patterns") {
		config.ExcludePatterns = v.GetStringSlice("exclude_patterns")
	}
	if v.IsSet("max_file_size") {
		config.MaxFileSize = v.GetInt64("max_file_size")
	}
	if v.IsSet("rules") {
		applyRuleSettings(config, v.GetStringMap("rules"))
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyRuleSettings merges raw rule entries into the config. An entry may be
// a bare boolean (enable or disable with defaults) or a full object.
func applyRuleSettings(config *Config, raw map[string]interface{}) {
	for name, entry := range raw {
		switch value := entry.(type) {
		case bool:
			rc := defaultRuleConfig()
			rc.Enabled = value
			config.Rules[name] = rc
		case map[string]interface{}:
			rc := defaultRuleConfig()
			if enabled, ok := value["enabled"]; ok {
				rc.Enabled = cast.ToBool(enabled)
			}
			if severity, ok := value["severity"]; ok {
				rc.Severity = cast.ToString(severity)
			}
			if options, ok := value["options"]; ok {
				rc.Options = cast.ToStringMap(options)
			}
			config.Rules[name] = rc
		}
	}
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.Set("rules", config.Rules)
	v.Set("output_format", config.OutputFormat)
	v.Set("include_patterns", config.IncludePatterns)
	v.Set("exclude_patterns", config.ExcludePatterns)
	v.Set("max_file_size", config.MaxFileSize)

	return v.WriteConfig()
}

// searchConfigInDirectory searches for configuration files in one directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for configuration files in common locations,
// starting from the analyzed path and walking upward
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"oopscan.json",
		".oopscan.json",
		"oopscan.yaml",
		"oopscan.yml",
		".oopscan.yaml",
		".oopscan.yml",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}
				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "oopscan"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "oopscan")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("OOPSCAN_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}
