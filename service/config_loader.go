package service

import (
	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.AnalysisRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	req := c.convertToRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// LoadDefaultConfig loads the default configuration, checking for a
// discoverable config file first
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.AnalysisRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err != nil {
		// Fall back to hardcoded default configuration
		cfg = config.DefaultConfig()
	}
	return c.convertToRequest(cfg)
}

// MergeConfig merges CLI flags with configuration file values. Paths and
// non-empty overrides win over the base.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.AnalysisRequest, override *domain.AnalysisRequest) *domain.AnalysisRequest {
	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if len(override.SelectRules) > 0 {
		merged.SelectRules = override.SelectRules
	}
	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}
	if override.NoProgress {
		merged.NoProgress = true
	}
	if override.Verbose {
		merged.Verbose = true
	}

	return &merged
}

// convertToRequest maps a Config onto an AnalysisRequest
func (c *ConfigurationLoaderImpl) convertToRequest(cfg *config.Config) *domain.AnalysisRequest {
	return &domain.AnalysisRequest{
		// Paths are set by the caller, not from config
		Paths:           []string{},
		OutputFormat:    domain.OutputFormat(cfg.OutputFormat),
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
	}
}
