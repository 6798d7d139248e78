package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/oopscan/domain"
)

func TestConfigLoaderLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oopscan.json")
	content := `{"output_format": "yaml", "include_patterns": ["*.py"], "exclude_patterns": ["**/vendor/**"]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewConfigurationLoader()
	req, err := loader.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if req.OutputFormat != domain.OutputFormatYAML {
		t.Errorf("OutputFormat = %s", req.OutputFormat)
	}
	if len(req.ExcludePatterns) != 1 || req.ExcludePatterns[0] != "**/vendor/**" {
		t.Errorf("ExcludePatterns = %v", req.ExcludePatterns)
	}
	if req.ConfigPath != path {
		t.Errorf("ConfigPath = %s", req.ConfigPath)
	}
}

func TestConfigLoaderLoadConfigMissing(t *testing.T) {
	loader := NewConfigurationLoader()
	if _, err := loader.LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConfigLoaderDefaults(t *testing.T) {
	loader := NewConfigurationLoader()
	req := loader.LoadDefaultConfig()

	if req.OutputFormat != domain.OutputFormatJSON {
		t.Errorf("OutputFormat = %s", req.OutputFormat)
	}
	if len(req.IncludePatterns) == 0 || req.IncludePatterns[0] != "*.py" {
		t.Errorf("IncludePatterns = %v", req.IncludePatterns)
	}
}

func TestConfigLoaderMergeConfig(t *testing.T) {
	loader := NewConfigurationLoader()

	base := &domain.AnalysisRequest{
		OutputFormat:    domain.OutputFormatJSON,
		IncludePatterns: []string{"*.py"},
		ExcludePatterns: []string{"**/tests/**"},
	}
	override := &domain.AnalysisRequest{
		Paths:        []string{"src"},
		OutputFormat: domain.OutputFormatText,
		NoProgress:   true,
	}

	merged := loader.MergeConfig(base, override)

	if merged.OutputFormat != domain.OutputFormatText {
		t.Errorf("override format should win, got %s", merged.OutputFormat)
	}
	if len(merged.Paths) != 1 || merged.Paths[0] != "src" {
		t.Errorf("Paths = %v", merged.Paths)
	}
	if !merged.NoProgress {
		t.Error("NoProgress should be sticky")
	}
	// Fields the override leaves empty keep the base values
	if len(merged.ExcludePatterns) != 1 || merged.ExcludePatterns[0] != "**/tests/**" {
		t.Errorf("ExcludePatterns = %v", merged.ExcludePatterns)
	}
}

func TestConfigLoaderMergeDoesNotMutateBase(t *testing.T) {
	loader := NewConfigurationLoader()

	base := &domain.AnalysisRequest{OutputFormat: domain.OutputFormatJSON}
	override := &domain.AnalysisRequest{OutputFormat: domain.OutputFormatHTML}

	loader.MergeConfig(base, override)
	if base.OutputFormat != domain.OutputFormatJSON {
		t.Errorf("base mutated: %s", base.OutputFormat)
	}
}
