package domain

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatHTML OutputFormat = "html"
)

// Severity represents how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether the severity is one of the known levels
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Violation is a single design problem found in analyzed source code
type Violation struct {
	RuleName    string                 `json:"rule_name" yaml:"rule_name"`
	Message     string                 `json:"message" yaml:"message"`
	FilePath    string                 `json:"file_path" yaml:"file_path"`
	Line        int                    `json:"line" yaml:"line"`
	Column      int                    `json:"column" yaml:"column"`
	Severity    Severity               `json:"severity" yaml:"severity"`
	Suggestion  string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	CodeSnippet string                 `json:"code_snippet,omitempty" yaml:"code_snippet,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// String returns a compact one-line rendering of the violation
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s", v.FilePath, v.Line, v.Column, v.RuleName, v.Message)
}

// RuleResult holds the outcome of running one rule
type RuleResult struct {
	RuleName       string                 `json:"rule_name" yaml:"rule_name"`
	ViolationCount int                    `json:"violation_count" yaml:"violation_count"`
	Violations     []Violation            `json:"violations" yaml:"violations"`
	Summary        map[string]interface{} `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewRuleResult creates an empty result for a rule
func NewRuleResult(ruleName string) *RuleResult {
	return &RuleResult{
		RuleName:   ruleName,
		Violations: []Violation{},
	}
}

// Add appends a violation and keeps the count in sync
func (r *RuleResult) Add(v Violation) {
	r.Violations = append(r.Violations, v)
	r.ViolationCount = len(r.Violations)
}

// AnalysisError is a structured error record carried inside a report.
// Anticipated failures (unreadable files, rule crashes) are reported here
// instead of aborting the whole analysis.
type AnalysisError struct {
	Type     string `json:"type" yaml:"type"`
	Message  string `json:"message" yaml:"message"`
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Rule     string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// AnalysisReport is the complete outcome of one analysis run
type AnalysisReport struct {
	FilesAnalyzed        []string               `json:"files_analyzed" yaml:"files_analyzed"`
	TotalViolations      int                    `json:"total_violations" yaml:"total_violations"`
	ViolationsBySeverity map[Severity]int       `json:"violations_by_severity" yaml:"violations_by_severity"`
	GeneratedAt          time.Time              `json:"timestamp" yaml:"timestamp"`
	Config               map[string]interface{} `json:"config" yaml:"config"`
	Results              map[string]*RuleResult `json:"results" yaml:"results"`
	Errors               []AnalysisError        `json:"errors" yaml:"errors"`
}

// NewAnalysisReport creates an empty report with all severity buckets present
func NewAnalysisReport() *AnalysisReport {
	return &AnalysisReport{
		FilesAnalyzed: []string{},
		ViolationsBySeverity: map[Severity]int{
			SeverityError:   0,
			SeverityWarning: 0,
			SeverityInfo:    0,
		},
		GeneratedAt: time.Now(),
		Config:      map[string]interface{}{},
		Results:     map[string]*RuleResult{},
		Errors:      []AnalysisError{},
	}
}

// AddResult records a rule result and updates the violation tallies
func (r *AnalysisReport) AddResult(result *RuleResult) {
	if result == nil {
		return
	}
	r.Results[result.RuleName] = result
	for _, v := range result.Violations {
		r.TotalViolations++
		if v.Severity.Valid() {
			r.ViolationsBySeverity[v.Severity]++
		}
	}
}

// AddError records a structured error entry
func (r *AnalysisReport) AddError(errType, message, filePath, rule string) {
	r.Errors = append(r.Errors, AnalysisError{
		Type:     errType,
		Message:  message,
		FilePath: filePath,
		Rule:     rule,
	})
}

// HasViolations reports whether any rule produced violations
func (r *AnalysisReport) HasViolations() bool {
	return r.TotalViolations > 0
}

// HasErrors reports whether any error records were collected
func (r *AnalysisReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// AllViolations returns every violation across rules in rule-name order
func (r *AnalysisReport) AllViolations() []Violation {
	var all []Violation
	for _, name := range sortedRuleNames(r.Results) {
		all = append(all, r.Results[name].Violations...)
	}
	return all
}

func sortedRuleNames(results map[string]*RuleResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnalysisRequest carries everything needed to run one analysis
type AnalysisRequest struct {
	// Target paths (files, directories or package roots)
	Paths []string `json:"paths" yaml:"paths"`

	// Output configuration
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
	OutputPath   string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	OutputWriter io.Writer    `json:"-" yaml:"-"`

	// Rule selection: nil means all enabled rules
	SelectRules []string `json:"select_rules,omitempty" yaml:"select_rules,omitempty"`

	// File filtering
	IncludePatterns []string `json:"include_patterns,omitempty" yaml:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`

	// Configuration file path (empty means discover)
	ConfigPath string `json:"config_path,omitempty" yaml:"config_path,omitempty"`

	NoProgress bool `json:"no_progress,omitempty" yaml:"no_progress,omitempty"`
	Verbose    bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// AnalysisService runs the OOP design rules over Python sources
type AnalysisService interface {
	// Analyze runs the configured rules over the request's paths
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error)

	// AnalyzeSource runs the configured rules over an in-memory source string
	AnalyzeSource(ctx context.Context, filename string, source []byte, req AnalysisRequest) (*AnalysisReport, error)
}

// OutputFormatter formats analysis reports
type OutputFormatter interface {
	// Format formats the report in the specified format
	Format(report *AnalysisReport, format OutputFormat) (string, error)

	// Write writes the formatted report to the writer
	Write(report *AnalysisReport, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader loads analysis configuration from files
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified file
	LoadConfig(path string) (*AnalysisRequest, error)

	// LoadDefaultConfig returns the default configuration
	LoadDefaultConfig() *AnalysisRequest

	// MergeConfig merges a loaded config with request overrides
	MergeConfig(base *AnalysisRequest, override *AnalysisRequest) *AnalysisRequest
}
