package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/oopscan/app"
	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/analyzer"
	"github.com/ludo-technologies/oopscan/service"
)

// ExitError carries an explicit process exit code out of a command
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

var (
	outputFormat    string
	jsonOutput      bool
	htmlOutput      bool
	outputPath      string
	configPath      string
	selectRules     []string
	includePatterns []string
	excludePatterns []string
	listRules       bool
	noProgress      bool
	verboseOutput   bool
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze Python files for OOP design problems",
		Long: `Analyze Python files, directories or packages for OOP design problems.

Exit codes:
  0 - No violations found
  1 - Violations found
  2 - Analysis errors (unreadable files, syntax errors, ...)

Examples:
  oopscan analyze src/
  oopscan analyze --select encapsulation,coupling src/
  oopscan analyze --json src/
  oopscan analyze --html -o report.html src/`,
		RunE:          runAnalyze,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text",
		"Output format: text, json, yaml, html")
	cmd.Flags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().BoolVar(&htmlOutput, "html", false,
		"Output results as HTML (shorthand for --format html)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Output file path (default: oopscan-report.html for HTML)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringSliceVarP(&selectRules, "select", "s", nil,
		"Rules to run (comma-separated), default: all enabled rules")
	cmd.Flags().StringSliceVar(&includePatterns, "include", nil,
		"Include patterns for file names (default: *.py)")
	cmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil,
		"Exclude patterns for paths relative to the analysis root")
	cmd.Flags().BoolVar(&listRules, "list-rules", false,
		"List available rules and exit")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"Disable progress bars")
	cmd.Flags().BoolVarP(&verboseOutput, "verbose", "v", false,
		"Enable debug logging")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if listRules {
		printRules()
		return nil
	}

	if len(args) == 0 {
		return &ExitError{Code: 2, Message: "no paths specified"}
	}

	format, err := resolveFormat()
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	req := domain.AnalysisRequest{
		Paths:           args,
		OutputFormat:    format,
		OutputPath:      outputPath,
		SelectRules:     selectRules,
		IncludePatterns: includePatterns,
		ExcludePatterns: excludePatterns,
		ConfigPath:      configPath,
		NoProgress:      noProgress || format == domain.OutputFormatJSON,
		Verbose:         verboseOutput,
	}
	if format == domain.OutputFormatHTML && req.OutputPath == "" {
		req.OutputPath = "oopscan-report.html"
	}

	useCase, err := app.NewAnalyzeUseCaseBuilder().
		WithService(service.NewAnalysisService()).
		WithFormatter(service.NewOutputFormatter()).
		Build()
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	report, err := useCase.Execute(context.Background(), req)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if format == domain.OutputFormatHTML {
		if absPath, absErr := filepath.Abs(req.OutputPath); absErr == nil {
			fmt.Printf("HTML report saved to: %s\n", absPath)
		}
	}

	// Errors dominate violations in the exit code
	if report.HasErrors() {
		return &ExitError{Code: 2}
	}
	if report.HasViolations() {
		return &ExitError{Code: 1}
	}
	return nil
}

// resolveFormat combines the --format flag with its shorthands
func resolveFormat() (domain.OutputFormat, error) {
	if jsonOutput {
		return domain.OutputFormatJSON, nil
	}
	if htmlOutput {
		return domain.OutputFormatHTML, nil
	}
	switch outputFormat {
	case "text":
		return domain.OutputFormatText, nil
	case "json":
		return domain.OutputFormatJSON, nil
	case "yaml":
		return domain.OutputFormatYAML, nil
	case "html":
		return domain.OutputFormatHTML, nil
	}
	return "", fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, html)", outputFormat)
}

func printRules() {
	fmt.Println("Available rules:")
	for _, info := range analyzer.AllRules() {
		fmt.Printf("  %-22s [%s] %s\n", info.Name, info.Severity, info.Description)
	}
}
