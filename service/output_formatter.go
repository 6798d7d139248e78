package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/oopscan/domain"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Format formats the report in the specified format
func (f *OutputFormatterImpl) Format(report *domain.AnalysisReport, format domain.OutputFormat) (string, error) {
	var sb strings.Builder
	if err := f.Write(report, format, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write writes the formatted report to the writer
func (f *OutputFormatterImpl) Write(report *domain.AnalysisReport, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		return f.writeYAML(report, writer)
	case domain.OutputFormatText:
		return f.writeText(report, writer)
	case domain.OutputFormatHTML:
		return NewHTMLFormatter().Write(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeYAML writes the report as YAML
func (f *OutputFormatterImpl) writeYAML(report *domain.AnalysisReport, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}

// writeText writes the report as colored plain text
func (f *OutputFormatterImpl) writeText(report *domain.AnalysisReport, writer io.Writer) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintf(writer, "\n=== OOP Design Analysis ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Files analyzed: %d\n\n", len(report.FilesAnalyzed))

	ruleNames := make([]string, 0, len(report.Results))
	for name := range report.Results {
		ruleNames = append(ruleNames, name)
	}
	sort.Strings(ruleNames)

	for _, name := range ruleNames {
		result := report.Results[name]
		if result == nil || result.ViolationCount == 0 {
			continue
		}
		bold.Fprintf(writer, "%s (%d)\n", name, result.ViolationCount)
		for _, v := range result.Violations {
			fmt.Fprintf(writer, "  %s:%d:%d %s %s\n",
				v.FilePath, v.Line, v.Column, severityTag(v.Severity), v.Message)
			if v.Suggestion != "" {
				dim.Fprintf(writer, "    -> %s\n", v.Suggestion)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	bold.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Total violations: %d\n", report.TotalViolations)
	fmt.Fprintf(writer, "  Errors: %d\n", report.ViolationsBySeverity[domain.SeverityError])
	fmt.Fprintf(writer, "  Warnings: %d\n", report.ViolationsBySeverity[domain.SeverityWarning])
	fmt.Fprintf(writer, "  Info: %d\n", report.ViolationsBySeverity[domain.SeverityInfo])

	if len(report.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range report.Errors {
			if e.FilePath != "" {
				fmt.Fprintf(writer, "  - [%s] %s (%s)\n", e.Type, e.Message, e.FilePath)
			} else {
				fmt.Fprintf(writer, "  - [%s] %s\n", e.Type, e.Message)
			}
		}
	}

	if report.TotalViolations == 0 && len(report.Errors) == 0 {
		fmt.Fprintf(writer, "\nNo design violations found.\n")
	}

	return nil
}

// severityTag renders a colored severity marker for text output
func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return color.RedString("[error]")
	case domain.SeverityWarning:
		return color.YellowString("[warning]")
	case domain.SeverityInfo:
		return color.CyanString("[info]")
	}
	return fmt.Sprintf("[%s]", s)
}
