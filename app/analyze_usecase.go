package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/oopscan/domain"
)

// AnalyzeUseCase orchestrates the analysis workflow between the CLI, the
// analysis service and the output formatter
type AnalyzeUseCase struct {
	service    domain.AnalysisService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(service domain.AnalysisService, formatter domain.OutputFormatter) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute runs the analysis and writes the formatted report
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	report, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}

	if err := uc.writeReport(report, req); err != nil {
		return nil, err
	}
	return report, nil
}

// ExecuteSource runs the analysis over an in-memory source string
func (uc *AnalyzeUseCase) ExecuteSource(ctx context.Context, filename string, source []byte, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if req.OutputFormat == "" {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("no output format specified"))
	}

	report, err := uc.service.AnalyzeSource(ctx, filename, source, req)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}

	if err := uc.writeReport(report, req); err != nil {
		return nil, err
	}
	return report, nil
}

// writeReport writes the report to the configured destination. An output
// path wins over the request writer; the default is stdout.
func (uc *AnalyzeUseCase) writeReport(report *domain.AnalysisReport, req domain.AnalysisRequest) error {
	var writer io.Writer = os.Stdout
	if req.OutputWriter != nil {
		writer = req.OutputWriter
	}

	if req.OutputPath != "" {
		file, err := os.Create(req.OutputPath)
		if err != nil {
			return domain.NewOutputError("failed to create output file", err)
		}
		defer file.Close()
		writer = file
	}

	if err := uc.formatter.Write(report, req.OutputFormat, writer); err != nil {
		return domain.NewOutputError("failed to write report", err)
	}
	return nil
}

// validateRequest validates the analysis request
func (uc *AnalyzeUseCase) validateRequest(req domain.AnalysisRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputFormat == "" {
		return fmt.Errorf("no output format specified")
	}
	for _, p := range req.Paths {
		if !uc.fileHelper.PathExists(p) {
			continue
		}
		if isDir, err := uc.fileHelper.IsDirectory(p); err == nil && !isDir {
			if !uc.fileHelper.IsValidPythonFile(p) {
				return fmt.Errorf("not a Python file: %s", p)
			}
		}
	}
	return nil
}

// AnalyzeUseCaseBuilder provides a builder pattern for creating AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	service    domain.AnalysisService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithService sets the analysis service
func (b *AnalyzeUseCaseBuilder) WithService(service domain.AnalysisService) *AnalyzeUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *AnalyzeUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *AnalyzeUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithFileHelper sets the file helper
func (b *AnalyzeUseCaseBuilder) WithFileHelper(fh *FileHelper) *AnalyzeUseCaseBuilder {
	b.fileHelper = fh
	return b
}

// Build creates the AnalyzeUseCase with the configured dependencies
func (b *AnalyzeUseCaseBuilder) Build() (*AnalyzeUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := &AnalyzeUseCase{
		service:    b.service,
		formatter:  b.formatter,
		fileHelper: b.fileHelper,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	return uc, nil
}
