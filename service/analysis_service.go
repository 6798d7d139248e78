package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sirupsen/logrus"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/analyzer"
	"github.com/ludo-technologies/oopscan/internal/config"
	"github.com/ludo-technologies/oopscan/internal/parser"
	"github.com/ludo-technologies/oopscan/internal/safety"
)

// Error record types used in analysis reports
const (
	errTypePath       = "path"
	errTypeValidation = "validation"
	errTypeRead       = "read"
	errTypeParse      = "parse"
	errTypeRule       = "rule"
)

// AnalysisServiceImpl implements the AnalysisService interface. Directory
// targets are parsed concurrently; rules run sequentially over the parsed
// files. Anticipated failures (missing files, syntax errors, rule crashes)
// become report error records instead of aborting the run.
type AnalysisServiceImpl struct {
	logger *logrus.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService() *AnalysisServiceImpl {
	return &AnalysisServiceImpl{logger: logrus.StandardLogger()}
}

// analysisRun holds everything resolved for one analysis invocation
type analysisRun struct {
	cfg       *config.Config
	rules     []analyzer.Rule
	validator *safety.Validator
	report    *domain.AnalysisReport
	progress  domain.ProgressManager
}

// Analyze runs the configured rules over the request's paths. Each path is
// auto-detected as a file, a package (directory with __init__.py) or a plain
// directory.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewValidationError("no paths to analyze")
	}

	run, err := s.prepare(req, req.Paths[0])
	if err != nil {
		return nil, err
	}
	defer run.progress.Close()

	var parsed []*analyzer.ParsedFile
	for _, target := range req.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, statErr := os.Stat(target)
		if statErr != nil {
			run.report.AddError(errTypePath, fmt.Sprintf("Path does not exist: %s", target), target, "")
			continue
		}

		if !info.IsDir() {
			if pf := s.parseOneFile(run, target); pf != nil {
				parsed = append(parsed, pf)
			}
			continue
		}
		parsed = append(parsed, s.parseDirectory(ctx, run, target)...)
	}

	s.runRules(ctx, run, parsed)
	return run.report, nil
}

// AnalyzeSource runs the configured rules over an in-memory source string
func (s *AnalysisServiceImpl) AnalyzeSource(ctx context.Context, filename string, source []byte, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	if filename == "" {
		filename = "<string>"
	}

	run, err := s.prepare(req, "")
	if err != nil {
		return nil, err
	}
	defer run.progress.Close()

	tree, parseErr := parser.ParseSource(filename, source)
	if parseErr != nil {
		run.report.AddError(errTypeParse, fmt.Sprintf("Failed to parse source: %v", parseErr), filename, "")
		return run.report, nil
	}

	parsed := []*analyzer.ParsedFile{{Tree: tree, Source: source, Path: filename}}
	s.runRules(ctx, run, parsed)
	return run.report, nil
}

// AnalyzeFile analyzes a single Python file
func (s *AnalysisServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	run, err := s.prepare(req, filePath)
	if err != nil {
		return nil, err
	}
	defer run.progress.Close()

	var parsed []*analyzer.ParsedFile
	if pf := s.parseOneFile(run, filePath); pf != nil {
		parsed = append(parsed, pf)
	}
	s.runRules(ctx, run, parsed)
	return run.report, nil
}

// AnalyzeDirectory analyzes all Python files under a directory
func (s *AnalysisServiceImpl) AnalyzeDirectory(ctx context.Context, dirPath string, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	run, err := s.prepare(req, dirPath)
	if err != nil {
		return nil, err
	}
	defer run.progress.Close()

	parsed := s.parseDirectory(ctx, run, dirPath)
	s.runRules(ctx, run, parsed)
	return run.report, nil
}

// AnalyzeModule analyzes a Python package (a directory with __init__.py)
func (s *AnalysisServiceImpl) AnalyzeModule(ctx context.Context, modulePath string, req domain.AnalysisRequest) (*domain.AnalysisReport, error) {
	initFile := filepath.Join(modulePath, "__init__.py")
	if _, err := os.Stat(initFile); err != nil {
		run, prepErr := s.prepare(req, modulePath)
		if prepErr != nil {
			return nil, prepErr
		}
		defer run.progress.Close()
		run.report.AddError(errTypeValidation,
			fmt.Sprintf("Not a valid Python module (missing __init__.py): %s", modulePath), modulePath, "")
		return run.report, nil
	}
	return s.AnalyzeDirectory(ctx, modulePath, req)
}

// prepare loads configuration, builds the rule set and creates an empty
// report for one run
func (s *AnalysisServiceImpl) prepare(req domain.AnalysisRequest, target string) (*analysisRun, error) {
	if req.Verbose {
		s.logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadConfigWithTarget(req.ConfigPath, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	if len(req.IncludePatterns) > 0 {
		cfg.IncludePatterns = req.IncludePatterns
	}
	if len(req.ExcludePatterns) > 0 {
		cfg.ExcludePatterns = req.ExcludePatterns
	}

	if len(req.SelectRules) > 0 {
		for _, name := range req.SelectRules {
			if _, ok := analyzer.RuleByName(name); !ok {
				return nil, domain.NewInvalidInputError("unknown rule: "+name, nil)
			}
		}
		cfg.EnableOnly(req.SelectRules...)
	}

	rules, err := buildRules(cfg)
	if err != nil {
		return nil, err
	}

	report := domain.NewAnalysisReport()
	report.Config = configAsMap(cfg)

	return &analysisRun{
		cfg:       cfg,
		rules:     rules,
		validator: safety.NewValidator(nil, cfg.MaxFileSize),
		report:    report,
		progress:  NewProgressManager(!req.NoProgress),
	}, nil
}

// parseOneFile validates, reads and parses a single file, recording any
// failure in the report. Returns nil when the file could not be analyzed.
func (s *AnalysisServiceImpl) parseOneFile(run *analysisRun, filePath string) *analyzer.ParsedFile {
	return s.applyOutcome(run, parseFileOutcome(run.validator, filePath))
}

// applyOutcome records a file outcome in the report
func (s *AnalysisServiceImpl) applyOutcome(run *analysisRun, out fileOutcome) *analyzer.ParsedFile {
	if out.parsed != nil {
		run.report.FilesAnalyzed = append(run.report.FilesAnalyzed, out.path)
		return out.parsed
	}
	if out.errType != "" {
		run.report.AddError(out.errType, out.errMsg, out.path, "")
		s.logger.Debugf("skipped %s", out.path)
	}
	return nil
}

// parseDirectory collects, filters and parses the Python files under a
// directory, recording per-file failures in the report
func (s *AnalysisServiceImpl) parseDirectory(ctx context.Context, run *analysisRun, dirPath string) []*analyzer.ParsedFile {
	if sr := run.validator.ValidateDirectory(dirPath); !sr.IsSafe {
		run.report.AddError(errTypeValidation, strings.Join(sr.Issues, "; "), dirPath, "")
		return nil
	}

	files, err := run.validator.CollectPythonFiles(dirPath)
	if err != nil {
		run.report.AddError(errTypeRead, fmt.Sprintf("Failed to collect files: %v", err), dirPath, "")
		return nil
	}
	files = filterFiles(files, dirPath, run.cfg.IncludePatterns, run.cfg.ExcludePatterns)

	task := run.progress.StartTask("Parsing files", len(files))
	defer task.Complete()

	outcomes := NewParallelExecutor().ParseFiles(ctx, run.validator, files, func(path string) {
		task.Describe("Parsing " + filepath.Base(path))
		task.Increment(1)
	})

	var parsed []*analyzer.ParsedFile
	for _, out := range outcomes {
		if pf := s.applyOutcome(run, out); pf != nil {
			parsed = append(parsed, pf)
		}
	}
	return parsed
}

// runRules executes every enabled rule over the parsed files. A failing rule
// becomes an error record; the remaining rules still run.
func (s *AnalysisServiceImpl) runRules(ctx context.Context, run *analysisRun, parsed []*analyzer.ParsedFile) {
	task := run.progress.StartTask("Running rules", len(run.rules))
	defer task.Complete()

	for _, rule := range run.rules {
		if ctx.Err() != nil {
			return
		}
		task.Describe("Checking " + rule.Name())
		result, err := rule.AnalyzeMultiple(parsed)
		if err != nil {
			s.logger.WithError(err).Debugf("rule %s failed", rule.Name())
			run.report.AddError(errTypeRule, err.Error(), "", rule.Name())
		} else {
			run.report.AddResult(result)
		}
		task.Increment(1)
	}
}

// buildRules constructs the enabled rules with their configured options
func buildRules(cfg *config.Config) ([]analyzer.Rule, error) {
	var rules []analyzer.Rule
	for _, name := range cfg.EnabledRules() {
		rule, err := analyzer.NewRule(name, cfg.RuleOptions(name))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// filterFiles applies include/exclude patterns. Excludes match the path
// relative to the analysis root (gitignore-style globs); includes match the
// bare filename.
func filterFiles(files []string, root string, includes, excludes []string) []string {
	matcher := gitignore.CompileIgnoreLines(excludes...)

	var filtered []string
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			rel = file
		}
		rel = filepath.ToSlash(rel)

		if matcher.MatchesPath(rel) {
			continue
		}

		included := false
		for _, pattern := range includes {
			if ok, _ := path.Match(pattern, filepath.Base(file)); ok {
				included = true
				break
			}
		}
		if included {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// configAsMap converts the effective configuration into the report's config
// object
func configAsMap(cfg *config.Config) map[string]interface{} {
	data, err := json.Marshal(cfg)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
