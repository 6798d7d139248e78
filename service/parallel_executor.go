package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/oopscan/internal/analyzer"
	"github.com/ludo-technologies/oopscan/internal/parser"
	"github.com/ludo-technologies/oopscan/internal/safety"
)

// fileOutcome is the result of preparing one file for analysis. Exactly one
// of parsed or errType is set; both empty means the run was canceled before
// the file was reached.
type fileOutcome struct {
	path    string
	parsed  *analyzer.ParsedFile
	errType string
	errMsg  string
}

// ParallelExecutor parses source files with bounded concurrency. Parsing is
// CPU-bound and every file gets its own parser instance, so files can be
// processed independently.
type ParallelExecutor struct {
	maxConcurrency int
}

// NewParallelExecutor creates an executor sized to the available CPUs
func NewParallelExecutor() *ParallelExecutor {
	return &ParallelExecutor{maxConcurrency: runtime.NumCPU()}
}

// NewParallelExecutorWithConcurrency creates an executor with an explicit
// concurrency limit
func NewParallelExecutorWithConcurrency(n int) *ParallelExecutor {
	if n < 1 {
		n = 1
	}
	return &ParallelExecutor{maxConcurrency: n}
}

// ParseFiles validates, reads and parses the given files concurrently.
// Outcomes come back in input order regardless of scheduling, so reports
// built from them stay deterministic. Per-file failures are captured in the
// outcome rather than aborting the batch. onDone, when non-nil, is called
// from worker goroutines as each file finishes.
func (e *ParallelExecutor) ParseFiles(ctx context.Context, validator *safety.Validator, files []string, onDone func(path string)) []fileOutcome {
	outcomes := make([]fileOutcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i, file := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i] = fileOutcome{path: file}
				return nil
			}
			outcomes[i] = parseFileOutcome(validator, file)
			if onDone != nil {
				onDone(file)
			}
			return nil
		})
	}

	// Workers never return errors; failures live in the outcomes
	_ = g.Wait()
	return outcomes
}

// parseFileOutcome validates, reads and parses a single file
func parseFileOutcome(validator *safety.Validator, filePath string) fileOutcome {
	out := fileOutcome{path: filePath}

	if sr := validator.ValidateFilePath(filePath); !sr.IsSafe {
		out.errType = errTypeValidation
		out.errMsg = strings.Join(sr.Issues, "; ")
		return out
	}

	source, err := validator.ReadFile(filePath)
	if err != nil {
		out.errType = errTypeRead
		out.errMsg = fmt.Sprintf("Failed to read file: %v", err)
		return out
	}

	tree, err := parser.ParseSource(filePath, source)
	if err != nil {
		out.errType = errTypeParse
		out.errMsg = fmt.Sprintf("Failed to parse file: %v", err)
		return out
	}

	out.parsed = &analyzer.ParsedFile{Tree: tree, Source: source, Path: filePath}
	return out
}
