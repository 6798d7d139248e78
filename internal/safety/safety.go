// Package safety gates everything the analyzer reads. Code is only ever
// parsed, never executed; this package validates paths, sizes and syntax
// before a file reaches the rules.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/ludo-technologies/oopscan/internal/parser"
)

// MaxFileSizeBytes is the default size limit for analyzed files
const MaxFileSizeBytes = 10 * 1024 * 1024

// Report is the outcome of one safety validation
type Report struct {
	IsSafe   bool     `json:"is_safe"`
	FilePath string   `json:"file_path"`
	Issues   []string `json:"issues"`
}

// Validator validates files and source before analysis
type Validator struct {
	fs          afero.Fs
	maxFileSize int64
}

// NewValidator creates a validator over the given filesystem. A zero
// maxFileSize selects the default limit.
func NewValidator(fs afero.Fs, maxFileSize int64) *Validator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSizeBytes
	}
	return &Validator{fs: fs, maxFileSize: maxFileSize}
}

// ValidateFilePath checks that a path points to a Python file the analyzer
// may read
func (v *Validator) ValidateFilePath(path string) Report {
	info, err := v.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return unsafe(path, fmt.Sprintf("File does not exist: %s", path))
		}
		return unsafe(path, fmt.Sprintf("Cannot access file: %v", err))
	}
	if info.IsDir() {
		return unsafe(path, fmt.Sprintf("Path is not a file: %s", path))
	}
	if filepath.Ext(path) != ".py" {
		return unsafe(path, fmt.Sprintf("File is not a Python file: %s", path))
	}
	if info.Size() > v.maxFileSize {
		return unsafe(path, fmt.Sprintf("File too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize))
	}
	return Report{IsSafe: true, FilePath: path, Issues: []string{}}
}

// ValidateDirectory checks that a path points to a readable directory
func (v *Validator) ValidateDirectory(path string) Report {
	info, err := v.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return unsafe(path, fmt.Sprintf("Directory does not exist: %s", path))
		}
		return unsafe(path, fmt.Sprintf("Cannot access directory: %v", err))
	}
	if !info.IsDir() {
		return unsafe(path, fmt.Sprintf("Path is not a directory: %s", path))
	}
	return Report{IsSafe: true, FilePath: path, Issues: []string{}}
}

// ValidateSource checks that source parses. The source is only parsed into
// an AST, never executed.
func (v *Validator) ValidateSource(source []byte, filePath string) Report {
	if _, err := parser.ParseSource(filePath, source); err != nil {
		return unsafe(filePath, fmt.Sprintf("Syntax error in source: %v", err))
	}
	return Report{IsSafe: true, FilePath: filePath, Issues: []string{}}
}

// ParseSafely parses source into an AST, returning nil when parsing fails
func (v *Validator) ParseSafely(source []byte, filePath string) *parser.Node {
	tree, err := parser.ParseSource(filePath, source)
	if err != nil {
		return nil
	}
	return tree
}

// CollectPythonFiles gathers Python files under a path. A file path yields
// itself (when it is a .py file); a directory is walked recursively.
func (v *Validator) CollectPythonFiles(path string) ([]string, error) {
	info, err := v.fs.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if strings.HasSuffix(path, ".py") {
			return []string{path}, nil
		}
		return nil, nil
	}

	var files []string
	err = afero.Walk(v.fs, path, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !fi.IsDir() && strings.HasSuffix(p, ".py") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile reads a validated file from the underlying filesystem
func (v *Validator) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(v.fs, path)
}

func unsafe(path, issue string) Report {
	return Report{IsSafe: false, FilePath: path, Issues: []string{issue}}
}
