package app

import (
	"os"
	"path/filepath"
	"strings"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// IsValidPythonFile checks if a path names a Python source file
func (h *FileHelper) IsValidPythonFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".py"
}

// FileExists checks if a path exists and is a regular file
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// PathExists checks if a path exists (file or directory)
func (h *FileHelper) PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory checks if a path is a directory
func (h *FileHelper) IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// IsPythonPackage checks if a directory is a Python package
func (h *FileHelper) IsPythonPackage(path string) bool {
	info, err := os.Stat(filepath.Join(path, "__init__.py"))
	return err == nil && !info.IsDir()
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
