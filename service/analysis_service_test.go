package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/oopscan/domain"
)

func quietRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{NoProgress: true}
}

func TestAnalyzeSourceCleanCode(t *testing.T) {
	svc := NewAnalysisService()

	source := []byte("def add(a, b):\n    return a + b\n")
	report, err := svc.AnalyzeSource(context.Background(), "", source, quietRequest())
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}

	if report.HasViolations() {
		t.Errorf("clean code produced %d violations", report.TotalViolations)
	}
	if report.HasErrors() {
		t.Errorf("unexpected error records: %+v", report.Errors)
	}
	if len(report.Results) == 0 {
		t.Error("expected results for every enabled rule")
	}
}

func TestAnalyzeSourceViolations(t *testing.T) {
	svc := NewAnalysisService()

	source := []byte("def f(u):\n    print(u.name)\n")
	report, err := svc.AnalyzeSource(context.Background(), "", source, quietRequest())
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}

	if !report.HasViolations() {
		t.Fatal("expected violations for direct attribute access")
	}
	result := report.Results["encapsulation"]
	if result == nil || result.ViolationCount == 0 {
		t.Fatal("expected an encapsulation violation")
	}
	// Anonymous sources get a synthetic filename
	if result.Violations[0].FilePath != "<string>" {
		t.Errorf("FilePath = %s", result.Violations[0].FilePath)
	}
}

func TestAnalyzeSourceSyntaxError(t *testing.T) {
	svc := NewAnalysisService()

	report, err := svc.AnalyzeSource(context.Background(), "broken.py", []byte("def broken(:\n"), quietRequest())
	if err != nil {
		t.Fatalf("syntax errors should be reported, not returned: %v", err)
	}

	if !report.HasErrors() {
		t.Fatal("expected a parse error record")
	}
	rec := report.Errors[0]
	if rec.Type != "parse" || rec.FilePath != "broken.py" {
		t.Errorf("unexpected error record: %+v", rec)
	}
	if report.HasViolations() {
		t.Error("unparseable source must not yield violations")
	}
}

func TestAnalyzeSourceSelectRules(t *testing.T) {
	svc := NewAnalysisService()
	req := quietRequest()
	req.SelectRules = []string{"null_object"}

	source := []byte("def f(u):\n    print(u.name)\n    return None\n")
	report, err := svc.AnalyzeSource(context.Background(), "", source, req)
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}

	if len(report.Results) != 1 {
		t.Fatalf("expected only the selected rule to run, got %d results", len(report.Results))
	}
	if report.Results["null_object"] == nil {
		t.Error("null_object result missing")
	}
	if report.Results["encapsulation"] != nil {
		t.Error("unselected rule must not run")
	}
}

func TestAnalyzeSourceUnknownRule(t *testing.T) {
	svc := NewAnalysisService()
	req := quietRequest()
	req.SelectRules = []string{"bogus"}

	if _, err := svc.AnalyzeSource(context.Background(), "", []byte("x = 1\n"), req); err == nil {
		t.Error("expected error for unknown rule selection")
	}
}

func TestAnalyzeRequiresPaths(t *testing.T) {
	svc := NewAnalysisService()

	if _, err := svc.Analyze(context.Background(), quietRequest()); err == nil {
		t.Error("expected error for empty path list")
	}
}

func TestAnalyzeMissingPath(t *testing.T) {
	svc := NewAnalysisService()
	req := quietRequest()
	req.Paths = []string{filepath.Join(t.TempDir(), "nope")}

	report, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("missing paths should be reported, not returned: %v", err)
	}
	if !report.HasErrors() {
		t.Fatal("expected a path error record")
	}
	if report.Errors[0].Type != "path" {
		t.Errorf("error type = %s", report.Errors[0].Type)
	}
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("cart.py", "def f(u):\n    print(u.name)\n")
	write("util.py", "def add(a, b):\n    return a + b\n")
	write("test_cart.py", "def f(u):\n    print(u.name)\n")
	write("notes.txt", "not python")

	svc := NewAnalysisService()
	req := quietRequest()
	req.Paths = []string{dir}

	report, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// test_*.py is excluded by the default patterns
	if len(report.FilesAnalyzed) != 2 {
		t.Fatalf("FilesAnalyzed = %v", report.FilesAnalyzed)
	}
	if !report.HasViolations() {
		t.Error("expected a violation from cart.py")
	}
}

func TestAnalyzeSingleFileTarget(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cart.py")
	if err := os.WriteFile(file, []byte("def f(u):\n    print(u.name)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewAnalysisService()
	req := quietRequest()
	req.Paths = []string{file}

	report, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(report.FilesAnalyzed) != 1 || report.FilesAnalyzed[0] != file {
		t.Errorf("FilesAnalyzed = %v", report.FilesAnalyzed)
	}
}

func TestAnalyzeDirectoryWithBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ok.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.py"), []byte("def broken(:\n"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewAnalysisService()
	req := quietRequest()
	req.Paths = []string{dir}

	report, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(report.FilesAnalyzed) != 1 {
		t.Errorf("only the parseable file should be analyzed, got %v", report.FilesAnalyzed)
	}
	if !report.HasErrors() || report.Errors[0].Type != "parse" {
		t.Errorf("expected a parse error record, got %+v", report.Errors)
	}
}

func TestAnalyzeModuleMissingInit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewAnalysisService()
	report, err := svc.AnalyzeModule(context.Background(), dir, quietRequest())
	if err != nil {
		t.Fatalf("AnalyzeModule failed: %v", err)
	}

	if !report.HasErrors() {
		t.Fatal("expected a validation error record")
	}
	rec := report.Errors[0]
	if rec.Type != "validation" {
		t.Errorf("error type = %s", rec.Type)
	}
}

func TestAnalyzeModuleWithInit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "__init__.py"), []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte("def f(u):\n    print(u.name)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewAnalysisService()
	report, err := svc.AnalyzeModule(context.Background(), dir, quietRequest())
	if err != nil {
		t.Fatalf("AnalyzeModule failed: %v", err)
	}
	if len(report.FilesAnalyzed) != 2 {
		t.Errorf("FilesAnalyzed = %v", report.FilesAnalyzed)
	}
	if !report.HasViolations() {
		t.Error("expected violations from mod.py")
	}
}

func TestFilterFiles(t *testing.T) {
	files := []string{
		"/proj/app.py",
		"/proj/tests/test_app.py",
		"/proj/vendor/dep.py",
		"/proj/readme.md",
	}

	filtered := filterFiles(files, "/proj", []string{"*.py"}, []string{"**/tests/**", "vendor/"})
	if len(filtered) != 1 || filtered[0] != "/proj/app.py" {
		t.Errorf("filtered = %v", filtered)
	}
}

func TestFilterFilesIncludeMatchesBasename(t *testing.T) {
	files := []string{"/proj/a.py", "/proj/b.pyi"}

	filtered := filterFiles(files, "/proj", []string{"*.py"}, nil)
	if len(filtered) != 1 || filtered[0] != "/proj/a.py" {
		t.Errorf("filtered = %v", filtered)
	}
}
