package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ludo-technologies/oopscan/internal/safety"
)

func writeTestFiles(t *testing.T, sources map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var files []string
	for name, content := range sources {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}
	return dir, files
}

func TestParseFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	executor := NewParallelExecutorWithConcurrency(2)
	outcomes := executor.ParseFiles(context.Background(), safety.NewValidator(nil, 0), files, nil)

	if len(outcomes) != len(files) {
		t.Fatalf("got %d outcomes for %d files", len(outcomes), len(files))
	}
	for i, out := range outcomes {
		if out.path != files[i] {
			t.Errorf("outcome %d is %s, want %s", i, out.path, files[i])
		}
		if out.parsed == nil {
			t.Errorf("outcome %d has no parse result", i)
		}
	}
}

func TestParseFilesRecordsFailures(t *testing.T) {
	_, files := writeTestFiles(t, map[string]string{"bad.py": "def broken(:\n"})

	executor := NewParallelExecutor()
	outcomes := executor.ParseFiles(context.Background(), safety.NewValidator(nil, 0), files, nil)

	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	out := outcomes[0]
	if out.parsed != nil {
		t.Error("broken file must not produce a parse result")
	}
	if out.errType != errTypeParse {
		t.Errorf("errType = %s", out.errType)
	}
	if out.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestParseFilesCanceledContext(t *testing.T) {
	_, files := writeTestFiles(t, map[string]string{"a.py": "x = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := NewParallelExecutor().ParseFiles(ctx, safety.NewValidator(nil, 0), files, nil)
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	if outcomes[0].parsed != nil || outcomes[0].errType != "" {
		t.Errorf("canceled run should leave an empty outcome, got %+v", outcomes[0])
	}
}

func TestParseFilesCallsOnDone(t *testing.T) {
	_, files := writeTestFiles(t, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "y = 2\n",
	})

	var mu sync.Mutex
	done := map[string]bool{}

	executor := NewParallelExecutorWithConcurrency(2)
	executor.ParseFiles(context.Background(), safety.NewValidator(nil, 0), files, func(path string) {
		mu.Lock()
		done[path] = true
		mu.Unlock()
	})

	if len(done) != 2 {
		t.Errorf("onDone calls = %d, want 2", len(done))
	}
}

func TestNewParallelExecutorClampsConcurrency(t *testing.T) {
	executor := NewParallelExecutorWithConcurrency(0)
	if executor.maxConcurrency != 1 {
		t.Errorf("maxConcurrency = %d, want 1", executor.maxConcurrency)
	}
}
