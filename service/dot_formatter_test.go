package service

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/oopscan/domain"
)

func couplingResult() *domain.RuleResult {
	result := domain.NewRuleResult("coupling")
	result.Metadata = map[string]interface{}{
		"dependency_graph": map[string][]string{
			"pkg.a": {"os", "pkg.b", "requests"},
			"pkg.b": {"pkg.c"},
			"pkg.c": {},
		},
		"import_frequency": map[string]int{
			"os": 1, "pkg.b": 1, "pkg.c": 1, "requests": 1,
		},
		"internal_deps": map[string]int{"pkg.b": 1, "pkg.c": 1},
		"stdlib_deps":   map[string]int{"os": 1},
		"external_deps": map[string]int{"requests": 1},
		"coupling_chains": [][]string{
			{"pkg.a", "pkg.b", "pkg.c"},
		},
	}
	return result
}

func TestDOTFormatterWriteDependencyGraph(t *testing.T) {
	formatter := NewDOTFormatter(nil)

	out, err := formatter.FormatDependencyGraph(couplingResult())
	if err != nil {
		t.Fatalf("FormatDependencyGraph failed: %v", err)
	}

	for _, want := range []string{
		"digraph dependencies {",
		"rankdir=LR;",
		`"pkg.a" -> "pkg.b"`,
		`"pkg.a" -> "os"`,
		`"pkg.a" -> "requests"`,
		"cluster_legend",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestDOTFormatterHighlightsChains(t *testing.T) {
	out, err := NewDOTFormatter(nil).FormatDependencyGraph(couplingResult())
	if err != nil {
		t.Fatalf("FormatDependencyGraph failed: %v", err)
	}

	// Chain edges get the highlight attributes, plain edges do not
	if !strings.Contains(out, `"pkg.a" -> "pkg.b" [color="#DC143C", penwidth=2];`) {
		t.Errorf("chain edge not highlighted:\n%s", out)
	}
	if !strings.Contains(out, `"pkg.a" -> "os";`) {
		t.Errorf("plain edge should have no attributes:\n%s", out)
	}
}

func TestDOTFormatterInternalOnly(t *testing.T) {
	cfg := DefaultDOTFormatterConfig()
	cfg.InternalOnly = true

	out, err := NewDOTFormatter(cfg).FormatDependencyGraph(couplingResult())
	if err != nil {
		t.Fatalf("FormatDependencyGraph failed: %v", err)
	}

	if strings.Contains(out, "requests") || strings.Contains(out, `"os"`) {
		t.Errorf("internal-only output must hide stdlib and external modules:\n%s", out)
	}
	if !strings.Contains(out, `"pkg.b"`) {
		t.Errorf("internal modules must stay:\n%s", out)
	}
}

func TestDOTFormatterMinImports(t *testing.T) {
	cfg := DefaultDOTFormatterConfig()
	cfg.MinImports = 2

	out, err := NewDOTFormatter(cfg).FormatDependencyGraph(couplingResult())
	if err != nil {
		t.Fatalf("FormatDependencyGraph failed: %v", err)
	}

	// Everything is imported once, but source modules always pass the filter
	if strings.Contains(out, `"requests"`) {
		t.Errorf("rarely imported module should be filtered:\n%s", out)
	}
	if !strings.Contains(out, `"pkg.a"`) {
		t.Errorf("source modules must stay:\n%s", out)
	}
}

func TestDOTFormatterInvalidRankDir(t *testing.T) {
	cfg := DefaultDOTFormatterConfig()
	cfg.RankDir = "XX"

	if _, err := NewDOTFormatter(cfg).FormatDependencyGraph(couplingResult()); err == nil {
		t.Error("expected error for invalid rank direction")
	}
}

func TestDOTFormatterRequiresGraph(t *testing.T) {
	if _, err := NewDOTFormatter(nil).FormatDependencyGraph(domain.NewRuleResult("coupling")); err == nil {
		t.Error("expected error for result without graph metadata")
	}
}
