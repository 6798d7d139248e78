package analyzer

import (
	"strings"
	"testing"
)

func TestPolymorphismLongIfChain(t *testing.T) {
	source := `def area(shape):
    if shape == "circle":
        return 1
    elif shape == "square":
        return 2
    else:
        return 3
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "long_if_chain" {
		t.Errorf("pattern = %v", v.Metadata["pattern"])
	}
	if v.Metadata["branches"] != 3 {
		t.Errorf("branches = %v", v.Metadata["branches"])
	}
	if v.Metadata["checked_variable"] != "shape" {
		t.Errorf("checked_variable = %v", v.Metadata["checked_variable"])
	}
	if result.Summary["long_if_chains"] != 1 {
		t.Errorf("long_if_chains = %v", result.Summary["long_if_chains"])
	}
}

func TestPolymorphismMinBranchesBoundary(t *testing.T) {
	// Two branches stay below the default threshold of three
	source := `def area(shape):
    if shape == "circle":
        return 1
    elif shape == "square":
        return 2
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary["long_if_chains"] != 0 {
		t.Errorf("two branches must not be flagged, got %v", result.Summary["long_if_chains"])
	}

	result, err = NewPolymorphismRule(Options{"min_branches": 2}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary["long_if_chains"] != 1 {
		t.Errorf("min_branches=2 should flag the chain, got %v", result.Summary["long_if_chains"])
	}
}

func TestPolymorphismChainReportedOnce(t *testing.T) {
	source := `def area(shape):
    if shape == "circle":
        return 1
    elif shape == "square":
        return 2
    elif shape == "oval":
        return 3
    elif shape == "rect":
        return 4
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	// Nested elif links must not surface as extra shorter chains
	if result.ViolationCount != 1 {
		t.Fatalf("expected a single chain violation, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["branches"] != 4 {
		t.Errorf("branches = %v", result.Violations[0].Metadata["branches"])
	}
}

func TestPolymorphismMixedChainNotFlagged(t *testing.T) {
	source := `def f(a, b, c):
    if a == 1:
        return 1
    elif b == 2:
        return 2
    elif c == 3:
        return 3
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary["long_if_chains"] != 0 {
		t.Errorf("chain over three different variables must not be flagged, got %v",
			result.Summary["long_if_chains"])
	}
}

func TestPolymorphismIsinstance(t *testing.T) {
	source := `def describe(animal):
    if isinstance(animal, Dog):
        return "dog"
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary["isinstance_checks"] != 1 {
		t.Fatalf("isinstance_checks = %v", result.Summary["isinstance_checks"])
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "isinstance_check" {
		t.Errorf("pattern = %v", v.Metadata["pattern"])
	}
	if !strings.Contains(v.Message, "isinstance()") {
		t.Errorf("unexpected message: %s", v.Message)
	}
}

func TestPolymorphismIsinstanceDisabled(t *testing.T) {
	source := `def describe(animal):
    if isinstance(animal, Dog):
        return "dog"
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{"check_isinstance": false}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("disabled isinstance check must report nothing, got %d", result.ViolationCount)
	}
}

func TestPolymorphismTypeAttribute(t *testing.T) {
	source := `def handle(event):
    if event.kind == "click":
        process(event)
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary["type_attribute_checks"] != 1 {
		t.Fatalf("type_attribute_checks = %v", result.Summary["type_attribute_checks"])
	}
	if result.Violations[0].Metadata["attribute"] != "event.kind" {
		t.Errorf("attribute = %v", result.Violations[0].Metadata["attribute"])
	}
}

func TestPolymorphismMatchStatement(t *testing.T) {
	source := `def dispatch(cmd):
    match cmd:
        case "a":
            return 1
        case "b":
            return 2
        case _:
            return 0
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "match_statement" || v.Metadata["cases"] != 3 {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if v.Metadata["function"] != "dispatch" {
		t.Errorf("function = %v", v.Metadata["function"])
	}
}

func TestPolymorphismClassContext(t *testing.T) {
	source := `class Router:
    def route(self, req):
        if isinstance(req, Get):
            return self.get(req)
`
	file := parsedFile(t, source)

	result, err := NewPolymorphismRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["class"] != "Router" || v.Metadata["function"] != "route" {
		t.Errorf("unexpected context: class=%v function=%v", v.Metadata["class"], v.Metadata["function"])
	}
}
