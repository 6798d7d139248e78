package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestTypeCodeSelfTypeChain(t *testing.T) {
	source := `class Shape:
    def area(self):
        if self.type == CIRCLE:
            return 1
        elif self.type == SQUARE:
            return 2
        elif self.type == TRIANGLE:
            return 3
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["checked_attribute"] != "self.type" {
		t.Errorf("checked_attribute = %v", v.Metadata["checked_attribute"])
	}
	if v.Metadata["branch_count"] != 3 {
		t.Errorf("branch_count = %v", v.Metadata["branch_count"])
	}
	if v.Metadata["pattern_type"] != "constant" {
		t.Errorf("pattern_type = %v", v.Metadata["pattern_type"])
	}
	if !reflect.DeepEqual(v.Metadata["comparison_values"], []string{"CIRCLE", "SQUARE", "TRIANGLE"}) {
		t.Errorf("comparison_values = %v", v.Metadata["comparison_values"])
	}
	if v.Metadata["class"] != "Shape" || v.Metadata["function"] != "area" {
		t.Errorf("unexpected context: class=%v function=%v", v.Metadata["class"], v.Metadata["function"])
	}
}

func TestTypeCodeMinBranchesBoundary(t *testing.T) {
	single := parsedFile(t, `def f(self_obj):
    if self_obj.mode == "fast":
        return 1
`)
	result, err := NewTypeCodeRule(Options{}).Analyze(single)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("one branch below min_branches must pass, got %d", result.ViolationCount)
	}

	double := parsedFile(t, `def f(self_obj):
    if self_obj.mode == "fast":
        return 1
    elif self_obj.mode == "slow":
        return 2
`)
	result, err = NewTypeCodeRule(Options{}).Analyze(double)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 1 {
		t.Fatalf("two branches at min_branches must be flagged, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["branch_count"] != 2 {
		t.Errorf("branch_count = %v", result.Violations[0].Metadata["branch_count"])
	}

	result, err = NewTypeCodeRule(Options{"min_branches": 3}).Analyze(double)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("raised min_branches must suppress the chain, got %d", result.ViolationCount)
	}
}

func TestTypeCodeStringLiteralChain(t *testing.T) {
	source := `def render(widget):
    if widget.style == "bold":
        return 1
    elif widget.style == "italic":
        return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern_type"] != "string_literal" {
		t.Errorf("pattern_type = %v", v.Metadata["pattern_type"])
	}
	if !strings.Contains(v.Message, "widget.style") {
		t.Errorf("unexpected message: %s", v.Message)
	}
}

func TestTypeCodeConstantComparison(t *testing.T) {
	source := `def advance(status):
    if status == ACTIVE:
        return 1
    elif status == INACTIVE:
        return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["checked_attribute"] != "status" || v.Metadata["pattern_type"] != "constant" {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if result.Summary["constant_comparisons"] != 2 {
		t.Errorf("constant_comparisons = %v", result.Summary["constant_comparisons"])
	}
}

func TestTypeCodeEnumComparison(t *testing.T) {
	source := `def paint(self_obj):
    if self_obj.state == Color.RED:
        return 1
    elif self_obj.state == Color.BLUE:
        return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern_type"] != "enum" {
		t.Errorf("pattern_type = %v", v.Metadata["pattern_type"])
	}
	if !strings.Contains(v.Suggestion, "State or Strategy") {
		t.Errorf("unexpected suggestion: %s", v.Suggestion)
	}
}

func TestTypeCodeMixedAttributesNotFlagged(t *testing.T) {
	source := `def f(a, b):
    if a.type == "x":
        return 1
    elif b.kind == "y":
        return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("branches checking different attributes must not merge, got %d", result.ViolationCount)
	}
}

func TestTypeCodeChainReportedOnce(t *testing.T) {
	source := `def f(obj):
    if obj.kind == "a":
        return 1
    elif obj.kind == "b":
        return 2
    elif obj.kind == "c":
        return 3
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 1 {
		t.Fatalf("elif links must not be re-reported as shorter chains, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["branch_count"] != 3 {
		t.Errorf("branch_count = %v", result.Violations[0].Metadata["branch_count"])
	}
}

func TestTypeCodeMatchOnAttribute(t *testing.T) {
	source := `def run(self_obj):
    match self_obj.mode:
        case "fast":
            return 1
        case "slow":
            return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "match_type_code" || v.Metadata["subject"] != "self_obj.mode" {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if v.Metadata["case_count"] != 2 {
		t.Errorf("case_count = %v", v.Metadata["case_count"])
	}
}

func TestTypeCodeMatchOnPlainNameIgnored(t *testing.T) {
	source := `def run(cmd):
    match cmd:
        case "a":
            return 1
        case "b":
            return 2
`
	file := parsedFile(t, source)

	result, err := NewTypeCodeRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("match on plain names belongs to the polymorphism rule, got %d", result.ViolationCount)
	}
}
