package analyzer

import (
	"reflect"
	"strings"
	"testing"
)

func TestFunctionsToObjectsManyParams(t *testing.T) {
	source := `def render(width, height, color, border, padding):
    pass
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "many_parameters" || v.Metadata["param_count"] != 5 {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if result.Summary["functions_with_many_params"] != 1 {
		t.Errorf("functions_with_many_params = %v", result.Summary["functions_with_many_params"])
	}
}

func TestFunctionsToObjectsMaxParamsBoundary(t *testing.T) {
	source := `def render(width, height, color, border):
    pass
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("exactly max_params parameters must pass, got %d", result.ViolationCount)
	}

	result, err = NewFunctionsToObjectsRule(Options{"max_params": 3}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 1 {
		t.Errorf("lowered max_params must flag the function, got %d", result.ViolationCount)
	}
}

func TestFunctionsToObjectsDictReturn(t *testing.T) {
	source := `def stats(xs):
    return {"min": min(xs), "max": max(xs)}
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary["functions_returning_dicts"] != 1 {
		t.Fatalf("functions_returning_dicts = %v", result.Summary["functions_returning_dicts"])
	}
	if result.Violations[0].Metadata["pattern"] != "dict_return" {
		t.Errorf("pattern = %v", result.Violations[0].Metadata["pattern"])
	}
}

func TestFunctionsToObjectsDictCallReturn(t *testing.T) {
	source := `def stats(xs):
    return dict(count=len(xs))
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary["functions_returning_dicts"] != 1 {
		t.Errorf("dict() calls count as dict returns, got %v", result.Summary["functions_returning_dicts"])
	}
}

func TestFunctionsToObjectsRelatedGroup(t *testing.T) {
	source := `def user_create(name):
    pass

def user_delete(uid):
    pass

def user_rename(uid, name):
    pass
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["pattern"] != "related_functions" || v.Metadata["prefix"] != "user" {
		t.Errorf("unexpected metadata: %v", v.Metadata)
	}
	if !reflect.DeepEqual(v.Metadata["functions"], []string{"user_create", "user_delete", "user_rename"}) {
		t.Errorf("functions = %v", v.Metadata["functions"])
	}
	if !strings.Contains(v.Suggestion, "'User'") {
		t.Errorf("suggestion should propose a class name: %s", v.Suggestion)
	}
	if result.Summary["related_function_groups"] != 1 {
		t.Errorf("related_function_groups = %v", result.Summary["related_function_groups"])
	}
}

func TestFunctionsToObjectsPairNotAGroup(t *testing.T) {
	source := `def user_create(name):
    pass

def user_delete(uid):
    pass
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("two related functions are below the group threshold, got %d", result.ViolationCount)
	}
}

func TestFunctionsToObjectsMethodsIgnored(t *testing.T) {
	source := `class Api:
    def call(self, a, b, c, d, e, f):
        return {"a": a}
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("methods must not be flagged, got %d", result.ViolationCount)
	}
	if result.Summary["total_functions"] != 0 {
		t.Errorf("total_functions = %v", result.Summary["total_functions"])
	}
}

func TestFunctionsToObjectsPrivateExempt(t *testing.T) {
	source := `def _helper(a, b, c, d, e):
    return {"a": a, "b": b}
`
	file := parsedFile(t, source)

	result, err := NewFunctionsToObjectsRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("private helpers must be exempt, got %d", result.ViolationCount)
	}

	functions := result.Metadata["functions"].([]FunctionInfo)
	if len(functions) != 1 || !functions[0].IsPrivate {
		t.Errorf("private function should still be inventoried: %+v", functions)
	}
}
