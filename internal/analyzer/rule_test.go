package analyzer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ludo-technologies/oopscan/internal/parser"
	"github.com/ludo-technologies/oopscan/internal/testutil"
)

// parsedFile parses Python source into a ParsedFile for rule tests
func parsedFile(t *testing.T, source string) *ParsedFile {
	t.Helper()
	tree := testutil.ParsePython(t, source)
	return &ParsedFile{Tree: tree, Source: []byte(source), Path: "test.py"}
}

func TestRegistryHasNineRules(t *testing.T) {
	rules := AllRules()
	if len(rules) != 9 {
		t.Fatalf("expected 9 registered rules, got %d", len(rules))
	}

	names := map[string]bool{}
	for _, info := range rules {
		if info.Name == "" || info.Description == "" || info.New == nil {
			t.Errorf("incomplete rule descriptor: %+v", info)
		}
		if names[info.Name] {
			t.Errorf("duplicate rule name: %s", info.Name)
		}
		names[info.Name] = true

		rule := info.New(Options{})
		if rule.Name() != info.Name {
			t.Errorf("rule %s reports name %s", info.Name, rule.Name())
		}
	}
}

func TestRuleByName(t *testing.T) {
	info, ok := RuleByName("encapsulation")
	if !ok || info.Name != "encapsulation" {
		t.Errorf("expected to find encapsulation rule, got %+v ok=%v", info, ok)
	}

	if _, ok := RuleByName("nonexistent"); ok {
		t.Error("expected lookup miss for unknown rule")
	}
}

func TestNewRuleUnknown(t *testing.T) {
	if _, err := NewRule("bogus", Options{}); err == nil {
		t.Error("expected error for unknown rule name")
	}
}

func TestOptionsAccessors(t *testing.T) {
	opts := Options{
		"max": 7,
		// viper hands numbers over as float64 when loaded from JSON
		"min":   float64(3),
		"on":    true,
		"words": []interface{}{"a", "b"},
	}

	if got := opts.Int("max", 1); got != 7 {
		t.Errorf("Int(max) = %d", got)
	}
	if got := opts.Int("min", 1); got != 3 {
		t.Errorf("Int(min) = %d", got)
	}
	if got := opts.Int("absent", 42); got != 42 {
		t.Errorf("Int default = %d", got)
	}
	if !opts.Bool("on", false) {
		t.Error("Bool(on) = false")
	}
	if opts.Bool("absent", false) {
		t.Error("Bool default = true")
	}
	if got := opts.Strings("words", nil); len(got) != 2 || got[0] != "a" {
		t.Errorf("Strings(words) = %v", got)
	}
}

func TestViolationCountMatchesViolations(t *testing.T) {
	source := `def f(u):
    print(u.name)
    print(u.age)
`
	file := parsedFile(t, source)

	for _, info := range AllRules() {
		rule := info.New(Options{})
		result, err := rule.Analyze(file)
		if err != nil {
			t.Fatalf("rule %s failed: %v", info.Name, err)
		}
		if result.ViolationCount != len(result.Violations) {
			t.Errorf("rule %s: count %d != len %d", info.Name, result.ViolationCount, len(result.Violations))
		}
	}
}

func TestRulesAreIdempotent(t *testing.T) {
	source := `class Shape:
    def area(self, kind, verbose=False):
        if kind == "circle":
            return 1
        elif kind == "square":
            return 2
        elif kind == "oval":
            return 3
        if verbose:
            print("computed")
        return None

def f(u):
    return u.profile.name
`
	file := parsedFile(t, source)

	for _, info := range AllRules() {
		rule := info.New(Options{})
		first, err := rule.Analyze(file)
		if err != nil {
			t.Fatalf("rule %s failed: %v", info.Name, err)
		}
		second, err := rule.Analyze(file)
		if err != nil {
			t.Fatalf("rule %s failed on second run: %v", info.Name, err)
		}
		if diff := cmp.Diff(first.Violations, second.Violations); diff != "" {
			t.Errorf("rule %s not deterministic (-first +second):\n%s", info.Name, diff)
		}
	}
}

func TestAnalyzeEachMergesFiles(t *testing.T) {
	fileA := parsedFile(t, "def a(u):\n    print(u.name)\n")
	fileB := parsedFile(t, "def b(v):\n    print(v.name)\n")

	rule := NewEncapsulationRule(Options{})
	result, err := rule.AnalyzeMultiple([]*ParsedFile{fileA, fileB})
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 2 {
		t.Errorf("expected 2 merged violations, got %d", result.ViolationCount)
	}
}

func TestSourceLine(t *testing.T) {
	src := []byte("first\n  second  \nthird\n")
	if got := sourceLine(src, 2); got != "second" {
		t.Errorf("sourceLine(2) = %q", got)
	}
	if got := sourceLine(src, 0); got != "" {
		t.Errorf("sourceLine(0) = %q", got)
	}
	if got := sourceLine(src, 99); got != "" {
		t.Errorf("sourceLine(99) = %q", got)
	}
}

func TestFullAttributeName(t *testing.T) {
	tree := testutil.ParsePython(t, `class Order:
    def shipping_city(self):
        return self.customer.address.city
`)
	cls := testutil.FindClass(tree, "Order")
	if cls == nil {
		t.Fatal("class Order not found")
	}
	method := testutil.FindFunction(cls, "shipping_city")
	if method == nil {
		t.Fatal("method shipping_city not found")
	}

	var attr *parser.Node
	method.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeAttribute {
			attr = n
			return false
		}
		return true
	})
	if attr == nil {
		t.Fatal("no attribute expression found")
	}
	if got := fullAttributeName(attr); got != "self.customer.address.city" {
		t.Errorf("fullAttributeName = %q", got)
	}
}

func TestNameHelpers(t *testing.T) {
	if !isPrivateName("_internal") {
		t.Error("_internal should be private")
	}
	if isPrivateName("__init__") {
		t.Error("__init__ should not count as private")
	}
	if !isDunderName("__str__") {
		t.Error("__str__ should be a dunder")
	}
	if !isAllCapsName("MAX_SIZE") {
		t.Error("MAX_SIZE should be all caps")
	}
	if isAllCapsName("MaxSize") {
		t.Error("MaxSize should not be all caps")
	}
	if isAllCapsName("_") {
		t.Error("underscore-only name has no letters")
	}
}
