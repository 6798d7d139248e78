package analyzer

import (
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
	"github.com/spf13/cast"
)

// ParsedFile bundles one parsed source file for analysis
type ParsedFile struct {
	Tree   *parser.Node
	Source []byte
	Path   string
}

// Rule analyzes a Python AST for one category of OOP design problems.
// Implementations return errors instead of panicking; the analysis service
// records a failed rule as a report error and keeps going.
type Rule interface {
	// Name returns the registry name of the rule
	Name() string

	// Analyze runs the rule over a single parsed file
	Analyze(file *ParsedFile) (*domain.RuleResult, error)

	// AnalyzeMultiple runs the rule over a set of parsed files. Most rules
	// aggregate per-file results; cross-file rules override this.
	AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error)
}

// Options holds the raw rule option map resolved from configuration
type Options map[string]interface{}

// Int returns an integer option or the default
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		return cast.ToInt(v)
	}
	return def
}

// Bool returns a boolean option or the default
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		return cast.ToBool(v)
	}
	return def
}

// Strings returns a string list option or the default
func (o Options) Strings(key string, def []string) []string {
	if v, ok := o[key]; ok {
		return cast.ToStringSlice(v)
	}
	return def
}

// RuleInfo describes a registered rule
type RuleInfo struct {
	Name        string
	Description string
	Severity    domain.Severity
	New         func(opts Options) Rule
}

// registry is the static table of all available rules
var registry = []RuleInfo{
	{
		Name:        "encapsulation",
		Description: "Check for direct property access (tell don't ask)",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewEncapsulationRule(opts) },
	},
	{
		Name:        "coupling",
		Description: "Measure coupling and show dependency graph",
		Severity:    domain.SeverityInfo,
		New:         func(opts Options) Rule { return NewCouplingRule(opts) },
	},
	{
		Name:        "null_object",
		Description: "Detect None usage replaceable by Null Object pattern",
		Severity:    domain.SeverityInfo,
		New:         func(opts Options) Rule { return NewNullObjectRule(opts) },
	},
	{
		Name:        "polymorphism",
		Description: "Find if blocks replaceable by polymorphism",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewPolymorphismRule(opts) },
	},
	{
		Name:        "functions_to_objects",
		Description: "Detect functions that could be objects",
		Severity:    domain.SeverityInfo,
		New:         func(opts Options) Rule { return NewFunctionsToObjectsRule(opts) },
	},
	{
		Name:        "type_code",
		Description: "Detect type code conditionals replaceable by polymorphism",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewTypeCodeRule(opts) },
	},
	{
		Name:        "reference_exposure",
		Description: "Detect methods exposing internal mutable state",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewReferenceExposureRule(opts) },
	},
	{
		Name:        "dictionary_usage",
		Description: "Detect dictionary usage that should be objects",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewDictionaryUsageRule(opts) },
	},
	{
		Name:        "boolean_flag",
		Description: "Detect boolean flag parameters causing behavior branching",
		Severity:    domain.SeverityWarning,
		New:         func(opts Options) Rule { return NewBooleanFlagRule(opts) },
	},
}

// AllRules returns the registered rule descriptors in registration order
func AllRules() []RuleInfo {
	out := make([]RuleInfo, len(registry))
	copy(out, registry)
	return out
}

// RuleByName looks up a rule descriptor by name
func RuleByName(name string) (RuleInfo, bool) {
	for _, info := range registry {
		if info.Name == name {
			return info, true
		}
	}
	return RuleInfo{}, false
}

// NewRule constructs a rule by name with the given options
func NewRule(name string, opts Options) (Rule, error) {
	info, ok := RuleByName(name)
	if !ok {
		return nil, domain.NewInvalidInputError("unknown rule: "+name, nil)
	}
	return info.New(opts), nil
}

// analyzeEach is the default multi-file behavior: run the rule per file and
// merge violations, summaries and metadata
func analyzeEach(r Rule, files []*ParsedFile) (*domain.RuleResult, error) {
	combined := domain.NewRuleResult(r.Name())
	combined.Summary = map[string]interface{}{}
	combined.Metadata = map[string]interface{}{}

	for _, file := range files {
		result, err := r.Analyze(file)
		if err != nil {
			return nil, err
		}
		for _, v := range result.Violations {
			combined.Add(v)
		}
		for k, v := range result.Summary {
			combined.Summary[k] = v
		}
		for k, v := range result.Metadata {
			combined.Metadata[k] = v
		}
	}

	return combined, nil
}

// sourceLine returns the trimmed text of a 1-based source line
func sourceLine(source []byte, line int) string {
	lines := strings.Split(string(source), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

// isPrivateName reports whether a name is private by convention
// (single leading underscore, excluding dunders)
func isPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") && !isDunderName(name)
}

// isDunderName reports whether a name is a double-underscore name
func isDunderName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4
}

// isAllCapsName reports whether a name looks like a module-level constant
func isAllCapsName(name string) bool {
	hasLetter := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
