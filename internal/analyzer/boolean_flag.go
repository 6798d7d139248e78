package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// Default boolean flag rule thresholds
const (
	// DefaultMinFlagUsages is the minimum number of conditional usages
	// before a boolean parameter is reported as a flag
	DefaultMinFlagUsages = 1
)

// defaultBooleanPrefixes are parameter name prefixes suggesting a boolean
var defaultBooleanPrefixes = []string{
	"is_", "has_", "can_", "should_", "will_", "did_",
	"enable_", "disable_", "use_", "allow_", "include_", "exclude_",
	"force_", "skip_", "ignore_", "check_",
}

// defaultBooleanNames are parameter names suggesting a boolean
var defaultBooleanNames = []string{
	"enabled", "disabled", "active", "inactive", "visible", "hidden",
	"readonly", "required", "optional", "recursive", "verbose", "quiet",
	"debug", "dry_run", "force",
}

// BooleanFlagConfig holds the options of the boolean flag rule
type BooleanFlagConfig struct {
	CheckConstructors bool
	CheckMethods      bool
	CheckFunctions    bool
	MinFlagUsages     int
	BooleanPrefixes   []string
	BooleanNames      []string
}

// DefaultBooleanFlagConfig returns the documented defaults
func DefaultBooleanFlagConfig() BooleanFlagConfig {
	return BooleanFlagConfig{
		CheckConstructors: true,
		CheckMethods:      true,
		CheckFunctions:    true,
		MinFlagUsages:     DefaultMinFlagUsages,
		BooleanPrefixes:   defaultBooleanPrefixes,
		BooleanNames:      defaultBooleanNames,
	}
}

// BooleanFlagRule detects boolean flag parameters that cause behavior
// branching. A method whose boolean parameter steers conditionals usually
// wants to be two methods.
type BooleanFlagRule struct {
	cfg BooleanFlagConfig
}

// NewBooleanFlagRule creates the rule with resolved options
func NewBooleanFlagRule(opts Options) *BooleanFlagRule {
	cfg := DefaultBooleanFlagConfig()
	cfg.CheckConstructors = opts.Bool("check_constructors", cfg.CheckConstructors)
	cfg.CheckMethods = opts.Bool("check_methods", cfg.CheckMethods)
	cfg.CheckFunctions = opts.Bool("check_functions", cfg.CheckFunctions)
	cfg.MinFlagUsages = opts.Int("min_flag_usages", cfg.MinFlagUsages)
	cfg.BooleanPrefixes = opts.Strings("boolean_prefixes", cfg.BooleanPrefixes)
	cfg.BooleanNames = opts.Strings("boolean_names", cfg.BooleanNames)
	return &BooleanFlagRule{cfg: cfg}
}

// Name returns the rule name
func (r *BooleanFlagRule) Name() string { return "boolean_flag" }

// flagCounts tallies where flags were found
type flagCounts struct {
	constructor int
	method      int
	function    int
}

// Analyze runs the rule over a single file
func (r *BooleanFlagRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &flagCounts{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, "", file, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_boolean_flags": result.ViolationCount,
		"constructor_flags":   counts.constructor,
		"method_flags":        counts.method,
		"function_flags":      counts.function,
	}
	result.Metadata = map[string]interface{}{
		"flag_patterns": patterns,
	}
	return result, nil
}

// AnalyzeMultiple aggregates per-file results
func (r *BooleanFlagRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// visit walks the tree threading the enclosing class name as context
func (r *BooleanFlagRule) visit(node *parser.Node, className string, file *ParsedFile,
	result *domain.RuleResult, counts *flagCounts, patterns *[]map[string]interface{}) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeClassDef:
			r.visit(n, n.Name, file, result, counts, patterns)
			return false
		case parser.NodeFunctionDef:
			r.checkFunction(n, className, file, result, counts, patterns)
			r.visit(n, className, file, result, counts, patterns)
			return false
		}
		return true
	})
}

// checkFunction reports boolean parameters of fn that steer conditionals
func (r *BooleanFlagRule) checkFunction(fn *parser.Node, className string, file *ParsedFile,
	result *domain.RuleResult, counts *flagCounts, patterns *[]map[string]interface{}) {

	isConstructor := fn.Name == "__init__"
	isMethod := className != ""

	if isConstructor && !r.cfg.CheckConstructors {
		return
	}
	if isMethod && !isConstructor && !r.cfg.CheckMethods {
		return
	}
	if !isMethod && !r.cfg.CheckFunctions {
		return
	}

	for _, paramName := range r.findBooleanParams(fn) {
		usages := countConditionalUsages(fn, paramName)
		if usages < r.cfg.MinFlagUsages {
			continue
		}

		var context, suggestion string
		switch {
		case isConstructor:
			counts.constructor++
			context = fmt.Sprintf("Constructor of '%s'", className)
			suggestion = "Consider splitting into separate classes or using a factory method " +
				"instead of a boolean flag in the constructor."
		case isMethod:
			counts.method++
			context = fmt.Sprintf("Method '%s' in class '%s'", fn.Name, className)
			suggestion = fmt.Sprintf("Consider splitting '%s' into two methods with descriptive names "+
				"instead of using a boolean flag to control behavior.", fn.Name)
		default:
			counts.function++
			context = fmt.Sprintf("Function '%s'", fn.Name)
			suggestion = fmt.Sprintf("Consider splitting '%s' into two functions with descriptive names "+
				"instead of using a boolean flag to control behavior.", fn.Name)
		}

		var classMeta interface{}
		if className != "" {
			classMeta = className
		}

		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("%s has boolean flag parameter '%s' used in %d conditional(s). "+
				"This causes behavior branching.", context, paramName, usages),
			FilePath:    file.Path,
			Line:        fn.Location.StartLine,
			Column:      fn.Location.StartCol,
			Severity:    domain.SeverityWarning,
			Suggestion:  suggestion,
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"parameter":          paramName,
				"function":           fn.Name,
				"class":              classMeta,
				"is_constructor":     isConstructor,
				"conditional_usages": usages,
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type":      "boolean_flag",
			"line":      fn.Location.StartLine,
			"parameter": paramName,
			"function":  fn.Name,
			"class":     classMeta,
		})
	}
}

// findBooleanParams returns parameter names that look like boolean flags:
// bool type hints, boolean defaults, or boolean-suggestive names
func (r *BooleanFlagRule) findBooleanParams(fn *parser.Node) []string {
	if fn.Args == nil {
		return nil
	}

	var params []string
	check := func(p *parser.Param, def *parser.Node) {
		if p.Name == "self" || p.Name == "cls" {
			return
		}
		if p.Annotation != nil && p.Annotation.Type == parser.NodeName && p.Annotation.Name == "bool" {
			params = append(params, p.Name)
			return
		}
		if def != nil && def.Type == parser.NodeConstant && def.Const == parser.ConstBool {
			params = append(params, p.Name)
			return
		}
		if r.isBooleanName(p.Name) {
			params = append(params, p.Name)
		}
	}

	offset := len(fn.Args.Args) - len(fn.Args.Defaults)
	for i, p := range fn.Args.Args {
		var def *parser.Node
		if i-offset >= 0 && i-offset < len(fn.Args.Defaults) {
			def = fn.Args.Defaults[i-offset]
		}
		check(p, def)
	}
	for i, p := range fn.Args.KwOnlyArgs {
		var def *parser.Node
		if i < len(fn.Args.KwDefaults) {
			def = fn.Args.KwDefaults[i]
		}
		check(p, def)
	}

	return params
}

// isBooleanName checks if a parameter name suggests a boolean
func (r *BooleanFlagRule) isBooleanName(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range r.cfg.BooleanPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, n := range r.cfg.BooleanNames {
		if lower == n {
			return true
		}
	}
	return false
}

// countConditionalUsages counts how often a parameter steers a conditional:
// if/ternary/while tests plus boolean operations anywhere in the body
func countConditionalUsages(fn *parser.Node, name string) int {
	count := 0
	fn.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeIf, parser.NodeIfExp, parser.NodeWhile:
			if usesVariable(n.Test, name) {
				count++
			}
		case parser.NodeBoolOp:
			for _, v := range n.Values {
				if usesVariable(v, name) {
					count++
					break
				}
			}
		}
		return true
	})
	return count
}

// usesVariable checks whether a condition expression references the variable,
// looking through negations, boolean chains and comparisons
func usesVariable(node *parser.Node, name string) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case parser.NodeName:
		return node.Name == name
	case parser.NodeUnaryOp:
		return usesVariable(node.Operand, name)
	case parser.NodeBoolOp:
		for _, v := range node.Values {
			if usesVariable(v, name) {
				return true
			}
		}
	case parser.NodeCompare:
		if usesVariable(node.Left, name) {
			return true
		}
		for _, c := range node.Comparators {
			if usesVariable(c, name) {
				return true
			}
		}
	}
	return false
}
