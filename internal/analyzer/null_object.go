package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// NullObjectConfig holds the options of the null object rule
type NullObjectConfig struct {
	CheckReturnNone       bool
	CheckNoneComparisons  bool
	CheckOptionalParams   bool
	CheckOptionalTypeHint bool
}

// DefaultNullObjectConfig returns the documented defaults
func DefaultNullObjectConfig() NullObjectConfig {
	return NullObjectConfig{
		CheckReturnNone:       true,
		CheckNoneComparisons:  true,
		CheckOptionalParams:   true,
		CheckOptionalTypeHint: true,
	}
}

// NullObjectRule detects None usage that could be replaced by the Null
// Object pattern: None comparisons, None-testing conditionals, explicit
// `return None`, None defaults and Optional type hints.
type NullObjectRule struct {
	cfg NullObjectConfig
}

// NewNullObjectRule creates the rule with resolved options
func NewNullObjectRule(opts Options) *NullObjectRule {
	cfg := DefaultNullObjectConfig()
	cfg.CheckReturnNone = opts.Bool("check_return_none", cfg.CheckReturnNone)
	cfg.CheckNoneComparisons = opts.Bool("check_none_comparisons", cfg.CheckNoneComparisons)
	cfg.CheckOptionalParams = opts.Bool("check_optional_params", cfg.CheckOptionalParams)
	cfg.CheckOptionalTypeHint = opts.Bool("check_optional_type_hints", cfg.CheckOptionalTypeHint)
	return &NullObjectRule{cfg: cfg}
}

// Name returns the rule name
func (r *NullObjectRule) Name() string { return "null_object" }

// AnalyzeMultiple aggregates per-file results
func (r *NullObjectRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// noneCounts tallies the detected None patterns
type noneCounts struct {
	noneChecks       int
	returnNone       int
	optionalParams   int
	optionalTypeHint int
}

// Analyze runs the rule over a single file
func (r *NullObjectRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &noneCounts{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, "", file, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_none_checks":        counts.noneChecks,
		"return_none_count":        counts.returnNone,
		"optional_param_count":     counts.optionalParams,
		"optional_type_hint_count": counts.optionalTypeHint,
	}
	result.Metadata = map[string]interface{}{
		"none_patterns": patterns,
	}
	return result, nil
}

// visit walks the tree threading the enclosing function name as context
func (r *NullObjectRule) visit(node *parser.Node, funcName string, file *ParsedFile,
	result *domain.RuleResult, counts *noneCounts, patterns *[]map[string]interface{}) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeFunctionDef:
			if r.cfg.CheckOptionalParams {
				r.checkOptionalParams(n, file, result, counts, patterns)
			}
			if r.cfg.CheckOptionalTypeHint {
				r.checkOptionalTypeHints(n, file, result, counts, patterns)
			}
			r.visit(n, n.Name, file, result, counts, patterns)
			return false

		case parser.NodeCompare:
			if r.cfg.CheckNoneComparisons {
				r.checkCompare(n, funcName, file, result, counts, patterns)
			}

		case parser.NodeIf:
			if r.cfg.CheckNoneComparisons && isNoneCheck(n.Test) {
				counts.noneChecks++
				r.addViolation(result, patterns, file, n, domain.SeverityInfo,
					"If statement checks for None. This is a candidate for Null Object pattern.",
					"Consider replacing the None check with a Null Object that "+
						"provides default behavior, eliminating the need for this conditional.",
					map[string]interface{}{"pattern": "if_none_check", "function": funcMeta(funcName)},
					map[string]interface{}{"type": "if_check", "line": n.Location.StartLine})
			}

		case parser.NodeIfExp:
			if r.cfg.CheckNoneComparisons && isNoneCheck(n.Test) {
				counts.noneChecks++
				r.addViolation(result, patterns, file, n, domain.SeverityInfo,
					"Ternary expression checks for None. Consider Null Object pattern.",
					"The ternary `x if x is not None else default` pattern can often "+
						"be replaced by ensuring x is never None (using Null Object).",
					map[string]interface{}{"pattern": "ternary_none_check", "function": funcMeta(funcName)},
					map[string]interface{}{"type": "ternary", "line": n.Location.StartLine})
			}

		case parser.NodeReturn:
			if r.cfg.CheckReturnNone && n.Value != nil && n.Value.IsNone() {
				counts.returnNone++
				r.addViolation(result, patterns, file, n, domain.SeverityInfo,
					fmt.Sprintf("Explicit 'return None' in function '%s'. "+
						"Consider returning a Null Object instead.", funcName),
					"Instead of returning None, consider returning a Null Object "+
						"that implements the expected interface with no-op behavior.",
					map[string]interface{}{"pattern": "return_none", "function": funcMeta(funcName)},
					map[string]interface{}{"type": "return_none", "line": n.Location.StartLine, "function": funcMeta(funcName)})
			}
		}
		return true
	})
}

// checkCompare reports comparisons against None
func (r *NullObjectRule) checkCompare(n *parser.Node, funcName string, file *ParsedFile,
	result *domain.RuleResult, counts *noneCounts, patterns *[]map[string]interface{}) {

	for i := 0; i < len(n.Ops) && i < len(n.Comparators); i++ {
		op := n.Ops[i]
		if n.Comparators[i].IsNone() || (i == 0 && n.Left != nil && n.Left.IsNone()) {
			counts.noneChecks++
			switch op {
			case "is", "is not", "==", "!=":
				r.addViolation(result, patterns, file, n, domain.SeverityInfo,
					"None comparison detected. Consider using Null Object pattern "+
						"to avoid explicit None checks.",
					"Instead of checking for None, consider using a Null Object "+
						"that provides default/no-op behavior.",
					map[string]interface{}{"pattern": "none_comparison", "operator": op, "function": funcMeta(funcName)},
					map[string]interface{}{"type": "comparison", "line": n.Location.StartLine, "operator": op})
			}
		}
	}
}

// checkOptionalParams reports parameters defaulting to None
func (r *NullObjectRule) checkOptionalParams(fn *parser.Node, file *ParsedFile,
	result *domain.RuleResult, counts *noneCounts, patterns *[]map[string]interface{}) {

	if fn.Args == nil {
		return
	}

	report := func(p *parser.Param) {
		counts.optionalParams++
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Parameter '%s' in function '%s' "+
				"has None as default. Consider using Null Object.", p.Name, fn.Name),
			FilePath: file.Path,
			Line:     p.Location.StartLine,
			Column:   p.Location.StartCol,
			Severity: domain.SeverityInfo,
			Suggestion: fmt.Sprintf("Instead of `%s=None`, consider using a Null Object "+
				"as the default that provides no-op behavior.", p.Name),
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":   "optional_param",
				"function":  fn.Name,
				"parameter": p.Name,
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type":      "optional_param",
			"line":      p.Location.StartLine,
			"function":  fn.Name,
			"parameter": p.Name,
		})
	}

	offset := len(fn.Args.Args) - len(fn.Args.Defaults)
	for i, def := range fn.Args.Defaults {
		if def != nil && def.IsNone() {
			if idx := offset + i; idx >= 0 && idx < len(fn.Args.Args) {
				report(fn.Args.Args[idx])
			}
		}
	}
	for i, def := range fn.Args.KwDefaults {
		if def != nil && def.IsNone() && i < len(fn.Args.KwOnlyArgs) {
			report(fn.Args.KwOnlyArgs[i])
		}
	}
}

// checkOptionalTypeHints reports Optional[T], T | None and Union[..., None]
// parameter annotations
func (r *NullObjectRule) checkOptionalTypeHints(fn *parser.Node, file *ParsedFile,
	result *domain.RuleResult, counts *noneCounts, patterns *[]map[string]interface{}) {

	if fn.Args == nil {
		return
	}

	params := append([]*parser.Param{}, fn.Args.Args...)
	params = append(params, fn.Args.KwOnlyArgs...)

	for _, p := range params {
		if p.Name == "self" || p.Name == "cls" {
			continue
		}
		if p.Annotation == nil || !isOptionalTypeHint(p.Annotation) {
			continue
		}
		counts.optionalTypeHint++
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Parameter '%s' in function '%s' "+
				"has Optional type hint. Optionals can introduce nulls.", p.Name, fn.Name),
			FilePath: file.Path,
			Line:     p.Location.StartLine,
			Column:   p.Location.StartCol,
			Severity: domain.SeverityWarning,
			Suggestion: fmt.Sprintf("Consider whether '%s' truly needs to be optional. "+
				"If a default behavior is needed, use a Null Object instead of None.", p.Name),
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":   "optional_type_hint",
				"function":  fn.Name,
				"parameter": p.Name,
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type":      "optional_type_hint",
			"line":      p.Location.StartLine,
			"function":  fn.Name,
			"parameter": p.Name,
		})
	}
}

// addViolation records a violation anchored at the given node
func (r *NullObjectRule) addViolation(result *domain.RuleResult, patterns *[]map[string]interface{},
	file *ParsedFile, n *parser.Node, severity domain.Severity,
	message, suggestion string, metadata, pattern map[string]interface{}) {

	result.Add(domain.Violation{
		RuleName:    r.Name(),
		Message:     message,
		FilePath:    file.Path,
		Line:        n.Location.StartLine,
		Column:      n.Location.StartCol,
		Severity:    severity,
		Suggestion:  suggestion,
		CodeSnippet: sourceLine(file.Source, n.Location.StartLine),
		Metadata:    metadata,
	})
	*patterns = append(*patterns, pattern)
}

// isNoneCheck reports whether an expression tests a value against None,
// looking through `not`
func isNoneCheck(node *parser.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case parser.NodeCompare:
		for _, c := range node.Comparators {
			if c.IsNone() {
				return true
			}
		}
		return node.Left != nil && node.Left.IsNone()
	case parser.NodeUnaryOp:
		if node.Op == "not" {
			return isNoneCheck(node.Operand)
		}
	}
	return false
}

// isOptionalTypeHint reports whether an annotation admits None
func isOptionalTypeHint(node *parser.Node) bool {
	switch node.Type {
	case parser.NodeSubscript:
		name := ""
		if node.Value != nil {
			switch node.Value.Type {
			case parser.NodeName:
				name = node.Value.Name
			case parser.NodeAttribute:
				name = node.Value.Name
			}
		}
		if name == "Optional" {
			return true
		}
		if name == "Union" && node.Slice != nil && node.Slice.Type == parser.NodeTuple {
			for _, elt := range node.Slice.Elts {
				if isNoneType(elt) {
					return true
				}
			}
		}
	case parser.NodeBinOp:
		if node.Op == "|" {
			return isNoneType(node.Left) || isNoneType(node.Right)
		}
	}
	return false
}

// isNoneType reports whether a node names the None type
func isNoneType(node *parser.Node) bool {
	if node == nil {
		return false
	}
	if node.IsNone() {
		return true
	}
	return node.Type == parser.NodeName && node.Name == "None"
}

// funcMeta renders the enclosing function name for metadata, nil at module
// level to mirror the report shape
func funcMeta(funcName string) interface{} {
	if funcName == "" {
		return nil
	}
	return funcName
}
