package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// DefaultTypeCodeMinBranches is the minimum number of type code branches
// before an if/elif chain is reported
const DefaultTypeCodeMinBranches = 2

// typeCodeAttributes are attribute names commonly used as type codes
var typeCodeAttributes = map[string]bool{
	"type": true, "kind": true, "category": true, "status": true,
	"state": true, "mode": true, "variant": true, "style": true,
	"format": true, "action": true, "operation": true,
}

// TypeCodeConfig holds the options of the type code rule
type TypeCodeConfig struct {
	MinBranches    int
	CheckConstants bool
	CheckEnums     bool
}

// DefaultTypeCodeConfig returns the documented defaults
func DefaultTypeCodeConfig() TypeCodeConfig {
	return TypeCodeConfig{
		MinBranches:    DefaultTypeCodeMinBranches,
		CheckConstants: true,
		CheckEnums:     true,
	}
}

// TypeCodeRule detects conditionals checking type codes, ALL_CAPS constants
// or enum values that could be replaced by State/Strategy patterns or
// subclasses.
type TypeCodeRule struct {
	cfg TypeCodeConfig
}

// NewTypeCodeRule creates the rule with resolved options
func NewTypeCodeRule(opts Options) *TypeCodeRule {
	cfg := DefaultTypeCodeConfig()
	cfg.MinBranches = opts.Int("min_branches", cfg.MinBranches)
	cfg.CheckConstants = opts.Bool("check_constants", cfg.CheckConstants)
	cfg.CheckEnums = opts.Bool("check_enums", cfg.CheckEnums)
	return &TypeCodeRule{cfg: cfg}
}

// Name returns the rule name
func (r *TypeCodeRule) Name() string { return "type_code" }

// AnalyzeMultiple aggregates per-file results
func (r *TypeCodeRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// typeCodeCounts tallies comparison kinds for the summary
type typeCodeCounts struct {
	constant int
	enum     int
	typeAttr int
}

// branchInfo describes one type code branch of an if/elif chain
type branchInfo struct {
	checkedAttribute string
	comparedTo       string
	patternType      string
}

// Analyze runs the rule over a single file
func (r *TypeCodeRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &typeCodeCounts{}
	seen := map[*parser.Node]bool{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, "", "", file, seen, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_type_code_conditionals": result.ViolationCount,
		"constant_comparisons":         counts.constant,
		"enum_comparisons":             counts.enum,
		"type_attribute_checks":        counts.typeAttr,
	}
	result.Metadata = map[string]interface{}{
		"patterns": patterns,
	}
	return result, nil
}

// visit walks the tree threading the enclosing class and function names
func (r *TypeCodeRule) visit(node *parser.Node, className, funcName string, file *ParsedFile,
	seen map[*parser.Node]bool, result *domain.RuleResult, counts *typeCodeCounts, patterns *[]map[string]interface{}) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeClassDef:
			r.visit(n, n.Name, funcName, file, seen, result, counts, patterns)
			return false
		case parser.NodeFunctionDef:
			r.visit(n, className, n.Name, file, seen, result, counts, patterns)
			return false
		case parser.NodeIf:
			r.checkChain(n, className, funcName, file, seen, result, counts, patterns)
		case parser.NodeMatch:
			r.checkMatch(n, className, funcName, file, result, patterns)
		}
		return true
	})
}

// checkChain analyzes an if/elif chain for a consistent type code pattern
func (r *TypeCodeRule) checkChain(node *parser.Node, className, funcName string, file *ParsedFile,
	seen map[*parser.Node]bool, result *domain.RuleResult, counts *typeCodeCounts, patterns *[]map[string]interface{}) {

	if seen[node] {
		return
	}
	markChain(node, seen)

	var branches []branchInfo

	current := node
	for current != nil {
		if info := r.analyzeCondition(current.Test, counts); info != nil {
			branches = append(branches, *info)
		}
		if len(current.OrElse) == 1 && current.OrElse[0].Type == parser.NodeIf {
			current = current.OrElse[0]
		} else {
			break
		}
	}

	if len(branches) < r.cfg.MinBranches {
		return
	}
	branchCount := len(branches)

	// All type code branches must check the same attribute
	checked := branches[0].checkedAttribute
	for _, b := range branches[1:] {
		if b.checkedAttribute != checked {
			return
		}
	}

	values := make([]string, len(branches))
	for i, b := range branches {
		values[i] = b.comparedTo
	}
	patternType := branches[0].patternType

	var refactoring, suggestion string
	switch patternType {
	case "constant":
		shown := values
		ellipsis := ""
		if len(shown) > 3 {
			shown = shown[:3]
			ellipsis = "..."
		}
		refactoring = "Replace Type Code with State/Strategy or Subclasses"
		suggestion = fmt.Sprintf("The conditional checks '%s' against constants (%s%s). "+
			"Consider replacing with polymorphism: create a class hierarchy where "+
			"each constant becomes a subclass with its own behavior.",
			checked, strings.Join(shown, ", "), ellipsis)
	case "enum":
		refactoring = "Replace Type Code with State/Strategy"
		suggestion = fmt.Sprintf("The conditional checks '%s' against enum values. "+
			"Consider using the State or Strategy pattern where each enum value "+
			"corresponds to a class that implements the varying behavior.", checked)
	default:
		refactoring = "Replace Conditional with Polymorphism"
		suggestion = fmt.Sprintf("The conditional on '%s' with %d branches "+
			"suggests a type code pattern. Consider using polymorphism.", checked, branchCount)
	}

	result.Add(domain.Violation{
		RuleName: r.Name(),
		Message: fmt.Sprintf("Type code conditional detected: '%s' checked against "+
			"%d different values. %s.", checked, branchCount, refactoring),
		FilePath:    file.Path,
		Line:        node.Location.StartLine,
		Column:      node.Location.StartCol,
		Severity:    domain.SeverityWarning,
		Suggestion:  suggestion,
		CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
		Metadata: map[string]interface{}{
			"pattern":           "type_code_conditional",
			"checked_attribute": checked,
			"branch_count":      branchCount,
			"pattern_type":      patternType,
			"comparison_values": values,
			"function":          funcMeta(funcName),
			"class":             funcMeta(className),
		},
	})
	*patterns = append(*patterns, map[string]interface{}{
		"type":              "if_chain",
		"line":              node.Location.StartLine,
		"checked_attribute": checked,
		"branch_count":      branchCount,
		"pattern_type":      patternType,
	})
}

// checkMatch reports match statements whose subject is a type code attribute
func (r *TypeCodeRule) checkMatch(node *parser.Node, className, funcName string, file *ParsedFile,
	result *domain.RuleResult, patterns *[]map[string]interface{}) {

	subject := node.Subject
	if subject == nil || subject.Type != parser.NodeAttribute || !typeCodeAttributes[strings.ToLower(subject.Name)] {
		return
	}
	numCases := len(node.Cases)
	if numCases < r.cfg.MinBranches {
		return
	}

	subjectStr := leftName(subject)
	result.Add(domain.Violation{
		RuleName: r.Name(),
		Message: fmt.Sprintf("Match statement on type code '%s' with %d cases. "+
			"Consider replacing with polymorphism.", subjectStr, numCases),
		FilePath: file.Path,
		Line:     node.Location.StartLine,
		Column:   node.Location.StartCol,
		Severity: domain.SeverityWarning,
		Suggestion: "Match statements on type codes can be replaced with polymorphism. " +
			"Each case can become a subclass or strategy that implements the behavior.",
		CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
		Metadata: map[string]interface{}{
			"pattern":    "match_type_code",
			"subject":    subjectStr,
			"case_count": numCases,
			"function":   funcMeta(funcName),
			"class":      funcMeta(className),
		},
	})
	*patterns = append(*patterns, map[string]interface{}{
		"type":       "match",
		"line":       node.Location.StartLine,
		"subject":    subjectStr,
		"case_count": numCases,
	})
}

// analyzeCondition inspects a single condition for a type code comparison,
// looking through boolean chains
func (r *TypeCodeRule) analyzeCondition(test *parser.Node, counts *typeCodeCounts) *branchInfo {
	if test == nil {
		return nil
	}
	switch test.Type {
	case parser.NodeCompare:
		return r.analyzeCompare(test, counts)
	case parser.NodeBoolOp:
		if len(test.Values) > 0 {
			return r.analyzeCondition(test.Values[0], counts)
		}
	}
	return nil
}

// analyzeCompare classifies a comparison as a type code check
func (r *TypeCodeRule) analyzeCompare(node *parser.Node, counts *typeCodeCounts) *branchInfo {
	left := node.Left

	if left != nil && left.Type == parser.NodeAttribute && typeCodeAttributes[strings.ToLower(left.Name)] {
		counts.typeAttr++
		return &branchInfo{
			checkedAttribute: fullAttributeName(left),
			comparedTo:       comparisonValue(node),
			patternType:      classifyComparison(node),
		}
	}

	if r.cfg.CheckConstants {
		for _, comp := range node.Comparators {
			if isConstantRef(comp) {
				counts.constant++
				return &branchInfo{
					checkedAttribute: leftName(left),
					comparedTo:       comp.Name,
					patternType:      "constant",
				}
			}
		}
	}

	if r.cfg.CheckEnums {
		for _, comp := range node.Comparators {
			if isEnumValue(comp) {
				counts.enum++
				return &branchInfo{
					checkedAttribute: leftName(left),
					comparedTo:       fullAttributeName(comp),
					patternType:      "enum",
				}
			}
		}
	}

	return nil
}

// isConstantRef reports whether a node is an ALL_CAPS name reference
func isConstantRef(node *parser.Node) bool {
	if node == nil || node.Type != parser.NodeName {
		return false
	}
	return len(node.Name) > 1 && isAllCapsName(node.Name)
}

// isEnumValue reports whether a node looks like EnumClass.VALUE
func isEnumValue(node *parser.Node) bool {
	if node == nil || node.Type != parser.NodeAttribute {
		return false
	}
	if node.Value == nil || node.Value.Type != parser.NodeName {
		return false
	}
	return node.Name != "" && (isAllCapsName(node.Name) || startsUpper(node.Name))
}

// leftName renders the left side of a comparison for messages
func leftName(node *parser.Node) string {
	if node == nil {
		return "<expression>"
	}
	switch node.Type {
	case parser.NodeName:
		return node.Name
	case parser.NodeAttribute:
		return fullAttributeName(node)
	}
	return "<expression>"
}

// comparisonValue renders the first comparator for messages
func comparisonValue(node *parser.Node) string {
	if len(node.Comparators) == 0 {
		return "<value>"
	}
	comp := node.Comparators[0]
	switch comp.Type {
	case parser.NodeName:
		return comp.Name
	case parser.NodeAttribute:
		return fullAttributeName(comp)
	case parser.NodeConstant:
		return constantRepr(comp)
	}
	return "<value>"
}

// constantRepr renders a literal the way Python repr() would
func constantRepr(node *parser.Node) string {
	switch node.Const {
	case parser.ConstString:
		return "'" + node.StrVal + "'"
	case parser.ConstBool:
		if node.BoolVal {
			return "True"
		}
		return "False"
	case parser.ConstNone:
		return "None"
	}
	return node.Raw
}

// classifyComparison classifies the first comparator of a type code check
func classifyComparison(node *parser.Node) string {
	if len(node.Comparators) == 0 {
		return "unknown"
	}
	comp := node.Comparators[0]
	switch comp.Type {
	case parser.NodeName:
		if isAllCapsName(comp.Name) {
			return "constant"
		}
	case parser.NodeAttribute:
		return "enum"
	case parser.NodeConstant:
		if comp.Const == parser.ConstString {
			return "string_literal"
		}
		return "literal"
	}
	return "unknown"
}
