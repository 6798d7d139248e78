package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// DefaultMinBranches is the branch count above which an if/elif chain or
// match statement is considered a polymorphism opportunity
const DefaultMinBranches = 3

// typeAttributes are attribute names whose comparison suggests type-based
// branching
var typeAttributes = map[string]bool{
	"type": true, "kind": true, "category": true,
	"variant": true, "mode": true, "status": true,
}

// PolymorphismConfig holds the options of the polymorphism rule
type PolymorphismConfig struct {
	MinBranches         int
	CheckIsinstance     bool
	CheckTypeAttributes bool
}

// DefaultPolymorphismConfig returns the documented defaults
func DefaultPolymorphismConfig() PolymorphismConfig {
	return PolymorphismConfig{
		MinBranches:         DefaultMinBranches,
		CheckIsinstance:     true,
		CheckTypeAttributes: true,
	}
}

// PolymorphismRule detects if blocks replaceable by polymorphism: long
// if/elif chains checking the same variable, isinstance() checks,
// type/kind attribute comparisons, and wide match statements.
type PolymorphismRule struct {
	cfg PolymorphismConfig
}

// NewPolymorphismRule creates the rule with resolved options
func NewPolymorphismRule(opts Options) *PolymorphismRule {
	cfg := DefaultPolymorphismConfig()
	cfg.MinBranches = opts.Int("min_branches", cfg.MinBranches)
	cfg.CheckIsinstance = opts.Bool("check_isinstance", cfg.CheckIsinstance)
	cfg.CheckTypeAttributes = opts.Bool("check_type_attributes", cfg.CheckTypeAttributes)
	return &PolymorphismRule{cfg: cfg}
}

// Name returns the rule name
func (r *PolymorphismRule) Name() string { return "polymorphism" }

// AnalyzeMultiple aggregates per-file results
func (r *PolymorphismRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// polyCounts tallies pattern kinds for the summary
type polyCounts struct {
	isinstance int
	typeAttr   int
	longChain  int
}

// Analyze runs the rule over a single file
func (r *PolymorphismRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &polyCounts{}
	seen := map[*parser.Node]bool{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, "", "", file, seen, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_opportunities":   result.ViolationCount,
		"isinstance_checks":     counts.isinstance,
		"type_attribute_checks": counts.typeAttr,
		"long_if_chains":        counts.longChain,
	}
	result.Metadata = map[string]interface{}{
		"patterns": patterns,
	}
	return result, nil
}

// visit walks the tree threading the enclosing class and function names
func (r *PolymorphismRule) visit(node *parser.Node, className, funcName string, file *ParsedFile,
	seen map[*parser.Node]bool, result *domain.RuleResult, counts *polyCounts, patterns *[]map[string]interface{}) {

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
			r.checkIf(n, className, funcName, file, seen, result, counts, patterns)
		case parser.NodeMatch:
			r.checkMatch(n, className, funcName, file, result, patterns)
		}
		return true
	})
}

// checkIf analyzes one if statement for polymorphism opportunities
func (r *PolymorphismRule) checkIf(node *parser.Node, className, funcName string, file *ParsedFile,
	seen map[*parser.Node]bool, result *domain.RuleResult, counts *polyCounts, patterns *[]map[string]interface{}) {

	branches := countBranches(node)
	if branches >= r.cfg.MinBranches && !seen[node] {
		markChain(node, seen)
		if variable, ok := r.chainPattern(node); ok {
			counts.longChain++
			result.Add(domain.Violation{
				RuleName: r.Name(),
				Message: fmt.Sprintf("Long if/elif chain with %d branches checking '%s'. "+
					"Consider replacing with polymorphism.", branches, variable),
				FilePath: file.Path,
				Line:     node.Location.StartLine,
				Column:   node.Location.StartCol,
				Severity: domain.SeverityWarning,
				Suggestion: fmt.Sprintf("This if/elif chain could be replaced with polymorphism. "+
					"Consider using Strategy pattern, State pattern, or simple "+
					"method dispatch based on the value of '%s'.", variable),
				CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
				Metadata: map[string]interface{}{
					"pattern":          "long_if_chain",
					"branches":         branches,
					"checked_variable": variable,
					"function":         funcMeta(funcName),
					"class":            funcMeta(className),
				},
			})
			*patterns = append(*patterns, map[string]interface{}{
				"type":     "long_if_chain",
				"branches": branches,
				"variable": variable,
				"line":     node.Location.StartLine,
			})
		}
	}

	if r.cfg.CheckIsinstance && containsIsinstance(node.Test) {
		counts.isinstance++
		result.Add(domain.Violation{
			RuleName:    r.Name(),
			Message:     "isinstance() check detected. This often indicates a need for polymorphism.",
			FilePath:    file.Path,
			Line:        node.Location.StartLine,
			Column:      node.Location.StartCol,
			Severity:    domain.SeverityWarning,
			Suggestion: "Instead of checking types with isinstance(), consider " +
				"using polymorphism. Define a common interface/base class " +
				"and let each type implement its own behavior.",
			CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":  "isinstance_check",
				"function": funcMeta(funcName),
				"class":    funcMeta(className),
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type": "isinstance",
			"line": node.Location.StartLine,
		})
	}

	if r.cfg.CheckTypeAttributes {
		if attrName := typeAttributeCheck(node.Test); attrName != "" {
			counts.typeAttr++
			last := attrName
			if i := strings.LastIndex(attrName, "."); i >= 0 {
				last = attrName[i+1:]
			}
			result.Add(domain.Violation{
				RuleName: r.Name(),
				Message: fmt.Sprintf("Checking '%s' attribute suggests type-based branching. "+
					"Consider using polymorphism instead.", attrName),
				FilePath: file.Path,
				Line:     node.Location.StartLine,
				Column:   node.Location.StartCol,
				Severity: domain.SeverityWarning,
				Suggestion: fmt.Sprintf("Instead of checking the '%s' attribute, "+
					"consider using polymorphism. Create subclasses that implement "+
					"the behavior directly.", last),
				CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
				Metadata: map[string]interface{}{
					"pattern":   "type_attribute",
					"attribute": attrName,
					"function":  funcMeta(funcName),
					"class":     funcMeta(className),
				},
			})
			*patterns = append(*patterns, map[string]interface{}{
				"type":      "type_attribute",
				"attribute": attrName,
				"line":      node.Location.StartLine,
			})
		}
	}
}

// checkMatch reports wide match statements
func (r *PolymorphismRule) checkMatch(node *parser.Node, className, funcName string, file *ParsedFile,
	result *domain.RuleResult, patterns *[]map[string]interface{}) {

	numCases := len(node.Cases)
	if numCases < r.cfg.MinBranches {
		return
	}

	result.Add(domain.Violation{
		RuleName: r.Name(),
		Message: fmt.Sprintf("Match statement with %d cases. "+
			"Consider if polymorphism would be more appropriate.", numCases),
		FilePath: file.Path,
		Line:     node.Location.StartLine,
		Column:   node.Location.StartCol,
		Severity: domain.SeverityInfo,
		Suggestion: "While match statements are useful, many cases might indicate " +
			"an opportunity for polymorphism where each case becomes a class.",
		CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
		Metadata: map[string]interface{}{
			"pattern":  "match_statement",
			"cases":    numCases,
			"function": funcMeta(funcName),
			"class":    funcMeta(className),
		},
	})
	*patterns = append(*patterns, map[string]interface{}{
		"type":  "match_statement",
		"cases": numCases,
		"line":  node.Location.StartLine,
	})
}

// markChain records the elif continuations of a chain so they are not
// re-reported as shorter chains when the walk reaches them
func markChain(node *parser.Node, seen map[*parser.Node]bool) {
	current := node
	for len(current.OrElse) == 1 && current.OrElse[0].Type == parser.NodeIf {
		current = current.OrElse[0]
		seen[current] = true
	}
}

// countBranches counts the branches of an if/elif chain including a final
// else clause
func countBranches(node *parser.Node) int {
	count := 1
	current := node
	for len(current.OrElse) > 0 {
		if len(current.OrElse) == 1 && current.OrElse[0].Type == parser.NodeIf {
			count++
			current = current.OrElse[0]
		} else {
			count++
			break
		}
	}
	return count
}

// chainPattern reports whether the if/elif chain consistently checks one
// variable. At least 70% of branches must check the same variable.
func (r *PolymorphismRule) chainPattern(node *parser.Node) (variable string, ok bool) {
	var checked []string

	current := node
	for current != nil {
		if v := checkedVariable(current.Test); v != "" {
			checked = append(checked, v)
		}
		if len(current.OrElse) == 1 && current.OrElse[0].Type == parser.NodeIf {
			current = current.OrElse[0]
		} else {
			break
		}
	}

	if len(checked) == 0 {
		return "", false
	}

	counter := map[string]int{}
	for _, v := range checked {
		counter[v]++
	}
	if len(counter) == 1 {
		return checked[0], true
	}

	best, bestCount := "", 0
	for v, c := range counter {
		if c > bestCount {
			best, bestCount = v, c
		}
	}
	if float64(bestCount) >= float64(len(checked))*0.7 {
		return best, true
	}
	return "", false
}

// checkedVariable extracts the variable a condition is checking
func checkedVariable(test *parser.Node) string {
	if test == nil {
		return ""
	}
	switch test.Type {
	case parser.NodeCompare:
		left := test.Left
		if left == nil {
			return ""
		}
		if left.Type == parser.NodeAttribute {
			return fullAttributeName(left)
		}
		if left.Type == parser.NodeName {
			return left.Name
		}
	case parser.NodeCall:
		if test.Func != nil && test.Func.Type == parser.NodeName && test.Func.Name == "isinstance" {
			if len(test.CallArgs) > 0 && test.CallArgs[0].Type == parser.NodeName {
				return test.CallArgs[0].Name
			}
		}
	case parser.NodeBoolOp:
		if len(test.Values) > 0 {
			return checkedVariable(test.Values[0])
		}
	}
	return ""
}

// fullAttributeName renders obj.type as "obj.type". Chains rooted in
// anything but a plain name keep only the attribute parts.
func fullAttributeName(node *parser.Node) string {
	var reversed []string
	current := node
	for current != nil && current.Type == parser.NodeAttribute {
		reversed = append(reversed, current.Name)
		current = current.Value
	}
	if current != nil && current.Type == parser.NodeName {
		reversed = append(reversed, current.Name)
	}

	parts := make([]string, len(reversed))
	for i, s := range reversed {
		parts[len(reversed)-1-i] = s
	}
	return strings.Join(parts, ".")
}

// containsIsinstance checks whether an expression contains an isinstance()
// call, looking through boolean chains and negations
func containsIsinstance(node *parser.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case parser.NodeCall:
		return node.Func != nil && node.Func.Type == parser.NodeName && node.Func.Name == "isinstance"
	case parser.NodeBoolOp:
		for _, v := range node.Values {
			if containsIsinstance(v) {
				return true
			}
		}
	case parser.NodeUnaryOp:
		return containsIsinstance(node.Operand)
	}
	return false
}

// typeAttributeCheck returns the full attribute name when a condition
// compares a type-like attribute
func typeAttributeCheck(node *parser.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case parser.NodeCompare:
		left := node.Left
		if left != nil && left.Type == parser.NodeAttribute && typeAttributes[strings.ToLower(left.Name)] {
			return fullAttributeName(left)
		}
	case parser.NodeBoolOp:
		for _, v := range node.Values {
			if result := typeAttributeCheck(v); result != "" {
				return result
			}
		}
	}
	return ""
}
