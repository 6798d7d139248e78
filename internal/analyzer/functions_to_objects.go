package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// DefaultMaxParams is the parameter count above which a function is flagged
// as wanting to be an object
const DefaultMaxParams = 4

// FunctionsToObjectsConfig holds the options of the functions to objects
// rule
type FunctionsToObjectsConfig struct {
	MaxParams             int
	CheckDictReturns      bool
	CheckRelatedFunctions bool
}

// DefaultFunctionsToObjectsConfig returns the documented defaults
func DefaultFunctionsToObjectsConfig() FunctionsToObjectsConfig {
	return FunctionsToObjectsConfig{
		MaxParams:             DefaultMaxParams,
		CheckDictReturns:      true,
		CheckRelatedFunctions: true,
	}
}

// FunctionsToObjectsRule detects standalone functions that could be objects:
// functions with many parameters, functions returning dictionaries, and
// groups of functions sharing a name prefix.
type FunctionsToObjectsRule struct {
	cfg FunctionsToObjectsConfig
}

// NewFunctionsToObjectsRule creates the rule with resolved options
func NewFunctionsToObjectsRule(opts Options) *FunctionsToObjectsRule {
	cfg := DefaultFunctionsToObjectsConfig()
	cfg.MaxParams = opts.Int("max_params", cfg.MaxParams)
	cfg.CheckDictReturns = opts.Bool("check_dict_returns", cfg.CheckDictReturns)
	cfg.CheckRelatedFunctions = opts.Bool("check_related_functions", cfg.CheckRelatedFunctions)
	return &FunctionsToObjectsRule{cfg: cfg}
}

// Name returns the rule name
func (r *FunctionsToObjectsRule) Name() string { return "functions_to_objects" }

// AnalyzeMultiple aggregates per-file results
func (r *FunctionsToObjectsRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// FunctionInfo describes one module-level function
type FunctionInfo struct {
	Name        string `json:"name"`
	Line        int    `json:"line"`
	Params      int    `json:"params"`
	ReturnsDict bool   `json:"returns_dict"`
	IsPrivate   bool   `json:"is_private"`
	IsAsync     bool   `json:"is_async,omitempty"`
}

// Analyze runs the rule over a single file
func (r *FunctionsToObjectsRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())

	var functions []FunctionInfo
	manyParams := 0
	dictReturns := 0

	r.visit(file.Tree, false, file, result, &functions, &manyParams, &dictReturns)

	groups := findFunctionGroups(functions)
	if r.cfg.CheckRelatedFunctions {
		r.addRelatedFunctionViolations(groups, file, result)
	}

	result.Summary = map[string]interface{}{
		"total_functions":            len(functions),
		"functions_with_many_params": manyParams,
		"functions_returning_dicts":  dictReturns,
		"related_function_groups":    len(groups),
	}
	result.Metadata = map[string]interface{}{
		"functions":       functions,
		"function_groups": groups,
	}
	return result, nil
}

// visit walks the tree. Functions inside classes are methods and skipped;
// nested standalone functions are still analyzed.
func (r *FunctionsToObjectsRule) visit(node *parser.Node, inClass bool, file *ParsedFile,
	result *domain.RuleResult, functions *[]FunctionInfo, manyParams, dictReturns *int) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeClassDef:
			r.visit(n, true, file, result, functions, manyParams, dictReturns)
			return false
		case parser.NodeFunctionDef:
			if !inClass {
				r.checkFunction(n, file, result, functions, manyParams, dictReturns)
			}
			r.visit(n, inClass, file, result, functions, manyParams, dictReturns)
			return false
		}
		return true
	})
}

// checkFunction records one standalone function and flags it when needed
func (r *FunctionsToObjectsRule) checkFunction(fn *parser.Node, file *ParsedFile,
	result *domain.RuleResult, functions *[]FunctionInfo, manyParams, dictReturns *int) {

	isPrivate := strings.HasPrefix(fn.Name, "_")
	numParams := countParams(fn)
	returnsDict := r.cfg.CheckDictReturns && returnsDictLiteral(fn)

	*functions = append(*functions, FunctionInfo{
		Name:        fn.Name,
		Line:        fn.Location.StartLine,
		Params:      numParams,
		ReturnsDict: returnsDict,
		IsPrivate:   isPrivate,
		IsAsync:     fn.Async,
	})

	if numParams > r.cfg.MaxParams && !isPrivate {
		*manyParams++
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Function '%s' has %d parameters. "+
				"Consider converting to a class.", fn.Name, numParams),
			FilePath: file.Path,
			Line:     fn.Location.StartLine,
			Column:   fn.Location.StartCol,
			Severity: domain.SeverityInfo,
			Suggestion: "Functions with many parameters often indicate the need for an object. " +
				"Consider creating a class where parameters become attributes, " +
				"and the function becomes a method.",
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":     "many_parameters",
				"function":    fn.Name,
				"param_count": numParams,
			},
		})
	}

	if returnsDict && !isPrivate {
		*dictReturns++
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Function '%s' returns a dictionary. "+
				"Consider using a dataclass or named tuple instead.", fn.Name),
			FilePath: file.Path,
			Line:     fn.Location.StartLine,
			Column:   fn.Location.StartCol,
			Severity: domain.SeverityInfo,
			Suggestion: "Returning dictionaries loses type information and makes code " +
				"harder to maintain. Consider using a dataclass, named tuple, " +
				"or a proper class to represent the returned data.",
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":  "dict_return",
				"function": fn.Name,
			},
		})
	}
}

// addRelatedFunctionViolations flags groups of three or more functions
// sharing a prefix
func (r *FunctionsToObjectsRule) addRelatedFunctionViolations(groups map[string][]FunctionInfo,
	file *ParsedFile, result *domain.RuleResult) {

	prefixes := make([]string, 0, len(groups))
	for prefix := range groups {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		group := groups[prefix]
		if len(group) < 3 {
			continue
		}

		names := make([]string, len(group))
		firstLine := group[0].Line
		for i, fn := range group {
			names[i] = fn.Name
			if fn.Line < firstLine {
				firstLine = fn.Line
			}
		}

		shown := names
		ellipsis := ""
		if len(shown) > 5 {
			shown = shown[:5]
			ellipsis = "..."
		}

		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Found %d related functions with prefix '%s_': %s%s. "+
				"Consider grouping into a class.", len(group), prefix, strings.Join(shown, ", "), ellipsis),
			FilePath: file.Path,
			Line:     firstLine,
			Column:   0,
			Severity: domain.SeverityInfo,
			Suggestion: fmt.Sprintf("These functions appear related. Consider creating a class "+
				"'%s' with these as methods.", capitalize(prefix)),
			Metadata: map[string]interface{}{
				"pattern":   "related_functions",
				"prefix":    prefix,
				"functions": names,
			},
		})
	}
}

// findFunctionGroups groups public functions by their first name segment.
// Only prefixes of three or more characters count, and only groups with at
// least two members are kept.
func findFunctionGroups(functions []FunctionInfo) map[string][]FunctionInfo {
	groups := map[string][]FunctionInfo{}
	for _, fn := range functions {
		if strings.HasPrefix(fn.Name, "_") {
			continue
		}
		parts := strings.Split(fn.Name, "_")
		if len(parts) < 2 {
			continue
		}
		prefix := parts[0]
		if len(prefix) >= 3 {
			groups[prefix] = append(groups[prefix], fn)
		}
	}
	for prefix, group := range groups {
		if len(group) < 2 {
			delete(groups, prefix)
		}
	}
	return groups
}

// capitalize upper-cases the first letter of a name
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// countParams counts positional, keyword-only, vararg and kwarg parameters
func countParams(fn *parser.Node) int {
	if fn.Args == nil {
		return 0
	}
	return fn.Args.Total()
}

// returnsDictLiteral checks whether any return statement yields a dict
// literal or a dict() call
func returnsDictLiteral(fn *parser.Node) bool {
	found := false
	fn.Walk(func(n *parser.Node) bool {
		if found {
			return false
		}
		if n.Type != parser.NodeReturn || n.Value == nil {
			return true
		}
		if n.Value.Type == parser.NodeDict {
			found = true
			return false
		}
		if n.Value.Type == parser.NodeCall && n.Value.Func != nil &&
			n.Value.Func.Type == parser.NodeName && n.Value.Func.Name == "dict" {
			found = true
			return false
		}
		return true
	})
	return found
}
