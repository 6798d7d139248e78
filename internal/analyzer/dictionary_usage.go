package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// DefaultMinDictKeys is the minimum number of fixed string keys before a
// dictionary is considered structured data
const DefaultMinDictKeys = 2

// apiBoundaryPatterns are name fragments suggesting code at an API boundary
// where dictionaries are acceptable
var apiBoundaryPatterns = []string{
	"response", "request", "payload", "json", "data", "body",
	"parse", "serialize", "deserialize", "to_dict", "from_dict",
	"to_json", "from_json", "api", "http", "rest", "rpc",
}

// dictParamAllowlist are parameter names where a dict hint is ordinary usage
var dictParamAllowlist = map[string]bool{
	"self": true, "cls": true, "kwargs": true, "options": true, "config": true,
}

// DictionaryUsageConfig holds the options of the dictionary usage rule
type DictionaryUsageConfig struct {
	MinDictKeys        int
	CheckReturnDicts   bool
	CheckDictParams    bool
	CheckDictAccess    bool
	AllowAPIBoundaries bool
}

// DefaultDictionaryUsageConfig returns the documented defaults
func DefaultDictionaryUsageConfig() DictionaryUsageConfig {
	return DictionaryUsageConfig{
		MinDictKeys:        DefaultMinDictKeys,
		CheckReturnDicts:   true,
		CheckDictParams:    true,
		CheckDictAccess:    true,
		AllowAPIBoundaries: true,
	}
}

// DictionaryUsageRule detects dictionaries standing in for proper objects:
// dict literals with fixed keys, Dict type hints on parameters and returns,
// and repeated string-key access on one variable. Code whose name suggests
// an API boundary is exempt.
type DictionaryUsageRule struct {
	cfg DictionaryUsageConfig
}

// NewDictionaryUsageRule creates the rule with resolved options
func NewDictionaryUsageRule(opts Options) *DictionaryUsageRule {
	cfg := DefaultDictionaryUsageConfig()
	cfg.MinDictKeys = opts.Int("min_dict_keys", cfg.MinDictKeys)
	cfg.CheckReturnDicts = opts.Bool("check_return_dicts", cfg.CheckReturnDicts)
	cfg.CheckDictParams = opts.Bool("check_dict_params", cfg.CheckDictParams)
	cfg.CheckDictAccess = opts.Bool("check_dict_access", cfg.CheckDictAccess)
	cfg.AllowAPIBoundaries = opts.Bool("allow_api_boundaries", cfg.AllowAPIBoundaries)
	return &DictionaryUsageRule{cfg: cfg}
}

// Name returns the rule name
func (r *DictionaryUsageRule) Name() string { return "dictionary_usage" }

// AnalyzeMultiple aggregates per-file results
func (r *DictionaryUsageRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// dictCounts tallies violation kinds for the summary
type dictCounts struct {
	returns  int
	params   int
	accesses int
	literals int
}

// dictCtx is the traversal context of the dictionary usage rule
type dictCtx struct {
	className string
	funcName  string
	boundary  bool
	// accesses maps a variable name to the string keys it was indexed with
	// inside the current function
	accesses map[string][]string
}

// Analyze runs the rule over a single file
func (r *DictionaryUsageRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &dictCounts{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, dictCtx{}, file, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_dict_violations":   result.ViolationCount,
		"dict_return_violations":  counts.returns,
		"dict_param_violations":   counts.params,
		"dict_access_violations":  counts.accesses,
		"dict_literal_violations": counts.literals,
	}
	result.Metadata = map[string]interface{}{
		"patterns": patterns,
	}
	return result, nil
}

// visit walks the tree threading class, function and boundary context
func (r *DictionaryUsageRule) visit(node *parser.Node, ctx dictCtx, file *ParsedFile,
	result *domain.RuleResult, counts *dictCounts, patterns *[]map[string]interface{}) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeClassDef:
			next := ctx
			next.className = n.Name
			r.visit(n, next, file, result, counts, patterns)
			return false
		case parser.NodeFunctionDef:
			r.checkFunction(n, ctx, file, result, counts, patterns)
			return false
		case parser.NodeReturn:
			if r.cfg.CheckReturnDicts && !ctx.boundary && n.Value != nil && n.Value.Type == parser.NodeDict {
				if keys := dictStringKeys(n.Value); len(keys) >= r.cfg.MinDictKeys {
					r.addDictReturn(n, keys, ctx, file, result, counts, patterns)
				}
			}
		case parser.NodeAssign:
			if n.Value != nil && n.Value.Type == parser.NodeDict && !ctx.boundary {
				if keys := dictStringKeys(n.Value); len(keys) >= r.cfg.MinDictKeys {
					r.addDictLiteral(n, keys, ctx, file, result, counts, patterns)
				}
			}
		case parser.NodeSubscript:
			if ctx.accesses != nil && n.Slice != nil && n.Slice.Type == parser.NodeConstant &&
				n.Slice.Const == parser.ConstString &&
				n.Value != nil && n.Value.Type == parser.NodeName {
				ctx.accesses[n.Value.Name] = append(ctx.accesses[n.Value.Name], n.Slice.StrVal)
			}
		}
		return true
	})
}

// checkFunction analyzes one function: its type hints, its body and its
// dict key access patterns
func (r *DictionaryUsageRule) checkFunction(fn *parser.Node, outer dictCtx, file *ParsedFile,
	result *domain.RuleResult, counts *dictCounts, patterns *[]map[string]interface{}) {

	ctx := dictCtx{
		className: outer.className,
		funcName:  fn.Name,
		boundary:  r.isAPIBoundary(fn.Name, outer.className),
		accesses:  map[string][]string{},
	}

	if r.cfg.CheckReturnDicts && !ctx.boundary && fn.Returns != nil && isDictTypeHint(fn.Returns) {
		counts.params++
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Function '%s' uses Dict type hint for return. "+
				"Consider using a typed object instead.", fn.Name),
			FilePath: file.Path,
			Line:     fn.Location.StartLine,
			Column:   fn.Location.StartCol,
			Severity: domain.SeverityInfo,
			Suggestion: "Using Dict[str, Any] loses type information. Consider defining " +
				"a dataclass, TypedDict, or Pydantic model for structured data.",
			CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":  "dict_type_hint",
				"context":  "return",
				"function": fn.Name,
				"class":    funcMeta(outer.className),
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type":    "dict_type_hint",
			"line":    fn.Location.StartLine,
			"context": "return",
		})
	}

	if r.cfg.CheckDictParams && !ctx.boundary && fn.Args != nil {
		for _, p := range fn.Args.Args {
			if p.Annotation == nil || !isDictTypeHint(p.Annotation) || dictParamAllowlist[p.Name] {
				continue
			}
			counts.params++
			result.Add(domain.Violation{
				RuleName: r.Name(),
				Message: fmt.Sprintf("Parameter '%s' in function '%s' uses Dict type hint. "+
					"Consider using a typed object for structured data.", p.Name, fn.Name),
				FilePath: file.Path,
				Line:     p.Location.StartLine,
				Column:   p.Location.StartCol,
				Severity: domain.SeverityWarning,
				Suggestion: fmt.Sprintf("Instead of passing a dict, define a dataclass or Pydantic model "+
					"that represents the expected structure of '%s'.", p.Name),
				CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
				Metadata: map[string]interface{}{
					"pattern":   "dict_param",
					"parameter": p.Name,
					"function":  fn.Name,
					"class":     funcMeta(outer.className),
				},
			})
			*patterns = append(*patterns, map[string]interface{}{
				"type":      "dict_param",
				"line":      p.Location.StartLine,
				"parameter": p.Name,
			})
		}
	}

	r.visit(fn, ctx, file, result, counts, patterns)

	if r.cfg.CheckDictAccess && !ctx.boundary {
		vars := make([]string, 0, len(ctx.accesses))
		for name := range ctx.accesses {
			vars = append(vars, name)
		}
		sort.Strings(vars)
		for _, name := range vars {
			unique := uniqueSorted(ctx.accesses[name])
			if len(unique) < r.cfg.MinDictKeys {
				continue
			}
			counts.accesses++
			result.Add(domain.Violation{
				RuleName: r.Name(),
				Message: fmt.Sprintf("Variable '%s' accessed with multiple string keys [%s] "+
					"in function '%s'. This suggests structured data.", name, quoteKeys(unique), fn.Name),
				FilePath: file.Path,
				Line:     fn.Location.StartLine,
				Column:   fn.Location.StartCol,
				Severity: domain.SeverityInfo,
				Suggestion: fmt.Sprintf("If '%s' has a known structure, consider converting it to "+
					"a dataclass or typed object for better type safety and IDE support.", name),
				CodeSnippet: sourceLine(file.Source, fn.Location.StartLine),
				Metadata: map[string]interface{}{
					"pattern":  "dict_access",
					"variable": name,
					"keys":     unique,
					"function": fn.Name,
					"class":    funcMeta(outer.className),
				},
			})
			*patterns = append(*patterns, map[string]interface{}{
				"type":     "dict_access",
				"line":     fn.Location.StartLine,
				"variable": name,
				"keys":     unique,
			})
		}
	}
}

// addDictReturn reports a function returning a dict literal with fixed keys
func (r *DictionaryUsageRule) addDictReturn(node *parser.Node, keys []string, ctx dictCtx,
	file *ParsedFile, result *domain.RuleResult, counts *dictCounts, patterns *[]map[string]interface{}) {

	counts.returns++
	result.Add(domain.Violation{
		RuleName: r.Name(),
		Message: fmt.Sprintf("Function '%s' returns a dict literal with "+
			"fixed keys [%s]. Consider using a dataclass or typed object.", ctx.funcName, quoteKeys(keys)),
		FilePath: file.Path,
		Line:     node.Location.StartLine,
		Column:   node.Location.StartCol,
		Severity: domain.SeverityWarning,
		Suggestion: "Replace the dictionary with a dataclass, NamedTuple, or Pydantic model. " +
			"This provides type safety, IDE support, and clearer API contracts.",
		CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
		Metadata: map[string]interface{}{
			"pattern":  "dict_return",
			"keys":     keys,
			"function": funcMeta(ctx.funcName),
			"class":    funcMeta(ctx.className),
		},
	})
	*patterns = append(*patterns, map[string]interface{}{
		"type": "dict_return",
		"line": node.Location.StartLine,
		"keys": keys,
	})
}

// addDictLiteral reports a dict literal with fixed keys assigned to a
// variable
func (r *DictionaryUsageRule) addDictLiteral(node *parser.Node, keys []string, ctx dictCtx,
	file *ParsedFile, result *domain.RuleResult, counts *dictCounts, patterns *[]map[string]interface{}) {

	counts.literals++
	varName := "<variable>"
	if len(node.Targets) > 0 && node.Targets[0].Type == parser.NodeName {
		varName = node.Targets[0].Name
	}

	result.Add(domain.Violation{
		RuleName: r.Name(),
		Message: fmt.Sprintf("Dict literal assigned to '%s' with fixed keys [%s]. "+
			"Consider using a dataclass or typed object instead.", varName, quoteKeys(keys)),
		FilePath: file.Path,
		Line:     node.Location.StartLine,
		Column:   node.Location.StartCol,
		Severity: domain.SeverityInfo,
		Suggestion: "If this dictionary represents structured data with known keys, " +
			"consider using a dataclass or NamedTuple for better type safety.",
		CodeSnippet: sourceLine(file.Source, node.Location.StartLine),
		Metadata: map[string]interface{}{
			"pattern":  "dict_literal",
			"keys":     keys,
			"variable": varName,
			"function": funcMeta(ctx.funcName),
			"class":    funcMeta(ctx.className),
		},
	})
	*patterns = append(*patterns, map[string]interface{}{
		"type": "dict_literal",
		"line": node.Location.StartLine,
		"keys": keys,
	})
}

// isAPIBoundary checks whether the function or class name suggests API
// boundary code
func (r *DictionaryUsageRule) isAPIBoundary(funcName, className string) bool {
	if !r.cfg.AllowAPIBoundaries || funcName == "" {
		return false
	}
	lower := strings.ToLower(funcName)
	for _, pattern := range apiBoundaryPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	if className != "" {
		classLower := strings.ToLower(className)
		for _, pattern := range apiBoundaryPatterns {
			if strings.Contains(classLower, pattern) {
				return true
			}
		}
	}
	return false
}

// isDictTypeHint checks whether a type hint is dict, Dict or a
// parameterized form of either
func isDictTypeHint(node *parser.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case parser.NodeName:
		return node.Name == "dict" || node.Name == "Dict"
	case parser.NodeSubscript:
		if node.Value == nil {
			return false
		}
		if node.Value.Type == parser.NodeName {
			return node.Value.Name == "dict" || node.Value.Name == "Dict"
		}
		if node.Value.Type == parser.NodeAttribute {
			return node.Value.Name == "Dict"
		}
	}
	return false
}

// dictStringKeys extracts the string keys of a dict literal
func dictStringKeys(node *parser.Node) []string {
	var keys []string
	for _, key := range node.Keys {
		if key != nil && key.Type == parser.NodeConstant && key.Const == parser.ConstString {
			keys = append(keys, key.StrVal)
		}
	}
	return keys
}

// quoteKeys renders up to five keys for a message
func quoteKeys(keys []string) string {
	shown := keys
	if len(shown) > 5 {
		shown = shown[:5]
	}
	quoted := make([]string, len(shown))
	for i, k := range shown {
		quoted[i] = "'" + k + "'"
	}
	s := strings.Join(quoted, ", ")
	if len(keys) > 5 {
		s += ", ..."
	}
	return s
}

// uniqueSorted deduplicates a string slice and sorts it
func uniqueSorted(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
