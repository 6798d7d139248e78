package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// collectionHints are substrings of attribute names suggesting a mutable
// collection
var collectionHints = []string{
	"list", "items", "elements", "entries", "records", "data",
	"values", "keys", "children", "nodes", "cache", "buffer",
	"queue", "stack", "pool", "mapping", "dict", "set",
	"collection", "array",
}

// ReferenceExposureConfig holds the options of the reference exposure rule
type ReferenceExposureConfig struct {
	CheckProperties bool
	CheckGetters    bool
}

// DefaultReferenceExposureConfig returns the documented defaults
func DefaultReferenceExposureConfig() ReferenceExposureConfig {
	return ReferenceExposureConfig{
		CheckProperties: true,
		CheckGetters:    true,
	}
}

// ReferenceExposureRule detects methods and properties that return
// references to internal mutable state, letting callers modify object
// internals and break invariants.
type ReferenceExposureRule struct {
	cfg ReferenceExposureConfig
}

// NewReferenceExposureRule creates the rule with resolved options
func NewReferenceExposureRule(opts Options) *ReferenceExposureRule {
	cfg := DefaultReferenceExposureConfig()
	cfg.CheckProperties = opts.Bool("check_properties", cfg.CheckProperties)
	cfg.CheckGetters = opts.Bool("check_getters", cfg.CheckGetters)
	return &ReferenceExposureRule{cfg: cfg}
}

// Name returns the rule name
func (r *ReferenceExposureRule) Name() string { return "reference_exposure" }

// AnalyzeMultiple aggregates per-file results
func (r *ReferenceExposureRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// exposureCounts tallies exposure kinds for the summary
type exposureCounts struct {
	property int
	getter   int
}

// exposure describes one flagged return value
type exposure struct {
	kind      string
	attribute string
	isPrivate bool
}

// Analyze runs the rule over a single file
func (r *ReferenceExposureRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())
	counts := &exposureCounts{}
	var patterns []map[string]interface{}

	r.visit(file.Tree, "", file, result, counts, &patterns)

	result.Summary = map[string]interface{}{
		"total_exposures":    result.ViolationCount,
		"property_exposures": counts.property,
		"getter_exposures":   counts.getter,
	}
	result.Metadata = map[string]interface{}{
		"patterns": patterns,
	}
	return result, nil
}

// visit walks the tree threading the enclosing class name
func (r *ReferenceExposureRule) visit(node *parser.Node, className string, file *ParsedFile,
	result *domain.RuleResult, counts *exposureCounts, patterns *[]map[string]interface{}) {

	node.Walk(func(n *parser.Node) bool {
		if n == node {
			return true
		}
		switch n.Type {
		case parser.NodeClassDef:
			r.visit(n, n.Name, file, result, counts, patterns)
			return false
		case parser.NodeFunctionDef:
			if className != "" {
				isProperty := hasPropertyDecorator(n)
				if isProperty && r.cfg.CheckProperties {
					r.checkMethod(n, className, true, file, result, counts, patterns)
				} else if !isProperty && r.cfg.CheckGetters {
					r.checkMethod(n, className, false, file, result, counts, patterns)
				}
			}
			r.visit(n, className, file, result, counts, patterns)
			return false
		}
		return true
	})
}

// checkMethod flags return statements that expose internal state
func (r *ReferenceExposureRule) checkMethod(method *parser.Node, className string, isProperty bool,
	file *ParsedFile, result *domain.RuleResult, counts *exposureCounts, patterns *[]map[string]interface{}) {

	method.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeReturn || n.Value == nil {
			return true
		}
		exp := checkReturnValue(n.Value)
		if exp == nil {
			return true
		}

		methodType := "Method"
		if isProperty {
			counts.property++
			methodType = "Property"
		} else {
			counts.getter++
		}

		var message, suggestion string
		switch exp.kind {
		case "direct_return":
			message = fmt.Sprintf("%s '%s' returns internal attribute 'self.%s' directly. "+
				"This exposes internal state and may break encapsulation.", methodType, method.Name, exp.attribute)
			suggestion = fmt.Sprintf("Return a copy of the data instead: return self.%s.copy() for collections, "+
				"or return a defensive copy/immutable view. Consider if the data should be exposed at all.", exp.attribute)
		case "collection_return":
			message = fmt.Sprintf("%s '%s' appears to return a mutable collection 'self.%s'. "+
				"External code could modify internal state.", methodType, method.Name, exp.attribute)
			suggestion = fmt.Sprintf("Return a copy: return list(self.%s) or return self.%s.copy(). "+
				"For read-only access, consider returning a tuple or frozenset.", exp.attribute, exp.attribute)
		default:
			message = fmt.Sprintf("%s '%s' may expose internal state through 'self.%s'. "+
				"This could allow external modification of object internals.", methodType, method.Name, exp.attribute)
			suggestion = "Ensure you're returning a copy of mutable data, not a reference. " +
				"Consider using defensive copying or returning immutable types."
		}

		result.Add(domain.Violation{
			RuleName:    r.Name(),
			Message:     message,
			FilePath:    file.Path,
			Line:        n.Location.StartLine,
			Column:      n.Location.StartCol,
			Severity:    domain.SeverityWarning,
			Suggestion:  suggestion,
			CodeSnippet: sourceLine(file.Source, n.Location.StartLine),
			Metadata: map[string]interface{}{
				"pattern":       "reference_exposure",
				"method":        method.Name,
				"attribute":     exp.attribute,
				"exposure_type": exp.kind,
				"is_property":   isProperty,
				"class":         funcMeta(className),
			},
		})
		*patterns = append(*patterns, map[string]interface{}{
			"type":        exp.kind,
			"line":        n.Location.StartLine,
			"method":      method.Name,
			"attribute":   exp.attribute,
			"is_property": isProperty,
		})
		return true
	})
}

// checkReturnValue classifies a return expression as an exposure
func checkReturnValue(value *parser.Node) *exposure {
	// return self._attr
	if isSelfAttribute(value) && strings.HasPrefix(value.Name, "_") {
		return &exposure{kind: "direct_return", attribute: value.Name, isPrivate: true}
	}

	// return self._attr[key]
	if value.Type == parser.NodeSubscript && isSelfAttribute(value.Value) &&
		strings.HasPrefix(value.Value.Name, "_") {
		return &exposure{kind: "subscript_return", attribute: value.Value.Name, isPrivate: true}
	}

	// return self.attr where the name reads like a collection
	if isSelfAttribute(value) && looksLikeCollection(value.Name) {
		return &exposure{
			kind:      "collection_return",
			attribute: value.Name,
			isPrivate: strings.HasPrefix(value.Name, "_"),
		}
	}

	return nil
}

// isSelfAttribute reports whether a node is a plain self.x access
func isSelfAttribute(node *parser.Node) bool {
	return node != nil && node.Type == parser.NodeAttribute &&
		node.Value != nil && node.Value.Type == parser.NodeName && node.Value.Name == "self"
}

// hasPropertyDecorator checks for @property or @x.getter decorators. The
// builder wraps each decorator in a NodeDecorator carrying its dotted name.
func hasPropertyDecorator(fn *parser.Node) bool {
	for _, dec := range fn.Decorators {
		if dec.Type != parser.NodeDecorator {
			continue
		}
		if dec.Name == "property" || strings.HasSuffix(dec.Name, ".getter") {
			return true
		}
	}
	return false
}

// looksLikeCollection checks whether an attribute name suggests a mutable
// collection: plural names or names containing a collection word
func looksLikeCollection(name string) bool {
	lower := strings.TrimLeft(strings.ToLower(name), "_")
	if strings.HasSuffix(lower, "s") && len(lower) > 2 {
		return true
	}
	for _, hint := range collectionHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
