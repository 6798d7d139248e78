package analyzer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// DefaultMaxChainLength is the longest attribute chain tolerated before a
// Law of Demeter violation is reported
const DefaultMaxChainLength = 1

// commonModules are well-known stdlib modules whose attribute access is
// ordinary Python usage, never an encapsulation problem
var commonModules = map[string]bool{
	"os": true, "sys": true, "math": true, "typing": true,
	"collections": true, "functools": true,
}

// EncapsulationConfig holds the options of the encapsulation rule
type EncapsulationConfig struct {
	AllowSelfAccess      bool
	AllowPrivateAccess   bool
	AllowDunderAccess    bool
	MaxChainLength       int
	WarnDependencyAccess bool
}

// DefaultEncapsulationConfig returns the documented defaults
func DefaultEncapsulationConfig() EncapsulationConfig {
	return EncapsulationConfig{
		AllowSelfAccess:      true,
		AllowPrivateAccess:   false,
		AllowDunderAccess:    true,
		MaxChainLength:       DefaultMaxChainLength,
		WarnDependencyAccess: true,
	}
}

// EncapsulationRule detects direct property access on objects, the
// Tell Don't Ask violations. Method calls, self access, module attribute
// access and dunder access are tolerated.
type EncapsulationRule struct {
	cfg EncapsulationConfig
}

// NewEncapsulationRule creates the rule with resolved options
func NewEncapsulationRule(opts Options) *EncapsulationRule {
	cfg := DefaultEncapsulationConfig()
	cfg.AllowSelfAccess = opts.Bool("allow_self_access", cfg.AllowSelfAccess)
	cfg.AllowPrivateAccess = opts.Bool("allow_private_access", cfg.AllowPrivateAccess)
	cfg.AllowDunderAccess = opts.Bool("allow_dunder_access", cfg.AllowDunderAccess)
	cfg.MaxChainLength = opts.Int("max_chain_length", cfg.MaxChainLength)
	cfg.WarnDependencyAccess = opts.Bool("warn_dependency_access", cfg.WarnDependencyAccess)
	return &EncapsulationRule{cfg: cfg}
}

// Name returns the rule name
func (r *EncapsulationRule) Name() string { return "encapsulation" }

// AnalyzeMultiple aggregates per-file results
func (r *EncapsulationRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	return analyzeEach(r, files)
}

// Analyze runs the rule over a single file
func (r *EncapsulationRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	result := domain.NewRuleResult(r.Name())

	// First pass: collect imported names, call targets and class bases so
	// the attribute pass can tell method calls and module usage apart from
	// property access
	importedModules := map[string]bool{}
	callTargets := map[*parser.Node]bool{}
	classBases := map[*parser.Node]bool{}

	file.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeImport:
			for _, alias := range n.Names {
				name := alias.AsName
				if name == "" {
					name = strings.SplitN(alias.Name, ".", 2)[0]
				}
				importedModules[name] = true
			}
		case parser.NodeImportFrom:
			if n.Module != "" {
				for _, alias := range n.Names {
					if alias.AsName != "" {
						importedModules[alias.AsName] = true
					} else {
						importedModules[alias.Name] = true
					}
				}
			}
		case parser.NodeCall:
			if n.Func != nil && n.Func.Type == parser.NodeAttribute {
				callTargets[n.Func] = true
			}
		case parser.NodeClassDef:
			for _, base := range n.Bases {
				markClassBase(base, classBases)
			}
		}
		return true
	})

	moduleAccessSkipped := 0

	file.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeAttribute {
			return true
		}
		if callTargets[n] {
			return true
		}
		if classBases[n] {
			moduleAccessSkipped++
			return true
		}

		chain := attributeChain(n)
		if len(chain) == 0 {
			return true
		}
		baseName := chain[0]
		attrNames := chain[1:]

		if r.cfg.AllowSelfAccess && (baseName == "self" || baseName == "cls") {
			return true
		}

		// Module attribute access like json.JSONEncoder or errno.EEXIST is
		// normal Python usage
		if importedModules[baseName] && len(attrNames) == 1 && startsUpper(attrNames[0]) {
			moduleAccessSkipped++
			return true
		}

		if r.cfg.AllowDunderAccess && anyDunder(attrNames) {
			return true
		}
		if r.cfg.AllowPrivateAccess && anyPrivate(attrNames) {
			return true
		}

		if len(attrNames) > 0 {
			if v := r.buildViolation(n, baseName, attrNames, file); v != nil {
				result.Add(*v)
			}
		}
		return true
	})

	result.Summary = map[string]interface{}{
		"total_violations":      result.ViolationCount,
		"files_analyzed":        1,
		"module_access_skipped": moduleAccessSkipped,
	}
	return result, nil
}

// buildViolation creates the violation for one flagged attribute access
func (r *EncapsulationRule) buildViolation(n *parser.Node, baseName string, attrNames []string, file *ParsedFile) *domain.Violation {
	// All-caps trailing attribute looks like a constant
	if isConstantName(attrNames[len(attrNames)-1]) {
		return nil
	}
	if commonModules[baseName] {
		return nil
	}

	fullAccess := baseName + "." + strings.Join(attrNames, ".")

	var message, suggestion string
	if len(attrNames) > r.cfg.MaxChainLength {
		message = fmt.Sprintf("Long attribute chain detected: '%s'. "+
			"This violates the Law of Demeter. Consider using delegation.", fullAccess)
		suggestion = fmt.Sprintf("Instead of accessing '%s', consider adding a method "+
			"to '%s' that encapsulates this behavior.", fullAccess, baseName)
	} else {
		message = fmt.Sprintf("Direct property access: '%s'. "+
			"Consider using a method instead (Tell Don't Ask).", fullAccess)
		suggestion = fmt.Sprintf("Instead of accessing '%s.%s', "+
			"consider telling '%s' what to do with a method call.", baseName, attrNames[0], baseName)
	}

	return &domain.Violation{
		RuleName:    r.Name(),
		Message:     message,
		FilePath:    file.Path,
		Line:        n.Location.StartLine,
		Column:      n.Location.StartCol,
		Severity:    domain.SeverityWarning,
		Suggestion:  suggestion,
		CodeSnippet: sourceLine(file.Source, n.Location.StartLine),
		Metadata: map[string]interface{}{
			"base_object":         baseName,
			"accessed_attributes": attrNames,
			"chain_length":        len(attrNames),
		},
	}
}

// attributeChain flattens obj.prop1.prop2 into ["obj", "prop1", "prop2"].
// A chain rooted in anything but a plain name returns nil.
func attributeChain(node *parser.Node) []string {
	var reversed []string
	current := node
	for current != nil && current.Type == parser.NodeAttribute {
		reversed = append(reversed, current.Name)
		current = current.Value
	}
	if current == nil || current.Type != parser.NodeName {
		return nil
	}
	reversed = append(reversed, current.Name)

	chain := make([]string, len(reversed))
	for i, s := range reversed {
		chain[len(reversed)-1-i] = s
	}
	return chain
}

// markClassBase marks a class base expression and its attribute chain
func markClassBase(node *parser.Node, bases map[*parser.Node]bool) {
	if node == nil {
		return
	}
	bases[node] = true
	if node.Type == parser.NodeAttribute {
		markClassBase(node.Value, bases)
	}
}

func anyDunder(names []string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, "__") && strings.HasSuffix(n, "__") {
			return true
		}
	}
	return false
}

func anyPrivate(names []string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, "_") {
			return true
		}
	}
	return false
}

// isConstantName reports whether a name is all uppercase letters and
// underscores
func isConstantName(name string) bool {
	for _, r := range name {
		if r != '_' && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func startsUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
