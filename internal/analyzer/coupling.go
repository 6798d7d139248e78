package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/parser"
)

// Default coupling rule thresholds
const (
	// DefaultMaxImportsWarning is the import count above which a single
	// module is flagged as highly coupled
	DefaultMaxImportsWarning = 10

	// DefaultMaxCouplingDepth bounds the dependency chain search depth
	DefaultMaxCouplingDepth = 5

	// externalImportThreshold flags third-party modules imported this often
	externalImportThreshold = 3

	// stdlibImportThreshold flags stdlib modules imported this often
	stdlibImportThreshold = 5

	// maxChainsCollected caps the dependency chain search so pathological
	// graphs cannot blow up the analysis
	maxChainsCollected = 200
)

// stdlibModules lists Python standard library top-level modules
var stdlibModules = map[string]bool{
	"abc": true, "aifc": true, "argparse": true, "array": true, "ast": true,
	"asynchat": true, "asyncio": true, "asyncore": true, "atexit": true,
	"audioop": true, "base64": true, "bdb": true, "binascii": true,
	"binhex": true, "bisect": true, "builtins": true, "bz2": true,
	"calendar": true, "cgi": true, "cgitb": true, "chunk": true,
	"cmath": true, "cmd": true, "code": true, "codecs": true, "codeop": true,
	"collections": true, "colorsys": true, "compileall": true,
	"concurrent": true, "configparser": true, "contextlib": true,
	"contextvars": true, "copy": true, "copyreg": true, "cProfile": true,
	"crypt": true, "csv": true, "ctypes": true, "curses": true,
	"dataclasses": true, "datetime": true, "dbm": true, "decimal": true,
	"difflib": true, "dis": true, "distutils": true, "doctest": true,
	"email": true, "encodings": true, "enum": true, "errno": true,
	"faulthandler": true, "fcntl": true, "filecmp": true, "fileinput": true,
	"fnmatch": true, "fractions": true, "ftplib": true, "functools": true,
	"gc": true, "getopt": true, "getpass": true, "gettext": true,
	"glob": true, "graphlib": true, "grp": true, "gzip": true,
	"hashlib": true, "heapq": true, "hmac": true, "html": true, "http": true,
	"idlelib": true, "imaplib": true, "imghdr": true, "imp": true,
	"importlib": true, "inspect": true, "io": true, "ipaddress": true,
	"itertools": true, "json": true, "keyword": true, "lib2to3": true,
	"linecache": true, "locale": true, "logging": true, "lzma": true,
	"mailbox": true, "mailcap": true, "marshal": true, "math": true,
	"mimetypes": true, "mmap": true, "modulefinder": true,
	"multiprocessing": true, "netrc": true, "nis": true, "nntplib": true,
	"numbers": true, "operator": true, "optparse": true, "os": true,
	"ossaudiodev": true, "pathlib": true, "pdb": true, "pickle": true,
	"pickletools": true, "pipes": true, "pkgutil": true, "platform": true,
	"plistlib": true, "poplib": true, "posix": true, "posixpath": true,
	"pprint": true, "profile": true, "pstats": true, "pty": true,
	"pwd": true, "py_compile": true, "pyclbr": true, "pydoc": true,
	"queue": true, "quopri": true, "random": true, "re": true,
	"readline": true, "reprlib": true, "resource": true, "rlcompleter": true,
	"runpy": true, "sched": true, "secrets": true, "select": true,
	"selectors": true, "shelve": true, "shlex": true, "shutil": true,
	"signal": true, "site": true, "smtpd": true, "smtplib": true,
	"sndhdr": true, "socket": true, "socketserver": true, "spwd": true,
	"sqlite3": true, "ssl": true, "stat": true, "statistics": true,
	"string": true, "stringprep": true, "struct": true, "subprocess": true,
	"sunau": true, "symtable": true, "sys": true, "sysconfig": true,
	"syslog": true, "tabnanny": true, "tarfile": true, "telnetlib": true,
	"tempfile": true, "termios": true, "test": true, "textwrap": true,
	"threading": true, "time": true, "timeit": true, "tkinter": true,
	"token": true, "tokenize": true, "tomllib": true, "trace": true,
	"traceback": true, "tracemalloc": true, "tty": true, "turtle": true,
	"turtledemo": true, "types": true, "typing": true, "unicodedata": true,
	"unittest": true, "urllib": true, "uu": true, "uuid": true, "venv": true,
	"warnings": true, "wave": true, "weakref": true, "webbrowser": true,
	"winreg": true, "winsound": true, "wsgiref": true, "xdrlib": true,
	"xml": true, "xmlrpc": true, "zipapp": true, "zipfile": true,
	"zipimport": true, "zlib": true, "zoneinfo": true,
}

// CouplingConfig holds the options of the coupling rule
type CouplingConfig struct {
	MaxImportsWarning int
	MaxCouplingDepth  int
}

// DefaultCouplingConfig returns the documented defaults
func DefaultCouplingConfig() CouplingConfig {
	return CouplingConfig{
		MaxImportsWarning: DefaultMaxImportsWarning,
		MaxCouplingDepth:  DefaultMaxCouplingDepth,
	}
}

// CouplingRule measures coupling by building a dependency graph from import
// statements. It flags import-heavy modules, frequently imported external
// and stdlib dependencies, and long dependency chains.
type CouplingRule struct {
	cfg CouplingConfig
}

// NewCouplingRule creates the rule with resolved options
func NewCouplingRule(opts Options) *CouplingRule {
	cfg := DefaultCouplingConfig()
	cfg.MaxImportsWarning = opts.Int("max_imports_warning", cfg.MaxImportsWarning)
	cfg.MaxCouplingDepth = opts.Int("max_coupling_depth", cfg.MaxCouplingDepth)
	return &CouplingRule{cfg: cfg}
}

// Name returns the rule name
func (r *CouplingRule) Name() string { return "coupling" }

// ImportLocation records where a module was imported
type ImportLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// ImportDetail records one import statement
type ImportDetail struct {
	Module     string   `json:"module"`
	Names      []string `json:"names"`
	Line       int      `json:"line"`
	File       string   `json:"file"`
	IsRelative bool     `json:"is_relative"`
	Type       string   `json:"type"`
}

// ModuleCount pairs a module name with its import frequency
type ModuleCount struct {
	Module string `json:"module"`
	Count  int    `json:"count"`
}

// fileImports is the import inventory of one file
type fileImports struct {
	imports   []string
	internal  []string
	stdlib    []string
	external  []string
	details   []ImportDetail
	locations map[string][]ImportLocation
}

// Analyze runs the rule over a single file
func (r *CouplingRule) Analyze(file *ParsedFile) (*domain.RuleResult, error) {
	inv := collectImports(file)
	result := domain.NewRuleResult(r.Name())

	total := len(inv.imports)
	if total > r.cfg.MaxImportsWarning {
		result.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("High coupling detected: %d imports. "+
				"Consider breaking this module into smaller pieces.", total),
			FilePath: file.Path,
			Line:     1,
			Severity: domain.SeverityWarning,
			Suggestion: "High number of imports often indicates a module is doing too much. " +
				"Consider applying the Single Responsibility Principle.",
			Metadata: map[string]interface{}{"import_count": total},
		})
	}

	result.Summary = map[string]interface{}{
		"total_imports":    total,
		"internal_imports": len(inv.internal),
		"stdlib_imports":   len(inv.stdlib),
		"external_imports": len(inv.external),
	}
	result.Metadata = map[string]interface{}{
		"imports":          inv.imports,
		"internal_imports": inv.internal,
		"stdlib_imports":   inv.stdlib,
		"external_imports": inv.external,
		"import_details":   inv.details,
		"import_locations": inv.locations,
	}
	return result, nil
}

// AnalyzeMultiple builds the full dependency graph. Coupling is a cross-file
// property, so this is where the real analysis happens.
func (r *CouplingRule) AnalyzeMultiple(files []*ParsedFile) (*domain.RuleResult, error) {
	combined := domain.NewRuleResult(r.Name())

	dependencyGraph := map[string]map[string]bool{}
	importFrequency := map[string]int{}
	externalDeps := map[string]int{}
	stdlibDeps := map[string]int{}
	internalDeps := map[string]int{}
	fileImportLists := map[string][]string{}
	allLocations := map[string][]ImportLocation{}

	// Collect internal module names including parent packages
	internalModules := map[string]bool{}
	for _, file := range files {
		moduleName := fileToModule(file.Path)
		if moduleName == "" {
			continue
		}
		internalModules[moduleName] = true
		parts := strings.Split(moduleName, ".")
		for i := 1; i < len(parts); i++ {
			internalModules[strings.Join(parts[:i], ".")] = true
		}
	}

	for _, file := range files {
		perFile, err := r.Analyze(file)
		if err != nil {
			return nil, err
		}
		for _, v := range perFile.Violations {
			combined.Add(v)
		}

		moduleName := fileToModule(file.Path)
		if moduleName == "" {
			moduleName = file.Path
		}

		inv := collectImports(file)
		fileImportLists[file.Path] = inv.imports
		for mod, locs := range inv.locations {
			allLocations[mod] = append(allLocations[mod], locs...)
		}

		for _, detail := range inv.details {
			if dependencyGraph[moduleName] == nil {
				dependencyGraph[moduleName] = map[string]bool{}
			}
			dependencyGraph[moduleName][detail.Module] = true
			importFrequency[detail.Module]++

			switch {
			case detail.Type == "internal" || isInternalModule(detail.Module, internalModules):
				internalDeps[detail.Module]++
			case detail.Type == "stdlib":
				stdlibDeps[detail.Module]++
			default:
				externalDeps[detail.Module]++
			}
		}
	}

	mostUsed := topModules(importFrequency, 10)
	mostUsedExternal := topModules(externalDeps, 10)
	mostUsedStdlib := topModules(stdlibDeps, 10)
	mostUsedInternal := topModules(internalDeps, 10)

	chains := r.findCouplingChains(dependencyGraph)

	for _, mc := range mostUsedExternal {
		if mc.Count < externalImportThreshold {
			continue
		}
		locations := allLocations[mc.Module]
		combined.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("External dependency '%s' is imported %d times. "+
				"High coupling to third-party libraries increases risk.", mc.Module, mc.Count),
			FilePath: "<project>",
			Line:     0,
			Severity: domain.SeverityWarning,
			Suggestion: fmt.Sprintf("Consider wrapping '%s' behind an abstraction/interface "+
				"to reduce coupling to external dependencies.", mc.Module),
			CodeSnippet: "Imported at: " + formatLocations(locations),
			Metadata: map[string]interface{}{
				"module":       mc.Module,
				"import_count": mc.Count,
				"type":         "external",
				"locations":    locations,
			},
		})
	}

	for _, mc := range mostUsedStdlib {
		if mc.Count < stdlibImportThreshold {
			continue
		}
		locations := allLocations[mc.Module]
		combined.Add(domain.Violation{
			RuleName: r.Name(),
			Message: fmt.Sprintf("Standard library module '%s' is imported %d times. "+
				"Consider if an abstraction would help.", mc.Module, mc.Count),
			FilePath: "<project>",
			Line:     0,
			Severity: domain.SeverityInfo,
			Suggestion: fmt.Sprintf("While stdlib dependencies are stable, high usage of '%s' "+
				"might still benefit from a wrapper for testability.", mc.Module),
			CodeSnippet: "Imported at: " + formatLocations(locations),
			Metadata: map[string]interface{}{
				"module":       mc.Module,
				"import_count": mc.Count,
				"type":         "stdlib",
				"locations":    locations,
			},
		})
	}

	graphLists := map[string][]string{}
	for mod, deps := range dependencyGraph {
		graphLists[mod] = sortedKeys(deps)
	}

	combined.Summary = map[string]interface{}{
		"total_files":           len(files),
		"total_unique_imports":  len(importFrequency),
		"external_dependencies": len(externalDeps),
		"stdlib_dependencies":   len(stdlibDeps),
		"internal_dependencies": len(internalDeps),
		"most_used_modules":     mostUsed,
		"most_used_external":    mostUsedExternal,
		"most_used_stdlib":      mostUsedStdlib,
		"most_used_internal":    mostUsedInternal,
	}
	combined.Metadata = map[string]interface{}{
		"dependency_graph": graphLists,
		"import_frequency": importFrequency,
		"external_deps":    externalDeps,
		"stdlib_deps":      stdlibDeps,
		"internal_deps":    internalDeps,
		"coupling_chains":  chains,
		"file_imports":     fileImportLists,
		"import_locations": allLocations,
	}
	return combined, nil
}

// collectImports gathers every import statement of a file
func collectImports(file *ParsedFile) *fileImports {
	inv := &fileImports{locations: map[string][]ImportLocation{}}

	file.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeImport:
			for _, alias := range n.Names {
				inv.record(alias.Name, n.Location.StartLine, file.Path, nil, 0)
			}
		case parser.NodeImportFrom:
			names := make([]string, len(n.Names))
			for i, alias := range n.Names {
				names[i] = alias.Name
			}
			inv.record(n.Module, n.Location.StartLine, file.Path, names, n.Level)
		}
		return true
	})
	return inv
}

// record classifies one import as internal, stdlib or external
func (inv *fileImports) record(module string, line int, filePath string, names []string, level int) {
	if names == nil {
		names = []string{}
	}

	if level > 0 {
		module = strings.Repeat(".", level) + module
		inv.imports = append(inv.imports, module)
		inv.internal = append(inv.internal, module)
		inv.locations[module] = append(inv.locations[module], ImportLocation{File: filePath, Line: line})
		inv.details = append(inv.details, ImportDetail{
			Module:     module,
			Names:      names,
			Line:       line,
			File:       filePath,
			IsRelative: true,
			Type:       "internal",
		})
		return
	}

	inv.imports = append(inv.imports, module)
	inv.locations[module] = append(inv.locations[module], ImportLocation{File: filePath, Line: line})

	base := strings.SplitN(module, ".", 2)[0]
	importType := "external"
	switch {
	case stdlibModules[base]:
		importType = "stdlib"
		inv.stdlib = append(inv.stdlib, module)
	default:
		inv.external = append(inv.external, module)
	}

	inv.details = append(inv.details, ImportDetail{
		Module:     module,
		Names:      names,
		Line:       line,
		File:       filePath,
		IsRelative: false,
		Type:       importType,
	})
}

// fileToModule converts a file path to a short module name. Only the last
// two path components are kept so results read the same regardless of where
// the project root sits.
func fileToModule(filePath string) string {
	if !strings.HasSuffix(filePath, ".py") {
		return ""
	}
	modulePath := strings.TrimSuffix(filePath, ".py")
	moduleName := strings.NewReplacer("/", ".", "\\", ".").Replace(modulePath)
	moduleName = strings.TrimSuffix(moduleName, ".__init__")

	parts := strings.Split(moduleName, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// isInternalModule checks whether a module belongs to the analyzed project
func isInternalModule(module string, internalModules map[string]bool) bool {
	if internalModules[module] {
		return true
	}
	for internal := range internalModules {
		if strings.HasPrefix(module, internal+".") {
			return true
		}
	}
	return false
}

// findCouplingChains finds dependency chains of three or more modules via
// depth-first search. The search is bounded so dense graphs stay cheap; the
// longest chains win.
func (r *CouplingRule) findCouplingChains(graph map[string]map[string]bool) [][]string {
	var chains [][]string

	var dfs func(node string, path []string, visited map[string]bool)
	dfs = func(node string, path []string, visited map[string]bool) {
		if len(chains) >= maxChainsCollected {
			return
		}
		if len(path) > r.cfg.MaxCouplingDepth {
			return
		}
		if visited[node] {
			return
		}
		visited[node] = true
		path = append(path, node)

		for _, neighbor := range sortedKeys(graph[node]) {
			if !visited[neighbor] {
				branchVisited := map[string]bool{}
				for k := range visited {
					branchVisited[k] = true
				}
				dfs(neighbor, append([]string(nil), path...), branchVisited)
			}
		}

		if len(path) >= 3 {
			chains = append(chains, path)
		}
	}

	starts := make([]string, 0, len(graph))
	for node := range graph {
		starts = append(starts, node)
	}
	sort.Strings(starts)
	for _, start := range starts {
		dfs(start, nil, map[string]bool{})
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return len(chains[i]) > len(chains[j])
	})
	if len(chains) > 20 {
		chains = chains[:20]
	}
	return chains
}

// topModules returns the n most frequent modules, most frequent first.
// Ties break alphabetically so output is deterministic.
func topModules(freq map[string]int, n int) []ModuleCount {
	out := make([]ModuleCount, 0, len(freq))
	for mod, count := range freq {
		out = append(out, ModuleCount{Module: mod, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Module < out[j].Module
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// formatLocations renders the first five import locations
func formatLocations(locations []ImportLocation) string {
	shown := locations
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, loc := range shown {
		parts[i] = fmt.Sprintf("%s:%d", loc.File, loc.Line)
	}
	s := strings.Join(parts, ", ")
	if len(locations) > 5 {
		s += fmt.Sprintf(" (+%d more)", len(locations)-5)
	}
	return s
}

// sortedKeys returns map keys in sorted order
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
