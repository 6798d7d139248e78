package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/oopscan/domain"
)

// DOTFormatterConfig configures the DOT formatter behavior
type DOTFormatterConfig struct {
	// ShowLegend includes a legend subgraph
	ShowLegend bool

	// InternalOnly hides stdlib and external modules
	InternalOnly bool

	// MinImports hides imported modules used fewer than N times (0 = show all)
	MinImports int

	// RankDir is the layout direction: TB, LR, BT, RL
	RankDir string
}

// DefaultDOTFormatterConfig returns a DOTFormatterConfig with sensible defaults
func DefaultDOTFormatterConfig() *DOTFormatterConfig {
	return &DOTFormatterConfig{
		ShowLegend: true,
		RankDir:    "LR",
	}
}

// DOTFormatter renders the coupling rule's module dependency graph as DOT
// for Graphviz
type DOTFormatter struct {
	config *DOTFormatterConfig
}

// NewDOTFormatter creates a new DOT formatter with the given configuration
func NewDOTFormatter(config *DOTFormatterConfig) *DOTFormatter {
	if config == nil {
		config = DefaultDOTFormatterConfig()
	}
	return &DOTFormatter{config: config}
}

// Module kinds as used for node coloring
const (
	moduleKindInternal = "internal"
	moduleKindStdlib   = "stdlib"
	moduleKindExternal = "external"
)

// nodeColors defines the color scheme per module kind
var nodeColors = map[string]struct {
	fill   string
	border string
}{
	moduleKindInternal: {fill: "#90EE90", border: "#228B22"},
	moduleKindStdlib:   {fill: "#D3D3D3", border: "#696969"},
	moduleKindExternal: {fill: "#FFD700", border: "#FFA500"},
}

// validRankDirs contains the valid Graphviz rank directions
var validRankDirs = map[string]bool{
	"TB": true,
	"LR": true,
	"BT": true,
	"RL": true,
}

// dependencyGraphData is the coupling metadata the formatter draws from
type dependencyGraphData struct {
	graph     map[string][]string
	frequency map[string]int
	internal  map[string]int
	stdlib    map[string]int
	chains    [][]string
}

// FormatDependencyGraph formats a coupling result as DOT and returns the string
func (f *DOTFormatter) FormatDependencyGraph(result *domain.RuleResult) (string, error) {
	var sb strings.Builder
	if err := f.WriteDependencyGraph(result, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteDependencyGraph writes a coupling result's dependency graph as DOT to
// the writer. The result must come from the coupling rule's project-wide
// analysis.
func (f *DOTFormatter) WriteDependencyGraph(result *domain.RuleResult, writer io.Writer) error {
	data, err := extractGraphData(result)
	if err != nil {
		return err
	}
	if !validRankDirs[f.config.RankDir] {
		return fmt.Errorf("invalid rank direction %q: must be one of TB, LR, BT, RL", f.config.RankDir)
	}

	nodes := f.filterNodes(data)

	fmt.Fprintf(writer, "/* oopscan module dependency graph - Generated: %s */\n",
		time.Now().Format(time.RFC3339))
	fmt.Fprintln(writer, "digraph dependencies {")
	fmt.Fprintf(writer, "    rankdir=%s;\n", f.config.RankDir)
	fmt.Fprintln(writer, "    node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];")
	fmt.Fprintln(writer, "    edge [fontname=\"Helvetica\", fontsize=10];")

	if len(nodes) == 0 {
		fmt.Fprintln(writer, "    /* No modules match the filter criteria */")
		fmt.Fprintln(writer, "}")
		return nil
	}

	fmt.Fprintln(writer)
	for _, module := range sortedModuleNames(nodes) {
		colors := nodeColors[data.kindOf(module)]
		fmt.Fprintf(writer, "    %s [label=%s, fillcolor=%q, color=%q];\n",
			dotID(module), dotID(module), colors.fill, colors.border)
	}

	chainEdges := chainEdgeSet(data.chains)

	fmt.Fprintln(writer)
	for _, from := range sortedModuleNames(nodes) {
		// Dependency lists in the metadata are already sorted
		for _, to := range data.graph[from] {
			if !nodes[to] {
				continue
			}
			attrs := ""
			if chainEdges[from+" -> "+to] {
				attrs = " [color=\"#DC143C\", penwidth=2]"
			}
			fmt.Fprintf(writer, "    %s -> %s%s;\n", dotID(from), dotID(to), attrs)
		}
	}

	if f.config.ShowLegend {
		f.writeLegend(writer)
	}

	fmt.Fprintln(writer, "}")
	return nil
}

// extractGraphData pulls the dependency graph out of a coupling rule result
func extractGraphData(result *domain.RuleResult) (*dependencyGraphData, error) {
	if result == nil || result.Metadata == nil {
		return nil, fmt.Errorf("result carries no dependency graph")
	}
	graph, ok := result.Metadata["dependency_graph"].(map[string][]string)
	if !ok {
		return nil, fmt.Errorf("result carries no dependency graph")
	}

	data := &dependencyGraphData{graph: graph}
	data.frequency, _ = result.Metadata["import_frequency"].(map[string]int)
	data.internal, _ = result.Metadata["internal_deps"].(map[string]int)
	data.stdlib, _ = result.Metadata["stdlib_deps"].(map[string]int)
	data.chains, _ = result.Metadata["coupling_chains"].([][]string)
	return data, nil
}

// kindOf classifies a module for coloring. Modules that appear as graph
// sources are project modules even when nothing imports them.
func (d *dependencyGraphData) kindOf(module string) string {
	if _, ok := d.graph[module]; ok {
		return moduleKindInternal
	}
	if d.internal[module] > 0 {
		return moduleKindInternal
	}
	if d.stdlib[module] > 0 {
		return moduleKindStdlib
	}
	return moduleKindExternal
}

// filterNodes collects the modules that pass the configured filters
func (f *DOTFormatter) filterNodes(data *dependencyGraphData) map[string]bool {
	nodes := map[string]bool{}

	include := func(module string, isSource bool) bool {
		if f.config.InternalOnly && data.kindOf(module) != moduleKindInternal {
			return false
		}
		// Source modules always pass the frequency filter
		if !isSource && f.config.MinImports > 0 && data.frequency[module] < f.config.MinImports {
			return false
		}
		return true
	}

	for from, deps := range data.graph {
		if !include(from, true) {
			continue
		}
		nodes[from] = true
		for _, to := range deps {
			if include(to, false) {
				nodes[to] = true
			}
		}
	}
	return nodes
}

// chainEdgeSet marks the edges that belong to a coupling chain
func chainEdgeSet(chains [][]string) map[string]bool {
	edges := map[string]bool{}
	for _, chain := range chains {
		for i := 0; i+1 < len(chain); i++ {
			edges[chain[i]+" -> "+chain[i+1]] = true
		}
	}
	return edges
}

func (f *DOTFormatter) writeLegend(writer io.Writer) {
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "    subgraph cluster_legend {")
	fmt.Fprintln(writer, "        label=\"Legend\";")
	fmt.Fprintln(writer, "        style=dashed;")
	fmt.Fprintf(writer, "        legend_internal [label=\"project module\", fillcolor=%q];\n",
		nodeColors[moduleKindInternal].fill)
	fmt.Fprintf(writer, "        legend_stdlib [label=\"stdlib module\", fillcolor=%q];\n",
		nodeColors[moduleKindStdlib].fill)
	fmt.Fprintf(writer, "        legend_external [label=\"external module\", fillcolor=%q];\n",
		nodeColors[moduleKindExternal].fill)
	fmt.Fprintln(writer, "    }")
}

func sortedModuleNames(nodes map[string]bool) []string {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dotID quotes a module name as a DOT identifier
func dotID(module string) string {
	return `"` + strings.ReplaceAll(module, `"`, `\"`) + `"`
}
