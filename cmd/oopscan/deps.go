package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/service"
)

var (
	depsDotFormat    bool
	depsOutputPath   string
	depsConfigPath   string
	depsInternalOnly bool
	depsMinImports   int
	depsNoLegend     bool
	depsRankDir      string
)

func depsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps [path...]",
		Short: "Show the module dependency graph",
		Long: `Analyze Python imports and show the project's module dependency graph.

Runs only the coupling rule, so it is fast even on large projects.

Examples:
  # Text summary of module dependencies
  oopscan deps src/

  # Generate DOT and render with Graphviz
  oopscan deps --dot src/ > deps.dot
  dot -Tpng deps.dot -o deps.png

  # Only project modules, left to right
  oopscan deps --dot --internal-only --rank-dir LR src/`,
		RunE:          runDeps,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolVar(&depsDotFormat, "dot", false,
		"Output Graphviz DOT instead of text")
	cmd.Flags().StringVarP(&depsOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringVarP(&depsConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVar(&depsInternalOnly, "internal-only", false,
		"Hide stdlib and external modules")
	cmd.Flags().IntVar(&depsMinImports, "min-imports", 0,
		"Only show imported modules used >= N times")
	cmd.Flags().BoolVar(&depsNoLegend, "no-legend", false,
		"Disable legend in DOT output")
	cmd.Flags().StringVar(&depsRankDir, "rank-dir", "LR",
		"Layout direction for DOT: TB, LR, BT, RL")

	return cmd
}

func runDeps(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &ExitError{Code: 2, Message: "no paths specified"}
	}

	req := domain.AnalysisRequest{
		Paths:        args,
		OutputFormat: domain.OutputFormatText,
		SelectRules:  []string{"coupling"},
		ConfigPath:   depsConfigPath,
		NoProgress:   true,
	}

	report, err := service.NewAnalysisService().Analyze(context.Background(), req)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	for _, rec := range report.Errors {
		fmt.Fprintf(os.Stderr, "Warning: [%s] %s (%s)\n", rec.Type, rec.Message, rec.FilePath)
	}

	result := report.Results["coupling"]
	if result == nil {
		return &ExitError{Code: 2, Message: "coupling analysis produced no result"}
	}

	var writer io.Writer = os.Stdout
	if depsOutputPath != "" {
		file, createErr := os.Create(depsOutputPath)
		if createErr != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("failed to create output file: %v", createErr)}
		}
		defer file.Close()
		writer = file
	}

	if depsDotFormat {
		cfg := service.DefaultDOTFormatterConfig()
		cfg.InternalOnly = depsInternalOnly
		cfg.MinImports = depsMinImports
		cfg.ShowLegend = !depsNoLegend
		cfg.RankDir = depsRankDir

		if err := service.NewDOTFormatter(cfg).WriteDependencyGraph(result, writer); err != nil {
			return &ExitError{Code: 2, Message: err.Error()}
		}
		return nil
	}

	return writeDepsText(result, writer, len(report.FilesAnalyzed))
}

// writeDepsText prints a plain dependency listing
func writeDepsText(result *domain.RuleResult, writer io.Writer, filesAnalyzed int) error {
	graph, ok := result.Metadata["dependency_graph"].(map[string][]string)
	if !ok {
		return &ExitError{Code: 2, Message: "coupling result carries no dependency graph"}
	}

	modules := make([]string, 0, len(graph))
	for module := range graph {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	fmt.Fprintf(writer, "Module dependencies (%d files analyzed)\n\n", filesAnalyzed)
	for _, module := range modules {
		fmt.Fprintf(writer, "%s\n", module)
		for _, dep := range graph[module] {
			fmt.Fprintf(writer, "  -> %s\n", dep)
		}
	}

	if chains, ok := result.Metadata["coupling_chains"].([][]string); ok && len(chains) > 0 {
		fmt.Fprintf(writer, "\nCoupling chains:\n")
		for _, chain := range chains {
			fmt.Fprintf(writer, "  %s\n", joinChain(chain))
		}
	}
	return nil
}

func joinChain(chain []string) string {
	out := ""
	for i, module := range chain {
		if i > 0 {
			out += " -> "
		}
		out += module
	}
	return out
}
