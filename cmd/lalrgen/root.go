package main

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// tracer traces with key 'lalrgen.cli'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.cli")
}

var traceKeys = []string{"lalrgen.cli", "lalrgen.lr", "lalrgen.scanner", "lalrgen.grammarfile"}

var rootFlags = struct {
	trace *string
	start *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lalrgen",
	Short: "Generate LALR(1) parsing tables and parse input with them",
	Long: `lalrgen provides three features:
- Builds an LALR(1) parsing table from a grammar file, reporting conflicts.
- Parses input with the table of a grammar.
- Parses input lines interactively.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupTracing,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().StringP("trace", "t", "Error", "trace level [Debug|Info|Error]")
	rootFlags.start = rootCmd.PersistentFlags().String("start", "", "start symbol of an EBNF grammar (default first production)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupTracing(cmd *cobra.Command, args []string) error {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	level := tracing.TraceLevelFromString(*rootFlags.trace)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Infof("Trace level is %s", *rootFlags.trace)
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
