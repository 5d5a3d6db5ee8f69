package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/lalr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	table  *string
	tree   *bool
	limit  *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path> [input]",
		Short: "Parse input with the table of a grammar",
		Example: `  lalrgen parse expr.ebnf "a + b * c"
  cat src | lalrgen parse grammar.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default: arguments or stdin)")
	parseFlags.table = cmd.Flags().String("table", "", "use a table written by 'lalrgen table --out'")
	parseFlags.tree = cmd.Flags().Bool("tree", false, "print the parse tree")
	parseFlags.limit = cmd.Flags().Int("step-limit", lalr.DefaultStepLimit, "maximum number of parser steps")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	src, err := loadGrammar(args[0], *rootFlags.start)
	if err != nil {
		return err
	}
	table, err := tableFor(src, *parseFlags.table)
	if err != nil {
		return err
	}
	input, err := parseInput(args[1:])
	if err != nil {
		return err
	}
	p := lalr.NewParser(table, lalr.StepLimit(*parseFlags.limit))
	return parseAndReport(src, table, p, input, *parseFlags.tree)
}

// tableFor loads a table from a file or builds it from a grammar.
func tableFor(src *grammarSource, path string) (*lr.ParsingTable, error) {
	if path == "" {
		table, _, err := lr.Build(src.g)
		return table, err
	}
	table, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if table.Name() != src.g.Name || table.RuleCount() != src.g.Size() {
		return nil, fmt.Errorf("table %s has not been built from grammar %s", path, src.path)
	}
	return table, nil
}

func parseInput(args []string) (string, error) {
	if *parseFlags.source != "" {
		data, err := os.ReadFile(*parseFlags.source)
		return string(data), err
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	return string(data), err
}

func parseAndReport(src *grammarSource, table *lr.ParsingTable, p *lalr.Parser,
	input string, tree bool) error {
	//
	scan, err := src.tokenizer(input)
	if err != nil {
		return err
	}
	var scanErr error
	scan.SetErrorHandler(func(e error) {
		pterm.Error.Println(e.Error())
		scanErr = e
	})
	accept, err := p.Parse(scan)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	st := p.Stats()
	if !accept || scanErr != nil {
		return fmt.Errorf("input not accepted")
	}
	pterm.Success.Printf("accepted: %d shifts, %d reductions, %d steps\n", st.Shifts, st.Reduces, st.Steps)
	if tree {
		root := pterm.NewTreeFromLeveledList(derivationTree(table, p.Derivation()))
		pterm.DefaultTree.WithRoot(root).Render()
	}
	return nil
}
