package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/npillmayer/lalrgen/lr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tableFlags = struct {
	out      *string
	html     *string
	dot      *string
	strict   *bool
	fallback *bool
	dump     *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "table <grammar file path>",
		Short:   "Build the LALR(1) parsing table of a grammar",
		Example: `  lalrgen table grammar.toml --out grammar.lalr`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTable,
	}
	tableFlags.out = cmd.Flags().StringP("out", "o", "", "write the binary table to this file")
	tableFlags.html = cmd.Flags().String("html", "", "write the table as HTML to this file")
	tableFlags.dot = cmd.Flags().String("dot", "", "write the CFSM in Graphviz format to this file")
	tableFlags.strict = cmd.Flags().Bool("strict", false, "fail if the grammar has conflicts")
	tableFlags.fallback = cmd.Flags().Bool("eof-fallback", true, "reduce on end of input where the table has no entry")
	tableFlags.dump = cmd.Flags().Bool("dump", false, "print the table")
	rootCmd.AddCommand(cmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	src, err := loadGrammar(args[0], *rootFlags.start)
	if err != nil {
		return err
	}
	lrgen := lr.NewTableGenerator(lr.Analysis(src.g),
		lr.StrictConflicts(*tableFlags.strict), lr.EOFFallback(*tableFlags.fallback))
	err = lrgen.CreateTables()
	if lrgen.HasConflicts {
		printConflicts(lrgen.Conflicts())
	}
	if err != nil {
		return err
	}
	table := lrgen.Table()
	pterm.Success.Printf("grammar %s: %d rules, %d symbols, %d states, %d conflicts\n",
		src.g.Name, src.g.Size(), table.SymbolCount(), table.States(), table.ConflictCount())
	if *tableFlags.dump {
		printTable(table)
	}
	if *tableFlags.out != "" {
		data, err := table.MarshalBinary()
		if err != nil {
			return err
		}
		if err = os.WriteFile(*tableFlags.out, data, 0644); err != nil {
			return err
		}
		tracer().Infof("table written to %s", *tableFlags.out)
	}
	if *tableFlags.html != "" {
		if err = writeFile(*tableFlags.html, func(f *os.File) error {
			return lr.ActionTableAsHTML(lrgen, f)
		}); err != nil {
			return err
		}
	}
	if *tableFlags.dot != "" {
		if err = writeFile(*tableFlags.dot, func(f *os.File) error {
			return lrgen.CFSM().CFSM2GraphViz(f)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = write(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}

func printConflicts(conflicts []lr.Conflict) {
	data := pterm.TableData{{"state", "symbol", "conflict", "chosen", "dropped"}}
	for _, c := range conflicts {
		data = append(data, []string{
			strconv.Itoa(c.State), c.Symbol.Name, c.Type.String(), c.Winner.String(), c.Loser.String(),
		})
	}
	pterm.Warning.Printf("%d conflicts\n", len(conflicts))
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printTable(table *lr.ParsingTable) {
	header := []string{"state"}
	for sym := 0; sym < table.SymbolCount(); sym++ {
		header = append(header, table.SymbolName(sym))
	}
	data := pterm.TableData{header}
	for state := 0; state < table.States(); state++ {
		row := []string{strconv.Itoa(state)}
		for sym := 0; sym < table.SymbolCount(); sym++ {
			if a := table.Action(state, sym); a.IsNone() {
				row = append(row, "")
			} else {
				row = append(row, a.String())
			}
		}
		data = append(data, row)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
