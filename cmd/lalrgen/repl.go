package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/lalr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl <grammar file path>",
		Short: "Parse input lines interactively",
		Long: `repl reads input lines and parses each of them with the table of a grammar.
Lines starting with ':' are commands:
  :tree    toggle display of parse trees
  :rules   list the rules of the grammar
  :table   print the parsing table
  :quit    leave`,
		Args: cobra.ExactArgs(1),
		RunE: runREPL,
	}
	rootCmd.AddCommand(cmd)
}

// Intp is our interpreter object.
type Intp struct {
	src    *grammarSource
	table  *lr.ParsingTable
	parser *lalr.Parser
	repl   *readline.Instance
	tree   bool
}

func runREPL(cmd *cobra.Command, args []string) error {
	src, err := loadGrammar(args[0], *rootFlags.start)
	if err != nil {
		return err
	}
	table, _, err := lr.Build(src.g)
	if err != nil {
		return err
	}
	repl, err := readline.New("lalrgen> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	intp := &Intp{
		src:    src,
		table:  table,
		parser: lalr.NewParser(table),
		repl:   repl,
	}
	pterm.Info.Printf("Grammar %s, %d states. Quit with <ctrl>D\n", src.g.Name, table.States())
	intp.REPL()
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if intp.Eval(line) {
			break
		}
	}
	println("Good bye!")
}

// Eval parses an input line or executes a command. It returns true if the
// user wants to quit.
func (intp *Intp) Eval(line string) bool {
	switch line {
	case ":quit", ":q":
		return true
	case ":tree":
		intp.tree = !intp.tree
		pterm.Info.Printf("parse trees %v\n", intp.tree)
	case ":rules":
		for r := 0; r < intp.table.RuleCount(); r++ {
			pterm.Printf("%3d  %s\n", r, intp.table.RuleString(r))
		}
	case ":table":
		printTable(intp.table)
	default:
		if strings.HasPrefix(line, ":") {
			pterm.Error.Printf("unknown command %s\n", line)
			return false
		}
		if err := parseAndReport(intp.src, intp.table, intp.parser, line, intp.tree); err != nil {
			tracer().Debugf("%v", err)
		}
	}
	return false
}
