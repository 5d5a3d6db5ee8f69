package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/grammarfile"
	"github.com/npillmayer/lalrgen/lr/scanner"
	"github.com/pterm/pterm"
)

// grammarSource is a grammar loaded from a file, together with the means to
// tokenize input for it.
type grammarSource struct {
	path string
	g    *lr.Grammar
	def  *grammarfile.Definition // nil for EBNF grammars
}

func loadGrammar(path, start string) (*grammarSource, error) {
	src := &grammarSource{path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		def, err := grammarfile.ReadTOMLFile(path)
		if err != nil {
			return nil, err
		}
		if start != "" {
			def.Start = start
		}
		if src.g, err = def.Grammar(); err != nil {
			return nil, err
		}
		src.def = def
	case ".ebnf":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if src.g, err = grammarfile.ReadEBNF(filepath.Base(path), f, start); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown grammar file type: %s", path)
	}
	tracer().Infof("loaded grammar %s with %d rules", src.g.Name, src.g.Size())
	src.g.Dump() // only visible in debug mode
	return src, nil
}

func (src *grammarSource) tokenizer(input string) (scanner.Tokenizer, error) {
	if src.def != nil {
		return src.def.Tokenizer(input)
	}
	return scanner.GoTokenizer(src.g.Name, strings.NewReader(input)), nil
}

// readTable loads a table from a file, as written by 'lalrgen table --out'.
func readTable(path string) (*lr.ParsingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table := &lr.ParsingTable{}
	if err = table.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("cannot read table %s: %w", path, err)
	}
	return table, nil
}

// derivationTree re-creates the parse tree from the rules reduced during a parse.
// Reductions are a rightmost derivation in reverse, so we expand the rightmost
// variable first, consuming the reductions from the end.
func derivationTree(table *lr.ParsingTable, rules []int) pterm.LeveledList {
	var ll pterm.LeveledList
	next := len(rules) - 1
	var expand func(level int) []pterm.LeveledListItem
	expand = func(level int) []pterm.LeveledListItem {
		if next < 0 {
			return nil
		}
		rule := rules[next]
		next--
		rhs := table.RuleRHS(rule)
		children := make([][]pterm.LeveledListItem, len(rhs))
		for i := len(rhs) - 1; i >= 0; i-- {
			if table.IsTerminal(rhs[i]) {
				children[i] = []pterm.LeveledListItem{{Level: level + 1, Text: table.SymbolName(rhs[i])}}
			} else {
				children[i] = expand(level + 1)
			}
		}
		items := []pterm.LeveledListItem{{Level: level, Text: table.SymbolName(table.RuleLHS(rule))}}
		if len(rhs) == 0 {
			items = append(items, pterm.LeveledListItem{Level: level + 1, Text: "ε"})
		}
		for _, c := range children {
			items = append(items, c...)
		}
		return items
	}
	ll = append(ll, expand(0)...)
	return ll
}
