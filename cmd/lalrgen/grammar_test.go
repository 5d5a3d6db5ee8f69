package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/lalr"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestLoadGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.cli")
	defer teardown()
	//
	for _, path := range []string{
		"../../lr/grammarfile/testdata/sums.toml",
		"../../lr/grammarfile/testdata/expr.ebnf",
	} {
		src, err := loadGrammar(path, "")
		if err != nil {
			t.Fatalf("cannot load %s: %v", path, err)
		}
		table, _, err := lr.Build(src.g)
		if err != nil {
			t.Fatal(err)
		}
		scan, err := src.tokenizer("(a + b) + c")
		if err != nil {
			t.Fatal(err)
		}
		if accept, err := lalr.NewParser(table).Parse(scan); !accept {
			t.Errorf("%s: expected input to be accepted, got %v", path, err)
		}
	}
	if _, err := loadGrammar("grammar.yacc", ""); err == nil {
		t.Errorf("expected unknown file type to be rejected")
	}
}

func TestDerivationTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.cli")
	defer teardown()
	//
	//  S  ->  L = R  |  R
	//  L  ->  * R  |  id
	//  R  ->  L
	b := lr.NewGrammarBuilder("LValue")
	b.LHS("S").N("L").T("=", '=').N("R").End()
	b.LHS("S").N("R").End()
	b.LHS("L").T("*", '*').N("R").End()
	b.LHS("L").C("id", -2).End()
	b.LHS("R").N("L").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	table, _, err := lr.Build(g)
	if err != nil {
		t.Fatal(err)
	}
	// *x = y
	ll := derivationTree(table, []int{4, 5, 3, 4, 5, 1})
	expected := []struct {
		level int
		text  string
	}{
		{0, "S"}, {1, "L"}, {2, "*"}, {2, "R"}, {3, "L"}, {4, "id"},
		{1, "="}, {1, "R"}, {2, "L"}, {3, "id"},
	}
	if len(ll) != len(expected) {
		t.Fatalf("expected %d tree items, have %d: %v", len(expected), len(ll), ll)
	}
	for i, e := range expected {
		if ll[i].Level != e.level || ll[i].Text != e.text {
			t.Errorf("item %d: expected %s at level %d, have %s at %d", i, e.text, e.level,
				ll[i].Text, ll[i].Level)
		}
	}
}

func TestTableRoundTripViaFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.cli")
	defer teardown()
	//
	src, err := loadGrammar("../../lr/grammarfile/testdata/sums.toml", "")
	if err != nil {
		t.Fatal(err)
	}
	table, _, err := lr.Build(src.g)
	if err != nil {
		t.Fatal(err)
	}
	data, err := table.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "sums.lalr")
	if err = os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := tableFor(src, path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equals(table) {
		t.Errorf("expected table from file to equal the built table")
	}
}
