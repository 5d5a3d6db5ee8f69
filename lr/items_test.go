package lr

import (
	"testing"
	"text/scanner"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestItemString(t *testing.T) {
	g := makeRightRecursiveGrammar(t)
	i := StartItem(g.Rule(2))
	if i.String() != "[S] ::= [•a S]" {
		t.Errorf("unexpected item string %q", i.String())
	}
	i = i.Advance().Advance().Advance()
	if !i.IsReduceReady() || i.Dot() != 2 || i.String() != "[S] ::= [a S•]" {
		t.Errorf("expected dot to stop at the end of the rule, have %v", i)
	}
	if !i.IsKernel() || StartItem(g.Rule(2)).IsKernel() || !StartItem(g.Rule(0)).IsKernel() {
		t.Errorf("kernel item classification is wrong")
	}
}

func TestClosure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeRightRecursiveGrammar(t)
	ga := Analysis(g)
	C := ga.Closure(ga.StartSet())
	t.Logf("closure = %v", C)
	if C.Size() != 3 {
		t.Errorf("expected closure of start item to have 3 items, has %d", C.Size())
	}
	for _, i := range C.Items() {
		la, _ := C.Lookahead(i)
		if la.Len() != 1 || !la.Has(g.EOF().ID) {
			t.Errorf("expected lookahead of %v to be {#eof}, is %v", i, la)
		}
	}
}

func TestClosureIdempotence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	for _, g := range []*Grammar{
		makeRightRecursiveGrammar(t),
		makeEpsilonGrammar(t),
		makeExprGrammar(t),
	} {
		ga := Analysis(g)
		C := ga.Closure(ga.StartSet())
		CC := ga.Closure(C)
		if !C.Equals(CC) {
			t.Errorf("%s: closure is not idempotent: %v vs %v", g.Name, C, CC)
		}
		g.EachSymbol(func(A *Symbol) interface{} {
			G := ga.Goto(C, A)
			if !G.Equals(ga.Closure(G)) {
				t.Errorf("%s: closure of goto(%v) is not idempotent", g.Name, A)
			}
			return nil
		})
	}
}

func TestGotoDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	ga := Analysis(g)
	C := ga.Closure(ga.StartSet())
	g.EachSymbol(func(A *Symbol) interface{} {
		G1 := ga.Goto(C, A)
		G2 := ga.Goto(C.Copy(), A)
		if !G1.Equals(G2) {
			t.Errorf("goto(I, %v) differs between calls", A)
		}
		return nil
	})
	if !ga.Goto(C, g.Terminal("+", '+')).Empty() {
		t.Errorf("expected goto on + from start state to be empty")
	}
}

func TestItemSetLookaheadUnion(t *testing.T) {
	g := makeRightRecursiveGrammar(t)
	ga := Analysis(g)
	S := newItemSet()
	i := StartItem(g.Rule(1))
	start := ga.StartSet()
	la, _ := start.Lookahead(StartItem(g.Rule(0)))
	if !S.Add(i, nil) {
		t.Errorf("expected new item to change the set")
	}
	if S.Add(i, nil) {
		t.Errorf("expected re-adding an item without lookahead not to change the set")
	}
	if !S.Add(i, la) {
		t.Errorf("expected lookahead to grow")
	}
	if S.Add(i, la) {
		t.Errorf("expected adding the same lookahead twice not to change the set")
	}
}

// --- Helpers ---------------------------------------------------------------

//  S  ->  a  |  a S
func makeRightRecursiveGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("RR")
	b.LHS("S").T("a", scanner.Ident).End()
	b.LHS("S").T("a", scanner.Ident).N("S").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

//  E  ->  E + T  |  T
//  T  ->  T * F  |  F
//  F  ->  id  |  ( E )
func makeExprGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Expr")
	b.LHS("E").N("E").T("+", '+').N("T").End()
	b.LHS("E").N("T").End()
	b.LHS("T").N("T").T("*", '*').N("F").End()
	b.LHS("T").N("F").End()
	b.LHS("F").C("id", scanner.Ident).End()
	b.LHS("F").T("(", '(').N("E").T(")", ')').End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}
