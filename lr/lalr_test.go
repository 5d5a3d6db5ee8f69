package lr

import (
	"errors"
	"testing"
	"text/scanner"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCFSMRightRecursive(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeRightRecursiveGrammar(t)
	lrgen := NewTableGenerator(Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	cfsm := lrgen.CFSM()
	if cfsm.Size() != 4 {
		t.Errorf("expected CFSM to have 4 states, has %d", cfsm.Size())
	}
	a := g.Terminal("a", scanner.Ident)
	s1 := cfsm.Goto(cfsm.S0, a)
	if s1 == nil || cfsm.Goto(s1, a) != s1 {
		t.Errorf("expected state after 'a' to loop on 'a'")
	}
	if acc := lrgen.AcceptingStates(); len(acc) != 1 || acc[0] != cfsm.Goto(cfsm.S0, g.Start()).ID {
		t.Errorf("expected exactly goto(S0, S) to be accepting, have %v", acc)
	}
}

func TestCFSMReachabilityAndUniqueness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	for _, g := range []*Grammar{
		makeExprGrammar(t),
		makeEpsilonGrammar(t),
		makeLValueGrammar(t),
	} {
		lrgen := NewTableGenerator(Analysis(g))
		if err := lrgen.CreateTables(); err != nil {
			t.Fatal(err)
		}
		cfsm := lrgen.CFSM()
		seen := map[int]bool{cfsm.S0.ID: true}
		queue := []*CFSMState{cfsm.S0}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			g.EachSymbol(func(A *Symbol) interface{} {
				if next := cfsm.Goto(s, A); next != nil && !seen[next.ID] {
					seen[next.ID] = true
					queue = append(queue, next)
				}
				return nil
			})
		}
		if len(seen) != cfsm.Size() {
			t.Errorf("%s: %d of %d states reachable from S0", g.Name, len(seen), cfsm.Size())
		}
		states := cfsm.States()
		for i := range states {
			if states[i].ID != i {
				t.Errorf("%s: state %d has ID %d", g.Name, i, states[i].ID)
			}
			for j := i + 1; j < len(states); j++ {
				if states[i].Kernel().CoreEquals(states[j].Kernel()) {
					t.Errorf("%s: states %d and %d have the same kernel", g.Name, i, j)
				}
			}
		}
	}
}

func TestLookaheadDiscrimination(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  S  ->  A x  |  B y
	//  A  ->  a
	//  B  ->  a
	b := NewGrammarBuilder("AB")
	b.LHS("S").N("A").T("x", scanner.Ident).End()
	b.LHS("S").N("B").T("y", scanner.Ident).End()
	b.LHS("A").T("a", scanner.Ident).End()
	b.LHS("B").T("a", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := NewTableGenerator(Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	if lrgen.HasConflicts {
		t.Errorf("expected grammar to be LALR(1), conflicts: %v", lrgen.Conflicts())
	}
	s := lrgen.CFSM().Goto(lrgen.CFSM().S0, g.Terminal("a", scanner.Ident))
	laA := lrgen.Lookaheads().Set(s.ID, 3, 1)
	laB := lrgen.Lookaheads().Set(s.ID, 4, 1)
	if laA == nil || laB == nil {
		t.Fatalf("expected lookaheads for A ::= a• and B ::= a• in state %d", s.ID)
	}
	if laA.Intersects(laB) {
		t.Errorf("expected disjoint lookaheads, have %v and %v", laA, laB)
	}
	if names := symbolNames(lrgen.Lookaheads().Lookahead(s.ID, 3, 1)); names != "x" {
		t.Errorf("expected LA(A ::= a•) = x, is %s", names)
	}
	if names := symbolNames(lrgen.Lookaheads().Lookahead(s.ID, 4, 1)); names != "y" {
		t.Errorf("expected LA(B ::= a•) = y, is %s", names)
	}
}

func TestCommonPrefix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  S  ->  a b  |  a c
	b := NewGrammarBuilder("ABC")
	b.LHS("S").T("a", scanner.Ident).T("b", scanner.Ident).End()
	b.LHS("S").T("a", scanner.Ident).T("c", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := NewTableGenerator(Analysis(g))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	cfsm := lrgen.CFSM()
	s1 := cfsm.Goto(cfsm.S0, g.Terminal("a", scanner.Ident))
	sb := cfsm.Goto(s1, g.Terminal("b", scanner.Ident))
	sc := cfsm.Goto(s1, g.Terminal("c", scanner.Ident))
	if sb == nil || sc == nil || sb == sc {
		t.Fatalf("expected distinct states after 'a b' and 'a c'")
	}
	T := lrgen.Table()
	if a := T.Action(sb.ID, g.EOF().ID); a.Type != ReduceAction || a.Rule != 1 {
		t.Errorf("expected reduce 1 after 'a b', have %v", a)
	}
	if a := T.Action(sc.ID, g.EOF().ID); a.Type != ReduceAction || a.Rule != 2 {
		t.Errorf("expected reduce 2 after 'a c', have %v", a)
	}
}

func TestLookaheadPropagation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeLValueGrammar(t)
	lrgen := NewTableGenerator(Analysis(g), StrictConflicts(true))
	if err := lrgen.CreateTables(); err != nil {
		t.Fatalf("expected grammar to be LALR(1), got %v", err)
	}
	lrgen.Lookaheads().Dump()
	cfsm := lrgen.CFSM()
	id := g.Terminal("", scanner.Ident)
	star := g.Terminal("*", '*')
	sid := cfsm.Goto(cfsm.S0, id)
	if sid == nil || cfsm.Goto(cfsm.Goto(cfsm.S0, star), id) != sid {
		t.Fatalf("expected goto(S0, id) to be reachable via *")
	}
	// L ::= id• is rule 4
	if names := symbolNames(lrgen.Lookaheads().Lookahead(sid.ID, 4, 1)); names != "#eof =" {
		t.Errorf("expected LA(L ::= id•) = #eof =, is %s", names)
	}
	// R ::= L• is rule 5, in goto(S0, L) it may only be reduced at end of input
	sL := cfsm.Goto(cfsm.S0, g.Variable("L"))
	if names := symbolNames(lrgen.Lookaheads().Lookahead(sL.ID, 5, 1)); names != "#eof" {
		t.Errorf("expected LA(R ::= L•) = #eof, is %s", names)
	}
}

func TestInconsistentCFSM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeRightRecursiveGrammar(t)
	lrgen := NewTableGenerator(Analysis(g))
	cfsm := lrgen.CFSM()
	delete(cfsm.trans, transition{cfsm.S0.ID, g.Start().ID})
	if _, err := lrgen.computeLookaheads(cfsm); !errors.Is(err, ErrInconsistentCFSM) {
		t.Errorf("expected ErrInconsistentCFSM, got %v", err)
	}
}

// --- Helpers ---------------------------------------------------------------

// Grammar 4.49 of the dragon book, which is LALR(1), but not SLR(1).
//
//  S  ->  L = R  |  R
//  L  ->  * R  |  id
//  R  ->  L
func makeLValueGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("LValue")
	b.LHS("S").N("L").T("=", '=').N("R").End()
	b.LHS("S").N("R").End()
	b.LHS("L").T("*", '*').N("R").End()
	b.LHS("L").C("id", scanner.Ident).End()
	b.LHS("R").N("L").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}
