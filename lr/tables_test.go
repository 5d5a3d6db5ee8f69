package lr

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"text/scanner"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuildTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeRightRecursiveGrammar(t)
	table, seeds, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	table.Dump()
	if len(seeds) != 1 || seeds[0] != 0 {
		t.Errorf("expected single seed state 0, have %v", seeds)
	}
	a := g.Terminal("a", scanner.Ident)
	s1 := table.Action(0, a.ID)
	if s1.Type != ShiftAction {
		t.Fatalf("expected shift on 'a' in state 0, have %v", s1)
	}
	if act := table.Action(s1.State, g.EOF().ID); act.Type != ReduceAction || act.Rule != 1 || act.LHS != g.Start().ID {
		t.Errorf("expected reduce S ::= a on #eof after 'a', have %v", act)
	}
	gt := table.Action(0, g.Start().ID)
	if gt.Type != GotoAction {
		t.Fatalf("expected goto on S in state 0, have %v", gt)
	}
	if act := table.Action(gt.State, g.EOF().ID); act.Type != AcceptAction {
		t.Errorf("expected accept in state %d, have %v", gt.State, act)
	}
	if id, ok := table.Terminal(scanner.Ident, "a"); !ok || id != a.ID {
		t.Errorf("expected terminal lookup to find 'a'")
	}
	if exp := table.Expected(0); len(exp) != 1 || exp[0] != "a" {
		t.Errorf("expected only 'a' in state 0, have %v", exp)
	}
	if table.RuleString(2) != "S ::= a S" || table.RuleLen(2) != 2 || table.RuleLHS(2) != g.Start().ID {
		t.Errorf("unexpected rule info for rule 2: %s", table.RuleString(2))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	for _, mk := range []func(*testing.T) *Grammar{
		makeExprGrammar, makeEpsilonGrammar, makeLValueGrammar, makeRightRecursiveGrammar,
	} {
		g1, g2 := mk(t), mk(t)
		lrgen1 := NewTableGenerator(Analysis(g1))
		lrgen2 := NewTableGenerator(Analysis(g2))
		if err := lrgen1.CreateTables(); err != nil {
			t.Fatal(err)
		}
		if err := lrgen2.CreateTables(); err != nil {
			t.Fatal(err)
		}
		c1, c2 := lrgen1.CFSM(), lrgen2.CFSM()
		if c1.Size() != c2.Size() || c1.EdgeCount() != c2.EdgeCount() {
			t.Fatalf("%s: CFSMs differ in size", g1.Name)
		}
		for i, s := range c1.States() {
			if s.Items().String() != c2.State(i).Items().String() {
				t.Errorf("%s: state %d differs: %v vs %v", g1.Name, i, s.Items(), c2.State(i).Items())
			}
		}
		if !lrgen1.Table().Equals(lrgen2.Table()) {
			t.Errorf("%s: tables differ", g1.Name)
		}
	}
}

func TestShiftReduceConflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  E  ->  E + E  |  id
	b := NewGrammarBuilder("Ambiguous")
	b.LHS("E").N("E").T("+", '+').N("E").End()
	b.LHS("E").C("id", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := NewTableGenerator(Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatalf("expected conflicts to be resolved, got %v", err)
	}
	if !lrgen.HasConflicts || len(lrgen.Conflicts()) != 1 {
		t.Fatalf("expected 1 conflict, have %v", lrgen.Conflicts())
	}
	c := lrgen.Conflicts()[0]
	t.Logf("conflict: %v", c)
	if c.Type != ShiftReduceConflict || c.Winner.Type != ShiftAction || c.Loser.Type != ReduceAction {
		t.Errorf("expected shift to win over reduce, have %v", c)
	}
	a1, a2 := lrgen.Table().Actions(c.State, c.Symbol.ID)
	if a1 != c.Winner || a2 != c.Loser {
		t.Errorf("expected table entry %v/%v, have %v/%v", c.Winner, c.Loser, a1, a2)
	}
	if lrgen.Table().ConflictCount() != 1 {
		t.Errorf("expected table to count 1 conflict")
	}
	_, _, err = Build(g, StrictConflicts(true))
	if !errors.Is(err, ErrConflicts) {
		t.Errorf("expected ErrConflicts in strict mode, got %v", err)
	}
}

func TestReduceReduceConflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  S  ->  A  |  B
	//  A  ->  a
	//  B  ->  a
	b := NewGrammarBuilder("RR-Conflict")
	b.LHS("S").N("A").End()
	b.LHS("S").N("B").End()
	b.LHS("A").T("a", scanner.Ident).End()
	b.LHS("B").T("a", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	lrgen := NewTableGenerator(Analysis(g))
	if err = lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	conflicts := lrgen.Conflicts()
	if len(conflicts) != 1 || conflicts[0].Type != ReduceReduceConflict {
		t.Fatalf("expected 1 reduce/reduce conflict, have %v", conflicts)
	}
	if conflicts[0].Winner.Rule != 3 || conflicts[0].Loser.Rule != 4 {
		t.Errorf("expected lower rule to win, have %v", conflicts[0])
	}
}

func TestEOFFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  S  ->  A x
	//  A  ->  a
	b := NewGrammarBuilder("Fallback")
	b.LHS("S").N("A").T("x", scanner.Ident).End()
	b.LHS("A").T("a", scanner.Ident).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	a, x := g.Terminal("a", scanner.Ident), g.Terminal("x", scanner.Ident)
	with, _, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	s := with.Action(0, a.ID).State
	if act := with.Action(s, x.ID); act.Type != ReduceAction || act.Rule != 2 {
		t.Errorf("expected reduce A ::= a on x, have %v", act)
	}
	if act := with.Action(s, g.EOF().ID); act.Type != ReduceAction || act.Rule != 2 {
		t.Errorf("expected fallback reduce A ::= a on #eof, have %v", act)
	}
	without, _, err := Build(g, EOFFallback(false))
	if err != nil {
		t.Fatal(err)
	}
	if act := without.Action(s, g.EOF().ID); !act.IsNone() {
		t.Errorf("expected no action on #eof without fallback, have %v", act)
	}
	// the fallback never overrides a real entry: accept stays accept
	gt := with.Action(0, g.Start().ID)
	sA := with.Action(0, g.Variable("A").ID)
	if act := with.Action(gt.State, g.EOF().ID); act.Type != AcceptAction {
		t.Errorf("expected accept, have %v", act)
	}
	if act := with.Action(sA.State, g.EOF().ID); !act.IsNone() {
		t.Errorf("expected no fallback in a state without reduce items, have %v", act)
	}
}

func TestTableBinaryRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	table, _, err := Build(g)
	if err != nil {
		t.Fatal(err)
	}
	data, err := table.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	decoded := &ParsingTable{}
	if err = decoded.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equals(table) {
		t.Errorf("expected decoded table to equal the original")
	}
	if decoded.Name() != "Expr" || decoded.States() != table.States() {
		t.Errorf("expected decoded table to carry name and size")
	}
	if id, ok := decoded.Terminal('+', "+"); !ok || id != g.Terminal("+", '+').ID {
		t.Errorf("expected decoded table to find terminal +")
	}
	if err = decoded.UnmarshalBinary(data[:len(data)/2]); err == nil {
		t.Errorf("expected truncated data to be rejected")
	}
}

func TestCorruptTableIsRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	for _, corrupt := range []func(*ParsingTable){
		func(pt *ParsingTable) { pt.set(0, 0, Action{Type: ReduceAction, Rule: 99}) },
		func(pt *ParsingTable) { pt.set(0, 0, Action{Type: ShiftAction, State: 500}) },
		func(pt *ParsingTable) { pt.setPair(0, 0, Action{Type: AcceptAction}, Action{Type: GotoAction, State: -1}) },
		func(pt *ParsingTable) { pt.rules[1].rhs = []int{999} },
		func(pt *ParsingTable) { pt.rules[1].lhs = 0 },
	} {
		table, _, err := Build(makeRightRecursiveGrammar(t))
		if err != nil {
			t.Fatal(err)
		}
		corrupt(table)
		data, err := table.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		decoded := &ParsingTable{}
		if err = decoded.UnmarshalBinary(data); !errors.Is(err, ErrCorruptTable) {
			t.Errorf("expected ErrCorruptTable, got %v", err)
		}
	}
}

func TestBuildTerminatesOnNestedLookaheads(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	//  S  ->  A a
	//  A  ->  b  |  ε
	b := NewGrammarBuilder("Nested")
	b.LHS("S").N("A").T("a", scanner.Ident).End()
	b.LHS("A").T("b", scanner.Ident).End()
	b.LHS("A").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() {
		_, _, err := Build(g, StrictConflicts(true))
		done <- err
	}()
	select {
	case err = <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("table construction for %s did not terminate", g.Name)
	}
}

func TestExports(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.lr")
	defer teardown()
	//
	g := makeExprGrammar(t)
	lrgen := NewTableGenerator(Analysis(g))
	var html bytes.Buffer
	if err := ActionTableAsHTML(lrgen, &html); err == nil {
		t.Errorf("expected export of missing table to fail")
	}
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	var dot bytes.Buffer
	if err := lrgen.CFSM().CFSM2GraphViz(&dot); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dot.String(), "digraph {") || !strings.Contains(dot.String(), "s000 ->") {
		t.Errorf("unexpected Graphviz output:\n%s", dot.String())
	}
	if err := ActionTableAsHTML(lrgen, &html); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html.String(), "<td>state 0</td>") || !strings.Contains(html.String(), "acc") {
		t.Errorf("unexpected HTML output:\n%s", html.String())
	}
}
