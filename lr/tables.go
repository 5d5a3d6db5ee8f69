package lr

import (
	"errors"
	"fmt"

	"github.com/npillmayer/lalrgen"
	"github.com/npillmayer/lalrgen/lr/sparse"
)

// https://www.cs.bgu.ac.il/~comp151/wiki.files/ps6.html#sec-2-7-3

// ActionType is the type of a parser table entry.
type ActionType int8

// Actions for parser tables.
const (
	NoAction ActionType = iota
	ShiftAction
	ReduceAction
	GotoAction
	AcceptAction
)

func (at ActionType) String() string {
	switch at {
	case ShiftAction:
		return "shift"
	case ReduceAction:
		return "reduce"
	case GotoAction:
		return "goto"
	case AcceptAction:
		return "accept"
	}
	return "none"
}

// Action is an entry of a parsing table. State is the next state for shift and
// goto actions; Rule and LHS denote the rule to reduce for reduce actions.
type Action struct {
	Type  ActionType
	State int
	Rule  int
	LHS   int // symbol ID of the rule's left hand side
}

// IsNone is true for empty table entries.
func (a Action) IsNone() bool {
	return a.Type == NoAction
}

func (a Action) String() string {
	switch a.Type {
	case ShiftAction:
		return fmt.Sprintf("s%d", a.State)
	case ReduceAction:
		return fmt.Sprintf("r%d", a.Rule)
	case GotoAction:
		return fmt.Sprintf("g%d", a.State)
	case AcceptAction:
		return "acc"
	}
	return ""
}

// Actions are encoded as int32 within a sparse matrix: the target (state or rule)
// is shifted left, the lower bits carry the type.
const actionBits = 3

func encodeAction(a Action) int32 {
	target := a.State
	if a.Type == ReduceAction {
		target = a.Rule
	}
	return int32(target<<actionBits | int(a.Type))
}

// --- Conflicts -------------------------------------------------------------

// ConflictType classifies table conflicts.
type ConflictType int8

// Kinds of conflicts.
const (
	ShiftReduceConflict ConflictType = iota + 1
	ReduceReduceConflict
	AcceptReduceConflict
)

func (ct ConflictType) String() string {
	switch ct {
	case ShiftReduceConflict:
		return "shift/reduce"
	case ReduceReduceConflict:
		return "reduce/reduce"
	case AcceptReduceConflict:
		return "accept/reduce"
	}
	return "?"
}

// Conflict records a conflicting table entry and how it has been resolved:
// shift wins over reduce, accept wins over reduce, and the rule with the lower
// serial number wins a reduce/reduce conflict.
type Conflict struct {
	Type   ConflictType
	State  int
	Symbol *Symbol
	Winner Action
	Loser  Action
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s conflict in state %d on %v: %v wins over %v",
		c.Type, c.State, c.Symbol, c.Winner, c.Loser)
}

// ErrConflicts is returned by table construction in strict mode, if the
// grammar is not LALR(1).
var ErrConflicts = errors.New("grammar is not LALR(1)")

// --- Options ---------------------------------------------------------------

// Option configures table generation.
type Option func(*TableGenerator)

// StrictConflicts lets table construction fail with ErrConflicts if the
// grammar contains conflicts.
func StrictConflicts(b bool) Option {
	return func(lrgen *TableGenerator) {
		lrgen.strict = b
	}
}

// EOFFallback controls the end-of-input fallback: every reduce-ready item of a
// state creates a reduce action for end-of-input, if there is no other action
// for end-of-input in this state. Defaults to true.
func EOFFallback(b bool) Option {
	return func(lrgen *TableGenerator) {
		lrgen.eofFallback = b
	}
}

// --- Table Generator -------------------------------------------------------

// TableGenerator is a generator object to construct LR parser tables.
// Clients usually create a Grammar G, then a LRAnalysis-object for G,
// and then a table generator. TableGenerator.CreateTables() constructs
// the CFSM, the LALR(1) lookaheads and the parser table for G.
type TableGenerator struct {
	g            *Grammar
	ga           *LRAnalysis
	dfa          *CFSM
	lookaheads   *LookaheadTable
	table        *ParsingTable
	conflicts    []Conflict
	strict       bool
	eofFallback  bool
	HasConflicts bool
}

// NewTableGenerator creates a new TableGenerator for a (previously analysed) grammar.
func NewTableGenerator(ga *LRAnalysis, opts ...Option) *TableGenerator {
	lrgen := &TableGenerator{
		g:           ga.Grammar(),
		ga:          ga,
		eofFallback: true,
	}
	for _, opt := range opts {
		opt(lrgen)
	}
	return lrgen
}

// CFSM returns the characteristic finite state machine (CFSM) for a grammar.
// Usually clients call lrgen.CreateTables() beforehand, but it is possible
// to call lrgen.CFSM() directly. The CFSM will be created, if it has not
// been constructed previously; in this case its item sets do not yet carry
// LALR(1) lookaheads.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		lrgen.dfa = lrgen.buildCFSM()
	}
	return lrgen.dfa
}

// Lookaheads returns the LALR(1) lookahead table. Clients have to call
// CreateTables() first.
func (lrgen *TableGenerator) Lookaheads() *LookaheadTable {
	if lrgen.lookaheads == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.lookaheads
}

// Table returns the parsing table. Clients have to call CreateTables() first.
func (lrgen *TableGenerator) Table() *ParsingTable {
	if lrgen.table == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.table
}

// Conflicts returns all conflicts found during table construction.
func (lrgen *TableGenerator) Conflicts() []Conflict {
	return append([]Conflict(nil), lrgen.conflicts...)
}

// CreateTables creates the CFSM, the LALR(1) lookaheads and the parsing table.
func (lrgen *TableGenerator) CreateTables() error {
	lrgen.dfa = lrgen.buildCFSM()
	la, err := lrgen.computeLookaheads(lrgen.dfa)
	if err != nil {
		return err
	}
	lrgen.lookaheads = la
	lrgen.table = lrgen.buildParsingTable()
	if lrgen.HasConflicts {
		tracer().Infof("grammar %s has %d conflicts", lrgen.g.Name, len(lrgen.conflicts))
		if lrgen.strict {
			return fmt.Errorf("grammar %s: %w (%d conflicts)", lrgen.g.Name, ErrConflicts, len(lrgen.conflicts))
		}
	}
	return nil
}

// AcceptingStates returns all states of the CFSM which contain the completed
// start rule. Clients have to call CreateTables() first.
func (lrgen *TableGenerator) AcceptingStates() []int {
	if lrgen.dfa == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
		return nil
	}
	var acc []int
	for _, s := range lrgen.dfa.byID {
		if s.Accept {
			acc = append(acc, s.ID)
		}
	}
	return acc
}

// Build constructs a parsing table for a grammar. It returns the table and the
// seed states for the parser, which is always the single state 0.
func Build(g *Grammar, opts ...Option) (*ParsingTable, []int, error) {
	lrgen := NewTableGenerator(Analysis(g), opts...)
	if err := lrgen.CreateTables(); err != nil {
		return nil, nil, err
	}
	return lrgen.table, lrgen.table.Seeds(), nil
}

// For building the parsing table we iterate over all the states of the CFSM.
// An inner loop iterates over all the items within a CFSM-state.
// If an item has a terminal immediately after the dot, we produce a shift
// entry; for a non-terminal after the dot, a goto entry. If an item's dot
// is behind the complete RHS of a rule, we produce a reduce-entry for the
// rule for each terminal from the item's LALR(1) lookahead set, or an accept
// entry for the start rule.
func (lrgen *TableGenerator) buildParsingTable() *ParsingTable {
	t := newParsingTable(lrgen.g, lrgen.dfa.Size())
	lrgen.conflicts = nil
	eof := lrgen.g.EOF()
	for _, state := range lrgen.dfa.byID {
		tracer().Debugf("--- state %d --------------------------------", state.ID)
		var fallback *Rule
		for _, i := range state.items.Items() {
			A := i.PeekSymbol()
			switch {
			case A != nil:
				next := lrgen.dfa.Goto(state, A)
				if next == nil {
					continue // A is an undefined variable
				}
				if A.IsTerminal() {
					lrgen.put(t, state.ID, A, Action{Type: ShiftAction, State: next.ID})
				} else {
					lrgen.put(t, state.ID, A, Action{Type: GotoAction, State: next.ID})
				}
			case i.rule.Serial == 0:
				lrgen.put(t, state.ID, eof, Action{Type: AcceptAction})
			default:
				la := lrgen.lookaheads.Set(state.ID, i.Prod(), i.dot)
				r := Action{Type: ReduceAction, Rule: i.Prod(), LHS: i.rule.LHS.ID}
				if la != nil {
					for _, id := range la.AppendTo(nil) {
						lrgen.put(t, state.ID, lrgen.g.Symbol(id), r)
					}
				}
				if fallback == nil || i.Prod() < fallback.Serial {
					fallback = i.rule
				}
			}
		}
		if lrgen.eofFallback && fallback != nil && t.Action(state.ID, eof.ID).IsNone() {
			tracer().Debugf("    fallback reduce %v on %v", fallback, eof)
			t.set(state.ID, eof.ID, Action{Type: ReduceAction, Rule: fallback.Serial, LHS: fallback.LHS.ID})
		}
	}
	lrgen.HasConflicts = len(lrgen.conflicts) > 0
	t.conflicts = len(lrgen.conflicts)
	return t
}

// put enters an action into the table, resolving conflicts: shift and accept
// win over reduce, lower rule serials win over higher ones. The losing
// action is kept as the shadow value of the table entry.
func (lrgen *TableGenerator) put(t *ParsingTable, state int, A *Symbol, a Action) {
	old := t.Action(state, A.ID)
	if old.IsNone() || old == a {
		t.set(state, A.ID, a)
		return
	}
	winner, loser := old, a
	var ctype ConflictType
	switch {
	case old.Type == ReduceAction && a.Type == ReduceAction:
		ctype = ReduceReduceConflict
		if a.Rule < old.Rule {
			winner, loser = a, old
		}
	case old.Type == ReduceAction: // a is shift or accept
		winner, loser = a, old
		fallthrough
	case a.Type == ReduceAction:
		ctype = ShiftReduceConflict
		if winner.Type == AcceptAction {
			ctype = AcceptReduceConflict
		}
	default: // shift/goto cannot collide with a different shift/goto
		panic(fmt.Sprintf("internal error: %v collides with %v in state %d", a, old, state))
	}
	c := Conflict{Type: ctype, State: state, Symbol: A, Winner: winner, Loser: loser}
	tracer().Infof("%v", c)
	lrgen.conflicts = append(lrgen.conflicts, c)
	t.setPair(state, A.ID, winner, loser)
}

// --- Parsing Table ---------------------------------------------------------

// ParsingTable is a combined ACTION/GOTO table: rows are CFSM states, columns
// are grammar symbols (by ID). A parsing table carries enough information
// about symbols and rules to drive a parser without the grammar, which makes
// it suitable for serialization.
type ParsingTable struct {
	name      string
	matrix    *sparse.IntMatrix
	symbols   []symbolInfo
	rules     []ruleInfo
	termIndex map[termKey]int
	conflicts int
}

type symbolInfo struct {
	name     string
	terminal bool
	tokType  int
	lexeme   string
}

type ruleInfo struct {
	lhs int
	rhs []int
}

func newParsingTable(g *Grammar, states int) *ParsingTable {
	t := &ParsingTable{name: g.Name}
	g.EachSymbol(func(A *Symbol) interface{} {
		t.symbols = append(t.symbols, symbolInfo{
			name:     A.Name,
			terminal: A.IsTerminal(),
			tokType:  int(A.TokenType()),
			lexeme:   A.Lexeme,
		})
		return nil
	})
	for _, r := range g.rules {
		ri := ruleInfo{lhs: r.LHS.ID}
		for _, A := range r.rhs {
			ri.rhs = append(ri.rhs, A.ID)
		}
		t.rules = append(t.rules, ri)
	}
	t.matrix = sparse.NewIntMatrix(states, len(t.symbols), sparse.DefaultNullValue)
	t.index()
	tracer().Infof("parsing table of size %d x %d", states, len(t.symbols))
	return t
}

func (t *ParsingTable) index() {
	t.termIndex = make(map[termKey]int)
	for id, s := range t.symbols {
		if s.terminal {
			t.termIndex[termKey{tt: lalrgen.TokType(s.tokType), lexeme: s.lexeme}] = id
		}
	}
}

func (t *ParsingTable) set(state, sym int, a Action) {
	t.matrix.Set(state, sym, encodeAction(a))
}

func (t *ParsingTable) setPair(state, sym int, a, b Action) {
	t.matrix.SetPair(state, sym, encodeAction(a), encodeAction(b))
}

func (t *ParsingTable) decode(v int32) Action {
	if v == t.matrix.NullValue() {
		return Action{}
	}
	a := Action{Type: ActionType(v & (1<<actionBits - 1))}
	target := int(v >> actionBits)
	switch a.Type {
	case ReduceAction:
		a.Rule = target
		if target >= 0 && target < len(t.rules) {
			a.LHS = t.rules[target].lhs
		}
	case ShiftAction, GotoAction:
		a.State = target
	}
	return a
}

// Name returns the name of the grammar this table has been built for.
func (t *ParsingTable) Name() string {
	return t.name
}

// States returns the number of states (rows).
func (t *ParsingTable) States() int {
	return t.matrix.M()
}

// SymbolCount returns the number of grammar symbols (columns).
func (t *ParsingTable) SymbolCount() int {
	return len(t.symbols)
}

// Seeds returns the start states of the parser.
func (t *ParsingTable) Seeds() []int {
	return []int{0}
}

// ConflictCount returns the number of conflicts found during construction.
func (t *ParsingTable) ConflictCount() int {
	return t.conflicts
}

// Action returns the action for (state, symbol ID).
func (t *ParsingTable) Action(state, sym int) Action {
	return t.decode(t.matrix.Value(state, sym))
}

// Actions returns the action for (state, symbol ID), together with the shadow
// action which lost a conflict, if any.
func (t *ParsingTable) Actions(state, sym int) (Action, Action) {
	a, b := t.matrix.Values(state, sym)
	return t.decode(a), t.decode(b)
}

// Terminal finds the symbol ID of a terminal by token type and lexeme.
// Use an empty lexeme for token classes.
func (t *ParsingTable) Terminal(tt int, lexeme string) (int, bool) {
	id, ok := t.termIndex[termKey{tt: lalrgen.TokType(tt), lexeme: lexeme}]
	return id, ok
}

// EOF returns the symbol ID of the end-of-input terminal.
func (t *ParsingTable) EOF() int {
	return 0
}

// IsTerminal is true if a symbol ID denotes a terminal.
func (t *ParsingTable) IsTerminal(sym int) bool {
	return sym >= 0 && sym < len(t.symbols) && t.symbols[sym].terminal
}

// SymbolName returns the display name of a symbol.
func (t *ParsingTable) SymbolName(sym int) string {
	if sym < 0 || sym >= len(t.symbols) {
		return fmt.Sprintf("<%d>", sym)
	}
	return t.symbols[sym].name
}

// RuleCount returns the number of rules.
func (t *ParsingTable) RuleCount() int {
	return len(t.rules)
}

// RuleLHS returns the symbol ID of the left hand side of a rule.
func (t *ParsingTable) RuleLHS(rule int) int {
	return t.rules[rule].lhs
}

// RuleLen returns the length of the right hand side of a rule.
func (t *ParsingTable) RuleLen(rule int) int {
	return len(t.rules[rule].rhs)
}

// RuleRHS returns the symbol IDs of the right hand side of a rule.
func (t *ParsingTable) RuleRHS(rule int) []int {
	return append([]int(nil), t.rules[rule].rhs...)
}

// RuleString returns a printable form of a rule.
func (t *ParsingTable) RuleString(rule int) string {
	if rule < 0 || rule >= len(t.rules) {
		return fmt.Sprintf("<rule %d>", rule)
	}
	r := t.rules[rule]
	s := fmt.Sprintf("%s ::=", t.SymbolName(r.lhs))
	for _, A := range r.rhs {
		s += " " + t.SymbolName(A)
	}
	return s
}

// Expected returns the names of all terminals with an action in a state.
func (t *ParsingTable) Expected(state int) []string {
	var exp []string
	for id, s := range t.symbols {
		if s.terminal && !t.Action(state, id).IsNone() {
			exp = append(exp, s.name)
		}
	}
	return exp
}

// Equals compares two tables entry by entry, including symbol and rule metadata.
func (t *ParsingTable) Equals(other *ParsingTable) bool {
	if t.States() != other.States() || len(t.symbols) != len(other.symbols) ||
		len(t.rules) != len(other.rules) || t.matrix.ValueCount() != other.matrix.ValueCount() {
		return false
	}
	for k, s := range t.symbols {
		if s != other.symbols[k] {
			return false
		}
	}
	for k, r := range t.rules {
		o := other.rules[k]
		if r.lhs != o.lhs || len(r.rhs) != len(o.rhs) {
			return false
		}
		for j := range r.rhs {
			if r.rhs[j] != o.rhs[j] {
				return false
			}
		}
	}
	eq := true
	t.matrix.Each(func(i, j int, a, b int32) {
		oa, ob := other.matrix.Values(i, j)
		if a != oa || b != ob {
			eq = false
		}
	})
	return eq
}

// Dump is a debugging helper, listing all table entries to the tracer.
func (t *ParsingTable) Dump() {
	tracer().Debugf("--- parsing table %s ---------------------------", t.name)
	t.matrix.Each(func(i, j int, a, b int32) {
		if b == t.matrix.NullValue() {
			tracer().Debugf("(%3d, %-8s) = %v", i, t.SymbolName(j), t.decode(a))
		} else {
			tracer().Debugf("(%3d, %-8s) = %v / %v", i, t.SymbolName(j), t.decode(a), t.decode(b))
		}
	})
}
