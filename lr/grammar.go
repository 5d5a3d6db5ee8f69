package lr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/lalrgen"
)

// --- Rules -----------------------------------------------------------------

// Rule is a type for rules (productions) of a grammar. Rules have a serial
// number, which is the stable identity used by all tables; rule 0 is always
// the augmented start rule S' → S.
type Rule struct {
	Serial int     // order number of this rule within a grammar
	LHS    *Symbol // symbol of left hand side
	rhs    []*Symbol
}

// RHS returns the right hand side of a rule (a copy).
func (r *Rule) RHS() []*Symbol {
	return append([]*Symbol(nil), r.rhs...)
}

// Len returns the length of the right hand side.
func (r *Rule) Len() int {
	return len(r.rhs)
}

// IsEpsilon is true for empty productions.
func (r *Rule) IsEpsilon() bool {
	return len(r.rhs) == 0
}

func (r *Rule) String() string {
	return fmt.Sprintf("%v ::= %v", r.LHS, r.rhs)
}

// Production is a client-side description of a rule: a left hand side variable
// name and a sequence of (unbound) symbols, created with Terminal, Class,
// Variable or Epsilon.
type Production struct {
	LHS string
	RHS []*Symbol
}

// --- Grammar ---------------------------------------------------------------

// Grammar is a type for a context-free grammar. A grammar is immutable after
// construction; all the algorithms of this package are functions of a grammar.
type Grammar struct {
	Name         string
	rules        []*Rule
	lhsRules     map[*Symbol][]int // productions_for
	terminals    []*Symbol         // indexed by symbol ID
	nonterminals []*Symbol         // indexed by symbol ID - len(terminals)
	termIndex    map[termKey]*Symbol
	varIndex     map[string]*Symbol
	start        *Symbol // start symbol as given by the client
	undefined    []*Symbol
}

// Errors of grammar construction.
var (
	ErrEmptyGrammar = errors.New("grammar has no rules")
	ErrNoStart      = errors.New("start symbol has no rules")
)

// NewGrammar creates a grammar from a list of productions. start names the start
// symbol; if it is empty, the LHS of the first production is used. The grammar
// will be augmented by a new start rule S' → start.
//
// Variables which are referenced on a right hand side but never defined are
// not an error. They will not contribute to any closure, and are listed by
// Undefined().
func NewGrammar(name string, start string, prods []Production) (*Grammar, error) {
	if len(prods) == 0 {
		return nil, ErrEmptyGrammar
	}
	if start == "" {
		start = prods[0].LHS
	}
	g := &Grammar{
		Name:      name,
		lhsRules:  make(map[*Symbol][]int),
		termIndex: make(map[termKey]*Symbol),
		varIndex:  make(map[string]*Symbol),
	}
	// terminals first, end-of-input gets ID 0
	g.internTerminal(&Symbol{Name: "#eof", tokType: EOFType, terminal: true})
	for _, p := range prods {
		if strings.TrimSpace(p.LHS) == "" {
			return nil, fmt.Errorf("grammar %s: rule with empty left hand side", name)
		}
		for _, A := range p.RHS {
			if A != nil && A.terminal && !A.IsEpsilon() {
				g.internTerminal(A)
			}
		}
	}
	defined := make(map[string]bool)
	for _, p := range prods {
		defined[p.LHS] = true
	}
	if !defined[start] {
		return nil, fmt.Errorf("grammar %s: %w: %q", name, ErrNoStart, start)
	}
	augmented := start + "'"
	for defined[augmented] {
		augmented += "'"
	}
	S0 := g.internVariable(augmented)
	g.start = g.internVariable(start)
	for _, p := range prods {
		g.internVariable(p.LHS)
	}
	for _, p := range prods { // variables without rules go last
		for _, A := range p.RHS {
			if A != nil && !A.terminal && !defined[A.Name] {
				if _, ok := g.varIndex[A.Name]; !ok {
					U := g.internVariable(A.Name)
					g.undefined = append(g.undefined, U)
					tracer().Infof("grammar %s: variable %s has no rules", name, A.Name)
				}
			}
		}
	}
	g.addRule(S0, []*Symbol{g.start})
	for _, p := range prods {
		rhs := make([]*Symbol, 0, len(p.RHS))
		for _, A := range p.RHS {
			if A == nil || A.IsEpsilon() {
				continue
			}
			if A.terminal {
				rhs = append(rhs, g.termIndex[A.key()])
			} else {
				rhs = append(rhs, g.varIndex[A.Name])
			}
		}
		g.addRule(g.varIndex[p.LHS], rhs)
	}
	return g, nil
}

func (g *Grammar) internTerminal(A *Symbol) *Symbol {
	if T, ok := g.termIndex[A.key()]; ok {
		return T
	}
	T := &Symbol{
		Name:     A.Name,
		ID:       len(g.terminals),
		Lexeme:   A.Lexeme,
		tokType:  A.tokType,
		terminal: true,
	}
	if T.Name == "" {
		T.Name = TokTypeString(T.tokType)
	}
	g.terminals = append(g.terminals, T)
	g.termIndex[T.key()] = T
	return T
}

// internVariable must not be called before all terminals are interned, as
// variable IDs are offset by the number of terminals.
func (g *Grammar) internVariable(name string) *Symbol {
	if N, ok := g.varIndex[name]; ok {
		return N
	}
	N := &Symbol{Name: name, ID: len(g.terminals) + len(g.nonterminals)}
	g.nonterminals = append(g.nonterminals, N)
	g.varIndex[name] = N
	return N
}

func (g *Grammar) addRule(lhs *Symbol, rhs []*Symbol) *Rule {
	r := &Rule{Serial: len(g.rules), LHS: lhs, rhs: rhs}
	g.rules = append(g.rules, r)
	g.lhsRules[lhs] = append(g.lhsRules[lhs], r.Serial)
	return r
}

// Size returns the number of rules in the grammar.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule gets a grammar rule by serial number. Returns nil for invalid serials.
func (g *Grammar) Rule(no int) *Rule {
	if no < 0 || no >= len(g.rules) {
		return nil
	}
	return g.rules[no]
}

// ProductionsFor returns the serial numbers of all rules with A as their LHS.
// The result is empty for undefined variables and for terminals.
func (g *Grammar) ProductionsFor(A *Symbol) []int {
	if A == nil || A.terminal {
		return nil
	}
	return g.lhsRules[A]
}

// SymbolAt returns the k-th symbol of the right hand side of rule prod, or nil
// if k is out of range.
func (g *Grammar) SymbolAt(prod int, k int) *Symbol {
	r := g.Rule(prod)
	if r == nil || k < 0 || k >= len(r.rhs) {
		return nil
	}
	return r.rhs[k]
}

// Start returns the start symbol of the grammar (not the augmented one).
func (g *Grammar) Start() *Symbol {
	return g.start
}

// EOF returns the end-of-input terminal of this grammar.
func (g *Grammar) EOF() *Symbol {
	return g.terminals[0]
}

// Symbol returns the symbol with a given serial ID.
func (g *Grammar) Symbol(id int) *Symbol {
	if id < 0 {
		return nil
	}
	if id < len(g.terminals) {
		return g.terminals[id]
	}
	if id -= len(g.terminals); id < len(g.nonterminals) {
		return g.nonterminals[id]
	}
	return nil
}

// SymbolCount returns the number of symbols (terminals and non-terminals).
func (g *Grammar) SymbolCount() int {
	return len(g.terminals) + len(g.nonterminals)
}

// Terminals returns all terminals, ordered by ID.
func (g *Grammar) Terminals() []*Symbol {
	return append([]*Symbol(nil), g.terminals...)
}

// NonTerminals returns all variables, ordered by ID.
func (g *Grammar) NonTerminals() []*Symbol {
	return append([]*Symbol(nil), g.nonterminals...)
}

// Variable finds a non-terminal by name.
func (g *Grammar) Variable(name string) *Symbol {
	return g.varIndex[name]
}

// Terminal finds a terminal by lexeme and token type. Use an empty lexeme to find
// a token class.
func (g *Grammar) Terminal(lexeme string, tt lalrgen.TokType) *Symbol {
	return g.termIndex[termKey{tt: tt, lexeme: lexeme}]
}

// Undefined returns the variables which are referenced, but have no rules.
func (g *Grammar) Undefined() []*Symbol {
	return append([]*Symbol(nil), g.undefined...)
}

// EachSymbol iterates over all symbols of the grammar, terminals first.
// Parameter f is called for every symbol; its result is collected.
func (g *Grammar) EachSymbol(f func(A *Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, A := range g.terminals {
		r = append(r, f(A))
	}
	for _, A := range g.nonterminals {
		r = append(r, f(A))
	}
	return r
}

// EachNonTerminal iterates over all non-terminals of the grammar.
func (g *Grammar) EachNonTerminal(f func(name string, N *Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, N := range g.nonterminals {
		r = append(r, f(N.Name, N))
	}
	return r
}

// EachTerminal iterates over all terminals of the grammar.
func (g *Grammar) EachTerminal(f func(T *Symbol) interface{}) []interface{} {
	var r []interface{}
	for _, T := range g.terminals {
		r = append(r, f(T))
	}
	return r
}

// Dump is a debugging helper, listing all rules to the tracer.
func (g *Grammar) Dump() {
	tracer().Debugf("--- %s --------------------------------------------", g.Name)
	for _, r := range g.rules {
		tracer().Debugf("%3d: %s", r.Serial, r.String())
	}
	tracer().Debugf("-------------------------------------------------------")
}

// --- Grammar Builder -------------------------------------------------------

// GrammarBuilder is a builder type for grammars.
// Clients create one with NewGrammarBuilder, add rules and then
// call Grammar(). The first LHS defines the start symbol unless
// StartSymbol is called.
type GrammarBuilder struct {
	name  string
	start string
	prods []Production
}

// RuleBuilder collects the right hand side of a single rule.
type RuleBuilder struct {
	gb  *GrammarBuilder
	lhs string
	rhs []*Symbol
}

// NewGrammarBuilder gets a new grammar builder, given the name of the grammar to build.
func NewGrammarBuilder(gname string) *GrammarBuilder {
	return &GrammarBuilder{name: gname}
}

// StartSymbol sets the start symbol of the grammar.
func (gb *GrammarBuilder) StartSymbol(name string) *GrammarBuilder {
	gb.start = name
	return gb
}

// LHS starts a rule given the left hand side symbol (non-terminal).
func (gb *GrammarBuilder) LHS(s string) *RuleBuilder {
	return &RuleBuilder{gb: gb, lhs: s}
}

// N appends a non-terminal to the builder.
func (rb *RuleBuilder) N(s string) *RuleBuilder {
	rb.rhs = append(rb.rhs, Variable(s))
	return rb
}

// T appends a literal terminal to the builder. It will match tokens with
// token type tt and lexeme s.
func (rb *RuleBuilder) T(s string, tt lalrgen.TokType) *RuleBuilder {
	rb.rhs = append(rb.rhs, Terminal(s, tt))
	return rb
}

// C appends a token class terminal to the builder. It will match every token
// of type tt. s is used for display.
func (rb *RuleBuilder) C(s string, tt lalrgen.TokType) *RuleBuilder {
	rb.rhs = append(rb.rhs, Class(s, tt))
	return rb
}

// Epsilon sets epsilon as the RHS of a production and ends the rule.
func (rb *RuleBuilder) Epsilon() *GrammarBuilder {
	rb.rhs = nil
	return rb.End()
}

// End ends a rule.
func (rb *RuleBuilder) End() *GrammarBuilder {
	rb.gb.prods = append(rb.gb.prods, Production{LHS: rb.lhs, RHS: rb.rhs})
	return rb.gb
}

// Grammar returns the (completed) grammar.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	return NewGrammar(gb.name, gb.start, gb.prods)
}
