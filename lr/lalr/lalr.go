/*
Package lalr provides a table-driven LALR(1)-parser. Clients have to use the
tools of package lr to prepare the parsing table. The parser utilizes this table
to create a right derivation for a given input, provided through a scanner
interface.

The main focus for this implementation is adaptability and on-the-fly usage.
Clients are able to construct the parsing table from a grammar and use the
parser directly, without a code-generation or compile step. If you want, you
can create a grammar from user input and use a parser for it in a couple of
lines of code.

Usage

Clients construct a grammar, usually by using a grammar builder:

	b := lr.NewGrammarBuilder("Signed Variables Grammar")
	b.LHS("Var").N("Sign").T("a", scanner.Ident).End()  // Var  --> Sign Id
	b.LHS("Sign").T("+", '+').End()                     // Sign --> +
	b.LHS("Sign").T("-", '-').End()                     // Sign --> -
	b.LHS("Sign").Epsilon()                             // Sign -->
	g, err := b.Grammar()

This grammar is subjected to table generation.

	table, _, err := lr.Build(g)

Finally parse some input:

	p := lalr.NewParser(table)
	scanner := scanner.GoTokenizer(g.Name, strings.NewReader("+a"))
	accepted, err := p.Parse(scanner)

The parser does not recover from errors. Malformed input results in an error
wrapping ErrTableMiss, while defects of the parsing table result in an error
wrapping ErrGotoMiss.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lalr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/lalrgen"
	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/scanner"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lalrgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.lr")
}

// Errors of a parse run. Parse returns a *ParseError wrapping one of these.
var (
	ErrNotInitialized = errors.New("parser not initialized")
	ErrTableMiss      = errors.New("syntax error")
	ErrGotoMiss       = errors.New("internal error: missing goto after reduce")
	ErrStepLimit      = errors.New("step limit exceeded")
)

// DefaultStepLimit bounds the number of parser steps of a single run.
const DefaultStepLimit = 1 << 24

// Parser is an LALR(1)-parser type. Create and initialize one with lalr.NewParser(...)
type Parser struct {
	table      *lr.ParsingTable
	symbols    []stackitem // symbol stack
	states     []int       // state stack, in lockstep with symbols
	stepLimit  int
	stats      Stats
	derivation []int
}

// We store symbol IDs and spans on the symbol stack.
type stackitem struct {
	symID int          // ID of a grammar symbol (terminal or non-terminal)
	span  lalrgen.Span // input span over which this symbol reaches
}

// Stats counts the actions of a parse run.
type Stats struct {
	Shifts  int
	Reduces int
	Steps   int
}

// Option configures a parser.
type Option func(*Parser)

// StepLimit sets the maximum number of parser steps for a run. A limit <= 0
// selects DefaultStepLimit.
func StepLimit(n int) Option {
	return func(p *Parser) {
		if n <= 0 {
			n = DefaultStepLimit
		}
		p.stepLimit = n
	}
}

// NewParser creates an LALR(1) parser for a parsing table.
func NewParser(table *lr.ParsingTable, opts ...Option) *Parser {
	p := &Parser{
		table:     table,
		symbols:   make([]stackitem, 0, 512),
		states:    make([]int, 0, 512),
		stepLimit: DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run builds a parsing table for a grammar and parses the input delivered by
// a tokenizer. It returns nil if the input is accepted.
func Run(g *lr.Grammar, scan scanner.Tokenizer, opts ...Option) error {
	table, _, err := lr.Build(g)
	if err != nil {
		return err
	}
	_, err = NewParser(table, opts...).Parse(scan)
	return err
}

// Stats returns the counters of the last run.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Derivation returns the serial numbers of the rules reduced during the last
// run, in order of reduction. This is a right derivation in reverse.
func (p *Parser) Derivation() []int {
	return append([]int(nil), p.derivation...)
}

// Parse starts a new parse, given a scanner tokenizing the input.
// The parser must have been initialized.
//
// The parser returns true if the input string has been accepted. Otherwise
// the error is a *ParseError.
func (p *Parser) Parse(scan scanner.Tokenizer) (bool, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p.table == nil || scan == nil {
		tracer().Errorf("LALR(1)-parser not initialized")
		return false, &ParseError{Kind: ErrNotInitialized}
	}
	p.stats = Stats{}
	p.derivation = p.derivation[:0]
	p.symbols = append(p.symbols[:0], stackitem{symID: p.table.EOF()}) // bottom marker
	p.states = append(p.states[:0], p.table.Seeds()[0])
	token := scan.NextToken()
	for {
		if p.stats.Steps >= p.stepLimit {
			return false, p.fail(ErrStepLimit, token)
		}
		p.stats.Steps++
		state := p.states[len(p.states)-1] // TOS
		sym, action := p.lookup(state, token)
		tracer().Debugf("action(%d, %q) = %v", state, token.Lexeme(), action)
		switch action.Type {
		case lr.ShiftAction:
			p.symbols = append(p.symbols, stackitem{symID: sym, span: token.Span()})
			p.states = append(p.states, action.State)
			p.stats.Shifts++
			token = scan.NextToken()
		case lr.ReduceAction:
			if err := p.reduce(action.Rule, token); err != nil {
				return false, err
			}
		case lr.AcceptAction:
			tracer().Infof("input accepted after %d steps", p.stats.Steps)
			return true, nil
		default: // no entry or a goto on a terminal
			return false, p.fail(ErrTableMiss, token)
		}
	}
}

// lookup finds the terminal for a token and the action for it in a state.
// Exact terminals (token type and lexeme) take precedence over token classes.
func (p *Parser) lookup(state int, token lalrgen.Token) (int, lr.Action) {
	tt, lexeme := int(token.TokType()), token.Lexeme()
	if id, ok := p.table.Terminal(tt, lexeme); ok {
		if a := p.table.Action(state, id); !a.IsNone() {
			return id, a
		}
	}
	if id, ok := p.table.Terminal(tt, ""); ok {
		return id, p.table.Action(state, id)
	}
	return -1, lr.Action{}
}

// reduce performs a reduce action for a rule
//
//    LHS --> X1 ... Xn   (with X being terminals or non-terminals)
//
// Symbols X1 to Xn are represented on the stacks as
//
//    [TOS]  Sn(Xn, span_n) ... S1(X1, span1)  ...
//
// and are replaced by LHS and the goto state for LHS.
func (p *Parser) reduce(rule int, token lalrgen.Token) error {
	tracer().Debugf("reduce %s", p.table.RuleString(rule))
	n := p.table.RuleLen(rule)
	if n >= len(p.states) {
		return p.fail(ErrGotoMiss, token)
	}
	var handlespan lalrgen.Span
	for _, item := range p.symbols[len(p.symbols)-n:] {
		handlespan = handlespan.Extend(item.span)
	}
	p.symbols = p.symbols[:len(p.symbols)-n]
	p.states = p.states[:len(p.states)-n]
	lhs := p.table.RuleLHS(rule)
	state := p.states[len(p.states)-1] // TOS
	next := p.table.Action(state, lhs)
	if next.Type != lr.GotoAction {
		tracer().Errorf("no goto for %s in state %d", p.table.SymbolName(lhs), state)
		return p.fail(ErrGotoMiss, token)
	}
	if handlespan.IsNull() { // resulted from an epsilon production
		pos := token.Span().From()
		handlespan = lalrgen.Span{pos, pos} // epsilon was just before lookahead
	}
	p.symbols = append(p.symbols, stackitem{symID: lhs, span: handlespan})
	p.states = append(p.states, next.State)
	p.stats.Reduces++
	p.derivation = append(p.derivation, rule)
	return nil
}

// --- Errors ----------------------------------------------------------------

// ParseError is the error type of a failed parse run. It carries the parser
// configuration at the time of the error.
type ParseError struct {
	Kind     error         // one of ErrTableMiss, ErrGotoMiss, ErrStepLimit, ErrNotInitialized
	State    int           // state on top of the state stack
	Token    lalrgen.Token // current lookahead token
	Symbols  []string      // symbol stack, bottom first
	States   []int         // state stack, bottom first
	Expected []string      // terminals with an action in State
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return e.Kind.Error()
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%v at %v: unexpected %q in state %d", e.Kind,
		e.Token.Span(), e.Token.Lexeme(), e.State))
	if len(e.Expected) > 0 {
		b.WriteString(fmt.Sprintf("; expected one of %v", e.Expected))
	}
	b.WriteString(fmt.Sprintf(" [symbols %v, states %v]", e.Symbols, e.States))
	return b.String()
}

// Unwrap returns the kind of error.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

func (p *Parser) fail(kind error, token lalrgen.Token) *ParseError {
	e := &ParseError{
		Kind:   kind,
		Token:  token,
		States: append([]int(nil), p.states...),
	}
	if len(p.states) > 0 {
		e.State = p.states[len(p.states)-1]
		e.Expected = p.table.Expected(e.State)
	}
	for _, item := range p.symbols {
		e.Symbols = append(e.Symbols, p.table.SymbolName(item.symID))
	}
	tracer().Errorf("%v", e)
	return e
}
