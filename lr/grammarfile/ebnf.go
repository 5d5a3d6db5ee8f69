package grammarfile

import (
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/lalrgen/lr"
	"golang.org/x/exp/ebnf"
)

// ReadEBNF reads a grammar in the EBNF notation of the Go language specification:
//
//	Expr = Term { "+" Term } .
//	Term = ident | "(" Expr ")" .
//
// Productions with an upper case name become variables. Lower case names are
// token classes of the Go tokenizer (ident, int, float, char, string, rawstring),
// quoted strings are literals. Options, repetitions and groups are replaced
// by helper variables named Opt#n, Rep#n and Grp#n, where
//
//	Opt#n  →  body | ε
//	Rep#n  →  Rep#n body | ε
//	Grp#n  →  body
//
// If start is empty, the first production of the input is the start symbol.
func ReadEBNF(name string, r io.Reader, start string) (*lr.Grammar, error) {
	egrammar, err := ebnf.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	var names []string
	first := ""
	for n, p := range egrammar {
		if isLexical(n) {
			return nil, fmt.Errorf("%w: lexical production %s not supported, use token classes", ErrSyntax, n)
		}
		if first == "" || p.Name.Pos().Offset < egrammar[first].Name.Pos().Offset {
			first = n
		}
		names = append(names, n)
	}
	if start == "" {
		start = first
	}
	if _, ok := egrammar[start]; !ok {
		return nil, fmt.Errorf("%w: start production %q not found", ErrSyntax, start)
	}
	sort.Slice(names, func(i, j int) bool { // start first, rest by name
		if (names[i] == start) != (names[j] == start) {
			return names[i] == start
		}
		return names[i] < names[j]
	})
	tr := &ebnfTranslator{}
	for _, n := range names {
		if err := tr.production(n, egrammar[n].Expr); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("EBNF grammar %s: %d productions, %d helpers", name, len(tr.prods), tr.helpers)
	return lr.NewGrammar(name, start, tr.prods)
}

type ebnfTranslator struct {
	prods   []lr.Production
	helpers int
}

// production adds a production for every alternative of an expression.
func (tr *ebnfTranslator) production(lhs string, x ebnf.Expression) error {
	alts, err := tr.alternatives(x)
	if err != nil {
		return fmt.Errorf("production %s: %w", lhs, err)
	}
	for _, rhs := range alts {
		tr.prods = append(tr.prods, lr.Production{LHS: lhs, RHS: rhs})
	}
	return nil
}

func (tr *ebnfTranslator) alternatives(x ebnf.Expression) ([][]*lr.Symbol, error) {
	if x == nil {
		return [][]*lr.Symbol{nil}, nil
	}
	if alt, ok := x.(ebnf.Alternative); ok {
		var alts [][]*lr.Symbol
		for _, a := range alt {
			seq, err := tr.sequence(a)
			if err != nil {
				return nil, err
			}
			alts = append(alts, seq)
		}
		return alts, nil
	}
	seq, err := tr.sequence(x)
	if err != nil {
		return nil, err
	}
	return [][]*lr.Symbol{seq}, nil
}

func (tr *ebnfTranslator) sequence(x ebnf.Expression) ([]*lr.Symbol, error) {
	if seq, ok := x.(ebnf.Sequence); ok {
		var rhs []*lr.Symbol
		for _, e := range seq {
			A, err := tr.symbol(e)
			if err != nil {
				return nil, err
			}
			rhs = append(rhs, A)
		}
		return rhs, nil
	}
	A, err := tr.symbol(x)
	if err != nil {
		return nil, err
	}
	return []*lr.Symbol{A}, nil
}

func (tr *ebnfTranslator) symbol(x ebnf.Expression) (*lr.Symbol, error) {
	switch e := x.(type) {
	case *ebnf.Name:
		if !isLexical(e.String) {
			return lr.Variable(e.String), nil
		}
		tt, ok := goClasses[e.String]
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown token class %q", ErrSyntax, e.Pos(), e.String)
		}
		return lr.Class(e.String, tt), nil
	case *ebnf.Token:
		tt, err := classifyLiteral(e.String)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Pos(), err)
		}
		return lr.Terminal(e.String, tt), nil
	case *ebnf.Option:
		H := tr.helper("Opt")
		if err := tr.production(H.Name, e.Body); err != nil {
			return nil, err
		}
		tr.prods = append(tr.prods, lr.Production{LHS: H.Name})
		return H, nil
	case *ebnf.Repetition:
		H := tr.helper("Rep")
		alts, err := tr.alternatives(e.Body)
		if err != nil {
			return nil, err
		}
		for _, rhs := range alts {
			rhs = append([]*lr.Symbol{H}, rhs...)
			tr.prods = append(tr.prods, lr.Production{LHS: H.Name, RHS: rhs})
		}
		tr.prods = append(tr.prods, lr.Production{LHS: H.Name})
		return H, nil
	case *ebnf.Group:
		H := tr.helper("Grp")
		if err := tr.production(H.Name, e.Body); err != nil {
			return nil, err
		}
		return H, nil
	case ebnf.Alternative, ebnf.Sequence:
		H := tr.helper("Grp")
		if err := tr.production(H.Name, e); err != nil {
			return nil, err
		}
		return H, nil
	case *ebnf.Range:
		return nil, fmt.Errorf("%w: %s: character ranges not supported", ErrSyntax, e.Pos())
	}
	return nil, fmt.Errorf("%w: unexpected expression %T", ErrSyntax, x)
}

func (tr *ebnfTranslator) helper(kind string) *lr.Symbol {
	tr.helpers++
	return lr.Variable(fmt.Sprintf("%s#%d", kind, tr.helpers))
}

func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}
