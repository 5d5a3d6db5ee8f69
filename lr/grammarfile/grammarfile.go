/*
Package grammarfile reads grammar definitions from text, either from TOML files
or from Go-style EBNF.

A TOML definition names the grammar, its start symbol, optional token
declarations and the rules:

	name  = "Sums"
	start = "E"

	[[token]]
	name  = "id"
	regex = '[a-z]+'

	[[token]]
	name  = "ws"
	regex = '( |\t|\n)+'
	skip  = true

	[[rule]]
	lhs = "E"
	rhs = "E '+' T | T"

	[[rule]]
	lhs = "T"
	rhs = "@id | '(' E ')'"

Right hand sides consist of variables (bare words), literals in single quotes,
token classes prefixed by '@' and 'ε' for an empty alternative. Alternatives are
separated by '|'.

If tokens are declared, input is tokenized by a lexmachine DFA compiled from
the token patterns and the literals of the rules. Otherwise the Go tokenizer of
package scanner is used, and '@' refers to one of the classes of text/scanner
(ident, int, float, char, string, rawstring).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammarfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	gscan "text/scanner"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/lalrgen"
	"github.com/npillmayer/lalrgen/lr"
	"github.com/npillmayer/lalrgen/lr/scanner"
	"github.com/npillmayer/lalrgen/lr/scanner/lexmach"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
)

// tracer traces with key 'lalrgen.grammarfile'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.grammarfile")
}

// ErrSyntax is wrapped by all errors concerning the content of a definition.
var ErrSyntax = errors.New("grammar definition error")

// Definition is a grammar definition as read from a TOML file.
type Definition struct {
	Name   string      `toml:"name"`
	Start  string      `toml:"start"`
	Tokens []TokenDecl `toml:"token"`
	Rules  []RuleDecl  `toml:"rule"`

	literals map[string]lalrgen.TokType // literal → token type, lexmachine mode only
	litOrder []string
	adapter  *lexmach.LMAdapter
}

// TokenDecl declares a token by a lexmachine regular expression.
// Skipped tokens are matched but never reach the parser.
type TokenDecl struct {
	Name  string `toml:"name"`
	Regex string `toml:"regex"`
	Skip  bool   `toml:"skip"`
}

// RuleDecl is a rule with one or more alternatives.
type RuleDecl struct {
	LHS string `toml:"lhs"`
	RHS string `toml:"rhs"`
}

// ReadTOML decodes a grammar definition. Unknown keys are an error.
func ReadTOML(r io.Reader) (*Definition, error) {
	d := &Definition{}
	md, err := toml.NewDecoder(r).Decode(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrSyntax, undecoded)
	}
	if len(d.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrSyntax)
	}
	if d.Name == "" {
		d.Name = "G"
	}
	tracer().Debugf("read grammar definition %s with %d rules", d.Name, len(d.Rules))
	return d, nil
}

// ReadTOMLFile decodes a grammar definition from a file.
func ReadTOMLFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadTOML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// UsesLexmachine is true if the definition declares tokens.
func (d *Definition) UsesLexmachine() bool {
	return len(d.Tokens) > 0
}

// Productions translates the rules into productions.
func (d *Definition) Productions() ([]lr.Production, error) {
	var prods []lr.Production
	for _, r := range d.Rules {
		lhs := strings.TrimSpace(r.LHS)
		if !isName(lhs) {
			return nil, fmt.Errorf("%w: invalid left hand side %q", ErrSyntax, r.LHS)
		}
		alts, err := d.alternatives(r.RHS)
		if err != nil {
			return nil, fmt.Errorf("rule for %s: %w", lhs, err)
		}
		for _, rhs := range alts {
			prods = append(prods, lr.Production{LHS: lhs, RHS: rhs})
		}
	}
	return prods, nil
}

// Grammar creates the grammar of a definition.
func (d *Definition) Grammar() (*lr.Grammar, error) {
	prods, err := d.Productions()
	if err != nil {
		return nil, err
	}
	return lr.NewGrammar(d.Name, d.Start, prods)
}

func (d *Definition) alternatives(rhs string) ([][]*lr.Symbol, error) {
	var alts [][]*lr.Symbol
	var cur []*lr.Symbol
	for _, field := range strings.Fields(rhs) {
		switch {
		case field == "|":
			alts = append(alts, cur)
			cur = nil
		case field == "ε":
			// empty alternative
		case len(field) >= 3 && field[0] == '\'' && field[len(field)-1] == '\'':
			lit := field[1 : len(field)-1]
			tt, err := d.literalType(lit)
			if err != nil {
				return nil, err
			}
			cur = append(cur, lr.Terminal(lit, tt))
		case field[0] == '@':
			A, err := d.class(field[1:])
			if err != nil {
				return nil, err
			}
			cur = append(cur, A)
		case isName(field):
			cur = append(cur, lr.Variable(field))
		default:
			return nil, fmt.Errorf("%w: cannot read %q", ErrSyntax, field)
		}
	}
	return append(alts, cur), nil
}

// literalType finds the token type of a literal. With declared tokens every
// literal is a token type of its own; otherwise the type is what the Go
// tokenizer would report.
func (d *Definition) literalType(lit string) (lalrgen.TokType, error) {
	if !d.UsesLexmachine() {
		return classifyLiteral(lit)
	}
	if d.literals == nil {
		d.literals = make(map[string]lalrgen.TokType)
	}
	if tt, ok := d.literals[lit]; ok {
		return tt, nil
	}
	tt := lalrgen.TokType(len(d.Tokens) + len(d.litOrder) + 1)
	d.literals[lit] = tt
	d.litOrder = append(d.litOrder, lit)
	return tt, nil
}

func (d *Definition) class(name string) (*lr.Symbol, error) {
	if d.UsesLexmachine() {
		for i, t := range d.Tokens {
			if t.Name == name {
				if t.Skip {
					return nil, fmt.Errorf("%w: token %s is skipped and cannot be used", ErrSyntax, name)
				}
				return lr.Class(name, lalrgen.TokType(i+1)), nil
			}
		}
		return nil, fmt.Errorf("%w: undeclared token %q", ErrSyntax, name)
	}
	tt, ok := goClasses[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token class %q", ErrSyntax, name)
	}
	return lr.Class(name, tt), nil
}

// TokenType returns the token type of a declared token or of a literal.
func (d *Definition) TokenType(name string) (lalrgen.TokType, bool) {
	for i, t := range d.Tokens {
		if t.Name == name {
			return lalrgen.TokType(i + 1), true
		}
	}
	if tt, ok := d.literals[name]; ok {
		return tt, true
	}
	return 0, false
}

// Tokenizer creates a tokenizer for an input string. Literals are known only
// after the rules have been read, so call Grammar or Productions first.
func (d *Definition) Tokenizer(input string) (scanner.Tokenizer, error) {
	if !d.UsesLexmachine() {
		return scanner.GoTokenizer(d.Name, strings.NewReader(input)), nil
	}
	if d.adapter == nil {
		if err := d.compile(); err != nil {
			return nil, err
		}
	}
	return d.adapter.Scanner(input)
}

func (d *Definition) compile() error {
	if len(d.literals) == 0 { // rules may not have been read yet
		if _, err := d.Productions(); err != nil {
			return err
		}
	}
	ids := make(map[string]int, len(d.literals))
	for lit, tt := range d.literals {
		ids[lit] = int(tt)
	}
	init := func(lexer *lexmachine.Lexer) {
		for i, t := range d.Tokens {
			if t.Skip {
				lexer.Add([]byte(t.Regex), lexmach.Skip)
			} else {
				lexer.Add([]byte(t.Regex), lexmach.MakeToken(t.Name, i+1))
			}
		}
	}
	adapter, err := lexmach.NewLMAdapter(init, d.litOrder, nil, ids)
	if err != nil {
		return fmt.Errorf("%w: compiling tokens of %s: %v", ErrSyntax, d.Name, err)
	}
	d.adapter = adapter
	tracer().Infof("compiled scanner for %d tokens and %d literals", len(d.Tokens), len(d.litOrder))
	return nil
}

// TokTypeString returns a printable name for the token types of a definition.
func (d *Definition) TokTypeString(tt lalrgen.TokType) string {
	if !d.UsesLexmachine() {
		return lr.TokTypeString(tt)
	}
	if i := int(tt) - 1; i >= 0 && i < len(d.Tokens) {
		return d.Tokens[i].Name
	}
	if i := int(tt) - len(d.Tokens) - 1; i >= 0 && i < len(d.litOrder) {
		return "'" + d.litOrder[i] + "'"
	}
	return lr.TokTypeString(tt)
}

// --- Helpers ---------------------------------------------------------------

var goClasses = map[string]lalrgen.TokType{
	"ident":     gscan.Ident,
	"int":       gscan.Int,
	"float":     gscan.Float,
	"char":      gscan.Char,
	"string":    gscan.String,
	"rawstring": gscan.RawString,
}

// classifyLiteral finds the token type the Go tokenizer reports for a literal.
// Literals which are not a single Go token are rejected.
func classifyLiteral(lit string) (lalrgen.TokType, error) {
	var s gscan.Scanner
	s.Init(strings.NewReader(lit))
	s.Mode = gscan.GoTokens
	failed := false
	s.Error = func(*gscan.Scanner, string) { failed = true }
	tok := s.Scan()
	if failed || tok == gscan.EOF || s.TokenText() != lit || s.Scan() != gscan.EOF {
		return 0, fmt.Errorf("%w: literal %q is not a single token", ErrSyntax, lit)
	}
	return lalrgen.TokType(tok), nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && (unicode.IsDigit(r) || r == '\''))) {
			return false
		}
	}
	return true
}
