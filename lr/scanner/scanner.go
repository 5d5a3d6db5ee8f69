/*
Package scanner defines an interface for scanners to be used with parsers of package lr.

Two default scanner implementations are provided: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) a list tokenizer replaying a slice of tokens. An adapter for
lexmachine lives in sub-package `lexmach`.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"io"
	"text/scanner"

	"github.com/npillmayer/lalrgen"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lalrgen.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF       = scanner.EOF
	Ident     = scanner.Ident
	Int       = scanner.Int
	Float     = scanner.Float
	Char      = scanner.Char
	String    = scanner.String
	RawString = scanner.RawString
	Comment   = scanner.Comment
)

// Tokenizer is a scanner interface. Parsers pull tokens one at a time;
// after the end of input, NextToken returns tokens of type EOF.
type Tokenizer interface {
	NextToken() lalrgen.Token
	SetErrorHandler(func(error))
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	scanner.Scanner
	lastToken    rune        // last token this scanner has produced
	Error        func(error) // error handler
	unifyStrings bool        // convert single chars to strings
	endMarker    rune        // a character which terminates the input, or 0
	done         bool        // end marker has been seen
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go language.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Error = logError
	t.Init(input)
	t.Filename = sourceID
	t.Scanner.Error = func(s *scanner.Scanner, msg string) {
		t.Error(&Error{Pos: s.Position.String(), Msg: msg})
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() lalrgen.Token {
	if t.done {
		pos := uint64(t.Pos().Offset)
		return DefaultToken{kind: EOF, span: lalrgen.Span{pos, pos}}
	}
	t.lastToken = t.Scan()
	if t.endMarker != 0 && t.lastToken == t.endMarker {
		t.done = true
		tracer().Debugf("DefaultTokenizer found end marker %q", t.endMarker)
		return DefaultToken{
			kind:   EOF,
			lexeme: t.TokenText(),
			span:   lalrgen.Span{uint64(t.Position.Offset), uint64(t.Pos().Offset)},
		}
	}
	if t.lastToken == scanner.EOF {
		tracer().Debugf("DefaultTokenizer reached end of input")
		t.done = true
	}
	if t.unifyStrings &&
		(t.lastToken == scanner.RawString || t.lastToken == scanner.Char) {
		t.lastToken = scanner.String
	}
	return DefaultToken{
		kind:   lalrgen.TokType(t.lastToken),
		lexeme: t.TokenText(),
		span:   lalrgen.Span{uint64(t.Position.Offset), uint64(t.Pos().Offset)},
	}
}

// Error is an error reported by the Go tokenizer.
type Error struct {
	Pos string
	Msg string
}

func (e *Error) Error() string {
	return e.Pos + ": " + e.Msg
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the Go
// tokenizer as well as the LexMachine scanner.
type DefaultToken struct {
	kind   lalrgen.TokType
	lexeme string
	Val    interface{}
	span   lalrgen.Span
}

// MakeDefaultToken creates a token from its parts.
func MakeDefaultToken(typ lalrgen.TokType, lexeme string, span lalrgen.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of the lalrgen.Token interface.
func (t DefaultToken) TokType() lalrgen.TokType {
	return t.kind
}

// Value is part of the lalrgen.Token interface.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of the lalrgen.Token interface.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of the lalrgen.Token interface.
func (t DefaultToken) Span() lalrgen.Span {
	return t.span
}

// --- Scanner options for the default (Go) tokenizer ---------------------------

// Option configures a default tokenier.
type Option func(p *DefaultTokenizer)

// SkipComments set or clears mode-flag SkipComments.
func SkipComments(b bool) Option {
	return func(t *DefaultTokenizer) {
		if b {
			t.Mode |= scanner.SkipComments
		} else {
			t.Mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = b
	}
}

// EndMarker sets a character which is reported as end of input. Everything
// after the end marker is ignored. Use 0 to switch the end marker off.
//
//     GoTokenizer("input", strings.NewReader("a a a #"), EndMarker('#'))
//
// will produce three tokens for 'a', followed by EOF.
func EndMarker(r rune) Option {
	return func(t *DefaultTokenizer) {
		t.endMarker = r
	}
}

// --- List tokenizer --------------------------------------------------------

// ListTokenizer is a tokenizer replaying a list of tokens. After the last
// token it reports EOF, regardless of whether the list contains an EOF token.
type ListTokenizer struct {
	tokens []lalrgen.Token
	pos    int
	Error  func(error)
}

var _ Tokenizer = (*ListTokenizer)(nil)

// NewListTokenizer creates a tokenizer for a list of tokens.
func NewListTokenizer(tokens ...lalrgen.Token) *ListTokenizer {
	return &ListTokenizer{tokens: tokens, Error: logError}
}

// SetErrorHandler is part of the Tokenizer interface. A list tokenizer
// never reports errors.
func (lt *ListTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	lt.Error = h
}

// NextToken is part of the Tokenizer interface.
func (lt *ListTokenizer) NextToken() lalrgen.Token {
	if lt.pos >= len(lt.tokens) {
		var end uint64
		if n := len(lt.tokens); n > 0 {
			end = lt.tokens[n-1].Span().To()
		}
		return DefaultToken{kind: EOF, span: lalrgen.Span{end, end}}
	}
	tok := lt.tokens[lt.pos]
	lt.pos++
	return tok
}

// Tokens is a helper to create a token list from (type, lexeme) pairs of a
// single type. Spans are assigned as if the lexemes were separated by blanks.
func Tokens(typ lalrgen.TokType, lexemes ...string) []lalrgen.Token {
	var toks []lalrgen.Token
	var pos uint64
	for _, l := range lexemes {
		end := pos + uint64(len(l))
		toks = append(toks, MakeDefaultToken(typ, l, lalrgen.Span{pos, end}))
		pos = end + 1
	}
	return toks
}
