package lr

import (
	"fmt"
	"text/scanner"

	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/lalrgen"
)

// Reserved token types. EOFType is identical to text/scanner.EOF, which makes
// the Go default tokenizer of package scanner usable without further mapping.
const (
	EOFType     lalrgen.TokType = scanner.EOF
	EpsilonType lalrgen.TokType = -1 << 20
)

// Symbol is a grammar symbol, i.e. either a terminal or a non-terminal
// (variable). Symbols are canonical within a grammar: a grammar holds exactly
// one instance for every distinct symbol, and each symbol carries a serial ID.
// Terminals are numbered first, beginning with end-of-input (ID 0), followed
// by the non-terminals, beginning with the augmented start symbol.
//
// A terminal is identified by its token type and its lexeme. A terminal with an empty
// lexeme is a token class: it matches any token of its type.
type Symbol struct {
	Name     string // variable name or display name of a terminal
	ID       int    // serial ID within a grammar; -1 for unbound symbols
	Lexeme   string // lexeme of a literal terminal, empty for token classes
	tokType  lalrgen.TokType
	terminal bool
}

// Epsilon is the distinguished "no symbol" terminal. It compares equal only to
// itself and never occurs as part of a grammar rule's right hand side.
var Epsilon = &Symbol{Name: "ε", ID: -1, tokType: EpsilonType, terminal: true}

// Terminal creates an (unbound) literal terminal for use with NewGrammar.
func Terminal(lexeme string, tt lalrgen.TokType) *Symbol {
	return &Symbol{Name: lexeme, ID: -1, Lexeme: lexeme, tokType: tt, terminal: true}
}

// Class creates an (unbound) token class terminal for use with NewGrammar.
// name is used for display only.
func Class(name string, tt lalrgen.TokType) *Symbol {
	if name == "" {
		name = TokTypeString(tt)
	}
	return &Symbol{Name: name, ID: -1, tokType: tt, terminal: true}
}

// Variable creates an (unbound) non-terminal for use with NewGrammar.
func Variable(name string) *Symbol {
	return &Symbol{Name: name, ID: -1}
}

// IsTerminal returns true if this symbol represents a terminal.
func (A *Symbol) IsTerminal() bool {
	return A.terminal
}

// IsEpsilon returns true for the epsilon terminal.
func (A *Symbol) IsEpsilon() bool {
	return A.terminal && A.tokType == EpsilonType
}

// IsEOF returns true for the end-of-input terminal.
func (A *Symbol) IsEOF() bool {
	return A.terminal && A.tokType == EOFType
}

// IsClass returns true for terminals matching on token type only.
func (A *Symbol) IsClass() bool {
	return A.terminal && A.Lexeme == "" && !A.IsEOF() && !A.IsEpsilon()
}

// TokenType returns the token type of a terminal. For non-terminals, the
// result is meaningless.
func (A *Symbol) TokenType() lalrgen.TokType {
	return A.tokType
}

// Matches checks a token against a terminal.
func (A *Symbol) Matches(tok lalrgen.Token) bool {
	if !A.terminal || tok == nil || tok.TokType() != A.tokType {
		return false
	}
	return A.Lexeme == "" || A.Lexeme == tok.Lexeme()
}

func (A *Symbol) String() string {
	if A == nil {
		return "<nil>"
	}
	return A.Name
}

func (A *Symbol) key() termKey {
	return termKey{tt: A.tokType, lexeme: A.Lexeme}
}

// termKey identifies a terminal independently of its display name.
type termKey struct {
	tt     lalrgen.TokType
	lexeme string
}

// symbolComparator orders symbols by serial ID.
func symbolComparator(s1, s2 interface{}) int {
	return utils.IntComparator(s1.(*Symbol).ID, s2.(*Symbol).ID)
}

// TokTypeString is a default TokTypeStringer. It knows the reserved token types
// and the token types of text/scanner; other types are printed as numbers, or
// as a quoted rune for printable ASCII characters.
func TokTypeString(tt lalrgen.TokType) string {
	switch {
	case tt == EOFType:
		return "#eof"
	case tt == EpsilonType:
		return "ε"
	case tt < 0 && tt >= scanner.Comment:
		return scanner.TokenString(rune(tt))
	case tt > ' ' && tt < 127:
		return fmt.Sprintf("'%c'", rune(tt))
	}
	return fmt.Sprintf("<%d>", tt)
}
