package scanner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var tokenCounts = []int{1, 3, 3, 3, 5}

func TestScan1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.scanner")
	defer teardown()
	//
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		reader := strings.NewReader(input)
		name := fmt.Sprintf("input #%d", i)
		scanner := GoTokenizer(name, reader)
		token := scanner.NextToken()
		count := 0
		for token.TokType() != EOF {
			t.Logf(" %4d | %15s | @%5d", token.TokType(), token.Lexeme(), token.Span().From())
			token = scanner.NextToken()
			count++
		}
		if count != tokenCounts[i] {
			t.Errorf("Expected token count for #%d to be %d, is %d", i, tokenCounts[i], count)
		}
	}
	t.Logf("------+-----------------+--------")
}

func TestEndMarker(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.scanner")
	defer teardown()
	//
	scanner := GoTokenizer("marker", strings.NewReader("a a a # b"), EndMarker('#'))
	count := 0
	token := scanner.NextToken()
	for token.TokType() != EOF {
		if token.TokType() != Ident || token.Lexeme() != "a" {
			t.Errorf("expected identifier 'a', have %q", token.Lexeme())
		}
		token = scanner.NextToken()
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 tokens before end marker, have %d", count)
	}
	if token.Span().From() != 6 {
		t.Errorf("expected end marker at position 6, have %v", token.Span())
	}
	if scanner.NextToken().TokType() != EOF {
		t.Errorf("expected EOF to repeat after end marker")
	}
}

func TestUnifyStrings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.scanner")
	defer teardown()
	//
	scanner := GoTokenizer("strings", strings.NewReader("'x' `raw`"), UnifyStrings(true))
	for i := 0; i < 2; i++ {
		if tok := scanner.NextToken(); tok.TokType() != String {
			t.Errorf("expected token %q to be a string, is %d", tok.Lexeme(), tok.TokType())
		}
	}
}

func TestListTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.scanner")
	defer teardown()
	//
	toks := Tokens(Ident, "a", "bb", "c")
	if toks[2].Span().From() != 5 || toks[2].Span().To() != 6 {
		t.Errorf("expected span (5…6) for third token, have %v", toks[2].Span())
	}
	lt := NewListTokenizer(toks...)
	for _, l := range []string{"a", "bb", "c"} {
		if tok := lt.NextToken(); tok.Lexeme() != l {
			t.Errorf("expected %q, have %q", l, tok.Lexeme())
		}
	}
	for i := 0; i < 2; i++ {
		if tok := lt.NextToken(); tok.TokType() != EOF || tok.Span().From() != 6 {
			t.Errorf("expected EOF at 6 after end of list, have %d at %v", tok.TokType(), tok.Span())
		}
	}
	if tok := NewListTokenizer().NextToken(); tok.TokType() != EOF {
		t.Errorf("expected EOF for empty list")
	}
}
