/*
Package lexmach wraps a lexmachine DFA into a scanner.Tokenizer, to be used
with the parsers of package lr/lalr.

For more information on lexmachine, see e.g.
https://hackthology.com/how-to-tokenize-complex-strings-with-lexmachine.html

NewLMAdapter compiles a single DFA from three sources, in this order:
literals ("+", "(", …), keywords ("if", "nil", …) and the patterns a client
adds in an init function. Lexmachine takes the longest match and, among matches
of equal length, the pattern added first. Literals and keywords therefore win
over an identifier pattern matching the same text.

Package grammarfile builds its scanners this way. Every declared token gets its
own token type, every literal of the rules gets the next free one:

	ids := map[string]int{"+": 3, "(": 4, ")": 5, "nil": 6}
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`[a-z]+`), lexmach.MakeToken("id", 1))
		lexer.Add([]byte(`( |\t|\n)+`), lexmach.Skip)
	}
	LM, err := lexmach.NewLMAdapter(init, []string{"+", "(", ")", "nil"}, nil, ids)

With this, "nil" is scanned as token type 6, "nix" as an identifier. The grammar
refers to the same types, e.g. lr.Terminal("nil", 6) and lr.Class("id", 1).

A scanner is created per input. Tokens carry byte offsets as spans; unconsumed
input is reported to the error handler and skipped. After the end of input the
scanner returns tokens of type scanner.EOF.

	scan, err := LM.Scanner("(a + nil)")
	accepted, err := lalr.NewParser(table).Parse(scan)

________________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
