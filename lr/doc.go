/*
Package lr implements LALR(1) parser construction.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Terminals
carry a token type and, optionally, a lexeme. A terminal without a lexeme
is a token class and matches every token of its type. Grammars may contain
epsilon-productions.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a", 1).End()  // S  ->  A a
    b.LHS("A").N("B").N("D").End()     // A  ->  B D
    b.LHS("B").T("b", 2).End()         // B  ->  b
    b.LHS("B").Epsilon()               // B  ->
    b.LHS("D").T("d", 3).End()         // D  ->  d
    b.LHS("D").Epsilon()               // D  ->

The builder augments the grammar with a start rule S' → S, which always
has serial number 0:

   g, _ := b.Grammar()
   g.Dump()

   0: [S'] ::= [S]
   1: [S] ::= [A a]
   2: [A] ::= [B D]
   3: [B] ::= [b]
   4: [B] ::= []
   5: [D] ::= [d]
   6: [D] ::= []

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which computes FIRST sets and
determines all nullable non-terminals. Both are computed iteratively up to
a fixed point, which makes them safe for left-recursive grammars.

    ga := lr.Analysis(g)
    ga.Nullable(g.Variable("A"))   // true

Parser Construction

Using grammar analysis as input, a bottom-up parser can be constructed.
First a characteristic finite state machine (CFSM) is built from the
grammar. States of the CFSM are item sets, identified by their LR(0) core.
Then LALR(1) lookaheads are computed by spontaneous generation and propagation
over the CFSM's transitions. From both, an ACTION/GOTO table is created.
The CFSM will not be thrown away, but is made available to the client.
It can be exported to Graphviz's Dot-format.

Example:

    lrgen := lr.NewTableGenerator(ga)  // ga is a grammar analysis, see above
    err := lrgen.CreateTables()        // construct LALR(1) parser tables
    table := lrgen.Table()

or, in short:

    table, seeds, err := lr.Build(g)

Conflicting table entries are resolved by a fixed tie-break (shift before
reduce, lower rule serial first) and are reported by the table generator.
___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lalrgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.lr")
}
