/*
Package lalrgen is a table-driven LALR(1) parsing toolbox.

lalrgen builds bottom-up parsers for context-free grammars on the fly. Clients
describe a grammar, let package lr construct the characteristic automaton and
LALR(1) lookahead sets, and drive the resulting parsing table with package
lr/lalr over a stream of tokens. Package structure is as follows:

■ lr: Package lr implements the grammar model, the canonical collection of LR item
sets, lookahead propagation and construction of the shift/reduce/goto/accept table.

■ lr/lalr: Package lalr is the table-driven driver (a shift-reduce stack machine).

■ lr/scanner: Package scanner defines the token source contract and default tokenizers.

■ lr/grammarfile: Package grammarfile reads grammar definitions from TOML and EBNF.

■ cmd/lalrgen: Command lalrgen builds, exports and tries out parsing tables.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lalrgen
