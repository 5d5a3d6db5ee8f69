/*
Command lalrgen builds LALR(1) parsing tables from grammar files and parses
input with them.

	lalrgen table grammar.toml --out grammar.lalr --html table.html --dot cfsm.dot
	lalrgen parse grammar.toml "a + (b + c)"
	lalrgen repl  expr.ebnf

Grammar files are TOML definitions (*.toml) or Go-style EBNF (*.ebnf), see
package lr/grammarfile.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"
)

func main() {
	err := Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
