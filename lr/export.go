package lr

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/tools/container/intsets"
)

// ActionTableAsHTML exports the parsing table in HTML-format. Cells with a
// conflict show the winning and the losing action, separated by a slash.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) error {
	if lrgen.table == nil {
		tracer().Errorf("parsing table not yet created, cannot export to HTML")
		return fmt.Errorf("parsing table for %s not yet created", lrgen.g.Name)
	}
	table := lrgen.table
	var b bytes.Buffer
	b.WriteString("<html><body>\n")
	b.WriteString("<img src=\"cfsm.png\"/><p>")
	b.WriteString(fmt.Sprintf("ACTION/GOTO table of size = %d<p>", table.matrix.ValueCount()))
	b.WriteString("<table border=1 cellspacing=0 cellpadding=5>\n")
	b.WriteString("<tr bgcolor=#cccccc><td></td>\n")
	lrgen.g.EachSymbol(func(A *Symbol) interface{} {
		b.WriteString(fmt.Sprintf("<td>%s</td>", escapeHTML(A.String())))
		return nil
	})
	b.WriteString("</tr>\n")
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		state := states.Value().(*CFSMState)
		b.WriteString(fmt.Sprintf("<tr><td>state %d</td>\n", state.ID))
		for id := 0; id < table.SymbolCount(); id++ {
			a1, a2 := table.Actions(state.ID, id)
			td := "&nbsp;"
			if !a1.IsNone() {
				td = a1.String()
				if !a2.IsNone() {
					td += "/" + a2.String()
				}
			}
			b.WriteString("<td>" + td + "</td>\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	_, err := w.Write(b.Bytes())
	return err
}

// forGraphviz renders the items of a state as the label of a record node.
func forGraphviz(S *ItemSet) string {
	var b bytes.Buffer
	first := true
	S.Each(func(i Item, la *intsets.Sparse) {
		if !first {
			b.WriteString("\\l")
		}
		first = false
		b.WriteString(escapeGraphviz(i.String()))
		if !la.IsEmpty() {
			b.WriteString(escapeGraphviz(" " + la.String()))
		}
	})
	b.WriteString("\\l")
	return b.String()
}

var graphvizEscaper = strings.NewReplacer(
	`"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

func escapeGraphviz(s string) string {
	return graphvizEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
