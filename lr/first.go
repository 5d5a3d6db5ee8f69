package lr

import (
	"golang.org/x/tools/container/intsets"
)

// LRAnalysis is an object for static analysis of a grammar. It holds the
// FIRST sets of all non-terminals and the set of nullable non-terminals.
// Both are computed once, by iteration up to a fixed point.
type LRAnalysis struct {
	g        *Grammar
	first    map[*Symbol]*intsets.Sparse // FIRST(N), terminal IDs, without epsilon
	nullable map[*Symbol]bool
}

// Analysis creates an analyser for a grammar.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		g:        g,
		first:    make(map[*Symbol]*intsets.Sparse),
		nullable: make(map[*Symbol]bool),
	}
	for _, N := range g.nonterminals {
		ga.first[N] = &intsets.Sparse{}
	}
	ga.computeFirstSets()
	return ga
}

// Grammar returns the grammar this analyser operates on.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

// computeFirstSets iterates over all rules until no FIRST set grows and
// no further variable becomes nullable. Undefined variables keep an
// empty FIRST set and are not nullable.
func (ga *LRAnalysis) computeFirstSets() {
	for pass := 1; ; pass++ {
		changed := false
		for _, r := range ga.g.rules {
			F := ga.first[r.LHS]
			allNullable := true
			for _, A := range r.rhs {
				if A.IsTerminal() {
					if F.Insert(A.ID) {
						changed = true
					}
					allNullable = false
					break
				}
				if F.UnionWith(ga.first[A]) {
					changed = true
				}
				if !ga.nullable[A] {
					allNullable = false
					break
				}
			}
			if allNullable && !ga.nullable[r.LHS] {
				ga.nullable[r.LHS] = true
				changed = true
			}
		}
		if !changed {
			tracer().Debugf("FIRST sets stable after %d passes", pass)
			return
		}
	}
}

// Nullable returns true if a non-terminal derives epsilon.
func (ga *LRAnalysis) Nullable(N *Symbol) bool {
	return N != nil && !N.IsTerminal() && ga.nullable[N]
}

// First returns FIRST(A) as a list of terminals. For terminals A,
// this is {A}. Epsilon is not part of the result; use Nullable.
func (ga *LRAnalysis) First(A *Symbol) []*Symbol {
	if A == nil {
		return nil
	}
	if A.IsTerminal() {
		return []*Symbol{A}
	}
	return ga.terminalsOf(ga.first[A])
}

// firstOfSuffix computes FIRST(β z), where β is the part of rule r's RHS
// starting at position pos and z is a lookahead set. If β is empty or
// nullable, z is part of the result. The result is a fresh set.
func (ga *LRAnalysis) firstOfSuffix(r *Rule, pos int, z *intsets.Sparse) *intsets.Sparse {
	F := &intsets.Sparse{}
	for k := pos; k < len(r.rhs); k++ {
		A := r.rhs[k]
		if A.IsTerminal() {
			F.Insert(A.ID)
			return F
		}
		F.UnionWith(ga.first[A])
		if !ga.nullable[A] {
			return F
		}
	}
	F.UnionWith(z)
	return F
}

// terminalsOf maps a set of terminal IDs to terminals. IDs not denoting a
// terminal of the grammar are skipped.
func (ga *LRAnalysis) terminalsOf(s *intsets.Sparse) []*Symbol {
	if s == nil {
		return nil
	}
	var T []*Symbol
	for _, id := range s.AppendTo(nil) {
		if id >= 0 && id < len(ga.g.terminals) {
			T = append(T, ga.g.terminals[id])
		}
	}
	return T
}
