package lr

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"golang.org/x/tools/container/intsets"
)

// === LALR(1) Lookaheads ====================================================

// Refer to "Compilers: Principles, Techniques, and Tools" by Aho, Lam, Sethi
// and Ullman, section 4.7.5 Efficient Construction of LALR Parsing Tables.

// ErrInconsistentCFSM is returned if a kernel item reached by a transition is
// not part of the transition's target state. It flags an internal defect.
var ErrInconsistentCFSM = errors.New("inconsistent CFSM")

// LookaheadTable maps (state, production, dot position) to the set of
// terminals for which reducing the item is licensed in that state.
type LookaheadTable struct {
	g *Grammar
	m *treemap.Map // laKey -> *intsets.Sparse
}

type laKey struct {
	state, prod, dot int
}

func laKeyComparator(k1, k2 interface{}) int {
	a, b := k1.(laKey), k2.(laKey)
	switch {
	case a.state != b.state:
		return a.state - b.state
	case a.prod != b.prod:
		return a.prod - b.prod
	}
	return a.dot - b.dot
}

func newLookaheadTable(g *Grammar) *LookaheadTable {
	return &LookaheadTable{g: g, m: treemap.NewWith(laKeyComparator)}
}

// entry returns the lookahead set for a key, creating an empty one if necessary.
func (lt *LookaheadTable) entry(k laKey) *intsets.Sparse {
	if v, found := lt.m.Get(k); found {
		return v.(*intsets.Sparse)
	}
	s := &intsets.Sparse{}
	lt.m.Put(k, s)
	return s
}

// Set returns the lookahead set of item (prod, dot) in state as a set of
// terminal IDs. The result is nil if the item is unknown. Clients must not
// modify it.
func (lt *LookaheadTable) Set(state, prod, dot int) *intsets.Sparse {
	if v, found := lt.m.Get(laKey{state, prod, dot}); found {
		return v.(*intsets.Sparse)
	}
	return nil
}

// Lookahead returns the lookahead terminals of item (prod, dot) in state.
func (lt *LookaheadTable) Lookahead(state, prod, dot int) []*Symbol {
	var T []*Symbol
	if s := lt.Set(state, prod, dot); s != nil {
		for _, id := range s.AppendTo(nil) {
			if A := lt.g.Symbol(id); A != nil && A.IsTerminal() {
				T = append(T, A)
			}
		}
	}
	return T
}

// Size returns the number of entries.
func (lt *LookaheadTable) Size() int {
	return lt.m.Size()
}

// Dump is a debugging helper.
func (lt *LookaheadTable) Dump() {
	it := lt.m.Iterator()
	for it.Next() {
		k := it.Key().(laKey)
		tracer().Debugf("LA(%d, %d, %d) = %v", k.state, k.prod, k.dot,
			lt.Lookahead(k.state, k.prod, k.dot))
	}
}

// propagation records that lookaheads of a kernel item flow into the kernel
// items of other states.
type propagation struct {
	src  laKey
	dest []laKey
}

// computeLookaheads determines LALR(1) lookaheads for the kernel items of
// every state, by spontaneous generation and propagation.
//
// For a kernel item K of state I, the closure of [K, #] is computed, where #
// is a probe terminal not part of the grammar. For each item [B ::= γ • X δ, L]
// of this closure, the kernel item [B ::= γ X • δ] of GOTO(I, X) receives the
// terminals of L spontaneously, and if # is in L, it receives everything K
// receives.
//
// Afterwards the kernels are closed once more with their final lookaheads,
// which yields entries for non-kernel items (notably epsilon-reductions) and
// replaces the item sets of the CFSM states.
func (lrgen *TableGenerator) computeLookaheads(cfsm *CFSM) (*LookaheadTable, error) {
	tracer().Debugf("=== LALR(1) lookaheads ==========================================")
	lt := newLookaheadTable(lrgen.g)
	probe := lrgen.g.SymbolCount() // not a symbol ID
	probeSet := &intsets.Sparse{}
	probeSet.Insert(probe)
	lt.entry(laKey{0, 0, 0}).Insert(lrgen.g.EOF().ID)
	var props []propagation
	for _, s := range cfsm.byID {
		for _, k := range s.kernel.Items() {
			src := laKey{s.ID, k.Prod(), k.dot}
			lt.entry(src)
			J := lrgen.ga.closure(k, probeSet)
			p := propagation{src: src}
			var err error
			J.Each(func(i Item, la *intsets.Sparse) {
				X := i.PeekSymbol()
				if X == nil || err != nil {
					return
				}
				target := cfsm.Goto(s, X)
				next := i.Advance()
				if target == nil || !target.kernel.Contains(next) {
					err = fmt.Errorf("%w: state %d, item %v, symbol %v", ErrInconsistentCFSM, s.ID, i, X)
					return
				}
				dest := laKey{target.ID, next.Prod(), next.dot}
				spont := &intsets.Sparse{}
				spont.Copy(la)
				if spont.Remove(probe) {
					p.dest = append(p.dest, dest)
				}
				if !spont.IsEmpty() {
					tracer().Debugf("spontaneous LA(%d, %v) ⊇ %v", target.ID, next, spont)
				}
				lt.entry(dest).UnionWith(spont)
			})
			if err != nil {
				return nil, err
			}
			if len(p.dest) > 0 {
				props = append(props, p)
			}
		}
	}
	passes := propagateLookaheads(lt, props)
	tracer().Debugf("lookahead propagation stable after %d passes", passes)
	lrgen.completeLookaheads(cfsm, lt)
	return lt, nil
}

// propagateLookaheads applies every propagation edge until no lookahead set
// grows. It returns the number of passes.
func propagateLookaheads(lt *LookaheadTable, props []propagation) int {
	passes := 0
	for changed := true; changed; passes++ {
		changed = false
		for _, p := range props {
			from := lt.entry(p.src)
			for _, d := range p.dest {
				if lt.entry(d).UnionWith(from) {
					changed = true
				}
			}
		}
	}
	return passes
}

// completeLookaheads closes every state's kernel with its final lookaheads and
// stores the closure as the state's item set. Every item of the closure gets
// an entry in the lookahead table.
func (lrgen *TableGenerator) completeLookaheads(cfsm *CFSM, lt *LookaheadTable) {
	for _, s := range cfsm.byID {
		K := newItemSet()
		for _, k := range s.kernel.Items() {
			K.Add(k, lt.Set(s.ID, k.Prod(), k.dot))
		}
		s.kernel = K
		s.items = lrgen.ga.closureSet(K)
		s.items.Each(func(i Item, la *intsets.Sparse) {
			lt.entry(laKey{s.ID, i.Prod(), i.dot}).UnionWith(la)
		})
	}
}
