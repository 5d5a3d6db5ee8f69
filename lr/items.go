package lr

import (
	"bytes"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/tools/container/intsets"
)

// --- Items -----------------------------------------------------------------

// Item is an LR(0) item for a rule, i.e. a rule together with a dot position.
// The dot position is the index of the next unread right hand side symbol;
// a dot position equal to the length of the RHS marks a reduce-ready item.
type Item struct {
	rule *Rule
	dot  int
}

// StartItem returns an item with the dot at the beginning of a rule.
func StartItem(r *Rule) Item {
	return Item{rule: r}
}

// Rule returns the rule of an item.
func (i Item) Rule() *Rule {
	return i.rule
}

// Prod returns the serial number of the item's rule.
func (i Item) Prod() int {
	return i.rule.Serial
}

// Dot returns the dot position of an item.
func (i Item) Dot() int {
	return i.dot
}

// PeekSymbol returns the symbol after the dot, or nil if the dot is at the end.
func (i Item) PeekSymbol() *Symbol {
	if i.dot >= len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot]
}

// Advance returns an item with the dot moved one symbol to the right.
// The dot will not move beyond the end of the rule.
func (i Item) Advance() Item {
	if i.dot < len(i.rule.rhs) {
		i.dot++
	}
	return i
}

// Prefix returns the symbols of the RHS before the dot.
func (i Item) Prefix() []*Symbol {
	return i.rule.rhs[:i.dot]
}

// IsReduceReady is true if the dot is behind the last symbol of the RHS.
func (i Item) IsReduceReady() bool {
	return i.dot == len(i.rule.rhs)
}

// IsKernel is true for items which are not the product of closure expansion:
// the start item, and items with the dot not at the beginning.
func (i Item) IsKernel() bool {
	return i.dot > 0 || i.rule.Serial == 0
}

func (i Item) String() string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("[%v] ::= [", i.rule.LHS))
	for k, A := range i.rule.rhs {
		if k == i.dot {
			b.WriteString("•")
		}
		b.WriteString(A.String())
		if k+1 < len(i.rule.rhs) {
			b.WriteString(" ")
		}
	}
	if i.IsReduceReady() {
		b.WriteString("•")
	}
	b.WriteString("]")
	return b.String()
}

// itemComparator orders items by rule serial, then by dot position.
func itemComparator(i1, i2 interface{}) int {
	a, b := i1.(Item), i2.(Item)
	if c := utils.IntComparator(a.rule.Serial, b.rule.Serial); c != 0 {
		return c
	}
	return utils.IntComparator(a.dot, b.dot)
}

// --- Item Sets -------------------------------------------------------------

// ItemSet is a set of items, each of which is annotated by a set of lookahead
// terminals. Every item (core) is contained at most once; adding an item which is
// already present unions the lookahead sets. Iteration order is by rule serial,
// then by dot position, which makes every algorithm on item sets deterministic.
type ItemSet struct {
	m *treemap.Map // Item -> *intsets.Sparse
}

func newItemSet() *ItemSet {
	return &ItemSet{m: treemap.NewWith(itemComparator)}
}

// Add inserts an item with lookahead la (may be nil). It returns true if the set
// changed, i.e. the item was new or its lookahead set grew.
func (S *ItemSet) Add(i Item, la *intsets.Sparse) bool {
	if v, found := S.m.Get(i); found {
		if la == nil {
			return false
		}
		return v.(*intsets.Sparse).UnionWith(la)
	}
	L := &intsets.Sparse{}
	if la != nil {
		L.Copy(la)
	}
	S.m.Put(i, L)
	return true
}

// Lookahead returns the lookahead set of an item. Clients must not modify it.
func (S *ItemSet) Lookahead(i Item) (*intsets.Sparse, bool) {
	if v, found := S.m.Get(i); found {
		return v.(*intsets.Sparse), true
	}
	return nil, false
}

// Contains checks for an item, regardless of lookahead.
func (S *ItemSet) Contains(i Item) bool {
	_, found := S.m.Get(i)
	return found
}

// Size returns the number of items.
func (S *ItemSet) Size() int {
	return S.m.Size()
}

// Empty is true for item sets without items.
func (S *ItemSet) Empty() bool {
	return S.m.Empty()
}

// Items returns the items of the set, in order.
func (S *ItemSet) Items() []Item {
	keys := S.m.Keys()
	items := make([]Item, len(keys))
	for k, x := range keys {
		items[k] = x.(Item)
	}
	return items
}

// Each calls f for every item and its lookahead set, in order.
func (S *ItemSet) Each(f func(Item, *intsets.Sparse)) {
	it := S.m.Iterator()
	for it.Next() {
		f(it.Key().(Item), it.Value().(*intsets.Sparse))
	}
}

// Copy creates a deep copy of an item set.
func (S *ItemSet) Copy() *ItemSet {
	C := newItemSet()
	S.Each(func(i Item, la *intsets.Sparse) {
		C.Add(i, la)
	})
	return C
}

// Kernel returns the subset of kernel items.
func (S *ItemSet) Kernel() *ItemSet {
	K := newItemSet()
	S.Each(func(i Item, la *intsets.Sparse) {
		if i.IsKernel() {
			K.Add(i, la)
		}
	})
	return K
}

// CoreEquals compares two item sets, ignoring lookaheads.
func (S *ItemSet) CoreEquals(T *ItemSet) bool {
	if S.Size() != T.Size() {
		return false
	}
	for _, i := range S.Items() {
		if !T.Contains(i) {
			return false
		}
	}
	return true
}

// Equals compares two item sets, including lookaheads.
func (S *ItemSet) Equals(T *ItemSet) bool {
	if !S.CoreEquals(T) {
		return false
	}
	eq := true
	S.Each(func(i Item, la *intsets.Sparse) {
		if tla, _ := T.Lookahead(i); !la.Equals(tla) {
			eq = false
		}
	})
	return eq
}

func (S *ItemSet) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	first := true
	S.Each(func(i Item, la *intsets.Sparse) {
		if first {
			b.WriteString(" ")
			first = false
		} else {
			b.WriteString(", ")
		}
		b.WriteString(i.String())
		if !la.IsEmpty() {
			b.WriteString(la.String())
		}
	})
	b.WriteString(" }")
	return b.String()
}

// === Closure and Goto-Set Operations =======================================

// Refer to "Compilers: Principles, Techniques, and Tools" by Aho, Lam, Sethi
// and Ullman, section 4.7.2 Constructing LR(1) Sets of Items.

// closure computes the closure of a single item with lookahead la.
func (ga *LRAnalysis) closure(i Item, la *intsets.Sparse) *ItemSet {
	S := newItemSet()
	S.Add(i, la)
	return ga.closureSet(S)
}

// closureSet computes the closure of an item set. For every item
// [A ::= α • B β, z] and every rule B ::= γ, an item [B ::= • γ, FIRST(β z)]
// is added, until the set does not change any more. S is not modified.
func (ga *LRAnalysis) closureSet(S *ItemSet) *ItemSet {
	C := S.Copy()
	for changed := true; changed; {
		changed = false
		for _, item := range C.Items() {
			B := item.PeekSymbol()
			if B == nil || B.IsTerminal() {
				continue
			}
			la, _ := C.Lookahead(item)
			L := ga.firstOfSuffix(item.rule, item.dot+1, la)
			for _, p := range ga.g.ProductionsFor(B) {
				if C.Add(StartItem(ga.g.rules[p]), L) {
					changed = true
				}
			}
		}
	}
	return C
}

// gotoSet selects every item with A after the dot und advances the dot.
// Lookaheads are carried over unchanged. The result is the kernel of the
// successor state, which is empty if no item has A after the dot.
func (ga *LRAnalysis) gotoSet(closure *ItemSet, A *Symbol) *ItemSet {
	gotoset := newItemSet()
	closure.Each(func(i Item, la *intsets.Sparse) {
		if i.PeekSymbol() == A {
			ii := i.Advance()
			tracer().Debugf("goto(%s) -%s-> %s", i, A, ii)
			gotoset.Add(ii, la)
		}
	})
	return gotoset
}

// gotoSetClosure is GOTO(I, A) = closure(gotoSet(I, A)).
func (ga *LRAnalysis) gotoSetClosure(i *ItemSet, A *Symbol) *ItemSet {
	gotoset := ga.gotoSet(i, A)
	if gotoset.Empty() {
		return gotoset
	}
	gclosure := ga.closureSet(gotoset)
	tracer().Debugf("goto(%s) --%s--> %s", i, A, gclosure)
	return gclosure
}

// Closure is the exported form of the closure operation, mainly for
// inspection and testing.
func (ga *LRAnalysis) Closure(S *ItemSet) *ItemSet {
	return ga.closureSet(S)
}

// Goto is the exported form of GOTO(I, A).
func (ga *LRAnalysis) Goto(I *ItemSet, A *Symbol) *ItemSet {
	return ga.gotoSetClosure(I, A)
}

// StartSet returns the kernel of the seed state, i.e. { [S' ::= • S, #eof] }.
func (ga *LRAnalysis) StartSet() *ItemSet {
	S := newItemSet()
	la := &intsets.Sparse{}
	la.Insert(ga.g.EOF().ID)
	S.Add(StartItem(ga.g.rules[0]), la)
	return S
}
