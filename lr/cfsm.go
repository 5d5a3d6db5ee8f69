package lr

import (
	"fmt"
	"io"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/tools/container/intsets"
)

// === CFSM Construction =====================================================

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 6.2.1 LR(0) Parsing

// CFSMState is a state within the CFSM for a grammar.
type CFSMState struct {
	ID     int      // serial ID of this state
	items  *ItemSet // configuration items within this state
	kernel *ItemSet // kernel items of this state
	Accept bool     // is this an accepting state?
}

// CFSM edge between 2 states, directed and labeled with a grammar symbol.
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *Symbol
}

// Items returns the (closed) item set of a state. After lookahead computation
// the lookahead sets of the items are the LALR(1) lookaheads.
func (s *CFSMState) Items() *ItemSet {
	return s.items
}

// Kernel returns the kernel items of a state.
func (s *CFSMState) Kernel() *ItemSet {
	return s.kernel
}

// Dump is a debugging helper
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	s.items.Each(func(i Item, la *intsets.Sparse) {
		tracer().Debugf("  %v %v", i, la)
	})
	tracer().Debugf("-------------------------")
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.Size())
}

func (s *CFSMState) containsCompletedStartRule() bool {
	for _, i := range s.kernel.Items() {
		if i.rule.Serial == 0 && i.IsReduceReady() {
			return true
		}
	}
	return false
}

// We need this for the set of states. It sorts states by serial ID.
func stateComparator(s1, s2 interface{}) int {
	c1 := s1.(*CFSMState)
	c2 := s2.(*CFSMState)
	return utils.IntComparator(c1.ID, c2.ID)
}

// CFSM is the characteristic finite state machine for a LR grammar, i.e. the
// LR(0) state diagram. Will be constructed by a TableGenerator.
// States are identified by their LR(0) kernel; lookaheads are kept apart in
// a LookaheadTable. Clients normally do not use the CFSM directly.
// Nevertheless, there are some methods defined on it, e.g, for debugging
// purposes, or even to compute your own tables from it.
type CFSM struct {
	g       *Grammar                   // this CFSM is for Grammar g
	states  *treeset.Set               // all the states
	edges   *arraylist.List            // all the edges between states
	S0      *CFSMState                 // start state
	byCore  map[string][]*CFSMState    // kernel fingerprint -> states
	trans   map[transition]*CFSMState  // (state, symbol) -> state
	byID    []*CFSMState               // states indexed by ID
	outs    map[*CFSMState][]*cfsmEdge // outgoing edges per state
}

type transition struct {
	from   int
	symbol int
}

// create an empty (initial) CFSM automata.
func emptyCFSM(g *Grammar) *CFSM {
	return &CFSM{
		g:      g,
		states: treeset.NewWith(stateComparator),
		edges:  arraylist.New(),
		byCore: make(map[string][]*CFSMState),
		trans:  make(map[transition]*CFSMState),
		outs:   make(map[*CFSMState][]*cfsmEdge),
	}
}

// kernelCore is the fingerprint of an LR(0) kernel, ignoring lookaheads.
type kernelCore struct {
	Items [][2]int
}

func coreKey(kernel *ItemSet) string {
	kc := kernelCore{}
	for _, i := range kernel.Items() {
		kc.Items = append(kc.Items, [2]int{i.rule.Serial, i.dot})
	}
	h, err := structhash.Hash(kc, 1)
	if err != nil { // cannot happen for plain int slices
		panic(fmt.Sprintf("cannot fingerprint kernel: %v", err))
	}
	return h
}

// addState adds a state for a kernel and its closure, if no state with the
// same LR(0) kernel is present. It returns the state and true, if it is new.
func (c *CFSM) addState(kernel, closure *ItemSet) (*CFSMState, bool) {
	key := coreKey(kernel)
	for _, s := range c.byCore[key] {
		if s.kernel.CoreEquals(kernel) {
			return s, false
		}
	}
	s := &CFSMState{ID: len(c.byID), items: closure, kernel: kernel}
	s.Accept = s.containsCompletedStartRule()
	c.byCore[key] = append(c.byCore[key], s)
	c.byID = append(c.byID, s)
	c.states.Add(s)
	return s, true
}

// findStateByItems finds a state by its kernel core.
func (c *CFSM) findStateByItems(kernel *ItemSet) *CFSMState {
	for _, s := range c.byCore[coreKey(kernel)] {
		if s.kernel.CoreEquals(kernel) {
			return s
		}
	}
	return nil
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *Symbol) *cfsmEdge {
	e := &cfsmEdge{from: s0, to: s1, label: sym}
	c.edges.Add(e)
	c.outs[s0] = append(c.outs[s0], e)
	c.trans[transition{s0.ID, sym.ID}] = s1
	return e
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	return c.outs[s]
}

// Size returns the number of states.
func (c *CFSM) Size() int {
	return len(c.byID)
}

// State returns the state with a given ID, or nil.
func (c *CFSM) State(id int) *CFSMState {
	if id < 0 || id >= len(c.byID) {
		return nil
	}
	return c.byID[id]
}

// States returns all states, ordered by ID.
func (c *CFSM) States() []*CFSMState {
	return append([]*CFSMState(nil), c.byID...)
}

// Goto returns the successor of state s on symbol A, or nil if there is
// no transition.
func (c *CFSM) Goto(s *CFSMState, A *Symbol) *CFSMState {
	if s == nil || A == nil {
		return nil
	}
	return c.trans[transition{s.ID, A.ID}]
}

// EdgeCount returns the number of transitions of the CFSM.
func (c *CFSM) EdgeCount() int {
	return c.edges.Size()
}

// Construct the characteristic finite state machine CFSM for a grammar.
// States are discovered in breadth first order, starting from the closure of
// [S' ::= • S, #eof]. For every state and every grammar symbol (in order of
// symbol IDs) the GOTO kernel is computed; kernels with an already known
// LR(0) core map to the existing state.
func (lrgen *TableGenerator) buildCFSM() *CFSM {
	tracer().Debugf("=== build CFSM ==================================================")
	G := lrgen.g
	cfsm := emptyCFSM(G)
	kernel0 := lrgen.ga.StartSet()
	closure0 := lrgen.ga.closureSet(kernel0)
	cfsm.S0, _ = cfsm.addState(kernel0, closure0)
	cfsm.S0.Dump()
	S := treeset.NewWith(stateComparator)
	S.Add(cfsm.S0)
	for S.Size() > 0 {
		s := S.Values()[0].(*CFSMState)
		S.Remove(s)
		G.EachSymbol(func(A *Symbol) interface{} {
			kernel := lrgen.ga.gotoSet(s.items, A)
			if kernel.Empty() {
				return nil
			}
			tracer().Debugf("checking goto-set for symbol = %v", A)
			snew := cfsm.findStateByItems(kernel)
			if snew == nil {
				snew, _ = cfsm.addState(kernel, lrgen.ga.closureSet(kernel))
				S.Add(snew)
				snew.Dump()
			}
			cfsm.addEdge(s, snew, A)
			return nil
		})
	}
	tracer().Infof("CFSM for %s has %d states and %d edges", G.Name, cfsm.Size(), cfsm.EdgeCount())
	return cfsm
}

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format.
func (c *CFSM) CFSM2GraphViz(w io.Writer) error {
	_, err := io.WriteString(w, `digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	if err != nil {
		return err
	}
	for _, s := range c.byID {
		if _, err = fmt.Fprintf(w, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s.ID, nodecolor(s), s.ID, forGraphviz(s.items)); err != nil {
			return err
		}
	}
	it := c.edges.Iterator()
	for it.Next() {
		edge := it.Value().(*cfsmEdge)
		if _, err = fmt.Fprintf(w, "s%03d -> s%03d [label=\"%s\"]\n",
			edge.from.ID, edge.to.ID, escapeGraphviz(edge.label.String())); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "}\n")
	return err
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}
