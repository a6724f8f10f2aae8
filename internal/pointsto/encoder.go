package pointsto

import (
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// BasicEncoder implements the basic memory-state encoder: given a
// points-to graph, it replaces each lambda's single monolithic
// memory-state thread with one edge per points-to location class the
// lambda's own body can statically distinguish, rewiring alloca/load/
// store to read and write only the class(es) their own pointer operand
// may reach. A node this encoder cannot see through precisely (a call,
// or a nested gamma/theta still carrying the single pre-encoding edge)
// is treated as an opaque full-memory access: every currently-separate
// edge is merged into one with a MuxOp before feeding it, and split
// back out with a DemuxOp afterward.
//
// This encoder works purely within a lambda's own flat node list; it
// does not grow the lambda's external parameter/result arity (so
// nothing outside the function observes the extra edges) and does not
// recurse into a nested gamma/theta's own internal threading — that
// deeper, structural-arity-growing version of the rewrite is exactly
// the refinement the advanced encoder's routing plan is responsible for,
// which this package keeps as an explicitly open design question (see
// advanced.go).
type BasicEncoder struct {
	PTG *Graph
}

// Encode rewrites every lambda reachable from g's root whose body has a
// single memory-state parameter and result, returning whether any
// lambda was refined (a lambda whose pointer traffic all resolves to
// one class, or that touches no memory at all, is left untouched —
// there is nothing to gain by splitting one edge into one edge).
func (e *BasicEncoder) Encode(g *rvsdg.Graph) bool {
	return e.encodeRegion(g, g.Root())
}

func (e *BasicEncoder) encodeRegion(g *rvsdg.Graph, r *rvsdg.Region) bool {
	changed := false
	for _, n := range r.Nodes() {
		switch n.Kind() {
		case rvsdg.KindLambda:
			if e.encodeLambda(g, n) {
				changed = true
			}
		case rvsdg.KindPhi, rvsdg.KindDelta:
			if e.encodeRegion(g, n.Subregion(0)) {
				changed = true
			}
		}
	}
	return changed
}

func memoryArgIndex(sub *rvsdg.Region) int {
	for i := 0; i < sub.NArguments(); i++ {
		if _, ok := sub.Argument(i).Type().(types.MemoryState); ok {
			return i
		}
	}
	return -1
}

func memoryResultIndex(sub *rvsdg.Region) int {
	for i := 0; i < sub.NResults(); i++ {
		if _, ok := sub.Result(i).Type().(types.MemoryState); ok {
			return i
		}
	}
	return -1
}

func (e *BasicEncoder) encodeLambda(g *rvsdg.Graph, lam *rvsdg.Node) bool {
	sub := lam.Subregion(0)
	memArgIdx := memoryArgIndex(sub)
	memResIdx := memoryResultIndex(sub)
	if memArgIdx < 0 || memResIdx < 0 {
		return false
	}

	classes := e.touchedClasses(sub)
	if len(classes) < 2 {
		return false
	}

	memArg := sub.Argument(memArgIdx)
	original := sub.Nodes()
	demux := g.CreateNode(sub, ops.DemuxOp{N: len(classes)}, []rvsdg.Origin{memArg})
	g.MoveNode(demux, sub, firstOrNil(original))

	current := map[int]rvsdg.Origin{}
	for i, c := range classes {
		current[c] = demux.Output(i)
	}

	for _, n := range original {
		e.rewriteNode(g, n, classes, current)
	}

	finalMux := g.CreateNode(sub, ops.MuxOp{N: len(classes)}, edgesInOrder(classes, current))
	g.RewireInput(sub.Result(memResIdx), finalMux.Output(0))
	return true
}

func firstOrNil(nodes []*rvsdg.Node) *rvsdg.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func edgesInOrder(classes []int, current map[int]rvsdg.Origin) []rvsdg.Origin {
	out := make([]rvsdg.Origin, len(classes))
	for i, c := range classes {
		out[i] = current[c]
	}
	return out
}

// touchedClasses returns, in a stable order, every points-to class
// reachable from a pointer operand of an alloca/load/store found
// anywhere in sub's flat node list.
func (e *BasicEncoder) touchedClasses(sub *rvsdg.Region) []int {
	seen := map[int]bool{}
	var out []int
	add := func(o rvsdg.Origin) {
		id, ok := e.PTG.ClassOf(o)
		if !ok {
			return
		}
		for _, loc := range e.PTG.ReachableLocations(id) {
			if !seen[loc] {
				seen[loc] = true
				out = append(out, loc)
			}
		}
	}
	for _, n := range sub.Nodes() {
		switch op := n.Operation().(type) {
		case ops.AllocaOp:
			add(n.Output(0))
		case ops.LoadOp:
			_ = op
			add(n.Input(0).Origin())
		case ops.StoreOp:
			add(n.Input(0).Origin())
		}
	}
	return out
}

// classesFor returns the subset of classes a pointer origin's points-to
// set reaches, restricted to (and ordered like) the lambda's own
// touched-class list; a pointer this encoder cannot resolve to any
// known class conservatively reaches all of them.
func (e *BasicEncoder) classesFor(origin rvsdg.Origin, classes []int) []int {
	id, ok := e.PTG.ClassOf(origin)
	if !ok {
		return classes
	}
	reach := map[int]bool{}
	for _, loc := range e.PTG.ReachableLocations(id) {
		reach[loc] = true
	}
	var out []int
	for _, c := range classes {
		if reach[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return classes
	}
	return out
}

// mergeFor produces a single memory-state origin covering exactly the
// given classes: the class's own current edge directly if there is
// only one, otherwise a fresh MuxOp over all of them.
func (e *BasicEncoder) mergeFor(g *rvsdg.Graph, sub *rvsdg.Region, classes []int, current map[int]rvsdg.Origin) rvsdg.Origin {
	if len(classes) == 1 {
		return current[classes[0]]
	}
	mux := g.CreateNode(sub, ops.MuxOp{N: len(classes)}, edgesInOrder(classes, current))
	return mux.Output(0)
}

// splitInto updates current[c] for every c in classes to a fresh
// per-class copy of merged — a DemuxOp if there is more than one class,
// otherwise merged itself.
func (e *BasicEncoder) splitInto(g *rvsdg.Graph, sub *rvsdg.Region, classes []int, merged rvsdg.Origin, current map[int]rvsdg.Origin) {
	if len(classes) == 1 {
		current[classes[0]] = merged
		return
	}
	demux := g.CreateNode(sub, ops.DemuxOp{N: len(classes)}, []rvsdg.Origin{merged})
	for i, c := range classes {
		current[c] = demux.Output(i)
	}
}

func (e *BasicEncoder) rewriteNode(g *rvsdg.Graph, n *rvsdg.Node, classes []int, current map[int]rvsdg.Origin) {
	switch op := n.Operation().(type) {
	case ops.AllocaOp:
		_ = op
		cs := e.classesFor(n.Output(0), classes)
		g.RewireInput(n.Input(0), e.mergeFor(g, n.Region(), cs, current))
		e.splitInto(g, n.Region(), cs, n.Output(1), current)

	case ops.LoadOp:
		cs := e.classesFor(n.Input(0).Origin(), classes)
		g.RewireInput(n.Input(1), e.mergeFor(g, n.Region(), cs, current))

	case ops.StoreOp:
		cs := e.classesFor(n.Input(0).Origin(), classes)
		g.RewireInput(n.Input(2), e.mergeFor(g, n.Region(), cs, current))
		e.splitInto(g, n.Region(), cs, n.Output(0), current)

	default:
		e.rewriteOpaqueMemoryUser(g, n, classes, current)
	}
}

// rewriteOpaqueMemoryUser handles any other node — a call, or a nested
// gamma/theta — that still has a MemoryState-typed input or output:
// every class's current edge is merged into one for its inputs, and
// every MemoryState output is split back across every class.
func (e *BasicEncoder) rewriteOpaqueMemoryUser(g *rvsdg.Graph, n *rvsdg.Node, classes []int, current map[int]rvsdg.Origin) {
	touchesMemory := false
	for _, in := range n.Inputs() {
		if _, ok := in.Type().(types.MemoryState); ok {
			touchesMemory = true
			break
		}
	}
	for _, out := range n.Outputs() {
		if _, ok := out.Type().(types.MemoryState); ok {
			touchesMemory = true
			break
		}
	}
	if !touchesMemory {
		return
	}
	merged := e.mergeFor(g, n.Region(), classes, current)
	for _, in := range n.Inputs() {
		if _, ok := in.Type().(types.MemoryState); ok {
			g.RewireInput(in, merged)
		}
	}
	for _, out := range n.Outputs() {
		if _, ok := out.Type().(types.MemoryState); ok {
			e.splitInto(g, n.Region(), classes, out, current)
		}
	}
}
