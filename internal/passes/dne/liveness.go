// Package dne implements dead-node elimination (C7): a two-phase
// mark-and-sweep pass that removes nodes, and individual structural-node
// ports, that no live consumer can reach.
package dne

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/rvsdg"
)

// liveness is the mark-phase result: the set of outputs and arguments a
// backward flood from the top-level region's results can reach.
type liveness struct {
	outputs map[*rvsdg.Output]bool
	args    map[*rvsdg.Argument]bool
}

func newLiveness() *liveness {
	return &liveness{outputs: map[*rvsdg.Output]bool{}, args: map[*rvsdg.Argument]bool{}}
}

func (lv *liveness) isOutputLive(o *rvsdg.Output) bool { return lv.outputs[o] }
func (lv *liveness) isArgLive(a *rvsdg.Argument) bool  { return lv.args[a] }

// markOrigin marks o live, returning whether that is new information.
func (lv *liveness) markOrigin(o rvsdg.Origin) bool {
	switch v := o.(type) {
	case *rvsdg.Output:
		if lv.outputs[v] {
			return false
		}
		lv.outputs[v] = true
		return true
	case *rvsdg.Argument:
		if lv.args[v] {
			return false
		}
		lv.args[v] = true
		return true
	default:
		errors.Invariant("dne: origin of unknown type %T", o)
		return false
	}
}

// mark runs the mark phase to a fixpoint: seed the live set from
// the top-level region's results, then repeatedly apply every structural
// node's propagation rule until nothing new is marked. A global fixpoint
// loop (rather than a single backward walk) sidesteps any assumption about
// the order in which a structural node's several live outputs are
// discovered — the theta rule in particular is itself an
// iterate-to-fixpoint sub-step, and the gamma/lambda/phi rules are equally
// safe to re-evaluate repeatedly since they only ever add bits.
func mark(g *rvsdg.Graph) *liveness {
	lv := newLiveness()
	top := g.Root()
	for {
		changed := false
		for _, res := range top.Results() {
			if lv.markOrigin(res.Origin()) {
				changed = true
			}
		}
		if markRegion(lv, top) {
			changed = true
		}
		if !changed {
			return lv
		}
	}
}

// markRegion applies every node's propagation rule once, recursing into
// subregions; returns whether anything new was marked.
func markRegion(lv *liveness, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		if markNode(lv, n) {
			changed = true
		}
		for _, sub := range n.Subregions() {
			if markRegion(lv, sub) {
				changed = true
			}
		}
	}
	return changed
}

func markNode(lv *liveness, n *rvsdg.Node) bool {
	switch n.Kind() {
	case rvsdg.KindSimple:
		return markSimple(lv, n)
	case rvsdg.KindGamma:
		return markGamma(lv, n)
	case rvsdg.KindTheta:
		return markTheta(lv, n)
	case rvsdg.KindLambda:
		return markLambda(lv, n)
	case rvsdg.KindPhi:
		return markPhi(lv, n)
	case rvsdg.KindDelta:
		return markDelta(lv, n)
	default:
		errors.Invariant("dne: unknown node kind %s", n.Kind())
		return false
	}
}

// markSimple: "if any output has a live user, mark all inputs live."
func markSimple(lv *liveness, n *rvsdg.Node) bool {
	live := false
	for _, out := range n.Outputs() {
		if lv.isOutputLive(out) {
			live = true
			break
		}
	}
	if !live {
		return false
	}
	changed := false
	for _, in := range n.Inputs() {
		if lv.markOrigin(in.Origin()) {
			changed = true
		}
	}
	return changed
}

// markGamma: "if output i is live, mark result i of every subregion live
// ... mark input j live iff at least one subregion's argument j-1 is live
// ... always mark the predicate input live if any output is live."
func markGamma(lv *liveness, n *rvsdg.Node) bool {
	changed := false
	anyLive := false
	for i, out := range n.Outputs() {
		if !lv.isOutputLive(out) {
			continue
		}
		anyLive = true
		for _, sub := range n.Subregions() {
			if lv.markOrigin(sub.Result(i).Origin()) {
				changed = true
			}
		}
	}
	if anyLive {
		if lv.markOrigin(n.Input(0).Origin()) {
			changed = true
		}
	}
	numEntryVars := n.NInputs() - 1
	for j := 0; j < numEntryVars; j++ {
		liveArg := false
		for _, sub := range n.Subregions() {
			if lv.isArgLive(sub.Argument(j)) {
				liveArg = true
				break
			}
		}
		if liveArg {
			if lv.markOrigin(n.Input(j + 1).Origin()) {
				changed = true
			}
		}
	}
	return changed
}

// markTheta: "if output i is live, mark both the corresponding subregion
// result and the input live; propagate; then re-run until no new
// argument-live => input-live propagation fires ... always mark the
// predicate result live."
func markTheta(lv *liveness, n *rvsdg.Node) bool {
	sub := n.Subregion(0)
	changed := false
	if lv.markOrigin(sub.Result(0).Origin()) {
		changed = true
	}
	for i, out := range n.Outputs() {
		if !lv.isOutputLive(out) {
			continue
		}
		if lv.markOrigin(sub.Result(i + 1).Origin()) {
			changed = true
		}
		if lv.markOrigin(n.Input(i).Origin()) {
			changed = true
		}
	}
	// A loop-carried variable can also be needed purely internally (the
	// body re-reads it next iteration) even when its external output is
	// dead; in that case sub.Argument(i) is already live from markSimple
	// propagation inside the body, and the back-edge must stay wired.
	for i := 0; i < n.NInputs(); i++ {
		if lv.isArgLive(sub.Argument(i)) {
			if lv.markOrigin(sub.Result(i + 1).Origin()) {
				changed = true
			}
			if lv.markOrigin(n.Input(i).Origin()) {
				changed = true
			}
		}
	}
	return changed
}

// markLambda: "if the lambda output is live, mark every result live and
// propagate; context-variable input is live iff its argument is live."
func markLambda(lv *liveness, n *rvsdg.Node) bool {
	changed := false
	if lv.isOutputLive(n.Output(0)) {
		sub := n.Subregion(0)
		for _, res := range sub.Results() {
			if lv.markOrigin(res.Origin()) {
				changed = true
			}
		}
	}
	sub := n.Subregion(0)
	for i := 0; i < n.Lambda.NumContext; i++ {
		if lv.isArgLive(sub.Argument(i)) {
			if lv.markOrigin(n.Input(i).Origin()) {
				changed = true
			}
		}
	}
	return changed
}

// markPhi: "a result is live iff its output is live; then propagate."
// External-dependency inputs follow the same context-variable rule as
// lambda, since a phi's external-dep arguments are wired the same way.
func markPhi(lv *liveness, n *rvsdg.Node) bool {
	changed := false
	sub := n.Subregion(0)
	for i, out := range n.Outputs() {
		if lv.isOutputLive(out) {
			if lv.markOrigin(sub.Result(i).Origin()) {
				changed = true
			}
		}
	}
	nNames := len(n.Phi.Names)
	for i := 0; i < n.NInputs(); i++ {
		if lv.isArgLive(sub.Argument(nNames + i)) {
			if lv.markOrigin(n.Input(i).Origin()) {
				changed = true
			}
		}
	}
	return changed
}

// markDelta: "input live iff its output is live." The global's
// initializer (subregion result 0) must also run whenever the delta's
// output is live.
func markDelta(lv *liveness, n *rvsdg.Node) bool {
	if !lv.isOutputLive(n.Output(0)) {
		return false
	}
	changed := false
	sub := n.Subregion(0)
	if lv.markOrigin(sub.Result(0).Origin()) {
		changed = true
	}
	for _, in := range n.Inputs() {
		if lv.markOrigin(in.Origin()) {
			changed = true
		}
	}
	return changed
}
