// Package inline implements function inlining and invariant-value
// redirection (C11), grounded on the same `passes.Pass` interface
// shape as internal/passes/dne and internal/passes/cne.
package inline

import (
	"jlmgo/internal/ops"
	"jlmgo/internal/passes"
	"jlmgo/internal/rvsdg"
)

var (
	_ passes.Pass = Inline{}
	_ passes.Pass = IVR{}
)

// Inline replaces a direct call — a CallOp whose callee origin is a
// lambda's own output — with a substitution of the lambda's body into
// the calling region: the body's context-variable arguments map to the
// lambda's own captured inputs, its parameter arguments map to the
// call's argument origins, and its results replace the call's outputs.
type Inline struct{}

func (Inline) Name() string        { return "function-inlining" }
func (Inline) Description() string { return "substitutes direct calls with the callee's body" }

func (Inline) Run(g *rvsdg.Graph) bool {
	return inlineRegion(g, g.Root())
}

func inlineRegion(g *rvsdg.Graph, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if inlineRegion(g, sub) {
				changed = true
			}
		}
	}
	// Re-snapshot after recursing: a region's own node list only grows
	// from inlining calls that live directly in it, never inside a
	// subregion just visited above.
	for _, n := range region.Nodes() {
		if call, ok := n.Operation().(ops.CallOp); ok {
			if inlineCall(g, n, call) {
				changed = true
			}
		}
	}
	return changed
}

func inlineCall(g *rvsdg.Graph, call *rvsdg.Node, op ops.CallOp) bool {
	lamOut, ok := call.Input(0).Origin().(*rvsdg.Output)
	if !ok || lamOut.Node().Kind() != rvsdg.KindLambda {
		return false
	}
	lam := lamOut.Node()
	sub := lam.Subregion(0)
	region := call.Region()
	numCtx := lam.Lambda.NumContext

	argOrigins := make([]rvsdg.Origin, sub.NArguments())
	for i := 0; i < numCtx; i++ {
		argOrigins[i] = lam.Input(i).Origin()
	}
	for i := range op.Args {
		argOrigins[numCtx+i] = call.Input(i + 1).Origin()
	}

	results := g.CloneRegionInto(sub, region, argOrigins)
	for i, r := range results {
		g.DivertUsers(call.Output(i), r)
	}
	g.RemoveNode(call)
	return true
}

// IVR is invariant-value redirection: a gamma output whose every
// subregion returns the same entry variable unchanged, or a theta
// output whose body re-exports its own loop argument unchanged every
// iteration, never actually varies — its users are rewired straight to
// the origin feeding that entry/loop variable, after which dead-node
// elimination removes the now-unused structural port.
type IVR struct{}

func (IVR) Name() string { return "invariant-value-redirection" }
func (IVR) Description() string {
	return "redirects gamma/theta outputs that never vary to their enclosing input"
}

func (IVR) Run(g *rvsdg.Graph) bool {
	return ivrRegion(g, g.Root())
}

func ivrRegion(g *rvsdg.Graph, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if ivrRegion(g, sub) {
				changed = true
			}
		}
		switch n.Kind() {
		case rvsdg.KindGamma:
			if ivrGamma(g, n) {
				changed = true
			}
		case rvsdg.KindTheta:
			if ivrTheta(g, n) {
				changed = true
			}
		}
	}
	return changed
}

func ivrGamma(g *rvsdg.Graph, n *rvsdg.Node) bool {
	changed := false
	for i := 0; i < n.NOutputs(); i++ {
		if len(n.Output(i).Users()) == 0 {
			continue
		}
		j, ok := gammaInvariantArgIndex(n, i)
		if !ok {
			continue
		}
		g.DivertUsers(n.Output(i), n.Input(j+1).Origin())
		changed = true
	}
	return changed
}

// gammaInvariantArgIndex reports the single entry-variable argument
// index every subregion's result i traces back to unchanged, if all
// subregions agree on the same one.
func gammaInvariantArgIndex(n *rvsdg.Node, outIdx int) (int, bool) {
	j := -1
	for _, sub := range n.Subregions() {
		arg, ok := sub.Result(outIdx).Origin().(*rvsdg.Argument)
		if !ok || arg.Region() != sub {
			return 0, false
		}
		if j == -1 {
			j = arg.Index()
		} else if arg.Index() != j {
			return 0, false
		}
	}
	return j, true
}

func ivrTheta(g *rvsdg.Graph, n *rvsdg.Node) bool {
	changed := false
	sub := n.Subregion(0)
	for i := 0; i < n.NOutputs(); i++ {
		if len(n.Output(i).Users()) == 0 {
			continue
		}
		res, ok := sub.Result(i + 1).Origin().(*rvsdg.Argument)
		if !ok || res != sub.Argument(i) {
			continue
		}
		g.DivertUsers(n.Output(i), n.Input(i).Origin())
		changed = true
	}
	return changed
}
