// Package motion implements region-boundary motion rewrites:
// push-out and pull-in (this file and pull.go), theta-gamma inversion
// (invert.go) and loop unrolling (unroll.go). Grounded on the same
// reference pass-interface shape internal/passes/dne and
// internal/passes/cne are.
package motion

import "jlmgo/internal/rvsdg"

// PushOut hoists a simple node out of an enclosing theta once every one
// of its operands is loop-invariant — an argument whose loop variable is
// a pure pass-through — threading the hoisted value back in as a fresh
// pass-through loop variable for whatever inside the loop still consumes
// it.
type PushOut struct{}

func (PushOut) Name() string { return "push-out" }
func (PushOut) Description() string {
	return "hoists loop-invariant simple nodes out of theta bodies"
}

func (PushOut) Run(g *rvsdg.Graph) bool {
	return pushRegion(g, g.Root())
}

func pushRegion(g *rvsdg.Graph, region *rvsdg.Region) bool {
	changed := false
	for _, n := range region.Nodes() {
		for _, sub := range n.Subregions() {
			if pushRegion(g, sub) {
				changed = true
			}
		}
		if n.Kind() == rvsdg.KindTheta {
			if pushOutTheta(g, n) {
				changed = true
			}
		}
	}
	return changed
}

func pushOutTheta(g *rvsdg.Graph, theta *rvsdg.Node) bool {
	sub := theta.Subregion(0)
	outer := theta.Region()
	hoisted := map[*rvsdg.Node]bool{}
	changed := false

	for {
		progressed := false
		for _, sn := range sub.Nodes() {
			if sn.Kind() != rvsdg.KindSimple || hoisted[sn] {
				continue
			}
			if !allOperandsInvariant(theta, sub, sn, hoisted) {
				continue
			}
			hoistNode(g, theta, outer, sub, sn)
			hoisted[sn] = true
			progressed, changed = true, true
		}
		if !progressed {
			break
		}
	}
	return changed
}

func isPassThroughLoopVar(sub *rvsdg.Region, idx int) bool {
	res := sub.Result(idx + 1)
	arg, ok := res.Origin().(*rvsdg.Argument)
	return ok && arg == sub.Argument(idx)
}

func allOperandsInvariant(theta *rvsdg.Node, sub *rvsdg.Region, sn *rvsdg.Node, hoisted map[*rvsdg.Node]bool) bool {
	for _, in := range sn.Inputs() {
		switch o := in.Origin().(type) {
		case *rvsdg.Argument:
			if o.Region() != sub || !isPassThroughLoopVar(sub, o.Index()) {
				return false
			}
		case *rvsdg.Output:
			if o.Node().Region() == sub && !hoisted[o.Node()] {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// hoistNode moves sn from the theta's body into the enclosing region,
// rewiring its invariant-argument operands to the theta's own inputs and
// routing a new pass-through loop variable back in for any user that
// remains inside the body.
func hoistNode(g *rvsdg.Graph, theta *rvsdg.Node, outer *rvsdg.Region, sub *rvsdg.Region, sn *rvsdg.Node) {
	for _, in := range sn.Inputs() {
		if arg, ok := in.Origin().(*rvsdg.Argument); ok {
			g.RewireInput(in, theta.Input(arg.Index()).Origin())
		}
	}
	g.MoveNode(sn, outer, theta)

	for _, out := range sn.Outputs() {
		var internal []*rvsdg.Input
		for _, u := range out.Users() {
			if u.Region() == sub {
				internal = append(internal, u)
			}
		}
		if len(internal) == 0 {
			continue
		}
		arg := g.AddThetaPassThroughVar(theta, out)
		for _, u := range internal {
			g.RewireInput(u, arg)
		}
	}
}
