package rvsdg

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/ops"
)

// CollapseGammaPredicate implements the gamma-predicate rule: if n's
// predicate is a constant control token, the chosen subregion is spliced
// into n's enclosing region in n's place and every other subregion is
// discarded. Returns nil if the predicate is not a constant.
//
// Splicing requires reaching into Region.nodes directly (a separate
// normalize package cannot do this through the public accessors alone), so
// this lives here rather than alongside the other node-normalization rules
// in internal/rvsdg/normalize.
func (g *Graph) CollapseGammaPredicate(n *Node) []Origin {
	predOut, ok := n.inputs[0].origin.(*Output)
	if !ok {
		return nil
	}
	cc, ok := predOut.node.op.(ops.ControlConstantOp)
	if !ok {
		return nil
	}
	errors.Check(cc.Value >= 0 && cc.Value < len(n.subregions), "gamma predicate collapse: constant case %d out of range [0,%d)", cc.Value, len(n.subregions))
	chosen := n.subregions[cc.Value]

	for _, arg := range chosen.arguments {
		if arg.EnclosingInput != nil {
			g.DivertUsers(arg, arg.EnclosingInput.origin)
		}
	}

	region := n.region
	pos := -1
	for i, other := range region.nodes {
		if other == n {
			pos = i
			break
		}
	}
	errors.Check(pos >= 0, "gamma predicate collapse: node #%d missing from its own region", n.id)

	for _, sn := range chosen.nodes {
		sn.region = region
	}
	spliced := make([]*Node, 0, len(region.nodes)-1+len(chosen.nodes))
	spliced = append(spliced, region.nodes[:pos]...)
	spliced = append(spliced, chosen.nodes...)
	spliced = append(spliced, region.nodes[pos+1:]...)
	region.nodes = spliced

	repl := make([]Origin, len(chosen.results))
	for i, res := range chosen.results {
		repl[i] = res.origin
	}
	return repl
}

// LiftGammaConstants implements the gamma-control-constant rule: if
// every subregion's result i is the identical ConstantOp value for every
// output i, the gamma computes nothing but a constant and is replaced
// wholesale by freshly materialized constants in the parent region. A
// partial match (some outputs constant, others not) does not qualify: the
// gamma node as a whole can only be removed once none of its outputs still
// need the real computation.
func (g *Graph) LiftGammaConstants(n *Node) []Origin {
	lifted := make([]Origin, len(n.outputs))
	for i := range n.outputs {
		var want ops.ConstantOp
		for si, sub := range n.subregions {
			out, ok := sub.results[i].origin.(*Output)
			if !ok {
				return nil
			}
			co, ok := out.node.op.(ops.ConstantOp)
			if !ok {
				return nil
			}
			if si == 0 {
				want = co
			} else if co.Value != want.Value || !co.T.Equal(want.T) {
				return nil
			}
		}
		lifted[i] = g.CreateNode(n.region, want, nil).Output(0)
	}
	return lifted
}
