package rvsdg

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/types"
)

// CloneRegionInto deep-copies src's node list into dest (which must
// already exist; the copies are added alongside any nodes dest already
// holds) and returns the origins that correspond to src's own results,
// translated into dest's namespace.
// argOrigins supplies, in order, what each of src's own arguments maps to
// inside dest — dest must already have at least that many arguments (or
// the caller passes arbitrary origins reachable from dest, e.g. another
// region's arguments when splicing across a boundary).
//
// Used by loop unrolling to replicate a theta's body and by inlining to
// splice a callee's body into the call's region; scoped to
// the node kinds a loop body realistically contains — simple nodes and
// nested gamma/theta. A src containing a lambda, phi, or delta (a nested
// function/global definition inside a loop body) is not expected to occur
// post-construction and is rejected rather than silently mishandled.
func (g *Graph) CloneRegionInto(src, dest *Region, argOrigins []Origin) []Origin {
	errors.Check(len(argOrigins) == len(src.arguments), "clone_region: %d argument origins, want %d", len(argOrigins), len(src.arguments))

	originOf := func(o Origin) Origin {
		switch v := o.(type) {
		case *Argument:
			if v.region == src {
				return argOrigins[v.index]
			}
			return o
		default:
			return o
		}
	}

	cloned := map[*Node]*Node{}
	var cloneNode func(n *Node) *Node
	cloneNode = func(n *Node) *Node {
		origins := make([]Origin, len(n.inputs))
		for i, in := range n.inputs {
			if prod, ok := in.origin.(*Output); ok {
				if cn, ok := cloned[prod.node]; ok {
					origins[i] = cn.outputs[prod.index]
					continue
				}
			}
			origins[i] = originOf(in.origin)
		}

		switch n.kind {
		case KindSimple:
			return g.CreateNode(dest, n.op, origins)
		case KindGamma:
			return g.cloneGamma(n, dest, origins)
		case KindTheta:
			return g.cloneTheta(n, dest, origins)
		default:
			errors.Invariant("clone_region: cannot clone a %s node inside a loop body", n.kind)
			return nil
		}
	}

	for _, n := range src.nodes {
		cloned[n] = cloneNode(n)
	}

	results := make([]Origin, len(src.results))
	for i, res := range src.results {
		if prod, ok := res.origin.(*Output); ok {
			if cn, ok := cloned[prod.node]; ok {
				results[i] = cn.outputs[prod.index]
				continue
			}
		}
		results[i] = originOf(res.origin)
	}
	return results
}

func (g *Graph) cloneGamma(n *Node, dest *Region, origins []Origin) *Node {
	outTypes := make([]types.Type, len(n.outputs))
	for i, o := range n.outputs {
		outTypes[i] = o.typ
	}
	newN := g.NewGamma(dest, origins[0], origins[1:], outTypes)
	for i, sub := range n.subregions {
		newSub := newN.subregions[i]
		subArgOrigins := make([]Origin, len(sub.arguments))
		for j := range subArgOrigins {
			subArgOrigins[j] = newSub.arguments[j]
		}
		results := g.CloneRegionInto(sub, newSub, subArgOrigins)
		for _, r := range results {
			newSub.AddResult(r)
		}
	}
	return newN
}

func (g *Graph) cloneTheta(n *Node, dest *Region, origins []Origin) *Node {
	newN := g.NewTheta(dest, origins)
	sub := n.subregions[0]
	newSub := newN.subregions[0]
	subArgOrigins := make([]Origin, len(sub.arguments))
	for j := range subArgOrigins {
		subArgOrigins[j] = newSub.arguments[j]
	}
	results := g.CloneRegionInto(sub, newSub, subArgOrigins)
	for _, r := range results {
		newSub.AddResult(r)
	}
	return newN
}
