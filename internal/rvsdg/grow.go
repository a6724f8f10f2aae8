package rvsdg

import "jlmgo/internal/errors"

// This file adds the structural-node arity-growing and node-relocation
// primitives region-boundary motion needs: push-out and pull-in
// both thread a value across a structural node's boundary by adding a new
// port, then physically move a node from one region's node list to
// another's. Like prune_ports.go's shrinking primitives, these touch
// unexported Node/Region fields and so must live in this package.

// AddThetaPassThroughVar extends theta n with one more loop variable whose
// initial value is initial and whose body is a pure pass-through (the new
// subregion argument is its own back-edge result) — the "route a new
// pass-through" step of push-out. Returns the new subregion argument,
// which the caller redirects any former in-loop users of the hoisted
// value to.
func (g *Graph) AddThetaPassThroughVar(n *Node, initial Origin) *Argument {
	errors.Check(n.kind == KindTheta, "AddThetaPassThroughVar: not a theta")
	in := n.addInput(initial, initial.Type())
	n.addOutput(initial.Type())
	sub := n.subregions[0]
	arg := sub.AddArgument(initial.Type(), in)
	sub.AddResult(arg)
	return arg
}

// AddGammaEntryVar extends gamma n with one more entry variable importing
// origin, adding a correspondingly-typed argument to every subregion.
// Returns the new arguments in subregion order — the "sink it into that
// subregion" step of pull-in only needs the one for its target
// subregion; the others are left unused and, if they stay unused, a later
// dead-node-elimination pass will eventually prune them as soon as every
// subregion agrees they're dead.
func (g *Graph) AddGammaEntryVar(n *Node, origin Origin) []*Argument {
	errors.Check(n.kind == KindGamma, "AddGammaEntryVar: not a gamma")
	in := n.addInput(origin, origin.Type())
	args := make([]*Argument, len(n.subregions))
	for i, sub := range n.subregions {
		args[i] = sub.AddArgument(origin.Type(), in)
	}
	return args
}

// RewireInput severs in from its current origin and points it at
// newOrigin instead, keeping both origins' user lists consistent. Used by
// push-out/pull-in to redirect a node's operand across a region boundary
// without disturbing the rest of the graph.
func (g *Graph) RewireInput(in *Input, newOrigin Origin) {
	in.origin.removeUser(in)
	in.origin = newOrigin
	newOrigin.addUser(in)
}

// MoveNode relocates sn from its current region into dest. If before is
// non-nil, sn is inserted immediately ahead of it in dest's node list
// (push-out needs this: the hoisted node must precede the theta it used
// to live inside, since the theta now consumes its output); otherwise sn
// is appended at the end. sn's own inputs/outputs/subregions are
// untouched — callers are responsible for rewiring any input whose origin
// is no longer reachable from the new location before calling this.
func (g *Graph) MoveNode(sn *Node, dest *Region, before *Node) {
	src := sn.region
	for i, other := range src.nodes {
		if other == sn {
			src.nodes = append(src.nodes[:i], src.nodes[i+1:]...)
			break
		}
	}
	sn.region = dest
	if before == nil {
		dest.nodes = append(dest.nodes, sn)
		return
	}
	pos := len(dest.nodes)
	for i, other := range dest.nodes {
		if other == before {
			pos = i
			break
		}
	}
	dest.nodes = append(dest.nodes, nil)
	copy(dest.nodes[pos+1:], dest.nodes[pos:])
	dest.nodes[pos] = sn
}
