package rvsdg

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/ops"
	"jlmgo/internal/types"
)

// CreateNode creates a simple node for op in region, wired to origins in
// order. Arity and type mismatches between origins and op.InputTypes() are
// internal invariant violations: the caller (construction, a rewrite rule)
// is responsible for type-correct wiring.
func (g *Graph) CreateNode(region *Region, op ops.Operation, origins []Origin) *Node {
	inTypes := op.InputTypes()
	errors.Check(len(origins) == len(inTypes), "create_node %s: got %d origins, want %d", op.Name(), len(origins), len(inTypes))

	n := &Node{id: g.allocNodeID(), region: region, kind: KindSimple, op: op}
	for i, origin := range origins {
		errors.Check(origin.Type().Equal(inTypes[i]), "create_node %s: input %d type mismatch: %s vs %s", op.Name(), i, origin.Type(), inTypes[i])
		n.addInput(origin, inTypes[i])
	}
	for _, t := range op.OutputTypes() {
		n.addOutput(t)
	}
	region.nodes = append(region.nodes, n)

	g.offer(n)
	return n
}

// newStructuralNode is the shared constructor for gamma/theta/lambda/phi/
// delta; arity-specific wiring lives in the per-variant constructors in
// structural.go.
func (g *Graph) newStructuralNode(region *Region, kind NodeKind, nsubregions int) *Node {
	n := &Node{id: g.allocNodeID(), region: region, kind: kind}
	n.subregions = make([]*Region, nsubregions)
	for i := range n.subregions {
		n.subregions[i] = &Region{graph: g, parent: n}
	}
	region.nodes = append(region.nodes, n)
	return n
}

// RemoveNode destroys a node, which must have zero users on every output.
// Removing a node severs its inputs' user-list
// entries on their origins so no dangling user-list entries persist.
func (g *Graph) RemoveNode(n *Node) {
	errors.Check(!n.HasLiveUsers(), "remove_node: node #%d (%s) still has live users", n.id, n.familyName())

	for _, in := range n.inputs {
		in.origin.removeUser(in)
	}
	region := n.region
	for i, other := range region.nodes {
		if other == n {
			region.nodes = append(region.nodes[:i], region.nodes[i+1:]...)
			break
		}
	}
}

// DivertUsers rewires every user of from to point at to instead, updating
// both halves of the bidirectional edge atomically.
func (g *Graph) DivertUsers(from Origin, to Origin) {
	errors.Check(from.Type().Equal(to.Type()), "divert_users: type mismatch %s vs %s", from.Type(), to.Type())

	users := from.Users()
	for _, u := range users {
		from.removeUser(u)
		u.origin = to
		to.addUser(u)
	}
}

// Prune batch-removes every node in region with no live users, repeating
// until a fixpoint (no node qualifies): "drop anything dead" without
// DNE's full mark phase.
func (g *Graph) Prune(region *Region) int {
	removed := 0
	for {
		progress := false
		for _, n := range region.Nodes() {
			if !n.HasLiveUsers() {
				g.RemoveNode(n)
				removed++
				progress = true
			}
		}
		if !progress {
			return removed
		}
	}
}

func (n *Node) familyName() string {
	if n.kind != KindSimple {
		return n.kind.String()
	}
	return n.op.Name()
}

// TypeOf is a small helper so callers that only have an Origin (Output or
// Argument) can ask its type uniformly; kept here rather than on the
// Origin interface to avoid exporting it as part of every Origin
// implementor's surface area.
func TypeOf(o Origin) types.Type { return o.Type() }
