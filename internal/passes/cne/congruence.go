package cne

import "jlmgo/internal/rvsdg"

// congruence computes equivalence classes over node outputs via
// iterative partition refinement: every node starts classified only by
// its own shape (familyHash), then each round folds in the current
// classes of its operands and subregion results, splitting classes whose
// members no longer agree. Driving this to a fixpoint with a fresh
// Jacobi-style (read-old, write-new) update each round, rather than a
// single topological walk, avoids having to fix an order across regions
// for the argument/enclosing-input dependency —
// operand classes simply stabilize a round later than they would with a
// hand-picked traversal order.
type congruence struct {
	classOf      map[*rvsdg.Node]uint64
	argSingleton map[*rvsdg.Argument]uint64
	nextID       uint64
}

func newCongruence() *congruence {
	return &congruence{classOf: map[*rvsdg.Node]uint64{}, argSingleton: map[*rvsdg.Argument]uint64{}}
}

// originClass resolves an Origin to its current-round class token: an
// Output's class is derived from its producing node's class plus its own
// index; an Argument backed by an enclosing input inherits that input's
// origin's class directly — region arguments are congruent iff they
// correspond to congruent enclosing inputs; an unbound argument (a pure
// function parameter, a phi self-reference) is only ever congruent to
// itself, so it gets a stable per-argument singleton token.
func (c *congruence) originClass(o rvsdg.Origin) uint64 {
	switch v := o.(type) {
	case *rvsdg.Output:
		return hashUint64s(c.classOf[v.Node()], uint64(v.Index()))
	case *rvsdg.Argument:
		if v.EnclosingInput != nil {
			return c.originClass(v.EnclosingInput.Origin())
		}
		if id, ok := c.argSingleton[v]; ok {
			return id
		}
		c.nextID++
		id := hashUint64s(0xA19, c.nextID)
		c.argSingleton[v] = id
		return id
	default:
		return 0
	}
}

// nodeSignature computes one round's class token for n from the previous
// round's classOf: its family shape, every input's operand class, and
// (for structural nodes) every subregion's results' classes, position-wise
// across all subregions — structural nodes participate by
// matching their subregion result classes position-wise.
func (c *congruence) nodeSignature(n *rvsdg.Node) uint64 {
	parts := []uint64{familyHash(n)}
	for _, in := range n.Inputs() {
		parts = append(parts, c.originClass(in.Origin()))
	}
	for _, sub := range n.Subregions() {
		for _, res := range sub.Results() {
			parts = append(parts, c.originClass(res.Origin()))
		}
	}
	return hashUint64s(parts...)
}

// allNodes collects every node reachable from region, recursing into
// subregions, in no particular order (the refinement loop does not need
// one).
func allNodes(region *rvsdg.Region, out []*rvsdg.Node) []*rvsdg.Node {
	for _, n := range region.Nodes() {
		out = append(out, n)
		for _, sub := range n.Subregions() {
			out = allNodes(sub, out)
		}
	}
	return out
}

// refine drives the partition to a fixpoint and returns the final
// per-node class assignment. Bounded by len(nodes)+1 rounds: each round
// either leaves every node's class unchanged (fixpoint) or the partition
// strictly refines, and a partition of N nodes can refine at most N times.
func refine(nodes []*rvsdg.Node) map[*rvsdg.Node]uint64 {
	c := newCongruence()
	for round := 0; round <= len(nodes); round++ {
		next := make(map[*rvsdg.Node]uint64, len(nodes))
		for _, n := range nodes {
			next[n] = c.nodeSignature(n)
		}
		stable := true
		for _, n := range nodes {
			if c.classOf[n] != next[n] {
				stable = false
				break
			}
		}
		c.classOf = next
		if stable {
			break
		}
	}
	return c.classOf
}
