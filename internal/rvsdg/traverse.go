package rvsdg

// Traverser walks a region's nodes in a fixed order taken at construction
// time: it stays safe against node removal of the currently-yielded
// node and its strictly-later successors — a node removed before it is
// reached is simply skipped rather than yielded. Region.nodes is
// maintained in topological (insertion) order (see graph.go), so a
// top-down traverser is just that order and a bottom-up traverser is its
// reverse, with ties broken by insertion order.
type Traverser struct {
	region *Region
	order  []*Node
	pos    int
}

// NewTopDownTraverser visits nodes so that successors of already-visited
// nodes become visitable, ties broken by insertion order.
func NewTopDownTraverser(r *Region) *Traverser {
	return &Traverser{region: r, order: r.Nodes()}
}

// NewBottomUpTraverser is the dual of NewTopDownTraverser.
func NewBottomUpTraverser(r *Region) *Traverser {
	nodes := r.Nodes()
	rev := make([]*Node, len(nodes))
	for i, n := range nodes {
		rev[len(nodes)-1-i] = n
	}
	return &Traverser{region: r, order: rev}
}

// Next returns the next live node in traversal order, or (nil, false) when
// exhausted. Nodes removed since the traverser was constructed are skipped.
func (t *Traverser) Next() (*Node, bool) {
	for t.pos < len(t.order) {
		n := t.order[t.pos]
		t.pos++
		if t.region.contains(n) {
			return n, true
		}
	}
	return nil, false
}

// Each runs fn over every live node in traversal order; fn may remove the
// node it is given (or any later node) without disturbing the traversal.
func (t *Traverser) Each(fn func(*Node)) {
	for {
		n, ok := t.Next()
		if !ok {
			return
		}
		fn(n)
	}
}

func (r *Region) contains(n *Node) bool {
	for _, other := range r.nodes {
		if other == n {
			return true
		}
	}
	return false
}
