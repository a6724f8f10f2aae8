package cfgir

import "jlmgo/internal/errors"

// Cfg is a directed graph of cfg_nodes with a single entry and a
// single exit sentinel node. It must be reducible before aggregation (C3)
// can run; Cfg itself does not enforce that — callers run
// internal/aggregate's reduction and get back IrreducibleCfg if it fails.
type Cfg struct {
	entry  *CfgNode
	exit   *CfgNode
	nodes  []*CfgNode
	nextID int
}

// NewCfg creates an empty cfg with just its entry and exit sentinels.
func NewCfg(args []*Variable, results []*Variable) *Cfg {
	c := &Cfg{}
	c.entry = c.newNode(EntryAttr{Arguments: args})
	c.exit = c.newNode(ExitAttr{Results: results})
	return c
}

func (c *Cfg) Entry() *CfgNode { return c.entry }
func (c *Cfg) Exit() *CfgNode  { return c.exit }

func (c *Cfg) Nodes() []*CfgNode {
	out := make([]*CfgNode, len(c.nodes))
	copy(out, c.nodes)
	return out
}

func (c *Cfg) NNodes() int { return len(c.nodes) }

func (c *Cfg) newNode(attr Attribute) *CfgNode {
	n := &CfgNode{id: c.nextID, Attr: attr}
	c.nextID++
	c.nodes = append(c.nodes, n)
	return n
}

// CreateBasicBlock adds a fresh, edge-less basic-block node to the cfg.
func (c *Cfg) CreateBasicBlock() *CfgNode {
	return c.newNode(&BasicBlockAttr{})
}

// AddEdge connects from -> to, refusing a duplicate edge between the same
// pair (the CFG is a simple graph, not a multigraph).
func (c *Cfg) AddEdge(from, to *CfgNode) {
	for _, s := range from.Successors {
		if s == to {
			return
		}
	}
	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

// RemoveEdge severs from -> to if present.
func (c *Cfg) RemoveEdge(from, to *CfgNode) {
	from.removeSuccessor(to)
	to.removePredecessor(from)
}

// RemoveNode deletes n, which must have no remaining edges (lifecycle:
// nodes are destroyed only once detached).
func (c *Cfg) RemoveNode(n *CfgNode) {
	errors.Check(len(n.Predecessors) == 0 && len(n.Successors) == 0, "remove_node: cfg node #%d still has edges", n.id)
	for i, other := range c.nodes {
		if other == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return
		}
	}
}

// ReversePostorder returns the cfg's nodes reachable from entry in reverse
// postorder. (Aggregation keeps its own reverse-postorder walk over its
// working graph in internal/aggregate/reduce.go.)
func (c *Cfg) ReversePostorder() []*CfgNode {
	visited := map[*CfgNode]bool{}
	var post []*CfgNode
	var visit func(n *CfgNode)
	visit = func(n *CfgNode) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range n.Successors {
			visit(s)
		}
		post = append(post, n)
	}
	visit(c.entry)

	rpo := make([]*CfgNode, len(post))
	for i, n := range post {
		rpo[len(post)-1-i] = n
	}
	return rpo
}
