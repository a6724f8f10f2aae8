// Package rvsdg implements the RVSDG graph substrate: nodes,
// regions, inputs/outputs, user-lists, traversers and the per-graph
// normal-form registry that every other component (aggregation,
// construction, the optimization passes, destruction) manipulates.
//
// Edges are kept bidirectional (Output.users / Input.origin), and every
// node and region is reachable only through the Graph that owns it — there
// is no global mutable state. Node identity for ordering purposes (CNE's
// smallest-creation-index rule; the alloca-alloca canonicalization) is the
// monotonically increasing creation index assigned by Graph.nextNodeID,
// which stands in for an arena-local handle; Go's GC-managed pointers
// serve as the safe handles themselves.
package rvsdg

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/types"
)

// Graph owns a single top-level region and the per-graph normal-form
// registry: destroyed along with the Graph value, never shared
// across graphs.
type Graph struct {
	root        *Region
	normalForms map[string]*NormalForm
	nextNodeID  int
}

// NewGraph creates an empty graph with a single top-level region.
func NewGraph() *Graph {
	g := &Graph{normalForms: map[string]*NormalForm{}}
	g.root = &Region{graph: g}
	return g
}

func (g *Graph) Root() *Region { return g.root }

func (g *Graph) allocNodeID() int {
	id := g.nextNodeID
	g.nextNodeID++
	return id
}

// Region is a container for a DAG of nodes with explicit entry arguments
// and exit results. Region.nodes is maintained in
// topological (insertion) order: a node is only ever appended after every
// node whose output it consumes is already present, so bottom-up/top-down
// traversal is simply "iterate nodes, or its reverse" with ties
// broken by insertion order.
type Region struct {
	graph     *Graph
	parent    *Node // nil for the graph's top-level region
	arguments []*Argument
	results   []*Input
	nodes     []*Node
}

func (r *Region) Graph() *Graph      { return r.graph }
func (r *Region) Parent() *Node      { return r.parent }
func (r *Region) Nodes() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}
func (r *Region) NNodes() int { return len(r.nodes) }

func (r *Region) Arguments() []*Argument { return r.arguments }
func (r *Region) NArguments() int        { return len(r.arguments) }
func (r *Region) Argument(i int) *Argument {
	return r.arguments[i]
}

func (r *Region) Results() []*Input { return r.results }
func (r *Region) NResults() int     { return len(r.results) }
func (r *Region) Result(i int) *Input {
	return r.results[i]
}

// AddArgument appends a new region argument of type t, optionally backed
// by an enclosing input (nil for a pure function parameter or a phi
// self-reference).
func (r *Region) AddArgument(t types.Type, enclosingInput *Input) *Argument {
	arg := &Argument{region: r, index: len(r.arguments), typ: t, EnclosingInput: enclosingInput}
	r.arguments = append(r.arguments, arg)
	return arg
}

// RemoveArgument deletes argument at index i, which must have no users;
// all later arguments are reindexed to keep indices contiguous, and the
// enclosing structural node's corresponding input (if any) must already
// have been removed by the caller (structural arity correspondences are
// the caller's responsibility — see internal/passes/dne/sweep.go).
func (r *Region) RemoveArgument(i int) {
	errors.Check(len(r.arguments[i].users) == 0, "removing region argument %d with live users", i)
	r.arguments = append(r.arguments[:i], r.arguments[i+1:]...)
	for j := i; j < len(r.arguments); j++ {
		r.arguments[j].index = j
	}
}

// AddResult appends a new region result whose origin is the given Origin;
// used both by region construction and by structural-node rewrites that
// add loop-carried/pass-through values.
func (r *Region) AddResult(origin Origin) *Input {
	res := &Input{region: r, index: len(r.results), origin: origin, typ: origin.Type()}
	r.results = append(r.results, res)
	origin.addUser(res)
	return res
}

// RemoveResult deletes result at index i, severing its origin's user-list
// entry; later results are reindexed.
func (r *Region) RemoveResult(i int) {
	res := r.results[i]
	res.origin.removeUser(res)
	r.results = append(r.results[:i], r.results[i+1:]...)
	for j := i; j < len(r.results); j++ {
		r.results[j].index = j
	}
}
