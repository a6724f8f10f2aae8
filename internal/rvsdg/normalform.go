package rvsdg

import (
	"reflect"

	"jlmgo/internal/errors"
	"jlmgo/internal/ops"
)

// RewriteRule is one local rewrite: given a node already present in
// the graph, it either returns nil (not applicable) or a replacement
// origin per output, after which the substrate diverts every user of the
// node's outputs to the corresponding replacement and removes the node.
// A rule that needs to restructure regions (e.g. the gamma predicate
// collapse splicing a subregion into its parent) performs that mutation
// itself before returning the replacement vector.
type RewriteRule struct {
	Name  string
	Apply func(g *Graph, n *Node) []Origin
}

// NormalForm is the per-operation-family registry: a set
// of boolean flags plus the ordered rules they gate. Families are keyed by
// Go operation type for simple nodes (binary_op, mux_op, alloca, load,
// store, ...) and by structural kind for gamma/theta (the gamma
// predicate/control-constant rules).
type NormalForm struct {
	Family  string
	Mutable bool
	Flags   map[string]bool
	Rules   []RewriteRule
}

func (nf *NormalForm) SetFlag(name string, v bool) { nf.Flags[name] = v }
func (nf *NormalForm) Flag(name string) bool        { return nf.Flags[name] }
func (nf *NormalForm) AddRule(r RewriteRule)        { nf.Rules = append(nf.Rules, r) }

// NormalForm returns (creating if necessary) the per-graph registry for
// family. family is conventionally the simple-node operation's Go type
// name (via FamilyKey) or a structural NodeKind's String().
func (g *Graph) NormalForm(family string) *NormalForm {
	nf, ok := g.normalForms[family]
	if !ok {
		nf = &NormalForm{Family: family, Flags: map[string]bool{}}
		g.normalForms[family] = nf
	}
	return nf
}

// FamilyKey computes the normal-form registry key for a node: its
// operation's concrete Go type for simple nodes, or its structural kind
// name otherwise.
func FamilyKey(n *Node) string {
	if n.kind != KindSimple {
		return n.kind.String()
	}
	return reflect.TypeOf(n.op).String()
}

// OperationFamily computes the registry key a simple node carrying op would
// have, for callers (e.g. internal/rvsdg/normalize) that configure a
// NormalForm before any matching node exists.
func OperationFamily(op ops.Operation) string { return reflect.TypeOf(op).String() }

// StructuralFamily computes the registry key for a structural node kind.
func StructuralFamily(k NodeKind) string { return k.String() }

// offer presents n to its family's normal form: when mutable, any newly
// created node is offered to its normal form. Returns true iff
// a rule fired and n was replaced/removed.
func (g *Graph) offer(n *Node) bool {
	nf, ok := g.normalForms[FamilyKey(n)]
	if !ok || !nf.Mutable {
		return false
	}
	for _, rule := range nf.Rules {
		repl := rule.Apply(g, n)
		if repl == nil {
			continue
		}
		errors.Check(len(repl) == len(n.outputs), "normal form rule %s/%s: %d replacements, want %d", nf.Family, rule.Name, len(repl), len(n.outputs))
		for i, out := range n.outputs {
			g.DivertUsers(out, repl[i])
		}
		g.RemoveNode(n)
		return true
	}
	return false
}

// Normalize sweeps every region bottom-up (subregions first), re-offering
// every node to its normal form until a fixpoint. Each rule is required to
// be terminating in isolation, so the outer sweep terminates once no rule
// in any region fires during a full pass.
func (g *Graph) Normalize() {
	g.normalizeRegion(g.root)
}

func (g *Graph) normalizeRegion(r *Region) {
	for _, n := range r.Nodes() {
		for _, sub := range n.subregions {
			g.normalizeRegion(sub)
		}
	}

	for {
		changed := false
		for _, n := range r.Nodes() {
			if g.offer(n) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
