package rvsdg

import (
	"jlmgo/internal/ops"
	"jlmgo/internal/types"
)

// NodeKind distinguishes simple nodes from the five structural variants.
type NodeKind int

const (
	KindSimple NodeKind = iota
	KindGamma
	KindTheta
	KindLambda
	KindPhi
	KindDelta
)

func (k NodeKind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindGamma:
		return "gamma"
	case KindTheta:
		return "theta"
	case KindLambda:
		return "lambda"
	case KindPhi:
		return "phi"
	case KindDelta:
		return "delta"
	default:
		return "?"
	}
}

// Linkage mirrors the front-end contract's per-symbol linkage.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkageInternal
)

func (l Linkage) String() string {
	if l == LinkageExternal {
		return "external"
	}
	return "internal"
}

// LambdaAttrs holds lambda-specific metadata: the function's name, its
// linkage, and the number of leading context-variable inputs (the rest are
// parameters).
type LambdaAttrs struct {
	Name       string
	Linkage    Linkage
	NumContext int
}

// DeltaAttrs holds delta-specific metadata: the global's name, linkage and
// whether it is a compile-time constant.
type DeltaAttrs struct {
	Name     string
	Linkage  Linkage
	Constant bool
}

// PhiAttrs holds phi-specific metadata: names of the recursively bound
// lambdas, in result order.
type PhiAttrs struct {
	Names []string
}

// Node is either a simple node (an operation with fixed arity, no
// subregions) or a structural node enclosing one or more subregions.
// Nodes belong to exactly one region and are created/destroyed
// only through the Graph API.
type Node struct {
	id         int
	region     *Region
	kind       NodeKind
	op         ops.Operation // non-nil only for KindSimple
	inputs     []*Input
	outputs    []*Output
	subregions []*Region

	Lambda *LambdaAttrs
	Delta  *DeltaAttrs
	Phi    *PhiAttrs
}

func (n *Node) ID() int            { return n.id }
func (n *Node) Region() *Region    { return n.region }
func (n *Node) Kind() NodeKind     { return n.kind }
func (n *Node) Operation() ops.Operation { return n.op }

func (n *Node) Inputs() []*Input { return n.inputs }
func (n *Node) NInputs() int     { return len(n.inputs) }
func (n *Node) Input(i int) *Input {
	return n.inputs[i]
}

func (n *Node) Outputs() []*Output { return n.outputs }
func (n *Node) NOutputs() int      { return len(n.outputs) }
func (n *Node) Output(i int) *Output {
	return n.outputs[i]
}

func (n *Node) Subregions() []*Region { return n.subregions }
func (n *Node) Subregion(i int) *Region {
	return n.subregions[i]
}

// HasLiveUsers reports whether any output of n still has at least one
// user; RemoveNode refuses to remove a node for which this is true.
func (n *Node) HasLiveUsers() bool {
	for _, o := range n.outputs {
		if len(o.users) > 0 {
			return true
		}
	}
	return false
}

func (n *Node) addInput(origin Origin, t types.Type) *Input {
	in := &Input{node: n, region: n.region, index: len(n.inputs), origin: origin, typ: t}
	n.inputs = append(n.inputs, in)
	origin.addUser(in)
	return in
}

func (n *Node) addOutput(t types.Type) *Output {
	out := &Output{node: n, index: len(n.outputs), typ: t}
	n.outputs = append(n.outputs, out)
	return out
}
