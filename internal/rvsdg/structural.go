package rvsdg

import (
	"jlmgo/internal/errors"
	"jlmgo/internal/types"
)

// NewGamma creates an n-way conditional node (gamma): input 0 is the
// control-typed predicate, inputs 1..k are entry variables exposed as an
// argument in every subregion, and outputTypes fixes the arity each
// subregion's results must eventually match (checked by ValidateGamma
// once the caller has finished building each subregion body).
func (g *Graph) NewGamma(region *Region, predicate Origin, entryVars []Origin, outputTypes []types.Type) *Node {
	ctl, ok := predicate.Type().(types.Control)
	errors.Check(ok, "gamma predicate must be a control type, got %s", predicate.Type())
	errors.Check(ctl.N >= 1, "gamma predicate must have at least one case")

	n := g.newStructuralNode(region, KindGamma, ctl.N)
	n.addInput(predicate, predicate.Type())
	for _, ev := range entryVars {
		n.addInput(ev, ev.Type())
	}
	for _, t := range outputTypes {
		n.addOutput(t)
	}
	for _, sub := range n.subregions {
		for i, ev := range entryVars {
			sub.AddArgument(ev.Type(), n.inputs[i+1])
		}
	}
	return n
}

// ValidateGamma checks the gamma arity correspondences: every
// subregion must declare exactly len(outputs) results, one per output.
func (n *Node) ValidateGamma() {
	errors.Check(n.kind == KindGamma, "ValidateGamma called on non-gamma node")
	for i, sub := range n.subregions {
		errors.Check(len(sub.results) == len(n.outputs), "gamma case %d: %d results, want %d", i, len(sub.results), len(n.outputs))
	}
}

// NewTheta creates a tail-controlled loop node (theta): ninputs ==
// noutputs == k, one subregion with k arguments. The subregion must
// eventually declare k+1 results: result 0 is the 2-way continuation
// predicate, result i (1 <= i <= k) feeds back to argument i-1 and output
// i-1 (checked by ValidateTheta).
func (g *Graph) NewTheta(region *Region, loopVars []Origin) *Node {
	n := g.newStructuralNode(region, KindTheta, 1)
	for _, lv := range loopVars {
		n.addInput(lv, lv.Type())
	}
	for _, lv := range loopVars {
		n.addOutput(lv.Type())
	}
	sub := n.subregions[0]
	for i, lv := range loopVars {
		sub.AddArgument(lv.Type(), n.inputs[i])
	}
	return n
}

// ValidateTheta checks the theta arity correspondences.
func (n *Node) ValidateTheta() {
	errors.Check(n.kind == KindTheta, "ValidateTheta called on non-theta node")
	sub := n.subregions[0]
	k := len(n.inputs)
	errors.Check(len(n.outputs) == k, "theta: %d inputs but %d outputs", k, len(n.outputs))
	errors.Check(len(sub.arguments) == k, "theta: subregion has %d arguments, want %d", len(sub.arguments), k)
	errors.Check(len(sub.results) == k+1, "theta: subregion has %d results, want %d", len(sub.results), k+1)
	_, ok := sub.results[0].Type().(types.Control)
	errors.Check(ok, "theta: result 0 must be a control predicate, got %s", sub.results[0].Type())
	for i := 1; i <= k; i++ {
		errors.Check(sub.results[i].Type().Equal(n.inputs[i-1].Type()), "theta: result %d type %s does not match loop variable %d type %s", i, sub.results[i].Type(), i-1, n.inputs[i-1].Type())
	}
}

// NewLambda creates a function abstraction node (lambda): contextVars
// are free values captured from the enclosing scope and exposed as the
// subregion's initial arguments; paramTypes follow as the remaining
// arguments (function parameters, not backed by an enclosing input). The
// single output is the function value.
func (g *Graph) NewLambda(region *Region, name string, linkage Linkage, contextVars []Origin, paramTypes, resultTypes []types.Type) *Node {
	n := g.newStructuralNode(region, KindLambda, 1)
	n.Lambda = &LambdaAttrs{Name: name, Linkage: linkage, NumContext: len(contextVars)}

	for _, cv := range contextVars {
		n.addInput(cv, cv.Type())
	}
	n.addOutput(types.Function{Params: paramTypes, Results: resultTypes})

	sub := n.subregions[0]
	for i, cv := range contextVars {
		sub.AddArgument(cv.Type(), n.inputs[i])
	}
	for _, pt := range paramTypes {
		sub.AddArgument(pt, nil)
	}
	return n
}

// ValidateLambda checks that the subregion declares exactly one result per
// declared function result type.
func (n *Node) ValidateLambda(resultTypes []types.Type) {
	errors.Check(n.kind == KindLambda, "ValidateLambda called on non-lambda node")
	sub := n.subregions[0]
	errors.Check(len(sub.results) == len(resultTypes), "lambda %s: %d results, want %d", n.Lambda.Name, len(sub.results), len(resultTypes))
}

// NewPhi creates a mutually-recursive group of lambda definitions (phi).
// fnTypes aligns 1:1 with names. The subregion's first len(names)
// arguments are the recursive self-references (one per name, used to wire
// calls between the group's own lambdas); the remaining arguments import
// externalDeps. Subregion results are added later, one per name, once the
// corresponding lambda node has been built inside the subregion.
func (g *Graph) NewPhi(region *Region, names []string, fnTypes []types.Type, externalDeps []Origin) *Node {
	errors.Check(len(names) == len(fnTypes), "phi: %d names but %d function types", len(names), len(fnTypes))

	n := g.newStructuralNode(region, KindPhi, 1)
	n.Phi = &PhiAttrs{Names: names}

	for _, dep := range externalDeps {
		n.addInput(dep, dep.Type())
	}
	for _, ft := range fnTypes {
		n.addOutput(ft)
	}

	sub := n.subregions[0]
	for _, ft := range fnTypes {
		sub.AddArgument(ft, nil)
	}
	for i, dep := range externalDeps {
		sub.AddArgument(dep.Type(), n.inputs[i])
	}
	return n
}

// ValidatePhi checks that the subregion declares exactly one result per
// name, in order.
func (n *Node) ValidatePhi() {
	errors.Check(n.kind == KindPhi, "ValidatePhi called on non-phi node")
	sub := n.subregions[0]
	errors.Check(len(sub.results) == len(n.Phi.Names), "phi: %d results, want %d", len(sub.results), len(n.Phi.Names))
}

// NewDelta creates a global data node (delta): depVars are free
// values the initializer depends on (e.g. an imported symbol), exposed as
// the subregion's arguments in order; the subregion's single result
// (added later, once the initializer is built) is the global's value of
// type valueType. The node's single output is a pointer to valueType.
func (g *Graph) NewDelta(region *Region, name string, linkage Linkage, constant bool, valueType types.Type, depVars []Origin) *Node {
	n := g.newStructuralNode(region, KindDelta, 1)
	n.Delta = &DeltaAttrs{Name: name, Linkage: linkage, Constant: constant}

	for _, dv := range depVars {
		n.addInput(dv, dv.Type())
	}
	n.addOutput(types.Pointer{Pointee: valueType})

	sub := n.subregions[0]
	for i, dv := range depVars {
		sub.AddArgument(dv.Type(), n.inputs[i])
	}
	return n
}

// ValidateDelta checks the subregion declares exactly one result, of
// valueType.
func (n *Node) ValidateDelta(valueType types.Type) {
	errors.Check(n.kind == KindDelta, "ValidateDelta called on non-delta node")
	sub := n.subregions[0]
	errors.Check(len(sub.results) == 1, "delta %s: %d results, want 1", n.Delta.Name, len(sub.results))
	errors.Check(sub.results[0].Type().Equal(valueType), "delta %s: result type %s does not match %s", n.Delta.Name, sub.results[0].Type(), valueType)
}
