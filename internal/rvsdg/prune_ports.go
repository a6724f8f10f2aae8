package rvsdg

import "jlmgo/internal/errors"

// This file adds structural-node arity-shrinking primitives dead-node
// elimination's sweep phase needs: dropping one loop/entry/context
// variable at a time while keeping a structural node's input/output/
// argument/result correspondences consistent. Like gamma_reduce.go, these
// live in the rvsdg package itself because they touch unexported node and
// region fields no rewrite package can reach.

func reindexInputs(n *Node) {
	for i, in := range n.inputs {
		in.index = i
	}
}

func reindexOutputs(n *Node) {
	for i, out := range n.outputs {
		out.index = i
	}
}

// RemoveLambdaContextVar drops context-variable slot i (0-based among the
// lambda's NumContext variables — a context-variable input is live iff
// its argument is live): the corresponding subregion argument must
// already have no users.
func (g *Graph) RemoveLambdaContextVar(n *Node, i int) {
	errors.Check(n.kind == KindLambda, "RemoveLambdaContextVar: not a lambda")
	errors.Check(i < n.Lambda.NumContext, "RemoveLambdaContextVar: index %d out of context range", i)
	sub := n.subregions[0]
	errors.Check(len(sub.arguments[i].users) == 0, "RemoveLambdaContextVar: argument %d still has users", i)

	n.inputs[i].origin.removeUser(n.inputs[i])
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	reindexInputs(n)
	sub.RemoveArgument(i)
	n.Lambda.NumContext--
}

// RemoveThetaLoopVar drops loop variable i: both the input and output
// must already be dead outside the theta, and the subregion argument must
// be dead inside it — the converse of the mark rule: if output i is live,
// both the corresponding subregion result and the input are live.
func (g *Graph) RemoveThetaLoopVar(n *Node, i int) {
	errors.Check(n.kind == KindTheta, "RemoveThetaLoopVar: not a theta")
	sub := n.subregions[0]
	errors.Check(len(n.outputs[i].users) == 0, "RemoveThetaLoopVar: output %d still has users", i)

	arg := sub.arguments[i]
	result := sub.results[i+1]
	pureBackedge := len(arg.users) == 0 || (len(arg.users) == 1 && arg.users[0] == result)
	errors.Check(pureBackedge, "RemoveThetaLoopVar: argument %d still has real users", i)

	n.inputs[i].origin.removeUser(n.inputs[i])
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
	reindexInputs(n)
	reindexOutputs(n)
	// Drop the result before the argument: if the loop variable is a pure
	// pass-through (its own result's origin is this very argument), the
	// result is the argument's only "user" and must be detached first so
	// RemoveArgument's zero-users check passes.
	sub.RemoveResult(i + 1)
	sub.RemoveArgument(i)
}

// RemoveGammaOutput drops output i once it has no users: the
// corresponding result at index i is removed from every subregion.
func (g *Graph) RemoveGammaOutput(n *Node, i int) {
	errors.Check(n.kind == KindGamma, "RemoveGammaOutput: not a gamma")
	errors.Check(len(n.outputs[i].users) == 0, "RemoveGammaOutput: output %d still has users", i)
	n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
	reindexOutputs(n)
	for _, sub := range n.subregions {
		sub.RemoveResult(i)
	}
}

// RemoveGammaEntryVar drops entry variable j (0-based among the gamma's
// entry vars, i.e. input j+1): every subregion's argument j must already
// be dead, the converse of the mark rule: input j+1 is live iff at least
// one subregion's argument j is live.
func (g *Graph) RemoveGammaEntryVar(n *Node, j int) {
	errors.Check(n.kind == KindGamma, "RemoveGammaEntryVar: not a gamma")
	idx := j + 1
	for _, sub := range n.subregions {
		errors.Check(len(sub.arguments[j].users) == 0, "RemoveGammaEntryVar: argument %d still has users", j)
	}
	n.inputs[idx].origin.removeUser(n.inputs[idx])
	n.inputs = append(n.inputs[:idx], n.inputs[idx+1:]...)
	reindexInputs(n)
	for _, sub := range n.subregions {
		sub.RemoveArgument(j)
	}
}

// RemoveDeltaDepVar drops dependency-variable slot i once the
// corresponding subregion argument is dead.
func (g *Graph) RemoveDeltaDepVar(n *Node, i int) {
	errors.Check(n.kind == KindDelta, "RemoveDeltaDepVar: not a delta")
	sub := n.subregions[0]
	errors.Check(len(sub.arguments[i].users) == 0, "RemoveDeltaDepVar: argument %d still has users", i)
	n.inputs[i].origin.removeUser(n.inputs[i])
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	reindexInputs(n)
	sub.RemoveArgument(i)
}

// RemovePhiExternalDep drops external-dependency slot i (0-based among the
// phi's externalDeps, i.e. subregion argument len(Names)+i): the recursive
// self-reference arguments occupy argument slots [0,len(Names)) and are
// never touched by this primitive, so dropping one external dep never
// renumbers another name's self-reference.
func (g *Graph) RemovePhiExternalDep(n *Node, i int) {
	errors.Check(n.kind == KindPhi, "RemovePhiExternalDep: not a phi")
	sub := n.subregions[0]
	argIdx := len(n.Phi.Names) + i
	errors.Check(len(sub.arguments[argIdx].users) == 0, "RemovePhiExternalDep: argument %d still has users", argIdx)
	n.inputs[i].origin.removeUser(n.inputs[i])
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	reindexInputs(n)
	sub.RemoveArgument(argIdx)
}
