// Package destruct implements RVSDG destruction (C11 second half):
// the inverse of internal/construct, walking a lambda's region top-down and
// emitting a cfgir.Function so that destruct(construct(aggregate(C))) is
// observationally equivalent to C, the round-trip law. Grounded on
// internal/construct's own region-walk shape, read in reverse: where
// construct threads a cfgir variable->rvsdg origin scope forward through
// an aggregation tree, destruct threads an rvsdg origin->cfgir variable
// scope forward through a region's already-topologically-ordered node
// list (no aggregation tree is needed on this side, since Region.Nodes()
// is already a valid linearization — see internal/rvsdg/graph.go).
package destruct

import (
	"fmt"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/errors"
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// values maps an rvsdg origin to the cfgir variable currently holding its
// value in the basic block under construction.
type values map[rvsdg.Origin]*cfgir.Variable

func lookup(vals values, o rvsdg.Origin) *cfgir.Variable {
	v, ok := vals[o]
	errors.Check(ok, "destruct: origin has no bound cfgir variable")
	return v
}

// Function destructs lam's body into a standalone cfgir.Function.
// lam must have no captured context variables: destruction only applies to
// whole-module lambdas, the ones module linking ultimately owns
// (a lambda with free captures only ever arises as an intermediate value
// during construction of a nested closure, which this middle-end does not
// otherwise produce).
func Function(lam *rvsdg.Node) *cfgir.Function {
	errors.Check(lam.Kind() == rvsdg.KindLambda, "destruct: Function called on a non-lambda node")
	errors.Check(lam.Lambda.NumContext == 0, "destruct: lambda %s captures %d context variables, which destruction does not support", lam.Lambda.Name, lam.Lambda.NumContext)

	sub := lam.Subregion(0)
	paramTypes := make([]types.Type, sub.NArguments())
	for i := range paramTypes {
		paramTypes[i] = sub.Argument(i).Type()
	}
	resultTypes := make([]types.Type, sub.NResults())
	for i := range resultTypes {
		resultTypes[i] = sub.Result(i).Type()
	}

	vals := values{}
	args := make([]*cfgir.Variable, len(paramTypes))
	for i, t := range paramTypes {
		v := cfgir.NewVariable(fmt.Sprintf("%s.p%d", lam.Lambda.Name, i), t)
		args[i] = v
		vals[sub.Argument(i)] = v
	}
	results := make([]*cfgir.Variable, len(resultTypes))
	for i, t := range resultTypes {
		results[i] = cfgir.NewVariable(fmt.Sprintf("%s.r%d", lam.Lambda.Name, i), t)
	}

	cfg := cfgir.NewCfg(args, results)
	entry := cfg.CreateBasicBlock()
	cfg.AddEdge(cfg.Entry(), entry)

	final := walkRegion(cfg, sub, entry, vals)
	finalBB, ok := final.BasicBlock()
	errors.Check(ok, "destruct: lambda %s falls out of its body into a non-basic-block node", lam.Lambda.Name)
	for i, v := range results {
		copyInto(finalBB, v, lookup(vals, sub.Result(i).Origin()))
	}
	cfg.AddEdge(final, cfg.Exit())

	return &cfgir.Function{
		Name:        lam.Lambda.Name,
		External:    lam.Lambda.Linkage == rvsdg.LinkageExternal,
		ParamTypes:  paramTypes,
		ResultTypes: resultTypes,
		Cfg:         cfg,
	}
}

// Global destructs delta's single-result initializer region into a
// cfgir.GlobalData, whose Init cfg computes and returns the global's
// value: a single basic block computing the initializer value.
func Global(delta *rvsdg.Node) *cfgir.GlobalData {
	errors.Check(delta.Kind() == rvsdg.KindDelta, "destruct: Global called on a non-delta node")

	sub := delta.Subregion(0)
	valueType := sub.Result(0).Type()

	vals := values{}
	depVars := make([]*cfgir.Variable, sub.NArguments())
	for i := range depVars {
		v := cfgir.NewVariable(fmt.Sprintf("%s.dep%d", delta.Delta.Name, i), sub.Argument(i).Type())
		depVars[i] = v
		vals[sub.Argument(i)] = v
	}
	result := cfgir.NewVariable(delta.Delta.Name+".init", valueType)

	cfg := cfgir.NewCfg(depVars, []*cfgir.Variable{result})
	entry := cfg.CreateBasicBlock()
	cfg.AddEdge(cfg.Entry(), entry)

	final := walkRegion(cfg, sub, entry, vals)
	finalBB, ok := final.BasicBlock()
	errors.Check(ok, "destruct: delta %s falls out of its initializer into a non-basic-block node", delta.Delta.Name)
	copyInto(finalBB, result, lookup(vals, sub.Result(0).Origin()))
	cfg.AddEdge(final, cfg.Exit())

	return &cfgir.GlobalData{
		Name:     delta.Delta.Name,
		T:        valueType,
		Constant: delta.Delta.Constant,
		Init:     cfg,
	}
}

// Module destructs every lambda and delta reachable from g's top-level
// region — directly, or one level down inside a phi group — into a
// cfgir.Module. Import population is left to the module-linking work
// (internal/rvsdg has no Import node/attribute yet to translate from; see
// DESIGN.md).
func Module(g *rvsdg.Graph) *cfgir.Module {
	m := &cfgir.Module{}
	for _, n := range g.Root().Nodes() {
		switch n.Kind() {
		case rvsdg.KindLambda:
			m.Functions = append(m.Functions, Function(n))
		case rvsdg.KindDelta:
			m.Globals = append(m.Globals, Global(n))
		case rvsdg.KindPhi:
			for _, inner := range n.Subregion(0).Nodes() {
				if inner.Kind() == rvsdg.KindLambda {
					m.Functions = append(m.Functions, Function(inner))
				}
			}
		}
	}
	return m
}

// walkRegion destructs region's nodes, in their existing topological
// order, into a chain of basic blocks appended to cfg starting from cur
// (the block new tacs are appended to), resolving each node's operand
// origins through vals as it goes and recording each output's freshly
// allocated variable back into vals. It returns whichever cfg node is left
// open once the whole region has been walked — a plain basic block if the
// region's tail is a straight-line run of simple nodes, or a join/exit
// block if it ends inside a nested gamma/theta.
func walkRegion(cfg *cfgir.Cfg, region *rvsdg.Region, cur *cfgir.CfgNode, vals values) *cfgir.CfgNode {
	for _, n := range region.Nodes() {
		switch n.Kind() {
		case rvsdg.KindSimple:
			emitSimple(cur, n, vals)
		case rvsdg.KindGamma:
			cur = destructGamma(cfg, n, cur, vals)
		case rvsdg.KindTheta:
			cur = destructTheta(cfg, n, cur, vals)
		default:
			errors.Invariant("destruct: unexpected %s node nested inside a function body", n.Kind())
		}
	}
	return cur
}

// emitSimple appends one tac for n, the straight translation of a single
// rvsdg simple node into three-address code.
func emitSimple(cur *cfgir.CfgNode, n *rvsdg.Node, vals values) {
	bb, ok := cur.BasicBlock()
	errors.Check(ok, "destruct: current cfg node is not a basic block")

	inputs := make([]*cfgir.Variable, n.NInputs())
	for i, in := range n.Inputs() {
		inputs[i] = lookup(vals, in.Origin())
	}
	outputs := make([]*cfgir.Variable, n.NOutputs())
	for i, out := range n.Outputs() {
		v := cfgir.NewVariable(fmt.Sprintf("%s.%d.%d", n.Operation().Name(), n.ID(), i), out.Type())
		outputs[i] = v
		vals[out] = v
	}
	bb.Append(cfgir.NewTac(n.Operation(), inputs, outputs))
}

// copyInto emits an identity bitcast copying src's value into dst, unless
// they already denote the same variable. A same-type bitcast is this
// package's generic "copy" tac: cfgir has no phi instruction of its own,
// so every point where several rvsdg values converge onto one cfgir
// variable — a gamma's case results, a theta's loop back-edge, a lambda's
// return — is lowered by writing the converging value into a fixed
// variable right before control reaches the point that reads it, the
// textbook copy-insertion technique for eliminating phis when lowering out
// of SSA.
func copyInto(bb *cfgir.BasicBlockAttr, dst, src *cfgir.Variable) {
	if dst == src {
		return
	}
	bb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.BitCast, In: src.T, Out: dst.T}, []*cfgir.Variable{src}, []*cfgir.Variable{dst}))
}

// appendPredicateEcho appends a trivial self-bitcast of pred and returns
// its output variable, guaranteeing — regardless of whatever order the
// rest of the block's tacs happen to be in — that the block's *last* tac
// has a single, control-typed output. internal/construct's predicateOf
// relies on exactly that convention to recover a branch/loop predicate
// when reconstructing RVSDG from this cfg, so destruction manufactures it
// explicitly rather than hoping the predicate's own producer already
// landed last.
func appendPredicateEcho(bb *cfgir.BasicBlockAttr, pred *cfgir.Variable) *cfgir.Variable {
	echo := cfgir.NewVariable(pred.Name+".pred", pred.T)
	bb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.BitCast, In: pred.T, Out: pred.T}, []*cfgir.Variable{pred}, []*cfgir.Variable{echo}))
	return echo
}

// destructGamma lowers gamma n into a CFG diamond: cur's block
// becomes the split (its predicate echoed as the final tac), one fresh
// entry block per subregion is wired from it in subregion order —
// matching internal/aggregate/reduce.go's branchPartners, which reads case
// order directly off a split node's Successors slice — and every
// subregion's results are copied into one shared variable per gamma
// output before all cases rejoin at a single fresh continuation block.
func destructGamma(cfg *cfgir.Cfg, n *rvsdg.Node, cur *cfgir.CfgNode, vals values) *cfgir.CfgNode {
	bb, ok := cur.BasicBlock()
	errors.Check(ok, "destruct: gamma split predecessor is not a basic block")
	predVar := lookup(vals, n.Input(0).Origin())
	appendPredicateEcho(bb, predVar)

	resultVars := make([]*cfgir.Variable, n.NOutputs())
	for i := range resultVars {
		resultVars[i] = cfgir.NewVariable(fmt.Sprintf("gamma.%d.out%d", n.ID(), i), n.Output(i).Type())
	}

	join := cfg.CreateBasicBlock()
	for _, sub := range n.Subregions() {
		caseVals := values{}
		for i := 0; i < sub.NArguments(); i++ {
			caseVals[sub.Argument(i)] = lookup(vals, n.Input(i+1).Origin())
		}

		caseEntry := cfg.CreateBasicBlock()
		cfg.AddEdge(cur, caseEntry)

		caseExit := walkRegion(cfg, sub, caseEntry, caseVals)
		exitBB, ok := caseExit.BasicBlock()
		errors.Check(ok, "destruct: gamma case exit is not a basic block")
		for i := range resultVars {
			copyInto(exitBB, resultVars[i], lookup(caseVals, sub.Result(i).Origin()))
		}
		cfg.AddEdge(caseExit, join)
	}

	for i, v := range resultVars {
		vals[n.Output(i)] = v
	}
	return join
}

// destructTheta lowers theta n into a tail-controlled back-edge loop.
// The loop's k carried values reuse the same cfgir variables the
// enclosing scope already bound for n's inputs — no copy is needed to
// enter the loop, since a theta's subregion argument i and the outer
// variable denote the identical value on the first iteration — and the
// body's updated values are copied back into those same variables at the
// tail before the continuation predicate (echoed last, as in the gamma
// case) selects the back-edge to the header or the fall-through to a
// fresh continuation block.
func destructTheta(cfg *cfgir.Cfg, n *rvsdg.Node, cur *cfgir.CfgNode, vals values) *cfgir.CfgNode {
	sub := n.Subregion(0)
	k := n.NInputs()

	loopVars := make([]*cfgir.Variable, k)
	bodyVals := values{}
	for i := 0; i < k; i++ {
		lv := lookup(vals, n.Input(i).Origin())
		loopVars[i] = lv
		bodyVals[sub.Argument(i)] = lv
	}

	header := cfg.CreateBasicBlock()
	cfg.AddEdge(cur, header)

	tail := walkRegion(cfg, sub, header, bodyVals)
	tailBB, ok := tail.BasicBlock()
	errors.Check(ok, "destruct: theta tail is not a basic block")

	for i := range loopVars {
		copyInto(tailBB, loopVars[i], lookup(bodyVals, sub.Result(i+1).Origin()))
	}
	predVar := lookup(bodyVals, sub.Result(0).Origin())
	appendPredicateEcho(tailBB, predVar)

	exit := cfg.CreateBasicBlock()
	cfg.AddEdge(tail, header)
	cfg.AddEdge(tail, exit)

	for i, v := range loopVars {
		vals[n.Output(i)] = v
	}
	return exit
}
