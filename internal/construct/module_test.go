package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

// TestModuleBuildsFunctionsAndGlobals checks Module turns a cfgir.Module
// carrying one dependency-free global and one function into a graph
// whose root region holds exactly one delta and one lambda.
func TestModuleBuildsFunctionsAndGlobals(t *testing.T) {
	out := cfgir.NewVariable("c", i32())
	initCfg := cfgir.NewCfg(nil, []*cfgir.Variable{out})
	block := initCfg.CreateBasicBlock()
	bb, _ := block.BasicBlock()
	bb.Append(cfgir.NewTac(ops.ConstantOp{Value: int64(7), T: i32()}, nil, []*cfgir.Variable{out}))
	initCfg.AddEdge(initCfg.Entry(), block)
	initCfg.AddEdge(block, initCfg.Exit())

	x := cfgir.NewVariable("x", i32())
	fnCfg := cfgir.NewCfg([]*cfgir.Variable{x}, []*cfgir.Variable{x})
	fnBlock := fnCfg.CreateBasicBlock()
	fbb, _ := fnBlock.BasicBlock()
	fbb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{x}, []*cfgir.Variable{x}))
	fnCfg.AddEdge(fnCfg.Entry(), fnBlock)
	fnCfg.AddEdge(fnBlock, fnCfg.Exit())

	m := &cfgir.Module{
		Globals:   []*cfgir.GlobalData{{Name: "g", T: i32(), Init: initCfg}},
		Functions: []*cfgir.Function{{Name: "neg", ParamTypes: []types.Type{i32()}, ResultTypes: []types.Type{i32()}, Cfg: fnCfg}},
	}

	g, err := Module(m)
	require.NoError(t, err)

	var deltas, lambdas int
	for _, n := range g.Root().Nodes() {
		switch n.Kind() {
		case rvsdg.KindDelta:
			deltas++
			assert.Equal(t, "g", n.Delta.Name)
		case rvsdg.KindLambda:
			lambdas++
			assert.Equal(t, "neg", n.Lambda.Name)
		}
	}
	assert.Equal(t, 1, deltas)
	assert.Equal(t, 1, lambdas)
}
