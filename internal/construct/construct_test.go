package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/aggregate"
	"jlmgo/internal/cfgir"
	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
	"jlmgo/internal/types"
)

func i32() types.Type { return types.Integer{Width: 32} }

func buildTree(t *testing.T, cfg *cfgir.Cfg) (*aggregate.Tree, *aggregate.Universe) {
	t.Helper()
	tree, err := aggregate.Reduce(cfg)
	require.NoError(t, err)
	u := aggregate.Annotate(cfg, tree)
	return tree, u
}

func TestFunctionLinearBody(t *testing.T) {
	x := cfgir.NewVariable("x", i32())
	y := cfgir.NewVariable("y", i32())

	cfg := cfgir.NewCfg([]*cfgir.Variable{x}, []*cfgir.Variable{y})
	b1 := cfg.CreateBasicBlock()
	bb, _ := b1.BasicBlock()
	bb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{x}, []*cfgir.Variable{y}))
	cfg.AddEdge(cfg.Entry(), b1)
	cfg.AddEdge(b1, cfg.Exit())

	tree, u := buildTree(t, cfg)

	g := rvsdg.NewGraph()
	fn := &cfgir.Function{Name: "neg_it", ParamTypes: []types.Type{i32()}, ResultTypes: []types.Type{i32()}, Cfg: cfg}
	lambda := Function(g, g.Root(), fn, tree, u)

	assert.Equal(t, rvsdg.KindLambda, lambda.Kind())
	sub := lambda.Subregion(0)
	require.Equal(t, 1, sub.NResults())

	resultOrigin := sub.Result(0).Origin()
	out, ok := resultOrigin.(*rvsdg.Output)
	require.True(t, ok)
	unary, ok := out.Node().Operation().(ops.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, ops.Neg, unary.UKind)
	assert.Same(t, sub.Argument(0), out.Node().Input(0).Origin())
}

func TestFunctionBranchBody(t *testing.T) {
	p := cfgir.NewVariable("p", i32())
	x := cfgir.NewVariable("x", i32())
	y := cfgir.NewVariable("y", i32())

	cfg := cfgir.NewCfg([]*cfgir.Variable{p, x}, []*cfgir.Variable{y})

	split := cfg.CreateBasicBlock()
	sel := cfgir.NewVariable("sel", types.Control{N: 2})
	sbb, _ := split.BasicBlock()
	sbb.Append(cfgir.NewTac(ops.MatchOp{In: i32(), N: 2, Mapping: map[int64]int{0: 1}, Default: 0}, []*cfgir.Variable{p}, []*cfgir.Variable{sel}))

	left := cfg.CreateBasicBlock()
	lbb, _ := left.BasicBlock()
	lbb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Neg, In: i32(), Out: i32()}, []*cfgir.Variable{x}, []*cfgir.Variable{y}))

	right := cfg.CreateBasicBlock()
	rbb, _ := right.BasicBlock()
	rbb.Append(cfgir.NewTac(ops.UnaryOp{UKind: ops.Not, In: i32(), Out: i32()}, []*cfgir.Variable{x}, []*cfgir.Variable{y}))

	join := cfg.CreateBasicBlock()

	cfg.AddEdge(cfg.Entry(), split)
	cfg.AddEdge(split, left)
	cfg.AddEdge(split, right)
	cfg.AddEdge(left, join)
	cfg.AddEdge(right, join)
	cfg.AddEdge(join, cfg.Exit())

	tree, u := buildTree(t, cfg)

	g := rvsdg.NewGraph()
	fn := &cfgir.Function{Name: "pick", ParamTypes: []types.Type{i32(), i32()}, ResultTypes: []types.Type{i32()}, Cfg: cfg}
	lambda := Function(g, g.Root(), fn, tree, u)

	sub := lambda.Subregion(0)
	require.Equal(t, 1, sub.NResults())
	out, ok := sub.Result(0).Origin().(*rvsdg.Output)
	require.True(t, ok)
	gamma := out.Node()
	assert.Equal(t, rvsdg.KindGamma, gamma.Kind())
	assert.Equal(t, 2, len(gamma.Subregions()))
	for _, caseSub := range gamma.Subregions() {
		require.Equal(t, 1, caseSub.NResults())
	}
}

func TestFunctionLoopBody(t *testing.T) {
	x := cfgir.NewVariable("x", i32())
	ctl := cfgir.NewVariable("ctl", types.Control{N: 2})

	cfg := cfgir.NewCfg([]*cfgir.Variable{x}, []*cfgir.Variable{x})
	body := cfg.CreateBasicBlock()
	bb, _ := body.BasicBlock()
	bb.Append(cfgir.NewTac(ops.BinaryOp{BKind: ops.Sub, T: i32()}, []*cfgir.Variable{x, x}, []*cfgir.Variable{x}))
	bb.Append(cfgir.NewTac(ops.MatchOp{In: i32(), N: 2, Mapping: map[int64]int{0: 1}, Default: 0}, []*cfgir.Variable{x}, []*cfgir.Variable{ctl}))

	cfg.AddEdge(cfg.Entry(), body)
	cfg.AddEdge(body, body)
	cfg.AddEdge(body, cfg.Exit())

	tree, u := buildTree(t, cfg)

	g := rvsdg.NewGraph()
	fn := &cfgir.Function{Name: "countdown", ParamTypes: []types.Type{i32()}, ResultTypes: []types.Type{i32()}, Cfg: cfg}
	lambda := Function(g, g.Root(), fn, tree, u)

	sub := lambda.Subregion(0)
	require.Equal(t, 1, sub.NResults())
	out, ok := sub.Result(0).Origin().(*rvsdg.Output)
	require.True(t, ok)
	theta := out.Node()
	assert.Equal(t, rvsdg.KindTheta, theta.Kind())
	assert.Equal(t, 1, theta.NInputs())
	assert.Equal(t, 1, theta.NOutputs())

	thetaSub := theta.Subregion(0)
	require.Equal(t, 2, thetaSub.NResults())
	predType := thetaSub.Result(0).Type()
	_, isControl := predType.(types.Control)
	assert.True(t, isControl)
}
