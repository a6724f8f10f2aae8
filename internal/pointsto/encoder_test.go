package pointsto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/ops"
	"jlmgo/internal/rvsdg"
)

// TestBasicEncoderSplitsIndependentAllocaTraffic builds the same
// two-independent-allocas function as the Steensgaard test and checks
// the encoder threads each alloca's store/load through its own private
// memory-state edge rather than the original monolithic one, while
// still producing a single combined edge for the function's own
// result.
func TestBasicEncoderSplitsIndependentAllocaTraffic(t *testing.T) {
	g := rvsdg.NewGraph()
	lam, allocaP, allocaQ, store, load := buildTwoAllocas(g)
	_ = load

	ptg := Analyze(g)
	changed := (&BasicEncoder{PTG: ptg}).Encode(g)
	require.True(t, changed)

	sub := lam.Subregion(0)

	// allocaQ no longer threads state through allocaP's output — the two
	// are independent classes, so allocaQ's input should trace back to
	// the demux, not to allocaP.
	demuxNode, ok := allocaQ.Input(0).Origin().(*rvsdg.Output)
	require.True(t, ok)
	assert.Equal(t, ops.DemuxOp{N: 2}, demuxNode.Node().Operation())

	// store's pointer (p) and its own class's edge should NOT be the
	// same edge load (through q) consumes, since p and q are disjoint
	// classes.
	assert.NotEqual(t, store.Input(2).Origin(), allocaQ.Output(1), "store(p) must not be sequenced on q's own alloca edge")

	// The function's final result still resolves to one combined edge.
	memResIdx := memoryResultIndex(sub)
	require.GreaterOrEqual(t, memResIdx, 0)
	finalOrigin, ok := sub.Result(memResIdx).Origin().(*rvsdg.Output)
	require.True(t, ok)
	assert.Equal(t, ops.MuxOp{N: 2}, finalOrigin.Node().Operation())
}
