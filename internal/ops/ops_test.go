package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"jlmgo/internal/types"
)

func TestBinaryOpEquality(t *testing.T) {
	a := BinaryOp{BKind: Add, T: types.Integer{Width: 32}}
	b := BinaryOp{BKind: Add, T: types.Integer{Width: 32}}
	c := BinaryOp{BKind: Add, T: types.Integer{Width: 64}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestBinaryOpComparisonReturnsI1(t *testing.T) {
	op := BinaryOp{BKind: ICmpSlt, T: types.Integer{Width: 32}}
	assert.Equal(t, []types.Type{types.Integer{Width: 1}}, op.OutputTypes())
}

func TestCommutativity(t *testing.T) {
	assert.True(t, Add.Commutative())
	assert.False(t, Sub.Commutative())
	assert.False(t, SDiv.Commutative())
}

func TestLoadStoreArities(t *testing.T) {
	elem := types.Integer{Width: 32}
	load := LoadOp{Elem: elem}
	store := StoreOp{Elem: elem}

	assert.Len(t, load.InputTypes(), 2)
	assert.Len(t, load.OutputTypes(), 1)
	assert.Len(t, store.InputTypes(), 3)
	assert.Len(t, store.OutputTypes(), 1)
}

func TestMuxArity(t *testing.T) {
	mux := MuxOp{N: 3}
	assert.Len(t, mux.InputTypes(), 3)
	assert.Len(t, mux.OutputTypes(), 1)
}

func TestTestOpIdentity(t *testing.T) {
	a := TestOp{Label: "foo", In: []types.Type{types.Integer{Width: 32}}}
	b := TestOp{Label: "foo", In: []types.Type{types.Integer{Width: 32}}}
	c := TestOp{Label: "bar", In: []types.Type{types.Integer{Width: 32}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
