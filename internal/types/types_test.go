package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerEqual(t *testing.T) {
	assert.True(t, Integer{Width: 32}.Equal(Integer{Width: 32}))
	assert.False(t, Integer{Width: 32}.Equal(Integer{Width: 64}))
	assert.False(t, Integer{Width: 32}.Equal(Float{FKind: Float32}))
}

func TestPointerNesting(t *testing.T) {
	p1 := Pointer{Pointee: Integer{Width: 32}}
	p2 := Pointer{Pointee: Integer{Width: 32}}
	p3 := Pointer{Pointee: Pointer{Pointee: Integer{Width: 32}}}

	assert.True(t, p1.Equal(p2))
	assert.False(t, p1.Equal(p3))
}

func TestStructFieldwiseEqual(t *testing.T) {
	a := Struct{Name: "Pair", Fields: []Type{Integer{Width: 32}, Integer{Width: 64}}}
	b := Struct{Name: "Pair", Fields: []Type{Integer{Width: 32}, Integer{Width: 64}}}
	c := Struct{Name: "Pair", Fields: []Type{Integer{Width: 64}, Integer{Width: 32}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFunctionSignatureEqual(t *testing.T) {
	f1 := Function{Params: []Type{Integer{Width: 32}}, Results: []Type{Integer{Width: 32}}}
	f2 := Function{Params: []Type{Integer{Width: 32}}, Results: []Type{Integer{Width: 32}}}
	f3 := Function{Params: []Type{Integer{Width: 64}}, Results: []Type{Integer{Width: 32}}}

	assert.True(t, f1.Equal(f2))
	assert.False(t, f1.Equal(f3))
}

func TestEqualVectors(t *testing.T) {
	a := []Type{Integer{Width: 32}, MemoryState{}}
	b := []Type{Integer{Width: 32}, MemoryState{}}
	c := []Type{Integer{Width: 32}}

	assert.True(t, EqualVectors(a, b))
	assert.False(t, EqualVectors(a, c))
}

func TestControlAndIOStateStrings(t *testing.T) {
	assert.Equal(t, "ctl(2)", Control{N: 2}.String())
	assert.Equal(t, "mem", MemoryState{}.String())
	assert.Equal(t, "io", IOState{}.String())
}
