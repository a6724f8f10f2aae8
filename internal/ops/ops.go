// Package ops describes the operation descriptors: immutable,
// value-comparable records of a symbolic identity plus input/output type
// vectors. Operations are attached to simple nodes by internal/rvsdg;
// structural nodes (gamma/theta/lambda/phi/delta) carry their own
// variant-specific attributes instead of an Operation.
package ops

import (
	"fmt"

	"jlmgo/internal/types"
)

// Operation is an immutable descriptor: symbolic identity plus the type
// vector of inputs and outputs. Two operations are equal iff their
// identities and type vectors coincide.
type Operation interface {
	Name() string
	InputTypes() []types.Type
	OutputTypes() []types.Type
	Equal(Operation) bool
	String() string
}

// BinaryKind enumerates the arithmetic/bitwise binary operators.
type BinaryKind int

const (
	Add BinaryKind = iota
	Sub
	Mul
	SDiv
	UDiv
	And
	Or
	Xor
	Shl
	Shr
	ICmpEq
	ICmpNe
	ICmpSlt
	ICmpUlt
)

var binaryNames = map[BinaryKind]string{
	Add: "add", Sub: "sub", Mul: "mul", SDiv: "sdiv", UDiv: "udiv",
	And: "and", Or: "or", Xor: "xor", Shl: "shl", Shr: "shr",
	ICmpEq: "icmp.eq", ICmpNe: "icmp.ne", ICmpSlt: "icmp.slt", ICmpUlt: "icmp.ult",
}

// Commutative reports whether operand order does not affect the result;
// node normalization's canonicalization rule only reorders operands
// of commutative operations.
func (k BinaryKind) Commutative() bool {
	switch k {
	case Add, Mul, And, Or, Xor, ICmpEq, ICmpNe:
		return true
	default:
		return false
	}
}

// BinaryOp is a two-input, one-output arithmetic/bitwise/comparison
// operation over operands of type T, producing T (arithmetic/bitwise) or
// i1 (comparisons).
type BinaryOp struct {
	BKind BinaryKind
	T     types.Type
}

func (o BinaryOp) Name() string { return binaryNames[o.BKind] }
func (o BinaryOp) InputTypes() []types.Type {
	return []types.Type{o.T, o.T}
}
func (o BinaryOp) OutputTypes() []types.Type {
	switch o.BKind {
	case ICmpEq, ICmpNe, ICmpSlt, ICmpUlt:
		return []types.Type{types.Integer{Width: 1}}
	default:
		return []types.Type{o.T}
	}
}
func (o BinaryOp) Equal(other Operation) bool {
	rhs, ok := other.(BinaryOp)
	return ok && rhs.BKind == o.BKind && rhs.T.Equal(o.T)
}
func (o BinaryOp) String() string { return fmt.Sprintf("%s.%s", o.Name(), o.T) }

// UnaryKind enumerates unary operators.
type UnaryKind int

const (
	Neg UnaryKind = iota
	Not
	SExt
	ZExt
	Trunc
	BitCast
)

var unaryNames = map[UnaryKind]string{
	Neg: "neg", Not: "not", SExt: "sext", ZExt: "zext", Trunc: "trunc", BitCast: "bitcast",
}

// UnaryOp is a one-input, one-output operation, possibly changing type
// (sign/zero extension, truncation, bitcast).
type UnaryOp struct {
	UKind UnaryKind
	In    types.Type
	Out   types.Type
}

func (o UnaryOp) Name() string              { return unaryNames[o.UKind] }
func (o UnaryOp) InputTypes() []types.Type  { return []types.Type{o.In} }
func (o UnaryOp) OutputTypes() []types.Type { return []types.Type{o.Out} }
func (o UnaryOp) Equal(other Operation) bool {
	rhs, ok := other.(UnaryOp)
	return ok && rhs.UKind == o.UKind && rhs.In.Equal(o.In) && rhs.Out.Equal(o.Out)
}
func (o UnaryOp) String() string { return fmt.Sprintf("%s.%s->%s", o.Name(), o.In, o.Out) }

// MuxOp multiplexes N memory-state edges into one (and back); the normal
// form's mux-mux and multiple-origin rules operate on this family.
type MuxOp struct{ N int }

func (o MuxOp) Name() string { return "mux" }
func (o MuxOp) InputTypes() []types.Type {
	ts := make([]types.Type, o.N)
	for i := range ts {
		ts[i] = types.MemoryState{}
	}
	return ts
}
func (o MuxOp) OutputTypes() []types.Type { return []types.Type{types.MemoryState{}} }
func (o MuxOp) Equal(other Operation) bool {
	rhs, ok := other.(MuxOp)
	return ok && rhs.N == o.N
}
func (o MuxOp) String() string { return fmt.Sprintf("mux%d", o.N) }

// DemuxOp is mux's "(and back)" counterpart: one combined memory-state
// edge split into N independent copies, used by the memory-state
// encoder to recover per-points-to-class edges after a point
// where precision had to be coarsened back to one (e.g. around a call
// or structural node the encoder treats as opaque).
type DemuxOp struct{ N int }

func (o DemuxOp) Name() string             { return "demux" }
func (o DemuxOp) InputTypes() []types.Type { return []types.Type{types.MemoryState{}} }
func (o DemuxOp) OutputTypes() []types.Type {
	ts := make([]types.Type, o.N)
	for i := range ts {
		ts[i] = types.MemoryState{}
	}
	return ts
}
func (o DemuxOp) Equal(other Operation) bool {
	rhs, ok := other.(DemuxOp)
	return ok && rhs.N == o.N
}
func (o DemuxOp) String() string { return fmt.Sprintf("demux%d", o.N) }

// AllocaOp allocates a fresh stack location of type Elem, returning a
// pointer and threading the memory state.
type AllocaOp struct{ Elem types.Type }

func (o AllocaOp) Name() string { return "alloca" }
func (o AllocaOp) InputTypes() []types.Type {
	return []types.Type{types.MemoryState{}}
}
func (o AllocaOp) OutputTypes() []types.Type {
	return []types.Type{types.Pointer{Pointee: o.Elem}, types.MemoryState{}}
}
func (o AllocaOp) Equal(other Operation) bool {
	rhs, ok := other.(AllocaOp)
	return ok && rhs.Elem.Equal(o.Elem)
}
func (o AllocaOp) String() string { return fmt.Sprintf("alloca.%s", o.Elem) }

// LoadOp reads a value of type Elem through a pointer, given an incoming
// memory state.
type LoadOp struct{ Elem types.Type }

func (o LoadOp) Name() string { return "load" }
func (o LoadOp) InputTypes() []types.Type {
	return []types.Type{types.Pointer{Pointee: o.Elem}, types.MemoryState{}}
}
func (o LoadOp) OutputTypes() []types.Type { return []types.Type{o.Elem} }
func (o LoadOp) Equal(other Operation) bool {
	rhs, ok := other.(LoadOp)
	return ok && rhs.Elem.Equal(o.Elem)
}
func (o LoadOp) String() string { return fmt.Sprintf("load.%s", o.Elem) }

// StoreOp writes a value of type Elem through a pointer, threading the
// memory state.
type StoreOp struct{ Elem types.Type }

func (o StoreOp) Name() string { return "store" }
func (o StoreOp) InputTypes() []types.Type {
	return []types.Type{types.Pointer{Pointee: o.Elem}, o.Elem, types.MemoryState{}}
}
func (o StoreOp) OutputTypes() []types.Type { return []types.Type{types.MemoryState{}} }
func (o StoreOp) Equal(other Operation) bool {
	rhs, ok := other.(StoreOp)
	return ok && rhs.Elem.Equal(o.Elem)
}
func (o StoreOp) String() string { return fmt.Sprintf("store.%s", o.Elem) }

// ConstantOp materializes a typed literal; Value holds an int64, a
// float64, or a bool, interpreted according to T.
type ConstantOp struct {
	T     types.Type
	Value any
}

func (o ConstantOp) Name() string              { return "const" }
func (o ConstantOp) InputTypes() []types.Type  { return nil }
func (o ConstantOp) OutputTypes() []types.Type { return []types.Type{o.T} }
func (o ConstantOp) Equal(other Operation) bool {
	rhs, ok := other.(ConstantOp)
	return ok && rhs.T.Equal(o.T) && rhs.Value == o.Value
}
func (o ConstantOp) String() string { return fmt.Sprintf("const.%s(%v)", o.T, o.Value) }

// DataOp marks the body of a delta node: it has no inputs and produces the
// global's initializer value, i.e. it is the root operation of a delta
// subregion's result.
type DataOp struct{ T types.Type }

func (o DataOp) Name() string              { return "data" }
func (o DataOp) InputTypes() []types.Type  { return nil }
func (o DataOp) OutputTypes() []types.Type { return []types.Type{o.T} }
func (o DataOp) Equal(other Operation) bool {
	rhs, ok := other.(DataOp)
	return ok && rhs.T.Equal(o.T)
}
func (o DataOp) String() string { return fmt.Sprintf("data.%s", o.T) }

// ControlConstantOp materializes a constant control token value (used to
// seed gamma predicates and as the target of the gamma control-constant
// normalization rule).
type ControlConstantOp struct {
	N     int
	Value int
}

func (o ControlConstantOp) Name() string              { return "ctlconst" }
func (o ControlConstantOp) InputTypes() []types.Type  { return nil }
func (o ControlConstantOp) OutputTypes() []types.Type { return []types.Type{types.Control{N: o.N}} }
func (o ControlConstantOp) Equal(other Operation) bool {
	rhs, ok := other.(ControlConstantOp)
	return ok && rhs.N == o.N && rhs.Value == o.Value
}
func (o ControlConstantOp) String() string { return fmt.Sprintf("ctlconst(%d/%d)", o.Value, o.N) }

// PredicateAndOp conjoins two 2-way continuation predicates into one, used
// by loop unrolling to compose an unrolled theta's own continuation
// test out of each replicated copy's individual test: by this package's
// convention (documented alongside the unrolling pass, since which of a
// theta's two control values means "continue" is otherwise unspecified),
// value 1 means "continue" and 0 means "exit" — the conjunction continues
// only when both operands do.
type PredicateAndOp struct{}

func (o PredicateAndOp) Name() string { return "pred.and" }
func (o PredicateAndOp) InputTypes() []types.Type {
	return []types.Type{types.Control{N: 2}, types.Control{N: 2}}
}
func (o PredicateAndOp) OutputTypes() []types.Type { return []types.Type{types.Control{N: 2}} }
func (o PredicateAndOp) Equal(other Operation) bool {
	_, ok := other.(PredicateAndOp)
	return ok
}
func (o PredicateAndOp) String() string { return "pred.and" }

// MatchOp converts an integer-typed selector value into an N-way Control
// token, per jlm's cfg convention that a basic block with more than one
// successor ends in a match tac whose output numbers the outgoing edges
// in successor order; construction reads this last tac's output as
// a branch's or loop's predicate.
type MatchOp struct {
	In      types.Type
	N       int
	Mapping map[int64]int
	Default int
}

func (o MatchOp) Name() string             { return "match" }
func (o MatchOp) InputTypes() []types.Type { return []types.Type{o.In} }
func (o MatchOp) OutputTypes() []types.Type {
	return []types.Type{types.Control{N: o.N}}
}
func (o MatchOp) Equal(other Operation) bool {
	rhs, ok := other.(MatchOp)
	if !ok || rhs.N != o.N || rhs.Default != o.Default || !rhs.In.Equal(o.In) || len(rhs.Mapping) != len(o.Mapping) {
		return false
	}
	for k, v := range o.Mapping {
		if rhs.Mapping[k] != v {
			return false
		}
	}
	return true
}
func (o MatchOp) String() string { return fmt.Sprintf("match.%s(%d)", o.In, o.N) }

// TestOp is an uninterpreted operation used in unit tests and scenarios
// — any input/output arity, identified solely by Label.
type TestOp struct {
	Label string
	In    []types.Type
	Out   []types.Type
}

func (o TestOp) Name() string              { return o.Label }
func (o TestOp) InputTypes() []types.Type  { return o.In }
func (o TestOp) OutputTypes() []types.Type { return o.Out }
func (o TestOp) Equal(other Operation) bool {
	rhs, ok := other.(TestOp)
	return ok && rhs.Label == o.Label && types.EqualVectors(rhs.In, o.In) && types.EqualVectors(rhs.Out, o.Out)
}
func (o TestOp) String() string { return o.Label }

// CallOp invokes a function value with Args, producing Results; used both
// for direct calls (callee origin is a lambda output) and indirect calls.
type CallOp struct {
	Args    []types.Type
	Results []types.Type
}

func (o CallOp) Name() string { return "call" }
func (o CallOp) InputTypes() []types.Type {
	return append([]types.Type{types.Function{Params: o.Args, Results: o.Results}}, o.Args...)
}
func (o CallOp) OutputTypes() []types.Type { return o.Results }
func (o CallOp) Equal(other Operation) bool {
	rhs, ok := other.(CallOp)
	return ok && types.EqualVectors(rhs.Args, o.Args) && types.EqualVectors(rhs.Results, o.Results)
}
func (o CallOp) String() string { return "call" }
