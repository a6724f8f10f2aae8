package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUserErrorIncludesCodeAndContext(t *testing.T) {
	r := &Reporter{Color: false}
	err := New(IrreducibleCfg, "function @main", "no reducible region remains")

	out := r.FormatUserError(err)
	assert.Contains(t, out, "IrreducibleCfg")
	assert.Contains(t, out, "no reducible region remains")
	assert.Contains(t, out, "function @main")
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 2, IrreducibleCfg.ExitCode())
	assert.Equal(t, 1, InvalidInput.ExitCode())
	assert.Equal(t, 1, TypeMismatch.ExitCode())
	assert.Equal(t, 1, UndefinedReference.ExitCode())
}

func TestInvariantPanicsWithCallerLocation(t *testing.T) {
	defer func() {
		r := recover()
		v, ok := r.(*InvariantViolation)
		assert.True(t, ok)
		assert.Contains(t, v.Message, "arity mismatch")
		assert.Contains(t, v.File, "reporter_test.go")
	}()

	Invariant("arity mismatch: got %d want %d", 2, 3)
}

func TestCheckOnlyPanicsWhenFalse(t *testing.T) {
	assert.NotPanics(t, func() { Check(true, "unreachable") })
	assert.Panics(t, func() { Check(false, "should panic") })
}
