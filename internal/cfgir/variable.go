// Package cfgir implements the CFG-style three-address-code IR: the
// representation aggregation (C3) consumes and destruction
// produces. Grounded on a reference BasicBlock/Value shape and a
// reference ordered-tac-list API.
package cfgir

import "jlmgo/internal/types"

// Variable is an SSA-like name with a type. Variables outlive any
// particular tac that defines or uses them, so they are identified
// by pointer, not by name: two variables with the same Name are distinct
// unless they are the same *Variable.
type Variable struct {
	Name string
	T    types.Type
}

func NewVariable(name string, t types.Type) *Variable {
	return &Variable{Name: name, T: t}
}

func (v *Variable) String() string { return v.Name }
