package cfgir

import (
	"fmt"
	"strings"

	"jlmgo/internal/ops"
)

// Tac is a three-address operation: an operation plus ordered input
// and output variable vectors.
type Tac struct {
	Op      ops.Operation
	Inputs  []*Variable
	Outputs []*Variable
}

func NewTac(op ops.Operation, inputs, outputs []*Variable) *Tac {
	return &Tac{Op: op, Inputs: inputs, Outputs: outputs}
}

func (t *Tac) String() string {
	outs := make([]string, len(t.Outputs))
	for i, o := range t.Outputs {
		outs[i] = o.String()
	}
	ins := make([]string, len(t.Inputs))
	for i, in := range t.Inputs {
		ins[i] = in.String()
	}
	lhs := strings.Join(outs, ", ")
	if lhs != "" {
		lhs += " = "
	}
	return fmt.Sprintf("%s%s %s", lhs, t.Op.Name(), strings.Join(ins, ", "))
}
