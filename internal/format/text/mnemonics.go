package text

import (
	"fmt"

	"jlmgo/internal/cfgir"
	"jlmgo/internal/ops"
	"jlmgo/internal/types"
)

var binaryMnemonics = map[string]ops.BinaryKind{
	"add": ops.Add, "sub": ops.Sub, "mul": ops.Mul, "sdiv": ops.SDiv, "udiv": ops.UDiv,
	"and": ops.And, "or": ops.Or, "xor": ops.Xor, "shl": ops.Shl, "shr": ops.Shr,
	"icmp.eq": ops.ICmpEq, "icmp.ne": ops.ICmpNe, "icmp.slt": ops.ICmpSlt, "icmp.ult": ops.ICmpUlt,
}

var unaryMnemonics = map[string]ops.UnaryKind{
	"neg": ops.Neg, "not": ops.Not, "sext": ops.SExt, "zext": ops.ZExt, "trunc": ops.Trunc, "bitcast": ops.BitCast,
}

// buildBasicOp resolves a BasicTac's mnemonic plus its already-typed
// output/operand variables into an ops.Operation. Every family here
// derives its type fields entirely from the declared variables, unlike
// ConstTac/MatchTac which carry extra literal data no variable
// declaration could supply.
func buildBasicOp(mnemonic string, outs, operands []*cfgir.Variable) (ops.Operation, error) {
	if bk, ok := binaryMnemonics[mnemonic]; ok {
		if len(outs) != 1 || len(operands) != 2 {
			return nil, fmt.Errorf("%s: want 1 output and 2 operands", mnemonic)
		}
		return ops.BinaryOp{BKind: bk, T: operands[0].T}, nil
	}
	if uk, ok := unaryMnemonics[mnemonic]; ok {
		if len(outs) != 1 || len(operands) != 1 {
			return nil, fmt.Errorf("%s: want 1 output and 1 operand", mnemonic)
		}
		return ops.UnaryOp{UKind: uk, In: operands[0].T, Out: outs[0].T}, nil
	}
	switch mnemonic {
	case "alloca":
		if len(outs) != 2 || len(operands) != 1 {
			return nil, fmt.Errorf("alloca: want 2 outputs and 1 operand")
		}
		ptr, ok := outs[0].T.(types.Pointer)
		if !ok {
			return nil, fmt.Errorf("alloca: first output must be a pointer type")
		}
		return ops.AllocaOp{Elem: ptr.Pointee}, nil
	case "load":
		if len(outs) != 1 || len(operands) != 2 {
			return nil, fmt.Errorf("load: want 1 output and 2 operands (pointer, mem)")
		}
		return ops.LoadOp{Elem: outs[0].T}, nil
	case "store":
		if len(outs) != 1 || len(operands) != 3 {
			return nil, fmt.Errorf("store: want 1 output and 3 operands (pointer, value, mem)")
		}
		return ops.StoreOp{Elem: operands[1].T}, nil
	}
	return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
}

// mnemonicOf returns the textual mnemonic a writer should emit for op,
// the inverse of buildBasicOp's dispatch (const/match ops are handled by
// their own dedicated writer cases instead, since they carry extra
// literal data a bare mnemonic can't).
func mnemonicOf(op ops.Operation) (string, bool) {
	switch o := op.(type) {
	case ops.BinaryOp:
		for m, k := range binaryMnemonics {
			if k == o.BKind {
				return m, true
			}
		}
	case ops.UnaryOp:
		for m, k := range unaryMnemonics {
			if k == o.UKind {
				return m, true
			}
		}
	case ops.AllocaOp:
		return "alloca", true
	case ops.LoadOp:
		return "load", true
	case ops.StoreOp:
		return "store", true
	}
	return "", false
}
