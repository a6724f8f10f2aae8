package cne

import (
	"encoding/binary"
	"fmt"

	"github.com/minio/highwayhash"

	"jlmgo/internal/errors"
	"jlmgo/internal/rvsdg"
)

// hashKey is a fixed, non-secret highwayhash key: canonical-key hashing
// here is for deterministic bucketing, not integrity, so any 32-byte key
// works as long as it never changes between runs. Grounded on
// viant-linager's inspector/graph/hash.go, which hashes content the same
// way for its own canonical node keys.
var hashKey = []byte("JLMGOCNECANONICALHASHKEY01234567")

func hashBytes(data []byte) uint64 {
	h, err := highwayhash.New64(hashKey)
	errors.Check(err == nil, "cne: highwayhash init: %v", err)
	_, err = h.Write(data)
	errors.Check(err == nil, "cne: highwayhash write: %v", err)
	return h.Sum64()
}

// hashUint64s combines a sequence of class tokens into one, used to fold a
// node's family key and its operands' current classes into a single
// round's signature.
func hashUint64s(parts ...uint64) uint64 {
	buf := make([]byte, 8*len(parts))
	for i, p := range parts {
		binary.LittleEndian.PutUint64(buf[i*8:], p)
	}
	return hashBytes(buf)
}

// familyHash distinguishes node "shapes" that can never be congruent
// regardless of operand classes: different operations, different
// structural kinds, or structural nodes of incompatible arity/signature.
func familyHash(n *rvsdg.Node) uint64 {
	switch n.Kind() {
	case rvsdg.KindSimple:
		return hashBytes([]byte("simple:" + n.Operation().String()))
	case rvsdg.KindGamma:
		return hashBytes([]byte(fmt.Sprintf("gamma:%d:%d", n.NOutputs(), len(n.Subregions()))))
	case rvsdg.KindTheta:
		return hashBytes([]byte(fmt.Sprintf("theta:%d", n.NInputs())))
	case rvsdg.KindLambda:
		return hashBytes([]byte("lambda:" + n.Output(0).Type().String()))
	case rvsdg.KindPhi:
		return hashBytes([]byte(fmt.Sprintf("phi:%d", len(n.Phi.Names))))
	case rvsdg.KindDelta:
		return hashBytes([]byte(fmt.Sprintf("delta:%v:%s", n.Delta.Constant, n.Output(0).Type())))
	default:
		errors.Invariant("cne: unknown node kind %s", n.Kind())
		return 0
	}
}
