// Copyright 2025 Certen Protocol
//
// Op is the closed set of message transforms an edge in a Tree applies.

package ots

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/certen/ots-engine/pkg/primitives"
)

// OpTag is the wire-format tag byte identifying an Op.
type OpTag byte

const (
	OpAppend     OpTag = 0xf0
	OpPrepend    OpTag = 0xf1
	OpReverse    OpTag = 0xf2
	OpHexlify    OpTag = 0xf3
	OpSHA1       OpTag = OpTag(primitives.SHA1)
	OpRIPEMD160  OpTag = OpTag(primitives.RIPEMD160)
	OpSHA256     OpTag = OpTag(primitives.SHA256)
	OpKeccak256  OpTag = OpTag(primitives.KECCAK256)
)

// MaxUnaryPayload is the write-side ceiling on append/prepend payload
// length (spec.md §4.1). Readers accept any length.
const MaxUnaryPayload = 4096

// Op is a single message transform: a tag plus, for the two unary
// forms (append/prepend), the payload bytes they carry.
type Op struct {
	Tag     OpTag
	Payload []byte // non-nil only for OpAppend / OpPrepend
}

// Unary reports whether the Op carries a payload.
func (o OpTag) Unary() bool {
	return o == OpAppend || o == OpPrepend
}

// Hash reports whether the Op applies a digest function.
func (o OpTag) Hash() bool {
	switch o {
	case OpSHA1, OpRIPEMD160, OpSHA256, OpKeccak256:
		return true
	default:
		return false
	}
}

// Known reports whether the tag is one of the defined Ops.
func (o OpTag) Known() bool {
	switch o {
	case OpAppend, OpPrepend, OpReverse, OpHexlify, OpSHA1, OpRIPEMD160, OpSHA256, OpKeccak256:
		return true
	default:
		return false
	}
}

// Append constructs an append(payload) Op.
func Append(payload []byte) Op { return Op{Tag: OpAppend, Payload: payload} }

// Prepend constructs a prepend(payload) Op.
func Prepend(payload []byte) Op { return Op{Tag: OpPrepend, Payload: payload} }

// Reverse constructs the nullary reverse Op.
func Reverse() Op { return Op{Tag: OpReverse} }

// Hexlify constructs the nullary hexlify Op.
func Hexlify() Op { return Op{Tag: OpHexlify} }

// HashOp constructs the nullary hash Op for alg.
func HashOp(alg primitives.Algorithm) Op { return Op{Tag: OpTag(alg)} }

// Equal reports whether two Ops have the same tag and (for unary Ops)
// byte-identical payload.
func (o Op) Equal(other Op) bool {
	if o.Tag != other.Tag {
		return false
	}
	if !o.Tag.Unary() {
		return true
	}
	return bytes.Equal(o.Payload, other.Payload)
}

// Less implements the Op total order: tag ascending, then payload
// lexicographic.
func (o Op) Less(other Op) bool {
	if o.Tag != other.Tag {
		return o.Tag < other.Tag
	}
	return bytes.Compare(o.Payload, other.Payload) < 0
}

// Apply folds the Op's semantics over msg.
func (o Op) Apply(msg []byte) ([]byte, error) {
	switch o.Tag {
	case OpAppend:
		out := make([]byte, 0, len(msg)+len(o.Payload))
		out = append(out, msg...)
		out = append(out, o.Payload...)
		return out, nil
	case OpPrepend:
		out := make([]byte, 0, len(msg)+len(o.Payload))
		out = append(out, o.Payload...)
		out = append(out, msg...)
		return out, nil
	case OpReverse:
		out := make([]byte, len(msg))
		for i, b := range msg {
			out[len(msg)-1-i] = b
		}
		return out, nil
	case OpHexlify:
		return []byte(hex.EncodeToString(msg)), nil
	default:
		if o.Tag.Hash() {
			return primitives.Algorithm(o.Tag).Digest(msg)
		}
		return nil, fmt.Errorf("%w: op tag 0x%02x", ErrUnknownOp, byte(o.Tag))
	}
}

// ApplyOps folds each Op's semantics over msg in order.
func ApplyOps(msg []byte, ops []Op) ([]byte, error) {
	cur := msg
	for i, op := range ops {
		next, err := op.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("apply op %d (tag 0x%02x): %w", i, byte(op.Tag), err)
		}
		cur = next
	}
	return cur, nil
}

// Name returns the Op's bare keyword ("append", "sha256", ...) with no
// parentheses or operands, the piece the info printer's
// "msg = name(msg, ...)" grammar needs (spec.md §4.8).
func (o Op) Name() string {
	switch o.Tag {
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpReverse:
		return "reverse"
	case OpHexlify:
		return "hexlify"
	default:
		if o.Tag.Hash() {
			return primitives.Algorithm(o.Tag).String()
		}
		return fmt.Sprintf("unknown(0x%02x)", byte(o.Tag))
	}
}

// String renders the Op the way the info printer does: the operator
// name plus, for unary Ops, its lowercase hex payload.
func (o Op) String() string {
	switch o.Tag {
	case OpAppend:
		return fmt.Sprintf("append(%s)", hex.EncodeToString(o.Payload))
	case OpPrepend:
		return fmt.Sprintf("prepend(%s)", hex.EncodeToString(o.Payload))
	case OpReverse:
		return "reverse()"
	case OpHexlify:
		return "hexlify()"
	default:
		if o.Tag.Hash() {
			return primitives.Algorithm(o.Tag).String() + "()"
		}
		return fmt.Sprintf("unknown(0x%02x)", byte(o.Tag))
	}
}
