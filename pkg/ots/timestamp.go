// Copyright 2025 Certen Protocol

package ots

import (
	"fmt"

	"github.com/certen/ots-engine/pkg/primitives"
)

// CurrentVersion is the only Timestamp version this engine reads and
// writes (spec.md §3.5).
const CurrentVersion uint64 = 1

// FileHash is a hashed representation of the original file
// (spec.md §3.1).
type FileHash struct {
	Algorithm primitives.Algorithm
	Value     []byte
}

// NewFileHash validates that value's length matches algorithm's fixed
// digest length before constructing the FileHash.
func NewFileHash(alg primitives.Algorithm, value []byte) (FileHash, error) {
	wantLen, ok := alg.DigestLen()
	if !ok {
		return FileHash{}, validationErr("fileHash.algorithm", fmt.Errorf("%w: 0x%02x", ErrUnknownAlgorithmValue, byte(alg)))
	}
	if len(value) != wantLen {
		return FileHash{}, validationErr("fileHash.value", fmt.Errorf("%w: algorithm %s wants %d bytes, got %d", ErrWrongDigestLen, alg, wantLen, len(value)))
	}
	return FileHash{Algorithm: alg, Value: value}, nil
}

// ErrUnknownAlgorithmValue mirrors primitives.ErrUnknownAlgorithm so
// this package doesn't need to import primitives just to wrap it (it
// already does, but this keeps the identity local for errors.Is).
var ErrUnknownAlgorithmValue = primitives.ErrUnknownAlgorithm

// Timestamp is the top-level proof object (spec.md §3.5): a file hash
// plus a tree of transforms ending in attestations.
type Timestamp struct {
	Version  uint64
	FileHash FileHash
	Tree     *Tree
}

// FinalMessage applies ops to the Timestamp's FileHash value, the
// message a leaf at the end of that path must equal.
func (t *Timestamp) FinalMessage(ops []Op) ([]byte, error) {
	return ApplyOps(t.FileHash.Value, ops)
}

// LeafMessages enumerates every (Leaf, finalMessage) pair in t.Tree.
func (t *Timestamp) LeafMessages() ([]struct {
	Leaf    Leaf
	Message []byte
}, error) {
	paths := t.Tree.Paths()
	out := make([]struct {
		Leaf    Leaf
		Message []byte
	}, 0, len(paths))
	for _, pl := range paths {
		msg, err := t.FinalMessage(pl.Ops)
		if err != nil {
			return nil, fmt.Errorf("compute final message for leaf %v: %w", pl.Leaf, err)
		}
		out = append(out, struct {
			Leaf    Leaf
			Message []byte
		}{Leaf: pl.Leaf, Message: msg})
	}
	return out, nil
}
