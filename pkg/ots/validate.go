// Copyright 2025 Certen Protocol
//
// Validate checks structural well-formedness of an in-memory Timestamp
// independent of how it was built (codec read, Union, or hand-
// constructed) — spec.md §4.6, §7.2.

package ots

import "fmt"

// Validate reports the first well-formedness violation found in ts, or
// nil if ts is structurally sound.
func Validate(ts *Timestamp) error {
	if ts.Version != CurrentVersion {
		return validationErr("version", fmt.Errorf("%w: %d", ErrUnknownVersion, ts.Version))
	}
	wantLen, ok := ts.FileHash.Algorithm.DigestLen()
	if !ok {
		return validationErr("fileHash.algorithm", fmt.Errorf("%w: 0x%02x", ErrUnknownAlgorithmValue, byte(ts.FileHash.Algorithm)))
	}
	if len(ts.FileHash.Value) != wantLen {
		return validationErr("fileHash.value", fmt.Errorf("%w: algorithm %s wants %d bytes, got %d", ErrWrongDigestLen, ts.FileHash.Algorithm, wantLen, len(ts.FileHash.Value)))
	}
	return validateTree(ts.Tree, "tree")
}

func validateTree(t *Tree, path string) error {
	if t.Empty() {
		return validationErr(path, ErrEmptyTree)
	}

	seen := make(map[string]bool)
	for _, e := range t.Edges() {
		if !e.Op.Tag.Known() {
			return validationErr(path, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, byte(e.Op.Tag)))
		}
		if e.Op.Tag.Unary() {
			n := len(e.Op.Payload)
			if n < 1 || n > MaxUnaryPayload {
				return validationErr(path, fmt.Errorf("op %s: payload length %d outside [1, %d]", e.Op, n, MaxUnaryPayload))
			}
		}
		key := e.Op.String()
		if seen[key] {
			return validationErr(path, fmt.Errorf("%w: %s", ErrDuplicateEdge, e.Op))
		}
		seen[key] = true

		if err := validateTree(e.Sub, path+" -> "+e.Op.String()); err != nil {
			return err
		}
	}

	for _, l := range t.Leaves() {
		if l.Kind == LeafPending && l.URL == "" {
			return validationErr(path, fmt.Errorf("pending leaf has empty calendar url"))
		}
	}

	return nil
}
