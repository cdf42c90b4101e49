// Copyright 2025 Certen Protocol
//
// Shrink prunes a Timestamp down to its single oldest attestation on a
// given chain, discarding every other path (spec.md §4.11/C11). It's
// the inverse of Submit's fan-out: once one calendar's chain of trust
// is known-good, the rest are excess weight.

package shrink

import (
	"github.com/certen/ots-engine/pkg/ots"
)

// Shrink returns a new Timestamp retaining only the lowest-height (and
// therefore oldest, most-confirmed) leaf of chain and the Ops leading
// to it. If ts has no path to prune away — no leaf of chain at all, or
// it's already down to that single leaf — ts is returned unchanged;
// this is not an error (spec.md §4.11/C11), and makes Shrink
// idempotent: shrinking an already-shrunk Timestamp is a no-op.
func Shrink(ts *ots.Timestamp, chain string) (*ots.Timestamp, error) {
	if !ots.CanShrink(ts, chain) {
		return ts, nil
	}

	var best ots.PathLeaf
	found := false
	for _, pl := range ts.Tree.Paths() {
		if pl.Leaf.Kind.Chain() != chain {
			continue
		}
		if !found || pl.Leaf.Height < best.Leaf.Height {
			best = pl
			found = true
		}
	}

	return &ots.Timestamp{Version: ts.Version, FileHash: ts.FileHash, Tree: singlePath(best.Ops, best.Leaf)}, nil
}

func singlePath(ops []ots.Op, leaf ots.Leaf) *ots.Tree {
	t := ots.NewTree().AddLeaf(leaf)
	for i := len(ops) - 1; i >= 0; i-- {
		t = ots.NewTree().Incorporate(ops[i], t)
	}
	return t
}
