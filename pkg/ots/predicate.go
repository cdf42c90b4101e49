// Copyright 2025 Certen Protocol
//
// Predicates classify a Timestamp without touching the network
// (spec.md §4.3, §8).

package ots

// CanVerify reports whether at least one non-pending leaf exists.
func CanVerify(t *Timestamp) bool {
	for _, pl := range t.Tree.Paths() {
		if !pl.Leaf.Pending() {
			return true
		}
	}
	return false
}

// CanUpgrade reports whether at least one pending leaf exists.
func CanUpgrade(t *Timestamp) bool {
	for _, pl := range t.Tree.Paths() {
		if pl.Leaf.Pending() {
			return true
		}
	}
	return false
}

// CanShrink reports whether t has at least one leaf of the given
// chain and at least two leaves total, of any kind (spec.md §4.3): a
// Timestamp with a single chain-leaf and nothing else has nothing left
// to prune.
func CanShrink(t *Timestamp, chain string) bool {
	paths := t.Tree.Paths()
	if len(paths) < 2 {
		return false
	}
	for _, pl := range paths {
		if pl.Leaf.Kind.Chain() == chain {
			return true
		}
	}
	return false
}
