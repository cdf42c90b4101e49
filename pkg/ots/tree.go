// Copyright 2025 Certen Protocol
//
// Tree is the recursive proof structure: outgoing edges labelled by
// Ops, and terminal Leaves (spec.md §3.4, §4.2). Trees are immutable
// value types — every algebra function below returns a new Tree and
// never mutates its arguments, matching the ownership model in
// spec.md §3.6 (no sharing, no back-references).

package ots

import "sort"

type edge struct {
	op  Op
	sub *Tree
}

// Tree holds outgoing edges (Op -> sub-Tree) and terminal leaves.
// edges is kept in Op total order so serialization is deterministic
// (spec.md §9); leaves is an unordered set with Leaf.Equal semantics.
type Tree struct {
	edges  []edge
	leaves []Leaf
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{}
}

// Empty reports whether the Tree has neither edges nor leaves.
func (t *Tree) Empty() bool {
	return len(t.edges) == 0 && len(t.leaves) == 0
}

// Edges returns the (Op, sub-Tree) pairs in Op total order.
func (t *Tree) Edges() []struct {
	Op  Op
	Sub *Tree
} {
	out := make([]struct {
		Op  Op
		Sub *Tree
	}, len(t.edges))
	for i, e := range t.edges {
		out[i] = struct {
			Op  Op
			Sub *Tree
		}{Op: e.op, Sub: e.sub}
	}
	return out
}

// Leaves returns the Tree's own terminal leaves (not those of
// sub-trees), in stable insertion order.
func (t *Tree) Leaves() []Leaf {
	out := make([]Leaf, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// clone returns a deep copy so that mutation of the result can never
// be observed by the original.
func (t *Tree) clone() *Tree {
	out := &Tree{
		edges:  make([]edge, len(t.edges)),
		leaves: make([]Leaf, len(t.leaves)),
	}
	copy(out.leaves, t.leaves)
	for i, e := range t.edges {
		out.edges[i] = edge{op: e.op, sub: e.sub.clone()}
	}
	return out
}

func (t *Tree) sortEdges() {
	sort.Slice(t.edges, func(i, j int) bool { return t.edges[i].op.Less(t.edges[j].op) })
}

// AddLeaf returns a new Tree with leaf added to this Tree's own leaf
// set (a no-op if an equal leaf is already present).
func (t *Tree) AddLeaf(leaf Leaf) *Tree {
	out := t.clone()
	for _, l := range out.leaves {
		if l.Equal(leaf) {
			return out
		}
	}
	out.leaves = append(out.leaves, leaf)
	return out
}

// Incorporate returns a new Tree with (op -> sub) grafted on: if op
// already has an outgoing edge, the existing child is recursively
// unioned with sub; otherwise the edge is inserted (spec.md §4.2).
func (t *Tree) Incorporate(op Op, sub *Tree) *Tree {
	out := t.clone()
	for i, e := range out.edges {
		if e.op.Equal(op) {
			out.edges[i].sub = e.sub.Union(sub)
			return out
		}
	}
	out.edges = append(out.edges, edge{op: op, sub: sub.clone()})
	out.sortEdges()
	return out
}

// Union returns a new Tree combining a and b: edges are merged
// key-wise and recursively, leaves are set-unioned. Union is
// commutative: Union(a, b) and Union(b, a) are structurally equal
// (spec.md §5, §8).
func (a *Tree) Union(b *Tree) *Tree {
	out := a.clone()
	for _, e := range b.edges {
		out = out.Incorporate(e.op, e.sub)
	}
	for _, l := range b.leaves {
		out = out.AddLeaf(l)
	}
	return out
}

// PathLeaf is one (ops, leaf) pair yielded by Paths.
type PathLeaf struct {
	Ops  []Op
	Leaf Leaf
}

// Paths enumerates every (ops, leaf) pair reachable from t,
// depth-first, in Op total order across edges and stable insertion
// order across leaves at a given node (spec.md §4.2).
func (t *Tree) Paths() []PathLeaf {
	var out []PathLeaf
	var walk func(node *Tree, prefix []Op)
	walk = func(node *Tree, prefix []Op) {
		for _, l := range node.leaves {
			p := make([]Op, len(prefix))
			copy(p, prefix)
			out = append(out, PathLeaf{Ops: p, Leaf: l})
		}
		for _, e := range node.edges {
			walk(e.sub, append(prefix, e.op))
		}
	}
	walk(t, nil)
	return out
}

// LeafCount returns the total number of leaves reachable from t.
func (t *Tree) LeafCount() int {
	return len(t.Paths())
}

// RemoveLeaf returns a new Tree with leaf removed from this Tree's own
// leaf set, if present.
func (t *Tree) RemoveLeaf(leaf Leaf) *Tree {
	out := t.clone()
	filtered := out.leaves[:0:0]
	for _, l := range out.leaves {
		if !l.Equal(leaf) {
			filtered = append(filtered, l)
		}
	}
	out.leaves = filtered
	return out
}

// ReplaceAt walks t along ops and applies fn to the Tree node found at
// the end of that path, returning a new root with the result grafted
// back in. A path with no matching edge is a no-op (the original Tree
// is returned unchanged) — callers that need to know whether the path
// existed should check beforehand via Paths.
func (t *Tree) ReplaceAt(ops []Op, fn func(*Tree) *Tree) *Tree {
	if len(ops) == 0 {
		return fn(t)
	}
	out := t.clone()
	head, rest := ops[0], ops[1:]
	for i, e := range out.edges {
		if e.op.Equal(head) {
			out.edges[i].sub = e.sub.ReplaceAt(rest, fn)
			return out
		}
	}
	return out
}
