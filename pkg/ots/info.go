// Copyright 2025 Certen Protocol
//
// Info renders a Timestamp as a deterministic, human-readable trace:
// the file hash, each Op applied to "msg" in assignment form, and the
// terminal attestation call (spec.md §4.8).

package ots

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// InfoOptions controls Info's output.
type InfoOptions struct {
	// ShowVersion prepends a "# version: N" line.
	ShowVersion bool
	// Verbose prints the hex of the message resulting from each Op, on
	// a continuation line beneath it.
	Verbose bool
}

// infoIndentUnit is one level of branch indentation; it's exactly the
// width of the " -> " sibling marker so an arrow-prefixed line and a
// plain-indented continuation line of the same branch line up.
const infoIndentUnit = "    "

// Info renders ts.Tree depth-first: a node with exactly one child
// continues the current line ("msg = op(msg, ...)"); a node with more
// than one extends every child (Op or Leaf) as an indented sibling,
// prefixed by " -> " on the first line of that sibling's rendering.
func Info(ts *Timestamp, opts InfoOptions) (string, error) {
	var b strings.Builder

	if opts.ShowVersion {
		fmt.Fprintf(&b, "# version: %d\n", ts.Version)
	}
	fmt.Fprintf(&b, "msg = %s(FILE)\n", ts.FileHash.Algorithm)

	if err := infoRenderNode(&b, ts.Tree, ts.FileHash.Value, 0, opts.Verbose); err != nil {
		return "", err
	}
	return b.String(), nil
}

func infoRenderNode(b *strings.Builder, node *Tree, cur []byte, depth int, verbose bool) error {
	leaves := node.Leaves()
	edges := node.Edges()

	switch total := len(leaves) + len(edges); {
	case total == 0:
		return nil

	case total == 1:
		if len(leaves) == 1 {
			infoWriteLine(b, depth, false, leaves[0].String())
			return nil
		}
		e := edges[0]
		next, err := e.Op.Apply(cur)
		if err != nil {
			return fmt.Errorf("info: apply %s: %w", e.Op, err)
		}
		infoWriteLine(b, depth, false, infoOpAssign(e.Op))
		if verbose {
			infoWriteLine(b, depth, false, "= "+hex.EncodeToString(next))
		}
		return infoRenderNode(b, e.Sub, next, depth, verbose)

	default:
		for _, l := range leaves {
			infoWriteLine(b, depth+1, true, l.String())
		}
		for _, e := range edges {
			next, err := e.Op.Apply(cur)
			if err != nil {
				return fmt.Errorf("info: apply %s: %w", e.Op, err)
			}
			infoWriteLine(b, depth+1, true, infoOpAssign(e.Op))
			if verbose {
				infoWriteLine(b, depth+1, false, "= "+hex.EncodeToString(next))
			}
			if err := infoRenderNode(b, e.Sub, next, depth+1, verbose); err != nil {
				return err
			}
		}
		return nil
	}
}

// infoWriteLine emits one line at the given depth. An arrow line is
// prefixed by indentation one level shallower than depth, followed by
// " -> "; a plain line is indented the full depth.
func infoWriteLine(b *strings.Builder, depth int, arrow bool, text string) {
	if arrow && depth > 0 {
		fmt.Fprintf(b, "%s -> %s\n", strings.Repeat(infoIndentUnit, depth-1), text)
		return
	}
	fmt.Fprintf(b, "%s%s\n", strings.Repeat(infoIndentUnit, depth), text)
}

// infoOpAssign renders an Op in the spec's assignment grammar:
// "msg = op(msg, <hex-args>)" for unary Ops, "msg = op(msg)" otherwise.
func infoOpAssign(op Op) string {
	if op.Tag.Unary() {
		return fmt.Sprintf("msg = %s(msg, %s)", op.Name(), hex.EncodeToString(op.Payload))
	}
	return fmt.Sprintf("msg = %s(msg)", op.Name())
}
