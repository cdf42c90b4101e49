// Copyright 2025 Certen Protocol
//
// Upgrade walks every pending leaf in a Timestamp, asks that leaf's
// calendar whether it has finished attesting, and grafts the answer
// in (spec.md §4.10/C10). Calendars are polled concurrently.

package upgrade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/certen/ots-engine/pkg/calendar"
	"github.com/certen/ots-engine/pkg/ots"
)

// Upgrade queries every pending leaf's calendar and returns a new
// Timestamp with whatever attestations have become available grafted
// in place of their pending leaves. A calendar that is still pending
// is left untouched, not reported as an error; a calendar that
// responds with an actual failure contributes one error to the
// returned slice.
func Upgrade(ctx context.Context, ts *ots.Timestamp, client *calendar.Client) (*ots.Timestamp, []error) {
	var pending []ots.PathLeaf
	for _, pl := range ts.Tree.Paths() {
		if pl.Leaf.Pending() {
			pending = append(pending, pl)
		}
	}
	if len(pending) == 0 {
		return ts, nil
	}

	type outcome struct {
		pl   ots.PathLeaf
		tree *ots.Tree
		err  error
	}
	results := make(chan outcome, len(pending))

	var wg sync.WaitGroup
	for _, pl := range pending {
		pl := pl
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, err := ts.FinalMessage(pl.Ops)
			if err != nil {
				results <- outcome{pl: pl, err: fmt.Errorf("upgrade: compute final message for %s: %w", pl.Leaf.URL, err)}
				return
			}
			tree, err := client.GetTimestamp(ctx, pl.Leaf.URL, msg)
			if err != nil {
				if errors.Is(err, calendar.ErrPending) {
					results <- outcome{pl: pl}
					return
				}
				results <- outcome{pl: pl, err: fmt.Errorf("upgrade: query %s: %w", pl.Leaf.URL, err)}
				return
			}
			results <- outcome{pl: pl, tree: tree}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	tree := ts.Tree
	var errs []error
	for o := range results {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		if o.tree == nil {
			continue // still pending
		}
		pl := o.pl
		newSub := o.tree
		tree = tree.ReplaceAt(pl.Ops, func(node *ots.Tree) *ots.Tree {
			return node.RemoveLeaf(pl.Leaf).Union(newSub)
		})
	}

	return &ots.Timestamp{Version: ts.Version, FileHash: ts.FileHash, Tree: tree}, errs
}
