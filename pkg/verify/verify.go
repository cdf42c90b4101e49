// Copyright 2025 Certen Protocol
//
// Verify checks every non-pending leaf in a Timestamp against every
// named verifier in a Registry (spec.md §4.7/C12). Every (leaf,
// verifier) pair runs concurrently; a verifier that declines a leaf
// (wrong chain) contributes nothing, one that errors contributes to
// Errors, and one that confirms contributes to Attestations.

package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/certen/ots-engine/pkg/ots"
	"github.com/certen/ots-engine/pkg/verifier"
)

// Result is the aggregate outcome of a Verify call.
type Result struct {
	// Attestations groups verifier names by the UNIX timestamp they
	// confirmed. Two verifiers (or two leaves) that confirm the same
	// timestamp are recorded under the same key; two that disagree
	// get distinct keys, left for the caller to reconcile.
	Attestations map[int64][]string
	// Errors groups the errors a given named verifier raised.
	Errors map[string][]error
}

// Verify runs every entry in registry against every non-pending leaf
// reachable from ts.Tree.
func Verify(ctx context.Context, ts *ots.Timestamp, registry verifier.Registry) (Result, error) {
	var targets []ots.PathLeaf
	for _, pl := range ts.Tree.Paths() {
		if !pl.Leaf.Pending() {
			targets = append(targets, pl)
		}
	}
	if len(targets) == 0 {
		return Result{}, &ots.LogicError{Msg: "verify", Err: fmt.Errorf("timestamp has no non-pending leaves")}
	}

	type call struct {
		name string
		fn   verifier.VerifyFunc
		leaf ots.Leaf
		msg  []byte
	}
	var calls []call
	for _, pl := range targets {
		msg, err := ts.FinalMessage(pl.Ops)
		if err != nil {
			return Result{}, fmt.Errorf("verify: compute final message for %s: %w", pl.Leaf, err)
		}
		for name, fn := range registry {
			calls = append(calls, call{name: name, fn: fn, leaf: pl.Leaf, msg: msg})
		}
	}

	type outcome struct {
		name string
		ts   int64
		err  error
	}
	results := make(chan outcome, len(calls))

	var wg sync.WaitGroup
	for _, c := range calls {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			unixTime, ok, err := c.fn(ctx, c.leaf, c.msg)
			if err != nil {
				results <- outcome{name: c.name, err: err}
				return
			}
			if !ok {
				return
			}
			results <- outcome{name: c.name, ts: unixTime}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	res := Result{Attestations: map[int64][]string{}, Errors: map[string][]error{}}
	for o := range results {
		if o.err != nil {
			res.Errors[o.name] = append(res.Errors[o.name], o.err)
			continue
		}
		res.Attestations[o.ts] = append(res.Attestations[o.ts], o.name)
	}
	return res, nil
}
