// Copyright 2025 Certen Protocol
//
// Submit fans a digest out to every configured calendar and grafts
// their responses onto the Timestamp (spec.md §4.9/C9). Calendars are
// contacted concurrently; a calendar that fails doesn't block the
// others.

package submit

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/certen/ots-engine/pkg/calendar"
	"github.com/certen/ots-engine/pkg/ots"
	"github.com/certen/ots-engine/pkg/primitives"
)

// nonceLen is the size of the random fudge drawn when the caller
// doesn't supply one, so two submissions of the same file hash don't
// reveal themselves to a calendar as the same digest.
const nonceLen = 16

// Submit submits ts's file hash to every calendar in calendarURLs and
// returns a new Timestamp with the successful responses grafted in.
// fudge is appended to the file hash before the submitted digest is
// computed; pass nil to draw 16 random bytes (spec.md §4.9/§6). A
// caller-supplied fudge makes the submitted digest reproducible, which
// is what lets a calendar stub or a recorded fixture be replayed byte
// for byte.
// One error per failed calendar is returned alongside; a partial
// success (some calendars responded, others didn't) is not itself an
// error.
func Submit(ctx context.Context, ts *ots.Timestamp, calendarURLs []string, client *calendar.Client, fudge []byte) (*ots.Timestamp, []error) {
	if fudge == nil {
		fudge = make([]byte, nonceLen)
		if _, err := rand.Read(fudge); err != nil {
			return ts, []error{fmt.Errorf("submit: generate fudge: %w", err)}
		}
	}

	fudgeOps := []ots.Op{ots.Append(fudge), ots.HashOp(primitives.SHA256)}
	digest, err := ots.ApplyOps(ts.FileHash.Value, fudgeOps)
	if err != nil {
		return ts, []error{fmt.Errorf("submit: apply fudge ops: %w", err)}
	}

	type result struct {
		tree *ots.Tree
		err  error
	}
	results := make(chan result, len(calendarURLs))

	var wg sync.WaitGroup
	for _, url := range calendarURLs {
		url := url
		attemptID := uuid.New()
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := client.Submit(ctx, url, digest)
			if err != nil {
				results <- result{err: fmt.Errorf("submit[%s] to %s: %w", attemptID, url, err)}
				return
			}
			results <- result{tree: tree}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	combined := ots.NewTree()
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		combined = combined.Union(r.tree)
	}

	if combined.Empty() {
		return ts, errs
	}

	hashed := ots.NewTree().Incorporate(fudgeOps[1], combined)
	newTree := ts.Tree.Incorporate(fudgeOps[0], hashed)

	return &ots.Timestamp{Version: ts.Version, FileHash: ts.FileHash, Tree: newTree}, errs
}
