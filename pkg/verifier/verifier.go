// Copyright 2025 Certen Protocol
//
// Verifier checks a Leaf's attestation against a chain: the final
// message computed for that leaf's path must match what the chain
// actually recorded at the claimed height (spec.md §4.7/C12). More
// than one named verifier may cover the same chain (e.g. two
// independent block-explorer backends), so Registry keys on verifier
// name rather than chain and lets every entry run against every leaf.

package verifier

import (
	"context"

	"github.com/certen/ots-engine/pkg/ots"
)

// VerifyFunc checks leaf's attestation given the final message its
// Tree path produces. It returns:
//   - (unixTime, true, nil) if this verifier's chain recorded msg at
//     leaf.Height — unixTime is the confirming block's UNIX timestamp.
//   - (_, false, nil) if this verifier declines leaf (wrong chain) —
//     not an error.
//   - (_, _, err) if the lookup itself failed or msg didn't match what
//     the chain recorded.
type VerifyFunc func(ctx context.Context, leaf ots.Leaf, msg []byte) (unixTime int64, ok bool, err error)

// Registry maps a verifier's name (e.g. "verifyViaBlockchainInfo") to
// its VerifyFunc. Every entry is run against every non-pending leaf;
// a verifier whose chain doesn't match a given leaf simply declines.
type Registry map[string]VerifyFunc
