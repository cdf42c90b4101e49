// Copyright 2025 Certen Protocol

package verify

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/certen/ots-engine/pkg/ots"
	"github.com/certen/ots-engine/pkg/primitives"
	"github.com/certen/ots-engine/pkg/verifier"
)

// TestVerifyTwoVerifiersConfirmSameLeaf locks in the literal worked
// example in spec.md §8 scenario 6: two independently named verifiers
// that both confirm the same bitcoin leaf at the same UNIX timestamp
// are grouped under that one timestamp key, with no errors.
func TestVerifyTwoVerifiersConfirmSameLeaf(t *testing.T) {
	digest := sha256.Sum256([]byte("verify"))
	fh, err := ots.NewFileHash(primitives.SHA256, digest[:])
	if err != nil {
		t.Fatalf("NewFileHash: %v", err)
	}
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: ots.NewTree().AddLeaf(ots.Bitcoin(1))}

	const confirmedAt = 1473227803
	registry := verifier.Registry{
		"verifyViaBlockchainInfo": func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
			return confirmedAt, true, nil
		},
		"verifyViaBlockstream": func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
			return confirmedAt, true, nil
		},
	}

	res, err := Verify(context.Background(), ts, registry)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", res.Errors)
	}
	names := res.Attestations[confirmedAt]
	if len(names) != 2 {
		t.Fatalf("Attestations[%d] = %v, want 2 verifier names", confirmedAt, names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["verifyViaBlockchainInfo"] || !seen["verifyViaBlockstream"] {
		t.Errorf("Attestations[%d] = %v, want both verifier names", confirmedAt, names)
	}
}

func TestVerifySkipsPendingLeaves(t *testing.T) {
	digest := sha256.Sum256([]byte("pending-mix"))
	fh, _ := ots.NewFileHash(primitives.SHA256, digest[:])
	tree := ots.NewTree().AddLeaf(ots.Bitcoin(1)).AddLeaf(ots.Pending("https://a.example.com"))
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: tree}

	registry := verifier.Registry{
		"bitcoin-node": func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
			return 5, true, nil
		},
	}

	res, err := Verify(context.Background(), ts, registry)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(res.Attestations[5]) != 1 {
		t.Fatalf("Attestations[5] = %v, want exactly one confirmation (pending leaf must be skipped)", res.Attestations[5])
	}
}

func TestVerifyNoNonPendingLeavesIsAnError(t *testing.T) {
	digest := sha256.Sum256([]byte("all-pending"))
	fh, _ := ots.NewFileHash(primitives.SHA256, digest[:])
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: ots.NewTree().AddLeaf(ots.Pending("https://a.example.com"))}

	_, err := Verify(context.Background(), ts, verifier.Registry{})
	if err == nil {
		t.Fatal("expected an error for a timestamp with no non-pending leaves")
	}
}

func TestVerifyDeclineIsNotAnError(t *testing.T) {
	digest := sha256.Sum256([]byte("decline"))
	fh, _ := ots.NewFileHash(primitives.SHA256, digest[:])
	tree := ots.NewTree().AddLeaf(ots.Bitcoin(1)).AddLeaf(ots.Ethereum(2))
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: tree}

	registry := verifier.Registry{
		"bitcoin-node": func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
			if leaf.Kind.Chain() != "bitcoin" {
				return 0, false, nil
			}
			return 1, true, nil
		},
	}

	res, err := Verify(context.Background(), ts, registry)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want none (ethereum leaf should be a silent decline)", res.Errors)
	}
	if len(res.Attestations[1]) != 1 {
		t.Errorf("Attestations[1] = %v, want exactly one confirmation", res.Attestations[1])
	}
}

func TestVerifyCollectsPerVerifierErrors(t *testing.T) {
	digest := sha256.Sum256([]byte("partial-failure"))
	fh, _ := ots.NewFileHash(primitives.SHA256, digest[:])
	ts := &ots.Timestamp{Version: ots.CurrentVersion, FileHash: fh, Tree: ots.NewTree().AddLeaf(ots.Bitcoin(1))}

	boom := errFailingVerifier("rpc unavailable")
	registry := verifier.Registry{
		"flaky-node": func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
			return 0, false, boom
		},
	}

	res, err := Verify(context.Background(), ts, registry)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(res.Attestations) != 0 {
		t.Errorf("Attestations = %v, want none", res.Attestations)
	}
	if len(res.Errors["flaky-node"]) != 1 {
		t.Fatalf("Errors[flaky-node] = %v, want exactly one error", res.Errors["flaky-node"])
	}
}

type errFailingVerifier string

func (e errFailingVerifier) Error() string { return string(e) }
