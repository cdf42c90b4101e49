// Copyright 2025 Certen Protocol
//
// Ethereum attestation has no canonical OpenTimestamps definition; this
// pack supplements the protocol with one: the final message for an
// Ethereum leaf's path must equal the block hash at the claimed
// height, the one piece of block state an RPC node commits to without
// qualification.

package verifier

import (
	"bytes"
	"context"
	"fmt"

	"github.com/certen/ots-engine/pkg/ethereum"
	"github.com/certen/ots-engine/pkg/ots"
)

// NewEthereumVerifier returns a VerifyFunc backed by client. name
// identifies this verifier in Registry and in any VerifierError it
// raises.
func NewEthereumVerifier(name string, client *ethereum.Client) VerifyFunc {
	return func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
		if leaf.Kind.Chain() != "ethereum" {
			return 0, false, nil
		}
		header, err := client.HeaderByNumber(ctx, leaf.Height)
		if err != nil {
			return 0, false, &ots.VerifierError{Verifier: name, Err: err}
		}
		if !bytes.Equal(header.Hash().Bytes(), msg) {
			return 0, false, &ots.VerifierError{Verifier: name, Err: fmt.Errorf("message does not match block %d hash", leaf.Height)}
		}
		return int64(header.Time), true, nil
	}
}
