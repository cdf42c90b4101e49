// Copyright 2025 Certen Protocol
//
// Bitcoin and Litecoin attestations are verified the same way: the
// final message for the leaf's path must equal the merkle root of the
// block at the claimed height.

package verifier

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/certen/ots-engine/pkg/ots"
)

type blockHeader struct {
	MerkleRoot string `json:"merkleroot"`
	Time       int64  `json:"time"`
}

// NewBitcoinVerifier returns a VerifyFunc backed by a bitcoind-style
// JSON-RPC endpoint at rpcURL. name identifies this verifier in
// Registry and in any VerifierError it raises.
func NewBitcoinVerifier(name, rpcURL, user, pass string, timeout time.Duration) VerifyFunc {
	return newChainVerifier("bitcoin", name, rpcURL, user, pass, timeout)
}

// NewLitecoinVerifier returns a VerifyFunc backed by a litecoind-style
// JSON-RPC endpoint at rpcURL. name identifies this verifier in
// Registry and in any VerifierError it raises.
func NewLitecoinVerifier(name, rpcURL, user, pass string, timeout time.Duration) VerifyFunc {
	return newChainVerifier("litecoin", name, rpcURL, user, pass, timeout)
}

func newChainVerifier(chain, name, rpcURL, user, pass string, timeout time.Duration) VerifyFunc {
	rpc := &rpcClient{
		url:        rpcURL,
		user:       user,
		pass:       pass,
		httpClient: &http.Client{Timeout: timeout},
	}

	return func(ctx context.Context, leaf ots.Leaf, msg []byte) (int64, bool, error) {
		if leaf.Kind.Chain() != chain {
			return 0, false, nil
		}

		var blockHash string
		if err := rpc.call(ctx, "getblockhash", []interface{}{leaf.Height}, &blockHash); err != nil {
			return 0, false, &ots.VerifierError{Verifier: name, Err: fmt.Errorf("resolve block hash at height %d: %w", leaf.Height, err)}
		}

		var header blockHeader
		if err := rpc.call(ctx, "getblockheader", []interface{}{blockHash, true}, &header); err != nil {
			return 0, false, &ots.VerifierError{Verifier: name, Err: fmt.Errorf("fetch block header %s: %w", blockHash, err)}
		}

		root, err := hex.DecodeString(header.MerkleRoot)
		if err != nil {
			return 0, false, &ots.VerifierError{Verifier: name, Err: fmt.Errorf("decode merkle root: %w", err)}
		}
		// The RPC prints the merkle root byte-reversed; the committed
		// message is in the header's internal byte order.
		for i, j := 0, len(root)-1; i < j; i, j = i+1, j-1 {
			root[i], root[j] = root[j], root[i]
		}
		if !bytes.Equal(root, msg) {
			return 0, false, &ots.VerifierError{Verifier: name, Err: fmt.Errorf("message does not match block %d merkle root", leaf.Height)}
		}

		return header.Time, true, nil
	}
}
