// Copyright 2025 Certen Protocol
//
// Client wraps ethclient for the one thing the Ethereum verifier needs:
// the header at a given block height, so a Timestamp's Ethereum leaf
// can be checked against what the chain actually recorded.

package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is a thin wrapper around an ethclient connection.
type Client struct {
	inner *ethclient.Client
	url   string
}

// NewClient dials url (an HTTP or WebSocket JSON-RPC endpoint).
func NewClient(url string) (*Client, error) {
	inner, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{inner: inner, url: url}, nil
}

// HeaderByNumber returns the header at height.
func (c *Client) HeaderByNumber(ctx context.Context, height uint64) (*types.Header, error) {
	header, err := c.inner.HeaderByNumber(ctx, new(big.Int).SetUint64(height))
	if err != nil {
		return nil, fmt.Errorf("header at height %d from %s: %w", height, c.url, err)
	}
	return header, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.inner.Close()
}
