// Copyright 2025 Certen Protocol
//
// Leaf is the closed set of terminal attestations a Tree path can end
// in (spec.md §3.3). Each kind has a distinct 8-byte wire magic.

package ots

import (
	"bytes"
	"encoding/hex"
)

// LeafKind discriminates the closed set of attestation kinds.
type LeafKind int

const (
	LeafPending LeafKind = iota
	LeafBitcoin
	LeafLitecoin
	LeafEthereum
	LeafUnknown
)

// Magic byte sequences identifying each leaf kind on the wire. Pending,
// Bitcoin and Litecoin reuse the values the wider OpenTimestamps
// ecosystem has standardized on, so a Tree produced here stays
// byte-compatible with other implementations' calendars. Ethereum is a
// community extension; no canonical value was available in this
// pack's retrieval set, so one is picked here and documented as such.
var (
	magicPending   = [8]byte{0x83, 0xdf, 0xe3, 0x0d, 0x2e, 0xf9, 0x0c, 0x8e}
	magicBitcoin   = [8]byte{0x05, 0x88, 0x96, 0x0d, 0x73, 0xd7, 0x19, 0x01}
	magicLitecoin  = [8]byte{0x06, 0x86, 0x9a, 0x0d, 0x73, 0xd7, 0x1b, 0x45}
	magicEthereum  = [8]byte{0x30, 0xfe, 0x80, 0x87, 0xb5, 0xc7, 0xea, 0xd7}
)

func magicForKind(k LeafKind) ([8]byte, bool) {
	switch k {
	case LeafPending:
		return magicPending, true
	case LeafBitcoin:
		return magicBitcoin, true
	case LeafLitecoin:
		return magicLitecoin, true
	case LeafEthereum:
		return magicEthereum, true
	default:
		return [8]byte{}, false
	}
}

func kindForMagic(magic [8]byte) (LeafKind, bool) {
	switch magic {
	case magicPending:
		return LeafPending, true
	case magicBitcoin:
		return LeafBitcoin, true
	case magicLitecoin:
		return LeafLitecoin, true
	case magicEthereum:
		return LeafEthereum, true
	default:
		return LeafUnknown, false
	}
}

// Leaf is a terminal attestation at the end of a Tree path.
type Leaf struct {
	Kind LeafKind

	URL    string // Kind == LeafPending
	Height uint64 // Kind == LeafBitcoin / LeafLitecoin / LeafEthereum

	UnknownTag     [8]byte // Kind == LeafUnknown
	UnknownPayload []byte  // Kind == LeafUnknown
}

// Pending constructs a pending leaf awaiting an upgrade from url.
func Pending(url string) Leaf { return Leaf{Kind: LeafPending, URL: url} }

// Bitcoin constructs a Bitcoin block-attestation leaf at height.
func Bitcoin(height uint64) Leaf { return Leaf{Kind: LeafBitcoin, Height: height} }

// Litecoin constructs a Litecoin block-attestation leaf at height.
func Litecoin(height uint64) Leaf { return Leaf{Kind: LeafLitecoin, Height: height} }

// Ethereum constructs an Ethereum block-attestation leaf at height.
func Ethereum(height uint64) Leaf { return Leaf{Kind: LeafEthereum, Height: height} }

// Chain returns the lowercase chain name for a blockchain-attestation
// leaf kind ("bitcoin", "litecoin", "ethereum"), or "" otherwise.
func (k LeafKind) Chain() string {
	switch k {
	case LeafBitcoin:
		return "bitcoin"
	case LeafLitecoin:
		return "litecoin"
	case LeafEthereum:
		return "ethereum"
	default:
		return ""
	}
}

// ChainKind resolves a chain name back to its LeafKind.
func ChainKind(chain string) (LeafKind, bool) {
	switch chain {
	case "bitcoin":
		return LeafBitcoin, true
	case "litecoin":
		return LeafLitecoin, true
	case "ethereum":
		return LeafEthereum, true
	default:
		return 0, false
	}
}

// Pending reports whether this is a pending (un-upgraded) leaf.
func (l Leaf) Pending() bool { return l.Kind == LeafPending }

// Equal implements the set-equality Leaf needs inside Tree.leaves.
func (l Leaf) Equal(other Leaf) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LeafPending:
		return l.URL == other.URL
	case LeafBitcoin, LeafLitecoin, LeafEthereum:
		return l.Height == other.Height
	case LeafUnknown:
		return l.UnknownTag == other.UnknownTag && bytes.Equal(l.UnknownPayload, other.UnknownPayload)
	default:
		return false
	}
}

// String renders the leaf the way the info printer's call syntax does
// (spec.md §4.8): "<chain>Verify(msg, <height>)" or
// "pendingVerify(msg, <url>)".
func (l Leaf) String() string {
	switch l.Kind {
	case LeafPending:
		return "pendingVerify(msg, " + l.URL + ")"
	case LeafBitcoin, LeafLitecoin, LeafEthereum:
		return l.Kind.Chain() + "Verify(msg, " + uitoa(l.Height) + ")"
	case LeafUnknown:
		return "unknown(" + hex.EncodeToString(l.UnknownTag[:]) + ", " + hex.EncodeToString(l.UnknownPayload) + ")"
	default:
		return "invalid-leaf"
	}
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
