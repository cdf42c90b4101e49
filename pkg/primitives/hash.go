// Copyright 2025 Certen Protocol
//
// Hash algorithm table shared by FileHash and the hash Ops.

package primitives

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"
)

// Algorithm identifies one of the closed set of digest algorithms the
// wire format can name, either as a FileHash algorithm or as a hash Op.
type Algorithm byte

const (
	SHA1      Algorithm = 0x02
	RIPEMD160 Algorithm = 0x03
	SHA256    Algorithm = 0x08
	KECCAK256 Algorithm = 0x67
)

// ErrUnknownAlgorithm is returned for a tag byte outside the closed set.
var ErrUnknownAlgorithm = fmt.Errorf("unknown hash algorithm tag")

// String returns the lowercase name used in FileHash and info rendering.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case RIPEMD160:
		return "ripemd160"
	case SHA256:
		return "sha256"
	case KECCAK256:
		return "keccak256"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(a))
	}
}

// AlgorithmByName resolves a lowercase algorithm name back to its tag.
func AlgorithmByName(name string) (Algorithm, error) {
	switch name {
	case "sha1":
		return SHA1, nil
	case "ripemd160":
		return RIPEMD160, nil
	case "sha256":
		return SHA256, nil
	case "keccak256":
		return KECCAK256, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// DigestLen returns the fixed digest length for the algorithm, or 0 and
// false if the tag is not one of the closed set.
func (a Algorithm) DigestLen() (int, bool) {
	switch a {
	case SHA1, RIPEMD160:
		return 20, true
	case SHA256, KECCAK256:
		return 32, true
	default:
		return 0, false
	}
}

// Valid reports whether the tag is one of the closed set of algorithms.
func (a Algorithm) Valid() bool {
	_, ok := a.DigestLen()
	return ok
}

// Digest computes the algorithm's digest of msg.
func (a Algorithm) Digest(msg []byte) ([]byte, error) {
	switch a {
	case SHA1:
		h := sha1.Sum(msg)
		return h[:], nil
	case RIPEMD160:
		h := ripemd160.New()
		h.Write(msg)
		return h.Sum(nil), nil
	case SHA256:
		h := sha256.Sum256(msg)
		return h[:], nil
	case KECCAK256:
		return crypto.Keccak256(msg), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownAlgorithm, byte(a))
	}
}
