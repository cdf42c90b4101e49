// Copyright 2025 Certen Protocol

package ots

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/certen/ots-engine/pkg/primitives"
)

func mustFileHash(t *testing.T, alg primitives.Algorithm, value []byte) FileHash {
	t.Helper()
	fh, err := NewFileHash(alg, value)
	if err != nil {
		t.Fatalf("NewFileHash: %v", err)
	}
	return fh
}

func TestTimestampRoundtripSingleLeaf(t *testing.T) {
	digest := sha256.Sum256([]byte("certen"))
	ts := &Timestamp{
		Version:  CurrentVersion,
		FileHash: mustFileHash(t, primitives.SHA256, digest[:]),
		Tree:     NewTree().AddLeaf(Pending("https://calendar.example.com")),
	}

	buf, err := WriteTimestamp(ts)
	if err != nil {
		t.Fatalf("WriteTimestamp: %v", err)
	}

	got, err := ReadTimestamp(buf)
	if err != nil {
		t.Fatalf("ReadTimestamp: %v", err)
	}
	if got.Version != ts.Version {
		t.Errorf("version = %d, want %d", got.Version, ts.Version)
	}
	if !bytes.Equal(got.FileHash.Value, ts.FileHash.Value) {
		t.Errorf("fileHash value mismatch")
	}
	paths := got.Tree.Paths()
	if len(paths) != 1 || !paths[0].Leaf.Equal(Pending("https://calendar.example.com")) {
		t.Errorf("unexpected paths after roundtrip: %+v", paths)
	}
}

func TestTimestampRoundtripBranching(t *testing.T) {
	digest := sha1.Sum([]byte("branching"))
	sub1 := NewTree().AddLeaf(Bitcoin(100))
	sub2 := NewTree().AddLeaf(Litecoin(200))

	tree := NewTree().Incorporate(Append([]byte{0xaa, 0xbb}), sub1)
	tree = tree.Incorporate(Prepend([]byte{0x01}), sub2)
	tree = tree.AddLeaf(Pending("https://a.example.com"))

	ts := &Timestamp{
		Version:  CurrentVersion,
		FileHash: mustFileHash(t, primitives.SHA1, digest[:]),
		Tree:     tree,
	}

	buf, err := WriteTimestamp(ts)
	if err != nil {
		t.Fatalf("WriteTimestamp: %v", err)
	}
	got, err := ReadTimestamp(buf)
	if err != nil {
		t.Fatalf("ReadTimestamp: %v", err)
	}
	if got.Tree.LeafCount() != 3 {
		t.Fatalf("leaf count = %d, want 3", got.Tree.LeafCount())
	}

	buf2, err := WriteTimestamp(got)
	if err != nil {
		t.Fatalf("re-serialize: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Errorf("serialization not deterministic across a round-trip")
	}
}

func TestReadTimestampEmptyTreeRejected(t *testing.T) {
	digest := sha1.Sum([]byte("empty"))
	w := primitives.NewWriter()
	w.WriteBytes(timestampMagic)
	w.WriteUint(CurrentVersion)
	w.WriteByte(byte(primitives.SHA1))
	w.WriteBytes(digest[:])
	// No tree bytes follow: an empty tree cannot be written, so a
	// conformant encoder never produces this, but a reader must still
	// reject it explicitly rather than panic.

	_, err := ReadTimestamp(w.Bytes())
	if err == nil {
		t.Fatal("expected error reading a Timestamp with no tree records")
	}
	if !errors.Is(err, ErrEmptyTree) {
		t.Errorf("err = %v, want wrapping ErrEmptyTree", err)
	}
}

func TestReadTimestampGarbageAtEOF(t *testing.T) {
	digest := sha1.Sum([]byte("garbage"))
	ts := &Timestamp{
		Version:  CurrentVersion,
		FileHash: mustFileHash(t, primitives.SHA1, digest[:]),
		Tree:     NewTree().AddLeaf(Bitcoin(1)),
	}
	buf, err := WriteTimestamp(ts)
	if err != nil {
		t.Fatalf("WriteTimestamp: %v", err)
	}
	buf = append(buf, 0x01, 0x02)

	_, err = ReadTimestamp(buf)
	if !errors.Is(err, ErrGarbageAtEOF) {
		t.Errorf("err = %v, want wrapping ErrGarbageAtEOF", err)
	}
}

func TestReadTimestampBadMagic(t *testing.T) {
	buf := make([]byte, len(timestampMagic))
	copy(buf, timestampMagic)
	buf[0] = 0x01

	_, err := ReadTimestamp(buf)
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want wrapping ErrBadMagic", err)
	}
}

func TestReadTimestampUnknownVersion(t *testing.T) {
	w := primitives.NewWriter()
	w.WriteBytes(timestampMagic)
	w.WriteUint(CurrentVersion + 1)

	_, err := ReadTimestamp(w.Bytes())
	if !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("err = %v, want wrapping ErrUnknownVersion", err)
	}
}

func TestReadTimestampUnknownOpTag(t *testing.T) {
	digest := sha1.Sum([]byte("badop"))
	w := primitives.NewWriter()
	w.WriteBytes(timestampMagic)
	w.WriteUint(CurrentVersion)
	w.WriteByte(byte(primitives.SHA1))
	w.WriteBytes(digest[:])
	w.WriteByte(0x42) // not a defined op or leaf tag

	_, err := ReadTimestamp(w.Bytes())
	if !errors.Is(err, ErrUnknownOp) {
		t.Errorf("err = %v, want wrapping ErrUnknownOp", err)
	}
}

func TestReadTimestampUnknownLeafMagicBecomesUnknownLeaf(t *testing.T) {
	digest := sha1.Sum([]byte("unknownleaf"))
	w := primitives.NewWriter()
	w.WriteBytes(timestampMagic)
	w.WriteUint(CurrentVersion)
	w.WriteByte(byte(primitives.SHA1))
	w.WriteBytes(digest[:])
	w.WriteByte(leafRecordTag)
	w.WriteBytes([]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88})
	w.WriteVarBytes([]byte{0xde, 0xad, 0xbe, 0xef})

	ts, err := ReadTimestamp(w.Bytes())
	if err != nil {
		t.Fatalf("ReadTimestamp: %v", err)
	}
	paths := ts.Tree.Paths()
	if len(paths) != 1 || paths[0].Leaf.Kind != LeafUnknown {
		t.Fatalf("expected a single unknown leaf, got %+v", paths)
	}
}

func TestBareTreeRoundtrip(t *testing.T) {
	tree := NewTree().AddLeaf(Bitcoin(500000)).AddLeaf(Litecoin(1200000))
	tree = tree.Incorporate(HashOp(primitives.SHA256), NewTree().AddLeaf(Pending("https://b.example.com")))

	buf, err := WriteBareTree(tree)
	if err != nil {
		t.Fatalf("WriteBareTree: %v", err)
	}
	got, err := ReadBareTree(buf)
	if err != nil {
		t.Fatalf("ReadBareTree: %v", err)
	}
	if got.LeafCount() != 3 {
		t.Fatalf("leaf count = %d, want 3", got.LeafCount())
	}
}

func TestWriteTimestampRejectsEmptyTree(t *testing.T) {
	digest := sha1.Sum([]byte("x"))
	ts := &Timestamp{
		Version:  CurrentVersion,
		FileHash: mustFileHash(t, primitives.SHA1, digest[:]),
		Tree:     NewTree(),
	}
	_, err := WriteTimestamp(ts)
	if !errors.Is(err, ErrEmptyTree) {
		t.Errorf("err = %v, want wrapping ErrEmptyTree", err)
	}
}

func TestWriteTimestampRejectsOversizedUnaryPayload(t *testing.T) {
	digest := sha1.Sum([]byte("oversized"))
	bigPayload := make([]byte, MaxUnaryPayload+1)
	ts := &Timestamp{
		Version:  CurrentVersion,
		FileHash: mustFileHash(t, primitives.SHA1, digest[:]),
		Tree:     NewTree().Incorporate(Append(bigPayload), NewTree().AddLeaf(Bitcoin(1))),
	}
	_, err := WriteTimestamp(ts)
	if err == nil {
		t.Fatal("expected error writing an oversized unary payload")
	}
}
