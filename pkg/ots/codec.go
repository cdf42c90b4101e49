// Copyright 2025 Certen Protocol
//
// Binary codec for Timestamp and the bare-tree encoding calendars
// exchange (spec.md §4.1, §6). The format is length-implicit and
// depth-first: siblings at a level are separated by a 0xFF marker that
// precedes every record but the last, so a reader never needs to know
// a record count up front.

package ots

import (
	"bytes"
	"fmt"

	"github.com/certen/ots-engine/pkg/primitives"
)

// timestampMagic is the fixed 31-byte Timestamp header (spec.md §4.1).
var timestampMagic = []byte{
	0x00,
	'O', 'p', 'e', 'n', 'T', 'i', 'm', 'e', 's', 't', 'a', 'm', 'p', 's',
	0x00, 0x00,
	'P', 'r', 'o', 'o', 'f',
	0x00,
	0xbf, 0x89, 0xe2, 0xe8, 0x84, 0xe8, 0x92, 0x94,
}

const siblingMarker = 0xff
const leafRecordTag = 0x00

// WriteTimestamp serializes ts: magic, version, FileHash, then Tree,
// per spec.md §4.1.
func WriteTimestamp(ts *Timestamp) ([]byte, error) {
	w := primitives.NewWriter()
	w.WriteBytes(timestampMagic)
	w.WriteUint(ts.Version)
	w.WriteByte(byte(ts.FileHash.Algorithm))
	w.WriteBytes(ts.FileHash.Value)
	if err := writeTree(w, ts.Tree); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ReadTimestamp parses the output of WriteTimestamp. Trailing bytes
// after the Tree fail with a "Garbage at EOF" CodecError.
func ReadTimestamp(data []byte) (*Timestamp, error) {
	r := primitives.NewReader(data)

	magic, err := r.ReadBytes(len(timestampMagic))
	if err != nil {
		return nil, codecErr(0, "read magic header", err)
	}
	if !bytes.Equal(magic, timestampMagic) {
		return nil, codecErr(0, "magic header mismatch", ErrBadMagic)
	}

	versionOffset := r.Offset()
	version, err := r.ReadUint()
	if err != nil {
		return nil, codecErr(versionOffset, "read version", err)
	}
	if version != CurrentVersion {
		return nil, codecErr(versionOffset, "version", fmt.Errorf("%w: %d", ErrUnknownVersion, version))
	}

	algOffset := r.Offset()
	algByte, err := r.ReadByte()
	if err != nil {
		return nil, codecErr(algOffset, "read fileHash algorithm", err)
	}
	alg := primitives.Algorithm(algByte)
	digestLen, ok := alg.DigestLen()
	if !ok {
		return nil, codecErr(algOffset, "fileHash algorithm", fmt.Errorf("%w: 0x%02x", primitives.ErrUnknownAlgorithm, algByte))
	}
	value, err := r.ReadBytes(digestLen)
	if err != nil {
		return nil, codecErr(algOffset, "read fileHash value", err)
	}

	tree, err := readTree(r)
	if err != nil {
		return nil, err
	}

	if !r.AtEOF() {
		return nil, codecErr(r.Offset(), "trailing bytes after tree", ErrGarbageAtEOF)
	}

	return &Timestamp{Version: version, FileHash: FileHash{Algorithm: alg, Value: value}, Tree: tree}, nil
}

// WriteBareTree serializes t alone: no magic, version, or FileHash
// (spec.md §6), the form a calendar's /digest and /timestamp/{msg}
// responses use.
func WriteBareTree(t *Tree) ([]byte, error) {
	w := primitives.NewWriter()
	if err := writeTree(w, t); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ReadBareTree parses a bare-tree response. Unlike ReadTimestamp,
// there is no trailing-bytes check: the grammar's own sibling markers
// determine where the tree ends (spec.md §6).
func ReadBareTree(data []byte) (*Tree, error) {
	return readTree(primitives.NewReader(data))
}

// writeTree serializes t's records (leaves, then edges, each in a
// stable order) with sibling markers between them. An empty Tree
// cannot be written at any level (spec.md §4.1).
func writeTree(w *primitives.Writer, t *Tree) error {
	if t.Empty() {
		return ErrEmptyTree
	}

	type record struct {
		write func(*primitives.Writer) error
	}
	var records []record

	for _, l := range t.leaves {
		leaf := l
		records = append(records, record{write: func(w *primitives.Writer) error {
			return writeLeaf(w, leaf)
		}})
	}
	for _, e := range t.edges {
		e := e
		records = append(records, record{write: func(w *primitives.Writer) error {
			return writeEdge(w, e.op, e.sub)
		}})
	}

	last := len(records) - 1
	for i, rec := range records {
		if i != last {
			w.WriteByte(siblingMarker)
		}
		if err := rec.write(w); err != nil {
			return err
		}
	}
	return nil
}

func writeLeaf(w *primitives.Writer, leaf Leaf) error {
	w.WriteByte(leafRecordTag)
	magic, ok := magicForKind(leaf.Kind)
	if !ok {
		magic = leaf.UnknownTag
	}
	w.WriteBytes(magic[:])
	switch leaf.Kind {
	case LeafPending:
		w.WriteVarBytes([]byte(leaf.URL))
	case LeafBitcoin, LeafLitecoin, LeafEthereum:
		w.WriteUint(leaf.Height)
	case LeafUnknown:
		w.WriteVarBytes(leaf.UnknownPayload)
	default:
		return fmt.Errorf("write leaf: %w: kind %d", ErrUnknownMagic, leaf.Kind)
	}
	return nil
}

func writeEdge(w *primitives.Writer, op Op, sub *Tree) error {
	if !op.Tag.Known() {
		return fmt.Errorf("write edge: %w: 0x%02x", ErrUnknownOp, byte(op.Tag))
	}
	w.WriteByte(byte(op.Tag))
	if op.Tag.Unary() {
		if len(op.Payload) < 1 || len(op.Payload) > MaxUnaryPayload {
			return fmt.Errorf("write edge: payload length %d outside [1, %d]", len(op.Payload), MaxUnaryPayload)
		}
		w.WriteVarBytes(op.Payload)
	}
	return writeTree(w, sub)
}

// readTree parses one tree level: a run of records separated by 0xFF
// markers, the marker preceding every record but the last.
func readTree(r *primitives.Reader) (*Tree, error) {
	t := NewTree()
	first := true
	for {
		tag, err := r.PeekByte()
		if err != nil {
			if first {
				return nil, codecErr(r.Offset(), "tree has no records", ErrEmptyTree)
			}
			return nil, codecErr(r.Offset(), "read tree record tag", err)
		}

		more := false
		if tag == siblingMarker {
			if _, err := r.ReadByte(); err != nil {
				return nil, codecErr(r.Offset(), "consume sibling marker", err)
			}
			more = true
		}

		leaf, op, sub, isLeaf, err := readRecord(r)
		if err != nil {
			return nil, err
		}
		if isLeaf {
			t = t.AddLeaf(leaf)
		} else {
			t = t.Incorporate(op, sub)
		}

		first = false
		if !more {
			return t, nil
		}
	}
}

func readRecord(r *primitives.Reader) (leaf Leaf, op Op, sub *Tree, isLeaf bool, err error) {
	tagOffset := r.Offset()
	tagByte, err := r.ReadByte()
	if err != nil {
		return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read record tag", err)
	}

	if tagByte == leafRecordTag {
		magicBytes, err := r.ReadBytes(8)
		if err != nil {
			return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read leaf magic", err)
		}
		var magic [8]byte
		copy(magic[:], magicBytes)

		kind, known := kindForMagic(magic)
		if !known {
			payload, err := r.ReadVarBytes()
			if err != nil {
				return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read unknown leaf payload", err)
			}
			return Leaf{Kind: LeafUnknown, UnknownTag: magic, UnknownPayload: payload}, Op{}, nil, true, nil
		}

		switch kind {
		case LeafPending:
			urlBytes, err := r.ReadVarBytes()
			if err != nil {
				return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read pending url", err)
			}
			return Pending(string(urlBytes)), Op{}, nil, true, nil
		case LeafBitcoin, LeafLitecoin, LeafEthereum:
			height, err := r.ReadUint()
			if err != nil {
				return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read attestation height", err)
			}
			return Leaf{Kind: kind, Height: height}, Op{}, nil, true, nil
		default:
			return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "leaf kind", fmt.Errorf("%w: unhandled kind %d", ErrUnknownMagic, kind))
		}
	}

	opTag := OpTag(tagByte)
	if !opTag.Known() {
		return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "edge tag", fmt.Errorf("%w: 0x%02x", ErrUnknownOp, tagByte))
	}

	var payload []byte
	if opTag.Unary() {
		payload, err = r.ReadVarBytes()
		if err != nil {
			return Leaf{}, Op{}, nil, false, codecErr(tagOffset, "read unary op payload", err)
		}
	}

	subTree, err := readTree(r)
	if err != nil {
		return Leaf{}, Op{}, nil, false, err
	}
	return Leaf{}, Op{Tag: opTag, Payload: payload}, subTree, false, nil
}
