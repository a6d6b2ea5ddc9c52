// Package codec implements the typed-header, POD-stream binary framing
// shared by the state (.khs) and data (.khd) file formats. The format
// is little-endian and intentionally non-portable across endianness;
// every object is tagged so a mismatch is detected on load rather than
// silently misread.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cwbudde/kakuhen/internal/kerrors"
)

// Magic is the fixed 8-byte file signature every .khs/.khd file starts
// with.
const Magic = "KAKUHEN\x00"

// AlgID tags which sampler algorithm a file belongs to.
type AlgID uint8

const (
	AlgVegas AlgID = 1
	AlgBasin AlgID = 2
)

// Kind tags whether a file holds sampler state or accumulated data.
type Kind uint8

const (
	KindState Kind = 0
	KindData  Kind = 1
)

// Type-or-size tags for the (value, size, count) numeric bundle.
// Positive values identify a recognized kind; this module always uses
// float64 values and int64 sizes/counts, so these are the only tags ever
// written. A negative tag (-sizeof(T)) is reserved for an unrecognized
// type and is rejected on load rather than silently accepted.
const (
	TagFloat64 int16 = 1
	TagInt64   int16 = 2
)

// Header is the fixed 8+1+1+2+2+2 = 16 byte preamble of every .khs/.khd
// file.
type Header struct {
	Alg      AlgID
	Kind     Kind
	ValTag   int16
	SizeTag  int16
	CountTag int16
}

// DefaultHeader returns the header this module always writes: float64
// values, int64 sizes and counts.
func DefaultHeader(alg AlgID, kind Kind) Header {
	return Header{Alg: alg, Kind: kind, ValTag: TagFloat64, SizeTag: TagInt64, CountTag: TagInt64}
}

// WriteHeader writes the magic, algorithm id, kind, and the three type
// tags.
func WriteHeader(w io.Writer, h Header) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := WriteUint8(w, uint8(h.Alg)); err != nil {
		return err
	}
	if err := WriteUint8(w, uint8(h.Kind)); err != nil {
		return err
	}
	if err := WriteInt16(w, h.ValTag); err != nil {
		return err
	}
	if err := WriteInt16(w, h.SizeTag); err != nil {
		return err
	}
	return WriteInt16(w, h.CountTag)
}

// ReadHeader parses a header and verifies the magic bytes. It does not
// by itself validate alg/kind/tags against an expectation: callers
// compare the returned Header against what they expect and return
// kerrors.ErrHeaderMismatch on any mismatch, since only the caller knows
// what algorithm/kind it is trying to load.
func ReadHeader(r io.Reader) (Header, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, err
	}
	if string(magic[:]) != Magic {
		return Header{}, kerrors.ErrHeaderMismatch
	}

	alg, err := ReadUint8(r)
	if err != nil {
		return Header{}, err
	}
	kind, err := ReadUint8(r)
	if err != nil {
		return Header{}, err
	}
	valTag, err := ReadInt16(r)
	if err != nil {
		return Header{}, err
	}
	sizeTag, err := ReadInt16(r)
	if err != nil {
		return Header{}, err
	}
	countTag, err := ReadInt16(r)
	if err != nil {
		return Header{}, err
	}

	return Header{
		Alg:      AlgID(alg),
		Kind:     Kind(kind),
		ValTag:   valTag,
		SizeTag:  sizeTag,
		CountTag: countTag,
	}, nil
}

// Expect validates a header against an expected algorithm/kind, returning
// kerrors.ErrHeaderMismatch on any mismatch (alg, kind, or type tags).
func (h Header) Expect(alg AlgID, kind Kind) error {
	want := DefaultHeader(alg, kind)
	if h.Alg != want.Alg || h.Kind != want.Kind ||
		h.ValTag != want.ValTag || h.SizeTag != want.SizeTag || h.CountTag != want.CountTag {
		return kerrors.ErrHeaderMismatch
	}
	return nil
}

// --- fixed-width primitives ---

func WriteUint8(w io.Writer, v uint8) error  { return writeFixed(w, v) }
func WriteInt16(w io.Writer, v int16) error  { return writeFixed(w, v) }
func WriteUint64(w io.Writer, v uint64) error { return writeFixed(w, v) }
func WriteInt64(w io.Writer, v int64) error  { return writeFixed(w, v) }
func WriteFloat64(w io.Writer, v float64) error { return writeFixed(w, v) }

func ReadUint8(r io.Reader) (uint8, error) {
	var v uint8
	err := readFixed(r, &v)
	return v, err
}

func ReadInt16(r io.Reader) (int16, error) {
	var v int16
	err := readFixed(r, &v)
	return v, err
}

func ReadUint64(r io.Reader) (uint64, error) {
	var v uint64
	err := readFixed(r, &v)
	return v, err
}

func ReadInt64(r io.Reader) (int64, error) {
	var v int64
	err := readFixed(r, &v)
	return v, err
}

func ReadFloat64(r io.Reader) (float64, error) {
	var v float64
	err := readFixed(r, &v)
	return v, err
}

func writeFixed(w io.Writer, v any) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readFixed(r io.Reader, v any) error {
	return binary.Read(r, binary.LittleEndian, v)
}

// --- sized POD arrays: u64 count prefix followed by the raw elements ---

// WriteFloat64Slice writes a u64 length prefix followed by the elements,
// a direct memcpy-equivalent for this trivially-copyable element type.
func WriteFloat64Slice(w io.Writer, vals []float64) error {
	if err := WriteUint64(w, uint64(len(vals))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vals)
}

// ReadFloat64Slice reads a u64 length prefix and re-allocates before
// reading the body.
func ReadFloat64Slice(r io.Reader) ([]float64, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	if n == 0 {
		return vals, nil
	}
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// WriteFloat64SliceRaw writes exactly len(vals) elements with no length
// prefix, for bodies whose length is already known from the header
// (e.g. a d*K grid whose shape was just written).
func WriteFloat64SliceRaw(w io.Writer, vals []float64) error {
	return binary.Write(w, binary.LittleEndian, vals)
}

// ReadFloat64SliceRaw reads exactly n elements with no length prefix.
func ReadFloat64SliceRaw(r io.Reader, n int) ([]float64, error) {
	vals := make([]float64, n)
	if n == 0 {
		return vals, nil
	}
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// WriteInt64SliceRaw writes exactly len(vals) elements with no length
// prefix.
func WriteInt64SliceRaw(w io.Writer, vals []int64) error {
	return binary.Write(w, binary.LittleEndian, vals)
}

// ReadInt64SliceRaw reads exactly n elements with no length prefix.
func ReadInt64SliceRaw(r io.Reader, n int) ([]int64, error) {
	vals := make([]int64, n)
	if n == 0 {
		return vals, nil
	}
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// Encode runs fn against an in-memory buffer and returns its bytes, a
// convenience used by callers that need the full encoded form (e.g. to
// hash it) before writing to a file.
func Encode(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
