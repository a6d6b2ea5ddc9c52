package codec

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := DefaultHeader(AlgVegas, KindState)
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("ReadHeader() = %+v, want %+v", got, h)
	}
	if err := got.Expect(AlgVegas, KindState); err != nil {
		t.Errorf("Expect() = %v, want nil", err)
	}
}

func TestHeaderExpectMismatch(t *testing.T) {
	var buf bytes.Buffer
	h := DefaultHeader(AlgVegas, KindState)
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.Expect(AlgBasin, KindState); err == nil {
		t.Error("Expect() with wrong algorithm should fail")
	}
	if err := got.Expect(AlgVegas, KindData); err == nil {
		t.Error("Expect() with wrong kind should fail")
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("NOTKAKUH\x01\x00\x01\x00\x02\x00\x02\x00")
	if _, err := ReadHeader(buf); err == nil {
		t.Error("ReadHeader() with bad magic should fail")
	}
}

func TestFloat64SliceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vals := []float64{0.1, 0.2, 0.3, 1.0}
	if err := WriteFloat64Slice(&buf, vals); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFloat64Slice(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(vals) {
		t.Fatalf("len = %d, want %d", len(got), len(vals))
	}
	for i := range vals {
		if got[i] != vals[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], vals[i])
		}
	}
}

func TestFloat64SliceRawRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vals := []float64{1, 2, 3}
	if err := WriteFloat64SliceRaw(&buf, vals); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFloat64SliceRaw(&buf, len(vals))
	if err != nil {
		t.Fatal(err)
	}
	for i := range vals {
		if got[i] != vals[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], vals[i])
		}
	}
}

func TestInt64SliceRawRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	vals := []int64{4, 5, 9, 9}
	if err := WriteInt64SliceRaw(&buf, vals); err != nil {
		t.Fatal(err)
	}
	got, err := ReadInt64SliceRaw(&buf, len(vals))
	if err != nil {
		t.Fatal(err)
	}
	for i := range vals {
		if got[i] != vals[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], vals[i])
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUint64(&buf, 42); err != nil {
		t.Fatal(err)
	}
	if err := WriteInt64(&buf, -7); err != nil {
		t.Fatal(err)
	}
	if err := WriteFloat64(&buf, 3.5); err != nil {
		t.Fatal(err)
	}
	u, err := ReadUint64(&buf)
	if err != nil || u != 42 {
		t.Errorf("ReadUint64() = %v, %v, want 42", u, err)
	}
	i, err := ReadInt64(&buf)
	if err != nil || i != -7 {
		t.Errorf("ReadInt64() = %v, %v, want -7", i, err)
	}
	f, err := ReadFloat64(&buf)
	if err != nil || f != 3.5 {
		t.Errorf("ReadFloat64() = %v, %v, want 3.5", f, err)
	}
}
