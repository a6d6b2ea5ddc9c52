// Package datafmt implements the algorithm-independent portions of the
// .khd data body: the length-prefixed sequence of iteration entries and
// the flat per-cell accumulator array, shared verbatim by VEGAS and
// BASIN so each only needs to frame its own dimension-specific header
// fields around these two blocks.
package datafmt

import (
	"io"

	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/codec"
)

// WriteResult writes result's entries as a length-prefixed sequence of
// (value(f), value(f^2), count) triples.
func WriteResult(w io.Writer, result *accum.Combiner) error {
	entries := result.Entries()
	if err := codec.WriteUint64(w, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := codec.WriteFloat64(w, e.MeanF); err != nil {
			return err
		}
		if err := codec.WriteFloat64(w, e.MeanF2); err != nil {
			return err
		}
		if err := codec.WriteInt64(w, e.N); err != nil {
			return err
		}
	}
	return nil
}

// ReadResult reads back the sequence WriteResult wrote.
func ReadResult(r io.Reader) ([]accum.Entry, error) {
	n, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	entries := make([]accum.Entry, n)
	for i := range entries {
		meanF, err := codec.ReadFloat64(r)
		if err != nil {
			return nil, err
		}
		meanF2, err := codec.ReadFloat64(r)
		if err != nil {
			return nil, err
		}
		count, err := codec.ReadInt64(r)
		if err != nil {
			return nil, err
		}
		entries[i] = accum.Entry{MeanF: meanF, MeanF2: meanF2, N: count}
	}
	return entries, nil
}

// WriteCells writes a flat d*k grid-cell accumulator array: a u64 total
// sample count followed by (value_sum, count) per cell, row-major over
// sum[d][k].
func WriteCells(w io.Writer, sum [][]float64, n [][]int64, total int64) error {
	if err := codec.WriteUint64(w, uint64(total)); err != nil {
		return err
	}
	for i := range sum {
		for j := range sum[i] {
			if err := codec.WriteFloat64(w, sum[i][j]); err != nil {
				return err
			}
			if err := codec.WriteInt64(w, n[i][j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadCells reads back the array WriteCells wrote, into freshly allocated
// [d][k] sum/count grids.
func ReadCells(r io.Reader, d, k int) (sum [][]float64, n [][]int64, total int64, err error) {
	totalU, err := codec.ReadUint64(r)
	if err != nil {
		return nil, nil, 0, err
	}
	sum = make([][]float64, d)
	n = make([][]int64, d)
	for i := 0; i < d; i++ {
		sum[i] = make([]float64, k)
		n[i] = make([]int64, k)
		for j := 0; j < k; j++ {
			v, err := codec.ReadFloat64(r)
			if err != nil {
				return nil, nil, 0, err
			}
			c, err := codec.ReadInt64(r)
			if err != nil {
				return nil, nil, 0, err
			}
			sum[i][j] = v
			n[i][j] = c
		}
	}
	return sum, n, int64(totalU), nil
}
