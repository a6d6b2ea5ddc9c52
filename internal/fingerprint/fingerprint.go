// Package fingerprint computes the stable 64-bit identifier (C5) used to
// detect incompatible grid layouts before merging two samplers' data.
package fingerprint

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Of hashes a grid's shape parameters and raw edge bytes with FNV-1a,
// giving a 64-bit value that is stable across processes for identical
// (d, sizes, edges).
//
// sizes holds the shape parameters in the order the caller wants them
// bound into the fingerprint (e.g. [K] for VEGAS, [K1, K2] for BASIN);
// edges holds the grid's flat edge array.
func Of(d int, sizes []int, edges []float64) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(d)))
	h.Write(buf[:])

	for _, s := range sizes {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(s)))
		h.Write(buf[:])
	}

	for _, e := range edges {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e))
		h.Write(buf[:])
	}

	return h.Sum64()
}
