// Package basin implements the blockwise adaptive importance sampler: a
// [d,d,K1,K2] grid whose diagonal strips are 1-D marginals and whose
// off-diagonal strips are conditional distributions P(x_j | x_i in
// coarse bin k), an EMD-driven selector for the per-iteration sampling
// order across dimensions, and the same smoothing/damping/rebinning
// family as VEGAS (internal/gridmath), with BASIN's own w_s-weighted
// smoother in place of VEGAS's classical 1/6/1 tap (see DESIGN.md for
// the rationale).
package basin

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/cwbudde/kakuhen/internal/accum"
	"github.com/cwbudde/kakuhen/internal/codec"
	"github.com/cwbudde/kakuhen/internal/datafmt"
	"github.com/cwbudde/kakuhen/internal/engine"
	"github.com/cwbudde/kakuhen/internal/fingerprint"
	"github.com/cwbudde/kakuhen/internal/gridmath"
	"github.com/cwbudde/kakuhen/internal/kerrors"
	"github.com/cwbudde/kakuhen/internal/rng"
)

// Defaults for the BASIN-specific constants.
const (
	DefaultAlpha = 0.75
	DefaultK1    = 16
	DefaultK2    = 8
	DefaultWs    = 3.0
	DefaultSMin  = 0.05
	DefaultRho   = 2.0

	epsilon = 1e-12
)

// Options configures a new Sampler.
type Options struct {
	Alpha float64 // damping exponent
	K1    int     // coarse bins per dimension
	K2    int     // fine cells per coarse bin
	Ws    float64 // smoothing weight, must be >= 1
	SMin  float64 // minimum cross-score for the conditioning chain
	Rho   float64 // new-dimension penalty
}

// DefaultOptions returns the BASIN default constants.
func DefaultOptions() Options {
	return Options{Alpha: DefaultAlpha, K1: DefaultK1, K2: DefaultK2, Ws: DefaultWs, SMin: DefaultSMin, Rho: DefaultRho}
}

// Sampler is the BASIN grid: d*d edge strips of length K0=K1*K2, a
// running [d,2] sampling order, and per-cell marginal/conditional
// accumulators.
type Sampler struct {
	d, k1, k2, k0  int
	alpha, ws, sMin, rho float64

	// grid[i][i] is the length-K0 marginal strip for dimension i.
	// grid[i][j] (i!=j) is K1 concatenated length-K2 conditional strips,
	// grid[i][j][k*k2 : (k+1)*k2] being the strip for coarse bin k.
	grid [][][]float64

	// accM[i][j0], j0 in [0,K0): marginal per-cell accumulator.
	accM [][]float64
	// accC[i][j][k*k2+k2idx] (i!=j): conditional per-cell accumulator.
	accC [][][]float64

	nTotal int64

	order [][2]int // order[r] = {conditioningDim, sampledDim}
}

// New constructs a Sampler of dimension d with the given options.
func New(d int, opts Options) (*Sampler, error) {
	if d <= 0 {
		return nil, kerrors.ErrInvalidArgument
	}
	if opts.K1 <= 1 || opts.K2 <= 1 {
		return nil, kerrors.ErrInvalidArgument
	}
	if opts.Alpha < 0 {
		return nil, kerrors.ErrInvalidArgument
	}
	if opts.Ws < 1 {
		return nil, kerrors.ErrInvalidArgument
	}
	s := &Sampler{
		d: d, k1: opts.K1, k2: opts.K2, k0: opts.K1 * opts.K2,
		alpha: opts.Alpha, ws: opts.Ws, sMin: opts.SMin, rho: opts.Rho,
	}
	s.allocate()
	s.Reset()
	return s, nil
}

func (s *Sampler) allocate() {
	s.grid = make([][][]float64, s.d)
	s.accM = make([][]float64, s.d)
	s.accC = make([][][]float64, s.d)
	for i := 0; i < s.d; i++ {
		s.grid[i] = make([][]float64, s.d)
		s.accC[i] = make([][]float64, s.d)
		s.accM[i] = make([]float64, s.k0)
		for j := 0; j < s.d; j++ {
			s.grid[i][j] = make([]float64, s.k0)
			if i != j {
				s.accC[i][j] = make([]float64, s.k0)
			}
		}
	}
	s.order = make([][2]int, s.d)
}

// Dim returns d.
func (s *Sampler) Dim() int { return s.d }

// Capabilities reports that BASIN supports adaptation, state save/load,
// and data save/load/append.
func (s *Sampler) Capabilities() engine.Capability {
	return engine.CapAdapt | engine.CapState | engine.CapData
}

// Reset sets diagonal strips to (j+1)/K0, off-diagonal strips to the
// uniform law (k+1)/K2 per coarse bin, the order to fully-marginal
// (i,i), and clears all accumulators.
func (s *Sampler) Reset() {
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.k0; j++ {
			s.grid[i][i][j] = float64(j+1) / float64(s.k0)
		}
		for j := 0; j < s.d; j++ {
			if i == j {
				continue
			}
			for k := 0; k < s.k1; k++ {
				for k2 := 0; k2 < s.k2; k2++ {
					s.grid[i][j][k*s.k2+k2] = float64(k2+1) / float64(s.k2)
				}
			}
		}
		s.order[i] = [2]int{i, i}
	}
	s.ClearData()
}

// ClearData zeros the marginal and conditional accumulators without
// touching the grid or order.
func (s *Sampler) ClearData() {
	for i := 0; i < s.d; i++ {
		for j := range s.accM[i] {
			s.accM[i][j] = 0
		}
		for j := 0; j < s.d; j++ {
			if i == j {
				continue
			}
			for k := range s.accC[i][j] {
				s.accC[i][j][k] = 0
			}
		}
	}
	s.nTotal = 0
}

// HasData reports whether any sample has been accumulated since the last
// ClearData/Reset.
func (s *Sampler) HasData() bool { return s.nTotal > 0 }

// coarseBinRange returns the [lo,hi) span of coarse bin k (a group of K2
// consecutive fine cells) in a marginal edge array.
func (s *Sampler) coarseBinRange(marginal []float64, k int) (lo, hi float64) {
	lo = gridmath.LowerEdge(marginal, k*s.k2)
	hi = marginal[(k+1)*s.k2-1]
	return
}

// RunIter draws neval points by walking the current sampling order,
// evaluates f, and folds f^2*w^2 into every (i,j) marginal and
// conditional cell the sample touches. userData is attached to every
// Point passed to f.
func (s *Sampler) RunIter(f engine.Integrand, neval int, gen *rng.RNG, userData any) (accum.Iteration, error) {
	var it accum.Iteration
	p := &engine.Point{X: make([]float64, s.d), UserData: userData}
	j0 := make([]int, s.d)

	for n := 0; n < neval; n++ {
		weight := 1.0

		for r := 0; r < s.d; r++ {
			a, b := s.order[r][0], s.order[r][1]
			u := gen.Float64()

			if a == b {
				marginal := s.grid[a][a]
				uk := u * float64(s.k0)
				j := int(uk)
				if j >= s.k0 {
					j = s.k0 - 1
				}
				frac := uk - float64(j)
				lo := gridmath.LowerEdge(marginal, j)
				hi := marginal[j]
				p.X[a] = lo + frac*(hi-lo)
				weight *= float64(s.k0) * (hi - lo)
				j0[a] = j
				continue
			}

			// Conditional draw of b given a's coarse bin.
			k := j0[a] / s.k2
			strip := s.grid[a][b][k*s.k2 : (k+1)*s.k2]
			uk := u * float64(s.k2)
			j2 := int(uk)
			if j2 >= s.k2 {
				j2 = s.k2 - 1
			}
			frac := uk - float64(j2)
			lo := gridmath.LowerEdge(strip, j2)
			hi := strip[j2]
			p.X[b] = lo + frac*(hi-lo)
			weight *= float64(s.k2) * (hi - lo)

			// Back-fill b's own marginal coarse index so later rows can
			// condition on b.
			marginalB := s.grid[b][b]
			j0[b] = sort.Search(s.k0, func(idx int) bool { return marginalB[idx] >= p.X[b] })
			if j0[b] >= s.k0 {
				j0[b] = s.k0 - 1
			}
		}

		p.Weight = weight
		p.Index = int64(n)

		fw := f(p) * weight
		it.Accumulate(fw)
		acc := fw * fw

		for i := 0; i < s.d; i++ {
			s.accM[i][j0[i]] += acc
			k := j0[i] / s.k2
			for j := 0; j < s.d; j++ {
				if j == i {
					continue
				}
				strip := s.grid[i][j][k*s.k2 : (k+1)*s.k2]
				k2 := sort.Search(s.k2, func(idx int) bool { return strip[idx] >= p.X[j] })
				if k2 >= s.k2 {
					k2 = s.k2 - 1
				}
				s.accC[i][j][k*s.k2+k2] += acc
			}
		}
		s.nTotal++
	}
	return it, nil
}

// Adapt refines every dimension's marginal and conditional strips, then
// re-selects the sampling order, and clears the per-cell accumulators.
func (s *Sampler) Adapt() error {
	if s.nTotal == 0 {
		return nil
	}
	nTotalF := float64(s.nTotal)

	for a := 0; a < s.d; a++ {
		oldMarginal := append([]float64(nil), s.grid[a][a]...)

		dRaw := make([]float64, s.k0)
		for j := 0; j < s.k0; j++ {
			v := s.accM[a][j] / (nTotalF * nTotalF)
			if v < epsilon {
				v = epsilon
			}
			dRaw[j] = v
		}
		smoothed := gridmath.SmoothWeighted(dRaw, s.ws)
		damped := gridmath.Damp(smoothed, s.alpha)

		newMarginal, skipped := gridmath.EqualMassRebin(oldMarginal, damped)
		if skipped {
			slog.Debug("basin marginal adapt skipped: mean importance density below DBL_MIN", "dim", a)
			continue
		}

		weights := s.overlapWeights(oldMarginal, newMarginal)
		s.grid[a][a] = newMarginal

		for b := 0; b < s.d; b++ {
			if b == a {
				continue
			}
			s.adaptConditional(a, b, weights, nTotalF)
		}
	}

	s.order = s.selectOrder()
	s.ClearData()
	return nil
}

// overlapWeights computes W[k',k], the fraction of old coarse bin k's
// mass landing in new coarse bin k'.
func (s *Sampler) overlapWeights(oldMarginal, newMarginal []float64) [][]float64 {
	w := make([][]float64, s.k1)
	for kp := range w {
		w[kp] = make([]float64, s.k1)
	}
	for k := 0; k < s.k1; k++ {
		oldLo, oldHi := s.coarseBinRange(oldMarginal, k)
		oldLen := oldHi - oldLo
		if oldLen <= 0 {
			continue
		}
		for kp := 0; kp < s.k1; kp++ {
			newLo, newHi := s.coarseBinRange(newMarginal, kp)
			ov := gridmath.OverlapLen(oldLo, oldHi, newLo, newHi)
			if ov > 0 {
				w[kp][k] = ov / oldLen
			}
		}
	}
	return w
}

// adaptConditional refines g[a,b,*,*]: smooths and damps each old
// coarse bin's strip density, builds a merged super-grid per new coarse
// bin from the old strips that overlap it, transfers weight onto the
// super-grid, and rebins down to K2 edges.
func (s *Sampler) adaptConditional(a, b int, weights [][]float64, nTotalF float64) {
	oldCond := append([]float64(nil), s.grid[a][b]...)
	acc := s.accC[a][b]

	d12 := make([][]float64, s.k1)
	for k := 0; k < s.k1; k++ {
		raw := make([]float64, s.k2)
		for k2 := 0; k2 < s.k2; k2++ {
			raw[k2] = acc[k*s.k2+k2] / (nTotalF * nTotalF)
		}
		smoothedRow := gridmath.SmoothWeighted(raw, s.ws)
		for k2, v := range smoothedRow {
			if v < epsilon {
				v = epsilon
			}
			smoothedRow[k2] = v
		}
		d12[k] = gridmath.Damp(smoothedRow, s.alpha)
	}

	newCond := make([]float64, s.k0)
	type segment struct {
		k, k2idx int
		lo, hi   float64
	}

	for kp := 0; kp < s.k1; kp++ {
		var segs []segment
		breakSet := map[float64]struct{}{}
		for k := 0; k < s.k1; k++ {
			if weights[kp][k] <= 0 {
				continue
			}
			strip := oldCond[k*s.k2 : (k+1)*s.k2]
			for k2idx := 0; k2idx < s.k2; k2idx++ {
				lo := gridmath.LowerEdge(strip, k2idx)
				hi := strip[k2idx]
				segs = append(segs, segment{k, k2idx, lo, hi})
				breakSet[hi] = struct{}{}
			}
		}

		bp := make([]float64, 0, len(breakSet)+1)
		bp = append(bp, 0)
		for v := range breakSet {
			bp = append(bp, v)
		}
		sort.Float64s(bp)
		bp = dedupeSorted(bp)

		dMerged := make([]float64, maxInt(len(bp)-1, 0))
		for _, sg := range segs {
			lenCell := sg.hi - sg.lo
			if lenCell <= 0 {
				continue
			}
			w := weights[kp][sg.k] * d12[sg.k][sg.k2idx]
			for m := 0; m < len(dMerged); m++ {
				ov := gridmath.OverlapLen(sg.lo, sg.hi, bp[m], bp[m+1])
				if ov <= 0 {
					continue
				}
				dMerged[m] += (ov / lenCell) * w
			}
		}

		var superEdges []float64
		if len(bp) > 1 {
			superEdges = bp[1:]
		}
		newStrip, skipped := gridmath.EqualMassRebinTo(superEdges, dMerged, s.k2)
		if skipped {
			slog.Debug("basin conditional adapt skipped: mean importance density below DBL_MIN", "dim_a", a, "dim_b", b, "bin", kp)
		}
		copy(newCond[kp*s.k2:(kp+1)*s.k2], newStrip)
	}

	s.grid[a][b] = newCond
}

func dedupeSorted(xs []float64) []float64 {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// selectOrder computes the EMD cross-score matrix and greedily builds a
// new [d,2] sampling order.
func (s *Sampler) selectOrder() [][2]int {
	d := s.d
	score := make([][]float64, d)
	for i := range score {
		score[i] = make([]float64, d)
	}
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			if i == j {
				score[i][j] = 1
				continue
			}
			marginalJ := s.grid[j][j]
			var sum float64
			for k := 0; k < s.k1; k++ {
				strip := s.grid[i][j][k*s.k2 : (k+1)*s.k2]
				sum += gridmath.EMD(marginalJ, strip)
			}
			score[i][j] = sum / float64(s.k1)
		}
	}

	order := make([][2]int, 0, d)
	used := make([]bool, d)

	markUsed := func(chosen int) {
		used[chosen] = true
		for i := 0; i < d; i++ {
			score[i][chosen] = -1
		}
		score[chosen][chosen] = -1
	}

	for len(order) < d {
		bestNewI, bestNewScore, haveNew := -1, 0.0, false
		for i := 0; i < d; i++ {
			if score[i][i] < 0 {
				continue
			}
			c := 0
			var sum float64
			for j := 0; j < d; j++ {
				if j == i {
					continue
				}
				if score[i][j] > 0 {
					c++
					sum += score[i][j]
				}
			}
			if c == 0 {
				continue
			}
			avg := sum / (s.rho * float64(c))
			if !haveNew || avg > bestNewScore {
				bestNewI, bestNewScore, haveNew = i, avg, true
			}
		}

		bestCondL, bestCondJ, bestCondScore, haveCond := -1, -1, 0.0, false
		for _, row := range order {
			l := row[1]
			for j := 0; j < d; j++ {
				if used[j] || j == l {
					continue
				}
				if score[l][j] >= s.sMin && (!haveCond || score[l][j] > bestCondScore) {
					bestCondL, bestCondJ, bestCondScore, haveCond = l, j, score[l][j], true
				}
			}
		}

		switch {
		case haveCond && (!haveNew || bestCondScore > bestNewScore):
			order = append(order, [2]int{bestCondL, bestCondJ})
			markUsed(bestCondJ)
		case haveNew:
			order = append(order, [2]int{bestNewI, bestNewI})
			markUsed(bestNewI)
		default:
			// No candidate scored positively (every remaining dimension
			// is isolated from the rest under the current grid); fall
			// back to picking any unused dimension as a fresh marginal.
			for i := 0; i < d; i++ {
				if !used[i] {
					order = append(order, [2]int{i, i})
					markUsed(i)
					break
				}
			}
		}
	}
	return order
}

// Fingerprint hashes (d, K1, K2, raw edge bytes) with FNV-1a.
func (s *Sampler) Fingerprint() uint64 {
	edges := make([]float64, 0, s.d*s.d*s.k0)
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			edges = append(edges, s.grid[i][j]...)
		}
	}
	return fingerprint.Of(s.d, []int{s.k1, s.k2}, edges)
}

// Prefix returns "basin_<d>d", or with withHash, "basin_<d>d_<hex fingerprint>".
func (s *Sampler) Prefix(withHash bool) string {
	p := fmt.Sprintf("basin_%dd", s.d)
	if withHash {
		p += fmt.Sprintf("_%x", s.Fingerprint())
	}
	return p
}

// WriteState writes the BASIN state body: size d, size K1, size K2,
// d*d*K1*K2 grid values, and the d*2 sampling order.
func (s *Sampler) WriteState(w io.Writer) error {
	h := codec.DefaultHeader(codec.AlgBasin, codec.KindState)
	if err := codec.WriteHeader(w, h); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.d)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k1)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k2)); err != nil {
		return err
	}
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			if err := codec.WriteFloat64SliceRaw(w, s.grid[i][j]); err != nil {
				return err
			}
		}
	}
	orderFlat := make([]int64, 0, 2*s.d)
	for _, row := range s.order {
		orderFlat = append(orderFlat, int64(row[0]), int64(row[1]))
	}
	return codec.WriteInt64SliceRaw(w, orderFlat)
}

// ReadState reads a BASIN state body, re-deriving d, K1, K2 from the
// file.
func (s *Sampler) ReadState(r io.Reader) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgBasin, codec.KindState); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k1v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k2v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}

	s.d, s.k1, s.k2 = int(d64), int(k1v), int(k2v)
	s.k0 = s.k1 * s.k2
	s.allocate()

	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			vals, err := codec.ReadFloat64SliceRaw(r, s.k0)
			if err != nil {
				return err
			}
			s.grid[i][j] = vals
		}
	}

	orderFlat, err := codec.ReadInt64SliceRaw(r, 2*s.d)
	if err != nil {
		return err
	}
	for i := 0; i < s.d; i++ {
		s.order[i] = [2]int{int(orderFlat[2*i]), int(orderFlat[2*i+1])}
	}
	return nil
}

// WriteData writes the BASIN data body: header, size d, size K1, size
// K2, u64 fingerprint, the combined result's entries, total cell count,
// and the flattened marginal+conditional accumulators.
func (s *Sampler) WriteData(w io.Writer, result *accum.Combiner) error {
	h := codec.DefaultHeader(codec.AlgBasin, codec.KindData)
	if err := codec.WriteHeader(w, h); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.d)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k1)); err != nil {
		return err
	}
	if err := codec.WriteInt64(w, int64(s.k2)); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, s.Fingerprint()); err != nil {
		return err
	}
	if err := datafmt.WriteResult(w, result); err != nil {
		return err
	}
	sum, n := s.flattenCells()
	return datafmt.WriteCells(w, sum, n, s.nTotal)
}

// flattenCells lays the d marginal rows and d*(d-1) conditional rows out
// as a single [d*d][K0] grid, diagonal entries holding accM and
// off-diagonal entries holding accC, for datafmt's generic cell codec.
func (s *Sampler) flattenCells() (sum [][]float64, n [][]int64) {
	sum = make([][]float64, s.d*s.d)
	n = make([][]int64, s.d*s.d)
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			row := i*s.d + j
			if i == j {
				sum[row] = s.accM[i]
			} else {
				sum[row] = s.accC[i][j]
			}
			counts := make([]int64, s.k0)
			n[row] = counts
		}
	}
	return sum, n
}

func (s *Sampler) unflattenCells(sum [][]float64) {
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			row := i*s.d + j
			if i == j {
				s.accM[i] = sum[row]
			} else {
				s.accC[i][j] = sum[row]
			}
		}
	}
}

// LoadData replaces the current per-cell accumulators and result from r.
func (s *Sampler) LoadData(r io.Reader, result *accum.Combiner) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgBasin, codec.KindData); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k1v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k2v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	if int(d64) != s.d || int(k1v) != s.k1 || int(k2v) != s.k2 {
		return kerrors.ErrHeaderMismatch
	}
	if _, err := codec.ReadUint64(r); err != nil { // fingerprint, unchecked on plain load
		return err
	}

	entries, err := datafmt.ReadResult(r)
	if err != nil {
		return err
	}
	for _, e := range entries {
		result.PushEntry(e)
	}

	sum, _, total, err := datafmt.ReadCells(r, s.d*s.d, s.k0)
	if err != nil {
		return err
	}
	s.unflattenCells(sum)
	s.nTotal = total
	return nil
}

// AppendData reads a fingerprint-guarded data stream and additively
// merges it into the current accumulators and result.
func (s *Sampler) AppendData(r io.Reader, result *accum.Combiner) error {
	h, err := codec.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Expect(codec.AlgBasin, codec.KindData); err != nil {
		return err
	}
	d64, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k1v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	k2v, err := codec.ReadInt64(r)
	if err != nil {
		return err
	}
	if int(d64) != s.d || int(k1v) != s.k1 || int(k2v) != s.k2 {
		return kerrors.ErrHeaderMismatch
	}
	fp, err := codec.ReadUint64(r)
	if err != nil {
		return err
	}
	if fp != s.Fingerprint() {
		return kerrors.ErrIncompatibleFingerprint
	}

	entries, err := datafmt.ReadResult(r)
	if err != nil {
		return err
	}
	for _, e := range entries {
		result.PushEntry(e)
	}

	sum, n, total, err := datafmt.ReadCells(r, s.d*s.d, s.k0)
	if err != nil {
		return err
	}
	for i := 0; i < s.d; i++ {
		for j := 0; j < s.d; j++ {
			row := i*s.d + j
			var dst []float64
			if i == j {
				dst = s.accM[i]
			} else {
				dst = s.accC[i][j]
			}
			for k := 0; k < s.k0; k++ {
				dst[k] += sum[row][k]
			}
			_ = n[row]
		}
	}
	s.nTotal += total
	return nil
}
