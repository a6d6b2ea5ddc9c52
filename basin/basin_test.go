package basin

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/kakuhen/internal/engine"
	"github.com/cwbudde/kakuhen/internal/kerrors"
	"github.com/cwbudde/kakuhen/internal/rng"
	"github.com/cwbudde/kakuhen/vegas"
	"github.com/stretchr/testify/require"
)

func assertStripInvariant(t *testing.T, s *Sampler) {
	t.Helper()
	for i := 0; i < s.d; i++ {
		checkStrip(t, s.grid[i][i], "marginal", i, i)
		for j := 0; j < s.d; j++ {
			if i == j {
				continue
			}
			for k := 0; k < s.k1; k++ {
				strip := s.grid[i][j][k*s.k2 : (k+1)*s.k2]
				checkStrip(t, strip, "conditional", i, j)
			}
		}
	}
}

func checkStrip(t *testing.T, edges []float64, kind string, i, j int) {
	t.Helper()
	prev := 0.0
	for _, v := range edges {
		if v <= prev {
			t.Errorf("%s strip (%d,%d) not strictly increasing: %v <= %v", kind, i, j, v, prev)
		}
		prev = v
	}
	if edges[len(edges)-1] != 1 {
		t.Errorf("%s strip (%d,%d) last edge = %v, want 1", kind, i, j, edges[len(edges)-1])
	}
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	cases := []struct {
		name string
		d    int
		opts Options
	}{
		{"zero dim", 0, DefaultOptions()},
		{"K1<=1", 2, Options{Alpha: 0.75, K1: 1, K2: 4, Ws: 3, SMin: 0.05, Rho: 2}},
		{"K2<=1", 2, Options{Alpha: 0.75, K1: 4, K2: 1, Ws: 3, SMin: 0.05, Rho: 2}},
		{"negative alpha", 2, Options{Alpha: -1, K1: 4, K2: 4, Ws: 3, SMin: 0.05, Rho: 2}},
		{"ws below one", 2, Options{Alpha: 0.75, K1: 4, K2: 4, Ws: 0.5, SMin: 0.05, Rho: 2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.d, c.opts); !errors.Is(err, kerrors.ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

// Invariant 2: every BASIN marginal and conditional strip satisfies the
// grid invariant after init, reset, and adapt.
func TestStripInvariantAcrossConstructResetAdapt(t *testing.T) {
	s, err := New(3, Options{Alpha: 0.75, K1: 8, K2: 4, Ws: 3, SMin: 0.05, Rho: 2})
	if err != nil {
		t.Fatal(err)
	}
	assertStripInvariant(t, s)

	gen := rng.New(1, 2)
	_, _ = s.RunIter(func(p *engine.Point) float64 { return p.X[0] + p.X[1] + p.X[2] }, 3000, gen, nil)
	if err := s.Adapt(); err != nil {
		t.Fatal(err)
	}
	assertStripInvariant(t, s)

	s.Reset()
	assertStripInvariant(t, s)
}

// Invariant 3: after adapt, every dimension appears exactly once as the
// second column of the order.
func TestOrderCoversEachDimensionExactlyOnce(t *testing.T) {
	s, err := New(4, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	gen := rng.New(5, 6)
	for iter := 0; iter < 2; iter++ {
		_, err := s.RunIter(func(p *engine.Point) float64 { return 1 }, 2000, gen, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Adapt(); err != nil {
			t.Fatal(err)
		}
	}

	seen := make([]int, s.d)
	for _, row := range s.order {
		seen[row[1]]++
	}
	for dim, count := range seen {
		if count != 1 {
			t.Errorf("dim %d appears %d times as second column, want 1", dim, count)
		}
	}
}

// Scenario S3: on a correlated ridge, BASIN's variance after 3 adapt
// iterations must be strictly less than VEGAS's on the same neval/seed,
// and the order must form a conditioning chain over both dimensions.
func TestScenarioS3CorrelatedRidge(t *testing.T) {
	f := func(p *engine.Point) float64 {
		d := p.X[0] - p.X[1]
		return math.Exp(-200 * d * d)
	}

	b, err := New(2, Options{Alpha: 0.75, K1: 16, K2: 8, Ws: 3, SMin: 0.05, Rho: 2})
	require.NoError(t, err)
	v, err := vegas.New(2, vegas.Options{Alpha: 0.75, K: 128})
	require.NoError(t, err)

	genB := rng.New(1, 2)
	genV := rng.New(1, 2)

	var lastBasinIter, lastVegasIter float64
	for iter := 0; iter < 3; iter++ {
		itB, err := b.RunIter(f, 5000, genB, nil)
		require.NoError(t, err)
		require.NoError(t, b.Adapt())

		itV, err := v.RunIter(f, 5000, genV, nil)
		require.NoError(t, err)
		require.NoError(t, v.Adapt())

		if iter == 2 {
			varB, err := itB.Variance()
			require.NoError(t, err)
			varV, err := itV.Variance()
			require.NoError(t, err)
			lastBasinIter, lastVegasIter = varB, varV
		}
	}

	require.Less(t, lastBasinIter, lastVegasIter)

	i0 := b.order[0][0]
	require.Equal(t, i0, b.order[0][1])
	require.Equal(t, [2]int{i0, 1 - i0}, b.order[1])
}
