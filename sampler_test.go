package kakuhen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/kakuhen/basin"
	"github.com/cwbudde/kakuhen/vegas"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestNewVegasIntegratesUniform(t *testing.T) {
	s, err := NewVegas(2, vegas.Options{Alpha: 0.75, K: 32})
	require.NoError(t, err)

	result, err := s.Integrate(func(p *Point) float64 { return p.X[0] * p.X[1] }, Options{
		Neval: intp(5000),
		Niter: intp(3),
	})
	require.NoError(t, err)

	v, err := result.Value()
	require.NoError(t, err)
	require.InDelta(t, 0.25, v, 0.05)
}

func TestNewBasinReportsCapabilities(t *testing.T) {
	s, err := NewBasin(2, basin.DefaultOptions())
	require.NoError(t, err)
	require.True(t, s.Supports(CapAdapt))
	require.True(t, s.Supports(CapState))
	require.True(t, s.Supports(CapData))
	require.Equal(t, 2, s.Dim())
}

func TestIntegrateRequiresNevalAndNiter(t *testing.T) {
	s, err := NewVegas(1, vegas.DefaultOptions())
	require.NoError(t, err)
	_, err = s.Integrate(func(p *Point) float64 { return 1 }, Options{})
	require.ErrorIs(t, err, ErrUninitialized)
}

func TestSaveStateLoadStateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewVegas(2, vegas.Options{Alpha: 0.75, K: 16})
	require.NoError(t, err)
	_, err = s.Integrate(func(p *Point) float64 { return p.X[0] + p.X[1] }, Options{
		Neval: intp(2000),
		Niter: intp(1),
		Adapt: boolp(true),
	})
	require.NoError(t, err)

	path := filepath.Join(dir, s.StatePath(nil))
	require.NoError(t, s.SaveState(path))

	s2, err := NewVegas(2, vegas.Options{Alpha: 0.75, K: 16})
	require.NoError(t, err)
	require.NoError(t, s2.LoadState(path))
	require.Equal(t, s.Fingerprint(), s2.Fingerprint())
}

func TestSaveDataThenAppendDataMergesCounts(t *testing.T) {
	dir := t.TempDir()

	s, err := NewVegas(1, vegas.Options{Alpha: 0.75, K: 8})
	require.NoError(t, err)
	_, err = s.Integrate(func(p *Point) float64 { return 1 }, Options{
		Neval: intp(500),
		Niter: intp(1),
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "data.khd")
	require.NoError(t, s.SaveData(path))

	s2, err := NewVegas(1, vegas.Options{Alpha: 0.75, K: 8})
	require.NoError(t, err)
	_, err = s2.Integrate(func(p *Point) float64 { return 1 }, Options{
		Neval: intp(500),
		Niter: intp(1),
	})
	require.NoError(t, err)

	require.NoError(t, s2.AppendData(path))
	require.Equal(t, int64(1000), s2.Result().Count())
}

func TestSaveRNGLoadRNGResumesStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.khr")

	s, err := NewVegas(1, vegas.DefaultOptions())
	require.NoError(t, err)
	s.SetSeed(7)
	require.NoError(t, s.SaveRNG(path))

	_, err = os.Stat(path)
	require.NoError(t, err)

	var want, got float64
	_, err = s.Integrate(func(p *Point) float64 { want = p.X[0]; return 1 }, Options{
		Neval: intp(1),
		Niter: intp(1),
	})
	require.NoError(t, err)

	s2, err := NewVegas(1, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s2.LoadRNG(path))
	_, err = s2.Integrate(func(p *Point) float64 { got = p.X[0]; return 1 }, Options{
		Neval: intp(1),
		Niter: intp(1),
	})
	require.NoError(t, err)
	require.Equal(t, want, got)
}
