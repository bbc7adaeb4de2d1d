package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/ldc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ldc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var _ ldc.DensityCache = (*Store)(nil)

func TestDensityCache_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	rho, ok, err := s.LoadDensity("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rho)

	want := []float64{0, 1.5, -2.25, math.Pi, math.SmallestNonzeroFloat64, 1e300}
	require.NoError(t, s.StoreDensity("k1", want))

	got, ok, err := s.LoadDensity("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Replacing an entry keeps one row with the new value.
	require.NoError(t, s.StoreDensity("k1", []float64{7}))
	got, ok, err = s.LoadDensity("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{7}, got)
}

func TestDensityCache_CorruptBlob(t *testing.T) {
	s := openTestStore(t)
	_, err := s.db.Exec(`INSERT INTO density_cache (key, cells, blob, created_at) VALUES ('bad', 4, x'deadbeef', 0)`)
	require.NoError(t, err)
	_, ok, err := s.LoadDensity("bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPurgeDensity(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StoreDensity("old", []float64{1}))
	_, err := s.db.Exec(`UPDATE density_cache SET created_at = 0 WHERE key = 'old'`)
	require.NoError(t, err)
	require.NoError(t, s.StoreDensity("new", []float64{2}))

	n, err := s.PurgeDensity(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.LoadDensity("old")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.LoadDensity("new")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEncodeFloats_Compresses(t *testing.T) {
	vs := make([]float64, 4096)
	blob, err := encodeFloats(vs)
	require.NoError(t, err)
	assert.Less(t, len(blob), 8*len(vs)/10)

	back, err := decodeFloats(blob, len(vs))
	require.NoError(t, err)
	assert.Equal(t, vs, back)

	_, err = decodeFloats(blob, len(vs)+1)
	assert.Error(t, err)
}

func TestDetectWithStoreCache(t *testing.T) {
	s := openTestStore(t)

	g := ldc.Grid{Shape: []int{6, 6}, Data: make([]float64, 36)}
	for i := range g.Data {
		x, y := float64(i%6)-2.5, float64(i/6)-2.5
		g.Data[i] = 10 * math.Exp(-(x*x+y*y)/2)
	}
	cfg := ldc.DefaultConfig()
	cfg.RhoMin, cfg.Noise, cfg.DeltaMin, cfg.VMin = 1, 0.1, 1, 3
	cfg.Cache = s

	first, err := ldc.Detect(g, cfg)
	require.NoError(t, err)

	_, ok, err := s.LoadDensity(ldc.DensityKey(g, 0))
	require.NoError(t, err)
	require.True(t, ok, "density was not cached")

	second, err := ldc.Detect(g, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Density, second.Density)
	assert.Equal(t, first.Labels, second.Labels)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.StoreDensity("k", []float64{1, 2}))
	got, ok, err := s.LoadDensity("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got)
}
