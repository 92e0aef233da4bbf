package ripple_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/astroimg/ripple_zero"
	"github.com/astroimg/ripple_zero/internal/journal"
	"github.com/astroimg/ripple_zero/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// wave returns offset + cos(2*pi*kx*x/w) on a w x h plane.
func wave(w, h, kx int, offset float64) *mat.Dense {
	p := mat.NewDense(w, h, nil)
	for x := range w {
		for y := range h {
			p.Set(x, y, offset+math.Cos(2*math.Pi*float64(kx*x)/float64(w)))
		}
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func diffNorm(a, b *mat.Dense) float64 {
	var d mat.Dense
	d.Sub(a, b)
	return mat.Norm(&d, math.Inf(1))
}

func TestClean(t *testing.T) {
	t.Run("sinusoid", func(t *testing.T) {
		plane := wave(8, 8, 2, 0)
		before := mat.DenseCopyOf(plane)

		res, err := ripple.Clean(plane)
		require.NoError(t, err)
		assert.True(t, mat.Equal(before, plane))

		require.Len(t, res.Peaks, 1)
		p := res.Peaks[0]
		// either cell of the pair may win the tie
		assert.Contains(t, []int{2, 6}, p.X)
		assert.Equal(t, 4, p.Y)
		assert.Equal(t, p.X-4, p.DX)
		assert.Zero(t, p.DY)
		assert.InDelta(t, 32, p.Magnitude, 1e-9)

		// the ripple was the whole signal
		assert.InDelta(t, 0, mat.Norm(res.Cleaned, math.Inf(1)), 1e-9)
		assert.Less(t, res.Residual, 1e-12)
		assert.InDelta(t, 0, res.Magnitude.At(6, 4), 1e-9)
	})
	t.Run("zero frequency first", func(t *testing.T) {
		plane := wave(8, 6, 2, 3)

		res, err := ripple.Clean(plane)
		require.NoError(t, err)
		require.Len(t, res.Peaks, 1)
		assert.Equal(t, 4, res.Peaks[0].X)
		assert.Equal(t, 3, res.Peaks[0].Y)
		assert.InDelta(t, 0, diffNorm(res.Cleaned, wave(8, 6, 2, 0)), 1e-9)

		res, err = ripple.Clean(plane, ripple.WithExcludeCenter(true))
		require.NoError(t, err)
		assert.Equal(t, 2, abs(res.Peaks[0].DX))
		assert.InDelta(t, 0, diffNorm(res.Cleaned, wave(8, 6, 0, 2)), 1e-9)
	})
	t.Run("no peaks", func(t *testing.T) {
		plane := wave(7, 5, 1, 0.5)
		res, err := ripple.Clean(plane, ripple.WithPeaks(0))
		require.NoError(t, err)
		assert.Empty(t, res.Peaks)
		assert.InDelta(t, 0, diffNorm(res.Cleaned, plane), 1e-12)
	})
	t.Run("several peaks", func(t *testing.T) {
		plane := wave(16, 16, 3, 0)
		plane.Add(plane, wave(16, 16, 5, 0))
		res, err := ripple.Clean(plane, ripple.WithPeaks(2), ripple.WithExcludeCenter(true))
		require.NoError(t, err)
		require.Len(t, res.Peaks, 2)
		assert.GreaterOrEqual(t, res.Peaks[0].Magnitude, res.Peaks[1].Magnitude)
		assert.InDelta(t, 0, mat.Norm(res.Cleaned, math.Inf(1)), 1e-9)
	})
	t.Run("logs peaks", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := ripple.Clean(wave(8, 8, 1, 0), ripple.WithLogger(log.New(&buf, "", 0)))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Taking fft")
		assert.Contains(t, buf.String(), "Peak location: [(")
		assert.Contains(t, buf.String(), "(3, 4)")
		assert.Contains(t, buf.String(), "(5, 4)")
	})
	t.Run("errors", func(t *testing.T) {
		_, err := ripple.Clean(wave(4, 4, 1, 0), ripple.WithPeaks(-1))
		assert.ErrorIs(t, err, ripple.ErrInvalidPeakCount)

		_, err = ripple.Clean(nil)
		assert.ErrorIs(t, err, ripple.ErrEmptyPlane)
		_, err = ripple.Clean(&mat.Dense{})
		assert.ErrorIs(t, err, ripple.ErrEmptyPlane)

		_, err = ripple.New(ripple.WithPlane(0, -1))
		assert.ErrorIs(t, err, store.ErrPlane)
	})
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"m87.image", "m87_ripple_killed.image"},
		{"data/cube", "data/cube_ripple_killed.image"},
		{"a.image.image", "a.image_ripple_killed.image"},
		{"https://example.org/obs/m87.image?x=1", "m87_ripple_killed.image"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ripple.OutputName(tt.input), tt.input)
	}
}

// writeCube stores a 8x8x2 cube whose first plane carries a ripple and whose
// second plane is constant.
func writeCube(t *testing.T, path string) store.Metadata {
	t.Helper()
	meta := store.Metadata{
		Shape: []int{8, 8, 2},
		CoordSys: store.CoordinateSystem{
			Projection: "SIN",
			Axes: []store.Axis{
				{Name: "Right Ascension", Unit: "rad"},
				{Name: "Declination", Unit: "rad"},
				{Name: "Stokes"},
			},
		},
		Units: "Jy/beam",
	}
	data := make([]float64, meta.Samples())
	plane := wave(8, 8, 2, 0)
	for x := range 8 {
		for y := range 8 {
			data[x+8*y] = plane.At(x, y)
			data[64+x+8*y] = 7
		}
	}
	require.NoError(t, store.New().Create(path, meta, data, false))
	return meta
}

func readPlane(t *testing.T, path string, sel ...int) (*mat.Dense, store.Metadata) {
	t.Helper()
	h, err := store.New().Open(context.Background(), path)
	require.NoError(t, err)
	defer h.Close()
	p, err := h.ReadPlane(sel)
	require.NoError(t, err)
	return p, h.Metadata()
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "cube.image")
		meta := writeCube(t, input)

		k, err := ripple.New()
		require.NoError(t, err)
		defer k.Close()

		report, err := k.Run(ctx, input, "")
		require.NoError(t, err)
		output := filepath.Join(dir, "cube_ripple_killed.image")
		assert.Equal(t, output, report.Output)
		assert.False(t, report.Overwritten)
		assert.Zero(t, report.JournalID)

		cleaned, got := readPlane(t, output, 0)
		assert.Equal(t, meta, got)
		assert.InDelta(t, 0, mat.Norm(cleaned, math.Inf(1)), 1e-9)
		other, _ := readPlane(t, output, 1)
		assert.Equal(t, 7.0, other.At(3, 5))

		// the input is untouched
		orig, _ := readPlane(t, input, 0)
		assert.InDelta(t, 0, diffNorm(orig, wave(8, 8, 2, 0)), 0)
	})
	t.Run("overwrite policy", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "cube.image")
		output := filepath.Join(dir, "out.image")
		writeCube(t, input)
		require.NoError(t, os.WriteFile(output, []byte("keep me"), 0o644))

		k, err := ripple.New()
		require.NoError(t, err)
		_, err = k.Run(ctx, input, output)
		assert.ErrorIs(t, err, ripple.ErrOutputExists)
		b, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(b))

		k, err = ripple.New(ripple.WithOverwrite(true), ripple.WithPlane(1), ripple.WithPeaks(0))
		require.NoError(t, err)
		report, err := k.Run(ctx, input, output)
		require.NoError(t, err)
		assert.True(t, report.Overwritten)
		p, _ := readPlane(t, output, 1)
		assert.InDelta(t, 7, p.At(0, 0), 1e-12)
	})
	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		k, err := ripple.New()
		require.NoError(t, err)
		_, err = k.Run(ctx, filepath.Join(dir, "nope.image"), "")
		assert.ErrorIs(t, err, ripple.ErrInputNotFound)
		_, err = os.Stat(filepath.Join(dir, "nope_ripple_killed.image"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
	t.Run("bad plane", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "cube.image")
		writeCube(t, input)
		k, err := ripple.New(ripple.WithPlane(2))
		require.NoError(t, err)
		_, err = k.Run(ctx, input, "")
		assert.ErrorIs(t, err, store.ErrPlane)
	})
	t.Run("journal and diagnostics", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "cube.image")
		writeCube(t, input)
		dbPath := filepath.Join(dir, "runs.db")
		diag := filepath.Join(dir, "diag")

		k, err := ripple.New(ripple.WithJournal(dbPath), ripple.WithDiagnostics(diag))
		require.NoError(t, err)
		report, err := k.Run(ctx, input, "")
		require.NoError(t, err)
		require.NoError(t, k.Close())
		assert.NotZero(t, report.JournalID)

		for _, name := range []string{"original.png", "cleaned.png", "spectrum.png", "report.html"} {
			assert.FileExists(t, filepath.Join(diag, name))
		}

		j, err := journal.Open(dbPath)
		require.NoError(t, err)
		defer j.Close()
		runs, err := j.Runs()
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, report.JournalID, runs[0].ID)
		assert.Equal(t, input, runs[0].Input)
		assert.Equal(t, 8, runs[0].Width)
		require.Len(t, runs[0].Peaks, 1)
		got := runs[0].Peaks[0]
		assert.Equal(t, report.Peaks[0].X, got.X)
		assert.Equal(t, report.Peaks[0].DX, got.DX)
		assert.Equal(t, report.Peaks[0].Magnitude, got.Magnitude)
	})
}
