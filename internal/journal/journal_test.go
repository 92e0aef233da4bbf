package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path)
	require.NoError(t, err)

	started := time.Unix(1700000000, 123)
	first := Run{
		Input:         "in.img",
		Output:        "in.rippleskilled",
		Width:         8,
		Height:        6,
		NPeaks:        2,
		ExcludeCenter: true,
		Residual:      1e-15,
		StartedAt:     started,
		Duration:      42 * time.Millisecond,
		Peaks: []Peak{
			{X: 6, Y: 3, DX: 2, DY: 0, Magnitude: 24},
			{X: 4, Y: 5, DX: 0, DY: 2, Magnitude: 12.5},
		},
	}
	id1, err := j.Record(first)
	require.NoError(t, err)
	id2, err := j.Record(Run{Input: "b", Output: "c", Width: 1, Height: 1, Overwritten: true, StartedAt: started})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
	require.NoError(t, j.Close())

	// reopening keeps the recorded runs
	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	got := runs[0]
	assert.Equal(t, id1, got.ID)
	assert.Equal(t, "in.img", got.Input)
	assert.Equal(t, "in.rippleskilled", got.Output)
	assert.Equal(t, 8, got.Width)
	assert.Equal(t, 6, got.Height)
	assert.Equal(t, 2, got.NPeaks)
	assert.True(t, got.ExcludeCenter)
	assert.False(t, got.Overwritten)
	assert.Equal(t, 1e-15, got.Residual)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 42*time.Millisecond, got.Duration)
	assert.Equal(t, first.Peaks, got.Peaks)

	assert.True(t, runs[1].Overwritten)
	assert.Empty(t, runs[1].Peaks)

	peaks, err := j.Peaks(id1)
	require.NoError(t, err)
	assert.Equal(t, first.Peaks, peaks)
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "runs.db"))
	assert.Error(t, err)
}
