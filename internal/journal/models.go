package journal

import "time"

type (
	// Run is one committed cleaning of an image plane.
	Run struct {
		ID            int64
		Input         string
		Output        string
		Width         int
		Height        int
		NPeaks        int // requested
		ExcludeCenter bool
		Overwritten   bool
		Residual      float64 // largest imaginary part after the inverse transform
		StartedAt     time.Time
		Duration      time.Duration

		Peaks []Peak
	}

	// Peak is a removed pair, located at (X, Y) with offset (DX, DY) from
	// the spectrum centre.
	Peak struct {
		X, Y      int
		DX, DY    int
		Magnitude float64
	}
)
