package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Norm maps a sample to [0, 1].
type Norm func(v float64) float64

// SymLog is a symmetric logarithmic scale, linear within LinThresh of zero.
type SymLog struct {
	LinThresh  float64
	VMin, VMax float64
}

// DefaultSymLog suits residual maps of a few mJy/beam.
var DefaultSymLog = SymLog{LinThresh: 1e-5, VMin: -0.01, VMax: 0.1}

func (s SymLog) transform(v float64) float64 {
	return math.Copysign(math.Log10(1+math.Abs(v)/s.LinThresh), v)
}

func (s SymLog) Norm() Norm {
	lo, hi := s.transform(s.VMin), s.transform(s.VMax)
	return func(v float64) float64 {
		if hi == lo {
			return 0
		}
		return clamp01((s.transform(v) - lo) / (hi - lo))
	}
}

// LogRange scales log10(1+v) linearly between the smallest and largest
// sample of plane, the usual view of a spectrum magnitude.
func LogRange(plane *mat.Dense) Norm {
	vals := values(plane)
	lo := math.Log10(1 + math.Max(floats.Min(vals), 0))
	hi := math.Log10(1 + math.Max(floats.Max(vals), 0))
	return func(v float64) float64 {
		if hi == lo {
			return 0
		}
		return clamp01((math.Log10(1+math.Max(v, 0)) - lo) / (hi - lo))
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func values(plane *mat.Dense) []float64 {
	r, c := plane.Dims()
	out := make([]float64, 0, r*c)
	for i := range r {
		out = append(out, plane.RawRowView(i)...)
	}
	return out
}
