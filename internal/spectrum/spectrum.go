package spectrum

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Spectrum is a w x h grid of complex frequency coefficients laid out
// row-major over (x, y), matching the plane it was derived from.
type Spectrum struct {
	w, h int
	data []complex128
}

func New(w, h int) *Spectrum {
	return &Spectrum{w: w, h: h, data: make([]complex128, w*h)}
}

// FromRaw wraps data without copying. len(data) must be w*h.
func FromRaw(w, h int, data []complex128) *Spectrum {
	if len(data) != w*h {
		panic("spectrum: data length does not match shape")
	}
	return &Spectrum{w: w, h: h, data: data}
}

func (s *Spectrum) Dims() (w, h int) { return s.w, s.h }

func (s *Spectrum) At(x, y int) complex128 { return s.data[x*s.h+y] }

func (s *Spectrum) Set(x, y int, v complex128) { s.data[x*s.h+y] = v }

func (s *Spectrum) Abs(x, y int) float64 { return cmplx.Abs(s.data[x*s.h+y]) }

// Raw exposes the backing slice.
func (s *Spectrum) Raw() []complex128 { return s.data }

func (s *Spectrum) Clone() *Spectrum {
	c := New(s.w, s.h)
	copy(c.data, s.data)
	return c
}

// Magnitude returns |F| as a w x h plane.
func (s *Spectrum) Magnitude() *mat.Dense {
	abs := make([]float64, len(s.data))
	for i, v := range s.data {
		abs[i] = cmplx.Abs(v)
	}
	return mat.NewDense(s.w, s.h, abs)
}

// MaxAbs returns the largest magnitude in the grid, optionally ignoring one cell.
func (s *Spectrum) MaxAbs(skipX, skipY int) float64 {
	var max float64
	for x := range s.w {
		for y := range s.h {
			if x == skipX && y == skipY {
				continue
			}
			if a := s.Abs(x, y); a > max {
				max = a
			}
		}
	}
	return max
}
