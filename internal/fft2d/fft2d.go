package fft2d

import (
	"fmt"
	"math"
	"sync"

	"github.com/astroimg/ripple_zero/internal/spectrum"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Engine computes centred 2-D discrete Fourier transforms of w x h planes.
// The x axis (plane rows) has length w and the y axis (plane columns) length h.
type Engine struct {
	w, h int
	// along y, one call per row
	rows *fourier.CmplxFFT
	// along x, one call per column
	cols *fourier.CmplxFFT

	mu sync.Mutex
}

func New(w, h int) *Engine {
	return &Engine{
		w:    w,
		h:    h,
		rows: fourier.NewCmplxFFT(h),
		cols: fourier.NewCmplxFFT(w),
	}
}

func (e *Engine) Dims() (w, h int) { return e.w, e.h }

// Forward returns fftshift(FFT2(fftshift(plane))). The zero-frequency
// coefficient lands on (w/2, h/2).
func (e *Engine) Forward(plane *mat.Dense) (*spectrum.Spectrum, error) {
	if err := e.check(plane.Dims()); err != nil {
		return nil, err
	}
	w, h := e.w, e.h
	src := make([]complex128, w*h)
	for x := range w {
		row := plane.RawRowView(x)
		for y := range h {
			src[x*h+y] = complex(row[y], 0)
		}
	}
	buf := make([]complex128, w*h)
	Shift(buf, src, w, h)

	e.mu.Lock()
	e.transform(buf, false)
	e.mu.Unlock()

	Shift(src, buf, w, h)
	return spectrum.FromRaw(w, h, src), nil
}

// Inverse returns the real part of ifftshift(IFFT2(ifftshift(spec))) together
// with the largest imaginary magnitude that was discarded. The residual is
// rounding noise for a Hermitian spectrum.
func (e *Engine) Inverse(spec *spectrum.Spectrum) (*mat.Dense, float64, error) {
	if err := e.check(spec.Dims()); err != nil {
		return nil, 0, err
	}
	w, h := e.w, e.h
	buf := make([]complex128, w*h)
	IShift(buf, spec.Raw(), w, h)

	e.mu.Lock()
	e.transform(buf, true)
	e.mu.Unlock()

	out := make([]complex128, w*h)
	IShift(out, buf, w, h)

	scale := 1 / float64(w*h)
	data := make([]float64, w*h)
	var residual float64
	for i, v := range out {
		data[i] = real(v) * scale
		if im := math.Abs(imag(v) * scale); im > residual {
			residual = im
		}
	}
	return mat.NewDense(w, h, data), residual, nil
}

// transform runs an unnormalised 2-D DFT in place, rows first.
func (e *Engine) transform(buf []complex128, inverse bool) {
	w, h := e.w, e.h

	line := make([]complex128, h)
	for x := range w {
		seg := buf[x*h : (x+1)*h : (x+1)*h]
		if inverse {
			e.rows.Sequence(line, seg)
		} else {
			e.rows.Coefficients(line, seg)
		}
		copy(seg, line)
	}

	col := make([]complex128, w)
	res := make([]complex128, w)
	for y := range h {
		for x := range w {
			col[x] = buf[x*h+y]
		}
		if inverse {
			e.cols.Sequence(res, col)
		} else {
			e.cols.Coefficients(res, col)
		}
		for x := range w {
			buf[x*h+y] = res[x]
		}
	}
}

func (e *Engine) check(w, h int) error {
	if w != e.w || h != e.h {
		return fmt.Errorf("shape %dx%d does not match engine %dx%d", w, h, e.w, e.h)
	}
	return nil
}
