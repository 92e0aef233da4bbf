package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/astroimg/ripple_zero/internal/store"
)

func skyAxes(n int) []store.Axis {
	axes := []store.Axis{
		{Name: "Right Ascension", Unit: "rad"},
		{Name: "Declination", Unit: "rad"},
		{Name: "Stokes"},
	}
	return axes[:n]
}

// fromImage converts img to a single plane. Intensity is the 16-bit gray
// level scaled so that white equals scale. Row 0 of img is the top of the
// plane, the plane's y axis points up.
func fromImage(img image.Image, scale float64) (store.Metadata, []float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float64, w*h)
	for row := range h {
		y := h - 1 - row
		for x := range w {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+row)).(color.Gray16)
			data[x+y*w] = float64(g.Y) / math.MaxUint16 * scale
		}
	}
	meta := store.Metadata{
		Shape:    []int{w, h},
		CoordSys: store.CoordinateSystem{Axes: skyAxes(2)},
	}
	return meta, data
}

type synthParams struct {
	Width, Height, Planes int
	Value, Amp            float64
	KX, KY                float64
}

// synth builds a cube whose planes all hold
// Value + Amp*cos(2*pi*(KX*x/Width + KY*y/Height)).
func synth(p synthParams) (store.Metadata, []float64, error) {
	if p.Width < 1 || p.Height < 1 || p.Planes < 1 {
		return store.Metadata{}, nil, fmt.Errorf("dimensions must be positive, got %dx%dx%d", p.Width, p.Height, p.Planes)
	}
	shape := []int{p.Width, p.Height}
	if p.Planes > 1 {
		shape = append(shape, p.Planes)
	}
	meta := store.Metadata{
		Shape:    shape,
		CoordSys: store.CoordinateSystem{Projection: "SIN", Equinox: "J2000", Axes: skyAxes(len(shape))},
		Units:    "Jy/beam",
	}

	n := p.Width * p.Height
	data := make([]float64, n*p.Planes)
	for y := range p.Height {
		for x := range p.Width {
			phase := 2 * math.Pi * (p.KX*float64(x)/float64(p.Width) + p.KY*float64(y)/float64(p.Height))
			data[x+y*p.Width] = p.Value + p.Amp*math.Cos(phase)
		}
	}
	for i := 1; i < p.Planes; i++ {
		copy(data[i*n:(i+1)*n], data[:n])
	}
	return meta, data, nil
}

func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	sel := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		sel[i] = v
	}
	return sel, nil
}
