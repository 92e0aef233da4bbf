package store

import "fmt"

// Metadata is the structural description of a stored image. The first two
// axes are spatial; any further axes (stokes, frequency, ...) select a plane.
type Metadata struct {
	Shape    []int            `json:"shape"`
	CoordSys CoordinateSystem `json:"coordsys"`
	Units    string           `json:"units,omitempty"`
}

type CoordinateSystem struct {
	Projection string `json:"projection,omitempty"`
	Equinox    string `json:"equinox,omitempty"`
	Axes       []Axis `json:"axes,omitempty"`
}

type Axis struct {
	Name      string  `json:"name"`
	Unit      string  `json:"unit,omitempty"`
	RefPixel  float64 `json:"crpix"`
	RefValue  float64 `json:"crval"`
	Increment float64 `json:"cdelt"`
}

func (m Metadata) Validate() error {
	if len(m.Shape) < 2 {
		return fmt.Errorf("%w: image needs at least 2 axes, got %d", ErrFormat, len(m.Shape))
	}
	for i, n := range m.Shape {
		if n < 1 {
			return fmt.Errorf("%w: axis %d has length %d", ErrFormat, i, n)
		}
	}
	if n := len(m.CoordSys.Axes); n != 0 && n != len(m.Shape) {
		return fmt.Errorf("%w: %d coordinate axes for %d image axes", ErrFormat, n, len(m.Shape))
	}
	return nil
}

// PlaneDims returns the spatial dimensions (W, H).
func (m Metadata) PlaneDims() (w, h int) { return m.Shape[0], m.Shape[1] }

// Samples is the total number of samples in the image.
func (m Metadata) Samples() int {
	n := 1
	for _, v := range m.Shape {
		n *= v
	}
	return n
}

// PlaneIndex maps a selector over the non-spatial axes to the plane's
// position in storage order. A nil selector picks index 0 on every axis.
func (m Metadata) PlaneIndex(sel []int) (int, error) {
	extra := m.Shape[2:]
	if sel != nil && len(sel) != len(extra) {
		return 0, fmt.Errorf("%w: selector has %d indices for %d non-spatial axes", ErrPlane, len(sel), len(extra))
	}
	idx, stride := 0, 1
	for i, n := range extra {
		var v int
		if sel != nil {
			v = sel[i]
		}
		if v < 0 || v >= n {
			return 0, fmt.Errorf("%w: index %d out of range for axis %d of length %d", ErrPlane, v, i+2, n)
		}
		idx += v * stride
		stride *= n
	}
	return idx, nil
}
