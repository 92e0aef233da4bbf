package peak

import (
	"fmt"

	"github.com/astroimg/ripple_zero/internal/spectrum"
)

type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// Record is a located peak: its cell, its offset from the centre and the
// magnitude it had when it was selected.
type Record struct {
	Point
	Offset    Point
	Magnitude float64
}

// Center returns the zero-frequency cell of a shifted spectrum.
func Center(s *spectrum.Spectrum) Point {
	w, h := s.Dims()
	return Point{X: w / 2, Y: h / 2}
}

// Locate scans the whole spectrum in row-major order and returns the cell of
// largest magnitude. The first of equal magnitudes wins. With excludeCenter
// the zero-frequency cell is skipped; ok is false only if nothing is left to
// scan.
func Locate(s *spectrum.Spectrum, center Point, excludeCenter bool) (rec Record, ok bool) {
	w, h := s.Dims()
	best := -1.0
	for x := range w {
		for y := range h {
			if excludeCenter && x == center.X && y == center.Y {
				continue
			}
			if a := s.Abs(x, y); a > best {
				best = a
				rec.Point = Point{X: x, Y: y}
				ok = true
			}
		}
	}
	if !ok {
		return Record{}, false
	}
	rec.Magnitude = best
	rec.Offset = Point{X: rec.X - center.X, Y: rec.Y - center.Y}
	return rec, true
}
