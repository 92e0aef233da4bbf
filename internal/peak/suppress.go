package peak

import "github.com/astroimg/ripple_zero/internal/spectrum"

// Pair returns the cells center+offset and center-offset of rec. Coordinates
// wrap around the grid so that the Nyquist row or column of an even dimension
// is its own mirror. Coincident cells are returned once.
func Pair(rec Record, center Point, w, h int) []Point {
	a := Point{X: wrap(center.X+rec.Offset.X, w), Y: wrap(center.Y+rec.Offset.Y, h)}
	b := Point{X: wrap(center.X-rec.Offset.X, w), Y: wrap(center.Y-rec.Offset.Y, h)}
	if a == b {
		return []Point{a}
	}
	return []Point{a, b}
}

// Suppress zeroes rec and its Hermitian mirror in s and returns the cells it
// cleared.
func Suppress(s *spectrum.Spectrum, rec Record, center Point) []Point {
	w, h := s.Dims()
	cells := Pair(rec, center, w, h)
	for _, p := range cells {
		s.Set(p.X, p.Y, 0)
	}
	return cells
}

// Run removes npeaks conjugate pairs from s, each time picking the strongest
// cell of the spectrum as it stands after the previous removals. visit, if not
// nil, is called after every removal. The centre is fixed before the loop.
func Run(s *spectrum.Spectrum, npeaks int, excludeCenter bool, visit func(Record, []Point)) []Record {
	center := Center(s)
	records := make([]Record, 0, npeaks)
	for range npeaks {
		rec, ok := Locate(s, center, excludeCenter)
		if !ok {
			break
		}
		cells := Suppress(s, rec, center)
		if visit != nil {
			visit(rec, cells)
		}
		records = append(records, rec)
	}
	return records
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
