package fft2d

// Shift rolls a row-major w x h grid by (w/2, h/2), moving the cell at the
// origin to the centre. dst and src must not overlap.
func Shift[T any](dst, src []T, w, h int) {
	for x := range w {
		sx := (x + w/2) % w
		for y := range h {
			dst[sx*h+(y+h/2)%h] = src[x*h+y]
		}
	}
}

// IShift undoes Shift. For even dimensions it is the same permutation.
func IShift[T any](dst, src []T, w, h int) {
	for x := range w {
		sx := (x + w/2) % w
		for y := range h {
			dst[x*h+y] = src[sx*h+(y+h/2)%h]
		}
	}
}
