package diagnostics

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// viridis control points, evenly spaced over [0, 1]
var viridis = []color.RGBA{
	{0x44, 0x01, 0x54, 0xff},
	{0x3b, 0x52, 0x8b, 0xff},
	{0x21, 0x91, 0x8c, 0xff},
	{0x5e, 0xc9, 0x62, 0xff},
	{0xfd, 0xe7, 0x25, 0xff},
}

func colormap(t float64) color.RGBA {
	t = clamp01(t)
	pos := t * float64(len(viridis)-1)
	i := int(pos)
	if i >= len(viridis)-1 {
		return viridis[len(viridis)-1]
	}
	f := pos - float64(i)
	a, b := viridis[i], viridis[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*f + 0.5) }
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xff}
}

// Image renders plane with x to the right and y upwards.
func Image(plane *mat.Dense, norm Norm) *image.RGBA {
	w, h := plane.Dims()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.SetRGBA(x, h-1-y, colormap(norm(plane.At(x, y))))
		}
	}
	return img
}

// RenderPNG encodes plane as a PNG enlarged scale times.
func RenderPNG(out io.Writer, plane *mat.Dense, norm Norm, scale int) error {
	src := Image(plane, norm)
	if scale > 1 {
		b := src.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		src = dst
	}
	return png.Encode(out, src)
}

// Peak marks a removed spectral feature in the report.
type Peak struct {
	X, Y      int
	Magnitude float64
}

// Write renders original.png, cleaned.png, spectrum.png and report.html
// into dir. The planes are only read.
func Write(dir string, original, cleaned, magnitude *mat.Dense, peaks []Peak) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	scale := upscale(original)
	files := []struct {
		name  string
		plane *mat.Dense
		norm  Norm
	}{
		{"original.png", original, DefaultSymLog.Norm()},
		{"cleaned.png", cleaned, DefaultSymLog.Norm()},
		{"spectrum.png", magnitude, LogRange(magnitude)},
	}
	for _, f := range files {
		if err := writePNG(filepath.Join(dir, f.name), f.plane, f.norm, scale); err != nil {
			return err
		}
	}
	return WriteReport(filepath.Join(dir, "report.html"), original, cleaned, magnitude, peaks)
}

func writePNG(path string, plane *mat.Dense, norm Norm, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderPNG(f, plane, norm, scale); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

// upscale picks an integer factor bringing small planes to about 512 pixels.
func upscale(plane *mat.Dense) int {
	w, h := plane.Dims()
	scale := 512 / max(w, h)
	return max(scale, 1)
}
