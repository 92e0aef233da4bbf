package bench

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/astroimg/ripple_zero/internal/fft2d"
	"github.com/astroimg/ripple_zero/internal/peak"
	"gonum.org/v1/gonum/mat"
)

func BenchmarkTransform(b *testing.B) {
	genPlane := func(w, h int) *mat.Dense {
		data := make([]float64, w*h)
		for i := range data {
			data[i] = rand.Float64()
		}
		return mat.NewDense(w, h, data)
	}

	for _, size := range [][2]int{{256, 256}, {512, 512}, {1024, 1024}, {1000, 800}} {
		w, h := size[0], size[1]
		plane := genPlane(w, h)

		b.Run(fmt.Sprintf("forward_%dx%d", w, h), func(b *testing.B) {
			e := fft2d.New(w, h)
			for b.Loop() {
				if _, err := e.Forward(plane); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("roundtrip_%dx%d", w, h), func(b *testing.B) {
			e := fft2d.New(w, h)
			for b.Loop() {
				s, err := e.Forward(plane)
				if err != nil {
					b.Fatal(err)
				}
				if _, _, err := e.Inverse(s); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(fmt.Sprintf("locate_%dx%d", w, h), func(b *testing.B) {
			s, err := fft2d.New(w, h).Forward(plane)
			if err != nil {
				b.Fatal(err)
			}
			center := peak.Center(s)
			for b.Loop() {
				peak.Locate(s, center, true)
			}
		})
	}
}
