package ripple

import (
	"fmt"
	"log"
	"slices"

	"github.com/astroimg/ripple_zero/internal/store"
)

type Option func(*Killer) error

// WithPeaks sets how many peak pairs are removed from the spectrum.
// Zero leaves the image unchanged apart from transform rounding.
// Negative values are rejected with ErrInvalidPeakCount.
func WithPeaks(n int) Option {
	return func(k *Killer) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPeakCount, n)
		}
		k.npeaks = n
		return nil
	}
}

// WithExcludeCenter keeps the zero-frequency cell out of the peak search.
// By default it is eligible like any other cell, so an image whose mean
// dominates its spectrum loses its mean first.
func WithExcludeCenter(exclude bool) Option {
	return func(k *Killer) error {
		k.excludeCenter = exclude
		return nil
	}
}

// WithOverwrite allows Run to replace an existing output image.
func WithOverwrite(overwrite bool) Option {
	return func(k *Killer) error {
		k.overwrite = overwrite
		return nil
	}
}

// WithPlane selects the plane to clean by its index on every non-spatial
// axis of the image, in axis order. Without it the first plane is used.
func WithPlane(sel ...int) Option {
	return func(k *Killer) error {
		for _, v := range sel {
			if v < 0 {
				return fmt.Errorf("%w: negative index %d", store.ErrPlane, v)
			}
		}
		k.plane = slices.Clone(sel)
		return nil
	}
}

// WithLogger reports progress (peak locations, file names) to l.
func WithLogger(l *log.Logger) Option {
	return func(k *Killer) error {
		k.logger = l
		return nil
	}
}

// WithHTTPCache sets the directory caching images read from http(s) URLs.
func WithHTTPCache(dir string) Option {
	return func(k *Killer) error {
		k.storeOpts = append(k.storeOpts, store.WithHTTPCache(dir))
		return nil
	}
}

// WithDiagnostics writes before/after renderings and the spectrum magnitude
// of every Run into dir.
func WithDiagnostics(dir string) Option {
	return func(k *Killer) error {
		k.diagDir = dir
		return nil
	}
}

// WithJournal records every successful Run in the SQLite database at path.
// The database is created if needed; call Close to release it.
func WithJournal(path string) Option {
	return func(k *Killer) error {
		k.journalPath = path
		return nil
	}
}
