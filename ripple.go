package ripple

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/astroimg/ripple_zero/internal/diagnostics"
	"github.com/astroimg/ripple_zero/internal/fft2d"
	"github.com/astroimg/ripple_zero/internal/journal"
	"github.com/astroimg/ripple_zero/internal/peak"
	"github.com/astroimg/ripple_zero/internal/store"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidPeakCount = errors.New("number of peaks must not be negative")
	ErrEmptyPlane       = errors.New("image plane is empty")
	ErrOutputExists     = store.ErrExists
	ErrInputNotFound    = store.ErrNotFound
)

const (
	DefaultPeaks = 1

	imageExt     = ".image"
	outputSuffix = "_ripple_killed" + imageExt
)

// Clean removes ripple from a single plane with the specified options.
// This is a convenience function that creates a Killer and calls its Clean method.
func Clean(plane *mat.Dense, opts ...Option) (*Result, error) {
	k, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return k.Clean(plane)
}

// OutputName derives the output identity for input: a trailing ".image" is
// replaced by "_ripple_killed.image", anything else gets that suffix appended.
// Remote inputs map to their base name in the working directory.
func OutputName(input string) string {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		input = path.Base(u.Path)
	}
	return strings.TrimSuffix(input, imageExt) + outputSuffix
}

// Peak is one removed spectral feature. (X, Y) is its cell in the centred
// spectrum, (DX, DY) its offset from the zero-frequency cell.
type Peak struct {
	X, Y      int
	DX, DY    int
	Magnitude float64
}

type Result struct {
	// Cleaned has the shape of the input plane.
	Cleaned *mat.Dense
	// Magnitude is |F| of the spectrum after suppression.
	Magnitude *mat.Dense
	Peaks     []Peak
	// Residual is the largest imaginary part dropped by the inverse transform.
	Residual float64
}

type Report struct {
	Result
	Input, Output string
	Overwritten   bool
	JournalID     int64
}

type Killer struct {
	npeaks        int
	excludeCenter bool
	overwrite     bool
	plane         []int

	logger      *log.Logger
	store       *store.Store
	storeOpts   []store.Option
	engines     *fft2d.Cache
	diagDir     string
	journalPath string
	journal     *journal.Journal
}

// New initializes a ripple killer. Without options it removes DefaultPeaks
// peak pairs from the first plane, keeps the zero-frequency cell eligible and
// refuses to overwrite an existing output.
func New(opts ...Option) (*Killer, error) {
	k := new(Killer)
	if err := k.init(opts...); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Killer) init(opts ...Option) error {
	k.npeaks = DefaultPeaks
	for _, opt := range opts {
		if err := opt(k); err != nil {
			return err
		}
	}
	if k.logger == nil {
		k.logger = log.New(io.Discard, "", 0)
	}
	if k.store == nil {
		k.store = store.New(k.storeOpts...)
	}
	if k.engines == nil {
		k.engines = fft2d.NewCache()
	}
	if k.journalPath != "" {
		j, err := journal.Open(k.journalPath)
		if err != nil {
			return err
		}
		k.journal = j
	}
	return nil
}

// Close releases the run journal, if any.
func (k *Killer) Close() error {
	if k.journal == nil {
		return nil
	}
	return k.journal.Close()
}

// Clean removes ripple from plane.
//
// Process:
//  1. Shifts the plane, takes its 2-D DFT and shifts the result so that the
//     zero-frequency cell sits at (W/2, H/2).
//  2. Repeats npeaks times: finds the strongest cell and zeroes it together
//     with its Hermitian mirror.
//  3. Inverts the transform and keeps the real part.
//
// plane is not modified.
func (k *Killer) Clean(plane *mat.Dense) (*Result, error) {
	if plane == nil || plane.IsEmpty() {
		return nil, ErrEmptyPlane
	}
	w, h := plane.Dims()
	e := k.engines.Engine(w, h)

	k.logger.Printf("Taking fft of %dx%d plane", w, h)
	spec, err := e.Forward(plane)
	if err != nil {
		return nil, err
	}

	records := peak.Run(spec, k.npeaks, k.excludeCenter, func(rec peak.Record, cells []peak.Point) {
		k.logger.Printf("Peak location: %v (offset %v, |F| = %.6g)", cells, rec.Offset, rec.Magnitude)
	})

	cleaned, residual, err := e.Inverse(spec)
	if err != nil {
		return nil, err
	}
	k.logger.Printf("Discarded imaginary residual %.3g", residual)

	res := &Result{
		Cleaned:   cleaned,
		Magnitude: spec.Magnitude(),
		Peaks:     make([]Peak, len(records)),
		Residual:  residual,
	}
	for i, rec := range records {
		res.Peaks[i] = Peak{X: rec.X, Y: rec.Y, DX: rec.Offset.X, DY: rec.Offset.Y, Magnitude: rec.Magnitude}
	}
	return res, nil
}

// Run cleans the selected plane of the image input and writes the result to
// output, or to OutputName(input) when output is empty. The output is a copy
// of input in which only the cleaned plane differs.
//
// Returns ErrOutputExists without writing anything if output exists and
// overwriting was not enabled.
func (k *Killer) Run(ctx context.Context, input, output string) (*Report, error) {
	started := time.Now()
	if output == "" {
		output = OutputName(input)
	}
	exists, err := k.store.Exists(output)
	if err != nil {
		return nil, err
	}
	if exists && !k.overwrite {
		return nil, fmt.Errorf("%w: %s, enable overwrite to replace it", ErrOutputExists, output)
	}

	k.logger.Printf("Reading data from %s", input)
	original, err := k.readPlane(ctx, input)
	if err != nil {
		return nil, err
	}

	res, err := k.Clean(original)
	if err != nil {
		return nil, err
	}

	if k.diagDir != "" {
		k.logger.Printf("Plotting to %s", k.diagDir)
		if err := diagnostics.Write(k.diagDir, original, res.Cleaned, res.Magnitude, k.diagPeaks(res.Peaks)); err != nil {
			return nil, fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}

	k.logger.Printf("Writing output to %s", output)
	if exists {
		k.logger.Printf("Output file %s already exists, overwriting it.", output)
	}
	if err := k.store.Commit(ctx, output, input, k.plane, res.Cleaned, k.overwrite); err != nil {
		return nil, err
	}

	report := &Report{Result: *res, Input: input, Output: output, Overwritten: exists}
	if k.journal != nil {
		id, err := k.journal.Record(k.journalRun(report, started))
		if err != nil {
			return nil, err
		}
		report.JournalID = id
	}
	return report, nil
}

// readPlane drains the selected plane and closes the image before returning.
func (k *Killer) readPlane(ctx context.Context, input string) (*mat.Dense, error) {
	h, err := k.store.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.ReadPlane(k.plane)
}

func (k *Killer) diagPeaks(peaks []Peak) []diagnostics.Peak {
	out := make([]diagnostics.Peak, len(peaks))
	for i, p := range peaks {
		out[i] = diagnostics.Peak{X: p.X, Y: p.Y, Magnitude: p.Magnitude}
	}
	return out
}

func (k *Killer) journalRun(r *Report, started time.Time) journal.Run {
	w, h := r.Cleaned.Dims()
	run := journal.Run{
		Input:         r.Input,
		Output:        r.Output,
		Width:         w,
		Height:        h,
		NPeaks:        k.npeaks,
		ExcludeCenter: k.excludeCenter,
		Overwritten:   r.Overwritten,
		Residual:      r.Residual,
		StartedAt:     started,
		Duration:      time.Since(started),
	}
	for _, p := range r.Peaks {
		run.Peaks = append(run.Peaks, journal.Peak{X: p.X, Y: p.Y, DX: p.DX, DY: p.DY, Magnitude: p.Magnitude})
	}
	return run
}
