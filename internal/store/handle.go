package store

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// Handle is an image opened for reading.
type Handle struct {
	id      string
	meta    Metadata
	r       io.ReaderAt
	size    int64
	dataOff int64
	closer  io.Closer
}

func newHandle(id string, r io.ReaderAt, size int64, closer io.Closer) (*Handle, error) {
	meta, off, err := decodeHeader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return &Handle{id: id, meta: meta, r: r, size: size, dataOff: off, closer: closer}, nil
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Metadata() Metadata { return h.meta }

// ReadPlane reads the W x H plane selected by sel, see Metadata.PlaneIndex.
func (h *Handle) ReadPlane(sel []int) (*mat.Dense, error) {
	off, err := h.planeOffset(sel)
	if err != nil {
		return nil, err
	}
	w, ht := h.meta.PlaneDims()
	buf := make([]byte, w*ht*8)
	if err := readAt(h.r, buf, off); err != nil {
		return nil, fmt.Errorf("failed to read plane of %s: %w", h.id, err)
	}
	samples := make([]float64, w*ht)
	decodeSamples(samples, buf)

	plane := mat.NewDense(w, ht, nil)
	for x := range w {
		for y := range ht {
			plane.Set(x, y, samples[x+y*w])
		}
	}
	return plane, nil
}

// ReadAll reads every sample of the image in storage order.
func (h *Handle) ReadAll() ([]float64, error) {
	buf := make([]byte, h.size-h.dataOff)
	if err := readAt(h.r, buf, h.dataOff); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", h.id, err)
	}
	samples := make([]float64, len(buf)/8)
	decodeSamples(samples, buf)
	return samples, nil
}

func (h *Handle) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

func (h *Handle) planeOffset(sel []int) (int64, error) {
	idx, err := h.meta.PlaneIndex(sel)
	if err != nil {
		return 0, err
	}
	w, ht := h.meta.PlaneDims()
	return h.dataOff + int64(idx)*int64(w*ht)*8, nil
}
