package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// An image file is
//
//	magic[8] | header length (uint32 LE) | JSON header | float64 LE samples
//
// with samples ordered axis 0 fastest, so every 2-D plane is contiguous.
const magic = "RIPLIMG1"

const prefixLen = len(magic) + 4

func encodeHeader(meta Metadata) ([]byte, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	hdr, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	buf := make([]byte, prefixLen, prefixLen+len(hdr))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[len(magic):], uint32(len(hdr)))
	return append(buf, hdr...), nil
}

// decodeHeader reads the header from r and returns it together with the
// offset of the first sample. size is the total byte length of the image.
func decodeHeader(r io.ReaderAt, size int64) (Metadata, int64, error) {
	var meta Metadata
	prefix := make([]byte, prefixLen)
	if err := readAt(r, prefix, 0); err != nil {
		return meta, 0, fmt.Errorf("%w: short prefix: %v", ErrFormat, err)
	}
	if !bytes.Equal(prefix[:len(magic)], []byte(magic)) {
		return meta, 0, fmt.Errorf("%w: bad magic %q", ErrFormat, prefix[:len(magic)])
	}
	n := int64(binary.LittleEndian.Uint32(prefix[len(magic):]))
	if int64(prefixLen)+n > size {
		return meta, 0, fmt.Errorf("%w: header length %d exceeds file size", ErrFormat, n)
	}
	hdr := make([]byte, n)
	if err := readAt(r, hdr, int64(prefixLen)); err != nil {
		return meta, 0, fmt.Errorf("%w: short header: %v", ErrFormat, err)
	}
	if err := json.Unmarshal(hdr, &meta); err != nil {
		return meta, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err := meta.Validate(); err != nil {
		return meta, 0, err
	}
	off := int64(prefixLen) + n
	if want := off + int64(meta.Samples())*8; want != size {
		return meta, 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrFormat, want, size)
	}
	return meta, off, nil
}

// readAt fills p from r at off. A full read that also reports io.EOF is fine.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func encodeSamples(dst []byte, src []float64) {
	for i, v := range src {
		binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(v))
	}
}

func decodeSamples(dst []float64, src []byte) {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
	}
}

// planeBytes serialises a W x H plane in storage order (x fastest).
func planeBytes(plane *mat.Dense) []byte {
	w, h := plane.Dims()
	samples := make([]float64, w*h)
	for x := range w {
		for y := range h {
			samples[x+y*w] = plane.At(x, y)
		}
	}
	buf := make([]byte, len(samples)*8)
	encodeSamples(buf, samples)
	return buf
}
