package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpectrum(t *testing.T) {
	s := New(3, 2)
	w, h := s.Dims()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)

	s.Set(1, 0, 3+4i)
	s.Set(2, 1, -6)
	assert.Equal(t, 3+4i, s.Raw()[2])
	assert.Equal(t, 5.0, s.Abs(1, 0))
	assert.Equal(t, 6.0, s.MaxAbs(-1, -1))
	assert.Equal(t, 5.0, s.MaxAbs(2, 1))

	m := s.Magnitude()
	assert.Equal(t, 5.0, m.At(1, 0))
	assert.Equal(t, 6.0, m.At(2, 1))

	c := s.Clone()
	c.Set(1, 0, 0)
	assert.Equal(t, 3+4i, s.At(1, 0))
}

func TestFromRaw(t *testing.T) {
	data := make([]complex128, 6)
	s := FromRaw(2, 3, data)
	s.Set(1, 2, 1i)
	assert.Equal(t, 1i, data[5])

	assert.Panics(t, func() { FromRaw(2, 2, data) })
}
