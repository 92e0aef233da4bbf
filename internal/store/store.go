package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yyyoichi/httpcache-go"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFound = errors.New("image not found")
	ErrExists   = errors.New("image already exists")
	ErrFormat   = errors.New("malformed image")
	ErrPlane    = errors.New("invalid plane")
	ErrReadOnly = errors.New("image identity is read-only")
)

// Store reads and writes images identified by file path. Identities with an
// http or https scheme are read-only and fetched through an HTTP cache.
type Store struct {
	client *httpcache.Client
}

type Option func(*Store)

// WithHTTPCache keeps fetched remote images under dir.
func WithHTTPCache(dir string) Option {
	return func(s *Store) {
		s.client = newCachedClient(dir)
	}
}

// WithHTTPClient replaces the client used for remote identities.
func WithHTTPClient(c *httpcache.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

func New(opts ...Option) *Store {
	s := new(Store)
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = newCachedClient(filepath.Join(os.TempDir(), "ripple_zero_http_cache"))
	}
	return s
}

// Open opens an image for reading. The caller must Close the handle.
func (s *Store) Open(ctx context.Context, id string) (*Handle, error) {
	if isRemote(id) {
		return s.openRemote(ctx, id)
	}
	f, err := os.Open(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to open %s: %w", id, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", id, err)
	}
	h, err := newHandle(id, f, fi.Size(), f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return h, nil
}

// Exists reports whether a local image is present.
func (s *Store) Exists(id string) (bool, error) {
	if isRemote(id) {
		return false, fmt.Errorf("%w: %s", ErrReadOnly, id)
	}
	_, err := os.Stat(id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *Store) Remove(id string) error {
	if isRemote(id) {
		return fmt.Errorf("%w: %s", ErrReadOnly, id)
	}
	if err := os.Remove(id); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// Create writes a new image from meta and a full sample cube in storage order.
func (s *Store) Create(id string, meta Metadata, data []float64, overwrite bool) error {
	hdr, err := encodeHeader(meta)
	if err != nil {
		return err
	}
	if len(data) != meta.Samples() {
		return fmt.Errorf("%w: %d samples for shape %v", ErrFormat, len(data), meta.Shape)
	}
	if err := s.checkTarget(id, overwrite); err != nil {
		return err
	}
	return stage(id, func(f *os.File) error {
		if _, err := f.Write(hdr); err != nil {
			return err
		}
		buf := make([]byte, len(data)*8)
		encodeSamples(buf, data)
		_, err := f.Write(buf)
		return err
	})
}

// Commit writes a copy of source with the plane selected by sel replaced by
// plane. Every other plane and the whole header of source are kept. If id
// exists and overwrite is false nothing is written and ErrExists is returned.
// The copy is staged next to id and renamed over it once complete.
func (s *Store) Commit(ctx context.Context, id, source string, sel []int, plane *mat.Dense, overwrite bool) error {
	if err := s.checkTarget(id, overwrite); err != nil {
		return err
	}
	src, err := s.Open(ctx, source)
	if err != nil {
		return err
	}
	defer src.Close()

	off, err := src.planeOffset(sel)
	if err != nil {
		return err
	}
	w, h := src.meta.PlaneDims()
	if pw, ph := plane.Dims(); pw != w || ph != h {
		return fmt.Errorf("%w: plane is %dx%d, image plane is %dx%d", ErrPlane, pw, ph, w, h)
	}

	return stage(id, func(f *os.File) error {
		if _, err := io.Copy(f, io.NewSectionReader(src.r, 0, src.size)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", source, err)
		}
		if _, err := f.WriteAt(planeBytes(plane), off); err != nil {
			return fmt.Errorf("failed to write plane: %w", err)
		}
		return nil
	})
}

func (s *Store) checkTarget(id string, overwrite bool) error {
	exists, err := s.Exists(id)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	return nil
}

// stage writes a temporary file in the directory of id, syncs it and renames
// it over id.
func stage(id string, write func(*os.File) error) (err error) {
	dir := filepath.Dir(id)
	f, err := os.CreateTemp(dir, "."+filepath.Base(id)+".stage-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", id, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to stage %s: %w", id, err)
	}
	if err = write(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", f.Name(), err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", f.Name(), err)
	}
	if err = os.Rename(f.Name(), id); err != nil {
		return fmt.Errorf("failed to replace %s: %w", id, err)
	}
	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}

func isRemote(id string) bool {
	return strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")
}
