package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yyyoichi/httpcache-go"
)

func newCachedClient(dir string) *httpcache.Client {
	return &httpcache.Client{
		Client:  http.DefaultClient,
		Cache:   httpcache.NewStorageCache(dir),
		Handler: httpcache.NewDefaultHandler(),
	}
}

// openRemote downloads the whole image; the handle reads from memory.
func (s *Store) openRemote(ctx context.Context, id string) (*Handle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", id, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	default:
		return nil, fmt.Errorf("failed to fetch %s: bad status: %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}
	return newHandle(id, bytes.NewReader(body), int64(len(body)), nil)
}
