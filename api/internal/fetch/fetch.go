// Package fetch downloads remote background images.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inkify/api/internal/util"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 8 << 20
)

type HTTPFetcher struct {
	MaxBytes int64
	httpc    *http.Client
}

func New(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		MaxBytes: maxBytes,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Get returns the body of url when it is an image no larger than MaxBytes.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("fetch %s: unsupported scheme", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > f.MaxBytes {
		return nil, fmt.Errorf("fetch %s: %d bytes exceeds limit %d", url, resp.ContentLength, f.MaxBytes)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > f.MaxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds limit %d", url, f.MaxBytes)
	}
	if mime := util.SniffImage(b); mime == "" {
		return nil, fmt.Errorf("fetch %s: not an image", url)
	}
	return b, nil
}
