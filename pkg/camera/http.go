package camera

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-suntrack/internal/httpc"
	"gocv.io/x/gocv"
)

// HTTPSource fetches a JPEG snapshot from a camera URL on every call,
// e.g. an ESP32-CAM's /cam-hi.jpg.
type HTTPSource struct {
	url     string
	timeout time.Duration
	client  *http.Client
	closed  atomic.Bool
}

// NewHTTPSource creates a snapshot source. Each Fetch is bounded by timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:     url,
		timeout: timeout,
		client:  httpc.NewClient(timeout),
	}
}

// URL returns the snapshot endpoint.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch downloads and decodes one frame.
func (s *HTTPSource) Fetch(ctx context.Context) (gocv.Mat, error) {
	if s.closed.Load() {
		return gocv.NewMat(), ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := httpc.GetBytes(ctx, s.client, s.url)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("fetch %s: %w", s.url, err)
	}

	img, err := decode(data)
	if err != nil {
		return img, fmt.Errorf("decode %d bytes from %s: %w", len(data), s.url, err)
	}
	return img, nil
}

// Close releases idle connections. Further fetches fail.
func (s *HTTPSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.client.CloseIdleConnections()
	return nil
}
