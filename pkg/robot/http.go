package robot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-suntrack/internal/httpc"
)

// DefaultHTTPTimeout bounds each servo request. Short so a hung board
// cannot stall the loop for long.
const DefaultHTTPTimeout = 2 * time.Second

// HTTPServo drives a servo through a board that exposes an HTTP endpoint,
// such as ESP32 firmware accepting {"pin":2,"angle":45}.
type HTTPServo struct {
	URL    string
	Pin    int
	client *http.Client
	closed atomic.Bool
}

// NewHTTPServo creates a servo that POSTs to url.
func NewHTTPServo(url string, pin int, timeout time.Duration) *HTTPServo {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPServo{
		URL:    url,
		Pin:    pin,
		client: httpc.NewClient(timeout),
	}
}

type angleRequest struct {
	Pin   int     `json:"pin"`
	Angle float64 `json:"angle"`
}

// SetAngle posts the angle command.
func (s *HTTPServo) SetAngle(ctx context.Context, degrees float64) error {
	if s.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(angleRequest{Pin: s.Pin, Angle: degrees})
	if err != nil {
		return fmt.Errorf("failed to marshal angle payload: %w", err)
	}
	if err := httpc.PostJSON(ctx, s.client, s.URL, data); err != nil {
		return fmt.Errorf("servo request failed: %w", err)
	}
	return nil
}

// Close drops idle connections. Further commands fail.
func (s *HTTPServo) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.client.CloseIdleConnections()
	return nil
}
