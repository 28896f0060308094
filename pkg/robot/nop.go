package robot

import (
	"context"
	"log/slog"
	"sync"
)

// NopServo accepts every command without hardware, logging each angle at
// debug level. Used for dry runs against recorded or synthetic frames.
type NopServo struct {
	mu     sync.Mutex
	last   float64
	count  uint64
	logger *slog.Logger
}

// NewNopServo creates a dry-run servo.
func NewNopServo(logger *slog.Logger) *NopServo {
	if logger == nil {
		logger = slog.Default()
	}
	return &NopServo{logger: logger}
}

// SetAngle records the angle.
func (s *NopServo) SetAngle(ctx context.Context, degrees float64) error {
	s.mu.Lock()
	s.last = degrees
	s.count++
	s.mu.Unlock()
	s.logger.Debug("servo angle (dry run)", "angle", degrees)
	return ctx.Err()
}

// Last returns the last angle and how many commands were received.
func (s *NopServo) Last() (float64, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.count
}

// Close is a no-op.
func (s *NopServo) Close() error {
	return nil
}
