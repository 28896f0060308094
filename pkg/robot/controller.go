package robot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Angle limits in degrees
const (
	MinAngle        = 0.0
	DefaultMaxAngle = 90.0
)

// DefaultSettleDelay gives the servo time to move before the next command.
const DefaultSettleDelay = 100 * time.Millisecond

// errorLogInterval limits how often write failures are logged.
const errorLogInterval = 5 * time.Second

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SettledServo is the servo the control loop talks to.
// Every command is clamped to [0, MaxAngle], written, and followed by the
// settle delay, which makes the delay a lower bound on the cycle period.
type SettledServo struct {
	servo    Servo
	maxAngle float64
	settle   time.Duration
	logger   *slog.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	lastAngle     float64
	hasLast       bool
	commandCount  uint64
	errorCount    uint64
	lastErrorTime time.Time
	closeOnce     sync.Once
	closeErr      error
}

// NewSettledServo wraps servo. A maxAngle <= 0 selects DefaultMaxAngle.
func NewSettledServo(servo Servo, maxAngle float64, settle time.Duration, logger *slog.Logger) *SettledServo {
	if maxAngle <= 0 {
		maxAngle = DefaultMaxAngle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettledServo{
		servo:    servo,
		maxAngle: maxAngle,
		settle:   settle,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// SetAngle clamps, writes and then waits out the settle delay. The delay is
// observed even when the write fails. A cancelled context cuts the wait
// short and is returned.
func (c *SettledServo) SetAngle(ctx context.Context, degrees float64) error {
	angle := clamp(degrees, MinAngle, c.maxAngle)

	err := c.servo.SetAngle(ctx, angle)

	c.mu.Lock()
	c.commandCount++
	if err == nil {
		c.lastAngle = angle
		c.hasLast = true
	} else {
		// Log errors (but don't spam - max once per errorLogInterval)
		c.errorCount++
		if c.lastErrorTime.IsZero() || time.Since(c.lastErrorTime) > errorLogInterval {
			c.logger.Warn("servo write failed", "angle", angle, "error", err, "total_errors", c.errorCount)
			c.lastErrorTime = time.Now()
		}
	}
	c.mu.Unlock()

	if c.settle > 0 {
		if serr := c.sleep(ctx, c.settle); serr != nil && err == nil {
			return serr
		}
	}
	return err
}

// LastAngle returns the last angle written successfully.
func (c *SettledServo) LastAngle() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAngle, c.hasLast
}

// Stats returns the number of commands issued and how many failed.
func (c *SettledServo) Stats() (commands, errors uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandCount, c.errorCount
}

// MaxAngle returns the upper clamp bound.
func (c *SettledServo) MaxAngle() float64 {
	return c.maxAngle
}

// Close closes the wrapped servo once.
func (c *SettledServo) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.servo.Close()
	})
	return c.closeErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
