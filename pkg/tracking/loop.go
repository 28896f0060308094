package tracking

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-suntrack/internal/log"
	"github.com/teslashibe/go-suntrack/pkg/camera"
	"github.com/teslashibe/go-suntrack/pkg/robot"
	"github.com/teslashibe/go-suntrack/pkg/tracking/detection"
)

// Labels for the two estimator paths.
const (
	LabelNaive  = "Naive"
	LabelRobust = "Robust"
)

// Classification texts.
const (
	MessageCentered    = "Brightest spot is at the center!"
	MessageNotCentered = "Brightest spot is not at the center."
)

// Estimate is one estimator path's outcome for a cycle.
type Estimate struct {
	Label    string
	Spot     image.Point
	Distance float64
	Angle    float64

	// ActuatorErr wraps ErrActuatorCommand when the servo write failed.
	ActuatorErr error
}

// CycleResult is the per-cycle snapshot handed to presenters.
type CycleResult struct {
	Seq          uint64
	Width        int
	Height       int
	Center       image.Point
	KernelRadius int

	Naive  Estimate
	Robust Estimate

	ClassifyPath Path
	Centered     bool
	Message      string

	Duration time.Duration
}

// Classified returns the estimate that drove classification.
func (r CycleResult) Classified() Estimate {
	if r.ClassifyPath == PathNaive {
		return r.Naive
	}
	return r.Robust
}

// Presenter consumes cycle results for display. Present must not retain
// frame after returning; copy what is needed.
type Presenter interface {
	Present(frame gocv.Mat, res CycleResult) error
	QuitRequested() bool
	Close() error
}

// Option configures a Loop.
type Option func(*Loop)

// WithPresenter adds a presenter. Presenters run in the order added.
func WithPresenter(p Presenter) Option {
	return func(l *Loop) {
		if p != nil {
			l.presenters = append(l.presenters, p)
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStatsWindow sets how many cycles the period statistics cover.
func WithStatsWindow(n int) Option {
	return func(l *Loop) {
		l.stats = newCycleWindow(n)
	}
}

// Loop is the closed-loop servo controller. Each cycle fetches a frame,
// estimates the brightest spot twice (raw and smoothed), drives the servo
// with both estimates, naive first and robust last, and classifies the
// result against the centered threshold.
type Loop struct {
	config     Config
	source     camera.Source
	servo      *robot.SettledServo
	presenters []Presenter
	logger     *slog.Logger
	stats      *cycleWindow
	session    string

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	seq           atomic.Uint64
	state         atomic.Int32
	stopRequested atomic.Bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// New validates config and creates a running loop that owns source and
// servo. The servo is wrapped so every command is clamped and followed by
// the settle delay.
func New(config Config, source camera.Source, servo robot.Servo, opts ...Option) (*Loop, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, &ConfigError{Field: "source", Message: "must not be nil"}
	}
	if servo == nil {
		return nil, &ConfigError{Field: "servo", Message: "must not be nil"}
	}

	l := &Loop{
		config:  config,
		source:  source,
		logger:  log.Component("tracking"),
		stats:   newCycleWindow(DefaultStatsWindow),
		session: uuid.NewString(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("session", l.session)
	l.servo = robot.NewSettledServo(servo, config.MaxAngleDegrees, config.CycleSettleDelay,
		l.logger.With("component", "servo"))
	return l, nil
}

// Config returns the loop's configuration.
func (l *Loop) Config() Config {
	return l.config
}

// Session returns the loop's unique run id.
func (l *Loop) Session() string {
	return l.session
}

// State reports Running or Stopped.
func (l *Loop) State() LoopState {
	return LoopState(l.state.Load())
}

// Stop requests a stop. Safe from any goroutine; Run returns after the
// current cycle.
func (l *Loop) Stop() {
	l.stopRequested.Store(true)
}

// Stats returns cycle period statistics.
func (l *Loop) Stats() CycleStats {
	return l.stats.summary()
}

// ServoStats returns how many servo commands were issued and how many failed.
func (l *Loop) ServoStats() (commands, failures uint64) {
	return l.servo.Stats()
}

// Run repeats Step until a stop is requested, a presenter asks to quit, ctx
// is cancelled or a fatal error occurs. Resources are released before it
// returns. Only fatal errors are returned.
func (l *Loop) Run(ctx context.Context) error {
	if l.State() == Stopped {
		return ErrStopped
	}
	defer l.Close()

	l.logger.Info("servo loop started",
		"kernel_radius", l.config.KernelRadius,
		"threshold_px", l.config.CenteredThresholdPixels,
		"classify", l.config.ClassifyPath,
		"settle", l.config.CycleSettleDelay,
		"camera", l.config.CameraEndpoint,
		"actuator", l.config.ActuatorPort,
	)

	for {
		if l.stopRequested.Load() {
			l.logger.Info("servo loop stop requested")
			return nil
		}
		if ctx.Err() != nil {
			l.logger.Info("servo loop cancelled")
			return nil
		}

		res, err := l.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("servo loop cancelled")
				return nil
			}
			l.logger.Error("servo loop stopped", "error", err)
			return err
		}

		l.logger.Debug("cycle",
			"seq", res.Seq,
			"naive", res.Naive.Spot,
			"robust", res.Robust.Spot,
			"distance", res.Classified().Distance,
			"angle", res.Robust.Angle,
			"centered", res.Centered,
			"took", res.Duration,
		)
	}
}

// Step runs one cycle. Acquisition, detection and geometry failures are
// returned and are fatal to Run. Servo failures are recorded on the
// estimates and logged; the cycle completes.
func (l *Loop) Step(ctx context.Context) (CycleResult, error) {
	if l.State() == Stopped {
		return CycleResult{}, ErrStopped
	}
	start := time.Now()

	frame, err := l.acquire(ctx)
	if err != nil {
		return CycleResult{}, err
	}
	defer frame.Close()

	res := CycleResult{
		Width:        frame.Cols(),
		Height:       frame.Rows(),
		KernelRadius: l.config.KernelRadius,
		ClassifyPath: l.config.ClassifyPath,
	}

	naive, center, err := l.estimate(ctx, frame, LabelNaive, detection.None)
	if err != nil {
		return CycleResult{}, err
	}
	robust, _, err := l.estimate(ctx, frame, LabelRobust, detection.Gaussian(l.config.KernelRadius))
	if err != nil {
		return CycleResult{}, err
	}
	res.Center = center
	res.Naive = naive
	res.Robust = robust

	res.Centered = res.Classified().Distance < l.config.CenteredThresholdPixels
	if res.Centered {
		res.Message = MessageCentered
	} else {
		res.Message = MessageNotCentered
	}

	res.Seq = l.seq.Add(1)
	res.Duration = time.Since(start)
	l.stats.add(res.Duration)

	for _, p := range l.presenters {
		if err := p.Present(frame, res); err != nil {
			l.logger.Warn("presenter failed", "seq", res.Seq, "error", err)
		}
		if p.QuitRequested() {
			l.Stop()
		}
	}

	return res, nil
}

// estimate locates the spot under smoothing, maps it and commands the servo.
func (l *Loop) estimate(ctx context.Context, frame gocv.Mat, label string, smoothing detection.Smoothing) (Estimate, image.Point, error) {
	spot, err := detection.LocateBrightest(frame, smoothing)
	if err != nil {
		return Estimate{}, image.Point{}, fmt.Errorf("%s estimate: %w", label, err)
	}

	w, h := frame.Cols(), frame.Rows()
	distance, center, err := DistanceToCenter(spot, w, h)
	if err != nil {
		return Estimate{}, image.Point{}, err
	}
	angle, err := VerticalPositionToAngle(spot.Y, h, l.config.MaxAngleDegrees)
	if err != nil {
		return Estimate{}, image.Point{}, err
	}

	est := Estimate{Label: label, Spot: spot, Distance: distance, Angle: angle}
	if err := l.servo.SetAngle(ctx, angle); err != nil {
		if ctx.Err() != nil {
			return Estimate{}, image.Point{}, ctx.Err()
		}
		est.ActuatorErr = fmt.Errorf("%w: %s angle %.1f: %w", ErrActuatorCommand, label, angle, err)
	}
	return est, center, nil
}

// acquire fetches a frame, retrying with exponential backoff when
// configured. Exhaustion returns ErrAcquisition.
func (l *Loop) acquire(ctx context.Context) (gocv.Mat, error) {
	acq := l.config.Acquisition

	var lastErr error
	for attempt := 0; attempt <= acq.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := acq.backoff(attempt)
			l.logger.Warn("frame fetch failed, retrying",
				"attempt", attempt, "of", acq.MaxRetries, "delay", delay, "error", lastErr)
			if err := l.sleep(ctx, delay); err != nil {
				return gocv.NewMat(), err
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, acq.Timeout)
		frame, err := l.source.Fetch(fetchCtx)
		cancel()

		if err == nil && (frame.Empty() || frame.Rows() <= 0 || frame.Cols() <= 0) {
			err = camera.ErrEmptyFrame
		}
		if err == nil {
			return frame, nil
		}
		frame.Close()

		if ctx.Err() != nil {
			return gocv.NewMat(), ctx.Err()
		}
		lastErr = err
	}
	return gocv.NewMat(), fmt.Errorf("%w: %w", ErrAcquisition, lastErr)
}

// Close stops the loop and releases the source, servo and presenters.
// Only the first call does work; later calls return the same error.
func (l *Loop) Close() error {
	l.shutdownOnce.Do(func() {
		l.stopRequested.Store(true)
		l.state.Store(int32(Stopped))

		var errs []error
		if err := l.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close source: %w", err))
		}
		if err := l.servo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close servo: %w", err))
		}
		for _, p := range l.presenters {
			if err := p.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close presenter: %w", err))
			}
		}
		l.shutdownErr = errors.Join(errs...)

		stats := l.stats.summary()
		commands, failures := l.servo.Stats()
		l.logger.Info("servo loop shut down",
			"cycles", stats.Cycles,
			"mean_period", stats.Mean,
			"servo_commands", commands,
			"servo_failures", failures,
		)
		if l.shutdownErr != nil {
			l.logger.Warn("shutdown errors", "error", l.shutdownErr)
		}
	})
	return l.shutdownErr
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
