package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/go-suntrack/pkg/tracking/detection"
)

// Path names one of the two estimator paths.
type Path string

const (
	PathNaive  Path = "naive"
	PathRobust Path = "robust"
)

// ParsePath converts a path name into a Path.
func ParsePath(value string) (Path, error) {
	switch Path(strings.ToLower(strings.TrimSpace(value))) {
	case PathNaive:
		return PathNaive, nil
	case PathRobust:
		return PathRobust, nil
	default:
		return "", fmt.Errorf("unknown path %q (want naive or robust)", value)
	}
}

// AcquisitionConfig bounds frame fetching.
type AcquisitionConfig struct {
	Timeout    time.Duration // Per-fetch deadline
	MaxRetries int           // 0 = first failure is fatal
	Backoff    time.Duration // Delay before the first retry, doubled each time
	MaxBackoff time.Duration // Upper bound on a single retry delay
}

// Config holds all tunable parameters for the servo loop.
type Config struct {
	// Endpoints, informational for logs and the dashboard.
	// The loop receives opened source and servo instances.
	CameraEndpoint string
	ActuatorPort   string

	// Detection
	KernelRadius int // Gaussian kernel size for the robust path (odd, > 0)

	// Classification
	CenteredThresholdPixels float64 // Distance under which the spot is centered
	ClassifyPath            Path    // Which path's distance drives classification

	// Actuation
	MaxAngleDegrees  float64       // Servo travel, top row = 0, bottom row = max
	CycleSettleDelay time.Duration // Wait after every servo write

	Acquisition AcquisitionConfig
}

// DefaultConfig returns the reference rig's configuration.
func DefaultConfig() Config {
	return Config{
		KernelRadius:            DefaultKernelRadius,
		CenteredThresholdPixels: DefaultCenteredThreshold,
		ClassifyPath:            PathRobust,
		MaxAngleDegrees:         DefaultMaxAngle,
		CycleSettleDelay:        100 * time.Millisecond,
		Acquisition: AcquisitionConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 0,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
	}
}

// ResilientConfig returns DefaultConfig with retry-with-backoff on frame
// acquisition instead of stopping at the first failure.
func ResilientConfig() Config {
	cfg := DefaultConfig()
	cfg.Acquisition.MaxRetries = 5
	return cfg
}

// Validate checks the configuration. Kernel problems wrap
// detection.ErrInvalidKernel.
func (c Config) Validate() error {
	if err := detection.ValidateRadius(c.KernelRadius); err != nil {
		return &ConfigError{Field: "KernelRadius", Message: err.Error(), Err: err}
	}
	if c.MaxAngleDegrees <= 0 {
		return &ConfigError{Field: "MaxAngleDegrees", Message: "must be > 0"}
	}
	if c.CenteredThresholdPixels < 0 {
		return &ConfigError{Field: "CenteredThresholdPixels", Message: "must be >= 0"}
	}
	if c.CycleSettleDelay < 0 {
		return &ConfigError{Field: "CycleSettleDelay", Message: "must be >= 0"}
	}
	if c.ClassifyPath != PathNaive && c.ClassifyPath != PathRobust {
		return &ConfigError{Field: "ClassifyPath", Message: fmt.Sprintf("unknown path %q", c.ClassifyPath)}
	}
	if c.Acquisition.Timeout <= 0 {
		return &ConfigError{Field: "Acquisition.Timeout", Message: "must be > 0"}
	}
	if c.Acquisition.MaxRetries < 0 {
		return &ConfigError{Field: "Acquisition.MaxRetries", Message: "must be >= 0"}
	}
	if c.Acquisition.MaxRetries > 0 && c.Acquisition.Backoff <= 0 {
		return &ConfigError{Field: "Acquisition.Backoff", Message: "must be > 0 when retries are enabled"}
	}
	if c.Acquisition.MaxRetries > 0 && c.Acquisition.MaxBackoff < c.Acquisition.Backoff {
		return &ConfigError{Field: "Acquisition.MaxBackoff", Message: "must be >= Backoff when retries are enabled"}
	}
	return nil
}

// maxBackoffCeiling bounds the delay when MaxBackoff is unset, so doubling
// can never overflow time.Duration.
const maxBackoffCeiling = time.Minute

// backoff returns the delay before retry n (1-based), doubling from Backoff
// and capped at MaxBackoff.
func (a AcquisitionConfig) backoff(n int) time.Duration {
	ceiling := a.MaxBackoff
	if ceiling <= 0 {
		ceiling = maxBackoffCeiling
	}
	d := a.Backoff
	for i := 1; i < n && d < ceiling; i++ {
		d *= 2
	}
	if d > ceiling {
		return ceiling
	}
	return d
}
