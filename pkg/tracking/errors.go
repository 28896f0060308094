package tracking

import "errors"

var (
	// ErrAcquisition means no usable frame could be fetched: timeout,
	// refused connection, bad status, undecodable or empty image.
	ErrAcquisition = errors.New("frame acquisition failed")

	// ErrInvalidDimension means a zero or negative frame size reached the
	// geometry stage.
	ErrInvalidDimension = errors.New("invalid frame dimension")

	// ErrActuatorCommand means the servo rejected or could not deliver a
	// command. It never stops the loop.
	ErrActuatorCommand = errors.New("actuator command failed")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrStopped is returned when stepping or running a loop that has already
// shut down.
var ErrStopped = errors.New("loop stopped")
