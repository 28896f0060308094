// Package detection locates the brightest spot in a camera frame.
package detection

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKernel is returned for a smoothing radius that is not a
	// positive odd integer.
	ErrInvalidKernel = errors.New("invalid smoothing kernel")

	// ErrEmptyFrame is returned when the frame has no pixels.
	ErrEmptyFrame = errors.New("empty frame")

	// ErrUnsupportedFrame is returned for channel counts other than 1, 3 or 4.
	ErrUnsupportedFrame = errors.New("unsupported frame format")
)

// KernelError describes a rejected smoothing radius.
type KernelError struct {
	Radius int
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("smoothing radius %d must be a positive odd integer", e.Radius)
}

// Unwrap lets errors.Is match ErrInvalidKernel.
func (e *KernelError) Unwrap() error {
	return ErrInvalidKernel
}

// Filter names a smoothing policy.
type Filter int

const (
	// FilterNone takes the raw pixel maximum.
	FilterNone Filter = iota
	// FilterGaussian blurs before taking the maximum.
	FilterGaussian
)

// Smoothing selects how the grayscale frame is filtered before the maximum
// is taken. The zero value is None.
type Smoothing struct {
	Filter Filter
	// Radius is the Gaussian kernel size in pixels (radius x radius).
	Radius int
}

// None takes the raw pixel maximum.
var None = Smoothing{}

// Gaussian smooths with a radius x radius Gaussian kernel. The standard
// deviation is derived from the kernel size.
func Gaussian(radius int) Smoothing {
	return Smoothing{Filter: FilterGaussian, Radius: radius}
}

// IsNone reports whether no smoothing is applied.
func (s Smoothing) IsNone() bool {
	return s.Filter == FilterNone
}

// Validate checks the kernel radius. None is always valid.
func (s Smoothing) Validate() error {
	if s.IsNone() {
		return nil
	}
	return ValidateRadius(s.Radius)
}

// String returns "none" or "gaussian(r)".
func (s Smoothing) String() string {
	if s.IsNone() {
		return "none"
	}
	return fmt.Sprintf("gaussian(%d)", s.Radius)
}

// ValidateRadius reports a *KernelError unless radius is positive and odd.
func ValidateRadius(radius int) error {
	if radius <= 0 || radius%2 == 0 {
		return &KernelError{Radius: radius}
	}
	return nil
}
