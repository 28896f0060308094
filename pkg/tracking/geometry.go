package tracking

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
)

// Center returns the frame center using integer floor division.
func Center(width, height int) image.Point {
	return image.Pt(width/2, height/2)
}

// DistanceToCenter returns the Euclidean distance from p to the frame
// center, together with that center.
func DistanceToCenter(p image.Point, width, height int) (float64, image.Point, error) {
	if width <= 0 || height <= 0 {
		return 0, image.Point{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	c := Center(width, height)
	d := floats.Distance(
		[]float64{float64(p.X), float64(p.Y)},
		[]float64{float64(c.X), float64(c.Y)},
		2,
	)
	return d, c, nil
}

// VerticalPositionToAngle maps a row to a servo angle in [0, maxAngle]:
// angle = maxAngle * y / height. Rows outside the frame are clamped.
// Only the vertical position is mapped; horizontal offset has no axis.
func VerticalPositionToAngle(y, height int, maxAngle float64) (float64, error) {
	if height <= 0 {
		return 0, fmt.Errorf("%w: height %d", ErrInvalidDimension, height)
	}
	angle := maxAngle * (float64(y) / float64(height))
	return clamp(angle, 0, maxAngle), nil
}

// clamp limits a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
