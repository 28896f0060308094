// Package tracking drives a single-axis servo toward the brightest spot in
// the camera image.
package tracking

// Servo travel. The rig's servo axis is co-linear with the image's vertical
// axis, so the top row maps to 0° and the bottom row to DefaultMaxAngle.
const (
	// DefaultMaxAngle is the maximum commanded servo angle in degrees.
	DefaultMaxAngle = 90.0

	// DefaultKernelRadius is the Gaussian kernel size for the robust path.
	DefaultKernelRadius = 41

	// DefaultCenteredThreshold is the distance in pixels under which the
	// spot counts as centered.
	DefaultCenteredThreshold = 300.0
)
