package camera

import (
	"context"
	"image"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Scene describes a synthetic grayscale frame: a uniform background with one
// bright pixel.
type Scene struct {
	Width      int
	Height     int
	Background uint8
	Spot       image.Point
	Intensity  uint8
}

// SyntheticSource renders the same Scene on every fetch.
type SyntheticSource struct {
	scene  Scene
	closed atomic.Bool
	frames atomic.Uint64
}

// NewSyntheticSource creates a source for scene.
func NewSyntheticSource(scene Scene) *SyntheticSource {
	return &SyntheticSource{scene: scene}
}

// Scene returns the rendered scene.
func (s *SyntheticSource) Scene() Scene {
	return s.scene
}

// Frames returns how many frames have been fetched.
func (s *SyntheticSource) Frames() uint64 {
	return s.frames.Load()
}

// Fetch renders a fresh frame.
func (s *SyntheticSource) Fetch(ctx context.Context) (gocv.Mat, error) {
	if s.closed.Load() {
		return gocv.NewMat(), ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return gocv.NewMat(), err
	}
	if s.scene.Width <= 0 || s.scene.Height <= 0 {
		return gocv.NewMat(), ErrEmptyFrame
	}

	s.frames.Add(1)
	return Render(s.scene), nil
}

// Close marks the source closed.
func (s *SyntheticSource) Close() error {
	s.closed.Store(true)
	return nil
}

// Render draws scene into a new single-channel Mat. The caller owns it.
func Render(scene Scene) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(scene.Background), 0, 0, 0),
		scene.Height, scene.Width, gocv.MatTypeCV8U,
	)
	p := scene.Spot
	if p.X >= 0 && p.X < scene.Width && p.Y >= 0 && p.Y < scene.Height {
		img.SetUCharAt(p.Y, p.X, scene.Intensity)
	}
	return img
}
