// Package camera provides frame sources for the servo loop: a network
// camera's snapshot endpoint, still image files and a synthetic generator.
package camera

import (
	"context"
	"errors"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when a source produced or decoded no pixels.
var ErrEmptyFrame = errors.New("empty frame")

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("source closed")

// Source yields one decoded frame per call.
// The caller owns the returned Mat and must Close it. On error the returned
// Mat is empty but still safe to Close.
type Source interface {
	Fetch(ctx context.Context) (gocv.Mat, error)
	Close() error
}

// decode turns an encoded image buffer into a Mat, keeping the source's
// channel layout (gray, BGR or BGRA).
func decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyFrame
	}
	img, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return gocv.NewMat(), err
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), ErrEmptyFrame
	}
	return img, nil
}
