package camera

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// FileSource re-reads a still image on every fetch. Useful for replaying a
// captured frame against the loop.
type FileSource struct {
	path   string
	closed atomic.Bool
}

// NewFileSource checks that path exists and returns a source for it.
func NewFileSource(path string) (*FileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("image file: %w", err)
	}
	return &FileSource{path: path}, nil
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (gocv.Mat, error) {
	if s.closed.Load() {
		return gocv.NewMat(), ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return gocv.NewMat(), err
	}

	img := gocv.IMRead(s.path, gocv.IMReadUnchanged)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("read %s: %w", s.path, ErrEmptyFrame)
	}
	return img, nil
}

// Close marks the source closed.
func (s *FileSource) Close() error {
	s.closed.Store(true)
	return nil
}
