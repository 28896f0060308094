package display

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

// Window titles
const (
	NaiveWindow  = "Naive"
	RobustWindow = "Robust"
)

// QuitKey closes the windows and stops the loop.
const QuitKey = 'q'

// Windows shows the naive and robust views in two desktop windows. It must
// be used from the goroutine that created it, since most GUI backends are
// thread-bound.
type Windows struct {
	naive  *gocv.Window
	robust *gocv.Window
	style  Style

	quit      atomic.Bool
	closeOnce sync.Once
}

var _ tracking.Presenter = (*Windows)(nil)

// NewWindows opens both windows.
func NewWindows(style Style) *Windows {
	return &Windows{
		naive:  gocv.NewWindow(NaiveWindow),
		robust: gocv.NewWindow(RobustWindow),
		style:  style,
	}
}

// Present draws both views and polls the keyboard for one millisecond.
func (w *Windows) Present(frame gocv.Mat, res tracking.CycleResult) error {
	naive, err := AnnotateNaive(frame, res, w.style)
	if err != nil {
		return fmt.Errorf("naive view: %w", err)
	}
	defer naive.Close()
	w.naive.IMShow(naive)

	robust, err := AnnotateRobust(frame, res, w.style)
	if err != nil {
		return fmt.Errorf("robust view: %w", err)
	}
	defer robust.Close()
	w.robust.IMShow(robust)

	if key := w.robust.WaitKey(1); key&0xFF == QuitKey {
		w.quit.Store(true)
	}
	return nil
}

// QuitRequested reports whether the quit key was pressed.
func (w *Windows) QuitRequested() bool {
	return w.quit.Load()
}

// Close destroys both windows.
func (w *Windows) Close() error {
	w.closeOnce.Do(func() {
		w.naive.Close()
		w.robust.Close()
	})
	return nil
}
