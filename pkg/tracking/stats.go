package tracking

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultStatsWindow is how many recent cycles the period statistics cover.
const DefaultStatsWindow = 100

// CycleStats summarizes recent cycle durations.
type CycleStats struct {
	Cycles uint64        `json:"cycles"`
	Window int           `json:"window"` // Cycles the durations below cover
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
}

// cycleWindow holds the last n cycle durations in seconds.
type cycleWindow struct {
	mu     sync.Mutex
	win    []float64
	n, i   int
	l      int
	cycles uint64
}

func newCycleWindow(n int) *cycleWindow {
	if n <= 0 {
		n = DefaultStatsWindow
	}
	return &cycleWindow{n: n, win: make([]float64, n)}
}

// add records one cycle.
func (w *cycleWindow) add(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.win[w.i] = d.Seconds()
	w.i = (w.i + 1) % w.n
	if w.l != w.n {
		w.l++
	}
	w.cycles++
}

// summary computes statistics over the current window.
func (w *cycleWindow) summary() CycleStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := CycleStats{Cycles: w.cycles, Window: w.l}
	if w.l == 0 {
		return s
	}
	vals := w.win[:w.l]
	mean, std := stat.MeanStdDev(vals, nil)
	if w.l == 1 {
		std = 0
	}
	s.Mean = seconds(mean)
	s.StdDev = seconds(std)
	s.Min = seconds(floats.Min(vals))
	s.Max = seconds(floats.Max(vals))
	return s
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
