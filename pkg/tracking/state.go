package tracking

// LoopState is the control loop's lifecycle state.
type LoopState int32

const (
	// Running is the state of a freshly constructed loop.
	Running LoopState = iota
	// Stopped is terminal. Resources have been released.
	Stopped
)

func (s LoopState) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
