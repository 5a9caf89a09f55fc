package executor

// State is the lifecycle state of an Executor.
type State int32

const (
	// Ready means constructed and not yet run.
	Ready State = iota
	// Running means a run is in progress.
	Running
	// Completed means the last run finished without error.
	Completed
	// Failed means the last run stopped on an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
