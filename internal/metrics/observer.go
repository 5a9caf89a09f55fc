// Package metrics records pipeline run telemetry.
//
// The executor and the app report through the Observer interface, so the
// engine carries no Prometheus dependency of its own. Prometheus is the
// shipped backend; Nop is used when nothing is configured.
package metrics

import "time"

// Step outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Observer receives run and step lifecycle events. Implementations must be
// safe for concurrent use, since independent runs may share one observer.
type Observer interface {
	RunStarted(runID string)
	StepFinished(stepID string, d time.Duration, err error)
	RunFinished(state string, d time.Duration)
	StepsPruned(n int)
}

// Nop discards every event.
type Nop struct{}

func (Nop) RunStarted(string)                         {}
func (Nop) StepFinished(string, time.Duration, error) {}
func (Nop) RunFinished(string, time.Duration)         {}
func (Nop) StepsPruned(int)                           {}

// StatusOf maps a step error to its status label.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
