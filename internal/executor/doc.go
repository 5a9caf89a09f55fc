// Package executor runs a pipeline.
//
// An Executor moves through Ready, Running and then Completed or Failed. It
// runs the source, every step, and the sink strictly in order on the calling
// goroutine, threading one ExecutionContext through all of them. No step is
// retried; the first failure ends the run.
//
// When a resource is supplied it is acquired before the source runs and
// released exactly once when the run ends, whatever the outcome. If the run
// fails and the resource is pipeline.Transactional, Rollback is called once
// before Release. The caller always sees the original step failure, possibly
// joined with resource errors.
package executor
