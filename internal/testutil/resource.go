package testutil

import (
	"context"
	"sync"
)

// RecordingResource is a pipeline.Transactional that records every lifecycle
// call in order. Set the *Err fields to make a call fail.
type RecordingResource struct {
	mu     sync.Mutex
	Events []string

	AcquireErr  error
	ReleaseErr  error
	RollbackErr error
}

func (r *RecordingResource) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

func (r *RecordingResource) Acquire(context.Context) error {
	r.record("acquire")
	return r.AcquireErr
}

func (r *RecordingResource) Release(context.Context) error {
	r.record("release")
	return r.ReleaseErr
}

func (r *RecordingResource) Rollback(context.Context) error {
	r.record("rollback")
	return r.RollbackErr
}

// Count returns how many times the named event occurred.
func (r *RecordingResource) Count(ev string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e == ev {
			n++
		}
	}
	return n
}

// PlainResource is a pipeline.Resource without rollback support.
type PlainResource struct {
	Acquired int
	Released int
}

func (r *PlainResource) Acquire(context.Context) error {
	r.Acquired++
	return nil
}

func (r *PlainResource) Release(context.Context) error {
	r.Released++
	return nil
}
