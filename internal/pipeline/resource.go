package pipeline

import "context"

// Resource is an external handle scoped to a single run, such as a database
// session. The executor acquires it before the source runs and releases it
// exactly once when the run ends.
type Resource interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// Transactional is a Resource that can discard the work done during the run.
// The executor calls Rollback once, before Release, when a step fails.
type Transactional interface {
	Resource
	Rollback(ctx context.Context) error
}
