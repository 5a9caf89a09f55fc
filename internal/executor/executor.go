package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/metrics"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
)

// ErrAlreadyRunning is returned when Execute is called on an Executor whose
// previous run has not finished. Concurrent runs need separate Executors.
var ErrAlreadyRunning = errors.New("executor: a run is already in progress")

// Executor runs pipelines one at a time.
type Executor struct {
	observer metrics.Observer
	newRunID func() string

	mu    sync.Mutex
	state State
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver reports run and step events to o.
func WithObserver(o metrics.Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithRunIDFunc overrides run id generation.
func WithRunIDFunc(fn func() string) Option {
	return func(e *Executor) {
		if fn != nil {
			e.newRunID = fn
		}
	}
}

// New creates an Executor in the Ready state.
func New(opts ...Option) *Executor {
	e := &Executor{
		observer: metrics.Nop{},
		newRunID: uuid.NewString,
		state:    Ready,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		return false
	}
	e.state = Running
	return true
}

func (e *Executor) finish(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// Execute runs p with an optional resource and returns the final context.
// On failure the returned context is nil and the error wraps the failing
// step's error in a *pipeline.StepExecutionError.
func (e *Executor) Execute(ctx context.Context, p *pipeline.Pipeline, res pipeline.Resource) (result *pipeline.ExecutionContext, err error) {
	if !e.begin() {
		return nil, ErrAlreadyRunning
	}

	runID := e.newRunID()
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	ec := pipeline.NewExecutionContext()
	ec.Metadata.Set(pipeline.MetaRunID, runID)

	started := time.Now()
	e.observer.RunStarted(runID)
	logger.Info("🚀 Starting pipeline run", "steps", p.Len(), "has_sink", p.Sink() != nil, "has_resource", res != nil)

	defer func() {
		final := Completed
		if err != nil {
			final = Failed
			result = nil
		}
		e.finish(final)
		d := time.Since(started)
		e.observer.RunFinished(final.String(), d)
		if err != nil {
			logger.Error("Pipeline run failed.", "error", err, "duration", d)
			return
		}
		logger.Info("🏁 Pipeline run finished.", "duration", d)
	}()

	if res != nil {
		logger.Debug("Acquiring resource.")
		if aerr := res.Acquire(ctx); aerr != nil {
			return nil, &pipeline.ResourceError{Op: "acquire", Err: aerr}
		}
		ec.BindResource(res)
	}

	last, err := e.runSteps(ctx, p, ec, res)
	if res != nil {
		err = e.releaseResource(ctx, res, err, ec, last)
	}
	if err != nil {
		return nil, err
	}
	return last, nil
}

// runSteps returns the latest context even when a step fails, so the caller
// can clear the resource from it.
func (e *Executor) runSteps(ctx context.Context, p *pipeline.Pipeline, ec *pipeline.ExecutionContext, res pipeline.Resource) (*pipeline.ExecutionContext, error) {
	var executed []string

	all := p.All()
	last := len(all) - 1
	for i, step := range all {
		if cerr := ctx.Err(); cerr != nil {
			return ec, &pipeline.StepExecutionError{StepID: step.ID(), Err: cerr}
		}

		next, err := e.runStep(ctx, step, ec)
		if err != nil {
			return ec, err
		}
		if next != ec {
			carryOver(ec, next, res)
			ec = next
		}

		executed = append(executed, step.ID())
		ec.Metadata.Set(pipeline.MetaStepsExecuted, append([]string(nil), executed...))
		ec.Metadata.Set(pipeline.MetaLastStep, step.ID())

		if i == 0 {
			recordCount(ec, pipeline.MetaSourceRecords)
		}
		// The count seen before the sink is the transformed count.
		if i < last || p.Sink() == nil {
			recordCount(ec, pipeline.MetaTransformedRecords)
		}
	}
	return ec, nil
}

// carryOver moves the run id and the scoped resource onto a context a step
// returned in place of the one it was given.
func carryOver(prev, next *pipeline.ExecutionContext, res pipeline.Resource) {
	if next.Metadata == nil {
		next.Metadata = pipeline.NewMetadata()
	}
	if _, ok := next.Metadata.Get(pipeline.MetaRunID); !ok {
		if runID, ok := prev.Metadata.Get(pipeline.MetaRunID); ok {
			next.Metadata.Set(pipeline.MetaRunID, runID)
		}
	}
	if res != nil {
		next.BindResource(res)
	}
}

func (e *Executor) runStep(ctx context.Context, step pipeline.Step, ec *pipeline.ExecutionContext) (next *pipeline.ExecutionContext, err error) {
	logger := ctxlog.FromContext(ctx).With("step", step.ID())
	logger.Info("▶️ Starting step")

	started := time.Now()
	next, err = e.executeStep(ctxlog.WithLogger(ctx, logger), step, ec)
	d := time.Since(started)
	e.observer.StepFinished(step.ID(), d, err)

	if err != nil {
		logger.Debug("Step returned an error.", "error", err)
		var stepErr *pipeline.StepExecutionError
		if errors.As(err, &stepErr) && stepErr.StepID == step.ID() {
			return nil, err
		}
		return nil, &pipeline.StepExecutionError{StepID: step.ID(), Err: err}
	}
	if next == nil {
		next = ec
	}
	logger.Info("✅ Finished step", "duration", d)
	return next, nil
}

// executeStep converts a panic in the step into an error so the run fails
// and rolls back like any other step failure.
func (e *Executor) executeStep(ctx context.Context, step pipeline.Step, ec *pipeline.ExecutionContext) (next *pipeline.ExecutionContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Step panicked.", "panic", r)
			next, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Execute(ctx, ec)
}

// releaseResource rolls back on failure and always releases. Cleanup runs
// even when ctx is already cancelled. The resource is cleared from every
// context it was bound to.
func (e *Executor) releaseResource(ctx context.Context, res pipeline.Resource, runErr error, contexts ...*pipeline.ExecutionContext) error {
	logger := ctxlog.FromContext(ctx)
	cleanupCtx := context.WithoutCancel(ctx)
	errs := []error{runErr}

	if runErr != nil {
		if tx, ok := res.(pipeline.Transactional); ok {
			logger.Info("↩️ Rolling back resource")
			if rerr := tx.Rollback(cleanupCtx); rerr != nil {
				errs = append(errs, &pipeline.ResourceError{Op: "rollback", Err: rerr})
			}
		}
	}

	logger.Debug("Releasing resource.")
	if rerr := res.Release(cleanupCtx); rerr != nil {
		errs = append(errs, &pipeline.ResourceError{Op: "release", Err: rerr})
	}
	for _, ec := range contexts {
		if ec != nil {
			ec.BindResource(nil)
		}
	}
	return errors.Join(errs...)
}

// counter is implemented by payloads that know their record count.
type counter interface {
	Len() int
}

func recordCount(ec *pipeline.ExecutionContext, key string) {
	if c, ok := ec.Data.(counter); ok {
		ec.Metadata.Set(key, c.Len())
	}
}

// Execute runs p once with a fresh default Executor.
func Execute(ctx context.Context, p *pipeline.Pipeline, res pipeline.Resource) (*pipeline.ExecutionContext, error) {
	return New().Execute(ctx, p, res)
}
