// Package orchestrator drives the pipeline run: four sequential stages with
// a barrier between them, concurrent activities inside each stage, and a
// fixed-interval retry per activity. Blob writes are full overwrites, so a
// retried or repeated run converges on the same output.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
	"github.com/zachdean/ynab-reporting-pipeline/internal/silver"
	"github.com/zachdean/ynab-reporting-pipeline/internal/ynab"
)

// ErrRunInFlight is returned by Trigger while a run is already executing.
var ErrRunInFlight = errors.New("a pipeline run is already in flight")

// RetryPolicy is the per-activity retry configuration. The interval is
// constant between attempts.
type RetryPolicy struct {
	BaseInterval time.Duration
	MaxAttempts  uint64
}

// DefaultRetryPolicy retries every transient failure twice, one minute apart.
var DefaultRetryPolicy = RetryPolicy{BaseInterval: time.Minute, MaxAttempts: 3}

// Options tunes a run. Zero values fall back to production defaults.
type Options struct {
	// StageTimeout bounds each stage; an expired stage fails the run.
	StageTimeout time.Duration
	Retry        RetryPolicy
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Orchestrator executes pipeline runs and records their state.
type Orchestrator struct {
	activities   []Activity
	runs         *RunStore
	stageTimeout time.Duration
	retry        RetryPolicy
	now          func() time.Time

	mu      sync.Mutex
	running bool
}

// New creates an orchestrator over the given activity set.
func New(runs *RunStore, activities []Activity, opts Options) *Orchestrator {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = 10 * time.Minute
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		activities:   activities,
		runs:         runs,
		stageTimeout: opts.StageTimeout,
		retry:        opts.Retry,
		now:          opts.Now,
	}
}

// Runs exposes the run store for status queries.
func (o *Orchestrator) Runs() *RunStore {
	return o.runs
}

// Trigger starts a run in the background and returns its ID. Only one run
// may be in flight at a time; a second trigger fails with ErrRunInFlight.
func (o *Orchestrator) Trigger(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return "", ErrRunInFlight
	}
	o.running = true
	o.mu.Unlock()

	run := o.newRun(ctx)

	go func() {
		defer func() {
			o.mu.Lock()
			o.running = false
			o.mu.Unlock()
		}()
		o.execute(ctx, run)
	}()

	return run.ID, nil
}

// Execute runs the pipeline synchronously and returns the finished run. It
// bypasses the in-flight guard and is meant for one-shot callers.
func (o *Orchestrator) Execute(ctx context.Context) (*Run, error) {
	run := o.newRun(ctx)
	o.execute(ctx, run)
	return o.runs.GetRun(ctx, run.ID)
}

func (o *Orchestrator) newRun(ctx context.Context) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		State:     StateIdle,
		StartedAt: o.now(),
	}
	if err := o.runs.SaveRun(ctx, run); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("failed to save run")
	}
	return run
}

func (o *Orchestrator) execute(ctx context.Context, run *Run) {
	log := logger.ForRun(logger.FromContext(ctx), run.ID)
	ctx = logger.WithContext(ctx, log)
	log.Info().Time("started_at", run.StartedAt).Msg("pipeline run started")

	for _, stage := range stageOrder {
		o.setState(ctx, run, stageState(stage))

		if err := o.runStage(ctx, run, stage); err != nil {
			log.Error().Err(err).Str("stage", string(stage)).Msg("pipeline run failed")
			o.finish(ctx, run, StateFailed)
			return
		}
	}

	log.Info().Msg("pipeline run completed")
	o.finish(ctx, run, StateCompleted)
}

// runStage runs every activity of one stage, honoring same-stage
// dependencies, and returns the aggregate of all failures.
func (o *Orchestrator) runStage(ctx context.Context, run *Run, stage Stage) error {
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	pending := make(map[string]Activity)
	for _, act := range o.activities {
		if act.Stage != stage {
			continue
		}
		if act.PreviousMonth && o.now().Day() > previousMonthCutoffDay {
			log := logger.FromContext(ctx)
			log.Info().
				Str("stage", string(stage)).
				Str("activity", act.Name).
				Msg("skipping previous-month activity past cutoff day")
			continue
		}
		pending[act.Name] = act
	}

	type result struct {
		name string
		err  error
	}
	results := make(chan result)

	succeeded := make(map[string]bool)
	failed := make(map[string]bool)
	inFlight := 0

	var errs *multierror.Error
	fail := func(name string, err error) {
		failed[name] = true
		run.Failures = append(run.Failures, Failure{Stage: stage, Activity: name, Message: err.Error()})
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
	}

	for len(pending) > 0 || inFlight > 0 {
		for name, act := range pending {
			ready, blocked := depsState(act, succeeded, failed)
			if blocked != "" {
				delete(pending, name)
				fail(name, fmt.Errorf("skipped: dependency %s failed", blocked))
				continue
			}
			if !ready {
				continue
			}
			delete(pending, name)
			inFlight++
			go func(act Activity) {
				results <- result{name: act.Name, err: o.runActivity(stageCtx, stage, act)}
			}(act)
		}

		if inFlight == 0 {
			if len(pending) > 0 {
				// unreachable unless an activity names a missing dependency
				for name := range pending {
					delete(pending, name)
					fail(name, errors.New("skipped: unsatisfiable dependency"))
				}
			}
			break
		}

		res := <-results
		inFlight--
		if res.err != nil {
			fail(res.name, res.err)
		} else {
			succeeded[res.name] = true
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		o.runs.SaveRun(ctx, run)
		return fmt.Errorf("stage %s: %w", stage, err)
	}
	return nil
}

// runActivity runs one activity under the retry policy. Schema violations
// and non-retryable API responses abort immediately.
func (o *Orchestrator) runActivity(ctx context.Context, stage Stage, act Activity) error {
	log := logger.ForActivity(logger.FromContext(ctx), string(stage), act.Name)
	ctx = logger.WithContext(ctx, log)

	attempt := 0
	op := func() error {
		attempt++
		err := act.Run(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info().Int("attempt", attempt).Msg("activity succeeded after retry")
			}
			return nil
		}
		if isPermanent(err) {
			log.Error().Err(err).Msg("activity failed permanently")
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("activity failed, will retry")
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.retry.BaseInterval), o.retry.MaxAttempts-1),
		ctx)
	return backoff.Retry(op, policy)
}

// isPermanent classifies errors that retrying cannot fix.
func isPermanent(err error) bool {
	if errors.Is(err, silver.ErrSchema) {
		return true
	}
	var apiErr *ynab.APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Retryable()
	}
	return false
}

func depsState(act Activity, succeeded, failed map[string]bool) (ready bool, blocked string) {
	for _, dep := range act.Deps {
		if failed[dep] {
			return false, dep
		}
		if !succeeded[dep] {
			return false, ""
		}
	}
	return true, ""
}

func stageState(stage Stage) State {
	switch stage {
	case StageExtracting:
		return StateExtracting
	case StageNormalizing:
		return StateNormalizing
	case StageServing:
		return StateServing
	default:
		return StateValidating
	}
}

func (o *Orchestrator) setState(ctx context.Context, run *Run, state State) {
	run.State = state
	if err := o.runs.SaveRun(ctx, run); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("failed to save run state")
	}
}

func (o *Orchestrator) finish(ctx context.Context, run *Run, state State) {
	run.State = state
	completed := o.now()
	run.CompletedAt = &completed
	if err := o.runs.SaveRun(ctx, run); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("failed to save run state")
	}
}
