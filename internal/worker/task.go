// Package worker runs periodic background jobs with an explicit lifecycle.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

// RunFunc is one unit of periodic work. Returning an error makes the task
// retry with exponential backoff until the next tick is due; wrap the error
// with backoff.Permanent to skip retries.
type RunFunc func(ctx context.Context) error

// Task runs a RunFunc every interval until its context is cancelled.
type Task struct {
	name       string
	interval   time.Duration
	runOnStart bool
	fn         RunFunc
	log        *slog.Logger
	trigger    chan struct{}
	newBackOff func() backoff.BackOff
}

// Option configures a Task.
type Option func(*Task)

// WithRunOnStart makes the task run immediately when started instead of
// waiting for the first interval to elapse.
func WithRunOnStart(v bool) Option {
	return func(t *Task) { t.runOnStart = v }
}

// WithMaxRetryInterval caps the delay between retries of a failed run.
// A non-positive d keeps the current policy.
func WithMaxRetryInterval(d time.Duration) Option {
	return func(t *Task) {
		if d <= 0 {
			return
		}
		interval := t.interval
		t.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxInterval = d
			b.MaxElapsedTime = interval
			return b
		}
	}
}

// WithBackOff replaces the retry policy.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(t *Task) { t.newBackOff = factory }
}

// New creates a task. interval must be positive.
func New(name string, interval time.Duration, fn RunFunc, logger *slog.Logger, opts ...Option) *Task {
	t := &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      logger.With("task", name),
		trigger:  make(chan struct{}, 1),
	}
	WithMaxRetryInterval(5 * time.Minute)(t)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Interval returns the documented tick interval.
func (t *Task) Interval() time.Duration { return t.interval }

// Trigger queues one extra run. It reports false when a run is already
// queued. The run happens even if the task is currently mid-run.
func (t *Task) Trigger() bool {
	select {
	case t.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run blocks, executing the task every interval, until ctx is cancelled.
// An in-flight run observes the cancellation through its context.
func (t *Task) Run(ctx context.Context) error {
	t.log.InfoContext(ctx, "task started",
		slog.Duration("interval", t.interval),
		slog.Bool("run_on_start", t.runOnStart),
	)

	if t.runOnStart {
		t.runOnce(ctx)
	}

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.InfoContext(context.WithoutCancel(ctx), "task stopped")
			return nil
		case <-timer.C:
			t.runOnce(ctx)
			timer.Reset(t.interval)
		case <-t.trigger:
			t.log.InfoContext(ctx, "task triggered")
			t.runOnce(ctx)
		}
	}
}

func (t *Task) runOnce(ctx context.Context) {
	start := time.Now()
	attempt := 0

	op := func() error {
		attempt++
		return t.fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		t.log.WarnContext(ctx, "task run failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", wait),
			slog.String("error", err.Error()),
		)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(t.newBackOff(), ctx), notify)
	switch {
	case err == nil:
		t.log.InfoContext(ctx, "task run finished",
			slog.Int("attempts", attempt),
			slog.Duration("duration", time.Since(start)),
		)
	case ctx.Err() != nil:
		t.log.InfoContext(context.WithoutCancel(ctx), "task run abandoned on shutdown",
			slog.Int("attempts", attempt),
		)
	default:
		t.log.ErrorContext(ctx, "task run gave up",
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()),
		)
	}
}

// Registry looks tasks up by name for on-demand runs.
type Registry struct {
	tasks map[string]*Task
}

// NewRegistry creates a registry of the given tasks.
func NewRegistry(tasks ...*Task) *Registry {
	r := &Registry{tasks: make(map[string]*Task, len(tasks))}
	for _, t := range tasks {
		r.tasks[t.name] = t
	}
	return r
}

// Tasks returns the registered tasks ordered by name.
func (r *Registry) Tasks() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Trigger queues one run of the named task.
// Returns domain.ErrNotFound for an unknown name and domain.ErrConflict when
// a run of that task is already queued.
func (r *Registry) Trigger(name string) error {
	t, ok := r.tasks[name]
	if !ok {
		return fmt.Errorf("task %q: %w", name, domain.ErrNotFound)
	}
	if !t.Trigger() {
		return fmt.Errorf("task %q: run already queued: %w", name, domain.ErrConflict)
	}
	return nil
}
