package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type JobFn func(ctx context.Context) error

type scheduledJob struct {
	name      string
	fn        JobFn
	interval  time.Duration
	immediate bool
	timeout   time.Duration
	busy      atomic.Bool
}

type JobOption func(*scheduledJob)

// WithImmediateStart runs the job once right after Start instead of
// waiting for the first tick.
func WithImmediateStart() JobOption {
	return func(j *scheduledJob) {
		j.immediate = true
	}
}

func WithTimeout(timeout time.Duration) JobOption {
	return func(j *scheduledJob) {
		j.timeout = timeout
	}
}

type RunnerOption func(*Runner)

func WithOnError(onError func(jobName string, err error)) RunnerOption {
	return func(r *Runner) {
		r.onError = onError
	}
}

// Runner executes registered jobs on a fixed interval each. A tick is
// skipped while the previous run of the same job is still going, so a
// slow run never stacks up behind itself.
type Runner struct {
	jobs    []*scheduledJob
	onError func(jobName string, err error)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Runner) Add(name string, interval time.Duration, fn JobFn, opts ...JobOption) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		panic("job runner is already started")
	}

	j := &scheduledJob{
		name:     name,
		fn:       fn,
		interval: interval,
	}

	for _, opt := range opts {
		opt(j)
	}

	r.jobs = append(r.jobs, j)
}

func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)

	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.runLoop(ctx, j)
	}
}

func (r *Runner) runLoop(ctx context.Context, j *scheduledJob) {
	defer r.wg.Done()

	if j.immediate {
		r.runOnce(ctx, j)
	}

	interval := j.interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, j)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, j *scheduledJob) {
	if !j.busy.CompareAndSwap(false, true) {
		return
	}
	defer j.busy.Store(false)

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil && r.onError != nil {
			r.onError(j.name, fmt.Errorf("panic: %v", p))
		}
	}()

	if err := j.fn(ctx); err != nil && r.onError != nil {
		r.onError(j.name, err)
	}
}

// Stop cancels all job loops and waits for in flight runs to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}
