package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/five82/lantern/internal/research"
)

const (
	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 120 * time.Second
	// SuccessStatusTTL is how long "Analysis complete" stays visible.
	SuccessStatusTTL = 2500 * time.Millisecond
	// ErrorStatusTTL is how long an error status stays visible.
	ErrorStatusTTL = 4 * time.Second

	StatusRunning  = "Running analysis…"
	StatusComplete = "Analysis complete"
	statusErrorFmt = "Error: %s"
)

// Options configure a Controller. Zero values select the defaults above.
type Options struct {
	Logger     *zap.Logger
	Timeout    time.Duration
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
	// Settled is called outside the lock with every terminal state.
	Settled func(State)
	// NewRequestID overrides uuid generation.
	NewRequestID func() string
}

// Controller owns the lifecycle state and admits one submission at a time.
type Controller struct {
	runner  research.Runner
	logger  *zap.Logger
	timeout time.Duration
	newID   func() string
	settled func(State)
	status  statusTimer

	// gate is held from admission until the Settled hook has returned.
	gate *semaphore.Weighted

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	closed bool
}

// New builds a Controller that sends requests through runner.
func New(runner research.Runner, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	newID := opts.NewRequestID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	c := &Controller{
		runner:  runner,
		logger:  logger,
		timeout: timeout,
		newID:   newID,
		settled: opts.Settled,
		gate:    semaphore.NewWeighted(1),
	}
	c.status.successTTL = durationOr(opts.SuccessTTL, SuccessStatusTTL)
	c.status.errorTTL = durationOr(opts.ErrorTTL, ErrorStatusTTL)
	return c
}

// Submit starts a request for opts unless the query is blank or another
// request still holds the admission gate; in both cases it returns false and
// changes nothing. The gate is released only after the Settled hook returns,
// so a new submission never overlaps the bookkeeping of the previous one.
// The returned channel yields the settled state once and is then closed.
func (c *Controller) Submit(ctx context.Context, opts research.QueryOptions) (<-chan State, bool) {
	if opts.Blank() {
		return nil, false
	}
	if !c.gate.TryAcquire(1) {
		c.logger.Debug("submission rejected: request in flight")
		return nil, false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.gate.Release(1)
		return nil, false
	}
	req := research.BuildRequest(opts)
	id := c.newID()
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancel = cancel
	c.state = State{
		Phase:     Pending,
		Options:   opts,
		Query:     req.Query,
		RequestID: id,
		StartedAt: time.Now(),
	}
	c.status.set(StatusRunning, "", StatusProgress)
	c.mu.Unlock()

	c.logger.Info("analysis submitted",
		zap.String("request_id", id),
		zap.String("query", req.Query),
		zap.Int("max_results", req.MaxResults),
		zap.Bool("no_search", req.NoSearch),
		zap.Bool("demo_mode", req.DemoMode))

	done := make(chan State, 1)
	go func() {
		defer close(done)
		res, err := c.runner.Run(research.WithRequestID(runCtx, id), req)
		cancel()
		st := c.settle(res, err)
		c.gate.Release(1)
		done <- st
	}()
	return done, true
}

// Cancel aborts the pending request, which then settles as Failed.
// It reports whether there was anything to cancel.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != Pending || c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// State returns a copy of the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// StatusMessage returns the current transient status text, empty once expired.
func (c *Controller) StatusMessage() string {
	return c.status.get().Text
}

// Snapshot returns state and status together. Status is only assigned while
// c.mu is held, so both halves belong to the same transition.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state.clone(), Status: c.status.get()}
}

// Close cancels any pending request, rejects further submissions and clears
// the status line. A request that settles after Close leaves the status
// line untouched.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.state.Phase == Pending && c.cancel != nil {
		c.cancel()
	}
	c.status.stop()
	c.mu.Unlock()
}

func (c *Controller) settle(res research.Result, err error) State {
	c.mu.Lock()
	id := c.state.RequestID
	st := c.state
	st.FinishedAt = time.Now()
	if err != nil {
		st.Phase = Failed
		st.Err = err
		st.Message = research.Message(err)
		if !c.closed {
			c.status.failed(st.Message)
		}
	} else {
		st.Phase = Succeeded
		st.Answer = res.Answer
		st.Sources = res.Sources
		if st.Sources == nil {
			st.Sources = []string{}
		}
		st.Notice = res.Notice
		if !c.closed {
			c.status.succeeded(res.Notice)
		}
	}
	c.state = st
	c.cancel = nil
	out := st.clone()
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("request_id", id),
		zap.Stringer("phase", st.Phase),
		zap.Duration("elapsed", st.Elapsed()),
	}
	if err != nil {
		c.logger.Warn("analysis failed", append(fields, zap.Error(err))...)
	} else {
		c.logger.Info("analysis complete", append(fields,
			zap.Int("sources", len(st.Sources)),
			zap.String("notice", st.Notice))...)
	}

	if c.settled != nil {
		c.settled(out)
	}
	return out
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
