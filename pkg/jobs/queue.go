package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status describes where a job is in its lifecycle.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// State is the observable record of a job kept by the queue.
type State struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Status     Status      `json:"status"`
	Attempts   int         `json:"attempts"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	EnqueuedAt time.Time   `json:"enqueuedAt"`
	StartedAt  *time.Time  `json:"startedAt,omitempty"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The job fails immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Handler processes a job and returns a result to expose through Status.
type Handler func(context.Context, Job) (interface{}, error)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// Retention is how long finished job states stay queryable.
	Retention time.Duration
	Logger    *zap.Logger
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	maxRetries int
	retryDelay time.Duration
	retention  time.Duration
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool

	statesMu sync.RWMutex
	states   map[string]*State
	now      func() time.Time
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		retention:  cfg.Retention,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
		states:     make(map[string]*State),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue and starts tracking its state.
func (q *Queue) Enqueue(job Job) error {
	if job.ID == "" {
		return fmt.Errorf("queue %s: job id is required", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = q.now()
	}
	if job.Attempt == 0 {
		q.track(job)
	}
	return q.push(job)
}

// Status returns a snapshot of the job state, if it is still retained.
func (q *Queue) Status(id string) (State, bool) {
	q.statesMu.RLock()
	defer q.statesMu.RUnlock()
	state, ok := q.states[id]
	if !ok {
		return State{}, false
	}
	return *state, true
}

func (q *Queue) push(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		q.finish(job.ID, nil, fmt.Errorf("queue %s not started", q.name))
		return fmt.Errorf("queue %s not started", q.name)
	}

	select {
	case <-ctx.Done():
		q.finish(job.ID, nil, ctx.Err())
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.markRunning(job)
			result, err := q.handler(q.ctx, job)
			if err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.finish(job.ID, result, nil)
			q.logger.Sugar().Debugw("job completed", "queue", q.name, "worker", workerID, "job_id", job.ID, "type", job.Type)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	var permanent *permanentError
	if errors.As(err, &permanent) {
		q.finish(job.ID, nil, permanent.err)
		q.logger.Sugar().Warnw("job failed permanently", "queue", q.name, "job_id", job.ID, "type", job.Type, "error", permanent.err)
		return
	}
	if job.Attempt > q.maxRetries {
		q.finish(job.ID, nil, err)
		q.logger.Sugar().Errorw("job exceeded retries", "queue", q.name, "job_id", job.ID, "type", job.Type, "error", err)
		return
	}
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", err)
	q.setStatus(job.ID, StatusQueued)

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.finish(j.ID, nil, q.ctx.Err())
			return
		case <-timer.C:
			if err := q.push(j); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", j.ID, "error", err)
			}
		}
	}(job)
}

func (q *Queue) track(job Job) {
	q.statesMu.Lock()
	defer q.statesMu.Unlock()
	q.pruneLocked()
	q.states[job.ID] = &State{
		ID:         job.ID,
		Type:       job.Type,
		Status:     StatusQueued,
		EnqueuedAt: job.Enqueued,
	}
}

func (q *Queue) markRunning(job Job) {
	q.statesMu.Lock()
	defer q.statesMu.Unlock()
	state, ok := q.states[job.ID]
	if !ok {
		return
	}
	now := q.now()
	state.Status = StatusRunning
	state.Attempts = job.Attempt + 1
	state.StartedAt = &now
}

func (q *Queue) setStatus(id string, status Status) {
	q.statesMu.Lock()
	defer q.statesMu.Unlock()
	if state, ok := q.states[id]; ok {
		state.Status = status
	}
}

func (q *Queue) finish(id string, result interface{}, err error) {
	q.statesMu.Lock()
	defer q.statesMu.Unlock()
	state, ok := q.states[id]
	if !ok {
		return
	}
	now := q.now()
	state.FinishedAt = &now
	if err != nil {
		state.Status = StatusFailed
		state.Error = err.Error()
		return
	}
	state.Status = StatusSucceeded
	state.Result = result
}

// pruneLocked drops finished states older than the retention window.
func (q *Queue) pruneLocked() {
	cutoff := q.now().Add(-q.retention)
	for id, state := range q.states {
		if state.FinishedAt != nil && state.FinishedAt.Before(cutoff) {
			delete(q.states, id)
		}
	}
}
