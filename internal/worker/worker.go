// Package worker provides the pool that runs batch extraction jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"recipe-extraction-api/internal/metrics"
	"recipe-extraction-api/internal/service"
)

// StatusClientClosed marks jobs whose request went away before they ran.
const StatusClientClosed = 499

// MaxBatchSize caps the URLs accepted in one batch request.
const MaxBatchSize = 20

var (
	ErrBatchTooLarge = fmt.Errorf("a batch may hold at most %d URLs", MaxBatchSize)
	ErrEmptyBatch    = errors.New("batch holds no URLs")
	ErrPoolStopped   = errors.New("worker pool is stopped")
)

// Extractor is the single-request use case a job runs.
type Extractor interface {
	Extract(ctx context.Context, req service.Request) *service.Result
}

// Job represents one URL of a batch.
type Job struct {
	Request    service.Request
	ResultChan chan *service.Result
	Context    context.Context
}

// WorkerPool manages a pool of workers and a queue of jobs.
type WorkerPool struct {
	JobQueue  chan Job
	Extractor Extractor
	PoolSize  int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewWorkerPool creates a worker pool. Call Start before submitting.
func NewWorkerPool(extractor Extractor, poolSize int, queueSize int) *WorkerPool {
	return &WorkerPool{
		JobQueue:  make(chan Job, queueSize),
		Extractor: extractor,
		PoolSize:  poolSize,
	}
}

// Start initializes the worker pool and starts the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.PoolSize; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			slog.Debug("Worker started", "worker_id", workerID)
			for job := range wp.JobQueue {
				wp.run(workerID, job)
			}
			slog.Debug("Worker stopped", "worker_id", workerID)
		}(i)
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	ctx := job.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		metrics.BatchJobs.WithLabelValues("canceled").Inc()
		job.ResultChan <- &service.Result{Status: StatusClientClosed, Message: "request canceled", Err: err}
		return
	}

	slog.Info("Worker processing job", "worker_id", workerID, "url", job.Request.URL)
	res := wp.Extractor.Extract(ctx, job.Request)
	status := "failure"
	if res.Status < 400 {
		status = "success"
	}
	metrics.BatchJobs.WithLabelValues(status).Inc()
	job.ResultChan <- res
}

// Submit queues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return ErrPoolStopped
	}
	select {
	case wp.JobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunBatch extracts every URL for userID and returns results in input order.
func (wp *WorkerPool) RunBatch(ctx context.Context, urls []string, userID string, debug bool) ([]*service.Result, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(urls) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	chans := make([]chan *service.Result, len(urls))
	for i, u := range urls {
		chans[i] = make(chan *service.Result, 1)
		job := Job{
			Request:    service.Request{URL: u, UserID: userID, Debug: debug},
			ResultChan: chans[i],
			Context:    ctx,
		}
		if err := wp.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("submit %s: %w", u, err)
		}
	}

	results := make([]*service.Result, len(urls))
	for i, ch := range chans {
		select {
		case results[i] = <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// Stop gracefully shuts down the worker pool and waits for running jobs.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.JobQueue)
	wp.mu.Unlock()

	slog.Info("Stopping worker pool...")
	wp.wg.Wait()
}
