// Package scan orchestrates netsweep scans: it expands targets, validates
// ports, dispatches probes across a bounded worker pool, and aggregates
// classified results for presentation.
package scan

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/probeworks/netsweep/internal/logging"
	"github.com/probeworks/netsweep/internal/metrics"
	"github.com/probeworks/netsweep/internal/probe"
)

// Job represents a single probe to be executed by a worker.
type Job interface {
	// Execute performs the probe and returns its classified result.
	// Probe timeouts are verdicts, not errors, so there is nothing to
	// retry or escalate.
	Execute(ctx context.Context) probe.Result
	// ID returns an identifier for the job, used in debug logging.
	ID() string
	// Type returns the job type for metrics and logging.
	Type() string
}

// PoolConfig holds configuration for the worker pool.
type PoolConfig struct {
	// Size is the number of worker goroutines to create.
	Size int
	// QueueSize is the maximum number of jobs that can be queued
	// before Submit blocks, which gives the producer backpressure so
	// large target spaces are never materialized up front.
	QueueSize int
}

// DefaultPoolConfig returns a default worker pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Size:      64,
		QueueSize: 256,
	}
}

// Pool manages a fixed set of worker goroutines executing probe jobs.
// Results are delivered on a single channel that is closed once every
// submitted job has finished.
type Pool struct {
	config    PoolConfig
	jobs      chan Job
	results   chan probe.Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	closed32  int32
}

// NewPool creates a new worker pool with the given configuration.
func NewPool(ctx context.Context, config PoolConfig) *Pool {
	if config.Size <= 0 {
		config.Size = DefaultPoolConfig().Size
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultPoolConfig().QueueSize
	}

	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		config:  config,
		jobs:    make(chan Job, config.QueueSize),
		results: make(chan probe.Result, config.QueueSize),
		ctx:     poolCtx,
		cancel:  cancel,
	}
}

// Start begins the worker pool operations.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		logging.Debug("starting worker pool",
			"worker_count", p.config.Size,
			"queue_size", p.config.QueueSize)

		for i := 0; i < p.config.Size; i++ {
			p.wg.Add(1)
			go p.run(i)
		}

		go func() {
			p.wg.Wait()
			close(p.results)
		}()

		metrics.Gauge(metrics.MetricWorkerPoolSize, float64(p.config.Size), nil)
	})
}

// Submit adds a job to the queue, blocking while the queue is full.
// It fails once the pool has been closed or its context canceled.
func (p *Pool) Submit(job Job) error {
	if atomic.LoadInt32(&p.closed32) == 1 {
		return fmt.Errorf("worker pool is closed")
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Close signals that no further jobs will be submitted. Workers drain
// the queue, then the results channel is closed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.closed32, 1)
		close(p.jobs)
	})
}

// Stop aborts the pool, canceling in-flight probes.
func (p *Pool) Stop() {
	p.Close()
	p.cancel()
}

// Results returns the channel job results are delivered on. The channel
// is closed after Close once all workers have finished.
func (p *Pool) Results() <-chan probe.Result {
	return p.results
}

// run executes the worker loop.
func (p *Pool) run(id int) {
	defer p.wg.Done()

	logging.Debug("worker started", "worker_id", id)
	defer logging.Debug("worker stopped", "worker_id", id)

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(id, job)
		case <-p.ctx.Done():
			return
		}
	}
}

// execute runs a single job and forwards its result.
func (p *Pool) execute(workerID int, job Job) {
	timer := metrics.NewTimer("job_duration_seconds", metrics.Labels{
		"job_type": job.Type(),
	})
	defer timer.Stop()

	result := job.Execute(p.ctx)

	logging.Debug("job completed",
		"job_id", job.ID(),
		"job_type", job.Type(),
		"verdict", result.Verdict,
		"worker_id", workerID)

	select {
	case p.results <- result:
	case <-p.ctx.Done():
	}
}
