// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs pages and documents through a bounded set of
// worker goroutines.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"finredact/internal/observability"
)

// ProcessFunc handles one job
type ProcessFunc[J, R any] func(ctx context.Context, job J) (R, error)

// Result represents processing results
type Result[J, R any] struct {
	Job      J
	Value    R
	Error    error
	Duration time.Duration
	WorkerID int
}

// WorkerPool runs submitted jobs on a fixed number of goroutines
type WorkerPool[J, R any] struct {
	name     string
	workers  int
	process  ProcessFunc[J, R]
	jobs     chan J
	results  chan Result[J, R]
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
	stopOnce sync.Once
}

// DefaultWorkers caps the worker count at the CPU count and 8
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// NewWorkerPool creates a pool named for observability output. Workers
// below one fall back to DefaultWorkers.
func NewWorkerPool[J, R any](ctx context.Context, name string, workers int, process ProcessFunc[J, R], observer *observability.StandardObserver) *WorkerPool[J, R] {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool[J, R]{
		name:     name,
		workers:  workers,
		process:  process,
		jobs:     make(chan J, workers*2),
		results:  make(chan Result[J, R], workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool[J, R]) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit queues a job. It reports false once the pool's context is done.
func (wp *WorkerPool[J, R]) Submit(job J) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Stop closes the queue, waits for queued jobs to finish and then closes
// the results channel. Results must be drained concurrently.
func (wp *WorkerPool[J, R]) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.jobs)
		wp.wg.Wait()
		close(wp.results)
		wp.cancel()
	})
}

// Results returns the results channel
func (wp *WorkerPool[J, R]) Results() <-chan Result[J, R] {
	return wp.results
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool[J, R]) Workers() int {
	return wp.workers
}

// worker processes jobs from the queue
func (wp *WorkerPool[J, R]) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob runs one job. A panicking job becomes a failed result so the
// rest of the batch keeps going.
func (wp *WorkerPool[J, R]) processJob(job J, workerID int) (result Result[J, R]) {
	start := time.Now()

	var finishTiming func(bool, map[string]any)
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", wp.name, "")
	}

	result = Result[J, R]{Job: job, WorkerID: workerID}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("%s worker panicked: %v", wp.name, r)
		}
		result.Duration = time.Since(start)
		if finishTiming != nil {
			finishTiming(result.Error == nil, map[string]any{
				"worker_id":   workerID,
				"duration_ms": result.Duration.Milliseconds(),
			})
		}
	}()

	if err := wp.ctx.Err(); err != nil {
		result.Error = err
		return result
	}
	result.Value, result.Error = wp.process(wp.ctx, job)
	return result
}

// ProgressCallback is called when a job is completed
type ProgressCallback func(completed, total int)

type indexedJob[J any] struct {
	i   int
	job J
}

// Map runs process over jobs with at most workers goroutines and returns
// the results in job order.
func Map[J, R any](ctx context.Context, name string, workers int, jobs []J, process ProcessFunc[J, R], observer *observability.StandardObserver, progress ProgressCallback) []Result[J, R] {
	pool := NewWorkerPool[indexedJob[J], R](ctx, name, min(max(workers, 1), max(len(jobs), 1)), func(ctx context.Context, in indexedJob[J]) (R, error) {
		return process(ctx, in.job)
	}, observer)
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, job := range jobs {
			if !pool.Submit(indexedJob[J]{i: i, job: job}) {
				return
			}
		}
	}()

	out := make([]Result[J, R], len(jobs))
	done := make([]bool, len(jobs))
	completed := 0
	for r := range pool.Results() {
		out[r.Job.i] = Result[J, R]{
			Job:      r.Job.job,
			Value:    r.Value,
			Error:    r.Error,
			Duration: r.Duration,
			WorkerID: r.WorkerID,
		}
		done[r.Job.i] = true
		completed++
		if progress != nil {
			progress(completed, len(jobs))
		}
	}

	// jobs never submitted because ctx ended
	for i := range out {
		if !done[i] {
			out[i] = Result[J, R]{Job: jobs[i], Error: context.Cause(ctx)}
			if out[i].Error == nil {
				out[i].Error = context.Canceled
			}
		}
	}
	return out
}
