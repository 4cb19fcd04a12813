package importer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/checkmate/internal/config"
	"github.com/dgallion1/checkmate/internal/parser"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("import queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("importer stopped")

const cleanupInterval = 5 * time.Minute

// Orchestrator manages the import worker pool.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	store Store
	stats *Stats
	log   *slog.Logger
	cfg   config.Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	workers sync.WaitGroup
	wg      sync.WaitGroup
}

// NewOrchestrator creates the import pool. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, st Store, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		store: st,
		stats: NewStats(time.Hour),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range max(o.cfg.WorkerCount, 1) {
		o.workers.Add(1)
		go func() {
			defer o.workers.Done()
			w := NewWorker(o.store, o.log, opts, o.stats)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop lets workers drain the queue, then shuts the pipeline down. Jobs
// still running when ctx is done are cancelled.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	if o.cancel != nil {
		o.cancel()
	}
	<-done
	o.wg.Wait()
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return ErrQueueFull
	}
}

// GetJob returns a job by ID, or nil once it has expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns import duration statistics.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// Tracked returns how many jobs are held in memory.
func (o *Orchestrator) Tracked() int {
	return o.jobs.Len()
}
