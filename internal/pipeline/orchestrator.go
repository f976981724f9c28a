package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doccheck/internal/config"
	"github.com/dgallion1/doccheck/internal/parser"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// ErrJobRunning is returned when deleting a job that has not finished.
var ErrJobRunning = errors.New("job is still running")

// DefaultCleanupInterval is how often finished jobs past their TTL are evicted.
const DefaultCleanupInterval = 5 * time.Minute

// Orchestrator manages the structure check pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	fetcher Fetcher
	checker StructureChecker
	log     *slog.Logger
	cfg     config.Config

	// CleanupInterval overrides DefaultCleanupInterval when set before Start.
	CleanupInterval time.Duration

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, fetcher Fetcher, checker StructureChecker, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		jobs:            NewJobStore(cfg.JobTTL),
		queue:           make(chan *Job, cfg.MaxQueueSize),
		fetcher:         fetcher,
		checker:         checker,
		log:             log,
		cfg:             cfg,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := WorkerOptions{
		CheckEnabled:     o.cfg.StructureCheckEnabled,
		CriticalChapters: o.cfg.CriticalChapters,
		Parser:           parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext},
	}
	workers := max(o.cfg.WorkerCount, 1)
	for range workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.fetcher, o.checker, opts, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					QueueDepth.Set(float64(len(o.queue)))
					w.Process(workerCtx, job)
				}
			}
		}()
	}
	o.log.Info("pipeline started", "workers", workers, "queue_size", cap(o.queue))

	// Start job store cleanup.
	interval := o.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Info("evicted expired jobs", "count", n)
				}
				JobsTracked.Set(float64(o.jobs.Len()))
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Jobs still queued are marked
// failed with ErrStopped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	dropped := 0
	for job := range o.queue {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "queued")
		ChecksTotal.WithLabelValues(OutcomeError).Inc()
		dropped++
	}
	QueueDepth.Set(0)
	if dropped > 0 {
		o.log.Warn("dropped queued jobs on shutdown", "count", dropped)
	}
}

// Submit queues a new job for processing. A job that cannot be queued is
// still stored, marked failed.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	JobsTracked.Set(float64(o.jobs.Len()))

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "queued")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		QueueDepth.Set(float64(len(o.queue)))
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// ListJobs returns every tracked job, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	return o.jobs.List()
}

// DeleteJob forgets a finished job. It reports false for unknown ids.
func (o *Orchestrator) DeleteJob(id string) (bool, error) {
	job := o.jobs.Get(id)
	if job == nil {
		return false, nil
	}
	if !job.Snapshot().Status.Terminal() {
		return true, ErrJobRunning
	}
	ok := o.jobs.Delete(id)
	JobsTracked.Set(float64(o.jobs.Len()))
	return ok, nil
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
