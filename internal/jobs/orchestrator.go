package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/summarize"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("job runner is stopped")

// cleanupInterval is how often expired jobs are evicted.
const cleanupInterval = 5 * time.Minute

// Orchestrator owns the job store, the queue and the worker goroutines.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	pipeline *summarize.Pipeline
	log      *slog.Logger
	workers  int

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped and the close of queue against concurrent Submits.
	mu      sync.Mutex
	stopped bool
}

// NewOrchestrator creates the job runner. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, p *summarize.Pipeline, log *slog.Logger) *Orchestrator {
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.MaxQueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, queueSize),
		pipeline: p,
		log:      log,
		workers:  workers,
	}
}

// Start launches the workers and the expiry janitor. They run until ctx is
// canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(o.workers + 1)
	for id := range o.workers {
		go o.runWorker(ctx, id)
	}
	go o.runJanitor(ctx)
	o.log.Info("job workers started", "workers", o.workers, "queue_capacity", cap(o.queue))
}

func (o *Orchestrator) runWorker(ctx context.Context, id int) {
	defer o.wg.Done()
	w := NewWorker(o.pipeline, o.log.With("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) runJanitor(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := o.jobs.Len()
			o.jobs.Cleanup()
			if evicted := before - o.jobs.Len(); evicted > 0 {
				o.log.Debug("expired jobs evicted", "count", evicted)
			}
		}
	}
}

// Stop cancels running jobs and waits for the workers to exit.
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
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.jobs.Put(job)
	if o.stopped {
		job.AddError("shutting down")
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		o.log.Info("job queued", "job_id", job.ID, "filename", job.Filename, "depth", len(o.queue))
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
