package regulations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bantuaku/peraturan-ingest/logger"
	"github.com/bantuaku/peraturan-ingest/models"
)

// Supervisor is the Worker Supervisor: it dispatches the CLI's discover,
// process, full, continuous, reprocess, and retry-failed modes onto the
// Discoverer/Processor/Store, and guards against two modes running
// concurrently inside one process with a single mutex, exactly like the
// teacher's Scheduler.RunJob single-flight guard.
type Supervisor struct {
	discoverer *Discoverer
	processor  *Processor
	store      *Store

	batchSize int
	sleep     time.Duration

	log     *logger.Logger
	mu      sync.Mutex
	running bool
}

// NewSupervisor builds a Supervisor.
func NewSupervisor(discoverer *Discoverer, processor *Processor, store *Store, batchSize int, sleep time.Duration, log *logger.Logger) *Supervisor {
	return &Supervisor{
		discoverer: discoverer,
		processor:  processor,
		store:      store,
		batchSize:  batchSize,
		sleep:      sleep,
		log:        log,
	}
}

// IsRunning reports whether a mode is currently executing.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) guard(fn func() error) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("a worker mode is already running in this process")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return fn()
}

// Discover runs one discovery pass against every regulation type.
func (s *Supervisor) Discover(ctx context.Context) (*models.ScraperRun, error) {
	var run *models.ScraperRun
	err := s.guard(func() error {
		var runErr error
		run, runErr = s.store.CreateRun(ctx, models.RunModeDiscover)
		if runErr != nil {
			return runErr
		}

		enqueued, err := s.discoverer.Run(ctx)
		run.JobsDiscovered = enqueued
		if err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorMessage = err.Error()
		} else {
			run.Status = models.RunStatusCompleted
		}
		return s.store.FinalizeRun(ctx, run)
	})
	return run, err
}

// ProcessBatch claims and runs up to batchSize jobs, returning the finalized
// ScraperRun record with the batch's counters.
func (s *Supervisor) ProcessBatch(ctx context.Context) (*models.ScraperRun, error) {
	var run *models.ScraperRun
	err := s.guard(func() error {
		var runErr error
		run, runErr = s.store.CreateRun(ctx, models.RunModeProcess)
		if runErr != nil {
			return runErr
		}

		jobs, err := s.store.ClaimJobs(ctx, s.batchSize)
		if err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorMessage = err.Error()
			return s.store.FinalizeRun(ctx, run)
		}

		for _, job := range jobs {
			s.processor.ProcessJob(ctx, job)
			run.JobsProcessed++
			if job.ErrorMessage == "" {
				run.JobsSucceeded++
			} else {
				run.JobsFailed++
			}
			time.Sleep(s.sleep)
		}

		run.Status = models.RunStatusCompleted
		return s.store.FinalizeRun(ctx, run)
	})
	return run, err
}

// Full runs a discovery pass followed by a single process batch.
func (s *Supervisor) Full(ctx context.Context) error {
	if _, err := s.Discover(ctx); err != nil {
		s.log.Warn("discover step of full run failed", "error", err)
	}
	_, err := s.ProcessBatch(ctx)
	return err
}

// Continuous loops process batches forever, interleaving a discovery pass
// every discoverEvery iterations, backing off when a batch is empty or a
// run errors. When discoveryFirst is set, a discovery pass runs once before
// the loop's first process batch regardless of discoverEvery, so a cold
// queue gets jobs to claim immediately instead of waiting for the first
// periodic discovery iteration. Returns only when ctx is cancelled.
func (s *Supervisor) Continuous(ctx context.Context, discoverEvery int, discoveryFirst bool) error {
	iteration := 0
	backoff := s.sleep

	if discoveryFirst {
		if _, err := s.Discover(ctx); err != nil {
			s.log.Warn("initial discover pass failed", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if discoverEvery > 0 && iteration%discoverEvery == 0 && !(discoveryFirst && iteration == 0) {
			if _, err := s.Discover(ctx); err != nil {
				s.log.Warn("continuous discover pass failed", "error", err)
			}
		}

		run, err := s.ProcessBatch(ctx)
		iteration++

		switch {
		case err != nil:
			s.log.Error("continuous process batch failed", "error", err)
			backoff *= 2
		case run.JobsProcessed == 0:
			// Nothing left to claim: run one reprocess pass to pick up any
			// work stuck behind a stale extraction version before backing
			// off, rather than idling while reprocessable work waits.
			if _, err := s.Reprocess(ctx, false); err != nil {
				s.log.Warn("continuous reprocess pass failed", "error", err)
			}
			backoff = s.sleep * 5
		default:
			backoff = s.sleep
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Reprocess resets the crawl job of every "done" work below the current
// ExtractionVersion back to pending, so later process batches run it through
// the pipeline again; it does not process the jobs itself. force also
// requeues works already at the current version.
func (s *Supervisor) Reprocess(ctx context.Context, force bool) (*models.ScraperRun, error) {
	var run *models.ScraperRun
	err := s.guard(func() error {
		var runErr error
		run, runErr = s.store.CreateRun(ctx, models.RunModeReprocess)
		if runErr != nil {
			return runErr
		}

		affected, err := s.store.RequeueStaleExtractions(ctx, ExtractionVersion, force)
		run.JobsDiscovered = int(affected)
		if err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorMessage = err.Error()
		} else {
			run.Status = models.RunStatusCompleted
		}
		return s.store.FinalizeRun(ctx, run)
	})
	return run, err
}

// RetryFailed resets failed jobs (optionally matching errorLike) back to
// pending so the next ProcessBatch picks them up.
func (s *Supervisor) RetryFailed(ctx context.Context, errorLike string) (int64, error) {
	return s.store.RetryFailedJobs(ctx, errorLike)
}

// Stats returns the current job-status breakdown and latest run.
func (s *Supervisor) Stats(ctx context.Context) (*Stats, error) {
	return s.store.GetStats(ctx)
}
