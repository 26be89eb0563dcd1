package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// ErrJobNotFound is returned for unknown jobs and jobs owned by someone else.
var ErrJobNotFound = errors.New("generation job not found")

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

const (
	defaultJobTimeout   = 2 * time.Minute
	defaultJobRetention = time.Hour
)

// Generator produces and saves an itinerary.
type Generator interface {
	Generate(ctx context.Context, actor uuid.UUID, name string, selection entity.Selection) (*entity.Itinerary, error)
}

// GenerationJob tracks one background generation.
type GenerationJob struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	mu          sync.Mutex
	status      JobStatus
	itineraryID *uuid.UUID
	err         string
	startedAt   time.Time
	finishedAt  *time.Time
	done        chan struct{}
}

// Status returns the current job status.
func (j *GenerationJob) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Done is closed once the job has succeeded or failed.
func (j *GenerationJob) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx ends.
func (j *GenerationJob) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot renders the job for polling clients.
func (j *GenerationJob) Snapshot() dto.JobStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	resp := dto.JobStatusResponse{
		JobID:     j.ID.String(),
		Stage:     dto.StageGenerateAndSave,
		Status:    string(j.status),
		Error:     j.err,
		StartedAt: j.startedAt,
	}
	if j.itineraryID != nil {
		id := j.itineraryID.String()
		resp.ItineraryID = &id
	}
	if j.finishedAt != nil {
		ts := *j.finishedAt
		resp.FinishedAt = &ts
	}
	return resp
}

func (j *GenerationJob) finished() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finishedAt == nil {
		return time.Time{}, false
	}
	return *j.finishedAt, true
}

// TrackerOptions tunes GenerationTracker. Zero values are usable.
type TrackerOptions struct {
	Timeout   time.Duration
	Retention time.Duration
	Logger    *zap.Logger
}

// GenerationTracker runs generations in the background and keeps their
// outcome available for polling.
type GenerationTracker struct {
	generator Generator
	timeout   time.Duration
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.Mutex
	jobs map[uuid.UUID]*GenerationJob
	wg   sync.WaitGroup
}

// NewGenerationTracker builds a tracker around generator.
func NewGenerationTracker(generator Generator, opts TrackerOptions) *GenerationTracker {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultJobTimeout
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultJobRetention
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &GenerationTracker{
		generator: generator,
		timeout:   opts.Timeout,
		retention: opts.Retention,
		logger:    opts.Logger,
		now:       time.Now,
		jobs:      make(map[uuid.UUID]*GenerationJob),
	}
}

// Start registers a job and runs it detached from ctx cancellation.
func (t *GenerationTracker) Start(ctx context.Context, owner uuid.UUID, name string, selection entity.Selection) (*GenerationJob, error) {
	job := &GenerationJob{
		ID:        uuid.New(),
		OwnerID:   owner,
		status:    JobPending,
		startedAt: t.now().UTC(),
		done:      make(chan struct{}),
	}

	t.mu.Lock()
	t.pruneLocked()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		t.run(runCtx, job, name, selection)
	}()
	return job, nil
}

func (t *GenerationTracker) run(ctx context.Context, job *GenerationJob, name string, selection entity.Selection) {
	job.mu.Lock()
	job.status = JobRunning
	job.mu.Unlock()

	itineraryJobsRunning.Inc()
	started := time.Now()
	itinerary, err := t.generator.Generate(ctx, job.OwnerID, name, selection)
	itineraryGenerationSeconds.Observe(time.Since(started).Seconds())
	itineraryJobsRunning.Dec()

	finished := t.now().UTC()
	job.mu.Lock()
	job.finishedAt = &finished
	if err != nil {
		job.status = JobFailed
		job.err = err.Error()
	} else {
		job.status = JobSucceeded
		id := itinerary.ID
		job.itineraryID = &id
	}
	status := job.status
	job.mu.Unlock()
	close(job.done)

	itineraryJobsTotal.WithLabelValues(string(status)).Inc()
	if err != nil {
		t.logger.Error("itinerary generation failed",
			zap.String("job_id", job.ID.String()),
			zap.String("owner_id", job.OwnerID.String()),
			zap.Error(err),
		)
		return
	}
	t.logger.Info("itinerary generated",
		zap.String("job_id", job.ID.String()),
		zap.String("itinerary_id", itinerary.ID.String()),
		zap.Int("stops", len(itinerary.Stops)),
	)
}

// Get returns a job visible to owner.
func (t *GenerationTracker) Get(id, owner uuid.UUID) (*GenerationJob, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok || job.OwnerID != owner {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Wait blocks until every running job has finished or ctx ends.
func (t *GenerationTracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *GenerationTracker) pruneLocked() {
	cutoff := t.now().Add(-t.retention)
	for id, job := range t.jobs {
		if at, ok := job.finished(); ok && at.Before(cutoff) {
			delete(t.jobs, id)
		}
	}
}
