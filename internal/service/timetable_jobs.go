package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const solveJobType = "timetable_solve"

// SolveJobService runs generation requests on a background worker queue so
// long solves do not hold an HTTP connection open.
type SolveJobService struct {
	timetables *TimetableService
	queue      *jobs.Queue
	logger     *zap.Logger

	mu      sync.RWMutex
	results map[string]*dto.SolveJobStatus
}

// NewSolveJobService constructs the job service; Start must be called
// before enqueueing.
func NewSolveJobService(timetables *TimetableService, cfg jobs.QueueConfig, logger *zap.Logger) *SolveJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SolveJobService{
		timetables: timetables,
		logger:     logger,
		results:    make(map[string]*dto.SolveJobStatus),
	}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("solves", s.handle, cfg)
	return s
}

// Start launches the worker pool.
func (s *SolveJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *SolveJobService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules an asynchronous solve and returns its job id.
func (s *SolveJobService) Enqueue(req dto.GenerateTimetableRequest) (*dto.SolveJobStatus, error) {
	status := &dto.SolveJobStatus{
		JobID:      uuid.NewString(),
		Status:     dto.JobStatusPending,
		EnqueuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.results[status.JobID] = status
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:      status.JobID,
		Type:    solveJobType,
		Payload: req,
	})
	if err != nil {
		s.mu.Lock()
		delete(s.results, status.JobID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue solve job")
	}
	return status, nil
}

// Status reports on a previously enqueued job.
func (s *SolveJobService) Status(jobID string) (*dto.SolveJobStatus, error) {
	s.mu.RLock()
	status, ok := s.results[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "solve job not found")
	}
	copied := *status
	return &copied, nil
}

func (s *SolveJobService) handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		s.logger.Error("solve job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	s.setStatus(job.ID, func(status *dto.SolveJobStatus) {
		status.Status = dto.JobStatusRunning
	})

	result, err := s.timetables.Generate(ctx, req)
	now := time.Now().UTC()
	if err != nil {
		s.logger.Warn("solve job failed", zap.String("job_id", job.ID), zap.Error(err))
		s.setStatus(job.ID, func(status *dto.SolveJobStatus) {
			status.Status = dto.JobStatusFailed
			status.Error = appErrors.FromError(err).Message
			status.CompletedAt = &now
		})
		// The failure is recorded on the job; retrying a deterministic
		// validation failure would loop uselessly.
		return nil
	}

	s.setStatus(job.ID, func(status *dto.SolveJobStatus) {
		status.Status = dto.JobStatusCompleted
		status.Result = result
		status.CompletedAt = &now
	})
	return nil
}

func (s *SolveJobService) setStatus(jobID string, mutate func(*dto.SolveJobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.results[jobID]; ok {
		mutate(status)
	}
}
