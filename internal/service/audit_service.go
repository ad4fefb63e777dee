package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/pkg/jobs"
)

type auditLogRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService appends audit records asynchronously so request handling
// never waits on the audit table. A nil service drops records silently,
// which keeps tests free of queue plumbing.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// AuditOptions tunes the background writer.
type AuditOptions struct {
	Workers    int
	BufferSize int
	MaxRetries int
}

// NewAuditService constructs the service and its backing queue.
func NewAuditService(repo auditLogRepository, logger *zap.Logger, opts AuditOptions) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		log, ok := job.Payload.(models.AuditLog)
		if !ok {
			logger.Error("audit job carried unexpected payload", zap.String("job_id", job.ID))
			return nil
		}
		return repo.CreateAuditLog(ctx, &log)
	}

	queue := jobs.NewQueue("audit", handler, jobs.QueueConfig{
		Workers:    opts.Workers,
		BufferSize: opts.BufferSize,
		MaxRetries: opts.MaxRetries,
		Logger:     logger,
	})

	return &AuditService{queue: queue, logger: logger}
}

// Start launches the background workers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Record enqueues one audit entry. Failures are logged, never surfaced.
func (s *AuditService) Record(log models.AuditLog) {
	if s == nil {
		return
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	job := jobs.Job{ID: uuid.NewString(), Type: log.Action, Payload: log}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue audit record",
			zap.String("action", log.Action),
			zap.String("resource", log.Resource),
			zap.Error(err))
	}
}
