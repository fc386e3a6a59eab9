package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vitohq/docintel/internal/audit"
	"github.com/vitohq/docintel/internal/models"
	"github.com/vitohq/docintel/internal/persistence"
	"github.com/vitohq/docintel/internal/queue"
	"github.com/vitohq/docintel/internal/storage"
	"github.com/vitohq/docintel/internal/tenant"
)

// Enqueuer submits a job payload to the processing queue.
type Enqueuer interface {
	EnqueueDocumentProcess(payload queue.DocumentProcessPayload) (string, error)
}

// Service handles document intake: store the blob, create the job
// record, enqueue it for async processing.
type Service struct {
	store   persistence.Store
	objects storage.ObjectStore
	queue   Enqueuer
	auditor audit.Emitter
	bucket  string
}

func NewService(store persistence.Store, objects storage.ObjectStore, q Enqueuer, auditor audit.Emitter, bucket string) *Service {
	return &Service{
		store:   store,
		objects: objects,
		queue:   q,
		auditor: auditor,
		bucket:  bucket,
	}
}

type IngestRequest struct {
	DocumentProfileID string
	Filename          string
	MimeType          string
	Data              []byte
	ExternalRef       string
}

// Ingest uploads the document, records the job as queued and enqueues
// it. The returned job id is the handle callers poll for status.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*models.DocumentJob, error) {
	tenantID := tenant.IDFromContext(ctx)
	integrationID := tenant.IntegrationFromContext(ctx)
	if tenantID == "" {
		return nil, fmt.Errorf("tenant context is required")
	}
	if req.DocumentProfileID == "" {
		return nil, fmt.Errorf("document_profile_id is required")
	}

	jobID := uuid.New().String()

	coords := storage.Coordinates{TenantID: tenantID, JobID: jobID, Filename: req.Filename}
	objectKey, err := s.objects.Upload(ctx, coords, req.Data, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	job := &models.DocumentJob{
		ID:                jobID,
		TenantID:          tenantID,
		IntegrationID:     integrationID,
		DocumentProfileID: req.DocumentProfileID,
		SourceBucket:      s.bucket,
		SourceObjectKey:   objectKey,
		MimeType:          req.MimeType,
		OriginalFilename:  req.Filename,
		FileSizeBytes:     int64(len(req.Data)),
		Status:            models.JobStatusQueued,
		CorrelationID:     uuid.New().String(),
		ExternalRef:       req.ExternalRef,
	}
	if err := s.store.CreateDocumentJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create document job: %w", err)
	}

	if err := s.auditor.Emit(ctx, tenantID, jobID, models.EventDocumentIngested, map[string]int64{
		"file_size_bytes": job.FileSizeBytes,
	}); err != nil {
		slog.Warn("audit emit failed", "job_id", jobID, "event", models.EventDocumentIngested, "error", err)
	}

	if _, err := s.queue.EnqueueDocumentProcess(queue.DocumentProcessPayload{
		TenantID:          tenantID,
		JobID:             jobID,
		DocumentProfileID: req.DocumentProfileID,
		SourceBucket:      s.bucket,
		SourceObjectKey:   objectKey,
		MimeType:          req.MimeType,
		OriginalFilename:  req.Filename,
	}); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	slog.Info("document ingested", "tenant_id", tenantID, "job_id", jobID)
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*models.DocumentJob, error) {
	return s.store.GetDocumentJob(ctx, jobID, tenant.IDFromContext(ctx))
}

func (s *Service) ListItems(ctx context.Context, jobID string) ([]models.DocumentItem, error) {
	return s.store.ListDocumentItems(ctx, jobID, tenant.IDFromContext(ctx))
}
