package persistence

import (
	"context"

	"github.com/vitohq/docintel/internal/models"
)

// Store is the typed persistence contract the pipeline consumes. All
// reads and writes are tenant-scoped; implementations must be safe for
// concurrent use by multiple worker slots.
type Store interface {
	CreateDocumentJob(ctx context.Context, job *models.DocumentJob) error
	GetDocumentJob(ctx context.Context, jobID, tenantID string) (*models.DocumentJob, error)
	// UpdateJobStatus persists a status transition. Transitions are
	// monotonic; an update that would move a job backward is a no-op.
	UpdateJobStatus(ctx context.Context, jobID, status string, jobErr *models.JobError) error
	GetDocumentProfile(ctx context.Context, profileID, tenantID string) (*models.DocumentProfile, error)
	// ReplaceDocumentItems atomically removes any existing items for the
	// job and inserts the fresh batch, so reprocessing converges to the
	// latest extraction output instead of accumulating duplicates.
	ReplaceDocumentItems(ctx context.Context, tenantID, jobID string, items []models.DocumentItem) error
	ListDocumentItems(ctx context.Context, jobID, tenantID string) ([]models.DocumentItem, error)
	CountDocumentItems(ctx context.Context, jobID string) (int, error)
	RecordUsage(ctx context.Context, rec *models.UsageRecord) error
}
