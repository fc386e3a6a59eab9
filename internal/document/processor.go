package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitohq/docintel/internal/audit"
	"github.com/vitohq/docintel/internal/models"
	"github.com/vitohq/docintel/internal/persistence"
	"github.com/vitohq/docintel/internal/queue"
	"github.com/vitohq/docintel/internal/recognition"
	"github.com/vitohq/docintel/internal/storage"
	"github.com/vitohq/docintel/internal/usage"
)

// ItemExtractor turns recognized pages plus a profile into structured
// item records.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, result *recognition.Result, profile *models.DocumentProfile, tenantID, jobID string) ([]models.DocumentItem, error)
}

// UsageMeter appends a ledger row for a successful run. Implementations
// must not fail the pipeline.
type UsageMeter interface {
	Record(ctx context.Context, p usage.Params)
}

// Processor orchestrates one job's pipeline run. Its collaborators are
// injected once at construction and shared read-only across concurrent
// worker slots; the processor itself holds no per-job state.
type Processor struct {
	store      persistence.Store
	objects    storage.ObjectStore
	recognizer recognition.Provider
	extractor  ItemExtractor
	meter      UsageMeter
	auditor    audit.Emitter
}

func NewProcessor(
	store persistence.Store,
	objects storage.ObjectStore,
	recognizer recognition.Provider,
	extractor ItemExtractor,
	meter UsageMeter,
	auditor audit.Emitter,
) *Processor {
	return &Processor{
		store:      store,
		objects:    objects,
		recognizer: recognizer,
		extractor:  extractor,
		meter:      meter,
		auditor:    auditor,
	}
}

// Process runs the full pipeline for one job payload. On failure the job
// is marked failed with a classified code and the error is returned so
// the queue's retry policy decides what happens next; the processor
// keeps no retry state of its own.
func (p *Processor) Process(ctx context.Context, payload queue.DocumentProcessPayload) error {
	start := time.Now()

	slog.Info("processing document job",
		"tenant_id", payload.TenantID, "job_id", payload.JobID, "profile_id", payload.DocumentProfileID)

	if err := p.store.UpdateJobStatus(ctx, payload.JobID, models.JobStatusProcessing, nil); err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("update status to processing: %w", err))
	}

	data, err := p.objects.Download(ctx, storage.Coordinates{
		TenantID: payload.TenantID,
		JobID:    payload.JobID,
		Filename: payload.OriginalFilename,
	})
	if err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("download object: %w", err))
	}

	slog.Info("downloaded document", "job_id", payload.JobID, "size_bytes", len(data))

	profile, err := p.store.GetDocumentProfile(ctx, payload.DocumentProfileID, payload.TenantID)
	if err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("get document profile: %w", err))
	}
	if profile == nil {
		// Retried by the queue like any other failure; after the retry
		// budget is exhausted the job dead-letters for manual review.
		return p.fail(ctx, payload.TenantID, payload.JobID, &PipelineError{
			Code:    CodeProfileNotFound,
			Message: "document profile not found: " + payload.DocumentProfileID,
		})
	}

	result, err := p.recognizer.ProcessDocument(ctx, data, payload.MimeType)
	if err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("recognition: %w", err))
	}

	slog.Info("recognition completed",
		"job_id", payload.JobID, "pages", len(result.Pages), "provider", result.Provider)

	items, err := p.extractor.ExtractItems(ctx, result, profile, payload.TenantID, payload.JobID)
	if err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("extract items: %w", err))
	}

	slog.Info("items extracted", "job_id", payload.JobID, "count", len(items))

	if err := p.store.ReplaceDocumentItems(ctx, payload.TenantID, payload.JobID, items); err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("persist items: %w", err))
	}

	p.meter.Record(ctx, usage.Params{
		TenantID:         payload.TenantID,
		JobID:            payload.JobID,
		Provider:         result.Provider,
		ModelVersion:     result.ModelVersion,
		PagesProcessed:   len(result.Pages),
		FileSizeBytes:    int64(len(data)),
		ProcessingTimeMS: result.ProcessingTimeMS,
	})

	if err := p.store.UpdateJobStatus(ctx, payload.JobID, models.JobStatusCompleted, nil); err != nil {
		return p.fail(ctx, payload.TenantID, payload.JobID, fmt.Errorf("update status to completed: %w", err))
	}

	p.emit(ctx, payload.TenantID, payload.JobID, models.EventRecognitionCompleted, map[string]int64{
		"pages":              int64(len(result.Pages)),
		"processing_time_ms": result.ProcessingTimeMS,
	})
	p.emit(ctx, payload.TenantID, payload.JobID, models.EventItemsExtracted, map[string]int64{
		"count": int64(len(items)),
	})
	p.emit(ctx, payload.TenantID, payload.JobID, models.EventDocumentCompleted, map[string]int64{
		"duration_ms": time.Since(start).Milliseconds(),
	})

	slog.Info("document job completed", "job_id", payload.JobID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// fail records the classified failure on the job and hands the original
// error back to the queue. Status is persisted before the error
// propagates, so observed state is never stale relative to the attempt.
func (p *Processor) fail(ctx context.Context, tenantID, jobID string, cause error) error {
	desc := Classify(cause)

	if err := p.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, &desc); err != nil {
		slog.Error("failed to record job failure", "job_id", jobID, "error", err)
	}

	p.emit(ctx, tenantID, jobID, models.EventDocumentFailed, nil)

	slog.Error("document job failed", "job_id", jobID, "code", desc.Code)
	return cause
}

// emit is best-effort: an audit write failing after the job completed
// must not push a completed job back through the retry machinery.
func (p *Processor) emit(ctx context.Context, tenantID, jobID, event string, metadata map[string]int64) {
	if err := p.auditor.Emit(ctx, tenantID, jobID, event, metadata); err != nil {
		slog.Warn("audit emit failed", "job_id", jobID, "event", event, "error", err)
	}
}
