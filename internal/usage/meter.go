// Package usage derives billable cost from pipeline output and appends
// it to the tenant's usage ledger.
package usage

import (
	"context"
	"log/slog"
	"math"

	"github.com/vitohq/docintel/internal/models"
	"github.com/vitohq/docintel/internal/persistence"
)

const bytesPerMB = 1024 * 1024

type Meter struct {
	store persistence.Store
	// costPerPage holds provider-specific per-page rates in dollars,
	// supplied by configuration.
	costPerPage map[string]float64
}

func NewMeter(store persistence.Store, costPerPage map[string]float64) *Meter {
	return &Meter{store: store, costPerPage: costPerPage}
}

// CostCents computes the billable cost for a recognition run:
// ceil(pages * cost_per_page * 100). Unknown providers bill at zero.
func (m *Meter) CostCents(provider string, pages int) int64 {
	rate := m.costPerPage[provider]
	return int64(math.Ceil(float64(pages) * rate * 100))
}

// Params describes one successful recognition run to be metered.
type Params struct {
	TenantID         string
	JobID            string
	Provider         string
	ModelVersion     string
	PagesProcessed   int
	FileSizeBytes    int64
	ProcessingTimeMS int64
}

// Record appends one ledger row for a successful job execution. It never
// fails the pipeline: a job whose record has gone missing is logged and
// skipped, because a bookkeeping problem must not retroactively fail a
// successful extraction.
func (m *Meter) Record(ctx context.Context, p Params) {
	job, err := m.store.GetDocumentJob(ctx, p.JobID, p.TenantID)
	if err != nil {
		slog.Warn("usage metering lookup failed", "job_id", p.JobID, "error", err)
		return
	}
	if job == nil {
		slog.Warn("job not found for usage recording", "job_id", p.JobID)
		return
	}

	rec := &models.UsageRecord{
		TenantID:         p.TenantID,
		IntegrationID:    job.IntegrationID,
		DocumentJobID:    p.JobID,
		Provider:         p.Provider,
		ModelVersion:     p.ModelVersion,
		PagesProcessed:   p.PagesProcessed,
		FileSizeMB:       float64(p.FileSizeBytes) / bytesPerMB,
		ProcessingTimeMS: p.ProcessingTimeMS,
		CostCents:        m.CostCents(p.Provider, p.PagesProcessed),
	}

	if err := m.store.RecordUsage(ctx, rec); err != nil {
		slog.Warn("usage record write failed", "job_id", p.JobID, "error", err)
		return
	}

	slog.Info("usage recorded", "job_id", p.JobID, "pages", p.PagesProcessed, "cost_cents", rec.CostCents)
}
