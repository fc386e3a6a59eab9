package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/vitohq/docintel/internal/models"
)

type stubStore struct {
	job       *models.DocumentJob
	jobErr    error
	records   []models.UsageRecord
	recordErr error
}

func (s *stubStore) CreateDocumentJob(ctx context.Context, job *models.DocumentJob) error {
	return nil
}

func (s *stubStore) GetDocumentJob(ctx context.Context, jobID, tenantID string) (*models.DocumentJob, error) {
	return s.job, s.jobErr
}

func (s *stubStore) UpdateJobStatus(ctx context.Context, jobID, status string, jobErr *models.JobError) error {
	return nil
}

func (s *stubStore) GetDocumentProfile(ctx context.Context, profileID, tenantID string) (*models.DocumentProfile, error) {
	return nil, nil
}

func (s *stubStore) ReplaceDocumentItems(ctx context.Context, tenantID, jobID string, items []models.DocumentItem) error {
	return nil
}

func (s *stubStore) ListDocumentItems(ctx context.Context, jobID, tenantID string) ([]models.DocumentItem, error) {
	return nil, nil
}

func (s *stubStore) CountDocumentItems(ctx context.Context, jobID string) (int, error) {
	return 0, nil
}

func (s *stubStore) RecordUsage(ctx context.Context, rec *models.UsageRecord) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.records = append(s.records, *rec)
	return nil
}

func TestCostCents(t *testing.T) {
	m := NewMeter(nil, map[string]float64{
		"openai": 0.01,
		"odd":    0.015,
		"local":  0,
	})

	tests := []struct {
		provider string
		pages    int
		want     int64
	}{
		{"openai", 3, 3},
		{"openai", 1, 1},
		{"openai", 0, 0},
		// Fractional cents round up.
		{"odd", 1, 2},
		{"odd", 3, 5},
		{"local", 100, 0},
		// Unknown providers bill at zero.
		{"unknown", 10, 0},
	}

	for _, tt := range tests {
		if got := m.CostCents(tt.provider, tt.pages); got != tt.want {
			t.Errorf("CostCents(%q, %d) = %d, want %d", tt.provider, tt.pages, got, tt.want)
		}
	}
}

func TestRecordWritesLedgerRow(t *testing.T) {
	store := &stubStore{
		job: &models.DocumentJob{ID: "job-1", TenantID: "tenant-1", IntegrationID: "integ-9"},
	}
	m := NewMeter(store, map[string]float64{"openai": 0.01})

	m.Record(context.Background(), Params{
		TenantID:         "tenant-1",
		JobID:            "job-1",
		Provider:         "openai",
		ModelVersion:     "gpt-4o",
		PagesProcessed:   5,
		FileSizeBytes:    3 * 1024 * 1024,
		ProcessingTimeMS: 900,
	})

	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.CostCents != 5 {
		t.Errorf("cost_cents = %d, want 5", rec.CostCents)
	}
	if rec.IntegrationID != "integ-9" {
		t.Errorf("integration_id = %q, want integ-9", rec.IntegrationID)
	}
	if rec.FileSizeMB != 3.0 {
		t.Errorf("file_size_mb = %v, want 3.0", rec.FileSizeMB)
	}
	if rec.PagesProcessed != 5 || rec.ProcessingTimeMS != 900 {
		t.Errorf("pages/time = %d/%d, want 5/900", rec.PagesProcessed, rec.ProcessingTimeMS)
	}
}

func TestRecordSkipsMissingJob(t *testing.T) {
	store := &stubStore{job: nil}
	m := NewMeter(store, map[string]float64{"openai": 0.01})

	m.Record(context.Background(), Params{TenantID: "tenant-1", JobID: "gone", Provider: "openai", PagesProcessed: 2})

	if len(store.records) != 0 {
		t.Errorf("records = %d, want 0 when job is missing", len(store.records))
	}
}

func TestRecordSwallowsStoreErrors(t *testing.T) {
	store := &stubStore{
		job:       &models.DocumentJob{ID: "job-1", TenantID: "tenant-1"},
		recordErr: errors.New("connection reset"),
	}
	m := NewMeter(store, map[string]float64{"openai": 0.01})

	// Must not panic or propagate; metering never fails the pipeline.
	m.Record(context.Background(), Params{TenantID: "tenant-1", JobID: "job-1", Provider: "openai", PagesProcessed: 1})

	store.jobErr = errors.New("lookup down")
	m.Record(context.Background(), Params{TenantID: "tenant-1", JobID: "job-1", Provider: "openai", PagesProcessed: 1})
}
