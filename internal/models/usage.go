package models

import "time"

// UsageRecord is an immutable ledger row. One row per successful job
// execution attempt that reaches the metering stage; append-only.
type UsageRecord struct {
	ID               string    `json:"id" db:"id"`
	TenantID         string    `json:"tenant_id" db:"tenant_id"`
	IntegrationID    string    `json:"integration_id" db:"integration_id"`
	DocumentJobID    string    `json:"document_job_id" db:"document_job_id"`
	Provider         string    `json:"provider" db:"provider"`
	ModelVersion     string    `json:"model_version,omitempty" db:"model_version"`
	PagesProcessed   int       `json:"pages_processed" db:"pages_processed"`
	FileSizeMB       float64   `json:"file_size_mb" db:"file_size_mb"`
	ProcessingTimeMS int64     `json:"processing_time_ms" db:"processing_time_ms"`
	CostCents        int64     `json:"cost_cents" db:"cost_cents"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
