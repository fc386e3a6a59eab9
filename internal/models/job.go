package models

import (
	"encoding/json"
	"time"
)

// Job status lifecycle: queued -> processing -> completed | failed.
// A failed job re-enters processing when the queue retries it; completed
// is terminal and nothing moves a job out of it.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ValidTransition reports whether a job may move from one status to another.
func ValidTransition(from, to string) bool {
	switch from {
	case JobStatusQueued, JobStatusFailed:
		return to == JobStatusProcessing
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// DocumentJob is one unit of work: a single uploaded document to be
// processed for one tenant. Created at intake, mutated only by the worker.
type DocumentJob struct {
	ID                string     `json:"id" db:"id"`
	TenantID          string     `json:"tenant_id" db:"tenant_id"`
	IntegrationID     string     `json:"integration_id" db:"integration_id"`
	DocumentProfileID string     `json:"document_profile_id" db:"document_profile_id"`
	SourceBucket      string     `json:"source_bucket" db:"source_bucket"`
	SourceObjectKey   string     `json:"source_object_key" db:"source_object_key"`
	MimeType          string     `json:"mime_type" db:"mime_type"`
	OriginalFilename  string     `json:"-" db:"original_filename"`
	FileSizeBytes     int64      `json:"file_size_bytes" db:"file_size_bytes"`
	Status            string     `json:"status" db:"status"`
	ErrorCode         string     `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage      string     `json:"error_message,omitempty" db:"error_message"`
	CorrelationID     string     `json:"correlation_id" db:"correlation_id"`
	ExternalRef       string     `json:"external_ref,omitempty" db:"external_ref"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// JobError is the two-part classified error recorded on a failed job.
// The message is derived from the failure, never from document content.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentProfile is tenant-owned extraction configuration. Read-only to
// the pipeline; owned and mutated by an external configuration surface.
type DocumentProfile struct {
	ID       string          `json:"id" db:"id"`
	TenantID string          `json:"tenant_id" db:"tenant_id"`
	Name     string          `json:"name" db:"name"`
	Rules    json.RawMessage `json:"rules" db:"rules"`
	Schema   json.RawMessage `json:"schema,omitempty" db:"schema"`
	IsActive bool            `json:"is_active" db:"is_active"`
}

// DocumentItem is one structured record extracted from a document. The
// item set for a job is replaceable as a whole; reprocessing never
// accumulates duplicates.
type DocumentItem struct {
	ID            string          `json:"id" db:"id"`
	TenantID      string          `json:"tenant_id" db:"tenant_id"`
	DocumentJobID string          `json:"document_job_id" db:"document_job_id"`
	PageNumber    int             `json:"page_number" db:"page_number"`
	Fields        json.RawMessage `json:"fields" db:"fields"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
