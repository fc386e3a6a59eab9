package models

import (
	"encoding/json"
	"time"
)

// Lifecycle event names emitted by the pipeline. Event metadata carries
// counts, durations and opaque ids only — never recognized text, extracted
// field values, or filenames. That is a compliance invariant, not style.
const (
	EventDocumentIngested     = "document.ingested"
	EventRecognitionCompleted = "recognition.completed"
	EventItemsExtracted       = "items.extracted"
	EventDocumentCompleted    = "document.completed"
	EventDocumentFailed       = "document.failed"
)

// AuditEvent is a content-free lifecycle notification.
type AuditEvent struct {
	ID            string          `json:"id" db:"id"`
	TenantID      string          `json:"tenant_id" db:"tenant_id"`
	DocumentJobID string          `json:"document_job_id" db:"document_job_id"`
	Event         string          `json:"event" db:"event"`
	Metadata      json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
