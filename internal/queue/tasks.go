package queue

import "fmt"

const (
	// QueueName is the asynq queue all document jobs run on.
	QueueName = "document-intelligence"

	TypeDocumentProcess = "document:process"
)

// DocumentProcessPayload is the queue message for one document job. The
// JobID doubles as the queue deduplication key: two enqueues with the
// same id while one is outstanding collapse into a single execution.
type DocumentProcessPayload struct {
	TenantID          string `json:"tenant_id"`
	JobID             string `json:"job_id"`
	DocumentProfileID string `json:"document_profile_id"`
	SourceBucket      string `json:"source_bucket"`
	SourceObjectKey   string `json:"source_object_key"`
	MimeType          string `json:"mime_type"`
	OriginalFilename  string `json:"original_filename"`
}

func (p DocumentProcessPayload) Validate() error {
	switch {
	case p.TenantID == "":
		return fmt.Errorf("tenant_id is required")
	case p.JobID == "":
		return fmt.Errorf("job_id is required")
	case p.DocumentProfileID == "":
		return fmt.Errorf("document_profile_id is required")
	case p.SourceBucket == "":
		return fmt.Errorf("source_bucket is required")
	case p.SourceObjectKey == "":
		return fmt.Errorf("source_object_key is required")
	}
	return nil
}
