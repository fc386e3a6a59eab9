package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitohq/docintel/internal/models"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateDocumentJob(ctx context.Context, job *models.DocumentJob) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO document_jobs
		 (id, tenant_id, integration_id, document_profile_id, source_bucket, source_object_key,
		  mime_type, original_filename, file_size_bytes, status, correlation_id, external_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, job.TenantID, job.IntegrationID, job.DocumentProfileID, job.SourceBucket,
		job.SourceObjectKey, job.MimeType, job.OriginalFilename, job.FileSizeBytes,
		job.Status, job.CorrelationID, job.ExternalRef,
	)
	if err != nil {
		return fmt.Errorf("insert document job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocumentJob(ctx context.Context, jobID, tenantID string) (*models.DocumentJob, error) {
	var job models.DocumentJob
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, integration_id, document_profile_id, source_bucket, source_object_key,
		        mime_type, original_filename, file_size_bytes, status,
		        COALESCE(error_code, ''), COALESCE(error_message, ''),
		        correlation_id, COALESCE(external_ref, ''), created_at, updated_at, completed_at
		 FROM document_jobs WHERE id = $1 AND tenant_id = $2`,
		jobID, tenantID,
	).Scan(&job.ID, &job.TenantID, &job.IntegrationID, &job.DocumentProfileID, &job.SourceBucket,
		&job.SourceObjectKey, &job.MimeType, &job.OriginalFilename, &job.FileSizeBytes, &job.Status,
		&job.ErrorCode, &job.ErrorMessage, &job.CorrelationID, &job.ExternalRef,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document job: %w", err)
	}
	return &job, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, jobID, status string, jobErr *models.JobError) error {
	errCode, errMsg := "", ""
	if jobErr != nil {
		errCode, errMsg = jobErr.Code, jobErr.Message
	}

	// The WHERE clause enforces the state machine at the row level: a
	// stale or replayed update cannot move a completed job anywhere, and
	// only a retry entering processing can move a job out of failed.
	_, err := s.db.Exec(ctx,
		`UPDATE document_jobs
		 SET status = $1,
		     error_code = NULLIF($2, ''),
		     error_message = NULLIF($3, ''),
		     completed_at = CASE WHEN $1 IN ('completed', 'failed') THEN now() ELSE completed_at END,
		     updated_at = now()
		 WHERE id = $4
		   AND ((status IN ('queued', 'failed') AND $1 = 'processing')
		     OR (status = 'processing' AND $1 IN ('completed', 'failed')))`,
		status, errCode, errMsg, jobID,
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocumentProfile(ctx context.Context, profileID, tenantID string) (*models.DocumentProfile, error) {
	var p models.DocumentProfile
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, name, rules, COALESCE(schema, 'null'::jsonb), is_active
		 FROM document_profiles WHERE id = $1 AND tenant_id = $2 AND is_active`,
		profileID, tenantID,
	).Scan(&p.ID, &p.TenantID, &p.Name, &p.Rules, &p.Schema, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document profile: %w", err)
	}
	if string(p.Schema) == "null" {
		p.Schema = nil
	}
	return &p, nil
}

func (s *PostgresStore) ReplaceDocumentItems(ctx context.Context, tenantID, jobID string, items []models.DocumentItem) error {
	// Delete and insert must be one atomic unit; a crash between them
	// would leave a job with no items and break the idempotence
	// guarantee on replay.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin items tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM document_items WHERE document_job_id = $1 AND tenant_id = $2",
		jobID, tenantID,
	); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO document_items (tenant_id, document_job_id, page_number, fields)
			 VALUES ($1, $2, $3, $4)`,
			item.TenantID, item.DocumentJobID, item.PageNumber, item.Fields,
		); err != nil {
			return fmt.Errorf("insert document item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit items tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDocumentItems(ctx context.Context, jobID, tenantID string) ([]models.DocumentItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, document_job_id, page_number, fields, created_at
		 FROM document_items WHERE document_job_id = $1 AND tenant_id = $2
		 ORDER BY page_number, created_at`,
		jobID, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()

	var items []models.DocumentItem
	for rows.Next() {
		var it models.DocumentItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.DocumentJobID, &it.PageNumber, &it.Fields, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CountDocumentItems(ctx context.Context, jobID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM document_items WHERE document_job_id = $1", jobID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count document items: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) RecordUsage(ctx context.Context, rec *models.UsageRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO usage_records
		 (tenant_id, integration_id, document_job_id, provider, model_version,
		  pages_processed, file_size_mb, processing_time_ms, cost_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.TenantID, rec.IntegrationID, rec.DocumentJobID, rec.Provider, rec.ModelVersion,
		rec.PagesProcessed, rec.FileSizeMB, rec.ProcessingTimeMS, rec.CostCents,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}
