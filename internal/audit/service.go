// Package audit publishes content-free lifecycle events. Events carry
// counts, durations and opaque ids; recognized text, extracted field
// values and filenames never appear in them. Logs and events are a
// compliance surface, so this is enforced here rather than left to
// callers' discipline.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Emitter publishes one lifecycle event for a job.
type Emitter interface {
	Emit(ctx context.Context, tenantID, jobID, event string, metadata map[string]int64) error
}

// Multi fans one event out to several emitters. The first failure wins;
// later emitters still run.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, tenantID, jobID, event string, metadata map[string]int64) error {
	var firstErr error
	for _, e := range m {
		if err := e.Emit(ctx, tenantID, jobID, event, metadata); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Service writes audit events to the database and mirrors them to the
// structured log.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Emit(ctx context.Context, tenantID, jobID, event string, metadata map[string]int64) error {
	// Metadata is numeric by construction; there is no way to smuggle
	// document content through this interface.
	details, _ := json.Marshal(metadata)

	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_events (tenant_id, document_job_id, event, metadata)
		 VALUES ($1, $2, $3, $4)`,
		tenantID, jobID, event, details,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	attrs := []any{"event", event, "tenant_id", tenantID, "job_id", jobID}
	for k, v := range metadata {
		attrs = append(attrs, k, v)
	}
	slog.Info("audit", attrs...)

	return nil
}
