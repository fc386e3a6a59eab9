package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vitohq/docintel/internal/document"
	"github.com/vitohq/docintel/internal/models"
)

type stubService struct {
	job      *models.DocumentJob
	jobErr   error
	items    []models.DocumentItem
	itemsErr error
}

func (s *stubService) Ingest(ctx context.Context, req document.IngestRequest) (*models.DocumentJob, error) {
	return s.job, s.jobErr
}

func (s *stubService) GetJob(ctx context.Context, jobID string) (*models.DocumentJob, error) {
	return s.job, s.jobErr
}

func (s *stubService) ListItems(ctx context.Context, jobID string) ([]models.DocumentItem, error) {
	return s.items, s.itemsErr
}

func serveGet(svc documentService, path string) *httptest.ResponseRecorder {
	h := NewDocumentHandler(svc, 1024)
	r := chi.NewRouter()
	r.Get("/documents/{id}", h.Get)
	r.Get("/documents/{id}/items", h.Items)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetJobNotFound(t *testing.T) {
	rec := serveGet(&stubService{}, "/documents/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetStoreErrorIsOpaque(t *testing.T) {
	svc := &stubService{jobErr: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	rec := serveGet(svc, "/documents/job-1")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "connection refused") || strings.Contains(body, "10.0.0.5") {
		t.Errorf("response leaks internal error detail: %s", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("response = %s, want fixed message", body)
	}
}

func TestItemsStoreErrorIsOpaque(t *testing.T) {
	svc := &stubService{
		job:      &models.DocumentJob{ID: "job-1", Status: models.JobStatusCompleted},
		itemsErr: errors.New("pq: relation dropped"),
	}
	rec := serveGet(svc, "/documents/job-1/items")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "relation dropped") {
		t.Errorf("response leaks internal error detail: %s", rec.Body.String())
	}
}

func TestItemsHappyPath(t *testing.T) {
	svc := &stubService{
		job: &models.DocumentJob{ID: "job-1", Status: models.JobStatusCompleted},
		items: []models.DocumentItem{
			{ID: "i1", DocumentJobID: "job-1", PageNumber: 1},
			{ID: "i2", DocumentJobID: "job-1", PageNumber: 2},
		},
	}
	rec := serveGet(svc, "/documents/job-1/items")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"count":2`) {
		t.Errorf("response = %s, want count 2", body)
	}
}
