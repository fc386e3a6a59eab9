package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitohq/docintel/internal/document"
	"github.com/vitohq/docintel/internal/models"
)

type documentService interface {
	Ingest(ctx context.Context, req document.IngestRequest) (*models.DocumentJob, error)
	GetJob(ctx context.Context, jobID string) (*models.DocumentJob, error)
	ListItems(ctx context.Context, jobID string) ([]models.DocumentItem, error)
}

type DocumentHandler struct {
	svc      documentService
	maxBytes int64
}

func NewDocumentHandler(svc documentService, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{svc: svc, maxBytes: maxBytes}
}

// Ingest accepts a multipart upload and returns 202 with the job id;
// processing happens asynchronously.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read file"})
		return
	}

	job, err := h.svc.Ingest(r.Context(), document.IngestRequest{
		DocumentProfileID: r.FormValue("document_profile_id"),
		Filename:          header.Filename,
		MimeType:          header.Header.Get("Content-Type"),
		Data:              data,
		ExternalRef:       r.FormValue("external_reference"),
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		slog.Error("get job failed", "job_id", jobID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if job == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *DocumentHandler) Items(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		slog.Error("get job failed", "job_id", jobID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if job == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}

	items, err := h.svc.ListItems(r.Context(), jobID)
	if err != nil {
		slog.Error("list items failed", "job_id", jobID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"status": job.Status,
		"items":  items,
		"count":  len(items),
	})
}
