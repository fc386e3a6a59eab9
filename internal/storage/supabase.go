package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Coordinates identify a stored document blob. Object keys are derived
// from them, never supplied by callers, so one tenant can never address
// another tenant's objects.
type Coordinates struct {
	TenantID string
	JobID    string
	Filename string
}

// ObjectStore fetches and stores tenant/job-scoped binary blobs.
type ObjectStore interface {
	Upload(ctx context.Context, coords Coordinates, data []byte, mimeType string) (string, error)
	Download(ctx context.Context, coords Coordinates) ([]byte, error)
	Head(ctx context.Context, coords Coordinates) (int64, bool, error)
	Delete(ctx context.Context, coords Coordinates) error
}

const defaultMaxBytes = 50 * 1024 * 1024

var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/tiff":      true,
	"image/tif":       true,
	"text/plain":      true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	maxBytes   int64
	httpClient *http.Client
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string, maxBytes int64) *SupabaseStore {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &SupabaseStore{
		baseURL:    supabaseURL + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, coords Coordinates, data []byte, mimeType string) (string, error) {
	if !allowedMimeTypes[strings.ToLower(mimeType)] {
		return "", fmt.Errorf("unsupported MIME type: %s", mimeType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("file size exceeds limit: %d bytes > %d bytes", len(data), s.maxBytes)
	}

	key := ObjectKey(coords)
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}

	return key, nil
}

func (s *SupabaseStore) Download(ctx context.Context, coords Coordinates) ([]byte, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, ObjectKey(coords))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download failed (%d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("object exceeds size limit: %d bytes", s.maxBytes)
	}

	return data, nil
}

func (s *SupabaseStore) Head(ctx context.Context, coords Coordinates) (int64, bool, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, ObjectKey(coords))

	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("create head request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("head object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode >= 400 {
		return 0, false, fmt.Errorf("head failed (%d)", resp.StatusCode)
	}

	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return size, true, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, coords Coordinates) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, ObjectKey(coords))

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("delete failed (%d)", resp.StatusCode)
	}

	return nil
}

// ObjectKey builds the tenant-isolated key for a document blob:
// tenants/{tenant}/jobs/{job}/source/{filename}. The filename is
// sanitized to block path traversal.
func ObjectKey(coords Coordinates) string {
	name := unsafeFilenameChars.ReplaceAllString(coords.Filename, "_")
	return fmt.Sprintf("tenants/%s/jobs/%s/source/%s", coords.TenantID, coords.JobID, name)
}
