package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
)

// DocumentServiceStorage forwards blobs to the platform document service.
type DocumentServiceStorage struct {
	baseURL    string
	bucket     string
	maxBytes   int64
	httpClient *http.Client
}

type documentUploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL  string `json:"url"`
		Path string `json:"path"`
	} `json:"data"`
}

func NewDocumentServiceStorage(baseURL, bucket string, maxBytes int64) *DocumentServiceStorage {
	if bucket == "" {
		bucket = "catalog-media"
	}
	return &DocumentServiceStorage{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		bucket:   bucket,
		maxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *DocumentServiceStorage) ValidateFile(name string, size int64, contentType string) error {
	return validateUpload(name, size, s.maxBytes, contentType)
}

func (s *DocumentServiceStorage) SaveFile(ctx context.Context, name string, r io.Reader) (string, error) {
	stored := uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(name)))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("bucket", s.bucket)
	writer.WriteField("isPublic", "true")
	writer.WriteField("path", stored)

	part, err := writer.CreateFormFile("file", stored)
	if err != nil {
		return "", apperrors.Persistence(err, "failed to build upload")
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", apperrors.Persistence(err, "failed to read upload")
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.Persistence(err, "failed to build upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/documents/upload", &body)
	if err != nil {
		return "", apperrors.Persistence(err, "failed to create upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Persistence(err, "failed to communicate with document service")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", apperrors.Persistence(fmt.Errorf("document service returned %d", resp.StatusCode), "document service rejected the upload")
	}

	var parsed documentUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Persistence(err, "failed to read document service response")
	}
	if parsed.Data.URL != "" {
		return parsed.Data.URL, nil
	}
	return s.fileURL(stored), nil
}

func (s *DocumentServiceStorage) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.fileURL(name), nil)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to create download request")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to communicate with document service")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, apperrors.NotFound("file %s not found", name)
	case resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, apperrors.Persistence(fmt.Errorf("document service returned %d", resp.StatusCode), "failed to download file")
	}
	return resp.Body, nil
}

func (s *DocumentServiceStorage) fileURL(name string) string {
	return s.baseURL + "/api/v1/documents/" + url.PathEscape(s.bucket) + "/" + url.PathEscape(name)
}
