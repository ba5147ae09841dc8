package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"catalog-service/internal/apperrors"
)

// FileStorage keeps media blobs outside the database.
type FileStorage interface {
	// SaveFile stores r under a name derived from name and returns its public URL.
	SaveFile(ctx context.Context, name string, r io.Reader) (string, error)
	// GetFile opens a stored blob by the name SaveFile produced.
	GetFile(ctx context.Context, name string) (io.ReadCloser, error)
	// ValidateFile checks an upload before it is stored.
	ValidateFile(name string, size int64, contentType string) error
}

// DefaultMaxBytes caps uploads when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

var allowedExtensions = map[string]string{
	".jpg":  "image/",
	".jpeg": "image/",
	".png":  "image/",
	".gif":  "image/",
	".webp": "image/",
	".mp4":  "video/",
	".webm": "video/",
	".pdf":  "application/pdf",
}

// validateUpload is shared by every FileStorage implementation.
func validateUpload(name string, size, maxBytes int64, contentType string) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	base := filepath.Base(name)
	if name == "" || base == "." || base == "/" {
		return apperrors.Validation("file name is required")
	}
	if size <= 0 {
		return apperrors.Validation("file %s is empty", base)
	}
	if size > maxBytes {
		return apperrors.Validation("file %s exceeds the %d byte limit", base, maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(base))
	prefix, ok := allowedExtensions[ext]
	if !ok {
		return apperrors.Validation("file type %q is not allowed", ext)
	}
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), prefix) {
		return apperrors.Validation("content type %s does not match file extension %s", contentType, ext)
	}
	return nil
}

// cleanName rejects names that would escape the storage root.
func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", apperrors.Validation("invalid file name %q", name)
	}
	return name, nil
}
