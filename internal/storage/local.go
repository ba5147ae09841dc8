package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
)

// LocalStorage writes blobs to a directory on disk.
type LocalStorage struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStorage(dir, baseURL string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &LocalStorage{
		dir:      dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

func (s *LocalStorage) ValidateFile(name string, size int64, contentType string) error {
	return validateUpload(name, size, s.maxBytes, contentType)
}

// SaveFile stores r under a fresh uuid name that keeps the original extension.
func (s *LocalStorage) SaveFile(ctx context.Context, name string, r io.Reader) (string, error) {
	stored := uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(name)))

	f, err := os.OpenFile(filepath.Join(s.dir, stored), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperrors.Persistence(err, "failed to store file")
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	written, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if copyErr == nil && written > limit {
		copyErr = apperrors.Validation("file %s exceeds the %d byte limit", filepath.Base(name), limit)
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = ctx.Err()
	}
	if copyErr != nil {
		os.Remove(filepath.Join(s.dir, stored))
		var appErr *apperrors.Error
		if errors.As(copyErr, &appErr) {
			return "", appErr
		}
		return "", apperrors.Persistence(copyErr, "failed to store file")
	}

	return s.baseURL + "/" + stored, nil
}

func (s *LocalStorage) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("file %s not found", name)
		}
		return nil, apperrors.Persistence(err, "failed to open file")
	}
	return f, nil
}
