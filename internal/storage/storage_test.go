package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/apperrors"
)

// ============================================================================
// Validation
// ============================================================================

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		size        int64
		contentType string
		wantErr     bool
	}{
		{"png image", "shoe.png", 1024, "image/png", false},
		{"no content type", "shoe.JPG", 1024, "", false},
		{"video", "demo.mp4", 2048, "video/mp4", false},
		{"empty file", "shoe.png", 0, "image/png", true},
		{"too large", "shoe.png", DefaultMaxBytes + 1, "image/png", true},
		{"executable", "run.exe", 10, "application/octet-stream", true},
		{"mismatched type", "shoe.png", 10, "text/html", true},
		{"missing name", "", 10, "image/png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpload(tt.file, tt.size, 0, tt.contentType)
			if tt.wantErr {
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ============================================================================
// Local storage
// ============================================================================

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/api/media/files", 0)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.SaveFile(ctx, "photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/api/media/files/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := url[strings.LastIndex(url, "/")+1:]
	rc, err := s.GetFile(ctx, name)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
}

func TestLocalStorageRejectsOversizedStream(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/files", 4)
	require.NoError(t, err)

	_, err = s.SaveFile(context.Background(), "big.png", strings.NewReader("0123456789"))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestLocalStorageGetFile(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/files", 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.GetFile(ctx, "missing.png")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = s.GetFile(ctx, "../etc/passwd")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

// ============================================================================
// Document service storage
// ============================================================================

func TestDocumentServiceStorageSaveFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "catalog-media", r.FormValue("bucket"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "img", string(data))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"url": "https://cdn.example.com/catalog-media/x.png"},
		})
	}))
	defer server.Close()

	s := NewDocumentServiceStorage(server.URL, "", 0)
	url, err := s.SaveFile(context.Background(), "x.png", strings.NewReader("img"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/catalog-media/x.png", url)
}

func TestDocumentServiceStorageGetFileNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewDocumentServiceStorage(server.URL, "media", 0)
	_, err := s.GetFile(context.Background(), "gone.png")

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
