package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/domain"
)

type captured struct {
	method      string
	path        string
	contentType string
	auth        string
	upsert      string
	body        []byte
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.contentType = r.Header.Get("Content-Type")
		got.auth = r.Header.Get("Authorization")
		got.upsert = r.Header.Get("x-upsert")
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestUploadRawBytes(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"Key":"certificates/u1/card.pdf"}`)
	a := NewAdapter(config.StorageConfig{BaseURL: srv.URL + "/storage/v1/", ServiceKey: "svc"}, nil)

	res, err := a.UploadFile(context.Background(), domain.UploadRequest{
		Bucket:      "certificates",
		Path:        "u1/card.pdf",
		Data:        []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1/card.pdf", res.Path)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/storage/v1/object/certificates/u1/card.pdf", got.path)
	assert.Equal(t, "application/pdf", got.contentType)
	assert.Equal(t, "Bearer svc", got.auth)
	assert.Equal(t, "true", got.upsert)
	assert.Equal(t, []byte("%PDF-1.4 test"), got.body)
}

func TestUploadLocalFileDetectsContentType(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	a := NewAdapter(config.StorageConfig{BaseURL: srv.URL}, nil)

	path := filepath.Join(t.TempDir(), "evidence.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	_, err := a.UploadFile(context.Background(), domain.UploadRequest{
		Bucket:    "evidence",
		Path:      "wo 1/photo.png",
		LocalPath: path,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", got.contentType)
	assert.Equal(t, "/object/evidence/wo%201/photo.png", got.path)
	assert.Equal(t, png, got.body)
	assert.Empty(t, got.auth)
}

func TestUploadErrors(t *testing.T) {
	t.Run("server rejects", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusForbidden, `{"message":"new row violates row-level security policy"}`)
		a := NewAdapter(config.StorageConfig{BaseURL: srv.URL}, nil)

		_, err := a.UploadFile(context.Background(), domain.UploadRequest{Bucket: "b", Path: "p", Data: []byte("x")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "row-level security")
	})

	t.Run("missing local file", func(t *testing.T) {
		a := NewAdapter(config.StorageConfig{BaseURL: "http://unused"}, nil)
		_, err := a.UploadFile(context.Background(), domain.UploadRequest{Bucket: "b", Path: "p", LocalPath: "/nonexistent/file.jpg"})
		assert.Error(t, err)
	})

	t.Run("nothing to upload", func(t *testing.T) {
		a := NewAdapter(config.StorageConfig{BaseURL: "http://unused"}, nil)
		_, err := a.UploadFile(context.Background(), domain.UploadRequest{Bucket: "b", Path: "p"})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer func() {
			close(release)
			srv.CloseClientConnections()
			srv.Close()
		}()
		a := NewAdapter(config.StorageConfig{BaseURL: srv.URL}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err := a.UploadFile(ctx, domain.UploadRequest{Bucket: "b", Path: "p", Data: []byte("x")})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}

func TestGetPublicURL(t *testing.T) {
	a := NewAdapter(config.StorageConfig{BaseURL: "http://internal:54321/storage/v1"}, nil)
	assert.Equal(t, "http://internal:54321/storage/v1/object/public/accident-photos/acc-1/photo.jpg",
		a.GetPublicURL("accident-photos", "acc-1/photo.jpg"))

	cdn := NewAdapter(config.StorageConfig{BaseURL: "http://internal", PublicURL: "https://cdn.example.com/storage/v1/"}, nil)
	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/evidence/a%20b.jpg",
		cdn.GetPublicURL("evidence", "a b.jpg"))
}
