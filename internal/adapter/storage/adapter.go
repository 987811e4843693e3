package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const (
	objectEndpoint       = "/object/"
	publicObjectEndpoint = "/object/public/"
	maxErrorBody         = 4 << 10
)

// Adapter implements domain.FileGateway against an HTTP object store that
// accepts POST /object/{bucket}/{path} uploads and serves public objects
// under /object/public/{bucket}/{path}.
type Adapter struct {
	cfg        config.StorageConfig
	httpClient *http.Client
	timeout    time.Duration
}

var _ domain.FileGateway = (*Adapter)(nil)

// NewAdapter creates a new storage adapter instance
func NewAdapter(cfg config.StorageConfig, client *http.Client) *Adapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Adapter{
		cfg:        cfg,
		httpClient: client,
		timeout:    timeout,
	}
}

// UploadFile stores req's content. Raw bytes win over a local path.
// Re-uploading the same path overwrites, so replays are safe.
func (a *Adapter) UploadFile(ctx context.Context, req domain.UploadRequest) (result *domain.UploadResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("upload", req.Bucket, time.Since(start).Seconds(), err) }()

	if strings.TrimSpace(req.Bucket) == "" || strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("bucket and path are required")
	}

	data := req.Data
	if len(data) == 0 {
		if req.LocalPath == "" {
			return nil, fmt.Errorf("upload %s/%s: no data or local path", req.Bucket, req.Path)
		}
		data, err = os.ReadFile(req.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local file %s: %w", req.LocalPath, err)
		}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.objectURL(objectEndpoint, req.Bucket, req.Path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("x-upsert", "true")
	if a.cfg.ServiceKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.ServiceKey)
		httpReq.Header.Set("apikey", a.cfg.ServiceKey)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := readErrorMessage(resp.Body)
		logger.Error("Storage upload rejected",
			logger.String("bucket", req.Bucket),
			logger.String("path", req.Path),
			logger.Int("status", resp.StatusCode),
			logger.String("message", msg),
		)
		return nil, fmt.Errorf("storage returned status %d: %s", resp.StatusCode, msg)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Debug("Object uploaded",
		logger.String("bucket", req.Bucket),
		logger.String("path", req.Path),
		logger.Int("bytes", len(data)),
	)

	return &domain.UploadResult{Path: req.Path}, nil
}

// GetPublicURL is deterministic so offline writes can reference an object
// before it has been uploaded.
func (a *Adapter) GetPublicURL(bucket, path string) string {
	return a.publicURL(bucket, path)
}

func (a *Adapter) objectURL(endpoint, bucket, path string) string {
	return strings.TrimRight(a.cfg.BaseURL, "/") + endpoint + escapePath(bucket) + "/" + escapePath(path)
}

func (a *Adapter) publicURL(bucket, path string) string {
	return strings.TrimRight(a.cfg.GetPublicURL(), "/") + publicObjectEndpoint + escapePath(bucket) + "/" + escapePath(path)
}

func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
