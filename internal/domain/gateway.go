package domain

import "context"

// Remote table names.
const (
	TableAssets          = "assets"
	TableIncidents       = "incidents"
	TableAccidents       = "accidents"
	TableProfiles        = "profiles"
	TableSiteSettings    = "site_settings"
	TableWorkOrders      = "work_orders"
	TableMaintenanceLogs = "maintenance_logs"
)

// Storage buckets.
const (
	BucketEvidence     = "evidence"
	BucketAccidents    = "accident-photos"
	BucketCertificates = "certificates"
)

// Row is a single record sent to the remote relational store.
type Row map[string]interface{}

// Filter restricts update and delete to rows where Column equals Value.
type Filter struct {
	Column string
	Value  interface{}
}

// ByID is the filter every update-by-id and delete-by-id uses.
func ByID(id string) Filter {
	return Filter{Column: "id", Value: id}
}

// UploadRequest describes one object upload. Data wins over LocalPath when both are set.
type UploadRequest struct {
	Bucket      string
	Path        string
	Data        []byte
	LocalPath   string
	ContentType string
}

// UploadResult is the stored object's path within its bucket.
type UploadResult struct {
	Path string `json:"path"`
}

// RowGateway is the relational half of the remote data gateway.
type RowGateway interface {
	Insert(ctx context.Context, table string, records []Row) error
	Update(ctx context.Context, table string, patch Row, filter Filter) error
	Delete(ctx context.Context, table string, filter Filter) error
}

// FileGateway is the object storage half of the remote data gateway.
type FileGateway interface {
	UploadFile(ctx context.Context, req UploadRequest) (*UploadResult, error)
	GetPublicURL(bucket, path string) string
}

// Gateway abstracts CRUD and file upload against the remote backend.
type Gateway interface {
	RowGateway
	FileGateway
}
