package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Tag identifies the intent of a queued mutation. It is not always a literal
// remote table name: some tags denote composite operations.
type Tag string

// Queue tags. The set is closed; services only enqueue these values.
const (
	TagAssets               Tag = "assets"
	TagAssetsUpdates        Tag = "assets_updates"
	TagAssetsDeletions      Tag = "assets_deletions"
	TagIncidents            Tag = "incidents"
	TagAccidents            Tag = "accidents"
	TagProfilesUpdates      Tag = "profiles_updates"
	TagSiteSettings         Tag = "site_settings"
	TagMaintenanceLogs      Tag = "maintenance_logs"
	TagStorageUploads       Tag = "storage_uploads"
	TagWorkOrderResolutions Tag = "work_order_resolutions"
)

const (
	updateSuffix   = "_updates"
	deletionSuffix = "_deletions"
)

// knownUpdateIntents are tags without the _updates suffix that still
// replay as update-by-id against the mapped table.
var knownUpdateIntents = map[Tag]string{
	TagSiteSettings: "site_settings",
}

// IntentKind is the coarse category the router dispatches on.
type IntentKind string

const (
	IntentInsert     IntentKind = "insert"
	IntentUpdate     IntentKind = "update"
	IntentDelete     IntentKind = "delete"
	IntentUpload     IntentKind = "upload"
	IntentResolution IntentKind = "resolution"
)

// Intent is the classified form of a Tag.
type Intent struct {
	Kind  IntentKind
	Table string
}

// Classify maps a tag onto one of the five intent categories.
func Classify(tag Tag) Intent {
	switch tag {
	case TagWorkOrderResolutions:
		return Intent{Kind: IntentResolution}
	case TagStorageUploads:
		return Intent{Kind: IntentUpload}
	}

	name := string(tag)
	if strings.HasSuffix(name, deletionSuffix) {
		return Intent{Kind: IntentDelete, Table: strings.TrimSuffix(name, deletionSuffix)}
	}
	if strings.HasSuffix(name, updateSuffix) {
		return Intent{Kind: IntentUpdate, Table: strings.TrimSuffix(name, updateSuffix)}
	}
	if table, ok := knownUpdateIntents[tag]; ok {
		return Intent{Kind: IntentUpdate, Table: table}
	}

	return Intent{Kind: IntentInsert, Table: name}
}

// QueueRecord is a pending mutation awaiting remote application.
type QueueRecord struct {
	ID         string          `json:"id"`
	Table      Tag             `json:"table"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// QueueRepository is the local durable queue of pending mutations.
// Insertion order is drain order.
type QueueRepository interface {
	Enqueue(ctx context.Context, table Tag, payload interface{}) (string, error)
	// EnqueueBatch appends entries in order with a single write. Either all
	// of them are stored or none are.
	EnqueueBatch(ctx context.Context, entries []PendingWrite) ([]string, error)
	PeekAll(ctx context.Context) ([]QueueRecord, error)
	Remove(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}

// KeyValueStore is the persistent string store backing the queue.
// It must survive process restarts.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// Swapper is implemented by stores that can replace a value only while it
// still holds what the caller last read. oldFound=false means the key was
// absent. A false result with a nil error means another writer got there
// first.
type Swapper interface {
	CompareAndSwap(ctx context.Context, key string, old string, oldFound bool, value string) (bool, error)
}

// DrainLocker is implemented by queues whose store may be shared between
// processes. TryLockDrain reports ok=false while another holder drains.
type DrainLocker interface {
	TryLockDrain(ctx context.Context) (unlock func(), ok bool, err error)
}

// PendingWrite is one entry of a batch enqueue.
type PendingWrite struct {
	Table   Tag
	Payload interface{}
}

// IDPayload is the minimal payload of delete intents.
type IDPayload struct {
	ID string `json:"id"`
}

// UploadPayload is the payload of storage_uploads records. Exactly one of
// Data or LocalPath is expected.
type UploadPayload struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
	LocalPath   string `json:"local_path,omitempty"`
}

// ResolutionPayload is one composite work-order resolution: evidence upload,
// update-by-id on the task row and, for asset tasks, a maintenance log insert.
type ResolutionPayload struct {
	TaskID              string                 `json:"task_id"`
	IsAssetTask         bool                   `json:"is_asset_task"`
	FormData            map[string]interface{} `json:"form_data"`
	EvidenceBucket      string                 `json:"evidence_bucket,omitempty"`
	EvidencePath        string                 `json:"evidence_path,omitempty"`
	EvidenceLocalPath   string                 `json:"evidence_local_path,omitempty"`
	EvidenceContentType string                 `json:"evidence_content_type,omitempty"`
	MaintenanceLog      map[string]interface{} `json:"maintenance_log,omitempty"`
}

// TargetTable resolves the row the resolution updates.
func (p *ResolutionPayload) TargetTable() string {
	if p.IsAssetTask {
		return TableAssets
	}
	return TableWorkOrders
}

// KeyValueStoreOpener opens one backend and returns a release func.
type KeyValueStoreOpener func(ctx context.Context) (store KeyValueStore, release func() error, err error)

// KeyValueStoreFactory resolves queue storage backends by name.
type KeyValueStoreFactory interface {
	RegisterBackend(name string, opener KeyValueStoreOpener)
	Open(ctx context.Context, name string) (KeyValueStore, func() error, error)
	Backends() []string
}
