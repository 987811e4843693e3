package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/clock"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
	"github.com/alfanzaky/sitecomply/pkg/utils"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

// Buckets names the storage buckets the write services upload into.
type Buckets struct {
	Evidence     string
	Accidents    string
	Certificates string
}

// WriteDeps are the collaborators shared by every domain write service.
type WriteDeps struct {
	Gateway   domain.Gateway
	Queue     domain.QueueRepository
	Oracle    domain.ConnectivityOracle
	Validator *validation.Validator
	Clock     clock.Clock
	Publisher domain.EventPublisher
	Buckets   Buckets
	// NewID generates client-side row ids. Defaults to random UUIDs.
	NewID func() string
}

// writer holds the online/offline branch every write operation follows.
type writer struct {
	service   string
	gateway   domain.Gateway
	queue     domain.QueueRepository
	oracle    domain.ConnectivityOracle
	validator *validation.Validator
	clock     clock.Clock
	publisher domain.EventPublisher
	buckets   Buckets
	newID     func() string
}

func newWriter(service string, deps WriteDeps) writer {
	w := writer{
		service:   service,
		gateway:   deps.Gateway,
		queue:     deps.Queue,
		oracle:    deps.Oracle,
		validator: deps.Validator,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		buckets:   deps.Buckets,
		newID:     deps.NewID,
	}
	if w.clock == nil {
		w.clock = clock.RealClock{}
	}
	if w.validator == nil {
		w.validator = validation.New(w.clock)
	}
	if w.publisher == nil {
		w.publisher = noopPublisher{}
	}
	if w.newID == nil {
		w.newID = utils.GenerateUUID
	}
	if w.buckets.Evidence == "" {
		w.buckets.Evidence = domain.BucketEvidence
	}
	if w.buckets.Accidents == "" {
		w.buckets.Accidents = domain.BucketAccidents
	}
	if w.buckets.Certificates == "" {
		w.buckets.Certificates = domain.BucketCertificates
	}
	return w
}

func (w *writer) online(ctx context.Context) bool {
	return w.oracle.CurrentState(ctx).Connected
}

func (w *writer) today() string {
	return utils.FormatDate(w.clock.Now())
}

// enqueue stores tagged mutations for the next drain in one queue write, so
// an upload is never queued without the row that points at it.
func (w *writer) enqueue(ctx context.Context, entries ...domain.PendingWrite) error {
	ids, err := w.queue.EnqueueBatch(ctx, entries)
	if err != nil {
		logger.Error("Failed to queue offline write",
			logger.TraceID(ctx),
			logger.String("service", w.service),
			logger.Tag(string(entries[len(entries)-1].Table)),
			logger.Int("records", len(entries)),
			logger.ErrorField(err),
		)
		return err
	}

	for i, recordID := range ids {
		tag := string(entries[i].Table)
		logger.Info("Write queued offline",
			logger.TraceID(ctx),
			logger.String("service", w.service),
			logger.RecordID(recordID),
			logger.Tag(tag),
		)
		w.publisher.Publish(domain.EventRecordQueued, map[string]interface{}{
			"id":    recordID,
			"table": tag,
		})
	}
	return nil
}

// pending builds one batch entry.
func pending(tag domain.Tag, payload interface{}) domain.PendingWrite {
	return domain.PendingWrite{Table: tag, Payload: payload}
}

// queued is the result of a write that went to the offline queue.
func (w *writer) queued(id string) *domain.WriteResult {
	metrics.RecordDomainWrite(w.service, true)
	return &domain.WriteResult{Success: true, Offline: true, ID: id}
}

// applied is the result of a write that reached the remote backend.
func (w *writer) applied(id string) *domain.WriteResult {
	metrics.RecordDomainWrite(w.service, false)
	return &domain.WriteResult{Success: true, Offline: false, ID: id}
}

func (w *writer) remoteError(op string, err error) error {
	logger.Error("Direct write failed",
		logger.String("service", w.service),
		logger.String("operation", op),
		logger.ErrorField(err),
	)
	return fmt.Errorf("%w: %s: %w", domain.ErrRemote, op, err)
}

// objectPath builds "<owner>/<random id><ext>" for a new storage object.
func (w *writer) objectPath(owner, ext string) string {
	return utils.JoinPath(owner, w.newID()+strings.ToLower(ext))
}

func extOf(path string) string {
	return filepath.Ext(path)
}

// withoutID returns the patch part of an update row.
func withoutID(row domain.Row) domain.Row {
	patch := make(domain.Row, len(row))
	for k, v := range row {
		if k == "id" {
			continue
		}
		patch[k] = v
	}
	return patch
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]interface{}) {}
