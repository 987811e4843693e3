package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

type mutationRouter struct {
	gateway domain.Gateway
}

var _ domain.MutationRouter = (*mutationRouter)(nil)

// NewMutationRouter creates the router that replays queue records against gw.
func NewMutationRouter(gw domain.Gateway) domain.MutationRouter {
	return &mutationRouter{gateway: gw}
}

// Apply performs the remote operation record's tag stands for.
func (r *mutationRouter) Apply(ctx context.Context, record domain.QueueRecord) error {
	intent := domain.Classify(record.Table)

	switch intent.Kind {
	case domain.IntentResolution:
		var p domain.ResolutionPayload
		if err := decode(record, &p); err != nil {
			return err
		}
		return applyResolution(ctx, r.gateway, &p)

	case domain.IntentUpload:
		var p domain.UploadPayload
		if err := decode(record, &p); err != nil {
			return err
		}
		return r.upload(ctx, &p)

	case domain.IntentDelete:
		var p domain.IDPayload
		if err := decode(record, &p); err != nil {
			return err
		}
		if p.ID == "" {
			return fmt.Errorf("%w: %s without id", domain.ErrMalformedRecord, record.Table)
		}
		return r.gateway.Delete(ctx, intent.Table, domain.ByID(p.ID))

	case domain.IntentUpdate:
		var row domain.Row
		if err := decode(record, &row); err != nil {
			return err
		}
		id, _ := row["id"].(string)
		if id == "" {
			return fmt.Errorf("%w: %s without id", domain.ErrMalformedRecord, record.Table)
		}
		patch := withoutID(row)
		if len(patch) == 0 {
			return fmt.Errorf("%w: %s with empty patch", domain.ErrMalformedRecord, record.Table)
		}
		return r.gateway.Update(ctx, intent.Table, patch, domain.ByID(id))

	default:
		var row domain.Row
		if err := decode(record, &row); err != nil {
			return err
		}
		if len(row) == 0 {
			return fmt.Errorf("%w: %s with empty row", domain.ErrMalformedRecord, record.Table)
		}
		return r.gateway.Insert(ctx, intent.Table, []domain.Row{row})
	}
}

func (r *mutationRouter) upload(ctx context.Context, p *domain.UploadPayload) error {
	if p.Bucket == "" || p.Path == "" {
		return fmt.Errorf("%w: upload without bucket or path", domain.ErrMalformedRecord)
	}

	req := domain.UploadRequest{
		Bucket:      p.Bucket,
		Path:        p.Path,
		ContentType: p.ContentType,
	}
	switch {
	case len(p.Data) > 0:
		req.Data = p.Data
	case p.LocalPath != "":
		req.LocalPath = p.LocalPath
	default:
		return fmt.Errorf("%w: upload without data or local path", domain.ErrMalformedRecord)
	}

	_, err := r.gateway.UploadFile(ctx, req)
	return err
}

func decode(record domain.QueueRecord, v interface{}) error {
	if len(record.Payload) == 0 {
		return fmt.Errorf("%w: %s record %s has no payload", domain.ErrMalformedRecord, record.Table, record.ID)
	}
	if err := json.Unmarshal(record.Payload, v); err != nil {
		return fmt.Errorf("%w: %s record %s: %v", domain.ErrMalformedRecord, record.Table, record.ID, err)
	}
	return nil
}
