package usecase

import (
	"context"
	"fmt"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// applyResolution uploads the evidence, marks the task resolved and, for
// asset tasks, appends a maintenance log. Direct writes and queue replay
// both run it so they leave identical remote state.
func applyResolution(ctx context.Context, gw domain.Gateway, p *domain.ResolutionPayload) error {
	if p.TaskID == "" {
		return fmt.Errorf("%w: resolution without task id", domain.ErrMalformedRecord)
	}

	formData := make(domain.Row, len(p.FormData)+1)
	for k, v := range p.FormData {
		formData[k] = v
	}

	var evidenceURL string
	if p.EvidenceLocalPath != "" {
		if p.EvidenceBucket == "" || p.EvidencePath == "" {
			return fmt.Errorf("%w: evidence without bucket or path", domain.ErrMalformedRecord)
		}
		res, err := gw.UploadFile(ctx, domain.UploadRequest{
			Bucket:      p.EvidenceBucket,
			Path:        p.EvidencePath,
			LocalPath:   p.EvidenceLocalPath,
			ContentType: p.EvidenceContentType,
		})
		if err != nil {
			return fmt.Errorf("upload evidence: %w", err)
		}
		evidenceURL = gw.GetPublicURL(p.EvidenceBucket, res.Path)
		formData["evidence_url"] = evidenceURL
	}

	table := p.TargetTable()
	if err := gw.Update(ctx, table, formData, domain.ByID(p.TaskID)); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}

	if !p.IsAssetTask || len(p.MaintenanceLog) == 0 {
		return nil
	}

	entry := make(domain.Row, len(p.MaintenanceLog)+1)
	for k, v := range p.MaintenanceLog {
		entry[k] = v
	}
	if evidenceURL != "" {
		entry["evidence_url"] = evidenceURL
	}
	if err := gw.Insert(ctx, domain.TableMaintenanceLogs, []domain.Row{entry}); err != nil {
		return fmt.Errorf("insert maintenance log: %w", err)
	}
	return nil
}
