package usecase

import (
	"context"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/utils"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

const notesTooShort = "Resolution notes are too short."

var resolveMessages = validation.Messages{
	"resolution_notes.required": notesTooShort,
	"resolution_notes.min":      notesTooShort,
	"evidence_local_path":       "Evidence photo is required.",
}

type workOrderUsecase struct {
	writer
}

// NewWorkOrderUsecase creates a new work order use case
func NewWorkOrderUsecase(deps WriteDeps) domain.WorkOrderUsecase {
	return &workOrderUsecase{writer: newWriter("work_order", deps)}
}

// ResolveTask closes a work order or an asset's due service. Offline the
// whole resolution is queued as one record.
func (uc *workOrderUsecase) ResolveTask(ctx context.Context, input domain.ResolveTaskInput) (*domain.WriteResult, error) {
	input.TaskID = validation.SanitizeLine(input.TaskID)
	input.ResolutionNotes = validation.SanitizeText(input.ResolutionNotes)
	input.ResolvedBy = validation.SanitizeLine(input.ResolvedBy)
	input.EvidenceLocalPath = validation.SanitizeLine(input.EvidenceLocalPath)

	if msg := uc.validator.Check(input, resolveMessages); msg != "" {
		return domain.Invalid(msg), nil
	}

	payload := uc.buildResolution(input)

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagWorkOrderResolutions, payload)); err != nil {
			return nil, err
		}
		return uc.queued(input.TaskID), nil
	}

	if err := applyResolution(ctx, uc.gateway, payload); err != nil {
		return nil, uc.remoteError("resolve task", err)
	}
	return uc.applied(input.TaskID), nil
}

func (uc *workOrderUsecase) buildResolution(input domain.ResolveTaskInput) *domain.ResolutionPayload {
	now := uc.clock.Now()
	today := utils.FormatDate(now)

	p := &domain.ResolutionPayload{
		TaskID:              input.TaskID,
		IsAssetTask:         input.IsAssetTask,
		EvidenceBucket:      uc.buckets.Evidence,
		EvidencePath:        uc.objectPath(input.TaskID, extOf(input.EvidenceLocalPath)),
		EvidenceLocalPath:   input.EvidenceLocalPath,
		EvidenceContentType: input.EvidenceContentType,
	}

	if input.IsAssetTask {
		p.FormData = map[string]interface{}{
			"status":            domain.AssetStatusCompliant,
			"last_service_date": today,
			"next_service_due":  utils.FormatDate(utils.AddYears(now, 1)),
		}
		p.MaintenanceLog = map[string]interface{}{
			"id":           uc.newID(),
			"asset_id":     input.TaskID,
			"service_date": today,
			"notes":        input.ResolutionNotes,
			"performed_by": input.ResolvedBy,
		}
		return p
	}

	p.FormData = map[string]interface{}{
		"status":           domain.WorkOrderStatusResolved,
		"resolution_notes": input.ResolutionNotes,
		"resolved_by":      input.ResolvedBy,
		"resolved_at":      utils.FormatTime(now),
	}
	return p
}
