package usecase

import (
	"context"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

type assetUsecase struct {
	writer
}

// NewAssetUsecase creates a new asset use case
func NewAssetUsecase(deps WriteDeps) domain.AssetUsecase {
	return &assetUsecase{writer: newWriter("asset", deps)}
}

// CreateAsset registers a new asset. Its id is generated here so updates
// queued before the first sync can target it.
func (uc *assetUsecase) CreateAsset(ctx context.Context, input domain.CreateAssetInput) (*domain.WriteResult, error) {
	input.AssetName = validation.SanitizeLine(input.AssetName)
	input.Type = validation.SanitizeLine(input.Type)
	input.Regulation = validation.SanitizeLine(input.Regulation)
	input.Location = validation.SanitizeLine(input.Location)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	id := uc.newID()
	row := domain.Row{
		"id":               id,
		"asset_name":       input.AssetName,
		"type":             input.Type,
		"regulation":       input.Regulation,
		"location":         input.Location,
		"status":           domain.AssetStatusNonCompliant,
		"next_service_due": uc.today(),
	}

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagAssets, row)); err != nil {
			return nil, err
		}
		return uc.queued(id), nil
	}

	if err := uc.gateway.Insert(ctx, domain.TableAssets, []domain.Row{row}); err != nil {
		return nil, uc.remoteError("create asset", err)
	}
	return uc.applied(id), nil
}

// UpdateAsset patches the fields set on input.
func (uc *assetUsecase) UpdateAsset(ctx context.Context, input domain.UpdateAssetInput) (*domain.WriteResult, error) {
	input.ID = validation.SanitizeLine(input.ID)
	input.AssetName = validation.SanitizeOptional(input.AssetName)
	input.Type = validation.SanitizeOptional(input.Type)
	input.Regulation = validation.SanitizeOptional(input.Regulation)
	input.Location = validation.SanitizeOptional(input.Location)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	row := domain.Row{"id": input.ID}
	setIf(row, "asset_name", input.AssetName)
	setIf(row, "type", input.Type)
	setIf(row, "regulation", input.Regulation)
	setIf(row, "location", input.Location)
	setIf(row, "status", input.Status)
	setIf(row, "next_service_due", input.NextServiceDue)
	setIf(row, "last_service_date", input.LastServiceDate)

	if len(row) == 1 {
		return domain.Invalid("Nothing to update."), nil
	}

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagAssetsUpdates, row)); err != nil {
			return nil, err
		}
		return uc.queued(input.ID), nil
	}

	if err := uc.gateway.Update(ctx, domain.TableAssets, withoutID(row), domain.ByID(input.ID)); err != nil {
		return nil, uc.remoteError("update asset", err)
	}
	return uc.applied(input.ID), nil
}

// DeleteAsset removes an asset. Offline only the id is queued.
func (uc *assetUsecase) DeleteAsset(ctx context.Context, id string) (*domain.WriteResult, error) {
	id = validation.SanitizeLine(id)
	if id == "" {
		return domain.Invalid("Asset id is required."), nil
	}

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagAssetsDeletions, domain.IDPayload{ID: id})); err != nil {
			return nil, err
		}
		return uc.queued(id), nil
	}

	if err := uc.gateway.Delete(ctx, domain.TableAssets, domain.ByID(id)); err != nil {
		return nil, uc.remoteError("delete asset", err)
	}
	return uc.applied(id), nil
}

func setIf(row domain.Row, column string, value *string) {
	if value != nil {
		row[column] = *value
	}
}
