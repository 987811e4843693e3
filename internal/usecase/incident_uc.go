package usecase

import (
	"context"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

type incidentUsecase struct {
	writer
}

// NewIncidentUsecase creates a new incident use case
func NewIncidentUsecase(deps WriteDeps) domain.IncidentUsecase {
	return &incidentUsecase{writer: newWriter("incident", deps)}
}

func (uc *incidentUsecase) LogIncident(ctx context.Context, input domain.LogIncidentInput) (*domain.WriteResult, error) {
	input.Title = validation.SanitizeLine(input.Title)
	input.Description = validation.SanitizeText(input.Description)
	input.Location = validation.SanitizeLine(input.Location)
	input.ReportedBy = validation.SanitizeLine(input.ReportedBy)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	id := uc.newID()
	row := domain.Row{
		"id":            id,
		"title":         input.Title,
		"description":   input.Description,
		"location":      input.Location,
		"severity":      input.Severity,
		"incident_date": input.IncidentDate,
		"reported_by":   input.ReportedBy,
		"status":        domain.IncidentStatusOpen,
	}

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagIncidents, row)); err != nil {
			return nil, err
		}
		return uc.queued(id), nil
	}

	if err := uc.gateway.Insert(ctx, domain.TableIncidents, []domain.Row{row}); err != nil {
		return nil, uc.remoteError("log incident", err)
	}
	return uc.applied(id), nil
}

// LogAccident records an accident with an optional photo. Offline, the photo
// upload is queued ahead of the row, which already carries the photo's
// public URL since the object path is fixed here.
func (uc *incidentUsecase) LogAccident(ctx context.Context, input domain.LogAccidentInput) (*domain.WriteResult, error) {
	input.InjuredPerson = validation.SanitizeLine(input.InjuredPerson)
	input.Description = validation.SanitizeText(input.Description)
	input.Location = validation.SanitizeLine(input.Location)
	input.InjuryType = validation.SanitizeLine(input.InjuryType)
	input.ReportedBy = validation.SanitizeLine(input.ReportedBy)
	input.PhotoLocalPath = validation.SanitizeLine(input.PhotoLocalPath)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	id := uc.newID()
	row := domain.Row{
		"id":                id,
		"injured_person":    input.InjuredPerson,
		"description":       input.Description,
		"location":          input.Location,
		"injury_type":       input.InjuryType,
		"accident_date":     input.AccidentDate,
		"riddor_reportable": input.RiddorReportable,
		"reported_by":       input.ReportedBy,
	}

	var photo *domain.UploadPayload
	if input.PhotoLocalPath != "" {
		photo = &domain.UploadPayload{
			Bucket:      uc.buckets.Accidents,
			Path:        uc.objectPath(id, extOf(input.PhotoLocalPath)),
			ContentType: input.PhotoContentType,
			LocalPath:   input.PhotoLocalPath,
		}
	}

	if !uc.online(ctx) {
		var batch []domain.PendingWrite
		if photo != nil {
			batch = append(batch, pending(domain.TagStorageUploads, photo))
			row["photo_url"] = uc.gateway.GetPublicURL(photo.Bucket, photo.Path)
		}
		batch = append(batch, pending(domain.TagAccidents, row))
		if err := uc.enqueue(ctx, batch...); err != nil {
			return nil, err
		}
		return uc.queued(id), nil
	}

	if photo != nil {
		res, err := uc.gateway.UploadFile(ctx, domain.UploadRequest{
			Bucket:      photo.Bucket,
			Path:        photo.Path,
			LocalPath:   photo.LocalPath,
			ContentType: photo.ContentType,
		})
		if err != nil {
			return nil, uc.remoteError("upload accident photo", err)
		}
		row["photo_url"] = uc.gateway.GetPublicURL(photo.Bucket, res.Path)
	}

	if err := uc.gateway.Insert(ctx, domain.TableAccidents, []domain.Row{row}); err != nil {
		return nil, uc.remoteError("log accident", err)
	}
	return uc.applied(id), nil
}
