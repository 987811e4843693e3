package usecase

import (
	"context"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

// maxCertificateSize bounds inline certificate scans.
const maxCertificateSize = 8 << 20

type contractorUsecase struct {
	writer
}

// NewContractorUsecase creates a new contractor use case
func NewContractorUsecase(deps WriteDeps) domain.ContractorUsecase {
	return &contractorUsecase{writer: newWriter("contractor", deps)}
}

func (uc *contractorUsecase) UpdateSpecialism(ctx context.Context, input domain.UpdateSpecialismInput) (*domain.WriteResult, error) {
	input.ContractorID = validation.SanitizeLine(input.ContractorID)
	input.Specialism = validation.SanitizeLine(input.Specialism)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	return uc.patchProfile(ctx, "update specialism", domain.Row{
		"id":         input.ContractorID,
		"specialism": input.Specialism,
	})
}

// UpdateCompetence records the competence card and, when present, uploads the
// certificate scan. The scan's object path is fixed before the upload so an
// offline patch can already reference its public URL.
func (uc *contractorUsecase) UpdateCompetence(ctx context.Context, input domain.UpdateCompetenceInput) (*domain.WriteResult, error) {
	input.ContractorID = validation.SanitizeLine(input.ContractorID)
	input.CompetenceCardNumber = validation.SanitizeLine(input.CompetenceCardNumber)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}
	if len(input.Certificate) > maxCertificateSize {
		return domain.Invalid("Certificate is too large."), nil
	}

	row := domain.Row{
		"id":                     input.ContractorID,
		"competence_card_number": input.CompetenceCardNumber,
		"competence_expiry":      input.CompetenceExpiry,
	}

	var cert *domain.UploadPayload
	if len(input.Certificate) > 0 {
		detected := mimetype.Detect(input.Certificate)
		contentType := input.CertificateContentType
		if contentType == "" {
			contentType = detected.String()
		}
		cert = &domain.UploadPayload{
			Bucket:      uc.buckets.Certificates,
			Path:        uc.objectPath(input.ContractorID, detected.Extension()),
			ContentType: contentType,
			Data:        input.Certificate,
		}
	}

	if !uc.online(ctx) {
		var batch []domain.PendingWrite
		if cert != nil {
			batch = append(batch, pending(domain.TagStorageUploads, cert))
			row["certificate_url"] = uc.gateway.GetPublicURL(cert.Bucket, cert.Path)
		}
		batch = append(batch, pending(domain.TagProfilesUpdates, row))
		if err := uc.enqueue(ctx, batch...); err != nil {
			return nil, err
		}
		return uc.queued(input.ContractorID), nil
	}

	if cert != nil {
		res, err := uc.gateway.UploadFile(ctx, domain.UploadRequest{
			Bucket:      cert.Bucket,
			Path:        cert.Path,
			Data:        cert.Data,
			ContentType: cert.ContentType,
		})
		if err != nil {
			return nil, uc.remoteError("upload certificate", err)
		}
		row["certificate_url"] = uc.gateway.GetPublicURL(cert.Bucket, res.Path)
	}

	if err := uc.gateway.Update(ctx, domain.TableProfiles, withoutID(row), domain.ByID(input.ContractorID)); err != nil {
		return nil, uc.remoteError("update competence", err)
	}
	return uc.applied(input.ContractorID), nil
}

func (uc *contractorUsecase) UpdateStatus(ctx context.Context, input domain.UpdateStatusInput) (*domain.WriteResult, error) {
	input.ContractorID = validation.SanitizeLine(input.ContractorID)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	return uc.patchProfile(ctx, "update verification status", domain.Row{
		"id":                  input.ContractorID,
		"verification_status": input.Status,
	})
}

func (uc *contractorUsecase) patchProfile(ctx context.Context, op string, row domain.Row) (*domain.WriteResult, error) {
	id, _ := row["id"].(string)

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagProfilesUpdates, row)); err != nil {
			return nil, err
		}
		return uc.queued(id), nil
	}

	if err := uc.gateway.Update(ctx, domain.TableProfiles, withoutID(row), domain.ByID(id)); err != nil {
		return nil, uc.remoteError(op, err)
	}
	return uc.applied(id), nil
}
