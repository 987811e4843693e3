package usecase

import (
	"context"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/validation"
)

type settingsUsecase struct {
	writer
}

// NewSettingsUsecase creates a new site settings use case
func NewSettingsUsecase(deps WriteDeps) domain.SettingsUsecase {
	return &settingsUsecase{writer: newWriter("settings", deps)}
}

func (uc *settingsUsecase) UpdateSiteSettings(ctx context.Context, input domain.UpdateSiteSettingsInput) (*domain.WriteResult, error) {
	input.ID = validation.SanitizeLine(input.ID)
	input.SiteName = validation.SanitizeLine(input.SiteName)
	input.ResponsiblePerson = validation.SanitizeLine(input.ResponsiblePerson)
	input.EmergencyContact = validation.SanitizeLine(input.EmergencyContact)

	if msg := uc.validator.Check(input, nil); msg != "" {
		return domain.Invalid(msg), nil
	}

	row := domain.Row{
		"id":                 input.ID,
		"site_name":          input.SiteName,
		"responsible_person": input.ResponsiblePerson,
		"emergency_contact":  input.EmergencyContact,
		"reminder_days":      input.ReminderDays,
	}

	if !uc.online(ctx) {
		if err := uc.enqueue(ctx, pending(domain.TagSiteSettings, row)); err != nil {
			return nil, err
		}
		return uc.queued(input.ID), nil
	}

	if err := uc.gateway.Update(ctx, domain.TableSiteSettings, withoutID(row), domain.ByID(input.ID)); err != nil {
		return nil, uc.remoteError("update site settings", err)
	}
	return uc.applied(input.ID), nil
}
