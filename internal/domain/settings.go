package domain

import "context"

// SiteSettings is the single settings row for a site
type SiteSettings struct {
	ID                string `json:"id" db:"id"`
	SiteName          string `json:"site_name" db:"site_name"`
	ResponsiblePerson string `json:"responsible_person" db:"responsible_person"`
	EmergencyContact  string `json:"emergency_contact" db:"emergency_contact"`
	ReminderDays      int    `json:"reminder_days" db:"reminder_days"`
}

type UpdateSiteSettingsInput struct {
	ID                string `json:"id" validate:"required,max=64"`
	SiteName          string `json:"site_name" validate:"required,max=120"`
	ResponsiblePerson string `json:"responsible_person" validate:"required,max=120"`
	EmergencyContact  string `json:"emergency_contact" validate:"required,max=40"`
	ReminderDays      int    `json:"reminder_days" validate:"min=1,max=365"`
}

type SettingsUsecase interface {
	UpdateSiteSettings(ctx context.Context, input UpdateSiteSettingsInput) (*WriteResult, error)
}
