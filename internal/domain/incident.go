package domain

import "context"

// Incident severities
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

const IncidentStatusOpen = "Open"

// Incident represents a reported near miss or hazard
type Incident struct {
	ID           string `json:"id" db:"id"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
	Location     string `json:"location" db:"location"`
	Severity     string `json:"severity" db:"severity"`
	IncidentDate string `json:"incident_date" db:"incident_date"`
	ReportedBy   string `json:"reported_by" db:"reported_by"`
	Status       string `json:"status" db:"status"`
}

// Accident represents an injury record
type Accident struct {
	ID               string `json:"id" db:"id"`
	InjuredPerson    string `json:"injured_person" db:"injured_person"`
	Description      string `json:"description" db:"description"`
	Location         string `json:"location" db:"location"`
	InjuryType       string `json:"injury_type" db:"injury_type"`
	AccidentDate     string `json:"accident_date" db:"accident_date"`
	RiddorReportable bool   `json:"riddor_reportable" db:"riddor_reportable"`
	ReportedBy       string `json:"reported_by" db:"reported_by"`
	PhotoURL         string `json:"photo_url,omitempty" db:"photo_url"`
}

type LogIncidentInput struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"required,max=2000"`
	Location     string `json:"location" validate:"required,max=120"`
	Severity     string `json:"severity" validate:"required,severity"`
	IncidentDate string `json:"incident_date" validate:"required,isodate,notfuture"`
	ReportedBy   string `json:"reported_by" validate:"required,max=64"`
}

// LogAccidentInput carries an optional photo referenced by a path on the device.
type LogAccidentInput struct {
	InjuredPerson    string `json:"injured_person" validate:"required,max=120"`
	Description      string `json:"description" validate:"required,max=2000"`
	Location         string `json:"location" validate:"required,max=120"`
	InjuryType       string `json:"injury_type" validate:"required,max=60"`
	AccidentDate     string `json:"accident_date" validate:"required,isodate,notfuture"`
	RiddorReportable bool   `json:"riddor_reportable"`
	ReportedBy       string `json:"reported_by" validate:"required,max=64"`
	PhotoLocalPath   string `json:"photo_local_path,omitempty" validate:"omitempty,max=1024"`
	PhotoContentType string `json:"photo_content_type,omitempty" validate:"omitempty,max=100"`
}

// IncidentUsecase defines incident and accident logging
type IncidentUsecase interface {
	LogIncident(ctx context.Context, input LogIncidentInput) (*WriteResult, error)
	LogAccident(ctx context.Context, input LogAccidentInput) (*WriteResult, error)
}

// IsValidSeverity checks if incident severity is valid
func IsValidSeverity(severity string) bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
