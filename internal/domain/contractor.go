package domain

import "context"

// Contractor verification statuses
const (
	VerificationPending   = "Pending"
	VerificationVerified  = "Verified"
	VerificationSuspended = "Suspended"
)

// ContractorProfile is the contractor's row in the profiles table
type ContractorProfile struct {
	ID                   string `json:"id" db:"id"`
	FullName             string `json:"full_name" db:"full_name"`
	Specialism           string `json:"specialism" db:"specialism"`
	CompetenceCardNumber string `json:"competence_card_number" db:"competence_card_number"`
	CompetenceExpiry     string `json:"competence_expiry" db:"competence_expiry"`
	CertificateURL       string `json:"certificate_url" db:"certificate_url"`
	VerificationStatus   string `json:"verification_status" db:"verification_status"`
}

type UpdateSpecialismInput struct {
	ContractorID string `json:"contractor_id" validate:"required,max=64"`
	Specialism   string `json:"specialism" validate:"required,max=80"`
}

// UpdateCompetenceInput optionally carries the scanned certificate bytes.
type UpdateCompetenceInput struct {
	ContractorID           string `json:"contractor_id" validate:"required,max=64"`
	CompetenceCardNumber   string `json:"competence_card_number" validate:"required,max=40"`
	CompetenceExpiry       string `json:"competence_expiry" validate:"required,isodate"`
	Certificate            []byte `json:"certificate,omitempty"`
	CertificateContentType string `json:"certificate_content_type,omitempty" validate:"omitempty,max=100"`
}

type UpdateStatusInput struct {
	ContractorID string `json:"contractor_id" validate:"required,max=64"`
	Status       string `json:"verification_status" validate:"required,verification_status"`
}

// ContractorUsecase defines contractor credential updates
type ContractorUsecase interface {
	UpdateSpecialism(ctx context.Context, input UpdateSpecialismInput) (*WriteResult, error)
	UpdateCompetence(ctx context.Context, input UpdateCompetenceInput) (*WriteResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*WriteResult, error)
}

// IsValidVerificationStatus checks if verification status is valid
func IsValidVerificationStatus(status string) bool {
	switch status {
	case VerificationPending, VerificationVerified, VerificationSuspended:
		return true
	}
	return false
}
