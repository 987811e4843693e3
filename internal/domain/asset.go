package domain

import "context"

// Asset statuses
const (
	AssetStatusCompliant    = "Compliant"
	AssetStatusNonCompliant = "Non-Compliant"
	AssetStatusOverdue      = "Overdue"
)

// Asset represents a maintained piece of site equipment
type Asset struct {
	ID              string `json:"id" db:"id"`
	AssetName       string `json:"asset_name" db:"asset_name"`
	Type            string `json:"type" db:"type"`
	Regulation      string `json:"regulation" db:"regulation"`
	Location        string `json:"location" db:"location"`
	Status          string `json:"status" db:"status"`
	NextServiceDue  string `json:"next_service_due" db:"next_service_due"`
	LastServiceDate string `json:"last_service_date,omitempty" db:"last_service_date"`
}

// CreateAssetInput is the caller-supplied part of a new asset
type CreateAssetInput struct {
	AssetName  string `json:"asset_name" validate:"required,max=120"`
	Type       string `json:"type" validate:"required,max=60"`
	Regulation string `json:"regulation" validate:"required,max=120"`
	Location   string `json:"location" validate:"required,max=120"`
}

// UpdateAssetInput patches an existing asset. Nil fields are left untouched;
// a set text field may not be blank.
type UpdateAssetInput struct {
	ID              string  `json:"id" validate:"required,max=64"`
	AssetName       *string `json:"asset_name,omitempty" validate:"omitnil,notblank,max=120"`
	Type            *string `json:"type,omitempty" validate:"omitnil,notblank,max=60"`
	Regulation      *string `json:"regulation,omitempty" validate:"omitnil,notblank,max=120"`
	Location        *string `json:"location,omitempty" validate:"omitnil,notblank,max=120"`
	Status          *string `json:"status,omitempty" validate:"omitnil,asset_status"`
	NextServiceDue  *string `json:"next_service_due,omitempty" validate:"omitnil,isodate"`
	LastServiceDate *string `json:"last_service_date,omitempty" validate:"omitnil,isodate"`
}

// AssetUsecase defines the asset write operations
type AssetUsecase interface {
	CreateAsset(ctx context.Context, input CreateAssetInput) (*WriteResult, error)
	UpdateAsset(ctx context.Context, input UpdateAssetInput) (*WriteResult, error)
	DeleteAsset(ctx context.Context, id string) (*WriteResult, error)
}

// IsValidAssetStatus checks if asset status is valid
func IsValidAssetStatus(status string) bool {
	switch status {
	case AssetStatusCompliant, AssetStatusNonCompliant, AssetStatusOverdue:
		return true
	}
	return false
}
