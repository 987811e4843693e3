package domain

import "context"

const WorkOrderStatusResolved = "Resolved"

// MinResolutionNotesLength is the shortest accepted resolution note.
const MinResolutionNotesLength = 10

// WorkOrder represents a remedial task raised against a site
type WorkOrder struct {
	ID              string `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Status          string `json:"status" db:"status"`
	ResolutionNotes string `json:"resolution_notes" db:"resolution_notes"`
	ResolvedBy      string `json:"resolved_by" db:"resolved_by"`
	ResolvedAt      string `json:"resolved_at" db:"resolved_at"`
	EvidenceURL     string `json:"evidence_url" db:"evidence_url"`
}

// MaintenanceLog is one history entry written when an asset task is resolved
type MaintenanceLog struct {
	ID          string `json:"id" db:"id"`
	AssetID     string `json:"asset_id" db:"asset_id"`
	ServiceDate string `json:"service_date" db:"service_date"`
	Notes       string `json:"notes" db:"notes"`
	PerformedBy string `json:"performed_by" db:"performed_by"`
	EvidenceURL string `json:"evidence_url" db:"evidence_url"`
}

// ResolveTaskInput resolves either a work order or an asset's due service.
// Evidence is referenced by a path on the device and uploaded at apply time.
type ResolveTaskInput struct {
	TaskID              string `json:"task_id" validate:"required,max=64"`
	IsAssetTask         bool   `json:"is_asset_task"`
	ResolutionNotes     string `json:"resolution_notes" validate:"required,min=10,max=2000"`
	ResolvedBy          string `json:"resolved_by" validate:"required,max=64"`
	EvidenceLocalPath   string `json:"evidence_local_path" validate:"required,max=1024"`
	EvidenceContentType string `json:"evidence_content_type,omitempty" validate:"omitempty,max=100"`
}

type WorkOrderUsecase interface {
	ResolveTask(ctx context.Context, input ResolveTaskInput) (*WriteResult, error)
}
