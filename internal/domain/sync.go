package domain

import (
	"context"
	"time"
)

// Drain outcomes
const (
	DrainOutcomeApplied = "applied"
	DrainOutcomeIdle    = "idle"
	DrainOutcomeOffline = "offline"
	DrainOutcomeHalted  = "halted"
	DrainOutcomeBusy    = "busy"
)

// DrainResult summarises one sync run.
type DrainResult struct {
	Outcome        string        `json:"outcome"`
	Skipped        bool          `json:"skipped"`
	Reason         string        `json:"reason,omitempty"`
	Total          int           `json:"total"`
	Applied        int           `json:"applied"`
	Remaining      int           `json:"remaining"`
	Halted         bool          `json:"halted"`
	FailedRecordID string        `json:"failed_record_id,omitempty"`
	FailedTag      Tag           `json:"failed_tag,omitempty"`
	Error          string        `json:"error,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}

// SyncStatus is the snapshot reported to the presentation layer.
type SyncStatus struct {
	Running    bool         `json:"running"`
	Connected  bool         `json:"connected"`
	QueueSize  int          `json:"queue_size"`
	LastResult *DrainResult `json:"last_result,omitempty"`
}

// SyncUsecase drains the offline queue against the remote gateway.
type SyncUsecase interface {
	Drain(ctx context.Context) (*DrainResult, error)
	Status(ctx context.Context) (*SyncStatus, error)
	Pending(ctx context.Context) ([]QueueRecord, error)
	Drop(ctx context.Context, id string) error
}

// MutationRouter applies a single queued record to the remote gateway.
type MutationRouter interface {
	Apply(ctx context.Context, record QueueRecord) error
}
