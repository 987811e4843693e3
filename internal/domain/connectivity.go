package domain

import "context"

// ConnectivityState is the boolean reachability signal the core consumes.
type ConnectivityState struct {
	Connected bool `json:"connected"`
}

// ConnectivityListener receives every reachability transition.
type ConnectivityListener func(state ConnectivityState)

// ConnectivityOracle reports current and ongoing network reachability.
type ConnectivityOracle interface {
	CurrentState(ctx context.Context) ConnectivityState
	Subscribe(listener ConnectivityListener) (unsubscribe func())
}

// EventPublisher fans sync and connectivity events out to observers
// such as the websocket hub.
type EventPublisher interface {
	Publish(eventType string, data map[string]interface{})
}

// Event types published by the sync core.
const (
	EventSyncStarted         = "sync.started"
	EventSyncProgress        = "sync.progress"
	EventSyncCompleted       = "sync.completed"
	EventSyncFailed          = "sync.failed"
	EventConnectivityChanged = "connectivity.changed"
	EventRecordQueued        = "queue.enqueued"
)
