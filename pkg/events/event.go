package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete carrier every event in this service uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentIngested marks a file fully chunked and embedded into a collection.
func NewDocumentIngested(collection, source, originalName string, chunks int) Event {
	return BaseEvent{
		Type: "DOCUMENT_INGESTED",
		Data: map[string]interface{}{
			"collection":        collection,
			"source":            source,
			"original_filename": originalName,
			"chunks":            chunks,
		},
		OccurredAt: time.Now(),
	}
}

// NewWorkflowCompleted marks one routed chat run finishing, however it ended.
func NewWorkflowCompleted(route string, retries int, accurate bool) Event {
	return BaseEvent{
		Type: "WORKFLOW_COMPLETED",
		Data: map[string]interface{}{
			"route":    route,
			"retries":  retries,
			"accurate": accurate,
		},
		OccurredAt: time.Now(),
	}
}

// NewCollectionReset marks a destructive wipe of a collection.
func NewCollectionReset(collection string) Event {
	return BaseEvent{
		Type: "COLLECTION_RESET",
		Data: map[string]interface{}{
			"collection": collection,
		},
		OccurredAt: time.Now(),
	}
}
