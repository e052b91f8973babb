package model

import "time"

// ChangeType defines the type of a document change event.
type ChangeType string

const (
	// ChangeTypeCreated signifies a new document was created.
	ChangeTypeCreated ChangeType = "created"
	// ChangeTypeUpdated signifies an existing document was updated.
	ChangeTypeUpdated ChangeType = "updated"
	// ChangeTypeDeleted signifies a document was deleted.
	ChangeTypeDeleted ChangeType = "deleted"
)

// ChangeEvent represents a change to a single document, pushed to
// subscribed listeners and optionally relayed across instances.
type ChangeEvent struct {
	Type       ChangeType `json:"type"`
	Collection string     `json:"collection"`
	DocumentID string     `json:"documentId"`

	// Doc carries the document after the change. Nil for deletions.
	Doc *Document `json:"doc,omitempty"`

	// OldFields carries the previous payload for update events, when the
	// adapter had it at hand. Best effort, may be nil.
	OldFields map[string]interface{} `json:"oldFields,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
