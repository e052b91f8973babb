package model

import "time"

// Document is the envelope every persisted record travels in. The store
// assigns the ID and stamps both timestamps server-side, so concurrent
// clients agree on ordering without trusting their own clocks.
type Document struct {
	ID        string                 `json:"id"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Reserved envelope field names. Caller-supplied values under these keys
// are always discarded by the service layer before a write.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// IsReservedField reports whether a field name belongs to the envelope
// rather than to the entity payload.
func IsReservedField(name string) bool {
	return name == FieldID || name == FieldCreatedAt || name == FieldUpdatedAt
}

// Value resolves a field name against the document, letting envelope
// fields (id, createdAt, updatedAt) be filtered and sorted on like any
// payload field.
func (d *Document) Value(field string) interface{} {
	switch field {
	case FieldID:
		return d.ID
	case FieldCreatedAt:
		return d.CreatedAt
	case FieldUpdatedAt:
		return d.UpdatedAt
	default:
		if d.Fields == nil {
			return nil
		}
		return d.Fields[field]
	}
}
