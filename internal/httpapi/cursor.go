package httpapi

import (
	"encoding/base64"
	"encoding/json"

	"tutorhub/internal/store/domain/model"
)

// Page cursors cross the wire as opaque base64 JSON of the last returned
// document envelope, so clients can hand them back without understanding
// them.

func encodeCursor(doc *model.Document) string {
	if doc == nil {
		return ""
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func decodeCursor(raw string) *model.Document {
	if raw == "" {
		return nil
	}
	b, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var doc model.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil
	}
	return &doc
}
