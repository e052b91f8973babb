package collection

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field coercion helpers for codecs. Documents come back from the store
// with loosely-typed payloads (the MongoDB driver decodes arrays and
// numbers into its own named types), so entity codecs read through these
// instead of raw type assertions.

// FieldString reads a string field.
func FieldString(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// FieldBool reads a boolean field.
func FieldBool(fields map[string]interface{}, key string) bool {
	if b, ok := fields[key].(bool); ok {
		return b
	}
	return false
}

// FieldFloat reads a numeric field as float64, accepting any integer or
// float width.
func FieldFloat(fields map[string]interface{}, key string) float64 {
	switch n := fields[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// FieldInt reads a numeric field as int.
func FieldInt(fields map[string]interface{}, key string) int {
	return int(FieldFloat(fields, key))
}

// FieldTime reads a timestamp field. Accepts time.Time, the driver's
// BSON datetime, and RFC 3339 strings; returns the zero time otherwise.
func FieldTime(fields map[string]interface{}, key string) time.Time {
	switch t := fields[key].(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

// FieldTimePtr reads an optional timestamp field, nil when absent or zero.
func FieldTimePtr(fields map[string]interface{}, key string) *time.Time {
	t := FieldTime(fields, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// FieldStrings reads a string-slice field.
func FieldStrings(fields map[string]interface{}, key string) []string {
	elements := FieldSlice(fields, key)
	if elements == nil {
		return nil
	}
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// FieldSlice reads any slice-typed field as []interface{}, including the
// driver's named array types.
func FieldSlice(fields map[string]interface{}, key string) []interface{} {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.([]interface{}); ok {
		return s
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// FieldMap reads a nested map field, including the driver's named map
// types.
func FieldMap(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil
	}
	out := make(map[string]interface{}, rv.Len())
	for _, k := range rv.MapKeys() {
		if ks, ok := k.Interface().(string); ok {
			out[ks] = rv.MapIndex(k).Interface()
		}
	}
	return out
}
