package collection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutorhub/internal/collection"
)

// The MongoDB driver decodes map[string]interface{} payloads into its own
// named types (primitive.DateTime, primitive.A, primitive.M). The field
// helpers must read those the same as native Go values, or entities lose
// data when the service runs on the mongodb driver.

func TestFieldTimeDriverDatetime(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fields := map[string]interface{}{
		"approvedAt": primitive.NewDateTimeFromTime(now),
	}

	got := collection.FieldTime(fields, "approvedAt")
	require.False(t, got.IsZero())
	assert.True(t, got.Equal(now))
}

func TestFieldTimePtrDriverDatetime(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fields := map[string]interface{}{
		"paidAt": primitive.NewDateTimeFromTime(now),
	}

	got := collection.FieldTimePtr(fields, "paidAt")
	require.NotNil(t, got)
	assert.True(t, got.Equal(now))

	assert.Nil(t, collection.FieldTimePtr(fields, "missing"))
}

func TestFieldTimeNativeAndString(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.True(t, collection.FieldTime(map[string]interface{}{"at": now}, "at").Equal(now))
	assert.True(t, collection.FieldTime(map[string]interface{}{"at": now.Format(time.RFC3339Nano)}, "at").Equal(now))
	assert.True(t, collection.FieldTime(map[string]interface{}{"at": "garbage"}, "at").IsZero())
	assert.True(t, collection.FieldTime(map[string]interface{}{}, "at").IsZero())
}

func TestFieldStringsDriverArray(t *testing.T) {
	fields := map[string]interface{}{
		"subjects": primitive.A{"math", "physics"},
	}

	assert.Equal(t, []string{"math", "physics"}, collection.FieldStrings(fields, "subjects"))
}

func TestFieldSliceDriverArray(t *testing.T) {
	fields := map[string]interface{}{
		"tags": primitive.A{"a", 2},
	}

	got := collection.FieldSlice(fields, "tags")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0])

	assert.Nil(t, collection.FieldSlice(fields, "missing"))
	assert.Nil(t, collection.FieldSlice(map[string]interface{}{"tags": 42}, "tags"))
}

func TestFieldMapDriverMap(t *testing.T) {
	got := collection.FieldMap(primitive.M{"status": "pending", "amount": 100.0})
	require.NotNil(t, got)
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, 100.0, got["amount"])

	assert.Nil(t, collection.FieldMap(nil))
	assert.Nil(t, collection.FieldMap("not a map"))
}

func TestFieldFloatDriverWidths(t *testing.T) {
	assert.Equal(t, 5.0, collection.FieldFloat(map[string]interface{}{"n": int32(5)}, "n"))
	assert.Equal(t, 7.0, collection.FieldFloat(map[string]interface{}{"n": int64(7)}, "n"))
	assert.Equal(t, 2, collection.FieldInt(map[string]interface{}{"n": 2.0}, "n"))
}
