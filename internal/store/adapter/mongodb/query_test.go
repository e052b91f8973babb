package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"tutorhub/internal/store/domain/model"
)

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "_id", fieldPath(model.FieldID))
	assert.Equal(t, "createdAt", fieldPath(model.FieldCreatedAt))
	assert.Equal(t, "updatedAt", fieldPath(model.FieldUpdatedAt))
	assert.Equal(t, "fields.title", fieldPath("title"))
	assert.Equal(t, "fields.payment", fieldPath("payment"))
}

func TestBuildFilter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, bson.M{}, buildFilter(nil))
	})

	t.Run("single equality", func(t *testing.T) {
		filter := buildFilter([]model.Filter{model.Where("level", model.OperatorEqual, "10")})
		assert.Equal(t, bson.M{"fields.level": "10"}, filter)
	})

	t.Run("multiple conditions join with and", func(t *testing.T) {
		filter := buildFilter([]model.Filter{
			model.Where("level", model.OperatorEqual, "10"),
			model.Where("isActive", model.OperatorEqual, true),
		})
		assert.Equal(t, bson.M{"$and": []bson.M{
			{"fields.level": "10"},
			{"fields.isActive": true},
		}}, filter)
	})

	t.Run("not equal", func(t *testing.T) {
		filter := buildFilter([]model.Filter{model.Where("status", model.OperatorNotEqual, "cancelled")})
		assert.Equal(t, bson.M{"fields.status": bson.M{"$ne": "cancelled"}}, filter)
	})

	t.Run("in", func(t *testing.T) {
		values := []interface{}{"pending", "approved"}
		filter := buildFilter([]model.Filter{model.Where("status", model.OperatorIn, values)})
		assert.Equal(t, bson.M{"fields.status": bson.M{"$in": values}}, filter)
	})

	t.Run("array contains uses elemMatch", func(t *testing.T) {
		filter := buildFilter([]model.Filter{model.Where("subjects", model.OperatorArrayContains, "math")})
		assert.Equal(t, bson.M{"fields.subjects": bson.M{"$elemMatch": bson.M{"$eq": "math"}}}, filter)
	})

	t.Run("array contains any", func(t *testing.T) {
		values := []interface{}{"math", "physics"}
		filter := buildFilter([]model.Filter{model.Where("subjects", model.OperatorArrayContainsAny, values)})
		assert.Equal(t, bson.M{"fields.subjects": bson.M{"$in": values}}, filter)
	})
}

func TestBuildFindOptions(t *testing.T) {
	t.Run("appends id tiebreaker to sort", func(t *testing.T) {
		opts := buildFindOptions(model.Query{
			Orders: []model.Order{
				model.OrderBy("level", model.Ascending),
				model.OrderBy("price", model.Descending),
			},
		})
		assert.Equal(t, bson.D{
			{Key: "fields.level", Value: 1},
			{Key: "fields.price", Value: -1},
			{Key: "_id", Value: 1},
		}, opts.Sort)
		assert.Nil(t, opts.Limit)
	})

	t.Run("limit", func(t *testing.T) {
		opts := buildFindOptions(model.Query{Limit: 11})
		require.NotNil(t, opts.Limit)
		assert.EqualValues(t, 11, *opts.Limit)
		assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, opts.Sort)
	})
}

func TestBuildCursorFilter(t *testing.T) {
	t.Run("nil without cursor", func(t *testing.T) {
		assert.Nil(t, buildCursorFilter(model.Query{}))
	})

	t.Run("unsorted query breaks ties on id only", func(t *testing.T) {
		filter := buildCursorFilter(model.Query{
			StartAfter: &model.Document{ID: "doc-5"},
		})
		assert.Equal(t, bson.M{"_id": bson.M{"$gt": "doc-5"}}, filter)
	})

	t.Run("single sort field", func(t *testing.T) {
		cursor := &model.Document{
			ID:     "doc-5",
			Fields: map[string]interface{}{"price": 300.0},
		}
		filter := buildCursorFilter(model.Query{
			Orders:     []model.Order{model.OrderBy("price", model.Ascending)},
			StartAfter: cursor,
		})
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"fields.price": bson.M{"$gt": 300.0}},
			{"fields.price": 300.0, "_id": bson.M{"$gt": "doc-5"}},
		}}, filter)
	})

	t.Run("descending sort flips the comparison", func(t *testing.T) {
		cursor := &model.Document{
			ID:     "doc-5",
			Fields: map[string]interface{}{"price": 300.0},
		}
		filter := buildCursorFilter(model.Query{
			Orders:     []model.Order{model.OrderBy("price", model.Descending)},
			StartAfter: cursor,
		})
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"fields.price": bson.M{"$lt": 300.0}},
			{"fields.price": 300.0, "_id": bson.M{"$gt": "doc-5"}},
		}}, filter)
	})

	t.Run("two sort fields produce a three-clause tuple break", func(t *testing.T) {
		cursor := &model.Document{
			ID:     "doc-5",
			Fields: map[string]interface{}{"level": "10", "price": 300.0},
		}
		filter := buildCursorFilter(model.Query{
			Orders: []model.Order{
				model.OrderBy("level", model.Ascending),
				model.OrderBy("price", model.Descending),
			},
			StartAfter: cursor,
		})
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"fields.level": bson.M{"$gt": "10"}},
			{"fields.level": "10", "fields.price": bson.M{"$lt": 300.0}},
			{"fields.level": "10", "fields.price": 300.0, "_id": bson.M{"$gt": "doc-5"}},
		}}, filter)
	})

	t.Run("envelope sort field resolves from the cursor envelope", func(t *testing.T) {
		ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		cursor := &model.Document{ID: "doc-5", CreatedAt: ts}
		filter := buildCursorFilter(model.Query{
			Orders:     []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
			StartAfter: cursor,
		})
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"createdAt": bson.M{"$lt": ts}},
			{"createdAt": ts, "_id": bson.M{"$gt": "doc-5"}},
		}}, filter)
	})
}

func TestMergeWithAnd(t *testing.T) {
	filter := bson.M{"fields.level": "10"}
	cursor := bson.M{"_id": bson.M{"$gt": "doc-5"}}

	assert.Equal(t, filter, mergeWithAnd(filter, nil))
	assert.Equal(t, cursor, mergeWithAnd(bson.M{}, cursor))
	assert.Equal(t, bson.M{"$and": []bson.M{filter, cursor}}, mergeWithAnd(filter, cursor))
}
