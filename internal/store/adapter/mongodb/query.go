package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutorhub/internal/store/domain/model"
)

func idFilter(id string) bson.M {
	return bson.M{"_id": id}
}

// fieldPath maps a logical field name to its physical location: envelope
// fields live at the top level, entity payload fields under "fields".
func fieldPath(field string) string {
	switch field {
	case model.FieldID:
		return "_id"
	case model.FieldCreatedAt, model.FieldUpdatedAt:
		return field
	default:
		return "fields." + field
	}
}

// buildFilter translates the store's filter list into a MongoDB filter.
func buildFilter(filters []model.Filter) bson.M {
	if len(filters) == 0 {
		return bson.M{}
	}

	var andFilters []bson.M
	for _, f := range filters {
		single := singleFilter(f)
		if len(single) > 0 {
			andFilters = append(andFilters, single)
		}
	}

	if len(andFilters) == 0 {
		return bson.M{}
	}
	if len(andFilters) == 1 {
		return andFilters[0]
	}
	return bson.M{"$and": andFilters}
}

// singleFilter translates one filter condition.
func singleFilter(f model.Filter) bson.M {
	path := fieldPath(f.Field)

	switch f.Operator {
	case model.OperatorEqual:
		return bson.M{path: f.Value}
	case model.OperatorNotEqual:
		return bson.M{path: bson.M{"$ne": f.Value}}
	case model.OperatorIn:
		return bson.M{path: bson.M{"$in": f.Value}}
	case model.OperatorArrayContains:
		return bson.M{path: bson.M{"$elemMatch": bson.M{"$eq": f.Value}}}
	case model.OperatorArrayContainsAny:
		return bson.M{path: bson.M{"$in": f.Value}}
	default:
		return bson.M{path: f.Value}
	}
}

// buildFindOptions applies limit and the sort specifications in the order
// the caller declared them, with _id as an implicit final tiebreaker so
// cursor pagination stays stable across equal sort keys.
func buildFindOptions(query model.Query) *options.FindOptions {
	opts := options.Find()
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	sort := bson.D{}
	for _, o := range query.Orders {
		dir := 1
		if o.Direction == model.Descending {
			dir = -1
		}
		sort = append(sort, bson.E{Key: fieldPath(o.Field), Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})
	opts.SetSort(sort)

	return opts
}

// buildCursorFilter translates a start-after cursor into a tuple-break
// filter over the sort fields: an $or chain where clause k pins the first
// k sort fields to the cursor's values and moves strictly past it on the
// next one. The final clause breaks ties on _id.
func buildCursorFilter(query model.Query) bson.M {
	cursor := query.StartAfter
	if cursor == nil {
		return nil
	}

	type sortKey struct {
		path  string
		value interface{}
		desc  bool
	}
	keys := make([]sortKey, 0, len(query.Orders)+1)
	for _, o := range query.Orders {
		keys = append(keys, sortKey{
			path:  fieldPath(o.Field),
			value: cursor.Value(o.Field),
			desc:  o.Direction == model.Descending,
		})
	}
	keys = append(keys, sortKey{path: "_id", value: cursor.ID})

	var clauses []bson.M
	for k, key := range keys {
		clause := bson.M{}
		for i := 0; i < k; i++ {
			clause[keys[i].path] = keys[i].value
		}
		op := "$gt"
		if key.desc {
			op = "$lt"
		}
		clause[key.path] = bson.M{op: key.value}
		clauses = append(clauses, clause)
	}

	if len(clauses) == 1 {
		return clauses[0]
	}
	return bson.M{"$or": clauses}
}

// mergeWithAnd combines the main filter with the cursor filter.
func mergeWithAnd(filter, cursor bson.M) bson.M {
	if len(filter) == 0 {
		return cursor
	}
	if len(cursor) == 0 {
		return filter
	}
	return bson.M{"$and": []bson.M{filter, cursor}}
}
