// Package mongodb implements the document-store contract over MongoDB.
// Documents are stored as {_id, fields, createdAt, updatedAt} with the
// entity payload under "fields", mirroring the envelope the data layer
// exposes. Change notification rides on the shared notifier: every
// successful write publishes a change event, and listeners re-run their
// queries on each one. Events therefore cover writes issued through this
// process; cross-instance fan-out is the Redis relay's job.
package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/eventbus"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/adapter/notifier"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// Store is a MongoDB-backed DocumentStore.
type Store struct {
	db       *mongo.Database
	notifier *notifier.Notifier
	log      logger.Logger
}

// storedDocument is the physical MongoDB document layout.
type storedDocument struct {
	ID        string                 `bson:"_id"`
	Fields    map[string]interface{} `bson:"fields"`
	CreatedAt time.Time              `bson:"createdAt"`
	UpdatedAt time.Time              `bson:"updatedAt"`
}

func (d *storedDocument) toModel() *model.Document {
	return &model.Document{
		ID:        d.ID,
		Fields:    d.Fields,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// New creates a MongoDB-backed store on an already-connected database
// handle.
func New(db *mongo.Database, bus *eventbus.EventBus, log logger.Logger) *Store {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	if bus == nil {
		bus = eventbus.NewEventBus(log)
	}
	return &Store{
		db:       db,
		notifier: notifier.New(bus, log),
		log:      log.WithComponent("mongodb_store"),
	}
}

// Get returns the document, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, collection, id string) (*model.Document, error) {
	var stored storedDocument
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return stored.toModel(), nil
}

// Set writes a full document, assigning an id when none is given. Both
// timestamps are stamped here so concurrent clients never rely on their
// own clocks; the creation timestamp survives overwrites via $setOnInsert.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]interface{}) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		idFilter(id),
		bson.M{
			"$set":         bson.M{"fields": fields, "updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", err
	}

	changeType := model.ChangeTypeUpdated
	if res.UpsertedCount > 0 {
		changeType = model.ChangeTypeCreated
	}
	s.publishCurrent(ctx, changeType, collection, id)
	return id, nil
}

// Update merges a partial payload into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	for k, v := range fields {
		set["fields."+k] = v
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrDocumentNotFound
	}

	s.publishCurrent(ctx, model.ChangeTypeUpdated, collection, id)
	return nil
}

// Delete removes a document. Deleting an absent document succeeds and
// publishes nothing.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return nil
	}

	s.notifier.Publish(ctx, model.ChangeEvent{
		Type:       model.ChangeTypeDeleted,
		Collection: collection,
		DocumentID: id,
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

// Query executes a filtered, sorted, optionally paginated query.
func (s *Store) Query(ctx context.Context, collection string, query model.Query) ([]*model.Document, error) {
	filter := buildFilter(query.Filters)
	if cursor := buildCursorFilter(query); cursor != nil {
		filter = mergeWithAnd(filter, cursor)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, buildFindOptions(query))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []*model.Document
	for cur.Next(ctx) {
		var stored storedDocument
		if err := cur.Decode(&stored); err != nil {
			s.log.Errorf("failed to decode document in %s: %v", collection, err)
			continue
		}
		docs = append(docs, stored.toModel())
	}
	return docs, cur.Err()
}

// Count returns the number of documents matching the filters. Unbounded.
func (s *Store) Count(ctx context.Context, collection string, filters []model.Filter) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, buildFilter(filters))
}

// ListenDocument registers a live listener on one document.
func (s *Store) ListenDocument(ctx context.Context, collection, id string, handler repository.DocumentHandler) (repository.CancelFunc, error) {
	cancel := s.notifier.SubscribeCollection(collection, func(ev model.ChangeEvent) {
		if ev.DocumentID != id {
			return
		}
		handler(ev.Doc)
	})

	current, err := s.Get(ctx, collection, id)
	if err != nil {
		s.log.Errorf("initial snapshot for %s/%s failed: %v", collection, id, err)
	}
	handler(current)

	return cancel, nil
}

// ListenQuery registers a live listener on a query; every change in the
// collection re-runs it and delivers the full matching set.
func (s *Store) ListenQuery(ctx context.Context, collection string, query model.Query, handler repository.QueryHandler) (repository.CancelFunc, error) {
	rerun := func() {
		docs, err := s.Query(ctx, collection, query)
		if err != nil {
			s.log.Errorf("listener query on %s failed: %v", collection, err)
			return
		}
		handler(docs)
	}

	cancel := s.notifier.SubscribeCollection(collection, func(model.ChangeEvent) {
		rerun()
	})
	rerun()

	return cancel, nil
}

// publishCurrent re-reads a document after a write and publishes the
// change, so listeners observe server-resolved timestamps.
func (s *Store) publishCurrent(ctx context.Context, changeType model.ChangeType, collection, id string) {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		s.log.Errorf("re-read after write of %s/%s failed: %v", collection, id, err)
		return
	}
	s.notifier.Publish(ctx, model.ChangeEvent{
		Type:       changeType,
		Collection: collection,
		DocumentID: id,
		Doc:        doc,
		Timestamp:  time.Now().UTC(),
	})
}

var _ repository.DocumentStore = (*Store)(nil)
