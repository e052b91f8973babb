// Package memory implements the document-store contract with an
// RWMutex-guarded in-process map. It carries the same query and listener
// semantics as the MongoDB adapter and serves as the injected test
// double and local development store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/eventbus"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/adapter/notifier"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// Store is an in-memory DocumentStore.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*model.Document
	notifier    *notifier.Notifier
	log         logger.Logger
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source. Tests use it to verify the
// service layer's timestamp discipline deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty in-memory store.
func New(bus *eventbus.EventBus, log logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	if bus == nil {
		bus = eventbus.NewEventBus(log)
	}
	s := &Store{
		collections: make(map[string]map[string]*model.Document),
		notifier:    notifier.New(bus, log),
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the document, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, collection, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return cloneDocument(doc), nil
}

// Set writes a full document, assigning an id when none is given. The
// creation timestamp survives overwrites; the update timestamp is always
// fresh.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]interface{}) (string, error) {
	s.mu.Lock()

	if id == "" {
		id = uuid.NewString()
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*model.Document)
	}

	now := s.now()
	changeType := model.ChangeTypeCreated
	createdAt := now
	var oldFields map[string]interface{}
	if prev, ok := s.collections[collection][id]; ok {
		changeType = model.ChangeTypeUpdated
		createdAt = prev.CreatedAt
		oldFields = prev.Fields
	}

	doc := &model.Document{
		ID:        id,
		Fields:    cloneFields(fields),
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	s.collections[collection][id] = doc
	published := cloneDocument(doc)
	s.mu.Unlock()

	s.notifier.Publish(ctx, model.ChangeEvent{
		Type:       changeType,
		Collection: collection,
		DocumentID: id,
		Doc:        published,
		OldFields:  oldFields,
		Timestamp:  now,
	})
	return id, nil
}

// Update merges a partial payload into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()

	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return apperrors.ErrDocumentNotFound
	}

	oldFields := cloneFields(doc.Fields)
	if doc.Fields == nil {
		doc.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	doc.UpdatedAt = s.now()
	published := cloneDocument(doc)
	s.mu.Unlock()

	s.notifier.Publish(ctx, model.ChangeEvent{
		Type:       model.ChangeTypeUpdated,
		Collection: collection,
		DocumentID: id,
		Doc:        published,
		OldFields:  oldFields,
		Timestamp:  published.UpdatedAt,
	})
	return nil
}

// Delete removes a document. Deleting an absent document succeeds.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()

	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	oldFields := doc.Fields
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notifier.Publish(ctx, model.ChangeEvent{
		Type:       model.ChangeTypeDeleted,
		Collection: collection,
		DocumentID: id,
		OldFields:  oldFields,
		Timestamp:  s.now(),
	})
	return nil
}

// Query executes a filtered, sorted, optionally paginated query.
func (s *Store) Query(ctx context.Context, collection string, query model.Query) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runQuery(collection, query), nil
}

// Count returns the number of documents matching the filters.
func (s *Store) Count(ctx context.Context, collection string, filters []model.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.collections[collection] {
		if matchesFilters(doc, filters) {
			n++
		}
	}
	return n, nil
}

// ListenDocument registers a live listener on one document.
func (s *Store) ListenDocument(ctx context.Context, collection, id string, handler repository.DocumentHandler) (repository.CancelFunc, error) {
	cancel := s.notifier.SubscribeCollection(collection, func(ev model.ChangeEvent) {
		if ev.DocumentID != id {
			return
		}
		handler(ev.Doc)
	})

	// Initial snapshot with the current value.
	current, _ := s.Get(ctx, collection, id)
	handler(current)

	return cancel, nil
}

// ListenQuery registers a live listener on a query. Every change in the
// collection re-runs the query and delivers the full matching set.
func (s *Store) ListenQuery(ctx context.Context, collection string, query model.Query, handler repository.QueryHandler) (repository.CancelFunc, error) {
	cancel := s.notifier.SubscribeCollection(collection, func(model.ChangeEvent) {
		s.mu.RLock()
		docs := s.runQuery(collection, query)
		s.mu.RUnlock()
		handler(docs)
	})

	s.mu.RLock()
	initial := s.runQuery(collection, query)
	s.mu.RUnlock()
	handler(initial)

	return cancel, nil
}

// runQuery evaluates a query under the caller-held lock.
func (s *Store) runQuery(collection string, query model.Query) []*model.Document {
	matched := make([]*model.Document, 0)
	for _, doc := range s.collections[collection] {
		if matchesFilters(doc, query.Filters) {
			matched = append(matched, doc)
		}
	}

	sortDocuments(matched, query.Orders)

	if query.StartAfter != nil {
		after := matched[:0]
		for _, doc := range matched {
			if sortsAfter(doc, query.StartAfter, query.Orders) {
				after = append(after, doc)
			}
		}
		matched = after
	}

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	out := make([]*model.Document, len(matched))
	for i, doc := range matched {
		out[i] = cloneDocument(doc)
	}
	return out
}

func matchesFilters(doc *model.Document, filters []model.Filter) bool {
	for _, f := range filters {
		if !matchesFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchesFilter(doc *model.Document, f model.Filter) bool {
	value := doc.Value(f.Field)

	switch f.Operator {
	case model.OperatorEqual:
		return valuesEqual(value, f.Value)
	case model.OperatorNotEqual:
		return !valuesEqual(value, f.Value)
	case model.OperatorIn:
		for _, candidate := range toSlice(f.Value) {
			if valuesEqual(value, candidate) {
				return true
			}
		}
		return false
	case model.OperatorArrayContains:
		for _, element := range toSlice(value) {
			if valuesEqual(element, f.Value) {
				return true
			}
		}
		return false
	case model.OperatorArrayContainsAny:
		for _, element := range toSlice(value) {
			for _, candidate := range toSlice(f.Value) {
				if valuesEqual(element, candidate) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// sortsAfter reports whether doc sorts strictly after the cursor document
// under the query's orders and the implicit id tiebreak. Comparing against
// the cursor's sort values, rather than scanning for its id, keeps the
// page positioned even when the cursor document has since been deleted or
// edited out of the matching set.
func sortsAfter(doc, cursor *model.Document, orders []model.Order) bool {
	for _, order := range orders {
		cmp := compareValues(doc.Value(order.Field), cursor.Value(order.Field))
		if cmp == 0 {
			continue
		}
		if order.Direction == model.Descending {
			return cmp < 0
		}
		return cmp > 0
	}
	return doc.ID > cursor.ID
}

// sortDocuments applies orders in declaration order (primary first), with
// the document id as an implicit final tiebreaker so pagination is stable.
func sortDocuments(docs []*model.Document, orders []model.Order) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, order := range orders {
			cmp := compareValues(docs[i].Value(order.Field), docs[j].Value(order.Field))
			if cmp == 0 {
				continue
			}
			if order.Direction == model.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return docs[i].ID < docs[j].ID
	})
}

func valuesEqual(a, b interface{}) bool {
	return compareValues(a, b) == 0
}

// compareValues orders two loosely-typed field values. Numbers compare
// numerically across int/float widths; everything else falls back to a
// string comparison.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return s
	case []string:
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func cloneDocument(doc *model.Document) *model.Document {
	if doc == nil {
		return nil
	}
	return &model.Document{
		ID:        doc.ID,
		Fields:    cloneFields(doc.Fields),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch vv := v.(type) {
		case map[string]interface{}:
			out[k] = cloneFields(vv)
		case []interface{}:
			cp := make([]interface{}, len(vv))
			copy(cp, vv)
			out[k] = cp
		case []string:
			cp := make([]string, len(vv))
			copy(cp, vv)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

var _ repository.DocumentStore = (*Store)(nil)
