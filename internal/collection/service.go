// Package collection provides the generic, entity-agnostic service every
// entity service is built on: uniform create/read/update/delete, filtered
// and cursor-paginated queries, counting and live subscriptions over one
// logical collection of a document store.
package collection

import (
	"context"
	"errors"
	"strings"

	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// DefaultPageSize is used when a caller does not specify a page size.
const DefaultPageSize = 10

// Codec converts between an entity shape and the store's document
// envelope. ToFields maps only payload fields; the envelope (id and
// timestamps) is owned by the store and surfaced through FromDoc.
type Codec[T any] struct {
	ToFields func(entity *T) map[string]interface{}
	FromDoc  func(doc *model.Document) *T
}

// ListOptions shape a paginated query.
type ListOptions struct {
	Filters  []model.Filter
	Orders   []model.Order
	PageSize int
	// StartAfter is the cursor returned by a previous page.
	StartAfter *model.Document
}

// SubscribeOptions shape a collection subscription. When neither filters
// nor orders are given, results are ordered by creation time descending;
// callers that filter and need an order must state it explicitly, since
// composite filter+sort combinations may need store-side indexes.
type SubscribeOptions struct {
	Filters []model.Filter
	Orders  []model.Order
}

// Page is one page of a listing.
type Page[T any] struct {
	Items   []*T
	HasMore bool
	// NextCursor is the last document of this page, to be passed back as
	// StartAfter on the next call. Nil on the final page is allowed but
	// not guaranteed; rely on HasMore.
	NextCursor *model.Document
}

// Service is the generic collection service for one entity shape.
type Service[T any] struct {
	store repository.DocumentStore
	name  string
	codec Codec[T]
	log   logger.Logger
}

// NewService creates a collection service. The store handle is injected
// explicitly; a nil store makes every operation fail fast with
// ErrStoreUnavailable rather than panicking mid-request.
func NewService[T any](store repository.DocumentStore, name string, codec Codec[T], log logger.Logger) *Service[T] {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Service[T]{
		store: store,
		name:  name,
		codec: codec,
		log:   log.WithComponent("collection." + name),
	}
}

// Name returns the logical collection name.
func (s *Service[T]) Name() string {
	return s.name
}

// Create persists a new entity. Both timestamps are stamped equal at
// creation by the store; the entity is fetched back after the write so
// server-computed fields (id, timestamps) are surfaced on the result.
func (s *Service[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := s.checkStore(); err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperrors.NewValidationError("entity is required").WithCause(apperrors.ErrInvalidArgument)
	}

	fields := sanitizeFields(s.codec.ToFields(entity))
	id, err := s.store.Set(ctx, s.name, "", fields)
	if err != nil {
		s.log.WithContext(ctx).Errorf("create in %s failed: %v", s.name, err)
		return nil, apperrors.WrapWrite(err)
	}

	doc, err := s.store.Get(ctx, s.name, id)
	if err != nil {
		return nil, apperrors.WrapQuery(err)
	}
	if doc == nil {
		return nil, apperrors.NewInternalError("created document could not be read back").WithCause(apperrors.ErrDocumentNotFound)
	}

	s.log.WithContext(ctx).Debugf("created %s/%s", s.name, id)
	return s.codec.FromDoc(doc), nil
}

// GetByID returns one entity, or (nil, nil) when the document does not
// exist. Absence is a normal outcome here, never an error. A malformed
// identifier fails fast before any store call.
func (s *Service[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := s.checkStore(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	doc, err := s.store.Get(ctx, s.name, id)
	if err != nil {
		return nil, apperrors.WrapQuery(err)
	}
	if doc == nil {
		return nil, nil
	}
	return s.codec.FromDoc(doc), nil
}

// Update merges a partial payload into an existing entity through an
// explicit merge: reserved envelope fields are stripped so a caller can
// never smuggle in its own id or creation timestamp, and the store stamps
// a fresh update timestamp regardless of input. The post-update entity is
// fetched back and returned; ErrDocumentNotFound surfaces when the
// document disappeared underneath the write.
func (s *Service[T]) Update(ctx context.Context, id string, updates map[string]interface{}) (*T, error) {
	if err := s.checkStore(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, s.name, id, sanitizeFields(updates)); err != nil {
		if errors.Is(err, apperrors.ErrDocumentNotFound) {
			return nil, apperrors.NewNotFoundError("document").WithCause(err)
		}
		s.log.WithContext(ctx).Errorf("update of %s/%s failed: %v", s.name, id, err)
		return nil, apperrors.WrapWrite(err)
	}

	doc, err := s.store.Get(ctx, s.name, id)
	if err != nil {
		return nil, apperrors.WrapQuery(err)
	}
	if doc == nil {
		// Raced with a delete between the write and the re-read.
		return nil, apperrors.NewNotFoundError("document").WithCause(apperrors.ErrDocumentNotFound)
	}
	return s.codec.FromDoc(doc), nil
}

// Delete removes an entity unconditionally. Deleting a non-existent
// document is treated as success by the store and so by this layer.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if err := s.checkStore(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, s.name, id); err != nil {
		s.log.WithContext(ctx).Errorf("delete of %s/%s failed: %v", s.name, id, err)
		return apperrors.WrapWrite(err)
	}
	return nil
}

// GetAll returns one page of entities. It probes for pageSize+1 documents
// to detect whether a next page exists without a separate count query;
// the probe document is discarded and the cursor is the last document of
// the returned page.
func (s *Service[T]) GetAll(ctx context.Context, opts ListOptions) (*Page[T], error) {
	if err := s.checkStore(); err != nil {
		return nil, err
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	docs, err := s.store.Query(ctx, s.name, model.Query{
		Filters:    opts.Filters,
		Orders:     opts.Orders,
		Limit:      pageSize + 1,
		StartAfter: opts.StartAfter,
	})
	if err != nil {
		s.log.WithContext(ctx).Errorf("query on %s failed: %v", s.name, err)
		return nil, apperrors.WrapQuery(err)
	}

	hasMore := len(docs) > pageSize
	if hasMore {
		docs = docs[:pageSize]
	}

	page := &Page[T]{
		Items:   s.decodeAll(docs),
		HasMore: hasMore,
	}
	if len(docs) > 0 {
		page.NextCursor = docs[len(docs)-1]
	}
	return page, nil
}

// GetFiltered runs an unbounded ad hoc query, for entity services needing
// shapes not covered by GetAll's options.
func (s *Service[T]) GetFiltered(ctx context.Context, filters []model.Filter, orders []model.Order) ([]*T, error) {
	return s.GetLimited(ctx, filters, orders, 0)
}

// GetLimited is GetFiltered with a result bound, used for bounded-sample
// aggregation.
func (s *Service[T]) GetLimited(ctx context.Context, filters []model.Filter, orders []model.Order, limit int) ([]*T, error) {
	if err := s.checkStore(); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, s.name, model.Query{
		Filters: filters,
		Orders:  orders,
		Limit:   limit,
	})
	if err != nil {
		return nil, apperrors.WrapQuery(err)
	}
	return s.decodeAll(docs), nil
}

// Count returns the number of documents matching the filters. This is an
// unbounded scan, intended for small-to-moderate collections only.
func (s *Service[T]) Count(ctx context.Context, filters []model.Filter) (int64, error) {
	if err := s.checkStore(); err != nil {
		return 0, err
	}

	n, err := s.store.Count(ctx, s.name, filters)
	if err != nil {
		return 0, apperrors.WrapQuery(err)
	}
	return n, nil
}

// SubscribeToDoc registers a live listener on one entity. The callback
// fires immediately with the current value and on every change, with nil
// when the document does not exist. When the store or identifier is
// invalid a no-op unsubscribe is returned, so callers can always safely
// call the handle.
func (s *Service[T]) SubscribeToDoc(ctx context.Context, id string, callback func(*T)) repository.CancelFunc {
	if s.store == nil || strings.TrimSpace(id) == "" {
		s.log.Warnf("invalid doc subscription on %s (id=%q)", s.name, id)
		return func() {}
	}

	cancel, err := s.store.ListenDocument(ctx, s.name, id, func(doc *model.Document) {
		if doc == nil {
			callback(nil)
			return
		}
		callback(s.codec.FromDoc(doc))
	})
	if err != nil {
		s.log.Errorf("doc subscription on %s/%s failed: %v", s.name, id, err)
		return func() {}
	}
	return cancel
}

// SubscribeToCollection registers a live listener delivering the full
// matching result set on every change, unbounded and undiffed.
func (s *Service[T]) SubscribeToCollection(ctx context.Context, callback func([]*T), opts SubscribeOptions) repository.CancelFunc {
	orders := opts.Orders
	if len(opts.Filters) == 0 && len(orders) == 0 {
		orders = []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)}
	}
	return s.SubscribeToQuery(ctx, callback, opts.Filters, orders)
}

// SubscribeToQuery is the lower-level subscription variant taking filter
// and sort lists directly.
func (s *Service[T]) SubscribeToQuery(ctx context.Context, callback func([]*T), filters []model.Filter, orders []model.Order) repository.CancelFunc {
	if s.store == nil {
		s.log.Warnf("query subscription on %s without a store", s.name)
		return func() {}
	}

	cancel, err := s.store.ListenQuery(ctx, s.name, model.Query{Filters: filters, Orders: orders}, func(docs []*model.Document) {
		callback(s.decodeAll(docs))
	})
	if err != nil {
		s.log.Errorf("query subscription on %s failed: %v", s.name, err)
		return func() {}
	}
	return cancel
}

func (s *Service[T]) decodeAll(docs []*model.Document) []*T {
	items := make([]*T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, s.codec.FromDoc(doc))
	}
	return items
}

func (s *Service[T]) checkStore() error {
	if s.store == nil {
		return apperrors.NewInfrastructureError("document store is not initialized").WithCause(apperrors.ErrStoreUnavailable)
	}
	return nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("document id is required").WithCause(apperrors.ErrInvalidArgument)
	}
	return nil
}

// sanitizeFields strips reserved envelope fields from a caller-supplied
// payload so id and timestamps can never leak through a write.
func sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if model.IsReservedField(k) {
			continue
		}
		out[k] = v
	}
	return out
}
