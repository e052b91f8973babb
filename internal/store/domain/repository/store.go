// Package repository defines the contract the data layer requires from a
// document store. Implementations live under adapter/ and are injected
// explicitly at composition time.
package repository

import (
	"context"

	"tutorhub/internal/store/domain/model"
)

// CancelFunc tears down a listener. Safe to call more than once; no
// further deliveries begin after it returns.
type CancelFunc func()

// DocumentHandler receives the current state of one document on every
// change. A nil document means it does not exist (or was deleted).
type DocumentHandler func(doc *model.Document)

// QueryHandler receives the full matching result set on every change to
// the underlying query. No diffing or batching is exposed; result sets
// are assumed small.
type QueryHandler func(docs []*model.Document)

// DocumentStore is the thin handle over an external schemaless document
// database: single-document CRUD, collection-scoped queries with
// equality/array-membership filters, multi-field sort, cursor pagination
// and push-based change notification. Write timestamps are assigned by
// the store, never by callers.
type DocumentStore interface {
	// Get returns the document, or (nil, nil) when it does not exist.
	// Absence is a normal outcome, not a fault.
	Get(ctx context.Context, collection, id string) (*model.Document, error)

	// Set writes a full document. When id is empty the store assigns one
	// and returns it. Creation keeps the original creation timestamp on
	// overwrite; both timestamps are stamped store-side.
	Set(ctx context.Context, collection, id string, fields map[string]interface{}) (string, error)

	// Update merges a partial payload into an existing document and
	// stamps a fresh update timestamp. Returns ErrDocumentNotFound when
	// the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error

	// Delete removes a document. Deleting an absent document succeeds.
	Delete(ctx context.Context, collection, id string) error

	// Query executes a filtered, sorted, optionally paginated query and
	// returns the matching documents in order.
	Query(ctx context.Context, collection string, query model.Query) ([]*model.Document, error)

	// Count returns the number of documents matching the filters. An
	// unbounded scan; intended for small-to-moderate collections.
	Count(ctx context.Context, collection string, filters []model.Filter) (int64, error)

	// ListenDocument registers a live listener on one document. The
	// handler fires immediately with the current value and again on every
	// change, with nil when the document is absent.
	ListenDocument(ctx context.Context, collection, id string, handler DocumentHandler) (CancelFunc, error)

	// ListenQuery registers a live listener on a query. The handler fires
	// immediately with the current result set and again with the full
	// matching set whenever any document in the collection changes.
	ListenQuery(ctx context.Context, collection string, query model.Query, handler QueryHandler) (CancelFunc, error)
}
