// Package catalog implements the class and course entity services:
// entity-specific query shapes, lifecycle helpers and derived statistics
// layered over the generic collection service.
package catalog

import (
	"context"
	"strings"

	"tutorhub/internal/collection"
	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// DefaultStatsSampleLimit bounds the documents fetched for statistics.
const DefaultStatsSampleLimit = 1000

// CopyTitleSuffix marks a duplicated entity's title.
const CopyTitleSuffix = " (Copy)"

// ListFilter shapes a catalog listing. Level, Subject and ActiveOnly
// translate to store filters; the price range is applied client-side
// after retrieval because the store cannot combine a range filter with
// other equality filters without extra index configuration. Price-range
// filtering is therefore correct only within the fetched page.
type ListFilter struct {
	Level      string
	Subject    string
	ActiveOnly bool
	MinPrice   *float64
	MaxPrice   *float64
	PageSize   int
	StartAfter *model.Document
}

// Service serves one catalog collection (classes or courses).
type Service struct {
	col         *collection.Service[Class]
	log         logger.Logger
	sampleLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithStatsSampleLimit overrides the bounded-sample size used by Stats.
func WithStatsSampleLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.sampleLimit = limit
		}
	}
}

// NewClassService creates the service over the "classes" collection.
func NewClassService(store repository.DocumentStore, log logger.Logger, opts ...Option) *Service {
	return newService(store, CollectionClasses, log, opts...)
}

// NewCourseService creates the structurally identical service over the
// "courses" collection.
func NewCourseService(store repository.DocumentStore, log logger.Logger, opts ...Option) *Service {
	return newService(store, CollectionCourses, log, opts...)
}

func newService(store repository.DocumentStore, name string, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	s := &Service{
		col:         collection.NewService(store, name, classCodec(), log),
		log:         log.WithComponent(name + "_service"),
		sampleLimit: DefaultStatsSampleLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection returns the logical collection name this service wraps.
func (s *Service) Collection() string {
	return s.col.Name()
}

// Create persists a new class after validating its shape.
func (s *Service) Create(ctx context.Context, class *Class) (*Class, error) {
	if class == nil {
		return nil, apperrors.NewValidationError("class is required")
	}
	if strings.TrimSpace(class.Title) == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if class.Price < 0 {
		return nil, apperrors.NewValidationError("price must not be negative")
	}
	if class.MaxStudents < 0 {
		return nil, apperrors.NewValidationError("maxStudents must not be negative")
	}
	if class.CurrentStudents < 0 || (class.MaxStudents > 0 && class.CurrentStudents > class.MaxStudents) {
		return nil, apperrors.NewValidationError("currentStudents must stay within capacity")
	}
	return s.col.Create(ctx, class)
}

// GetByID returns one class, or (nil, nil) when it does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*Class, error) {
	return s.col.GetByID(ctx, id)
}

// Update applies a typed partial update.
func (s *Service) Update(ctx context.Context, id string, update Update) (*Class, error) {
	if update.Price != nil && *update.Price < 0 {
		return nil, apperrors.NewValidationError("price must not be negative")
	}
	if update.MaxStudents != nil && *update.MaxStudents < 0 {
		return nil, apperrors.NewValidationError("maxStudents must not be negative")
	}
	fields := update.fields()
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("no fields to update")
	}
	return s.col.Update(ctx, id, fields)
}

// Delete removes a class unconditionally. The intended discipline for
// anything still referenced by registrations is deactivation via the
// active flag; this hard delete stays available to staff regardless.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// List returns one page matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (*collection.Page[Class], error) {
	page, err := s.col.GetAll(ctx, collection.ListOptions{
		Filters:    filter.storeFilters(),
		Orders:     []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
		PageSize:   filter.PageSize,
		StartAfter: filter.StartAfter,
	})
	if err != nil {
		return nil, err
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		kept := page.Items[:0]
		for _, class := range page.Items {
			if filter.MinPrice != nil && class.Price < *filter.MinPrice {
				continue
			}
			if filter.MaxPrice != nil && class.Price > *filter.MaxPrice {
				continue
			}
			kept = append(kept, class)
		}
		page.Items = kept
	}
	return page, nil
}

func (f ListFilter) storeFilters() []model.Filter {
	var filters []model.Filter
	if f.ActiveOnly {
		filters = append(filters, model.Where("isActive", model.OperatorEqual, true))
	}
	if f.Level != "" {
		filters = append(filters, model.Where("level", model.OperatorEqual, f.Level))
	}
	if f.Subject != "" {
		filters = append(filters, model.Where("subjects", model.OperatorArrayContains, f.Subject))
	}
	return filters
}

// Search fetches the active subset and filters in memory by
// case-insensitive substring match against title, description and subject
// tags. The store has no full-text search; this is correct only up to the
// sample bound and is not a scalable search solution.
func (s *Service) Search(ctx context.Context, term string) ([]*Class, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, apperrors.NewValidationError("search term is required")
	}

	active, err := s.col.GetLimited(ctx,
		[]model.Filter{model.Where("isActive", model.OperatorEqual, true)},
		nil,
		s.sampleLimit,
	)
	if err != nil {
		return nil, err
	}

	matched := make([]*Class, 0)
	for _, class := range active {
		if s.matchesTerm(class, term) {
			matched = append(matched, class)
		}
	}
	return matched, nil
}

func (s *Service) matchesTerm(class *Class, term string) bool {
	if strings.Contains(strings.ToLower(class.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(class.Description), term) {
		return true
	}
	for _, subject := range class.Subjects {
		if strings.Contains(strings.ToLower(subject), term) {
			return true
		}
	}
	return false
}

// ToggleActive flips the public-visibility flag. Read-modify-write: two
// concurrent toggles can race, last write wins.
func (s *Service) ToggleActive(ctx context.Context, id string) (*Class, error) {
	class, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperrors.NewNotFoundError("class")
	}

	next := !class.IsActive
	return s.col.Update(ctx, id, map[string]interface{}{"isActive": next})
}

// UpdateEnrollment adds a signed delta to the enrollment count, rejecting
// results that would go negative or exceed capacity. Read-modify-write,
// not transactional; concurrent callers can overwrite each other.
func (s *Service) UpdateEnrollment(ctx context.Context, id string, delta int) (*Class, error) {
	class, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperrors.NewNotFoundError("class")
	}

	next := class.CurrentStudents + delta
	if next < 0 {
		return nil, apperrors.NewDomainError("enrollment count cannot go negative")
	}
	if class.MaxStudents > 0 && next > class.MaxStudents {
		return nil, apperrors.NewDomainError("class is already at capacity")
	}

	return s.col.Update(ctx, id, map[string]interface{}{"currentStudents": next})
}

// Duplicate copies one class into a new inactive entity: identifier and
// timestamps are stripped, the title gets a copy marker and the active
// flag is forced off so the copy never goes public by accident of timing.
func (s *Service) Duplicate(ctx context.Context, id string) (*Class, error) {
	class, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperrors.NewNotFoundError("class")
	}

	copied := *class
	copied.ID = ""
	copied.Title = class.Title + CopyTitleSuffix
	copied.IsActive = false
	return s.col.Create(ctx, &copied)
}

// Subscribe delivers the matching class list on every change.
// Cancellation is via the returned handle.
func (s *Service) Subscribe(ctx context.Context, callback func([]*Class), activeOnly bool) repository.CancelFunc {
	opts := collection.SubscribeOptions{}
	if activeOnly {
		opts.Filters = []model.Filter{model.Where("isActive", model.OperatorEqual, true)}
		opts.Orders = []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)}
	}
	return s.col.SubscribeToCollection(ctx, callback, opts)
}

// SubscribeToClass delivers one class on every change, nil when deleted.
func (s *Service) SubscribeToClass(ctx context.Context, id string, callback func(*Class)) repository.CancelFunc {
	return s.col.SubscribeToDoc(ctx, id, callback)
}

// Count returns the number of classes, optionally only active ones.
func (s *Service) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var filters []model.Filter
	if activeOnly {
		filters = append(filters, model.Where("isActive", model.OperatorEqual, true))
	}
	return s.col.Count(ctx, filters)
}
