// Package registration implements the registration entity service: the
// one piece of genuine cross-entity business logic in the system. A
// registration must reference a real, currently-active class at creation
// time; afterwards staff drive it through a small state machine.
package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tutorhub/internal/catalog"
	"tutorhub/internal/collection"
	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

// Domain rejections surfaced to registrants. The public site serves a
// Vietnamese audience, so these read as-is in the UI.
const (
	MsgClassNotFound = "Khóa học không tồn tại"
	MsgClassInactive = "Khóa học không còn hoạt động"
)

// ClassLookup is the slice of the catalog service this package needs for
// referential validation.
type ClassLookup interface {
	GetByID(ctx context.Context, id string) (*catalog.Class, error)
}

// CreateInput is a public registration submission.
type CreateInput struct {
	ClassID           string `json:"classId"`
	StudentName       string `json:"studentName"`
	StudentPhone      string `json:"studentPhone"`
	StudentSchool     string `json:"studentSchool"`
	ParentName        string `json:"parentName"`
	ParentPhone       string `json:"parentPhone"`
	ParentAddress     string `json:"parentAddress"`
	PreferredSchedule string `json:"preferredSchedule"`
	Notes             string `json:"notes"`
}

// ListFilter shapes a registration listing.
type ListFilter struct {
	Status     Status
	ClassID    string
	PageSize   int
	StartAfter *model.Document
}

// Service serves the registrations collection.
type Service struct {
	col         *collection.Service[Registration]
	classes     ClassLookup
	log         logger.Logger
	sampleLimit int
	now         func() time.Time
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

// WithClock overrides the transition timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the registration service. The class lookup is
// injected so tests can substitute either side in isolation.
func NewService(store repository.DocumentStore, classes ClassLookup, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	s := &Service{
		col:         collection.NewService(store, CollectionRegistrations, registrationCodec(), log),
		classes:     classes,
		log:         log.WithComponent("registration_service"),
		sampleLimit: catalog.DefaultStatsSampleLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the referenced class and persists a new registration
// with status pending, payment pending, the class price snapshotted as
// total amount and nothing paid. The class check happens at creation only
// and is not re-verified later; a later deactivation leaves existing
// registrations untouched.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Registration, error) {
	if strings.TrimSpace(input.ClassID) == "" {
		return nil, apperrors.NewValidationError("classId is required")
	}
	if strings.TrimSpace(input.StudentName) == "" {
		return nil, apperrors.NewValidationError("studentName is required")
	}

	class, err := s.classes.GetByID(ctx, input.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apperrors.NewDomainError(MsgClassNotFound)
	}
	if !class.IsActive {
		return nil, apperrors.NewDomainError(MsgClassInactive)
	}

	reg := &Registration{
		ClassID:           class.ID,
		ClassTitle:        class.Title,
		StudentName:       input.StudentName,
		StudentPhone:      input.StudentPhone,
		StudentSchool:     input.StudentSchool,
		ParentName:        input.ParentName,
		ParentPhone:       input.ParentPhone,
		ParentAddress:     input.ParentAddress,
		PreferredSchedule: input.PreferredSchedule,
		Notes:             input.Notes,
		Status:            StatusPending,
		Payment: Payment{
			TotalAmount: class.Price,
			PaidAmount:  0,
			Status:      PaymentPending,
		},
	}
	return s.col.Create(ctx, reg)
}

// GetByID returns one registration, or (nil, nil) when it does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*Registration, error) {
	return s.col.GetByID(ctx, id)
}

// List returns one page matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (*collection.Page[Registration], error) {
	var filters []model.Filter
	if filter.Status != "" {
		filters = append(filters, model.Where("status", model.OperatorEqual, string(filter.Status)))
	}
	if filter.ClassID != "" {
		filters = append(filters, model.Where("classId", model.OperatorEqual, filter.ClassID))
	}
	return s.col.GetAll(ctx, collection.ListOptions{
		Filters:    filters,
		Orders:     []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
		PageSize:   filter.PageSize,
		StartAfter: filter.StartAfter,
	})
}

// Approve marks a registration approved, stamping the acting staff
// identifier and time. No guard prevents re-approving (or approving a
// rejected one); re-invoking simply overwrites the status and actor
// fields again, which lets staff correct mistakes.
func (s *Service) Approve(ctx context.Context, id, actor string) (*Registration, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, apperrors.NewValidationError("actor is required")
	}
	return s.transition(ctx, id, map[string]interface{}{
		"status":     string(StatusApproved),
		"approvedBy": actor,
		"approvedAt": s.now(),
	})
}

// Reject marks a registration rejected with a required free-text reason.
func (s *Service) Reject(ctx context.Context, id, reason, actor string) (*Registration, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, apperrors.NewValidationError("actor is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("rejection reason is required")
	}
	return s.transition(ctx, id, map[string]interface{}{
		"status":          string(StatusRejected),
		"rejectedBy":      actor,
		"rejectedAt":      s.now(),
		"rejectionReason": reason,
	})
}

// Cancel marks a registration cancelled, by the registrant or staff.
func (s *Service) Cancel(ctx context.Context, id, actor string) (*Registration, error) {
	return s.transition(ctx, id, map[string]interface{}{
		"status":      string(StatusCancelled),
		"cancelledBy": actor,
		"cancelledAt": s.now(),
	})
}

func (s *Service) transition(ctx context.Context, id string, fields map[string]interface{}) (*Registration, error) {
	reg, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.NewNotFoundError("registration")
	}
	return s.col.Update(ctx, id, fields)
}

// BulkApprove applies Approve to each id independently, not atomically.
// Partial failure is reported as a count mismatch, never rolled back;
// callers must treat this as best-effort.
func (s *Service) BulkApprove(ctx context.Context, ids []string, actor string) (int, error) {
	approved := 0
	for _, id := range ids {
		if _, err := s.Approve(ctx, id, actor); err != nil {
			s.log.WithContext(ctx).Warnf("bulk approve: %s failed: %v", id, err)
			continue
		}
		approved++
	}
	if approved != len(ids) {
		return approved, apperrors.NewDomainError(fmt.Sprintf("%d/%d registrations approved", approved, len(ids)))
	}
	return approved, nil
}

// RecordPayment adds a paid amount to the payment sub-record, rejecting
// payments that would exceed the snapshotted total. Read-modify-write,
// last write wins under concurrency.
func (s *Service) RecordPayment(ctx context.Context, id string, amount float64, method string) (*Registration, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("payment amount must be positive")
	}

	reg, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.NewNotFoundError("registration")
	}

	paid := reg.Payment.PaidAmount + amount
	if paid > reg.Payment.TotalAmount {
		return nil, apperrors.NewDomainError("paid amount cannot exceed total amount")
	}

	status := PaymentPartial
	if paid == reg.Payment.TotalAmount {
		status = PaymentPaid
	}

	return s.col.Update(ctx, id, map[string]interface{}{
		"payment": map[string]interface{}{
			"totalAmount": reg.Payment.TotalAmount,
			"paidAmount":  paid,
			"status":      string(status),
			"method":      method,
			"paidAt":      s.now(),
		},
	})
}

// Subscribe delivers the matching registration list on every change,
// optionally narrowed to one status.
func (s *Service) Subscribe(ctx context.Context, callback func([]*Registration), status Status) repository.CancelFunc {
	opts := collection.SubscribeOptions{}
	if status != "" {
		opts.Filters = []model.Filter{model.Where("status", model.OperatorEqual, string(status))}
		opts.Orders = []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)}
	}
	return s.col.SubscribeToCollection(ctx, callback, opts)
}

// SubscribeToRegistration delivers one registration on every change.
func (s *Service) SubscribeToRegistration(ctx context.Context, id string, callback func(*Registration)) repository.CancelFunc {
	return s.col.SubscribeToDoc(ctx, id, callback)
}

// CountByStatus returns the number of registrations in one status.
func (s *Service) CountByStatus(ctx context.Context, status Status) (int64, error) {
	return s.col.Count(ctx, []model.Filter{model.Where("status", model.OperatorEqual, string(status))})
}
