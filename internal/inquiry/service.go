// Package inquiry serves contact inquiries submitted through the public
// site. Same transition-overwrite discipline as registrations: replies
// and archival stamp actor fields without guarding against repeats.
package inquiry

import (
	"context"
	"strings"
	"time"

	"tutorhub/internal/collection"
	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/model"
	"tutorhub/internal/store/domain/repository"
)

const CollectionInquiries = "inquiries"

// Status is the inquiry handling state.
type Status string

const (
	StatusNew      Status = "new"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

// Inquiry is a contact message from a visitor.
type Inquiry struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    Status     `json:"status"`
	RepliedBy string     `json:"repliedBy,omitempty"`
	RepliedAt *time.Time `json:"repliedAt,omitempty"`
	ReplyNote string     `json:"replyNote,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func inquiryCodec() collection.Codec[Inquiry] {
	return collection.Codec[Inquiry]{
		ToFields: func(i *Inquiry) map[string]interface{} {
			return map[string]interface{}{
				"name":      i.Name,
				"email":     i.Email,
				"phone":     i.Phone,
				"subject":   i.Subject,
				"message":   i.Message,
				"status":    string(i.Status),
				"repliedBy": i.RepliedBy,
				"replyNote": i.ReplyNote,
			}
		},
		FromDoc: func(doc *model.Document) *Inquiry {
			f := doc.Fields
			return &Inquiry{
				ID:        doc.ID,
				Name:      collection.FieldString(f, "name"),
				Email:     collection.FieldString(f, "email"),
				Phone:     collection.FieldString(f, "phone"),
				Subject:   collection.FieldString(f, "subject"),
				Message:   collection.FieldString(f, "message"),
				Status:    Status(collection.FieldString(f, "status")),
				RepliedBy: collection.FieldString(f, "repliedBy"),
				RepliedAt: collection.FieldTimePtr(f, "repliedAt"),
				ReplyNote: collection.FieldString(f, "replyNote"),
				CreatedAt: doc.CreatedAt,
				UpdatedAt: doc.UpdatedAt,
			}
		},
	}
}

// Service serves the inquiries collection.
type Service struct {
	col *collection.Service[Inquiry]
	log logger.Logger
	now func() time.Time
}

func NewService(store repository.DocumentStore, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Service{
		col: collection.NewService(store, CollectionInquiries, inquiryCodec(), log),
		log: log.WithComponent("inquiry_service"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new inquiry with status new.
func (s *Service) Create(ctx context.Context, inquiry *Inquiry) (*Inquiry, error) {
	if inquiry == nil || strings.TrimSpace(inquiry.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(inquiry.Message) == "" {
		return nil, apperrors.NewValidationError("message is required")
	}
	inquiry.Status = StatusNew
	return s.col.Create(ctx, inquiry)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Inquiry, error) {
	return s.col.GetByID(ctx, id)
}

// List returns one page, optionally narrowed to one status, newest first.
func (s *Service) List(ctx context.Context, status Status, pageSize int, startAfter *model.Document) (*collection.Page[Inquiry], error) {
	var filters []model.Filter
	if status != "" {
		filters = append(filters, model.Where("status", model.OperatorEqual, string(status)))
	}
	return s.col.GetAll(ctx, collection.ListOptions{
		Filters:    filters,
		Orders:     []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
		PageSize:   pageSize,
		StartAfter: startAfter,
	})
}

// Reply marks an inquiry replied, stamping actor, time and note.
func (s *Service) Reply(ctx context.Context, id, note, actor string) (*Inquiry, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, apperrors.NewValidationError("actor is required")
	}
	inquiry, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry == nil {
		return nil, apperrors.NewNotFoundError("inquiry")
	}
	return s.col.Update(ctx, id, map[string]interface{}{
		"status":    string(StatusReplied),
		"repliedBy": actor,
		"repliedAt": s.now(),
		"replyNote": note,
	})
}

// Archive marks an inquiry archived.
func (s *Service) Archive(ctx context.Context, id string) (*Inquiry, error) {
	inquiry, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry == nil {
		return nil, apperrors.NewNotFoundError("inquiry")
	}
	return s.col.Update(ctx, id, map[string]interface{}{"status": string(StatusArchived)})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// Subscribe delivers new inquiries as they arrive, for the admin
// dashboard badge.
func (s *Service) Subscribe(ctx context.Context, callback func([]*Inquiry)) repository.CancelFunc {
	return s.col.SubscribeToCollection(ctx, callback, collection.SubscribeOptions{
		Filters: []model.Filter{model.Where("status", model.OperatorEqual, string(StatusNew))},
		Orders:  []model.Order{model.OrderBy(model.FieldCreatedAt, model.Descending)},
	})
}
