// Package tutor serves the tutor directory, following the same
// collection-service pattern as the catalog.
package tutor

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

const CollectionTutors = "tutors"

// Tutor is a staff-managed tutor profile.
type Tutor struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Bio             string    `json:"bio"`
	Subjects        []string  `json:"subjects"`
	ExperienceYears int       `json:"experienceYears"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func tutorCodec() collection.Codec[Tutor] {
	return collection.Codec[Tutor]{
		ToFields: func(t *Tutor) map[string]interface{} {
			return map[string]interface{}{
				"name":            t.Name,
				"email":           t.Email,
				"phone":           t.Phone,
				"bio":             t.Bio,
				"subjects":        t.Subjects,
				"experienceYears": t.ExperienceYears,
				"isActive":        t.IsActive,
			}
		},
		FromDoc: func(doc *model.Document) *Tutor {
			f := doc.Fields
			return &Tutor{
				ID:              doc.ID,
				Name:            collection.FieldString(f, "name"),
				Email:           collection.FieldString(f, "email"),
				Phone:           collection.FieldString(f, "phone"),
				Bio:             collection.FieldString(f, "bio"),
				Subjects:        collection.FieldStrings(f, "subjects"),
				ExperienceYears: collection.FieldInt(f, "experienceYears"),
				IsActive:        collection.FieldBool(f, "isActive"),
				CreatedAt:       doc.CreatedAt,
				UpdatedAt:       doc.UpdatedAt,
			}
		},
	}
}

// Service serves the tutors collection.
type Service struct {
	col *collection.Service[Tutor]
	log logger.Logger
}

func NewService(store repository.DocumentStore, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Service{
		col: collection.NewService(store, CollectionTutors, tutorCodec(), log),
		log: log.WithComponent("tutor_service"),
	}
}

func (s *Service) Create(ctx context.Context, tutor *Tutor) (*Tutor, error) {
	if tutor == nil || strings.TrimSpace(tutor.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	return s.col.Create(ctx, tutor)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Tutor, error) {
	return s.col.GetByID(ctx, id)
}

// Update applies a field-level partial update; envelope fields are
// stripped by the generic layer.
func (s *Service) Update(ctx context.Context, id string, fields map[string]interface{}) (*Tutor, error) {
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("no fields to update")
	}
	return s.col.Update(ctx, id, fields)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// List returns one page of tutors, optionally narrowed by subject and
// active flag.
func (s *Service) List(ctx context.Context, subject string, activeOnly bool, pageSize int, startAfter *model.Document) (*collection.Page[Tutor], error) {
	var filters []model.Filter
	if activeOnly {
		filters = append(filters, model.Where("isActive", model.OperatorEqual, true))
	}
	if subject != "" {
		filters = append(filters, model.Where("subjects", model.OperatorArrayContains, subject))
	}
	return s.col.GetAll(ctx, collection.ListOptions{
		Filters:    filters,
		Orders:     []model.Order{model.OrderBy("name", model.Ascending)},
		PageSize:   pageSize,
		StartAfter: startAfter,
	})
}

// ToggleActive flips the visibility flag. Read-modify-write, last write
// wins.
func (s *Service) ToggleActive(ctx context.Context, id string) (*Tutor, error) {
	tutor, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tutor == nil {
		return nil, apperrors.NewNotFoundError("tutor")
	}
	return s.col.Update(ctx, id, map[string]interface{}{"isActive": !tutor.IsActive})
}

func (s *Service) Subscribe(ctx context.Context, callback func([]*Tutor)) repository.CancelFunc {
	return s.col.SubscribeToCollection(ctx, callback, collection.SubscribeOptions{})
}
