package catalog

import (
	"time"

	"tutorhub/internal/collection"
	"tutorhub/internal/store/domain/model"
)

// Collection names served by this package. Classes and courses share one
// entity shape and service implementation; only the collection differs.
const (
	CollectionClasses = "classes"
	CollectionCourses = "courses"
)

// ScheduleSlot is one weekly time slot of a class.
type ScheduleSlot struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Class is a public-facing class or course listing. CurrentStudents must
// stay within [0, MaxStudents] where MaxStudents is tracked (non-zero).
type Class struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	Duration        string         `json:"duration"`
	Level           string         `json:"level"`
	Category        string         `json:"category"`
	Subjects        []string       `json:"subjects"`
	IsActive        bool           `json:"isActive"`
	MaxStudents     int            `json:"maxStudents"`
	CurrentStudents int            `json:"currentStudents"`
	Schedule        []ScheduleSlot `json:"schedule,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// classCodec converts between Class and the document envelope.
func classCodec() collection.Codec[Class] {
	return collection.Codec[Class]{
		ToFields: func(c *Class) map[string]interface{} {
			schedule := make([]interface{}, 0, len(c.Schedule))
			for _, slot := range c.Schedule {
				schedule = append(schedule, map[string]interface{}{
					"dayOfWeek": slot.DayOfWeek,
					"startTime": slot.StartTime,
					"endTime":   slot.EndTime,
				})
			}
			return map[string]interface{}{
				"title":           c.Title,
				"description":     c.Description,
				"price":           c.Price,
				"duration":        c.Duration,
				"level":           c.Level,
				"category":        c.Category,
				"subjects":        c.Subjects,
				"isActive":        c.IsActive,
				"maxStudents":     c.MaxStudents,
				"currentStudents": c.CurrentStudents,
				"schedule":        schedule,
			}
		},
		FromDoc: func(doc *model.Document) *Class {
			f := doc.Fields
			c := &Class{
				ID:              doc.ID,
				Title:           collection.FieldString(f, "title"),
				Description:     collection.FieldString(f, "description"),
				Price:           collection.FieldFloat(f, "price"),
				Duration:        collection.FieldString(f, "duration"),
				Level:           collection.FieldString(f, "level"),
				Category:        collection.FieldString(f, "category"),
				Subjects:        collection.FieldStrings(f, "subjects"),
				IsActive:        collection.FieldBool(f, "isActive"),
				MaxStudents:     collection.FieldInt(f, "maxStudents"),
				CurrentStudents: collection.FieldInt(f, "currentStudents"),
				CreatedAt:       doc.CreatedAt,
				UpdatedAt:       doc.UpdatedAt,
			}
			for _, raw := range collection.FieldSlice(f, "schedule") {
				slot := collection.FieldMap(raw)
				if slot == nil {
					continue
				}
				c.Schedule = append(c.Schedule, ScheduleSlot{
					DayOfWeek: collection.FieldString(slot, "dayOfWeek"),
					StartTime: collection.FieldString(slot, "startTime"),
					EndTime:   collection.FieldString(slot, "endTime"),
				})
			}
			return c
		},
	}
}

// Update is a typed partial update. Nil fields stay untouched; the merge
// into the stored document is explicit, never an unchecked object spread.
type Update struct {
	Title           *string
	Description     *string
	Price           *float64
	Duration        *string
	Level           *string
	Category        *string
	Subjects        []string
	IsActive        *bool
	MaxStudents     *int
	CurrentStudents *int
	Schedule        []ScheduleSlot
}

func (u Update) fields() map[string]interface{} {
	out := make(map[string]interface{})
	if u.Title != nil {
		out["title"] = *u.Title
	}
	if u.Description != nil {
		out["description"] = *u.Description
	}
	if u.Price != nil {
		out["price"] = *u.Price
	}
	if u.Duration != nil {
		out["duration"] = *u.Duration
	}
	if u.Level != nil {
		out["level"] = *u.Level
	}
	if u.Category != nil {
		out["category"] = *u.Category
	}
	if u.Subjects != nil {
		out["subjects"] = u.Subjects
	}
	if u.IsActive != nil {
		out["isActive"] = *u.IsActive
	}
	if u.MaxStudents != nil {
		out["maxStudents"] = *u.MaxStudents
	}
	if u.CurrentStudents != nil {
		out["currentStudents"] = *u.CurrentStudents
	}
	if u.Schedule != nil {
		schedule := make([]interface{}, 0, len(u.Schedule))
		for _, slot := range u.Schedule {
			schedule = append(schedule, map[string]interface{}{
				"dayOfWeek": slot.DayOfWeek,
				"startTime": slot.StartTime,
				"endTime":   slot.EndTime,
			})
		}
		out["schedule"] = schedule
	}
	return out
}
