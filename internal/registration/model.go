package registration

import (
	"time"

	"tutorhub/internal/collection"
	"tutorhub/internal/store/domain/model"
)

// CollectionRegistrations is the backing collection name.
const CollectionRegistrations = "registrations"

// Status is the registration lifecycle state.
type Status string

const (
	// StatusPending is the initial state, set at creation.
	StatusPending Status = "pending"
	// StatusApproved is set by staff approval.
	StatusApproved Status = "approved"
	// StatusRejected is set by staff rejection, with a required reason.
	StatusRejected Status = "rejected"
	// StatusCancelled is reachable from pending or approved.
	StatusCancelled Status = "cancelled"
	// StatusCompleted is terminal and reserved for an external
	// collaborator; no operation here produces it.
	StatusCompleted Status = "completed"
)

// PaymentStatus is the payment sub-record state.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is the optional payment sub-record. TotalAmount is snapshotted
// from the class price at creation time, not live-linked; PaidAmount must
// never exceed it.
type Payment struct {
	TotalAmount float64       `json:"totalAmount"`
	PaidAmount  float64       `json:"paidAmount"`
	Status      PaymentStatus `json:"status"`
	Method      string        `json:"method,omitempty"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
}

// Registration references exactly one class by identifier (immutable
// after creation) and carries student and parent identity. ClassTitle is
// a denormalized display snapshot, allowed to drift from the source.
type Registration struct {
	ID         string `json:"id"`
	ClassID    string `json:"classId"`
	ClassTitle string `json:"classTitle"`

	StudentName   string `json:"studentName"`
	StudentPhone  string `json:"studentPhone"`
	StudentSchool string `json:"studentSchool"`

	ParentName    string `json:"parentName"`
	ParentPhone   string `json:"parentPhone"`
	ParentAddress string `json:"parentAddress"`

	PreferredSchedule string `json:"preferredSchedule"`
	Notes             string `json:"notes"`

	Status          Status     `json:"status"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CancelledBy     string     `json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`

	Payment Payment `json:"payment"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func registrationCodec() collection.Codec[Registration] {
	return collection.Codec[Registration]{
		ToFields: func(r *Registration) map[string]interface{} {
			return map[string]interface{}{
				"classId":           r.ClassID,
				"classTitle":        r.ClassTitle,
				"studentName":       r.StudentName,
				"studentPhone":      r.StudentPhone,
				"studentSchool":     r.StudentSchool,
				"parentName":        r.ParentName,
				"parentPhone":       r.ParentPhone,
				"parentAddress":     r.ParentAddress,
				"preferredSchedule": r.PreferredSchedule,
				"notes":             r.Notes,
				"status":            string(r.Status),
				"approvedBy":        r.ApprovedBy,
				"rejectedBy":        r.RejectedBy,
				"rejectionReason":   r.RejectionReason,
				"cancelledBy":       r.CancelledBy,
				"payment": map[string]interface{}{
					"totalAmount": r.Payment.TotalAmount,
					"paidAmount":  r.Payment.PaidAmount,
					"status":      string(r.Payment.Status),
					"method":      r.Payment.Method,
				},
			}
		},
		FromDoc: func(doc *model.Document) *Registration {
			f := doc.Fields
			r := &Registration{
				ID:                doc.ID,
				ClassID:           collection.FieldString(f, "classId"),
				ClassTitle:        collection.FieldString(f, "classTitle"),
				StudentName:       collection.FieldString(f, "studentName"),
				StudentPhone:      collection.FieldString(f, "studentPhone"),
				StudentSchool:     collection.FieldString(f, "studentSchool"),
				ParentName:        collection.FieldString(f, "parentName"),
				ParentPhone:       collection.FieldString(f, "parentPhone"),
				ParentAddress:     collection.FieldString(f, "parentAddress"),
				PreferredSchedule: collection.FieldString(f, "preferredSchedule"),
				Notes:             collection.FieldString(f, "notes"),
				Status:            Status(collection.FieldString(f, "status")),
				ApprovedBy:        collection.FieldString(f, "approvedBy"),
				ApprovedAt:        collection.FieldTimePtr(f, "approvedAt"),
				RejectedBy:        collection.FieldString(f, "rejectedBy"),
				RejectedAt:        collection.FieldTimePtr(f, "rejectedAt"),
				RejectionReason:   collection.FieldString(f, "rejectionReason"),
				CancelledBy:       collection.FieldString(f, "cancelledBy"),
				CancelledAt:       collection.FieldTimePtr(f, "cancelledAt"),
				CreatedAt:         doc.CreatedAt,
				UpdatedAt:         doc.UpdatedAt,
			}
			if payment := collection.FieldMap(f["payment"]); payment != nil {
				r.Payment = Payment{
					TotalAmount: collection.FieldFloat(payment, "totalAmount"),
					PaidAmount:  collection.FieldFloat(payment, "paidAmount"),
					Status:      PaymentStatus(collection.FieldString(payment, "status")),
					Method:      collection.FieldString(payment, "method"),
					PaidAt:      collection.FieldTimePtr(payment, "paidAt"),
				}
			}
			return r
		},
	}
}
