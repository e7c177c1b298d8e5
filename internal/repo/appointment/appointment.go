// Package appointment holds the table, columns and enums of appointments.
package appointment

import "fmt"

const (
	Table = "appointments"

	FieldID          = "id"
	FieldUnitID      = "unit_id"
	FieldPatientID   = "patient_id"
	FieldTherapistID = "therapist_id"
	FieldRoom        = "room"
	FieldSpecialty   = "specialty"
	FieldStartsAt    = "starts_at"
	FieldEndsAt      = "ends_at"
	FieldStatus      = "status"
	FieldNotes       = "notes"
	FieldCreatedBy   = "created_by"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

var Columns = []string{
	FieldID,
	FieldUnitID,
	FieldPatientID,
	FieldTherapistID,
	FieldRoom,
	FieldSpecialty,
	FieldStartsAt,
	FieldEndsAt,
	FieldStatus,
	FieldNotes,
	FieldCreatedBy,
	FieldCreatedAt,
	FieldUpdatedAt,
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusAttended  Status = "attended"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusCompleted,
	StatusAttended,
	StatusNoShow,
	StatusCancelled,
}

func (s Status) String() string { return string(s) }

// Blocking reports whether an appointment in this status occupies its slot.
func (s Status) Blocking() bool {
	return s != StatusCancelled && s != StatusNoShow
}

func StatusValidator(s Status) error {
	for _, v := range Statuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("appointment: invalid enum value for status field: %q", s)
}
