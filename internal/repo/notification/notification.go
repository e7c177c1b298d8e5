// Package notification holds the table, columns and types of in-app notifications.
package notification

const (
	Table = "notifications"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldType      = "type"
	FieldTitle     = "title"
	FieldBody      = "body"
	FieldData      = "data"
	FieldIsRead    = "is_read"
	FieldReadAt    = "read_at"
	FieldCreatedAt = "created_at"
)

var Columns = []string{
	FieldID,
	FieldUserID,
	FieldType,
	FieldTitle,
	FieldBody,
	FieldData,
	FieldIsRead,
	FieldReadAt,
	FieldCreatedAt,
}

type Type string

const (
	TypeEvolutionPending         Type = "evolution_pending_supervision"
	TypeEvolutionApproved        Type = "evolution_approved"
	TypeEvolutionRevisionRequest Type = "evolution_revision_requested"
	TypeEvolutionAddendum        Type = "evolution_addendum"
	TypeAppointmentCreated       Type = "appointment_created"
	TypeAppointmentStatusChanged Type = "appointment_status_changed"
	TypeAssessmentRecorded       Type = "assessment_recorded"
	TypeAccountProvisioned       Type = "account_provisioned"
)

func (t Type) String() string { return string(t) }
