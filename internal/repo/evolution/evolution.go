// Package evolution holds the table, columns and enums of clinical evolutions
// and their addenda.
package evolution

import "fmt"

const (
	Table = "evolutions"

	FieldID                    = "id"
	FieldUnitID                = "unit_id"
	FieldAppointmentID         = "appointment_id"
	FieldPatientID             = "patient_id"
	FieldAuthorID              = "author_id"
	FieldContent               = "content"
	FieldInappropriateBehavior = "inappropriate_behavior"
	FieldBehaviorDescription   = "behavior_description"
	FieldAttachments           = "attachments"
	FieldStatus                = "status"
	FieldCoSignature           = "cosignature"
	FieldSignedAt              = "signed_at"
	FieldRevisionFeedback      = "revision_feedback"
	FieldVersion               = "version"
	FieldCreatedAt             = "created_at"
	FieldUpdatedAt             = "updated_at"
)

var Columns = []string{
	FieldID,
	FieldUnitID,
	FieldAppointmentID,
	FieldPatientID,
	FieldAuthorID,
	FieldContent,
	FieldInappropriateBehavior,
	FieldBehaviorDescription,
	FieldAttachments,
	FieldStatus,
	FieldCoSignature,
	FieldSignedAt,
	FieldRevisionFeedback,
	FieldVersion,
	FieldCreatedAt,
	FieldUpdatedAt,
}

const (
	AddendaTable = "evolution_addenda"

	AddendumFieldID          = "id"
	AddendumFieldEvolutionID = "evolution_id"
	AddendumFieldAuthorID    = "author_id"
	AddendumFieldContent     = "content"
	AddendumFieldCreatedAt   = "created_at"
)

var AddendumColumns = []string{
	AddendumFieldID,
	AddendumFieldEvolutionID,
	AddendumFieldAuthorID,
	AddendumFieldContent,
	AddendumFieldCreatedAt,
}

type Status string

const (
	StatusDraft              Status = "draft"
	StatusPendingSupervision Status = "pending_supervision"
	StatusFinalized          Status = "finalized"
)

func (s Status) String() string { return string(s) }

func StatusValidator(s Status) error {
	switch s {
	case StatusDraft, StatusPendingSupervision, StatusFinalized:
		return nil
	default:
		return fmt.Errorf("evolution: invalid enum value for status field: %q", s)
	}
}
