// Package patient holds the table, columns and enums of patients and their guardians.
package patient

import "fmt"

const (
	Table = "patients"

	FieldID              = "id"
	FieldUnitID          = "unit_id"
	FieldFullName        = "full_name"
	FieldBirthDate       = "birth_date"
	FieldCPFEncrypted    = "cpf_encrypted"
	FieldCPFHash         = "cpf_hash"
	FieldSex             = "sex"
	FieldDiagnosis       = "diagnosis"
	FieldClinicalSummary = "clinical_summary"
	FieldStatus          = "status"
	FieldCreatedBy       = "created_by"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"
)

var Columns = []string{
	FieldID,
	FieldUnitID,
	FieldFullName,
	FieldBirthDate,
	FieldCPFEncrypted,
	FieldCPFHash,
	FieldSex,
	FieldDiagnosis,
	FieldClinicalSummary,
	FieldStatus,
	FieldCreatedBy,
	FieldCreatedAt,
	FieldUpdatedAt,
}

const (
	GuardiansTable = "patient_guardians"

	GuardianFieldID           = "id"
	GuardianFieldPatientID    = "patient_id"
	GuardianFieldGuardianID   = "guardian_id"
	GuardianFieldRelationship = "relationship"
	GuardianFieldCreatedAt    = "created_at"
)

var GuardianColumns = []string{
	GuardianFieldID,
	GuardianFieldPatientID,
	GuardianFieldGuardianID,
	GuardianFieldRelationship,
	GuardianFieldCreatedAt,
}

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusDischarged Status = "discharged"
)

func (s Status) String() string { return string(s) }

func StatusValidator(s Status) error {
	switch s {
	case StatusActive, StatusInactive, StatusDischarged:
		return nil
	default:
		return fmt.Errorf("patient: invalid enum value for status field: %q", s)
	}
}
