// Package profile holds the table, columns and enums of user profiles.
package profile

import "fmt"

const (
	Table = "profiles"

	FieldID                  = "id"
	FieldDisplayName         = "display_name"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldRole                = "role"
	FieldHomeUnitID          = "home_unit_id"
	FieldRequiresSupervision = "requires_supervision"
	FieldStatus              = "status"
	FieldCreatedAt           = "created_at"
	FieldUpdatedAt           = "updated_at"
)

var Columns = []string{
	FieldID,
	FieldDisplayName,
	FieldEmail,
	FieldPhone,
	FieldRole,
	FieldHomeUnitID,
	FieldRequiresSupervision,
	FieldStatus,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// Status is the soft lifecycle state of a profile. Profiles are never deleted.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) String() string { return string(s) }

// StatusValidator is a validator for the "status" field enum values.
func StatusValidator(s Status) error {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return nil
	default:
		return fmt.Errorf("profile: invalid enum value for status field: %q", s)
	}
}
