// Package unit holds the table and column names of clinic units.
package unit

const (
	Table = "units"

	FieldID           = "id"
	FieldName         = "name"
	FieldAddress      = "address"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldWorkingHours = "working_hours"
	FieldSpecialties  = "specialties"
	FieldIsActive     = "is_active"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// Columns holds all SQL columns for unit fields.
var Columns = []string{
	FieldID,
	FieldName,
	FieldAddress,
	FieldPhone,
	FieldEmail,
	FieldWorkingHours,
	FieldSpecialties,
	FieldIsActive,
	FieldCreatedAt,
	FieldUpdatedAt,
}
