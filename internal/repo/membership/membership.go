// Package membership holds the table and column names of user-unit associations.
package membership

const (
	Table = "unit_memberships"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldUnitID    = "unit_id"
	FieldRole      = "role"
	FieldCreatedAt = "created_at"
)

var Columns = []string{
	FieldID,
	FieldUserID,
	FieldUnitID,
	FieldRole,
	FieldCreatedAt,
}
