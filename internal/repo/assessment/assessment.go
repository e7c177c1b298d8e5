// Package assessment holds the table and column names of protocol assessments.
package assessment

const (
	Table = "assessments"

	FieldID              = "id"
	FieldUnitID          = "unit_id"
	FieldPatientID       = "patient_id"
	FieldProtocolID      = "protocol_id"
	FieldAssessorID      = "assessor_id"
	FieldScores          = "scores"
	FieldTotal           = "total"
	FieldClassification  = "classification"
	FieldObservations    = "observations"
	FieldRecommendations = "recommendations"
	FieldCreatedAt       = "created_at"
)

var Columns = []string{
	FieldID,
	FieldUnitID,
	FieldPatientID,
	FieldProtocolID,
	FieldAssessorID,
	FieldScores,
	FieldTotal,
	FieldClassification,
	FieldObservations,
	FieldRecommendations,
	FieldCreatedAt,
}
