package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/assessment"
)

// Assessment is one scored application of a protocol to a patient.
type Assessment struct {
	ID              uuid.UUID          `json:"id"`
	UnitID          uuid.UUID          `json:"unit_id"`
	PatientID       uuid.UUID          `json:"patient_id"`
	ProtocolID      string             `json:"protocol_id"`
	AssessorID      uuid.UUID          `json:"assessor_id"`
	Scores          map[string]float64 `json:"scores"`
	Total           float64            `json:"total"`
	Classification  string             `json:"classification"`
	Observations    string             `json:"observations"`
	Recommendations []string           `json:"recommendations"`
	CreatedAt       time.Time          `json:"created_at"`
}

type AssessmentClient struct {
	conn dialect.ExecQuerier
}

func (c *AssessmentClient) Create(ctx context.Context, a *Assessment) error {
	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	a.CreatedAt = time.Now().UTC()

	scores := a.Scores
	if scores == nil {
		scores = map[string]float64{}
	}
	recs := a.Recommendations
	if recs == nil {
		recs = []string{}
	}
	scoresJSON, err := jsonb(scores)
	if err != nil {
		return err
	}
	recsJSON, err := jsonb(recs)
	if err != nil {
		return err
	}

	q := builder.Insert(assessment.Table).
		Columns(assessment.Columns...).
		Values(a.ID, a.UnitID, a.PatientID, a.ProtocolID, a.AssessorID, scoresJSON, a.Total,
			a.Classification, a.Observations, recsJSON, a.CreatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (c *AssessmentClient) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	sel := builder.Select(assessment.Columns...).
		From(builder.Table(assessment.Table)).
		Where(entsql.EQ(assessment.FieldID, id))
	return first[Assessment](ctx, c.conn, sel, assessment.Table)
}

// ListByPatient returns the patient's assessments, newest first.
func (c *AssessmentClient) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assessment, error) {
	sel := builder.Select(assessment.Columns...).
		From(builder.Table(assessment.Table)).
		Where(entsql.EQ(assessment.FieldPatientID, patientID)).
		OrderBy(entsql.Desc(assessment.FieldCreatedAt))
	var out []*Assessment
	if err := query(ctx, c.conn, page(sel, limit, offset), &out); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}
