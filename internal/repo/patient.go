package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo/patient"
)

// Patient is owned by exactly one unit.
type Patient struct {
	ID              uuid.UUID      `json:"id"`
	UnitID          uuid.UUID      `json:"unit_id"`
	FullName        string         `json:"full_name"`
	BirthDate       *time.Time     `json:"birth_date"`
	CPFEncrypted    *string        `json:"-" sql:"cpf_encrypted"`
	CPFHash         *string        `json:"-" sql:"cpf_hash"`
	Sex             string         `json:"sex"`
	Diagnosis       string         `json:"diagnosis"`
	ClinicalSummary string         `json:"clinical_summary"`
	Status          patient.Status `json:"status"`
	CreatedBy       *uuid.UUID     `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Guardian links a guardian profile to a patient.
type Guardian struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	GuardianID   uuid.UUID `json:"guardian_id"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
}

// PatientFilter narrows patient listings to one unit. A non-nil IDs restricts
// the result to those patients (an empty, non-nil slice yields nothing).
type PatientFilter struct {
	UnitID uuid.UUID
	IDs    []uuid.UUID
	Search string
	Status patient.Status
	Limit  int
	Offset int
}

type PatientClient struct {
	conn dialect.ExecQuerier
}

func (c *PatientClient) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = patient.StatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	q := builder.Insert(patient.Table).
		Columns(patient.Columns...).
		Values(p.ID, p.UnitID, p.FullName, p.BirthDate, p.CPFEncrypted, p.CPFHash, p.Sex,
			p.Diagnosis, p.ClinicalSummary, string(p.Status), p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (c *PatientClient) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	q := builder.Update(patient.Table).
		Set(patient.FieldFullName, p.FullName).
		Set(patient.FieldBirthDate, p.BirthDate).
		Set(patient.FieldCPFEncrypted, p.CPFEncrypted).
		Set(patient.FieldCPFHash, p.CPFHash).
		Set(patient.FieldSex, p.Sex).
		Set(patient.FieldDiagnosis, p.Diagnosis).
		Set(patient.FieldClinicalSummary, p.ClinicalSummary).
		Set(patient.FieldStatus, string(p.Status)).
		Set(patient.FieldUpdatedAt, p.UpdatedAt).
		Where(entsql.EQ(patient.FieldID, p.ID))
	n, err := exec(ctx, c.conn, q)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if n == 0 {
		return &NotFoundError{label: patient.Table}
	}
	return nil
}

func (c *PatientClient) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	sel := builder.Select(patient.Columns...).
		From(builder.Table(patient.Table)).
		Where(entsql.EQ(patient.FieldID, id))
	return first[Patient](ctx, c.conn, sel, patient.Table)
}

// FindByCPFHash looks a patient up by CPF within a unit.
func (c *PatientClient) FindByCPFHash(ctx context.Context, unitID uuid.UUID, hash string) (*Patient, error) {
	sel := builder.Select(patient.Columns...).
		From(builder.Table(patient.Table)).
		Where(entsql.And(
			entsql.EQ(patient.FieldUnitID, unitID),
			entsql.EQ(patient.FieldCPFHash, hash),
		))
	return first[Patient](ctx, c.conn, sel, patient.Table)
}

func (c *PatientClient) List(ctx context.Context, f PatientFilter) ([]*Patient, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return nil, nil
	}
	sel := c.filtered(f).OrderBy(patient.FieldFullName)
	var out []*Patient
	if err := query(ctx, c.conn, page(sel, f.Limit, f.Offset), &out); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

func (c *PatientClient) Count(ctx context.Context, f PatientFilter) (int, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return 0, nil
	}
	n, err := count(ctx, c.conn, c.filtered(f))
	if err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}

func (c *PatientClient) filtered(f PatientFilter) *entsql.Selector {
	sel := builder.Select(patient.Columns...).
		From(builder.Table(patient.Table)).
		Where(entsql.EQ(patient.FieldUnitID, f.UnitID))
	if len(f.IDs) > 0 {
		sel.Where(entsql.In(patient.FieldID, uuidArgs(f.IDs)...))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ(patient.FieldStatus, string(f.Status)))
	}
	if f.Search != "" {
		sel.Where(entsql.ContainsFold(patient.FieldFullName, f.Search))
	}
	return sel
}

// AddGuardian links a guardian; linking twice is a no-op.
func (c *PatientClient) AddGuardian(ctx context.Context, g *Guardian) error {
	if g.ID == uuid.Nil {
		g.ID = newID()
	}
	g.CreatedAt = time.Now().UTC()
	q := builder.Insert(patient.GuardiansTable).
		Columns(patient.GuardianColumns...).
		Values(g.ID, g.PatientID, g.GuardianID, g.Relationship, g.CreatedAt).
		OnConflict(
			entsql.ConflictColumns(patient.GuardianFieldPatientID, patient.GuardianFieldGuardianID),
			entsql.DoNothing(),
		)
	if _, err := exec(ctx, c.conn, q); err != nil {
		return fmt.Errorf("add guardian: %w", err)
	}
	return nil
}

func (c *PatientClient) ListGuardians(ctx context.Context, patientID uuid.UUID) ([]*Guardian, error) {
	sel := builder.Select(patient.GuardianColumns...).
		From(builder.Table(patient.GuardiansTable)).
		Where(entsql.EQ(patient.GuardianFieldPatientID, patientID)).
		OrderBy(patient.GuardianFieldCreatedAt)
	var out []*Guardian
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list guardians: %w", err)
	}
	return out, nil
}

// PatientIDsForGuardian returns the patients a guardian is linked to. The
// result is never nil so it can be used directly as PatientFilter.IDs.
func (c *PatientClient) PatientIDsForGuardian(ctx context.Context, guardianID uuid.UUID) ([]uuid.UUID, error) {
	sel := builder.Select(patient.GuardianFieldPatientID).
		From(builder.Table(patient.GuardiansTable)).
		Where(entsql.EQ(patient.GuardianFieldGuardianID, guardianID))
	out := []uuid.UUID{}
	if err := query(ctx, c.conn, sel, &out); err != nil {
		return nil, fmt.Errorf("list guardian patients: %w", err)
	}
	return out, nil
}
