// Package patient manages unit-owned patient records and their guardians.
package patient

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	entpatient "github.com/equidadeplus/equidade_backend/internal/repo/patient"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/crypto"
	"github.com/equidadeplus/equidade_backend/pkg/util/cpf"
)

type Patients interface {
	Create(ctx context.Context, p *repo.Patient) error
	Update(ctx context.Context, p *repo.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
	FindByCPFHash(ctx context.Context, unitID uuid.UUID, hash string) (*repo.Patient, error)
	List(ctx context.Context, f repo.PatientFilter) ([]*repo.Patient, error)
	Count(ctx context.Context, f repo.PatientFilter) (int, error)
	AddGuardian(ctx context.Context, g *repo.Guardian) error
	ListGuardians(ctx context.Context, patientID uuid.UUID) ([]*repo.Guardian, error)
	PatientIDsForGuardian(ctx context.Context, guardianID uuid.UUID) ([]uuid.UUID, error)
}

type Profiles interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Profile, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ListFilter struct {
	Search  string
	Status  entpatient.Status
	Page    int
	PerPage int
}

type CreateRequest struct {
	FullName        string     `json:"full_name"`
	BirthDate       *time.Time `json:"birth_date"`
	CPF             string     `json:"cpf"`
	Sex             string     `json:"sex"`
	Diagnosis       string     `json:"diagnosis"`
	ClinicalSummary string     `json:"clinical_summary"`
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	FullName        *string            `json:"full_name"`
	BirthDate       *time.Time         `json:"birth_date"`
	CPF             *string            `json:"cpf"`
	Sex             *string            `json:"sex"`
	Diagnosis       *string            `json:"diagnosis"`
	ClinicalSummary *string            `json:"clinical_summary"`
	Status          *entpatient.Status `json:"status"`
}

type LinkGuardianRequest struct {
	GuardianID   uuid.UUID `json:"guardian_id"`
	Relationship string    `json:"relationship"`
}

// Detail is a patient with the decrypted CPF and guardian links.
type Detail struct {
	*repo.Patient
	CPF       string           `json:"cpf,omitempty"`
	Guardians []*repo.Guardian `json:"guardians"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Patient], error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*Detail, error)
	Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Patient, error)
	Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Patient, error)
	LinkGuardian(ctx context.Context, actor authorize.Actor, id uuid.UUID, req LinkGuardianRequest) ([]*repo.Guardian, error)
}

type service struct {
	patients Patients
	profiles Profiles
	cipher   *crypto.FieldCipher
}

func New(patients Patients, profiles Profiles, cipher *crypto.FieldCipher) Service {
	return &service{patients: patients, profiles: profiles, cipher: cipher}
}

func (s *service) List(ctx context.Context, actor authorize.Actor, f ListFilter) (*paging.Result[*repo.Patient], error) {
	page, perPage := paging.Normalize(f.Page, f.PerPage)
	if !actor.Can(authorize.ResourcePacientes, authorize.ActionView) {
		return nil, ErrForbidden
	}
	if f.Status != "" && entpatient.StatusValidator(f.Status) != nil {
		return nil, fielderr.Single("status", "unknown status")
	}
	if !actor.HasUnit() {
		return paging.Empty[*repo.Patient](page, perPage), nil
	}

	rf := repo.PatientFilter{
		UnitID: actor.Unit(),
		Search: strings.TrimSpace(f.Search),
		Status: f.Status,
		Limit:  perPage,
		Offset: paging.Offset(page, perPage),
	}
	if actor.Role == authorize.RoleGuardian {
		ids, err := s.patients.PatientIDsForGuardian(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		rf.IDs = ids
	}

	rows, err := s.patients.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	total, err := s.patients.Count(ctx, rf)
	if err != nil {
		return nil, err
	}
	return paging.New(rows, total, page, perPage), nil
}

func (s *service) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*Detail, error) {
	if !actor.Can(authorize.ResourcePacientes, authorize.ActionView) {
		return nil, ErrForbidden
	}
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	guardians, err := s.patients.ListGuardians(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if guardians == nil {
		guardians = []*repo.Guardian{}
	}

	d := &Detail{Patient: p, Guardians: guardians}
	if p.CPFEncrypted != nil && s.cipher.Enabled() {
		plain, err := s.cipher.Open(*p.CPFEncrypted)
		if err != nil {
			slog.WarnContext(ctx, "patient: decrypt cpf", slog.String("patient_id", p.ID.String()), slog.Any("error", err))
		} else {
			d.CPF = cpf.Format(plain)
		}
	}
	return d, nil
}

func (s *service) Create(ctx context.Context, actor authorize.Actor, req CreateRequest) (*repo.Patient, error) {
	fe := fielderr.New()
	fe.Require("full_name", req.FullName, "is required")
	digits := normalizeCPF(fe, req.CPF)
	if req.BirthDate != nil && req.BirthDate.After(time.Now()) {
		fe.Add("birth_date", "cannot be in the future")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourcePacientes, authorize.ActionCreate) {
		return nil, ErrForbidden
	}
	if !actor.HasUnit() {
		return nil, fielderr.Single("unit_id", "select a unit first")
	}

	createdBy := actor.UserID
	p := &repo.Patient{
		UnitID:          actor.Unit(),
		FullName:        strings.TrimSpace(req.FullName),
		BirthDate:       req.BirthDate,
		Sex:             strings.TrimSpace(req.Sex),
		Diagnosis:       strings.TrimSpace(req.Diagnosis),
		ClinicalSummary: req.ClinicalSummary,
		Status:          entpatient.StatusActive,
		CreatedBy:       &createdBy,
	}
	if digits != "" {
		if err := s.setCPF(ctx, p, digits); err != nil {
			return nil, err
		}
	}

	if err := s.patients.Create(ctx, p); err != nil {
		if repo.IsConstraintError(err) {
			return nil, ErrDuplicateCPF
		}
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, actor authorize.Actor, id uuid.UUID, req UpdateRequest) (*repo.Patient, error) {
	fe := fielderr.New()
	if req.FullName != nil {
		fe.Require("full_name", *req.FullName, "cannot be blank")
	}
	if req.Status != nil && entpatient.StatusValidator(*req.Status) != nil {
		fe.Add("status", "unknown status")
	}
	var digits string
	if req.CPF != nil {
		digits = normalizeCPF(fe, *req.CPF)
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if !actor.Can(authorize.ResourcePacientes, authorize.ActionUpdate) {
		return nil, ErrForbidden
	}
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.BirthDate != nil {
		p.BirthDate = req.BirthDate
	}
	if req.Sex != nil {
		p.Sex = strings.TrimSpace(*req.Sex)
	}
	if req.Diagnosis != nil {
		p.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.ClinicalSummary != nil {
		p.ClinicalSummary = *req.ClinicalSummary
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.CPF != nil {
		if digits == "" {
			p.CPFEncrypted, p.CPFHash = nil, nil
		} else if err := s.setCPF(ctx, p, digits); err != nil {
			return nil, err
		}
	}

	if err := s.patients.Update(ctx, p); err != nil {
		if repo.IsConstraintError(err) {
			return nil, ErrDuplicateCPF
		}
		return nil, err
	}
	return p, nil
}

func (s *service) LinkGuardian(ctx context.Context, actor authorize.Actor, id uuid.UUID, req LinkGuardianRequest) ([]*repo.Guardian, error) {
	if req.GuardianID == uuid.Nil {
		return nil, fielderr.Single("guardian_id", "is required")
	}
	if !actor.Can(authorize.ResourcePacientes, authorize.ActionManage) {
		return nil, ErrForbidden
	}
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	g, err := s.profiles.Get(ctx, req.GuardianID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fielderr.Single("guardian_id", "user not found")
		}
		return nil, err
	}
	if g.Role != authorize.RoleGuardian {
		return nil, fielderr.Single("guardian_id", "user is not a guardian")
	}

	if err := s.patients.AddGuardian(ctx, &repo.Guardian{
		PatientID:    p.ID,
		GuardianID:   g.ID,
		Relationship: strings.TrimSpace(req.Relationship),
	}); err != nil {
		return nil, err
	}
	return s.patients.ListGuardians(ctx, p.ID)
}

// load fetches a patient inside the actor's scope. Guardians additionally
// need a link to the patient.
func (s *service) load(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !actor.IsAdmin() && (!actor.HasUnit() || p.UnitID != actor.Unit()) {
		return nil, ErrNotFound
	}
	if actor.Role == authorize.RoleGuardian {
		ids, err := s.patients.PatientIDsForGuardian(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, p.ID) {
			return nil, ErrNotFound
		}
	}
	return p, nil
}

func (s *service) setCPF(ctx context.Context, p *repo.Patient, digits string) error {
	if !s.cipher.Enabled() {
		return ErrCPFDisabled
	}
	hash := s.cipher.Lookup(digits)
	existing, err := s.patients.FindByCPFHash(ctx, p.UnitID, hash)
	switch {
	case err == nil && existing.ID != p.ID:
		return ErrDuplicateCPF
	case err != nil && !repo.IsNotFound(err):
		return fmt.Errorf("check cpf: %w", err)
	}
	sealed, err := s.cipher.Seal(digits)
	if err != nil {
		return fmt.Errorf("encrypt cpf: %w", err)
	}
	p.CPFEncrypted = &sealed
	p.CPFHash = &hash
	return nil
}

func normalizeCPF(fe *fielderr.Error, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	digits, err := cpf.Normalize(raw)
	if err != nil {
		fe.Add("cpf", "invalid CPF")
		return ""
	}
	return digits
}
