package protocol

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/repo/notification"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

type Patients interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Patient, error)
	ListGuardians(ctx context.Context, patientID uuid.UUID) ([]*repo.Guardian, error)
}

type Assessments interface {
	Create(ctx context.Context, a *repo.Assessment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*repo.Assessment, error)
}

type Notifications interface {
	CreateBulk(ctx context.Context, ns ...*repo.Notification) error
}

type Store interface {
	Patients() Patients
	Assessments() Assessments
	Notifications() Notifications
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type repoStore struct {
	c *repo.Client
}

func NewStore(c *repo.Client) Store { return repoStore{c: c} }

func (s repoStore) Patients() Patients           { return s.c.Patient }
func (s repoStore) Assessments() Assessments     { return s.c.Assessment }
func (s repoStore) Notifications() Notifications { return s.c.Notification }

func (s repoStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.c.WithTx(ctx, func(tx *repo.Client) error { return fn(repoStore{c: tx}) })
}

type CreateAssessmentRequest struct {
	ProtocolID   string             `json:"protocol_id"`
	Scores       map[string]float64 `json:"scores"`
	Observations string             `json:"observations"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	List() []Protocol
	Get(id string) (Protocol, error)
	Score(id string, scores map[string]float64) (*Result, error)
	CreateAssessment(ctx context.Context, actor authorize.Actor, patientID uuid.UUID, req CreateAssessmentRequest) (*repo.Assessment, error)
	ListAssessments(ctx context.Context, actor authorize.Actor, patientID uuid.UUID, page, perPage int) ([]*repo.Assessment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type service struct {
	store Store
}

func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List() []Protocol { return Catalog() }

func (s *service) Get(id string) (Protocol, error) { return Lookup(id) }

func (s *service) Score(id string, scores map[string]float64) (*Result, error) {
	return Score(id, scores)
}

func (s *service) CreateAssessment(ctx context.Context, actor authorize.Actor, patientID uuid.UUID, req CreateAssessmentRequest) (*repo.Assessment, error) {
	if strings.TrimSpace(req.ProtocolID) == "" {
		return nil, fielderr.Single("protocol_id", "is required")
	}
	if !actor.Can(authorize.ResourceProtocols, authorize.ActionCreate) {
		return nil, ErrForbidden
	}
	result, err := Score(req.ProtocolID, req.Scores)
	if err != nil {
		return nil, err
	}
	patient, err := s.patient(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}

	a := &repo.Assessment{
		UnitID:          patient.UnitID,
		PatientID:       patient.ID,
		ProtocolID:      result.ProtocolID,
		AssessorID:      actor.UserID,
		Scores:          req.Scores,
		Total:           result.Total,
		Classification:  result.Classification,
		Observations:    strings.TrimSpace(req.Observations),
		Recommendations: result.Recommendations,
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.Assessments().Create(ctx, a); err != nil {
			return err
		}
		guardians, err := tx.Patients().ListGuardians(ctx, patient.ID)
		if err != nil {
			return fmt.Errorf("list guardians: %w", err)
		}
		ns := make([]*repo.Notification, 0, len(guardians))
		for _, g := range guardians {
			ns = append(ns, &repo.Notification{
				UserID: g.GuardianID,
				Type:   notification.TypeAssessmentRecorded,
				Title:  "Nova avaliação registrada",
				Body:   fmt.Sprintf("Uma avaliação foi registrada para %s.", patient.FullName),
				Data:   map[string]any{"assessment_id": a.ID.String(), "patient_id": patient.ID.String()},
			})
		}
		return tx.Notifications().CreateBulk(ctx, ns...)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ListAssessments(ctx context.Context, actor authorize.Actor, patientID uuid.UUID, page, perPage int) ([]*repo.Assessment, error) {
	if !actor.Can(authorize.ResourceProtocols, authorize.ActionView) {
		return nil, ErrForbidden
	}
	if !actor.HasUnit() && !actor.IsAdmin() {
		return []*repo.Assessment{}, nil
	}
	if _, err := s.patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	page, perPage = paging.Normalize(page, perPage)
	out, err := s.store.Assessments().ListByPatient(ctx, patientID, perPage, paging.Offset(page, perPage))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*repo.Assessment{}
	}
	return out, nil
}

// patient loads a patient of the actor's unit. Admins reach every unit.
func (s *service) patient(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.Patient, error) {
	p, err := s.store.Patients().Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if !actor.IsAdmin() && (!actor.HasUnit() || p.UnitID != actor.Unit()) {
		return nil, ErrPatientNotFound
	}
	return p, nil
}
